package inventory

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/source"
)

// Scanner walks a target root looking for installed components
type Scanner struct {
	logger *log.Logger
}

// NewScanner creates a new Scanner. A nil logger disables logging.
func NewScanner(logger *log.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan reads root (e.g. ".claude") and returns what is installed there. A
// missing root or type directory simply yields no items.
func (s *Scanner) Scan(root string) (*Inventory, error) {
	inv := New(root)

	for _, t := range component.AllTypes() {
		items, err := s.scanTypeDir(filepath.Join(root, t.Plural()), t, "")
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Ref.Name < items[j].Ref.Name })
		inv.Items[t] = items
	}

	return inv, nil
}

// scanTypeDir scans dir, whose entries are named prefix/<entry>.
//
// For directory types a directory holding at least one file is a
// component; one holding only directories is a namespace and is descended
// into. For file types every .md file is a component.
func (s *Scanner) scanTypeDir(dir string, t component.Type, prefix string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, entry := range entries {
		name := entry.Name()
		if name[0] == '.' || source.IsStaging(name) {
			continue
		}
		full := filepath.Join(dir, name)
		rel := path.Join(prefix, name)

		// symlinks are never treated as installed components
		if entry.Type()&os.ModeSymlink != 0 {
			s.debug("skipping symlink", "path", full)
			continue
		}

		if t.IsDirectory() {
			if !entry.IsDir() {
				continue
			}
			leaf, err := holdsFile(full)
			if err != nil {
				return nil, err
			}
			if !leaf {
				nested, err := s.scanTypeDir(full, t, rel)
				if err != nil {
					return nil, err
				}
				items = append(items, nested...)
				continue
			}
			items = s.appendItem(items, t, rel, full)
			continue
		}

		if entry.IsDir() {
			nested, err := s.scanTypeDir(full, t, rel)
			if err != nil {
				return nil, err
			}
			items = append(items, nested...)
			continue
		}
		if n, ok := strings.CutSuffix(rel, component.MarkdownExt); ok && entry.Type().IsRegular() {
			items = s.appendItem(items, t, n, full)
		}
	}

	return items, nil
}

func (s *Scanner) appendItem(items []Item, t component.Type, name, full string) []Item {
	if err := component.ValidateName(name); err != nil {
		s.debug("skipping entry", "path", full, "err", err)
		return items
	}

	item := Item{Ref: component.Ref{Type: t, Name: name}, Path: full}
	if t.IsDirectory() {
		md, err := ReadMetadata(full)
		if err != nil {
			s.warn("unreadable metadata", "path", full, "err", err)
		}
		item.Metadata = md
	}
	return append(items, item)
}

// holdsFile reports whether dir directly contains a non-directory entry.
func holdsFile(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Scanner) debug(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}

func (s *Scanner) warn(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}
