package source

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/adk-dev/adk/internal/component"
	adkerr "github.com/adk-dev/adk/internal/errors"
)

// Snapshot is an opened repository archive.
type Snapshot struct {
	wrapper string
	entries []Entry
}

// OpenSnapshot parses a zip archive whose members all live under one
// top-level wrapper directory, as GitHub produces ({repo}-{branch}/...).
func OpenSnapshot(data []byte) (*Snapshot, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, adkerr.Wrap(adkerr.KindExtraction, "open archive", "", err)
	}

	s := &Snapshot{}
	for _, f := range zr.File {
		top, rest, _ := strings.Cut(f.Name, "/")
		if top == "" {
			return nil, adkerr.Newf(adkerr.KindExtraction, "open archive", f.Name,
				"entry has no top-level directory")
		}
		if s.wrapper == "" {
			s.wrapper = top
		} else if top != s.wrapper {
			return nil, adkerr.Newf(adkerr.KindExtraction, "open archive", f.Name,
				"archive has more than one top-level directory (%s, %s)", s.wrapper, top)
		}

		rest = strings.TrimSuffix(rest, "/")
		if rest == "" {
			continue
		}
		s.entries = append(s.entries, Entry{Path: rest, file: f})
	}

	if s.wrapper == "" {
		return nil, adkerr.New(adkerr.KindExtraction, "open archive", "", "archive is empty")
	}
	return s, nil
}

// Wrapper returns the stripped top-level directory name.
func (s *Snapshot) Wrapper() string {
	return s.wrapper
}

// Entries returns every member of the archive.
func (s *Snapshot) Entries() []Entry {
	return s.entries
}

// Lookup returns the entries making up ref: the single file for file types,
// the subtree root and all its descendants for directory types.
func (s *Snapshot) Lookup(ref component.Ref) ([]Entry, error) {
	src := ref.SourcePath()

	var matched []Entry
	if ref.Type.IsDirectory() {
		for _, e := range s.entries {
			if (e.Path == src && e.IsDir()) || strings.HasPrefix(e.Path, src+"/") {
				matched = append(matched, e)
			}
		}
	} else {
		for _, e := range s.entries {
			if e.Path == src && !e.IsDir() {
				matched = append(matched, e)
				break
			}
		}
	}

	if len(matched) == 0 {
		return nil, adkerr.Newf(adkerr.KindComponentNotFoundRemote, "lookup", ref.String(),
			"%s not found in repository", src)
	}
	return matched, nil
}

// Catalog lists every component the snapshot offers, sorted by type and
// name. A file-type component is any .md file under its type directory; a
// directory-type component is the shallowest directory that directly holds
// a file, so subdirectories of a component are not offered on their own.
func (s *Snapshot) Catalog() []component.Ref {
	seen := make(map[component.Ref]bool)

	for _, e := range s.entries {
		if e.IsDir() {
			continue
		}
		for _, t := range component.AllTypes() {
			prefix := path.Join(component.SourceRoot, t.Plural()) + "/"
			rel, ok := strings.CutPrefix(e.Path, prefix)
			if !ok {
				continue
			}

			var name string
			if t.IsDirectory() {
				name = path.Dir(rel)
				if name == "." {
					continue
				}
			} else {
				name, ok = strings.CutSuffix(rel, component.MarkdownExt)
				if !ok {
					continue
				}
			}

			if component.ValidateName(name) == nil {
				seen[component.Ref{Type: t, Name: name}] = true
			}
		}
	}

	refs := make([]component.Ref, 0, len(seen))
	for r := range seen {
		if r.Type.IsDirectory() && hasAncestor(seen, r) {
			continue
		}
		refs = append(refs, r)
	}
	order := make(map[component.Type]int)
	for i, t := range component.AllTypes() {
		order[t] = i
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Type != refs[j].Type {
			return order[refs[i].Type] < order[refs[j].Type]
		}
		return refs[i].Name < refs[j].Name
	})
	return refs
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("snapshot %s (%d entries)", s.wrapper, len(s.entries))
}

// hasAncestor reports whether a shorter name of the same type, covering
// r's directory, is also in seen.
func hasAncestor(seen map[component.Ref]bool, r component.Ref) bool {
	for dir := path.Dir(r.Name); dir != "."; dir = path.Dir(dir) {
		if seen[component.Ref{Type: r.Type, Name: dir}] {
			return true
		}
	}
	return false
}
