// Package symlink answers symlink-aware questions about paths under a
// target root, so that recursive deletes never escape it.
package symlink

import (
	"os"
	"path/filepath"
	"strings"
)

// Manager handles symlink inspection
type Manager struct{}

// New creates a new symlink manager
func New() *Manager {
	return &Manager{}
}

// Info contains information about a path, without following it
type Info struct {
	Path      string
	Target    string
	Exists    bool
	IsSymlink bool
	IsBroken  bool
	Mode      os.FileMode
}

// Info returns information about a path. Symlinks are reported, not followed.
func (m *Manager) Info(path string) (*Info, error) {
	info := &Info{Path: path}

	linfo, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}

	info.Exists = true
	info.Mode = linfo.Mode()
	info.IsSymlink = linfo.Mode()&os.ModeSymlink != 0

	if info.IsSymlink {
		target, err := os.Readlink(path)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		info.Target = target

		if _, err := os.Stat(path); os.IsNotExist(err) {
			info.IsBroken = true
		}
	}

	return info, nil
}

// IsSymlink checks if a path is a symlink
func (m *Manager) IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// Within reports whether path, with every symlink in its parent chain
// resolved, still lies inside root (also resolved). The final element of
// path is not followed, so a symlink at path itself is judged by where it
// sits, not where it points.
func (m *Manager) Within(root, path string) (bool, error) {
	realRoot, err := resolve(root)
	if err != nil {
		return false, err
	}
	realParent, err := resolve(filepath.Dir(path))
	if err != nil {
		return false, err
	}

	candidate := filepath.Join(realParent, filepath.Base(path))
	rel, err := filepath.Rel(realRoot, candidate)
	if err != nil {
		return false, nil
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
