// Package resolve maps a component reference onto its remote source path and
// its local install path, and answers existence questions by asking the
// filesystem directly. Nothing here is cached.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/config"
	adkerr "github.com/adk-dev/adk/internal/errors"
	"github.com/adk-dev/adk/internal/symlink"
)

// State describes what currently sits at a component's local path
type State int

const (
	StateAbsent State = iota
	StatePresent
	// StateMismatch means something exists but is not the shape the type
	// stores (a file where a directory is expected, a symlink, ...).
	StateMismatch
)

func (s State) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StateMismatch:
		return "mismatch"
	}
	return "absent"
}

// SourcePath returns the path of ref inside the source repository.
func SourcePath(ref component.Ref) string {
	return ref.SourcePath()
}

// TypeDir returns {root}/{plural} for a type.
func TypeDir(t component.Type, cfg config.Config) string {
	return filepath.Join(cfg.Root(), t.Plural())
}

// LocalPath returns where ref is installed for cfg's target.
//
//	tool:file_search     -> .claude/tools/file_search
//	agent:code_reviewer  -> .claude/agents/code_reviewer.md
func LocalPath(ref component.Ref, cfg config.Config) string {
	return filepath.Join(TypeDir(ref.Type, cfg), filepath.FromSlash(ref.Leaf()))
}

// Inspect reports the state of ref's local path.
func Inspect(ref component.Ref, cfg config.Config) (State, error) {
	info, err := os.Lstat(LocalPath(ref, cfg))
	if os.IsNotExist(err) {
		return StateAbsent, nil
	}
	if err != nil {
		return StateAbsent, err
	}
	if ref.Type.Shape().Matches(info) {
		return StatePresent, nil
	}
	return StateMismatch, nil
}

// Exists reports whether ref is installed as the shape its type expects.
// A mismatched kind counts as not existing.
func Exists(ref component.Ref, cfg config.Config) (bool, error) {
	state, err := Inspect(ref, cfg)
	if err != nil {
		return false, err
	}
	return state == StatePresent, nil
}

// MismatchHint describes what was found at a mismatched local path.
func MismatchHint(ref component.Ref, cfg config.Config) string {
	path := LocalPath(ref, cfg)
	info, err := symlink.New().Info(path)
	if err != nil || !info.Exists {
		return ""
	}

	want := ref.Type.Shape().Kind()
	switch {
	case info.IsSymlink:
		return fmt.Sprintf("%s is a symlink to %s, expected a %s", path, info.Target, want)
	case info.Mode.IsDir():
		return fmt.Sprintf("%s is a directory, expected a %s", path, want)
	default:
		return fmt.Sprintf("%s is not a %s", path, want)
	}
}

// RemoveLocal deletes an installed component: recursively for directory
// types, a single file otherwise.
func RemoveLocal(ref component.Ref, cfg config.Config) error {
	path := LocalPath(ref, cfg)

	state, err := Inspect(ref, cfg)
	if err != nil {
		return adkerr.Wrap(adkerr.KindNotFound, "remove", ref.String(), err)
	}
	switch state {
	case StateAbsent:
		return adkerr.Newf(adkerr.KindNotFound, "remove", ref.String(), "%s does not exist", path)
	case StateMismatch:
		return adkerr.Newf(adkerr.KindNotFound, "remove", ref.String(),
			"refusing to remove: %s", MismatchHint(ref, cfg))
	}

	ok, err := symlink.New().Within(cfg.Root(), path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if !ok {
		return adkerr.Newf(adkerr.KindNotFound, "remove", ref.String(),
			"refusing to remove %s: it resolves outside %s", path, cfg.Root())
	}

	if ref.Type.IsDirectory() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	PruneEmptyParents(path, TypeDir(ref.Type, cfg))
	return nil
}

// PruneEmptyParents removes empty directories between path and stop,
// exclusive of stop. It gives up at the first directory that is not empty.
func PruneEmptyParents(path, stop string) {
	stop = filepath.Clean(stop)
	for dir := filepath.Dir(path); dir != stop && len(dir) > len(stop); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
