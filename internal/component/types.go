// Package component models the typed identity of a distributable component:
// its type, its storage shape, and the type:name reference used to address it.
package component

import (
	"io/fs"
	"strings"

	adkerr "github.com/adk-dev/adk/internal/errors"
)

// Type is the kind of component being distributed
type Type string

const (
	Tool    Type = "tool"
	Skill   Type = "skill"
	Agent   Type = "agent"
	Command Type = "command"
	Rule    Type = "rule"
)

// AllTypes returns all component types in order
func AllTypes() []Type {
	return []Type{Tool, Skill, Agent, Command, Rule}
}

// ParseType resolves a type token such as "tool".
func ParseType(s string) (Type, error) {
	for _, t := range AllTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", adkerr.Newf(adkerr.KindInvalidReference, "parse", s,
		"unknown type %q, valid types: %s", s, typeList())
}

func typeList() string {
	names := make([]string, 0, len(AllTypes()))
	for _, t := range AllTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// Plural returns the directory name used for this type, e.g. "tools".
func (t Type) Plural() string {
	return string(t) + "s"
}

// IsDirectory reports whether components of this type are stored as a
// directory tree rather than a single markdown file.
func (t Type) IsDirectory() bool {
	return t.Shape().Kind() == ShapeDir
}

// Shape returns the storage shape for this type.
func (t Type) Shape() Shape {
	switch t {
	case Tool, Skill:
		return dirShape{}
	default:
		return fileShape{}
	}
}

// ShapeKind distinguishes the two storage shapes
type ShapeKind int

const (
	ShapeDir ShapeKind = iota
	ShapeFile
)

func (k ShapeKind) String() string {
	if k == ShapeDir {
		return "directory"
	}
	return "file"
}

// Shape captures everything that differs between directory-stored and
// file-stored components.
type Shape interface {
	Kind() ShapeKind
	// Leaf returns the on-disk name for a component name.
	Leaf(name string) string
	// Matches reports whether Lstat info describes what this shape stores.
	Matches(info fs.FileInfo) bool
}

// MarkdownExt is appended to the names of file-shaped components.
const MarkdownExt = ".md"

type dirShape struct{}

func (dirShape) Kind() ShapeKind         { return ShapeDir }
func (dirShape) Leaf(name string) string { return name }
func (dirShape) Matches(info fs.FileInfo) bool {
	return info.Mode()&fs.ModeSymlink == 0 && info.IsDir()
}

type fileShape struct{}

func (fileShape) Kind() ShapeKind         { return ShapeFile }
func (fileShape) Leaf(name string) string { return name + MarkdownExt }
func (fileShape) Matches(info fs.FileInfo) bool {
	return info.Mode().IsRegular()
}
