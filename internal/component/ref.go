package component

import (
	"fmt"
	"path"
	"strings"

	adkerr "github.com/adk-dev/adk/internal/errors"
)

// SourceRoot is the directory in the source repository holding all components.
const SourceRoot = "components"

// Ref identifies a requested component, e.g. tool:file_search.
type Ref struct {
	Type Type
	Name string // one or more "/"-separated segments
}

// Parse parses a "type:name" reference.
func Parse(raw string) (Ref, error) {
	rawType, name, ok := strings.Cut(raw, ":")
	if !ok {
		return Ref{}, adkerr.Newf(adkerr.KindInvalidReference, "parse", raw,
			"expected format type:name (e.g. tool:file_search)")
	}

	t, err := ParseType(rawType)
	if err != nil {
		return Ref{}, err
	}

	if err := ValidateName(name); err != nil {
		return Ref{}, adkerr.Newf(adkerr.KindInvalidReference, "parse", raw,
			"invalid component name %q: %v", name, err)
	}

	return Ref{Type: t, Name: name}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) Ref {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// ValidateName checks that name stays strictly inside its type's subtree.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("name must not start with '/'")
	}
	for _, seg := range strings.Split(name, "/") {
		switch seg {
		case "":
			return fmt.Errorf("name must not contain empty segments")
		case ".", "..":
			return fmt.Errorf("name must not contain %q segments", seg)
		}
		if strings.ContainsAny(seg, "\\\x00") {
			return fmt.Errorf("segment %q contains a forbidden character", seg)
		}
	}
	return nil
}

// String re-derives the raw "type:name" form.
func (r Ref) String() string {
	return string(r.Type) + ":" + r.Name
}

// Segments returns the name split into path segments.
func (r Ref) Segments() []string {
	return strings.Split(r.Name, "/")
}

// Leaf returns the name with the shape's suffix applied to its final segment.
func (r Ref) Leaf() string {
	return r.Type.Shape().Leaf(r.Name)
}

// SourcePath returns the slash-separated path of the component inside the
// source repository.
//
//	tool:file_search     -> components/tools/file_search
//	agent:code_reviewer  -> components/agents/code_reviewer.md
func (r Ref) SourcePath() string {
	return path.Join(SourceRoot, r.Type.Plural(), r.Leaf())
}
