package errors

import (
	"errors"
	"fmt"
)

// Kind classifies every failure adk can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidReference
	KindInvalidTarget
	KindInvalidConfig
	KindAlreadyExists
	KindNotFound
	KindComponentNotFoundRemote
	KindSourceNotFound
	KindNetwork
	KindExtraction
)

var kindNames = map[Kind]string{
	KindUnknown:                 "unknown",
	KindInvalidReference:        "invalid reference",
	KindInvalidTarget:           "invalid target",
	KindInvalidConfig:           "invalid config",
	KindAlreadyExists:           "already exists",
	KindNotFound:                "not found",
	KindComponentNotFoundRemote: "component not found in source",
	KindSourceNotFound:          "source not found",
	KindNetwork:                 "network error",
	KindExtraction:              "extraction error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors, matched by kind through errors.Is.
var (
	ErrInvalidReference        = &Error{Kind: KindInvalidReference}
	ErrInvalidTarget           = &Error{Kind: KindInvalidTarget}
	ErrInvalidConfig           = &Error{Kind: KindInvalidConfig}
	ErrAlreadyExists           = &Error{Kind: KindAlreadyExists}
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrComponentNotFoundRemote = &Error{Kind: KindComponentNotFoundRemote}
	ErrSourceNotFound          = &Error{Kind: KindSourceNotFound}
	ErrNetwork                 = &Error{Kind: KindNetwork}
	ErrExtraction              = &Error{Kind: KindExtraction}
)

// Error carries a kind plus the operation and subject it failed on
type Error struct {
	Kind    Kind
	Op      string // operation, e.g. "add", "parse", "fetch"
	Subject string // reference, path or URL the operation worked on
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	switch {
	case e.Op != "" && e.Subject != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Subject, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Subject != "":
		return fmt.Sprintf("%s: %s", e.Subject, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error of the given kind
func New(kind Kind, op, subject, msg string) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message
func Newf(kind Kind, op, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error
func Wrap(kind Kind, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsUsage reports whether err stems from bad user input rather than from
// the network or the filesystem.
func IsUsage(err error) bool {
	switch KindOf(err) {
	case KindInvalidReference, KindInvalidTarget, KindInvalidConfig:
		return true
	}
	return false
}
