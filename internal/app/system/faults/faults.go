// Package faults classifies errors crossing the service boundary so
// transports can map them to a response without inspecting store
// sentinels.
//
// Services wrap store and infrastructure errors with a Kind; handlers call
// KindOf to choose a status code. Unclassified errors default to
// Dependency, which surfaces as an internal error.
package faults

import (
	"errors"
	"fmt"
)

// Kind labels the broad failure class of an error.
type Kind int

const (
	// Validation: the input is malformed or violates a domain rule.
	Validation Kind = iota + 1
	// Permission: the caller is authenticated but not allowed.
	Permission
	// NotFound: the referenced record does not exist.
	NotFound
	// Conflict: the operation lost to a uniqueness or state constraint.
	Conflict
	// Dependency: a backing system (database, mailer) failed.
	Dependency
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Permission:
		return "permission"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Dependency:
		return "dependency"
	default:
		return "unknown"
	}
}

type fault struct {
	kind Kind
	err  error
}

func (f *fault) Error() string { return f.err.Error() }
func (f *fault) Unwrap() error { return f.err }

// New returns a classified error with a fixed message.
func New(k Kind, msg string) error {
	return &fault{kind: k, err: errors.New(msg)}
}

// Errorf returns a classified error with a formatted message.
func Errorf(k Kind, format string, args ...any) error {
	return &fault{kind: k, err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error, preserving it for errors.Is checks
// against store sentinels. Wrapping nil returns nil.
func Wrap(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return &fault{kind: k, err: err}
}

// KindOf returns the Kind of err, or Dependency when err carries no
// classification. KindOf(nil) returns 0.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var f *fault
	if errors.As(err, &f) {
		return f.kind
	}
	return Dependency
}

// IsKind reports whether err is classified as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
