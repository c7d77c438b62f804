// Package apperror classifies failures so callers can decide between
// retrying, reporting a validation message or giving up.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind string

const (
	KindInternal    Kind = "internal"
	KindNotFound    Kind = "not_found"
	KindPermission  Kind = "permission"
	KindUnavailable Kind = "unavailable"
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrInternal    = &Error{Kind: KindInternal}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrPermission  = &Error{Kind: KindPermission}
	ErrUnavailable = &Error{Kind: KindUnavailable}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrConflict    = &Error{Kind: KindConflict}
)

// Error carries a kind, the failing operation and the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same kind. It lets the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == "" && t.Err == nil
}

// New builds an *Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap attaches a kind and operation to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal
// for unclassified errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
