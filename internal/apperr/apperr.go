// Package apperr categorises failures so the HTTP boundary can pick a status
// without knowing which layer produced them.
package apperr

import (
	"errors"
	"fmt"

	"tubeshelf/internal/store"
	"tubeshelf/internal/validation"
)

// Kind classifies an error.
type Kind int

const (
	Internal Kind = iota
	Invalid
	NotFound
	Conflict
	Forbidden
	Unauthorized
	Integrity
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Unauthorized:
		return "unauthorized"
	case Integrity:
		return "integrity"
	default:
		return "internal"
	}
}

// Error is a categorised failure raised by a named operation.
type Error struct {
	Op     string
	Kind   Kind
	Fields validation.Errors
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case len(e.Fields) > 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Fields)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return nil
}

// E builds an Error of the given kind wrapping err.
func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// InvalidFields reports per-field validation failures. A nil or empty list yields nil.
func InvalidFields(op string, fields validation.Errors) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Op: op, Kind: Invalid, Fields: fields}
}

// Field is shorthand for a single-field validation failure.
func Field(op, field, message string) error {
	return InvalidFields(op, validation.Errors{{Field: field, Message: message}})
}

// KindOf returns the kind of the outermost categorised error in err's chain.
// Uncategorised errors are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return Invalid
	}
	return Internal
}

// FieldsOf returns the validation failures carried by err, if any.
func FieldsOf(err error) validation.Errors {
	var e *Error
	if errors.As(err, &e) && len(e.Fields) > 0 {
		return e.Fields
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return fields
	}
	return nil
}

// FromStore categorises an error returned by the store.
func FromStore(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return E(op, NotFound, err)
	case errors.Is(err, store.ErrMultipleFound):
		return E(op, Integrity, err)
	case errors.Is(err, store.ErrPlaylistChanged):
		return E(op, Conflict, err)
	default:
		return E(op, Internal, err)
	}
}
