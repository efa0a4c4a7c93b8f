// Package rpmdb implements a package database engine: a backend-abstracted
// key/value store for installed-package headers and secondary indexes, plus a
// transaction ordering engine that turns a dependency graph into a linear
// install/erase order.
package rpmdb

import (
	"errors"
	"strings"
)

// Error is the rpmdb error domain type.
//
// Errors coming from rpmdb components should be inspectable as ([errors.As])
// an *Error at some point in the error chain.
//
// Implementers of rpmdb components should create an Error at the system
// boundary (e.g. when using a backend or reading a file) and intermediate
// layers should not wrap in another Error except to add additional
// [ErrorKind] information. That is to say, use [fmt.Errorf] with a "%w" verb
// in preference to creating a containing Error.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrNotFound, ErrFormatCorrupt, ErrIoError, ErrReadOnly,
		ErrBusy, ErrInvalid, ErrNoMem, ErrUnsupported:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Is enables [errors.Is].
//
// It compares the error kind. Callers should compare against a declared
// [ErrorKind] over a specific error.
func (e *Error) Is(kind error) bool {
	return errors.Is(e.Kind, kind)
}

// Unwrap enables [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Inner
}

// ErrorKind represents classes of errors to be checked against, per the
// taxonomy in §7 of the design: the sense of the failure, not a concrete Go
// type.
type ErrorKind string

// Error implements error so an [ErrorKind] can be used directly with
// [errors.Is].
func (k ErrorKind) Error() string { return string(k) }

// Defined error kinds.
var (
	ErrNotFound      = ErrorKind("not found")      // key absent; normal control flow
	ErrFormatCorrupt = ErrorKind("format corrupt")  // on-disk bytes violate the format contract
	ErrIoError       = ErrorKind("io error")        // underlying syscall failed
	ErrReadOnly      = ErrorKind("read only")       // write attempted on a read-only backend
	ErrBusy          = ErrorKind("busy")            // another process holds the environment lock
	ErrInvalid       = ErrorKind("invalid")         // caller misuse
	ErrNoMem         = ErrorKind("no memory")       // allocation failure, fatal
	ErrUnsupported   = ErrorKind("unsupported")     // feature requested but backend lacks it
)
