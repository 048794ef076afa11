// Package errors provides error handling for BFD.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check the taxonomy
//	if errors.Is(err, errors.ErrUnknownTag) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors forming the BFD error taxonomy. Wrap these with
// errors.Wrap() to add context while preserving the kind; check with
// errors.Is().
var (
	// ErrUnknownNamespace indicates a referenced namespace does not exist.
	ErrUnknownNamespace = New("unknown namespace")

	// ErrUnknownTag indicates a tagpath does not resolve to a tag. Distinct
	// from permission denial: the tag genuinely is not there.
	ErrUnknownTag = New("unknown tag")

	// ErrPermissionDenied indicates a capability check failed for a write,
	// delete or direct read. Select evaluation never surfaces this; it
	// filters silently instead.
	ErrPermissionDenied = New("permission denied")

	// ErrTypeMismatch indicates a comparator or value is incompatible with a
	// tag's declared type.
	ErrTypeMismatch = New("type mismatch")

	// ErrQueryConstraint indicates a structurally valid query that the engine
	// refuses to run (e.g. an unbound "missing" predicate).
	ErrQueryConstraint = New("query constraint violation")

	// ErrStorageTransient indicates a retryable storage-layer failure. The
	// store retries these internally with bounded attempts before surfacing.
	ErrStorageTransient = New("transient storage failure")

	// ErrIntegrity indicates corruption detected while replaying the event
	// log. Processing of the affected key halts rather than trusting a
	// possibly-wrong projection.
	ErrIntegrity = New("event log integrity failure")

	// ErrValueAbsent indicates no current value exists for an (object, tag)
	// pair. Absence is a fact, not an error in most paths; this sentinel is
	// for direct gets that must distinguish it.
	ErrValueAbsent = New("no value present")
)

// IsNotFound reports whether err indicates a missing namespace, tag or value.
func IsNotFound(err error) bool {
	return err != nil && IsAny(err, ErrUnknownNamespace, ErrUnknownTag, ErrValueAbsent)
}

// IsPermissionDenied reports whether err is or wraps ErrPermissionDenied.
func IsPermissionDenied(err error) bool {
	return err != nil && Is(err, ErrPermissionDenied)
}

// IsTypeMismatch reports whether err is or wraps ErrTypeMismatch.
func IsTypeMismatch(err error) bool {
	return err != nil && Is(err, ErrTypeMismatch)
}

// IsTransient reports whether err is or wraps ErrStorageTransient.
func IsTransient(err error) bool {
	return err != nil && Is(err, ErrStorageTransient)
}

// NewPermissionDenied creates a permission-denied error with a formatted message.
func NewPermissionDenied(format string, args ...interface{}) error {
	return Wrap(ErrPermissionDenied, Newf(format, args...).Error())
}

// NewTypeMismatch creates a type-mismatch error naming the declared type and
// the operator attempted.
func NewTypeMismatch(format string, args ...interface{}) error {
	return Wrap(ErrTypeMismatch, Newf(format, args...).Error())
}

// NewUnknownTag creates an unknown-tag error for the given tagpath.
func NewUnknownTag(path string) error {
	return Wrapf(ErrUnknownTag, "%s", path)
}

// NewUnknownNamespace creates an unknown-namespace error.
func NewUnknownNamespace(name string) error {
	return Wrapf(ErrUnknownNamespace, "%s", name)
}
