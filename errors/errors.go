// Package errors defines the error surface of the tag data translation
// engine: a single error type tagged with a Kind that callers can switch
// on without parsing messages.
//
// Errors may be wrapped with github.com/pkg/errors on their way up; KindOf
// unwraps through those causes.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a translation failure. Every failure is fatal to the
// translation that produced it; nothing is retried.
type Kind string

const (
	// NoMatch means no (scheme, level, option) accepts the input identifier.
	NoMatch Kind = "no-match"
	// AmbiguousMatch means more than one option accepts the input identifier.
	AmbiguousMatch Kind = "ambiguous-match"
	// InvalidCharacterSet means a field value leaves its declared character set.
	InvalidCharacterSet Kind = "invalid-character-set"
	// BelowMinimum means a numeric field value is below its declared minimum.
	BelowMinimum Kind = "below-minimum"
	// AboveMaximum means a numeric field value is above its declared maximum.
	AboveMaximum Kind = "above-maximum"
	// UnsupportedCompaction means a compaction width other than 5, 6, 7 or 8.
	UnsupportedCompaction Kind = "unsupported-compaction"
	// InvalidBinary means a bit string contains characters other than 0/1,
	// or cannot be sliced into whole compaction chunks, or a value to be
	// converted to bits is not a non-negative decimal string.
	InvalidBinary Kind = "invalid-binary"
	// TableNotFound means a tablelookup rule names an unknown table, or a
	// table whose auxiliary data was not loaded.
	TableNotFound Kind = "table-not-found"
	// MissingTableKey means a tablelookup key has no entry.
	MissingTableKey Kind = "missing-table-key"
	// OutOfRange means a substring index leaves its subject.
	OutOfRange Kind = "out-of-range"
	// ArithmeticError means a rule performed arithmetic on a non-integer,
	// or divided by zero.
	ArithmeticError Kind = "arithmetic-error"
	// DuplicateField means a field or rule rebinds an already-bound name.
	DuplicateField Kind = "duplicate-field"
	// InvalidSchemeFile means a scheme definition violates an authoring
	// invariant (bad regex, bad seq, wrong binary widths, unknown function).
	InvalidSchemeFile Kind = "invalid-scheme-file"
	// InvalidArgument means an empty identifier, an unparseable hint or
	// target level, or a grammar field with no bound value.
	InvalidArgument Kind = "invalid-argument"
	// Unknown is returned by KindOf for errors that did not originate here.
	Unknown Kind = "unknown"
)

// TDTError is the single error variant produced by the engine.
type TDTError struct {
	kind Kind
	msg  string
}

func (e *TDTError) Error() string {
	return e.msg
}

// Kind returns the error's classification tag.
func (e *TDTError) Kind() Kind {
	return e.kind
}

// New returns an error of the given kind with a fixed message.
func New(kind Kind, msg string) error {
	return &TDTError{kind: kind, msg: msg}
}

// Errorf returns an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &TDTError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with msg, preserving its kind for KindOf.
func Wrap(err error, msg string) error {
	return pkgerrors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message, preserving its kind.
func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// KindOf returns the Kind of err, unwrapping pkg/errors causes. Errors that
// did not originate from this package report Unknown; nil reports Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	if te, ok := pkgerrors.Cause(err).(*TDTError); ok {
		return te.kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
