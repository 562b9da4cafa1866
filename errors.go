package flatrec

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core.
var (
	// ErrUnterminatedQuote is returned when a quoted field has no closing quote before EOF.
	ErrUnterminatedQuote = errors.New("flatrec: unterminated quoted field")

	// ErrDuplicateColumn is returned by Schema.AddColumn when a column name
	// collides, case-insensitively, with one already registered.
	ErrDuplicateColumn = errors.New("flatrec: duplicate column name")

	// ErrSchemaAttached is returned by Schema.AddColumn once the schema has
	// already read or written at least one record.
	ErrSchemaAttached = errors.New("flatrec: schema already in use, cannot add columns")

	// ErrNoSchemaMatch is returned by a SchemaSelector when no predicate
	// matches a record and no default schema is configured.
	ErrNoSchemaMatch = errors.New("flatrec: no schema matched record")

	// ErrWrongValueCount is returned by Schema.FormatRecord when the value
	// vector length does not equal the schema's logical column count.
	ErrWrongValueCount = errors.New("flatrec: value count does not match logical column count")

	// ErrReadingWithErrors is returned by Reader.Read and Writer.Write once
	// the stream has transitioned to the Errored state.
	ErrReadingWithErrors = errors.New("flatrec: reading with errors")

	// ErrNoValues is returned by GetValues before any record has been read
	// successfully, or after the stream is drained.
	ErrNoValues = errors.New("flatrec: no values available")

	// ErrInvalidWindow is returned when a Window's Width is less than 1 or
	// its Alignment or Truncation is not one of the defined values.
	ErrInvalidWindow = errors.New("flatrec: invalid window")

	// errNoSchemaNoHeader is returned by a reader constructor when no
	// schema was supplied and none can be inferred: a delimited reader
	// without IsFirstRecordHeader, or any fixed-width reader.
	errNoSchemaNoHeader = errors.New("flatrec: no schema supplied and none can be inferred from a header row")

	// errHeaderMismatch is returned when VerifyHeaderAgainstSchema is set
	// and the header row's tokens don't match the schema's column names.
	errHeaderMismatch = errors.New("flatrec: header row does not match schema column names")
)

// ParseError reports a syntax or shape problem with one record. It carries
// enough location information for a caller to find the offending text.
type ParseError struct {
	// PhysicalRecord is the 1-based physical record number, including
	// header and previously skipped records.
	PhysicalRecord int64

	// Raw is the unparsed record text, bounded to a diagnostic-friendly
	// length before being attached here.
	Raw string

	// Err is the underlying cause.
	Err error
}

// Error returns a formatted string describing the parse error location and cause.
func (e *ParseError) Error() string {
	return fmt.Sprintf("flatrec: record %d: %v", e.PhysicalRecord, e.Err)
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ColumnError reports a failed text-to-value conversion for one column of
// one record.
type ColumnError struct {
	// PhysicalRecord is the 1-based physical record number.
	PhysicalRecord int64

	// Column is the offending column's name.
	Column string

	// Raw is the raw field text that failed to convert, bounded in length.
	Raw string

	// Err is the underlying conversion cause.
	Err error
}

// Error returns a formatted string describing the column, record, and cause.
func (e *ColumnError) Error() string {
	return fmt.Sprintf("flatrec: record %d, column %q: %v", e.PhysicalRecord, e.Column, e.Err)
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *ColumnError) Unwrap() error {
	return e.Err
}

// boundRaw truncates raw record/field text to a diagnostic-friendly length
// so error values stay small even over pathological input.
func boundRaw(s string) string {
	const maxDiagnosticLen = 256
	if len(s) <= maxDiagnosticLen {
		return s
	}
	return s[:maxDiagnosticLen] + "…"
}
