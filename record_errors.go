package flatrec

import (
	multierror "github.com/hashicorp/go-multierror"
)

// ColumnErrorHandler is consulted for every ColumnError. Returning
// handled=false promotes the error to a record-level error that aborts the
// record; returning handled=true with substitute supplies the value used
// in the parsed vector. Handlers are tried in registration order; the
// first one that returns handled=true wins, matching spec §9's
// Handled(value?) | Unhandled result type folded with short-circuit
// semantics.
type ColumnErrorHandler func(ctx *RecordContext, err *ColumnError) (handled bool, substitute any)

// RecordErrorHandler is consulted for every RecordError (SyntaxError,
// RecordShapeError, SchemaSelectionError, or a promoted unhandled
// ColumnError). Returning handled=true suppresses the record — the stream
// continues without incrementing LogicalRecordNumber; returning false
// promotes the error to fatal and moves the stream to Errored.
type RecordErrorHandler func(ctx *RecordContext, err *ParseError) (handled bool)

// ErrorDispatcher fans out column- and record-level error events and
// tracks the "handled" outcome, per spec §4.8.
type ErrorDispatcher struct {
	columnHandlers []ColumnErrorHandler
	recordHandlers []RecordErrorHandler

	// aggregated accumulates every handled ColumnError and every handled
	// record-level ParseError across the life of the dispatcher, for callers who want a post-hoc multierror view
	// (e.g. a batch job reporting "312 rows had substituted columns").
	aggregated *multierror.Error
}

// NewErrorDispatcher returns a dispatcher with no handlers registered: by
// default every error is fatal, matching spec §7's "any error that escapes
// its event handler aborts the stream."
func NewErrorDispatcher() *ErrorDispatcher {
	return &ErrorDispatcher{}
}

// OnColumnError registers h to be consulted on every ColumnError.
func (d *ErrorDispatcher) OnColumnError(h ColumnErrorHandler) {
	d.columnHandlers = append(d.columnHandlers, h)
}

// OnRecordError registers h to be consulted on every RecordError.
func (d *ErrorDispatcher) OnRecordError(h RecordErrorHandler) {
	d.recordHandlers = append(d.recordHandlers, h)
}

// dispatchColumnError runs the registered column handlers in order,
// returning the first handled=true result. A handled error is appended to
// the dispatcher's aggregated multierror so it remains inspectable after
// the stream moves on to later columns/records.
func (d *ErrorDispatcher) dispatchColumnError(ctx *RecordContext, err *ColumnError) (handled bool, substitute any) {
	for _, h := range d.columnHandlers {
		if ok, sub := h(ctx, err); ok {
			d.aggregated = multierror.Append(d.aggregated, err)
			return true, sub
		}
	}
	return false, nil
}

// dispatchRecordError runs the registered record handlers in order,
// returning true (suppressed) on the first handled=true result.
func (d *ErrorDispatcher) dispatchRecordError(ctx *RecordContext, err *ParseError) bool {
	for _, h := range d.recordHandlers {
		if h(ctx, err) {
			d.aggregated = multierror.Append(d.aggregated, err)
			return true
		}
	}
	return false
}

// Aggregated returns every handled error seen so far, or nil if none have
// occurred. The returned error is safe to inspect with errors.Is/As across
// its wrapped members.
func (d *ErrorDispatcher) Aggregated() error {
	if d.aggregated == nil || len(d.aggregated.Errors) == 0 {
		return nil
	}
	return d.aggregated.ErrorOrNil()
}
