// Package flatreclog provides an optional structured-logging hook for a
// flatrec Reader or Writer, built on logrus. It is kept separate from the
// core package because logging is an ambient concern external to the
// tokenizer/schema/error-dispatch core (spec §1): nothing in flatrec
// imports this package, and a caller who doesn't want logrus in their
// import graph never imports it either.
package flatreclog

import (
	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/flatrec"
)

// Logger is the subset of logrus.FieldLogger this package needs, so a
// caller can substitute any compatible logger (or a *logrus.Logger,
// *logrus.Entry, or the package-level logrus functions via a thin
// wrapper).
type Logger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

// AttachToReader registers column- and record-error handlers on r's
// ErrorDispatcher that log one structured event per error before
// returning unhandled (nil substitute, not-handled) — it observes errors,
// it does not suppress them. Attach application-specific suppression
// handlers separately if needed; handler order is registration order
// (spec §4.8), so register those before or after AttachToReader depending
// on whether logging should see the final or raw outcome.
func AttachToReader(r *flatrec.Reader, log Logger) {
	disp := r.Dispatcher()
	disp.OnColumnError(func(ctx *flatrec.RecordContext, err *flatrec.ColumnError) (bool, any) {
		log.WithFields(logrus.Fields{
			"physical_record": err.PhysicalRecord,
			"column":          err.Column,
			"raw":             err.Raw,
			"cause":           err.Err,
		}).Warn("flatrec: column conversion failed")
		return false, nil
	})
	disp.OnRecordError(func(ctx *flatrec.RecordContext, err *flatrec.ParseError) bool {
		log.WithFields(logrus.Fields{
			"physical_record": err.PhysicalRecord,
			"raw":             err.Raw,
			"cause":           err.Err,
		}).Error("flatrec: record-level error")
		return false
	})
}

// AttachToWriter registers column- and record-error handlers on w's
// ErrorDispatcher that log one structured event per error without
// suppressing it. The Writer reports formatting failures as record-level
// errors, so the record-error handler is the one that logs them.
func AttachToWriter(w *flatrec.Writer, log Logger) {
	disp := w.Dispatcher()
	disp.OnColumnError(func(ctx *flatrec.RecordContext, err *flatrec.ColumnError) (bool, any) {
		log.WithFields(logrus.Fields{
			"physical_record": err.PhysicalRecord,
			"column":          err.Column,
			"raw":             err.Raw,
			"cause":           err.Err,
		}).Warn("flatrec: column conversion failed")
		return false, nil
	})
	disp.OnRecordError(func(ctx *flatrec.RecordContext, err *flatrec.ParseError) bool {
		log.WithFields(logrus.Fields{
			"physical_record": err.PhysicalRecord,
			"raw":             err.Raw,
			"cause":           err.Err,
		}).Error("flatrec: record-level error")
		return false
	})
}
