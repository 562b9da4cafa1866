package flatrec

import (
	"context"
	"io"
)

// WriteRecordReadFunc is consulted before a typed record is formatted,
// mirroring Reader's RecordReadFunc but without skip/suppression — headers
// are written explicitly by the caller, not inferred (spec §4.7).
type WriteRecordReadFunc func(ctx *RecordContext, values []any)

// WriteRecordWrittenFunc is consulted after a record's raw fields have
// been formatted and handed to the emitter.
type WriteRecordWrittenFunc func(ctx *RecordContext, raw []string)

// Writer drives a Schema (or SchemaSelector) and an emitter to consume a
// one-way sequence of typed records and produce raw text, the mirror of
// Reader (spec §4.7).
type Writer struct {
	em       recordEmitter
	schema   *Schema
	selector *SchemaSelector
	disp     *ErrorDispatcher

	state streamState
	ctx   RecordContext

	onRecordRead    WriteRecordReadFunc
	onRecordWritten WriteRecordWrittenFunc
}

// NewDelimitedWriter returns a Writer over w under opts, using schema to
// format records.
func NewDelimitedWriter(w io.Writer, opts DelimitedOptions, schema *Schema) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newWriter(newDelimitedEmitter(w, opts), schema, nil), nil
}

// NewDelimitedSelectingWriter is like NewDelimitedWriter but chooses a
// schema per record via selector.
func NewDelimitedSelectingWriter(w io.Writer, opts DelimitedOptions, selector *SchemaSelector) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newWriter(newDelimitedEmitter(w, opts), nil, selector), nil
}

// NewFixedWidthWriter returns a Writer over w under opts, using schema
// (whose columns must already carry resolved Windows) to format records.
func NewFixedWidthWriter(w io.Writer, opts FixedWidthOptions, schema *Schema) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newWriter(newFixedWidthEmitter(w, opts), schema, nil), nil
}

func newWriter(em recordEmitter, schema *Schema, selector *SchemaSelector) *Writer {
	return &Writer{em: em, schema: schema, selector: selector, disp: NewErrorDispatcher()}
}

// Dispatcher returns the writer's ErrorDispatcher so callers can register
// handlers before the first Write.
func (w *Writer) Dispatcher() *ErrorDispatcher {
	return w.disp
}

// OnRecordRead registers fn to run before formatting.
func (w *Writer) OnRecordRead(fn WriteRecordReadFunc) {
	w.onRecordRead = fn
}

// OnRecordWritten registers fn to run after a record's raw fields are
// handed to the emitter.
func (w *Writer) OnRecordWritten(fn WriteRecordWrittenFunc) {
	w.onRecordWritten = fn
}

// WriteHeader writes schema's column names as a single record, skipping
// Metadata columns (which never occupy a write-side slot). Headers are
// never written automatically; callers opt in explicitly (spec §4.7).
func (w *Writer) WriteHeader(ctx context.Context, schema *Schema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var names []string
	for _, c := range schema.Columns() {
		if c.Kind == Metadata {
			continue
		}
		names = append(names, c.Name)
	}
	w.ctx.PhysicalRecordNumber++
	return w.em.WriteRecord(names)
}

// Write formats values through the attached (or selected) schema and
// writes the resulting raw fields. ctx is consulted only between records.
func (w *Writer) Write(ctx context.Context, values []any) error {
	if w.state == stateErrored {
		return ErrReadingWithErrors
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.state = stateStreaming

	schema, err := w.resolveSchema(values)
	if err != nil {
		w.ctx.PhysicalRecordNumber++
		pe := &ParseError{PhysicalRecord: w.ctx.PhysicalRecordNumber, Err: err}
		if w.disp.dispatchRecordError(&w.ctx, pe) {
			return nil
		}
		w.state = stateErrored
		return pe
	}
	w.ctx.Schema = schema
	w.ctx.Values = values
	w.ctx.PhysicalRecordNumber++

	if w.onRecordRead != nil {
		w.onRecordRead(&w.ctx, values)
	}

	raw, err := schema.FormatRecord(&w.ctx, values)
	if err != nil {
		pe := &ParseError{PhysicalRecord: w.ctx.PhysicalRecordNumber, Err: err}
		if w.disp.dispatchRecordError(&w.ctx, pe) {
			return nil
		}
		w.state = stateErrored
		return pe
	}
	w.ctx.RawFields = raw

	if err := w.em.WriteRecord(raw); err != nil {
		w.state = stateErrored
		return err
	}

	w.ctx.LogicalRecordNumber++
	if w.onRecordWritten != nil {
		w.onRecordWritten(&w.ctx, raw)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.em.Flush()
}

func (w *Writer) resolveSchema(values []any) (*Schema, error) {
	if w.selector != nil {
		return w.selector.SelectForWrite(values)
	}
	return w.schema, nil
}
