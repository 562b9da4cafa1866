package flatrec

import (
	"context"
	"errors"
	"io"
)

// recordTokenizer is satisfied by both DelimitedTokenizer and
// FixedWindowTokenizer: one record in, raw fields and the unparsed span
// out.
type recordTokenizer interface {
	TokenizeRecord() (fields []string, raw string, err error)
}

// RecordReadFunc is consulted after a record is tokenized but before it is
// parsed. Returning skip=true drops the record: LogicalRecordNumber is not
// incremented and the loop continues to the next record.
type RecordReadFunc func(ctx *RecordContext) (skip bool)

// RecordParsedFunc is consulted after a record is successfully parsed.
type RecordParsedFunc func(ctx *RecordContext)

// Reader drives a tokenizer and a Schema (or SchemaSelector) to produce a
// one-way sequence of typed records, per spec §4.7.
//
// A Reader is owned by one goroutine for its entire lifetime; concurrent
// calls on a single instance are undefined, matching the teacher's
// single-owner Reader/Writer.
type Reader struct {
	tok      recordTokenizer
	schema   *Schema
	selector *SchemaSelector
	disp     *ErrorDispatcher

	isFirstRecordHeader      bool
	verifyHeaderAgainstSchema bool

	state streamState
	ctx   RecordContext

	onRecordRead   RecordReadFunc
	onRecordParsed RecordParsedFunc
}

// NewDelimitedReader returns a Reader over r under opts, using schema to
// parse records. schema may be nil only if opts.IsFirstRecordHeader is
// true, in which case a schema of untyped string columns is inferred from
// the header row (spec §3 Lifecycle).
func NewDelimitedReader(r io.Reader, opts DelimitedOptions, schema *Schema) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if schema == nil && !opts.IsFirstRecordHeader {
		return nil, errNoSchemaNoHeader
	}
	tok := NewDelimitedTokenizer(NewRetryReader(r), opts)
	return newReader(tok, schema, nil, opts.IsFirstRecordHeader, opts.VerifyHeaderAgainstSchema), nil
}

// NewDelimitedSelectingReader is like NewDelimitedReader but chooses a
// schema per record via selector; schema inference from a header row is
// not available in this mode (there is no single schema to attach
// inferred columns to).
func NewDelimitedSelectingReader(r io.Reader, opts DelimitedOptions, selector *SchemaSelector) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tok := NewDelimitedTokenizer(NewRetryReader(r), opts)
	return newReader(tok, nil, selector, opts.IsFirstRecordHeader, false), nil
}

// NewFixedWidthReader returns a Reader over r under opts, using schema
// (whose columns must already carry resolved Windows; see
// NewFixedWidthSchema) to slice and parse records.
func NewFixedWidthReader(r io.Reader, opts FixedWidthOptions, schema *Schema) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, errNoSchemaNoHeader
	}
	windows := windowsOf(schema)
	tok := NewFixedWindowTokenizer(NewRetryReader(r), windows, opts)
	return newReader(tok, schema, nil, opts.IsFirstRecordHeader, false), nil
}

func windowsOf(schema *Schema) []Window {
	var windows []Window
	for _, c := range schema.Columns() {
		if c.Kind == Metadata {
			continue
		}
		if c.Window != nil {
			windows = append(windows, *c.Window)
		} else {
			windows = append(windows, Window{Width: 1, Alignment: LeftAligned, Fill: ' ', Truncation: TruncateTrailing})
		}
	}
	return windows
}

func newReader(tok recordTokenizer, schema *Schema, selector *SchemaSelector, isFirstRecordHeader, verifyHeader bool) *Reader {
	return &Reader{
		tok:                       tok,
		schema:                    schema,
		selector:                  selector,
		disp:                      NewErrorDispatcher(),
		isFirstRecordHeader:       isFirstRecordHeader,
		verifyHeaderAgainstSchema: verifyHeader,
	}
}

// Dispatcher returns the reader's ErrorDispatcher so callers can register
// column/record error handlers before the first Read.
func (r *Reader) Dispatcher() *ErrorDispatcher {
	return r.disp
}

// OnRecordRead registers fn to run after tokenization, before parsing.
func (r *Reader) OnRecordRead(fn RecordReadFunc) {
	r.onRecordRead = fn
}

// OnRecordParsed registers fn to run after a successful parse.
func (r *Reader) OnRecordParsed(fn RecordParsedFunc) {
	r.onRecordParsed = fn
}

// Schema returns the schema currently attached to the reader: either the
// one supplied at construction, the one inferred from a header row, or
// (with a selector) the schema chosen for the most recently read record.
func (r *Reader) Schema() *Schema {
	if r.selector != nil {
		return r.ctx.Schema
	}
	return r.schema
}

// Read advances to the next record, returning false at EOF or once the
// stream has moved to Errored. ctx is consulted only between records (spec
// §5 Cancellation).
func (r *Reader) Read(ctx context.Context) (bool, error) {
	if r.state == stateErrored {
		return false, ErrReadingWithErrors
	}
	if r.state == stateDrained {
		return false, io.EOF
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if r.state == stateFresh {
		if err := r.handleHeader(); err != nil {
			r.state = stateErrored
			return false, err
		}
		r.state = stateHeaderHandled
	}
	r.state = stateStreaming

	for {
		fields, raw, err := r.tok.TokenizeRecord()
		if err == io.EOF {
			r.state = stateDrained
			return false, nil
		}
		if err != nil {
			if errors.Is(err, ErrUnterminatedQuote) || errors.Is(err, ErrShortRecord) {
				// Syntax errors are record-level and go through the dispatcher.
				r.ctx.PhysicalRecordNumber++
				r.ctx.RawFields = nil
				r.ctx.RawText = raw
				pe := &ParseError{PhysicalRecord: r.ctx.PhysicalRecordNumber, Raw: boundRaw(raw), Err: err}
				if r.disp.dispatchRecordError(&r.ctx, pe) {
					continue
				}
				r.state = stateErrored
				return false, pe
			}
			r.state = stateErrored
			return false, err
		}

		r.ctx.PhysicalRecordNumber++
		r.ctx.RawFields = fields
		r.ctx.RawText = raw

		schema, err := r.resolveSchema(fields)
		if err != nil {
			pe := &ParseError{PhysicalRecord: r.ctx.PhysicalRecordNumber, Raw: boundRaw(raw), Err: err}
			if r.disp.dispatchRecordError(&r.ctx, pe) {
				continue
			}
			r.state = stateErrored
			return false, pe
		}
		r.ctx.Schema = schema

		if r.onRecordRead != nil && r.onRecordRead(&r.ctx) {
			continue
		}

		values, err := schema.ParseRecord(&r.ctx, r.disp)
		if err != nil {
			r.state = stateErrored
			return false, err
		}
		if values == nil {
			// Record-level error was handled (suppressed); move on without
			// incrementing the logical record number.
			continue
		}

		r.ctx.LogicalRecordNumber++
		if r.onRecordParsed != nil {
			r.onRecordParsed(&r.ctx)
		}
		return true, nil
	}
}

// GetValues returns a defensive copy of the current value vector. It is an
// error to call before the first successful Read or after Drained.
func (r *Reader) GetValues() ([]any, error) {
	if r.ctx.Values == nil || r.state == stateDrained {
		return nil, ErrNoValues
	}
	out := make([]any, len(r.ctx.Values))
	copy(out, r.ctx.Values)
	return out, nil
}

// PhysicalRecordNumber returns the count of raw records consumed so far,
// including header and skipped records.
func (r *Reader) PhysicalRecordNumber() int64 { return r.ctx.PhysicalRecordNumber }

// LogicalRecordNumber returns the count of successfully parsed,
// non-skipped, non-header records so far.
func (r *Reader) LogicalRecordNumber() int64 { return r.ctx.LogicalRecordNumber }

func (r *Reader) resolveSchema(fields []string) (*Schema, error) {
	if r.selector != nil {
		return r.selector.SelectForRead(fields)
	}
	return r.schema, nil
}

// handleHeader runs the Fresh -> HeaderHandled transition described in
// spec §4.7: infer a schema from the header tokens, discard a header
// against a pre-supplied schema (optionally verifying it), or do nothing.
func (r *Reader) handleHeader() error {
	if !r.isFirstRecordHeader {
		return nil
	}

	fields, raw, err := r.tok.TokenizeRecord()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	r.ctx.PhysicalRecordNumber++
	r.ctx.RawText = raw

	if r.schema == nil {
		schema := NewSchema()
		for _, name := range fields {
			if _, err := schema.AddColumn(Column{Name: name, Kind: String}); err != nil {
				return err
			}
		}
		r.schema = schema
		return nil
	}

	if r.verifyHeaderAgainstSchema {
		cols := r.schema.Columns()
		var dataCols []Column
		for _, c := range cols {
			if c.Kind != Metadata {
				dataCols = append(dataCols, c)
			}
		}
		mismatch := len(fields) != len(dataCols)
		if !mismatch {
			for i, name := range fields {
				if nameKey(name) != nameKey(dataCols[i].Name) {
					mismatch = true
					break
				}
			}
		}
		if mismatch {
			pe := &ParseError{PhysicalRecord: r.ctx.PhysicalRecordNumber, Raw: boundRaw(raw), Err: errHeaderMismatch}
			if !r.disp.dispatchRecordError(&r.ctx, pe) {
				return pe
			}
		}
	}
	return nil
}
