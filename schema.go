package flatrec

import "fmt"

// Schema is an ordered, uniquely-named sequence of Columns. It drives both
// parsing (raw tokens -> typed values) and formatting (typed values -> raw
// tokens).
//
// Once a record has been read or written through a Schema, AddColumn fails
// with ErrSchemaAttached: columns may not be added mid-stream (spec §3).
type Schema struct {
	columns []Column
	index   map[string]int
	attached bool

	// fixedWidth is set by NewFixedWidthSchema; it governs whether
	// AddColumn requires a Window and how resolvedWindow fills in defaults.
	fixedWidth bool
	fwOpts     FixedWidthOptions
}

// NewSchema returns an empty schema for a delimited reader/writer.
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// NewFixedWidthSchema returns an empty schema for a fixed-width
// reader/writer. Every non-Metadata column added to it needs a Window with
// Width >= 1; a zero Fill in that Window is taken from opts.DefaultFill.
func NewFixedWidthSchema(opts FixedWidthOptions) *Schema {
	return &Schema{index: make(map[string]int), fixedWidth: true, fwOpts: opts}
}

// AddColumn appends col (and, for fixed-width schemas, its Window) to the
// schema and returns the schema for chaining. It fails if col.Name
// duplicates an existing column case-insensitively, or if the schema has
// already been used.
func (s *Schema) AddColumn(col Column) (*Schema, error) {
	if s.attached {
		return s, ErrSchemaAttached
	}
	key := nameKey(col.Name)
	if _, exists := s.index[key]; exists {
		return s, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
	}
	if s.fixedWidth && col.Kind != Metadata {
		w := s.resolvedWindow(col)
		if err := w.Validate(); err != nil {
			return s, err
		}
		col.Window = &w
	}
	s.index[key] = len(s.columns)
	s.columns = append(s.columns, col)
	return s, nil
}

// resolvedWindow builds a column's Window. A column with its own Window
// keeps that Window's Width, Alignment and Truncation as given (the zero
// values are LeftAligned and TruncateTrailing); only a zero Fill is
// replaced by the options' DefaultFill. A column without a Window gets the
// options' default alignment, fill and truncation but a Width of 0, which
// AddColumn then rejects with ErrInvalidWindow.
func (s *Schema) resolvedWindow(col Column) Window {
	w := Window{
		Alignment:  s.fwOpts.DefaultAlignment,
		Fill:       s.fwOpts.DefaultFill,
		Truncation: s.fwOpts.DefaultTruncation,
	}
	if col.Window != nil {
		w = *col.Window
		if w.Fill == 0 {
			w.Fill = s.fwOpts.DefaultFill
		}
	}
	return w
}

// Columns returns a read-only ordered view of the schema's columns.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// ColumnByName returns the column registered under name (case-insensitive)
// and whether it was found.
func (s *Schema) ColumnByName(name string) (Column, bool) {
	i, ok := s.index[nameKey(name)]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// PhysicalCount is the total number of columns, in order.
func (s *Schema) PhysicalCount() int {
	return len(s.columns)
}

// MetadataCount is the number of Metadata columns.
func (s *Schema) MetadataCount() int {
	n := 0
	for _, c := range s.columns {
		if c.Kind == Metadata {
			n++
		}
	}
	return n
}

// LogicalCount is PhysicalCount minus MetadataCount.
func (s *Schema) LogicalCount() int {
	return s.PhysicalCount() - s.MetadataCount()
}

// markAttached flips the schema into "in use" state; subsequent AddColumn
// calls fail. Idempotent.
func (s *Schema) markAttached() {
	s.attached = true
}

// ParseRecord converts ctx.RawFields into a value vector per spec §4.5.
//
// It reports a *ParseError wrapping ErrWrongValueCount (really a "too few
// raw fields" shape error) if len(RawFields) + MetadataCount < PhysicalCount.
// Per-column failures are routed through disp; if a ColumnError is handled,
// its substitute value is used and parsing continues; if unhandled, the
// whole record is reported as a record-level error via disp and parsing
// stops at that column.
func (s *Schema) ParseRecord(ctx *RecordContext, disp *ErrorDispatcher) ([]any, error) {
	s.markAttached()

	if len(ctx.RawFields)+s.MetadataCount() < s.PhysicalCount() {
		err := fmt.Errorf("%w: have %d raw fields, need %d", ErrWrongValueCount,
			len(ctx.RawFields), s.PhysicalCount()-s.MetadataCount())
		pe := &ParseError{PhysicalRecord: ctx.PhysicalRecordNumber, Raw: boundRaw(ctx.RawText), Err: err}
		if disp.dispatchRecordError(ctx, pe) {
			return nil, nil
		}
		return nil, pe
	}

	values := make([]any, 0, s.LogicalCount())
	fieldIdx := 0
	ctx.ColumnErrors = ctx.ColumnErrors[:0]

	for _, col := range s.columns {
		if col.Kind == Metadata {
			values = append(values, ctx.metadataValue(col))
			continue
		}
		raw := ctx.RawFields[fieldIdx]
		fieldIdx++

		val, err := parseColumn(col, raw, ctx)
		if err != nil {
			ce := &ColumnError{PhysicalRecord: ctx.PhysicalRecordNumber, Column: col.Name, Raw: boundRaw(raw), Err: err}
			handled, substitute := disp.dispatchColumnError(ctx, ce)
			if !handled {
				pe := &ParseError{PhysicalRecord: ctx.PhysicalRecordNumber, Raw: boundRaw(ctx.RawText), Err: ce}
				if disp.dispatchRecordError(ctx, pe) {
					return nil, nil
				}
				return nil, pe
			}
			ctx.ColumnErrors = append(ctx.ColumnErrors, ce)
			val = substitute
		}
		values = append(values, val)
	}

	ctx.Values = values
	return values, nil
}

// FormatRecord converts a logical value vector into a raw field vector,
// per spec §4.5. It rejects len(values) != LogicalCount.
func (s *Schema) FormatRecord(ctx *RecordContext, values []any) ([]string, error) {
	s.markAttached()

	if len(values) != s.LogicalCount() {
		return nil, fmt.Errorf("%w: have %d values, need %d", ErrWrongValueCount, len(values), s.LogicalCount())
	}

	raw := make([]string, 0, s.PhysicalCount())
	valIdx := 0
	for _, col := range s.columns {
		if col.Kind == Metadata {
			continue
		}
		var val any
		if col.Kind != Ignored {
			val = values[valIdx]
		}
		valIdx++

		text, err := formatColumn(col, val, ctx)
		if err != nil {
			return nil, &ColumnError{PhysicalRecord: ctx.PhysicalRecordNumber, Column: col.Name, Err: err}
		}
		raw = append(raw, text)
	}
	return raw, nil
}
