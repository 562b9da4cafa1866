package flatrec

// RecordContext is the per-record state handed to codecs, Metadata column
// synthesis, and error events. An ExecutionContext (schema + options) is
// shared across every record of one stream; RecordContext is rebuilt, or
// its mutable fields reset, for each record.
type RecordContext struct {
	// Schema is the schema in effect for this record (selected per-record
	// when a SchemaSelector is attached).
	Schema *Schema

	// RawText is the unparsed record text, as tokenized.
	RawText string

	// RawFields is the raw token vector produced by the tokenizer.
	RawFields []string

	// Values is the parsed value vector, valid after a successful parse.
	Values []any

	// PhysicalRecordNumber counts every raw record consumed, including
	// skipped and header records, starting at 1.
	PhysicalRecordNumber int64

	// LogicalRecordNumber counts only successfully parsed, non-skipped,
	// non-header records, starting at 1.
	LogicalRecordNumber int64

	// ColumnErrors accumulates handled ColumnError values for the current
	// record; see ErrorDispatcher.
	ColumnErrors []*ColumnError
}

// metadataValue synthesizes the value for a Metadata column from the
// current context, without consuming a raw field.
func (ctx *RecordContext) metadataValue(col Column) any {
	switch col.MetaKind {
	case LogicalRecordNumber:
		// The context's count advances only after a successful parse, so the
		// record being parsed is the next number.
		return ctx.LogicalRecordNumber + 1
	case UnparsedRecordText:
		return ctx.RawText
	case PhysicalRecordNumber:
		fallthrough
	default:
		return ctx.PhysicalRecordNumber
	}
}
