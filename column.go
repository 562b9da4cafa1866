package flatrec

import "strings"

// ColumnKind is the closed set of logical column types. Dispatch on Kind is
// a plain switch (see column_codec.go) rather than virtual calls, per
// spec §9's tagged-variant redesign note.
type ColumnKind int

const (
	Bool ColumnKind = iota
	Byte
	Short
	Int32
	Int64
	Single
	Double
	Decimal
	Char
	String
	Guid
	DateTime
	DateTimeOffset
	TimeSpan
	Enum
	ByteArray
	CharArray
	// Ignored columns consume a token on read but are not surfaced to the
	// consumer; they emit a fill token on write.
	Ignored
	// Metadata columns synthesize a value from RecordContext on read and
	// are skipped on write.
	Metadata
	// Custom columns delegate to user-supplied parse/format functions.
	Custom
)

func (k ColumnKind) String() string {
	names := [...]string{
		"Bool", "Byte", "Short", "Int32", "Int64", "Single", "Double",
		"Decimal", "Char", "String", "Guid", "DateTime", "DateTimeOffset",
		"TimeSpan", "Enum", "ByteArray", "CharArray", "Ignored", "Metadata",
		"Custom",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "ColumnKind(?)"
	}
	return names[k]
}

// MetadataKind selects what a Metadata column synthesizes on read.
type MetadataKind int

const (
	// PhysicalRecordNumber yields RecordContext.PhysicalRecordNumber.
	PhysicalRecordNumber MetadataKind = iota
	// LogicalRecordNumber yields the logical record number of the record
	// being parsed (RecordContext.LogicalRecordNumber + 1, since the
	// context's count advances only after a successful parse).
	LogicalRecordNumber
	// UnparsedRecordText yields RecordContext.RawText.
	UnparsedRecordText
)

// NullHandling describes how a column's null sentinel is recognized. The
// zero value means "empty string is null," matching spec §3's default.
type NullHandling struct {
	// Sentinel, if non-nil, is the literal text recognized as null instead
	// of the empty string. A non-nil empty string is a valid (unusual but
	// legal) sentinel distinct from "no sentinel configured."
	Sentinel *string
}

// IsNull reports whether raw should be treated as null under this policy.
func (n NullHandling) IsNull(raw string) bool {
	if n.Sentinel != nil {
		return raw == *n.Sentinel
	}
	return raw == ""
}

// NullSentinel returns a NullHandling recognizing the literal s as null.
func NullSentinel(s string) NullHandling {
	return NullHandling{Sentinel: &s}
}

// CustomCodec holds the pair of user functions a Custom column dispatches
// to, matching spec §9: "custom columns carry two function objects (parse,
// format)."
type CustomCodec struct {
	Parse  func(raw string, ctx *RecordContext) (any, error)
	Format func(value any, ctx *RecordContext) (string, error)
}

// Column is one named, typed slot in a Schema.
type Column struct {
	// Name is matched case-insensitively against other columns in the
	// same schema.
	Name string

	Kind ColumnKind

	// Null describes the column's null-sentinel policy.
	Null NullHandling

	// TrimWhitespace strips leading/trailing whitespace from raw text
	// before conversion. This is the only trimming done on read: the
	// tokenizer returns field text as written, and
	// DelimitedOptions.PreserveWhitespace affects only the writer's quoting.
	TrimWhitespace bool

	// Format is a culture/format hint: the time layout for DateTime and
	// DateTimeOffset columns (RFC 3339 when empty). No other kind reads it;
	// numeric kinds are always parsed and formatted with strconv's plain
	// base-10 settings.
	Format string

	// EnumValues, for Enum columns, maps text to the value's ordinal.
	// Unused for other kinds.
	EnumValues []string

	// Custom holds the function pair for Custom columns. Unused otherwise.
	Custom CustomCodec

	// MetaKind selects what a Metadata column synthesizes. Unused for
	// other kinds.
	MetaKind MetadataKind

	// Window is the fixed-width descriptor. Nil for delimited schemas. In a
	// fixed-width schema every non-Metadata column needs one with Width >= 1
	// (see Schema.resolvedWindow for what the options fill in).
	Window *Window
}

// Window is a fixed-width column descriptor: width, alignment, fill, and
// overflow policy.
type Window struct {
	// Width is the slice width in characters; must be >= 1.
	Width int

	// Alignment selects pad/strip side.
	Alignment Alignment

	// Fill is the pad character on write and the character stripped on
	// read.
	Fill rune

	// Truncation selects which end is dropped when formatted text exceeds
	// Width.
	Truncation TruncationPolicy
}

// Validate checks the Window for internal consistency.
func (w Window) Validate() error {
	if w.Width < 1 {
		return ErrInvalidWindow
	}
	if !w.Alignment.Valid() {
		return ErrInvalidWindow
	}
	if !w.Truncation.Valid() {
		return ErrInvalidWindow
	}
	return nil
}

// isDataBearing reports whether the column occupies a token slot whose
// text is surfaced to (and required of) the consumer. Ignored and Metadata
// columns are structural rather than data-bearing (spec §3).
func (c Column) isDataBearing() bool {
	return c.Kind != Metadata && c.Kind != Ignored
}

// nameKey normalizes a column name for case-insensitive comparison.
func nameKey(name string) string {
	return strings.ToLower(name)
}
