package flatrec

import "fmt"

// Alignment selects which side of a fixed-width window a value is padded
// toward, and correspondingly which side fill characters are stripped from
// on read.
type Alignment int

const (
	// LeftAligned pads on the right (fill trails the value); on read,
	// trailing fill is stripped.
	LeftAligned Alignment = iota
	// RightAligned pads on the left (fill leads the value); on read,
	// leading fill is stripped.
	RightAligned
)

func (a Alignment) String() string {
	switch a {
	case LeftAligned:
		return "LeftAligned"
	case RightAligned:
		return "RightAligned"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// Valid reports whether a is one of the closed set of Alignment values.
func (a Alignment) Valid() bool {
	return a == LeftAligned || a == RightAligned
}

// TruncationPolicy selects which end of an overlong formatted value is
// dropped when it does not fit a fixed-width Window.
type TruncationPolicy int

const (
	// TruncateTrailing drops characters from the end, keeping the prefix.
	TruncateTrailing TruncationPolicy = iota
	// TruncateLeading drops characters from the start, keeping the suffix.
	TruncateLeading
)

func (p TruncationPolicy) String() string {
	switch p {
	case TruncateTrailing:
		return "TruncateTrailing"
	case TruncateLeading:
		return "TruncateLeading"
	default:
		return fmt.Sprintf("TruncationPolicy(%d)", int(p))
	}
}

// Valid reports whether p is one of the closed set of TruncationPolicy values.
func (p TruncationPolicy) Valid() bool {
	return p == TruncateTrailing || p == TruncateLeading
}

// recordSeparatorAuto is the sentinel RecordSeparator value meaning "infer
// from the first line ending encountered" (spec: one of \r, \n, \r\n).
const recordSeparatorAuto = ""

// autoRecordSeparatorCandidates lists the terminators tried, longest and
// most common first, when inferring the record separator. Grounded on
// permissivecsv's priority rule: longer tokens first, then the more
// conventional of same-length tokens (unix \n before bare \r).
var autoRecordSeparatorCandidates = []string{"\r\n", "\n", "\r"}

// DelimitedOptions configures a delimited (separator-based) reader or
// writer. The zero value is not valid; use NewDelimitedOptions.
type DelimitedOptions struct {
	// Separator is the non-empty field separator. Default ",".
	Separator string

	// RecordSeparator is the record terminator, or "" to infer from the
	// first line ending encountered (one of \r\n, \n, \r).
	RecordSeparator string

	// Quote is the quote character. Default '"'.
	Quote rune

	// IsFirstRecordHeader treats the first record as a header: either the
	// schema's own column names (when a schema is attached) or, with no
	// schema configured, the source of inferred untyped string columns.
	IsFirstRecordHeader bool

	// PreserveWhitespace affects writing only: when false, the writer quotes
	// any field with leading or trailing whitespace. The tokenizer never
	// trims field text; Column.TrimWhitespace trims on read.
	PreserveWhitespace bool

	// Partitioned switches off quote interpretation entirely: fields are
	// split purely on Separator/RecordSeparator, never-quote tokenization
	// (spec §9, open question, resolved in the "never-quote" direction).
	Partitioned bool

	// AllowEmbeddedLineEndings permits carriage-return and line-feed
	// characters inside a quoted field. When false, either character inside
	// quotes makes the tokenizer fail with ErrUnterminatedQuote. Other
	// record-separator text inside quotes is always kept literally.
	AllowEmbeddedLineEndings bool

	// VerifyHeaderAgainstSchema, when true and both IsFirstRecordHeader and
	// a schema are set, checks the header's tokens against the schema's
	// column names and raises a handleable RecordError on mismatch
	// (spec §9 "SHOULD optionally verify").
	VerifyHeaderAgainstSchema bool
}

// NewDelimitedOptions returns the documented defaults: comma separator,
// double-quote, record separator inferred from input.
func NewDelimitedOptions() DelimitedOptions {
	return DelimitedOptions{
		Separator:       ",",
		RecordSeparator: recordSeparatorAuto,
		Quote:           '"',
	}
}

// Validate checks the option set for internal consistency.
func (o DelimitedOptions) Validate() error {
	if o.Separator == "" {
		return fmt.Errorf("flatrec: DelimitedOptions.Separator must be non-empty")
	}
	if !o.Partitioned {
		if o.Quote == 0 {
			return fmt.Errorf("flatrec: DelimitedOptions.Quote must be set unless Partitioned")
		}
		if containsRune(o.Separator, o.Quote) {
			return fmt.Errorf("flatrec: DelimitedOptions.Quote must not appear in Separator")
		}
	}
	if o.RecordSeparator != recordSeparatorAuto && containsSubstring(o.RecordSeparator, o.Separator) {
		return fmt.Errorf("flatrec: DelimitedOptions.RecordSeparator must not contain Separator")
	}
	return nil
}

// FixedWidthOptions configures a fixed-width reader or writer.
type FixedWidthOptions struct {
	// DefaultFill is the fill character used for columns whose Window does
	// not set its own. Default ' '.
	DefaultFill rune

	// DefaultAlignment is applied by Schema.AddColumn only to a column
	// added without a Window, and such a column has no Width and is
	// rejected. A column's own Window alignment, including the zero value
	// LeftAligned, is always used as given.
	DefaultAlignment Alignment

	// DefaultTruncation is applied by Schema.AddColumn only to a column
	// added without a Window, and such a column has no Width and is
	// rejected. A column's own Window truncation policy, including the zero
	// value TruncateTrailing, is always used as given.
	DefaultTruncation TruncationPolicy

	// HasRecordSeparator selects whether records are delimited by
	// RecordSeparator (true) or purely by the sum of window widths
	// (false, in which case exactly that many characters are consumed per
	// record).
	HasRecordSeparator bool

	// RecordSeparator is the record terminator when HasRecordSeparator is
	// true; "" infers from the first line ending.
	RecordSeparator string

	// IsFirstRecordHeader, as in DelimitedOptions.
	IsFirstRecordHeader bool

	// ShortRecordIsError, when true, treats a record shorter than the sum
	// of window widths as a SyntaxError instead of right-padding the
	// missing fields with empty strings (spec §4.3).
	ShortRecordIsError bool
}

// NewFixedWidthOptions returns the documented defaults: space fill,
// left alignment, trailing truncation, record separator required and
// inferred from input.
func NewFixedWidthOptions() FixedWidthOptions {
	return FixedWidthOptions{
		DefaultFill:        ' ',
		DefaultAlignment:   LeftAligned,
		DefaultTruncation:  TruncateTrailing,
		HasRecordSeparator: true,
		RecordSeparator:    recordSeparatorAuto,
	}
}

// Validate checks the option set for internal consistency.
func (o FixedWidthOptions) Validate() error {
	if !o.DefaultAlignment.Valid() {
		return fmt.Errorf("flatrec: FixedWidthOptions.DefaultAlignment invalid: %v", o.DefaultAlignment)
	}
	if !o.DefaultTruncation.Valid() {
		return fmt.Errorf("flatrec: FixedWidthOptions.DefaultTruncation invalid: %v", o.DefaultTruncation)
	}
	return nil
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func containsSubstring(s, sub string) bool {
	if sub == "" {
		return false
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
