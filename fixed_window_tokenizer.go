package flatrec

import (
	"fmt"
	"io"
)

// ErrShortRecord is returned when FixedWidthOptions.ShortRecordIsError is
// set and a record has fewer characters than the sum of window widths.
var ErrShortRecord = fmt.Errorf("flatrec: record shorter than sum of window widths")

// FixedWindowTokenizer partitions one fixed-width record into raw field
// strings given a sequence of Windows, per spec §4.3. For each window,
// leading or trailing fill is stripped at tokenization time according to
// alignment, so codecs receive the semantic content directly.
type FixedWindowTokenizer struct {
	rr      *RetryReader
	windows []Window
	opts    FixedWidthOptions

	recordSeparators []string
	inferred         bool
	totalWidth       int
}

// NewFixedWindowTokenizer constructs a tokenizer reading from rr, slicing
// each record into len(windows) fields by width.
func NewFixedWindowTokenizer(rr *RetryReader, windows []Window, opts FixedWidthOptions) *FixedWindowTokenizer {
	total := 0
	for _, w := range windows {
		total += w.Width
	}
	t := &FixedWindowTokenizer{rr: rr, windows: windows, opts: opts, totalWidth: total}
	if opts.HasRecordSeparator {
		if opts.RecordSeparator == recordSeparatorAuto {
			t.recordSeparators = autoRecordSeparatorCandidates
		} else {
			t.recordSeparators = []string{opts.RecordSeparator}
		}
	}
	return t
}

// TokenizeRecord reads the next record's worth of characters and slices it
// into fields. If HasRecordSeparator is true, characters are consumed
// until a record separator or EOF; if false, exactly the sum of window
// widths is consumed.
func (t *FixedWindowTokenizer) TokenizeRecord() (fields []string, raw string, err error) {
	if eof, err := t.rr.AtEOF(); err != nil {
		return nil, "", err
	} else if eof {
		return nil, "", io.EOF
	}

	var body []rune
	var trailingSep string

	if t.opts.HasRecordSeparator {
		for {
			matched, err := t.rr.ConsumeAny(t.recordSeparators)
			if err != nil {
				return nil, string(body), err
			}
			if matched != "" {
				if t.opts.RecordSeparator == recordSeparatorAuto && !t.inferred {
					t.recordSeparators = []string{matched}
					t.inferred = true
				}
				trailingSep = matched
				break
			}
			ch, err := t.rr.ReadRune()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, string(body), err
			}
			body = append(body, ch)
		}
	} else {
		for i := 0; i < t.totalWidth; i++ {
			ch, err := t.rr.ReadRune()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, string(body), err
			}
			body = append(body, ch)
		}
	}

	fields, err = t.sliceWindows(body)
	if err != nil {
		return nil, string(body) + trailingSep, err
	}
	return fields, string(body) + trailingSep, nil
}

// sliceWindows cuts body into len(t.windows) fields by window width,
// stripping fill per alignment. A body shorter than the sum of widths is
// right-padded with empty fields, unless ShortRecordIsError is set.
func (t *FixedWindowTokenizer) sliceWindows(body []rune) ([]string, error) {
	fields := make([]string, len(t.windows))
	pos := 0
	for i, w := range t.windows {
		if pos >= len(body) {
			if t.opts.ShortRecordIsError {
				return nil, ErrShortRecord
			}
			fields[i] = ""
			continue
		}
		end := pos + w.Width
		if end > len(body) {
			if t.opts.ShortRecordIsError {
				return nil, ErrShortRecord
			}
			end = len(body)
		}
		fields[i] = stripFill(string(body[pos:end]), w)
		pos = end
	}
	return fields, nil
}

// stripFill removes leading or trailing Fill runs from a window's raw
// slice per its alignment: LeftAligned strips trailing fill (the value
// was written left-justified, so fill trails it); RightAligned strips
// leading fill.
func stripFill(s string, w Window) string {
	r := []rune(s)
	if w.Alignment == RightAligned {
		i := 0
		for i < len(r) && r[i] == w.Fill {
			i++
		}
		return string(r[i:])
	}
	j := len(r)
	for j > 0 && r[j-1] == w.Fill {
		j--
	}
	return string(r[:j])
}
