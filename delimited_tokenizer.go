package flatrec

import (
	"io"
)

// DelimitedTokenizer splits one record at a time into raw field strings,
// per the grammar of spec §4.2:
//
//	record := field (F field)* (R | EOF)
//	field  := quoted | unquoted
//	quoted := Q (char-not-Q | QQ)* Q
//
// Raw strings are returned without surrounding quotes and without the
// doubled-quote escape; whitespace trimming is left to the column codec.
type DelimitedTokenizer struct {
	rr   *RetryReader
	opts DelimitedOptions

	// recordSeparators is the set of candidates tried when opts.RecordSeparator
	// is "" (infer from input). Once one is matched for the first time, it
	// becomes the sole candidate for the rest of the stream — matching the
	// teacher's own "decide once, stay consistent for the instance" posture.
	recordSeparators []string
	inferred         bool
}

// NewDelimitedTokenizer constructs a tokenizer reading from rr under opts.
// opts is assumed already validated (see DelimitedOptions.Validate).
func NewDelimitedTokenizer(rr *RetryReader, opts DelimitedOptions) *DelimitedTokenizer {
	t := &DelimitedTokenizer{rr: rr, opts: opts}
	if opts.RecordSeparator == recordSeparatorAuto {
		t.recordSeparators = autoRecordSeparatorCandidates
	} else {
		t.recordSeparators = []string{opts.RecordSeparator}
	}
	return t
}

// TokenizeRecord reads the next record and returns its raw fields and the
// exact unparsed span that was consumed (for diagnostics), or io.EOF if
// nothing remains.
func (t *DelimitedTokenizer) TokenizeRecord() (fields []string, raw string, err error) {
	if eof, err := t.rr.AtEOF(); err != nil {
		return nil, "", err
	} else if eof {
		return nil, "", io.EOF
	}

	var rawBuf []rune
	for {
		field, consumedText, err := t.readField()
		if err != nil {
			return nil, string(rawBuf), err
		}
		rawBuf = append(rawBuf, []rune(consumedText)...)
		fields = append(fields, field)

		if ok, err := t.rr.Consume(t.opts.Separator); err != nil {
			return nil, string(rawBuf), err
		} else if ok {
			rawBuf = append(rawBuf, []rune(t.opts.Separator)...)
			continue
		}

		matched, err := t.consumeRecordSeparator()
		if err != nil {
			return nil, string(rawBuf), err
		}
		if matched != "" {
			rawBuf = append(rawBuf, []rune(matched)...)
			return fields, string(rawBuf), nil
		}

		// Neither separator matched: readField only stops short of a
		// separator/record-separator at EOF, so the record ends here.
		return fields, string(rawBuf), nil
	}
}

// consumeRecordSeparator tries each candidate in t.recordSeparators,
// longest-match semantics given by caller ordering, and locks in the
// first one matched when inferring.
func (t *DelimitedTokenizer) consumeRecordSeparator() (string, error) {
	matched, err := t.rr.ConsumeAny(t.recordSeparators)
	if err != nil {
		return "", err
	}
	if matched != "" && t.opts.RecordSeparator == recordSeparatorAuto && !t.inferred {
		t.recordSeparators = []string{matched}
		t.inferred = true
	}
	return matched, nil
}

// readField reads one field (quoted or unquoted) and returns its decoded
// value plus the exact raw text consumed (quotes and escapes included) for
// diagnostics.
func (t *DelimitedTokenizer) readField() (value string, raw string, err error) {
	if !t.opts.Partitioned {
		if ok, err := t.rr.Consume(string(t.opts.Quote)); err != nil {
			return "", "", err
		} else if ok {
			return t.readQuotedField()
		}
	}
	return t.readUnquotedField()
}

// readQuotedField reads the remainder of a quoted field, having already
// consumed the opening quote. A doubled quote QQ emits a single Q into the
// value; only the matching close quote ends the field. A '\r' or '\n'
// inside the quotes is kept when AllowEmbeddedLineEndings is set and is
// reported as ErrUnterminatedQuote otherwise.
func (t *DelimitedTokenizer) readQuotedField() (string, string, error) {
	var value []rune
	raw := []rune{t.opts.Quote}

	for {
		ch, err := t.rr.ReadRune()
		if err == io.EOF {
			return "", string(raw), ErrUnterminatedQuote
		}
		if err != nil {
			return "", string(raw), err
		}
		raw = append(raw, ch)

		if ch != t.opts.Quote {
			if isLineEnding(ch) && !t.opts.AllowEmbeddedLineEndings {
				return "", string(raw), ErrUnterminatedQuote
			}
			value = append(value, ch)
			continue
		}

		// Saw a quote: either doubled-escape or the closing quote.
		if ok, err := t.rr.Consume(string(t.opts.Quote)); err != nil {
			return "", string(raw), err
		} else if ok {
			raw = append(raw, t.opts.Quote)
			value = append(value, t.opts.Quote)
			continue
		}
		return string(value), string(raw), nil
	}
}

// readUnquotedField reads characters until the field separator, a record
// separator, or EOF.
func (t *DelimitedTokenizer) readUnquotedField() (string, string, error) {
	var value []rune
	for {
		peeked, err := t.rr.Peek(1)
		if err != nil {
			return "", string(value), err
		}
		if len(peeked) == 0 {
			return string(value), string(value), nil
		}

		if ok, err := t.startsWith(t.opts.Separator); err != nil {
			return "", string(value), err
		} else if ok {
			return string(value), string(value), nil
		}
		if ok, err := t.anyStartsWith(t.recordSeparators); err != nil {
			return "", string(value), err
		} else if ok {
			return string(value), string(value), nil
		}

		ch, err := t.rr.ReadRune()
		if err != nil {
			return "", string(value), err
		}
		value = append(value, ch)
	}
}

// startsWith reports whether the upcoming characters equal s, without
// consuming them.
func (t *DelimitedTokenizer) startsWith(s string) (bool, error) {
	runes := []rune(s)
	peeked, err := t.rr.Peek(len(runes))
	if err != nil {
		return false, err
	}
	if len(peeked) < len(runes) {
		return false, nil
	}
	for i, r := range runes {
		if peeked[i] != r {
			return false, nil
		}
	}
	return true, nil
}

func (t *DelimitedTokenizer) anyStartsWith(candidates []string) (bool, error) {
	for _, c := range candidates {
		ok, err := t.startsWith(c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func isLineEnding(ch rune) bool {
	return ch == '\r' || ch == '\n'
}
