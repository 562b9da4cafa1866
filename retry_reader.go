package flatrec

import (
	"bufio"
	"io"
)

// RetryReader is a character-level cursor over a text source with
// unbounded pushback. It guarantees that Peek/Consume never silently skip
// input: every rune that Peek reports is still there for the next call
// unless a matching Consume/ReadUntil advances past it.
//
// A RetryReader is owned by a single goroutine for its entire lifetime,
// matching the teacher's Reader/Writer: no internal locking is done.
type RetryReader struct {
	src *bufio.Reader

	// pending holds runes that have been read from src to satisfy a Peek
	// but not yet consumed. It is drained before src is read again.
	pending []rune

	eof bool
}

// NewRetryReader wraps r with pushback. If r is already a *bufio.Reader,
// it is used directly rather than being wrapped a second time.
func NewRetryReader(r io.Reader) *RetryReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &RetryReader{src: br}
}

// fill ensures at least n runes are buffered in pending, short of EOF.
func (rr *RetryReader) fill(n int) error {
	for len(rr.pending) < n {
		if rr.eof {
			return nil
		}
		ch, _, err := rr.src.ReadRune()
		if err != nil {
			if err == io.EOF {
				rr.eof = true
				return nil
			}
			return err
		}
		rr.pending = append(rr.pending, ch)
	}
	return nil
}

// Peek examines the next n characters without consuming them. Fewer than
// n runes are returned at EOF; the returned slice must not be retained
// across subsequent RetryReader calls, as its backing array is reused.
func (rr *RetryReader) Peek(n int) ([]rune, error) {
	if err := rr.fill(n); err != nil {
		return nil, err
	}
	if n > len(rr.pending) {
		n = len(rr.pending)
	}
	return rr.pending[:n], nil
}

// Consume advances past s if the upcoming characters equal s exactly,
// returning true. If they do not match, no state changes and false is
// returned.
func (rr *RetryReader) Consume(s string) (bool, error) {
	if s == "" {
		return true, nil
	}
	runes := []rune(s)
	peeked, err := rr.Peek(len(runes))
	if err != nil {
		return false, err
	}
	if len(peeked) < len(runes) {
		return false, nil
	}
	for i, want := range runes {
		if peeked[i] != want {
			return false, nil
		}
	}
	rr.pending = rr.pending[len(runes):]
	return true, nil
}

// ConsumeAny advances past the first of candidates (longest first) found
// at the cursor, returning the matched string or "" if none match. Callers
// pass candidates already sorted longest-first; ConsumeAny does not
// re-sort, matching the teacher's preference for caller-owned policy
// structs over hidden re-derivation on every call.
func (rr *RetryReader) ConsumeAny(candidates []string) (string, error) {
	for _, c := range candidates {
		ok, err := rr.Consume(c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return "", nil
}

// ReadUntil advances while predicate(ch) holds and returns the consumed
// span. It stops at EOF without error.
func (rr *RetryReader) ReadUntil(predicate func(rune) bool) (string, error) {
	var sb []rune
	for {
		r, err := rr.Peek(1)
		if err != nil {
			return string(sb), err
		}
		if len(r) == 0 || !predicate(r[0]) {
			return string(sb), nil
		}
		sb = append(sb, r[0])
		rr.pending = rr.pending[1:]
	}
}

// ReadRune consumes and returns exactly one character, or io.EOF.
func (rr *RetryReader) ReadRune() (rune, error) {
	r, err := rr.Peek(1)
	if err != nil {
		return 0, err
	}
	if len(r) == 0 {
		return 0, io.EOF
	}
	ch := r[0]
	rr.pending = rr.pending[1:]
	return ch, nil
}

// AtEOF reports whether no further characters exist. It may need to pull
// from the underlying source to know for certain.
func (rr *RetryReader) AtEOF() (bool, error) {
	if err := rr.fill(1); err != nil {
		return false, err
	}
	return len(rr.pending) == 0, nil
}
