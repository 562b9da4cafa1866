package flatrec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parseColumn implements Column Codec.parse (spec §4.4): null check, trim,
// kind dispatch. Ignored columns consume their raw text but never fail and
// never surface a meaningful value; Metadata columns never reach here
// (Schema.ParseRecord special-cases them).
func parseColumn(col Column, raw string, ctx *RecordContext) (any, error) {
	if col.Kind == Ignored {
		return nil, nil
	}

	if col.Null.IsNull(raw) {
		return nil, nil
	}

	text := raw
	if col.TrimWhitespace {
		text = strings.TrimSpace(text)
		if text == "" && col.Null.Sentinel == nil {
			return nil, nil
		}
	}

	switch col.Kind {
	case Bool:
		return strconv.ParseBool(text)
	case Byte:
		v, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return nil, err
		}
		return byte(v), nil
	case Short:
		v, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return nil, err
		}
		return int16(v), nil
	case Int32:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	case Int64:
		return strconv.ParseInt(text, 10, 64)
	case Single:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	case Double:
		return strconv.ParseFloat(text, 64)
	case Decimal:
		return decimal.NewFromString(text)
	case Char:
		r := []rune(text)
		if len(r) != 1 {
			return nil, fmt.Errorf("flatrec: %q is not a single character", text)
		}
		return r[0], nil
	case String:
		return text, nil
	case Guid:
		return uuid.Parse(text)
	case DateTime:
		layout := col.Format
		if layout == "" {
			layout = time.RFC3339
		}
		t, err := time.Parse(layout, text)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case DateTimeOffset:
		layout := col.Format
		if layout == "" {
			layout = time.RFC3339
		}
		return time.Parse(layout, text)
	case TimeSpan:
		return time.ParseDuration(text)
	case Enum:
		for i, name := range col.EnumValues {
			if name == text {
				return i, nil
			}
		}
		return nil, fmt.Errorf("flatrec: %q is not a member of enum %v", text, col.EnumValues)
	case ByteArray:
		return []byte(text), nil
	case CharArray:
		return []rune(text), nil
	case Custom:
		if col.Custom.Parse == nil {
			return nil, fmt.Errorf("flatrec: custom column %q has no Parse function", col.Name)
		}
		return col.Custom.Parse(text, ctx)
	default:
		return nil, fmt.Errorf("flatrec: unsupported column kind %v", col.Kind)
	}
}

// formatColumn implements Column Codec.format (spec §4.4): null emission,
// kind dispatch, then fixed-width padding/truncation when col.Window is
// set.
func formatColumn(col Column, value any, ctx *RecordContext) (string, error) {
	var text string
	switch {
	case col.Kind == Ignored:
		text = ""
	case value == nil:
		if col.Null.Sentinel != nil {
			text = *col.Null.Sentinel
		}
	default:
		t, err := formatColumnValue(col, value, ctx)
		if err != nil {
			return "", err
		}
		text = t
	}

	if col.Window != nil {
		text = fitWindow(text, *col.Window)
	}
	return text, nil
}

func formatColumnValue(col Column, value any, ctx *RecordContext) (string, error) {
	switch col.Kind {
	case Bool:
		return strconv.FormatBool(value.(bool)), nil
	case Byte:
		return strconv.FormatUint(uint64(value.(byte)), 10), nil
	case Short:
		return strconv.FormatInt(int64(value.(int16)), 10), nil
	case Int32:
		return strconv.FormatInt(int64(value.(int32)), 10), nil
	case Int64:
		return strconv.FormatInt(value.(int64), 10), nil
	case Single:
		return strconv.FormatFloat(float64(value.(float32)), 'f', -1, 32), nil
	case Double:
		return strconv.FormatFloat(value.(float64), 'f', -1, 64), nil
	case Decimal:
		d, ok := value.(decimal.Decimal)
		if !ok {
			return "", fmt.Errorf("flatrec: column %q expects decimal.Decimal, got %T", col.Name, value)
		}
		return d.String(), nil
	case Char:
		return string(value.(rune)), nil
	case String:
		return value.(string), nil
	case Guid:
		u, ok := value.(uuid.UUID)
		if !ok {
			return "", fmt.Errorf("flatrec: column %q expects uuid.UUID, got %T", col.Name, value)
		}
		return u.String(), nil
	case DateTime, DateTimeOffset:
		t, ok := value.(time.Time)
		if !ok {
			return "", fmt.Errorf("flatrec: column %q expects time.Time, got %T", col.Name, value)
		}
		layout := col.Format
		if layout == "" {
			layout = time.RFC3339
		}
		return t.Format(layout), nil
	case TimeSpan:
		d, ok := value.(time.Duration)
		if !ok {
			return "", fmt.Errorf("flatrec: column %q expects time.Duration, got %T", col.Name, value)
		}
		return d.String(), nil
	case Enum:
		idx, ok := value.(int)
		if !ok || idx < 0 || idx >= len(col.EnumValues) {
			return "", fmt.Errorf("flatrec: column %q: enum value %v out of range", col.Name, value)
		}
		return col.EnumValues[idx], nil
	case ByteArray:
		b, ok := value.([]byte)
		if !ok {
			return "", fmt.Errorf("flatrec: column %q expects []byte, got %T", col.Name, value)
		}
		return string(b), nil
	case CharArray:
		r, ok := value.([]rune)
		if !ok {
			return "", fmt.Errorf("flatrec: column %q expects []rune, got %T", col.Name, value)
		}
		return string(r), nil
	case Custom:
		if col.Custom.Format == nil {
			return "", fmt.Errorf("flatrec: custom column %q has no Format function", col.Name)
		}
		return col.Custom.Format(value, ctx)
	default:
		return "", fmt.Errorf("flatrec: unsupported column kind %v", col.Kind)
	}
}

// fitWindow pads or truncates text to exactly w.Width characters, per
// spec §4.4's overflow policy table.
func fitWindow(text string, w Window) string {
	r := []rune(text)
	if len(r) > w.Width {
		switch w.Truncation {
		case TruncateLeading:
			return string(r[len(r)-w.Width:])
		default: // TruncateTrailing
			return string(r[:w.Width])
		}
	}
	pad := strings.Repeat(string(w.Fill), w.Width-len(r))
	if w.Alignment == RightAligned {
		return pad + text
	}
	return text + pad
}
