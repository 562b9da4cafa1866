package flatrec

import (
	"errors"
	"testing"
)

func mustAddColumn(t *testing.T, s *Schema, col Column) *Schema {
	t.Helper()
	s, err := s.AddColumn(col)
	if err != nil {
		t.Fatalf("AddColumn(%q): %v", col.Name, err)
	}
	return s
}

func TestSchema_DuplicateNameRejected(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "Id", Kind: Int32})
	_, err := s.AddColumn(Column{Name: "id", Kind: String})
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("AddColumn(case-insensitive duplicate) = %v, want ErrDuplicateColumn", err)
	}
}

func TestSchema_AttachedRejectsFurtherColumns(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})
	ctx := &RecordContext{RawFields: []string{"x"}}
	disp := NewErrorDispatcher()
	if _, err := s.ParseRecord(ctx, disp); err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if _, err := s.AddColumn(Column{Name: "b", Kind: String}); !errors.Is(err, ErrSchemaAttached) {
		t.Fatalf("AddColumn after attach = %v, want ErrSchemaAttached", err)
	}
}

func TestSchema_CountsAccountForMetadataAndIgnored(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})
	s = mustAddColumn(t, s, Column{Name: "skip", Kind: Ignored})
	s = mustAddColumn(t, s, Column{Name: "meta", Kind: Metadata, MetaKind: PhysicalRecordNumber})

	if got := s.PhysicalCount(); got != 3 {
		t.Errorf("PhysicalCount() = %d, want 3", got)
	}
	if got := s.MetadataCount(); got != 1 {
		t.Errorf("MetadataCount() = %d, want 1", got)
	}
	// LogicalCount excludes only Metadata; Ignored still occupies a
	// values[] slot on read/write (decided: Ignored is not Metadata, so it
	// counts toward logical_count = physical_count - metadata_count).
	if got := s.LogicalCount(); got != 2 {
		t.Errorf("LogicalCount() = %d, want 2", got)
	}
}

func TestSchema_ParseRecord_TooFewRawFieldsIsRecordShapeError(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})
	s = mustAddColumn(t, s, Column{Name: "b", Kind: String})

	ctx := &RecordContext{RawFields: []string{"only-one"}, PhysicalRecordNumber: 1}
	disp := NewErrorDispatcher()
	_, err := s.ParseRecord(ctx, disp)
	if err == nil {
		t.Fatal("ParseRecord with too few fields = nil error, want *ParseError")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v (%T), want *ParseError", err, err)
	}
	if !errors.Is(err, ErrWrongValueCount) {
		t.Errorf("error does not wrap ErrWrongValueCount: %v", err)
	}
}

func TestSchema_ParseRecord_HandledRecordErrorSuppresses(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})
	s = mustAddColumn(t, s, Column{Name: "b", Kind: String})

	ctx := &RecordContext{RawFields: []string{"only-one"}, PhysicalRecordNumber: 1}
	disp := NewErrorDispatcher()
	disp.OnRecordError(func(ctx *RecordContext, err *ParseError) bool { return true })

	values, err := s.ParseRecord(ctx, disp)
	if err != nil {
		t.Fatalf("ParseRecord with handled record error: err = %v, want nil", err)
	}
	if values != nil {
		t.Fatalf("ParseRecord with handled record error: values = %v, want nil", values)
	}
}

func TestSchema_ParseRecord_MetadataSynthesizedWithoutConsumingField(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "line_no", Kind: Metadata, MetaKind: PhysicalRecordNumber})
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})

	ctx := &RecordContext{RawFields: []string{"hello"}, PhysicalRecordNumber: 42}
	disp := NewErrorDispatcher()
	values, err := s.ParseRecord(ctx, disp)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("values = %v, want 2 entries", values)
	}
	if values[0].(int64) != 42 {
		t.Errorf("metadata value = %v, want 42", values[0])
	}
	if values[1].(string) != "hello" {
		t.Errorf("data value = %v, want hello", values[1])
	}
}

func TestSchema_FormatRecord_WrongValueCount(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})
	s = mustAddColumn(t, s, Column{Name: "b", Kind: String})

	ctx := &RecordContext{}
	_, err := s.FormatRecord(ctx, []any{"only-one"})
	if !errors.Is(err, ErrWrongValueCount) {
		t.Fatalf("FormatRecord wrong count = %v, want ErrWrongValueCount", err)
	}
}

func TestSchema_FormatRecord_IgnoredConsumesSlotButDiscardsValue(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})
	s = mustAddColumn(t, s, Column{Name: "skip", Kind: Ignored})
	s = mustAddColumn(t, s, Column{Name: "b", Kind: String})

	ctx := &RecordContext{}
	raw, err := s.FormatRecord(ctx, []any{"first", "whatever-is-discarded", "second"})
	if err != nil {
		t.Fatalf("FormatRecord: %v", err)
	}
	want := []string{"first", "", "second"}
	if !equalStrings(raw, want) {
		t.Fatalf("raw = %v, want %v", raw, want)
	}
}

func TestSchema_FormatRecord_MetadataSkipped(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "meta", Kind: Metadata, MetaKind: PhysicalRecordNumber})
	s = mustAddColumn(t, s, Column{Name: "a", Kind: String})

	ctx := &RecordContext{}
	raw, err := s.FormatRecord(ctx, []any{"only-data-value"})
	if err != nil {
		t.Fatalf("FormatRecord: %v", err)
	}
	if !equalStrings(raw, []string{"only-data-value"}) {
		t.Fatalf("raw = %v, want [only-data-value]", raw)
	}
}

func TestSchema_ColumnByName_CaseInsensitive(t *testing.T) {
	s := NewSchema()
	s = mustAddColumn(t, s, Column{Name: "FirstName", Kind: String})

	col, ok := s.ColumnByName("firstname")
	if !ok {
		t.Fatal("ColumnByName(lowercase) not found")
	}
	if col.Name != "FirstName" {
		t.Errorf("ColumnByName returned %q, want %q", col.Name, "FirstName")
	}
	if _, ok := s.ColumnByName("nope"); ok {
		t.Error("ColumnByName(unregistered) reported found")
	}
}

func TestFixedWidthSchema_ResolvesWindowDefaults(t *testing.T) {
	opts := NewFixedWidthOptions()
	opts.DefaultFill = '0'
	s := NewFixedWidthSchema(opts)
	s = mustAddColumn(t, s, Column{Name: "qty", Kind: Int32, Window: &Window{Width: 5, Alignment: RightAligned, Truncation: TruncateLeading}})

	col, _ := s.ColumnByName("qty")
	if col.Window == nil {
		t.Fatal("Window not resolved")
	}
	if col.Window.Fill != '0' {
		t.Errorf("resolved Fill = %q, want '0'", col.Window.Fill)
	}
	if col.Window.Width != 5 {
		t.Errorf("resolved Width = %d, want 5", col.Window.Width)
	}
}

func TestFixedWidthSchema_InvalidWindowRejected(t *testing.T) {
	s := NewFixedWidthSchema(NewFixedWidthOptions())
	_, err := s.AddColumn(Column{Name: "bad", Kind: Int32, Window: &Window{Width: 0}})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("AddColumn(zero-width) = %v, want ErrInvalidWindow", err)
	}
}
