package flatrec

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestReader_BasicDelimited(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})
	schema, _ = schema.AddColumn(Column{Name: "b", Kind: Int32})

	r, err := NewDelimitedReader(strings.NewReader("x,1\ny,2\n"), NewDelimitedOptions(), schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}

	ctx := context.Background()
	ok, err := r.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("Read #1 = (%v, %v), want (true, nil)", ok, err)
	}
	values, err := r.GetValues()
	if err != nil {
		t.Fatalf("GetValues: %v", err)
	}
	if values[0].(string) != "x" || values[1].(int32) != 1 {
		t.Fatalf("values = %v, want [x 1]", values)
	}
	if r.LogicalRecordNumber() != 1 || r.PhysicalRecordNumber() != 1 {
		t.Fatalf("physical/logical = %d/%d, want 1/1", r.PhysicalRecordNumber(), r.LogicalRecordNumber())
	}

	ok, err = r.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("Read #2 = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = r.Read(ctx)
	if err != nil || ok {
		t.Fatalf("Read #3 (EOF) = (%v, %v), want (false, nil)", ok, err)
	}
}

// TestReader_HeaderInference is scenario S6 from spec §8: "a,b,c\n1,2,3\n"
// with no schema and IsFirstRecordHeader infers three untyped string
// columns named a, b, c.
func TestReader_HeaderInference(t *testing.T) {
	opts := NewDelimitedOptions()
	opts.IsFirstRecordHeader = true
	r, err := NewDelimitedReader(strings.NewReader("a,b,c\n1,2,3\n"), opts, nil)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}

	ok, err := r.Read(context.Background())
	if err != nil || !ok {
		t.Fatalf("Read = (%v, %v), want (true, nil)", ok, err)
	}

	schema := r.Schema()
	if schema.PhysicalCount() != 3 {
		t.Fatalf("inferred schema has %d columns, want 3", schema.PhysicalCount())
	}
	for _, name := range []string{"a", "b", "c"} {
		col, ok := schema.ColumnByName(name)
		if !ok {
			t.Fatalf("inferred schema missing column %q", name)
		}
		if col.Kind != String {
			t.Errorf("inferred column %q kind = %v, want String", name, col.Kind)
		}
	}

	values, err := r.GetValues()
	if err != nil {
		t.Fatalf("GetValues: %v", err)
	}
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if values[i].(string) != w {
			t.Errorf("values[%d] = %v, want %q", i, values[i], w)
		}
	}
}

// TestReader_WrongColumnCountIsRecordShapeError exercises scenario S4: a
// row with fewer raw fields than the schema requires raises a handleable
// record-level error.
func TestReader_WrongColumnCountIsRecordShapeError(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})
	schema, _ = schema.AddColumn(Column{Name: "b", Kind: String})

	r, err := NewDelimitedReader(strings.NewReader("only-one\n"), NewDelimitedOptions(), schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}

	ok, err := r.Read(context.Background())
	if err == nil || ok {
		t.Fatalf("Read of short record = (%v, %v), want (false, non-nil)", ok, err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrWrongValueCount) {
		t.Fatalf("Read of short record error = %v (%T), want *ParseError wrapping ErrWrongValueCount", err, err)
	}
}

func TestReader_HandledRecordErrorSkipsWithoutAdvancingLogicalCount(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})
	schema, _ = schema.AddColumn(Column{Name: "b", Kind: String})

	r, err := NewDelimitedReader(strings.NewReader("only-one\nx,y\n"), NewDelimitedOptions(), schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}
	r.Dispatcher().OnRecordError(func(ctx *RecordContext, err *ParseError) bool { return true })

	ok, err := r.Read(context.Background())
	if err != nil || !ok {
		t.Fatalf("Read after suppressed bad record = (%v, %v), want (true, nil)", ok, err)
	}
	if r.LogicalRecordNumber() != 1 {
		t.Fatalf("LogicalRecordNumber = %d, want 1 (bad record must not count)", r.LogicalRecordNumber())
	}
	if r.PhysicalRecordNumber() != 2 {
		t.Fatalf("PhysicalRecordNumber = %d, want 2", r.PhysicalRecordNumber())
	}
	values, _ := r.GetValues()
	if values[0].(string) != "x" {
		t.Fatalf("values = %v, want the second record's fields", values)
	}
}

func TestReader_ErroredStateRejectsFurtherReads(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})
	schema, _ = schema.AddColumn(Column{Name: "b", Kind: String})

	r, err := NewDelimitedReader(strings.NewReader("only-one\n"), NewDelimitedOptions(), schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}

	ctx := context.Background()
	if _, err := r.Read(ctx); err == nil {
		t.Fatal("expected first Read to fail")
	}
	_, err = r.Read(ctx)
	if err != ErrReadingWithErrors {
		t.Fatalf("Read after Errored = %v, want ErrReadingWithErrors", err)
	}
}

func TestReader_GetValuesBeforeFirstReadIsError(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})
	r, err := NewDelimitedReader(strings.NewReader("x\n"), NewDelimitedOptions(), schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}
	if _, err := r.GetValues(); err != ErrNoValues {
		t.Fatalf("GetValues before Read = %v, want ErrNoValues", err)
	}
}

func TestReader_NoSchemaNoHeaderIsConstructionError(t *testing.T) {
	_, err := NewDelimitedReader(strings.NewReader("x\n"), NewDelimitedOptions(), nil)
	if err == nil {
		t.Fatal("NewDelimitedReader(nil schema, no header) = nil error, want a construction error")
	}
}

func TestReader_SelectingReaderChoosesSchemaPerRecord(t *testing.T) {
	twoCol := NewSchema()
	twoCol, _ = twoCol.AddColumn(Column{Name: "a", Kind: String})
	twoCol, _ = twoCol.AddColumn(Column{Name: "b", Kind: String})

	threeCol := NewSchema()
	threeCol, _ = threeCol.AddColumn(Column{Name: "x", Kind: String})
	threeCol, _ = threeCol.AddColumn(Column{Name: "y", Kind: String})
	threeCol, _ = threeCol.AddColumn(Column{Name: "z", Kind: String})

	sel := NewSchemaSelector().
		AddRaw(func(raw []string) bool { return len(raw) == 2 }, twoCol).
		AddRaw(func(raw []string) bool { return len(raw) == 3 }, threeCol)

	r, err := NewDelimitedSelectingReader(strings.NewReader("a,b\nc,d,e\n"), NewDelimitedOptions(), sel)
	if err != nil {
		t.Fatalf("NewDelimitedSelectingReader: %v", err)
	}

	ctx := context.Background()
	if ok, err := r.Read(ctx); err != nil || !ok {
		t.Fatalf("Read #1 = (%v, %v)", ok, err)
	}
	if r.Schema() != twoCol {
		t.Error("Read #1 did not select the two-column schema")
	}

	if ok, err := r.Read(ctx); err != nil || !ok {
		t.Fatalf("Read #2 = (%v, %v)", ok, err)
	}
	if r.Schema() != threeCol {
		t.Error("Read #2 did not select the three-column schema")
	}
}

func TestReader_FixedWidth(t *testing.T) {
	opts := NewFixedWidthOptions()
	schema := NewFixedWidthSchema(opts)
	schema, _ = schema.AddColumn(Column{Name: "first_name", Kind: String, Window: &Window{Width: 10}})
	schema, _ = schema.AddColumn(Column{Name: "last_name", Kind: String, Window: &Window{Width: 10}})

	r, err := NewFixedWidthReader(strings.NewReader("John      Smith     \n"), opts, schema)
	if err != nil {
		t.Fatalf("NewFixedWidthReader: %v", err)
	}
	ok, err := r.Read(context.Background())
	if err != nil || !ok {
		t.Fatalf("Read = (%v, %v), want (true, nil)", ok, err)
	}
	values, _ := r.GetValues()
	if values[0].(string) != "John" || values[1].(string) != "Smith" {
		t.Fatalf("values = %v, want [John Smith]", values)
	}
}

func TestReader_HeaderVerificationMismatchIsHandleable(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})

	opts := NewDelimitedOptions()
	opts.IsFirstRecordHeader = true
	opts.VerifyHeaderAgainstSchema = true

	r, err := NewDelimitedReader(strings.NewReader("not_a\nx\n"), opts, schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}
	r.Dispatcher().OnRecordError(func(ctx *RecordContext, err *ParseError) bool { return true })

	ok, err := r.Read(context.Background())
	if err != nil || !ok {
		t.Fatalf("Read with suppressed header mismatch = (%v, %v), want (true, nil)", ok, err)
	}
	values, _ := r.GetValues()
	if values[0].(string) != "x" {
		t.Fatalf("values = %v, want [x]", values)
	}
}

func TestReader_ContextCancellationBetweenRecords(t *testing.T) {
	schema := NewSchema()
	schema, _ = schema.AddColumn(Column{Name: "a", Kind: String})

	r, err := NewDelimitedReader(strings.NewReader("x\ny\n"), NewDelimitedOptions(), schema)
	if err != nil {
		t.Fatalf("NewDelimitedReader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Read(ctx); err == nil {
		t.Fatal("Read with a pre-cancelled context = nil error, want context.Canceled")
	}
}
