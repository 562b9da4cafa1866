package flatrec

// RawPredicate matches against the raw field vector of an incoming record,
// for read-side schema selection.
type RawPredicate func(rawFields []string) bool

// ValuePredicate matches against a caller-supplied value vector, for
// write-side schema selection.
type ValuePredicate func(values []any) bool

type selectorEntry struct {
	rawPred   RawPredicate
	valuePred ValuePredicate
	schema    *Schema
}

// SchemaSelector chooses one Schema per record from an ordered list of
// predicates (spec §4.6). The first matching predicate wins; if none match
// and no default is configured, selection fails with ErrNoSchemaMatch.
type SchemaSelector struct {
	entries []selectorEntry
	deflt   *Schema
}

// NewSchemaSelector returns an empty selector.
func NewSchemaSelector() *SchemaSelector {
	return &SchemaSelector{}
}

// AddRaw registers a read-side rule: when pred matches the raw field
// vector, schema is selected. Rules are tried in the order added.
func (s *SchemaSelector) AddRaw(pred RawPredicate, schema *Schema) *SchemaSelector {
	s.entries = append(s.entries, selectorEntry{rawPred: pred, schema: schema})
	return s
}

// AddTyped registers a write-side rule: when pred matches the value
// vector, schema is selected. Rules are tried in the order added.
func (s *SchemaSelector) AddTyped(pred ValuePredicate, schema *Schema) *SchemaSelector {
	s.entries = append(s.entries, selectorEntry{valuePred: pred, schema: schema})
	return s
}

// Default sets the schema used when no rule matches. Without a default,
// a non-matching record is a SchemaSelectionError.
func (s *SchemaSelector) Default(schema *Schema) *SchemaSelector {
	s.deflt = schema
	return s
}

// SelectForRead picks a schema for an incoming raw record.
func (s *SchemaSelector) SelectForRead(rawFields []string) (*Schema, error) {
	for _, e := range s.entries {
		if e.rawPred != nil && e.rawPred(rawFields) {
			return e.schema, nil
		}
	}
	if s.deflt != nil {
		return s.deflt, nil
	}
	return nil, ErrNoSchemaMatch
}

// SelectForWrite picks a schema for an outgoing typed record.
func (s *SchemaSelector) SelectForWrite(values []any) (*Schema, error) {
	for _, e := range s.entries {
		if e.valuePred != nil && e.valuePred(values) {
			return e.schema, nil
		}
	}
	if s.deflt != nil {
		return s.deflt, nil
	}
	return nil, ErrNoSchemaMatch
}
