// Package load normalizes raw data-model descriptors into the
// canonical entity model consumed by the synthesis stages in
// compiler/gen. Descriptors arrive as a YAML or JSON document produced
// by a schema-introspection collaborator.
package load

// MarkerField is the soft-delete marker convention: a non-list scalar
// timestamp field with this exact name converts physical deletes into
// marker updates everywhere downstream.
const MarkerField = "deletedAt"

// hiddenDirective excludes an entity from all downstream stages when
// present in its documentation comment.
const hiddenDirective = "@hidden"

// Schema is the canonical form of one entity: its fields in
// declaration order, unique field sets and unique index descriptors.
// A Schema is built once per generation run and never mutated.
type Schema struct {
	// Name of the entity, unique within the document.
	Name string

	// Doc is the documentation comment, carrying directives.
	Doc string

	// Fields in declaration order.
	Fields []*Field
	fields map[string]*Field

	// UniqueSets are the multi-field uniqueness constraints.
	UniqueSets [][]string

	// Indexes are the unique-index descriptors.
	Indexes []*Index
}

// Field is the canonical form of one entity field.
type Field struct {
	Name string

	// Kind is scalar, object or enum. An object field always carries
	// a relation; a scalar field never does.
	Kind FieldKind

	// Type is the underlying type tag.
	Type FieldType

	// Optional indicates the field may be omitted on create.
	Optional bool

	// ReadOnly indicates the field is never writable through the API.
	ReadOnly bool

	// List indicates a list-valued field.
	List bool

	// Unique indicates a single-field uniqueness constraint.
	Unique bool

	// Generated indicates the data layer produces the value.
	Generated bool

	// UpdatedAt flags the last-modified timestamp field.
	UpdatedAt bool

	// Relation metadata for object fields.
	Relation *Relation
}

// Relation carries the metadata of an object field: the relation name
// and the local/foreign field-name pairs.
type Relation struct {
	Name       string
	Fields     []string
	References []string
}

// Index is a unique-index descriptor.
type Index struct {
	Name   string
	Fields []string
	Unique bool
}

// NewSchema builds a canonical Schema from already-normalized fields.
// It is the programmatic entry point for callers that do not go
// through a document.
func NewSchema(name string, fields ...*Field) (*Schema, error) {
	if name == "" {
		return nil, NewMappingError("", "", "entity name cannot be empty", nil)
	}
	s := &Schema{
		Name:   name,
		Fields: fields,
		fields: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		if s.fields[f.Name] != nil {
			return nil, NewMappingError(name, f.Name, "field redeclared", nil)
		}
		s.fields[f.Name] = f
	}
	return s, nil
}

// MustNewSchema is like NewSchema but panics on error.
func MustNewSchema(name string, fields ...*Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the field with the given name, or nil.
func (s *Schema) Field(name string) *Field {
	return s.fields[name]
}

// Hidden reports whether the entity carries the hidden directive and
// must be excluded from all downstream stages.
func (s *Schema) Hidden() bool {
	return containsDirective(s.Doc, hiddenDirective)
}

// SoftDeleteField returns the soft-delete marker field if the entity
// follows the naming convention, or nil.
func (s *Schema) SoftDeleteField() *Field {
	f := s.fields[MarkerField]
	if f == nil {
		return nil
	}
	if f.Kind != KindScalar || f.Type != TypeTimestamp || f.List {
		return nil
	}
	return f
}

// IsRelation reports whether the field represents a relation.
func (f *Field) IsRelation() bool {
	return f.Kind == KindObject
}

// containsDirective scans a doc comment for a word-boundary directive.
func containsDirective(doc, directive string) bool {
	for i := 0; i+len(directive) <= len(doc); i++ {
		if doc[i:i+len(directive)] != directive {
			continue
		}
		end := i + len(directive)
		if end == len(doc) || doc[end] == ' ' || doc[end] == '\n' || doc[end] == '\t' || doc[end] == '.' {
			return true
		}
	}
	return false
}
