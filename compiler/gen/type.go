package gen

import (
	"fmt"
	"unicode"

	"github.com/syssam/apigen/compiler/load"
)

// Type represents one entity in the synthesis graph. It wraps the
// normalized schema with the derived facts procedure synthesis needs:
// the identifier field, the soft-delete marker, and aggregation
// eligibility.
type Type struct {
	*Config
	schema *load.Schema

	// Name is the entity type name, e.g. "AccommodationPricing".
	Name string

	// Fields in declaration order, scalar and enum only. Relation
	// fields never participate in procedure synthesis.
	Fields []*Field
	fields map[string]*Field

	// ID is the identifier field, or nil if none could be derived.
	ID *Field

	// Aggregation is the entity's aggregate-selector eligibility.
	Aggregation Aggregation
}

// Field is a synthesis-side view of one entity field.
type Field struct {
	typ *Type

	Name      string
	Type      load.FieldType
	Enum      bool
	Optional  bool
	ReadOnly  bool
	List      bool
	Unique    bool
	Generated bool
	UpdatedAt bool
}

// Aggregation describes which aggregate selectors an entity is
// eligible for. Count is always available.
type Aggregation struct {
	Sum   bool
	Avg   bool
	Min   bool
	Max   bool
	Count bool

	// Numeric are the fields eligible for _sum and _avg.
	Numeric []string

	// Comparable are the fields eligible for _min and _max.
	Comparable []string
}

// NewType creates a new type node for the given schema.
func NewType(c *Config, schema *load.Schema) (*Type, error) {
	if err := ValidEntityName(schema.Name); err != nil {
		return nil, err
	}
	typ := &Type{
		Config: c,
		schema: schema,
		Name:   schema.Name,
		fields: make(map[string]*Field),
	}
	for _, sf := range schema.Fields {
		if sf.IsRelation() {
			continue
		}
		f := &Field{
			typ:       typ,
			Name:      sf.Name,
			Type:      sf.Type,
			Enum:      sf.Kind == load.KindEnum,
			Optional:  sf.Optional,
			ReadOnly:  sf.ReadOnly,
			List:      sf.List,
			Unique:    sf.Unique,
			Generated: sf.Generated,
			UpdatedAt: sf.UpdatedAt,
		}
		typ.Fields = append(typ.Fields, f)
		typ.fields[f.Name] = f
	}
	if len(typ.Fields) == 0 {
		return nil, NewSchemaError(schema.Name, "", "entity has no scalar fields", nil)
	}
	typ.ID = typ.identifier()
	typ.Aggregation = typ.aggregation()
	return typ, nil
}

// ValidEntityName checks the entity name is a usable Go identifier
// starting with an uppercase letter.
func ValidEntityName(name string) error {
	if name == "" {
		return NewSchemaError("", "", "entity name cannot be empty", nil)
	}
	for i, r := range name {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return NewSchemaError(name, "", "entity name must start with an uppercase letter", nil)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return NewSchemaError(name, "", fmt.Sprintf("entity name contains invalid rune %q", r), nil)
		}
	}
	return nil
}

// identifier derives the identifier field: the field literally named
// "id" when present, otherwise the first non-list unique scalar in
// declaration order.
func (t *Type) identifier() *Field {
	if f, ok := t.fields["id"]; ok && !f.List {
		return f
	}
	for _, f := range t.Fields {
		if f.Unique && !f.List {
			return f
		}
	}
	return nil
}

// aggregation computes aggregate-selector eligibility. Numeric
// selectors require at least one non-list numeric field; min/max
// extend to timestamps and text. Relation fields never count.
func (t *Type) aggregation() Aggregation {
	agg := Aggregation{Count: true}
	for _, f := range t.Fields {
		if f.List {
			continue
		}
		if f.Type.Numeric() {
			agg.Numeric = append(agg.Numeric, f.Name)
		}
		if f.Type.Comparable() {
			agg.Comparable = append(agg.Comparable, f.Name)
		}
	}
	agg.Sum = len(agg.Numeric) > 0
	agg.Avg = agg.Sum
	agg.Min = len(agg.Comparable) > 0
	agg.Max = agg.Min
	return agg
}

// Field returns the field with the given name, or nil.
func (t *Type) Field(name string) *Field {
	return t.fields[name]
}

// Key is the lower-camel entity key used for rule-table lookup, route
// mounts, and procedure-name prefixes. Only the first rune changes.
func (t *Type) Key() string {
	return lowerFirst(t.Name)
}

// Marker returns the soft-delete marker field, or nil if the entity
// does not follow the marker convention.
func (t *Type) Marker() *Field {
	sf := t.schema.SoftDeleteField()
	if sf == nil {
		return nil
	}
	return t.fields[sf.Name]
}

// SoftDeletable reports whether soft-delete rewriting applies: the
// entity carries the marker field and the global toggle is enabled.
func (t *Type) SoftDeletable() bool {
	return t.Config.SoftDelete && t.Marker() != nil
}

// Groupable returns the fields usable as group-by keys: every
// non-list scalar or enum field.
func (t *Type) Groupable() []*Field {
	var fields []*Field
	for _, f := range t.Fields {
		if !f.List {
			fields = append(fields, f)
		}
	}
	return fields
}

// Selectors returns the aggregate selectors the entity is eligible
// for, in canonical order.
func (t *Type) Selectors() []string {
	sel := []string{"_count"}
	if t.Aggregation.Sum {
		sel = append(sel, "_sum", "_avg")
	}
	if t.Aggregation.Min {
		sel = append(sel, "_min", "_max")
	}
	return sel
}

// Bundle returns the emission bundle descriptor for the entity.
func (t *Type) Bundle() *Bundle {
	return &Bundle{
		Entity: t.Name,
		Key:    t.Key(),
		Export: t.Name + "Procedures",
		File:   snake(t.Name) + "_handlers.go",
		Mount:  "/" + t.Key(),
	}
}

// Comparable reports whether the field is eligible for min/max.
func (f *Field) Comparable() bool {
	return !f.List && f.Type.Comparable()
}

// Numeric reports whether the field is eligible for sum/avg.
func (f *Field) Numeric() bool {
	return !f.List && f.Type.Numeric()
}
