package load

import "fmt"

// FieldKind classifies a field as a scalar value, an object reference
// (relation) or an enum.
type FieldKind uint8

// Field kinds.
const (
	KindScalar FieldKind = iota
	KindObject
	KindEnum
)

// String returns the schema-document name of the kind.
func (k FieldKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	default:
		return "scalar"
	}
}

// ParseKind maps a raw kind tag to a FieldKind. The empty tag defaults
// to scalar.
func ParseKind(s string) (FieldKind, error) {
	switch s {
	case "", "scalar":
		return KindScalar, nil
	case "object":
		return KindObject, nil
	case "enum":
		return KindEnum, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// FieldType is the underlying type tag of a field. The set is closed;
// unknown tags fail normalization.
type FieldType uint8

// Field types.
const (
	TypeInvalid FieldType = iota
	TypeText
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeDecimal
	TypeBoolean
	TypeTimestamp
	TypeBinary
	TypeJSON
)

var typeNames = [...]string{
	TypeInvalid:   "invalid",
	TypeText:      "text",
	TypeInteger:   "integer",
	TypeBigInt:    "bigint",
	TypeFloat:     "float",
	TypeDecimal:   "decimal",
	TypeBoolean:   "boolean",
	TypeTimestamp: "timestamp",
	TypeBinary:    "binary",
	TypeJSON:      "json",
}

// String returns the schema-document name of the type.
func (t FieldType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports whether the type is a member of the closed set.
func (t FieldType) Valid() bool {
	return t > TypeInvalid && int(t) < len(typeNames)
}

// Numeric reports whether the type participates in sum/avg aggregation.
func (t FieldType) Numeric() bool {
	switch t {
	case TypeInteger, TypeBigInt, TypeFloat, TypeDecimal:
		return true
	}
	return false
}

// Comparable reports whether the type participates in min/max
// aggregation: numeric, timestamp and text types order totally.
func (t FieldType) Comparable() bool {
	return t.Numeric() || t == TypeTimestamp || t == TypeText
}

// ParseType maps a raw type tag to a FieldType.
func ParseType(s string) (FieldType, error) {
	for t, name := range typeNames {
		if FieldType(t) != TypeInvalid && s == name {
			return FieldType(t), nil
		}
	}
	return TypeInvalid, fmt.Errorf("unknown field type %q", s)
}
