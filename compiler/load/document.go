package load

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Raw document structure as produced by the schema introspector. The
// document is YAML; JSON documents parse as well since YAML is a
// superset.
type (
	document struct {
		Entities []*rawEntity `yaml:"entities"`
	}

	rawEntity struct {
		Name    string      `yaml:"name"`
		Doc     string      `yaml:"doc"`
		Fields  []*rawField `yaml:"fields"`
		Unique  [][]string  `yaml:"unique"`
		Indexes []*rawIndex `yaml:"indexes"`
	}

	rawField struct {
		Name      string       `yaml:"name"`
		Kind      string       `yaml:"kind"`
		Type      string       `yaml:"type"`
		Optional  bool         `yaml:"optional"`
		ReadOnly  bool         `yaml:"readOnly"`
		List      bool         `yaml:"list"`
		Unique    bool         `yaml:"unique"`
		Generated bool         `yaml:"generated"`
		UpdatedAt bool         `yaml:"updatedAt"`
		Relation  *rawRelation `yaml:"relation"`
	}

	rawRelation struct {
		Name       string   `yaml:"name"`
		Fields     []string `yaml:"fields"`
		References []string `yaml:"references"`
	}

	rawIndex struct {
		Name   string   `yaml:"name"`
		Fields []string `yaml:"fields"`
		Unique bool     `yaml:"unique"`
	}
)

// ParseDocument normalizes a raw schema document into the canonical
// entity list. Hidden entities are resolved and excluded here; no
// downstream stage ever observes them. Field declaration order is
// preserved.
func ParseDocument(data []byte) ([]*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewMappingError("", "", "malformed schema document", err)
	}
	if len(doc.Entities) == 0 {
		return nil, NewMappingError("", "", "schema document declares no entities", nil)
	}
	seen := make(map[string]struct{}, len(doc.Entities))
	schemas := make([]*Schema, 0, len(doc.Entities))
	for _, re := range doc.Entities {
		s, err := normalizeEntity(re)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[s.Name]; ok {
			return nil, NewMappingError(s.Name, "", "entity redeclared", nil)
		}
		seen[s.Name] = struct{}{}
		if s.Hidden() {
			continue
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// ReadDocument reads and normalizes a schema document from disk.
func ReadDocument(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMappingError("", "", fmt.Sprintf("reading schema document %s", path), err)
	}
	return ParseDocument(data)
}

// normalizeEntity maps one raw entity to its canonical form, checking
// every invariant the downstream stages rely on.
func normalizeEntity(re *rawEntity) (*Schema, error) {
	if re.Name == "" {
		return nil, NewMappingError("", "", "entity name cannot be empty", nil)
	}
	s := &Schema{
		Name:       re.Name,
		Doc:        re.Doc,
		Fields:     make([]*Field, 0, len(re.Fields)),
		fields:     make(map[string]*Field, len(re.Fields)),
		UniqueSets: re.Unique,
	}
	for _, rf := range re.Fields {
		f, err := normalizeField(re.Name, rf)
		if err != nil {
			return nil, err
		}
		if s.fields[f.Name] != nil {
			return nil, NewMappingError(re.Name, f.Name, "field redeclared", nil)
		}
		s.Fields = append(s.Fields, f)
		s.fields[f.Name] = f
	}
	for _, set := range re.Unique {
		for _, name := range set {
			if s.fields[name] == nil {
				return nil, NewMappingError(re.Name, name, "unique set references unknown field", nil)
			}
		}
	}
	for _, ri := range re.Indexes {
		if len(ri.Fields) == 0 {
			return nil, NewMappingError(re.Name, "", fmt.Sprintf("index %q has no fields", ri.Name), nil)
		}
		for _, name := range ri.Fields {
			if s.fields[name] == nil {
				return nil, NewMappingError(re.Name, name, fmt.Sprintf("index %q references unknown field", ri.Name), nil)
			}
		}
		s.Indexes = append(s.Indexes, &Index{Name: ri.Name, Fields: ri.Fields, Unique: ri.Unique})
	}
	return s, nil
}

// normalizeField maps one raw field, classifying kind and type.
func normalizeField(entity string, rf *rawField) (*Field, error) {
	if rf.Name == "" {
		return nil, NewMappingError(entity, "", "field name cannot be empty", nil)
	}
	kind, err := ParseKind(rf.Kind)
	if err != nil {
		return nil, NewMappingError(entity, rf.Name, "unsupported field kind", err)
	}
	f := &Field{
		Name:      rf.Name,
		Kind:      kind,
		Optional:  rf.Optional,
		ReadOnly:  rf.ReadOnly,
		List:      rf.List,
		Unique:    rf.Unique,
		Generated: rf.Generated,
		UpdatedAt: rf.UpdatedAt,
	}
	switch kind {
	case KindObject:
		if rf.Relation == nil || rf.Relation.Name == "" {
			return nil, NewMappingError(entity, rf.Name, "object field requires a relation", nil)
		}
		if len(rf.Relation.Fields) != len(rf.Relation.References) {
			return nil, NewMappingError(entity, rf.Name, "relation field/reference pairs are unbalanced", nil)
		}
		f.Relation = &Relation{
			Name:       rf.Relation.Name,
			Fields:     rf.Relation.Fields,
			References: rf.Relation.References,
		}
	default:
		if rf.Relation != nil {
			return nil, NewMappingError(entity, rf.Name, fmt.Sprintf("%s field cannot carry a relation", kind), nil)
		}
		typ := TypeText
		if rf.Type != "" || kind == KindScalar {
			typ, err = ParseType(rf.Type)
			if err != nil {
				return nil, NewMappingError(entity, rf.Name, "unsupported field type", err)
			}
		}
		f.Type = typ
	}
	return f, nil
}
