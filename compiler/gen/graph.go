package gen

import (
	"github.com/syssam/apigen/compiler/load"
)

// Graph is the synthesis graph: every visible entity of a document,
// wrapped with the configuration of the run. Node order follows
// document order and is stable across runs.
type Graph struct {
	*Config

	// Nodes are the entity types of the graph.
	Nodes []*Type

	nodes map[string]*Type
}

// NewGraph creates a new Graph for the given configuration and
// normalized schemas. Hidden entities are skipped; duplicate entity
// names fail.
func NewGraph(c *Config, schemas ...*load.Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "configuration is nil")
	}
	g := &Graph{
		Config: c,
		nodes:  make(map[string]*Type, len(schemas)),
	}
	for _, schema := range schemas {
		if schema.Hidden() {
			continue
		}
		if g.nodes[schema.Name] != nil {
			return nil, NewSchemaError(schema.Name, "", "entity declared twice", nil)
		}
		typ, err := NewType(c, schema)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, typ)
		g.nodes[typ.Name] = typ
	}
	return g, nil
}

// Type returns the node with the given entity name, or nil.
func (g *Graph) Type(name string) *Type {
	return g.nodes[name]
}
