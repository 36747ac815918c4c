package gen

import (
	"github.com/syssam/apigen/compiler/load"
)

// Generate runs the full synthesis pipeline over normalized schemas:
// graph construction, procedure synthesis, authorization synthesis,
// and the cross-artifact consistency check. It is a pure
// transformation; nothing touches the filesystem.
func Generate(c *Config, schemas ...*load.Schema) (*Artifacts, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "configuration is nil")
	}
	if c.ClientPackage == "" {
		return nil, NewConfigError("ClientPackage", nil,
			"data-access client package not configured: generate the client first")
	}
	g, err := NewGraph(c, schemas...)
	if err != nil {
		return nil, err
	}
	return g.Artifacts()
}

// Artifacts synthesizes the artifacts of the graph.
func (g *Graph) Artifacts() (*Artifacts, error) {
	a := &Artifacts{
		ByEntity: make(map[string][]*Procedure, len(g.Nodes)),
	}
	for _, t := range g.Nodes {
		procs, err := t.Procedures()
		if err != nil {
			return nil, err
		}
		a.Procedures = append(a.Procedures, procs...)
		a.ByEntity[t.Key()] = procs
		a.Bundles = append(a.Bundles, t.Bundle())
	}
	policy, err := resolvePolicy(g.Config.PolicySource)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		a.Policy = policy
	} else {
		a.Rules = g.Config.synthesizeRules(a.ByEntity)
	}
	if err := a.Verify(); err != nil {
		return nil, err
	}
	return a, nil
}
