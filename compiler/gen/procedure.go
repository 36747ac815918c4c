package gen

import (
	"github.com/syssam/apigen"
	"github.com/syssam/apigen/compiler/load"
)

// Procedure is one synthesized request handler plan: the binding of an
// entity and an operation kind to a name, a route, an input/output
// contract, and a data-access call shape.
type Procedure struct {
	// Entity is the entity type name, e.g. "User".
	Entity string

	// Op is the operation kind.
	Op Op

	// Name is the derived procedure name. It doubles as the rule-table
	// key for the entity.
	Name string

	// Input and Output are the contract type names of the handler.
	Input  string
	Output string

	// Route is the HTTP route the handler mounts at.
	Route string

	// Write reports whether the procedure mutates records.
	Write bool

	// Envelope reports whether successful results are wrapped in the
	// uniform response envelope.
	Envelope bool

	// Selectors are the aggregate selectors available to the
	// procedure. Set for aggregate and groupBy only.
	Selectors []string

	// Call is the synthesized data-access call shape.
	Call apigen.CallShape
}

// ProcedureName derives the externally visible procedure name for an
// entity and operation. Unprefixed names are the plain operation name;
// prefixed names lowercase only the entity's first rune and uppercase
// only the operation's first rune, preserving every interior capital
// on both sides.
func ProcedureName(entity string, op Op, prefixed bool) string {
	if !prefixed {
		return op.String()
	}
	return lowerFirst(entity) + upperFirst(op.String())
}

// Procedures synthesizes the procedure plans for every enabled
// operation of the type, in canonical operation order.
func (t *Type) Procedures() ([]*Procedure, error) {
	ops := t.Config.enabled()
	procs := make([]*Procedure, 0, len(ops))
	for _, op := range ops {
		p, err := t.procedure(op)
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}
	return procs, nil
}

// procedure synthesizes the plan for one operation.
func (t *Type) procedure(op Op) (*Procedure, error) {
	p := &Procedure{
		Entity:   t.Name,
		Op:       op,
		Name:     ProcedureName(t.Name, op, t.Config.PrefixNames),
		Input:    t.Name + upperFirst(op.String()) + "Input",
		Output:   t.output(op),
		Route:    "/" + t.Key() + "/" + op.String(),
		Write:    op.Write(),
		Envelope: t.Config.Envelope,
		Call:     apigen.CallShape{Method: op.CallName()},
	}
	soft := t.SoftDeletable()
	if soft {
		p.Call.Marker = load.MarkerField
	}
	switch op {
	case OpFindFirst, OpFindUnique:
		p.Call.ThrowOnNull = true
		if soft {
			p.Call.FilterDeleted = true
		}
		if op == OpFindUnique && soft {
			// Unique lookups go through the primary key, so the marker
			// is checked on the fetched record instead of the filter.
			p.Call.FilterDeleted = false
			p.Call.CheckMarker = true
		}
	case OpFindMany:
		if soft {
			p.Call.FilterDeleted = true
		}
	case OpCount:
		if soft {
			p.Call.FilterDeleted = true
		}
		p.Call.CountShaped = true
	case OpCreateMany, OpUpdateMany:
		p.Call.CountShaped = true
	case OpDelete:
		if soft {
			p.Call.Method = OpUpdate.CallName()
			p.Call.SetMarker = true
		}
	case OpDeleteMany:
		if soft {
			p.Call.Method = OpUpdateMany.CallName()
			p.Call.SetMarker = true
		}
		p.Call.CountShaped = true
	case OpAggregate:
		if soft {
			p.Call.FilterDeleted = true
		}
		p.Call.CountFallback = true
		p.Selectors = t.Selectors()
	case OpGroupBy:
		if soft {
			p.Call.FilterDeleted = true
		}
		if len(t.Groupable()) == 0 {
			return nil, NewSynthesisError(t.Name, op, "entity has no groupable fields", nil)
		}
		if t.ID == nil {
			return nil, NewSynthesisError(t.Name, op, "entity has no identifier field to default the group-by key", nil)
		}
		p.Call.DefaultBy = []string{t.ID.Name}
		p.Call.DefaultOrder = []apigen.Order{{Field: t.ID.Name, Direction: apigen.Asc}}
		p.Selectors = t.Selectors()
	}
	return p, nil
}

// output returns the output contract type name for an operation.
func (t *Type) output(op Op) string {
	switch op {
	case OpFindMany:
		return t.Name + "List"
	case OpCreateMany, OpUpdateMany, OpDeleteMany, OpCount:
		return "CountResult"
	case OpAggregate:
		return t.Name + "AggregateResult"
	case OpGroupBy:
		return t.Name + "GroupByResult"
	default:
		return t.Name
	}
}
