package gen

// Op is an operation kind a procedure can be synthesized for.
type Op uint8

// Operation kinds, in canonical order. The order is stable and drives
// deterministic procedure output.
const (
	OpCreate Op = iota
	OpCreateMany
	OpFindFirst
	OpFindMany
	OpFindUnique
	OpUpdate
	OpUpdateMany
	OpUpsert
	OpDelete
	OpDeleteMany
	OpCount
	OpAggregate
	OpGroupBy
	endOps
)

// opInfo carries the static classification of each operation kind.
// name is the externally visible operation name used in procedure
// names and routes; call is the data-access client method invoked by
// the synthesized call shape before any soft-delete rewriting.
type opInfo struct {
	name      string
	call      string
	write     bool
	essential bool
}

var opInfos = [endOps]opInfo{
	OpCreate:     {name: "create", call: "create", write: true, essential: true},
	OpCreateMany: {name: "createMany", call: "createMany", write: true},
	OpFindFirst:  {name: "findFirst", call: "findFirst"},
	OpFindMany:   {name: "findMany", call: "findMany", essential: true},
	OpFindUnique: {name: "findById", call: "findUnique", essential: true},
	OpUpdate:     {name: "update", call: "update", write: true, essential: true},
	OpUpdateMany: {name: "updateMany", call: "updateMany", write: true},
	OpUpsert:     {name: "upsert", call: "upsert", write: true},
	OpDelete:     {name: "delete", call: "delete", write: true, essential: true},
	OpDeleteMany: {name: "deleteMany", call: "deleteMany", write: true},
	OpCount:      {name: "count", call: "count", essential: true},
	OpAggregate:  {name: "aggregate", call: "aggregate"},
	OpGroupBy:    {name: "groupBy", call: "groupBy"},
}

// String returns the external operation name, e.g. "findById".
func (op Op) String() string {
	if op >= endOps {
		return "invalid"
	}
	return opInfos[op].name
}

// CallName returns the data-access client method the operation maps to
// before soft-delete rewriting, e.g. "findUnique" for OpFindUnique.
func (op Op) CallName() string {
	if op >= endOps {
		return "invalid"
	}
	return opInfos[op].call
}

// Write reports whether the operation mutates records. Write
// operations consult the write authorization bucket.
func (op Op) Write() bool {
	return op < endOps && opInfos[op].write
}

// Read reports whether the operation only reads records.
func (op Op) Read() bool {
	return op < endOps && !opInfos[op].write
}

// Essential reports whether the operation is always synthesized, even
// when an allow-list omits it.
func (op Op) Essential() bool {
	return op < endOps && opInfos[op].essential
}

// Valid reports whether op is a known operation kind.
func (op Op) Valid() bool {
	return op < endOps
}

// AllOps returns every operation kind in canonical order.
func AllOps() []Op {
	ops := make([]Op, 0, endOps)
	for op := OpCreate; op < endOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

// EssentialOps returns the operation kinds that are always synthesized.
func EssentialOps() []Op {
	var ops []Op
	for op := OpCreate; op < endOps; op++ {
		if op.Essential() {
			ops = append(ops, op)
		}
	}
	return ops
}

// ParseOp resolves an external operation name to its kind. The unique
// lookup accepts both its external name "findById" and its client
// method name "findUnique".
func ParseOp(name string) (Op, error) {
	for op := OpCreate; op < endOps; op++ {
		if opInfos[op].name == name {
			return op, nil
		}
	}
	if name == "findUnique" {
		return OpFindUnique, nil
	}
	return endOps, NewConfigError("Operations", name, "unknown operation kind")
}
