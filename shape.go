package apigen

import (
	"time"
)

// shapeNow is swappable in tests; it stamps soft-delete markers.
var shapeNow = time.Now

// Direction of an ordering term.
type Direction string

// Ordering directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is a single ordering term of a query.
type Order struct {
	Field     string    `json:"field" msgpack:"field"`
	Direction Direction `json:"direction" msgpack:"direction"`
}

// CallShape describes, as pure data, how a procedure's data-access call
// is built: the underlying method, the soft-delete rewrite, the
// not-found policy and the defaulting rules for group-by and aggregate
// inputs. Shapes are synthesized once per (entity, operation) pair at
// generation time and applied to caller arguments at request time.
type CallShape struct {
	// Method is the data-access method after any rewrite, e.g. a
	// delete under soft-delete carries "update" here.
	Method string `json:"method" msgpack:"method"`

	// Marker is the soft-delete marker field name. Empty when the
	// entity has no marker or soft-delete is disabled.
	Marker string `json:"marker,omitempty" msgpack:"marker"`

	// FilterDeleted injects a "marker is null" term into the where
	// clause of read calls unless the caller addressed the marker.
	FilterDeleted bool `json:"filterDeleted,omitempty" msgpack:"filterDeleted"`

	// SetMarker rewrites the call data to stamp the marker with the
	// current timestamp instead of physically deleting.
	SetMarker bool `json:"setMarker,omitempty" msgpack:"setMarker"`

	// CheckMarker treats a fetched record whose marker is non-null as
	// not found (findById under soft-delete).
	CheckMarker bool `json:"checkMarker,omitempty" msgpack:"checkMarker"`

	// ThrowOnNull raises NotFound when the lookup returns no record.
	// Write calls leave zero-row results untouched.
	ThrowOnNull bool `json:"throwOnNull,omitempty" msgpack:"throwOnNull"`

	// DefaultBy replaces an empty group-by key list. An entirely
	// unconstrained group-by is never issued.
	DefaultBy []string `json:"defaultBy,omitempty" msgpack:"defaultBy"`

	// DefaultOrder is the ordering synthesized when the caller
	// paginates a group-by without an explicit ordering. Pagination
	// without ordering would yield nondeterministic pages.
	DefaultOrder []Order `json:"defaultOrder,omitempty" msgpack:"defaultOrder"`

	// CountFallback selects _count: {_all: true} when an aggregate
	// call arrives with no aggregate sub-field. The data layer rejects
	// an aggregate that selects nothing.
	CountFallback bool `json:"countFallback,omitempty" msgpack:"countFallback"`

	// CountShaped marks procedures whose result is an affected-row
	// count. Handlers present it as {count: n}, never a bare number.
	CountShaped bool `json:"countShaped,omitempty" msgpack:"countShaped"`
}

// CallArgs is the caller-supplied portion of a data-access call. The
// zero value is a valid, empty argument set.
type CallArgs struct {
	Where   map[string]any `json:"where,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	By      []string       `json:"by,omitempty"`
	OrderBy []Order        `json:"orderBy,omitempty"`
	Take    *int           `json:"take,omitempty"`
	Skip    *int           `json:"skip,omitempty"`
	Select  map[string]any `json:"select,omitempty"`
}

// Apply rewrites the caller arguments according to the shape and
// returns a new CallArgs. The input is never mutated, and applying the
// same shape to equal arguments yields equal results.
func (c CallShape) Apply(args *CallArgs) *CallArgs {
	out := cloneArgs(args)
	if c.FilterDeleted && c.Marker != "" {
		if _, ok := out.Where[c.Marker]; !ok {
			if out.Where == nil {
				out.Where = make(map[string]any, 1)
			}
			out.Where[c.Marker] = nil
		}
	}
	if c.SetMarker && c.Marker != "" {
		if out.Data == nil {
			out.Data = make(map[string]any, 1)
		}
		out.Data[c.Marker] = shapeNow().UTC()
	}
	if len(out.By) == 0 && len(c.DefaultBy) > 0 {
		out.By = append([]string(nil), c.DefaultBy...)
	}
	if (out.Take != nil || out.Skip != nil) && len(out.OrderBy) == 0 && len(c.DefaultOrder) > 0 {
		out.OrderBy = append([]Order(nil), c.DefaultOrder...)
	}
	if c.CountFallback && len(out.Select) == 0 {
		out.Select = map[string]any{"_count": map[string]any{"_all": true}}
	}
	return out
}

// Deleted reports whether a fetched record should be treated as not
// found under this shape. The record is presented as a field map; only
// the marker field is consulted.
func (c CallShape) Deleted(record map[string]any) bool {
	if !c.CheckMarker || c.Marker == "" || record == nil {
		return false
	}
	v, ok := record[c.Marker]
	return ok && v != nil
}

// cloneArgs copies the argument set one level deep. Nested filter
// values are shared; Apply only ever adds top-level terms.
func cloneArgs(args *CallArgs) *CallArgs {
	out := &CallArgs{}
	if args == nil {
		return out
	}
	if args.Where != nil {
		out.Where = make(map[string]any, len(args.Where))
		for k, v := range args.Where {
			out.Where[k] = v
		}
	}
	if args.Data != nil {
		out.Data = make(map[string]any, len(args.Data))
		for k, v := range args.Data {
			out.Data[k] = v
		}
	}
	out.By = append([]string(nil), args.By...)
	out.OrderBy = append([]Order(nil), args.OrderBy...)
	if args.Take != nil {
		take := *args.Take
		out.Take = &take
	}
	if args.Skip != nil {
		skip := *args.Skip
		out.Skip = &skip
	}
	if args.Select != nil {
		out.Select = make(map[string]any, len(args.Select))
		for k, v := range args.Select {
			out.Select[k] = v
		}
	}
	return out
}
