package apigen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/syssam/apigen/permission"
)

// Client is the data-access surface synthesized handlers delegate to.
// The generated client package implements it; tests substitute fakes.
type Client interface {
	// Call executes one data-access method for an entity. A nil result
	// with a nil error means no record matched.
	Call(ctx context.Context, entity, method string, args *CallArgs) (any, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, entity, method string, args *CallArgs) (any, error)

// Call implements the Client interface.
func (f ClientFunc) Call(ctx context.Context, entity, method string, args *CallArgs) (any, error) {
	return f(ctx, entity, method, args)
}

// Handler serves one synthesized procedure over HTTP: it authorizes
// the request, applies the call shape to the caller arguments,
// delegates to the client, and maps failures onto the error taxonomy.
type Handler struct {
	// Entity is the entity type name, e.g. "User".
	Entity string

	// Key is the lower-camel entity key used for authorization.
	Key string

	// Procedure is the procedure name, doubling as the rule key.
	Procedure string

	// Write marks mutating procedures for authorization.
	Write bool

	// Shape is the synthesized data-access call shape.
	Shape CallShape

	// Rule authorizes requests. A nil rule denies.
	Rule permission.Rule

	// Envelope wraps successful results in the response envelope.
	Envelope bool

	// Client executes the data-access call.
	Client Client
}

// NewHandler builds a procedure handler.
func NewHandler(entity, key, procedure string, write bool, shape CallShape, rule permission.Rule, envelope bool, c Client) *Handler {
	return &Handler{
		Entity:    entity,
		Key:       key,
		Procedure: procedure,
		Write:     write,
		Shape:     shape,
		Rule:      rule,
		Envelope:  envelope,
		Client:    c,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()
	if h.Rule == nil || !permission.Allowed(h.Rule.Eval(ctx, &permission.Request{
		Entity:    h.Key,
		Procedure: h.Procedure,
		Write:     h.Write,
	})) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}
	var args CallArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed arguments")
		return
	}
	res, err := h.Client.Call(ctx, h.Entity, h.Shape.Method, h.Shape.Apply(&args))
	if err != nil {
		h.writeMapped(w, err)
		return
	}
	if res == nil && h.Shape.ThrowOnNull {
		h.writeMapped(w, NewNotFound(h.Entity))
		return
	}
	if h.Shape.CheckMarker {
		if record, ok := res.(map[string]any); ok && h.Shape.Deleted(record) {
			h.writeMapped(w, NewNotFound(h.Entity))
			return
		}
	}
	var body any
	switch {
	case h.Shape.CountShaped && h.Envelope:
		body = WrapCount(h.Procedure, countOf(res))
	case h.Shape.CountShaped:
		body = CountResult{Count: countOf(res)}
	case h.Envelope:
		body = Wrap(h.Procedure, res)
	default:
		body = res
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		return
	}
}

// writeMapped funnels a failure through the taxonomy and writes the
// uniform error body.
func (h *Handler) writeMapped(w http.ResponseWriter, err error) {
	mapped := Map(h.Entity, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(mapped.Kind().HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"kind":    mapped.Kind().String(),
			"entity":  mapped.Entity(),
			"message": mapped.Message(),
		},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message},
	})
}
