// Package permission provides the runtime evaluation of generated
// authorization rule tables. Generated router bundles consult a Table
// keyed by the exact procedure names the generator minted; rules decide
// per request whether the procedure may run.
package permission

import (
	"context"
	"errors"
	"fmt"
)

// Rule decision sentinel errors.
//
// Rules return these values to steer evaluation. Use errors.Is to
// check for them:
//
//	if errors.Is(err, permission.Deny) { ... }
var (
	// Allow terminates evaluation with an allow decision.
	Allow = errors.New("apigen/permission: allow rule")

	// Deny terminates evaluation with a deny decision.
	Deny = errors.New("apigen/permission: deny rule")

	// Skip abstains and passes evaluation to the next rule.
	Skip = errors.New("apigen/permission: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Request describes the procedure invocation under evaluation.
type Request struct {
	// Entity is the procedure's entity key (lower-camel form).
	Entity string

	// Procedure is the procedure name as minted by the generator.
	Procedure string

	// Write reports the operation's authorization bucket.
	Write bool
}

// Rule decides whether a procedure invocation is permitted.
type Rule interface {
	Eval(ctx context.Context, r *Request) error
}

// RuleFunc adapts an ordinary function to a Rule.
type RuleFunc func(ctx context.Context, r *Request) error

// Eval returns f(ctx, r).
func (f RuleFunc) Eval(ctx context.Context, r *Request) error {
	return f(ctx, r)
}

// AlwaysAllowRule returns a rule that always allows.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always denies.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// AuthenticatedRule permits an invocation only when a caller identity
// is present in the request context.
func AuthenticatedRule() Rule {
	return RuleFunc(func(ctx context.Context, _ *Request) error {
		if _, ok := CallerFromContext(ctx); ok {
			return Allow
		}
		return Denyf("apigen/permission: caller identity required")
	})
}

// OnWrite evaluates the given rule only for write procedures,
// skipping reads.
func OnWrite(rule Rule) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		if r.Write {
			return rule.Eval(ctx, r)
		}
		return Skip
	})
}

// Chain combines rules; the first non-skip decision wins.
type Chain []Rule

// Eval evaluates the chain. A nil decision from a rule is treated as
// Skip. If no rule decides, Eval returns Skip.
func (c Chain) Eval(ctx context.Context, r *Request) error {
	for _, rule := range c {
		switch decision := rule.Eval(ctx, r); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return Skip
}

// Table maps entity key to procedure name to rule. It is the runtime
// form of the generated authorization rule table.
type Table map[string]map[string]Rule

// Eval evaluates the rule for the given procedure. Missing entities,
// missing procedures and abstaining rules all deny: the table is
// secure by default.
func (t Table) Eval(ctx context.Context, r *Request) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	procs, ok := t[r.Entity]
	if !ok {
		return Denyf("apigen/permission: no rules for entity %q", r.Entity)
	}
	rule, ok := procs[r.Procedure]
	if !ok {
		return Denyf("apigen/permission: no rule for procedure %q", r.Procedure)
	}
	switch decision := rule.Eval(ctx, r); {
	case errors.Is(decision, Allow):
		return nil
	case decision == nil, errors.Is(decision, Skip):
		return Denyf("apigen/permission: no decision for procedure %q", r.Procedure)
	default:
		return decision
	}
}

// Allowed is a convenience wrapper over Eval.
func (t Table) Allowed(ctx context.Context, r *Request) bool {
	return t.Eval(ctx, r) == nil
}

// Allowed reports whether a decision grants the request. Both a nil
// decision and the Allow sentinel grant; everything else denies.
func Allowed(decision error) bool {
	return decision == nil || errors.Is(decision, Allow)
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) Eval(context.Context, *Request) error {
	return f.decision
}

// Caller identifies the authenticated principal of a request.
type Caller struct {
	// Subject is the principal identifier.
	Subject string

	// Roles carries optional role names for custom rules.
	Roles []string
}

// HasRole reports whether the caller carries the given role.
func (c *Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type callerCtxKey struct{}

// WithCaller returns a context carrying the caller identity.
func WithCaller(parent context.Context, c *Caller) context.Context {
	return context.WithValue(parent, callerCtxKey{}, c)
}

// CallerFromContext retrieves the caller identity from the context.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerCtxKey{}).(*Caller)
	return c, ok && c != nil
}

// DecisionContext returns a context with a fixed evaluation decision
// attached. Useful for bypassing table evaluation in internal calls.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the fixed decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type decisionCtxKey struct{}
