package gen

import (
	"fmt"
	"strings"
)

// Bundle describes the emission unit of one entity: the exported
// identifier, the file the handlers land in, and the route mount.
type Bundle struct {
	// Entity is the entity type name.
	Entity string

	// Key is the lower-camel entity key.
	Key string

	// Export is the exported bundle identifier, e.g. "UserProcedures".
	Export string

	// File is the emitted file name.
	File string

	// Mount is the route mount point, e.g. "/user".
	Mount string
}

// Artifacts is the complete output of one synthesis run: procedure
// plans, the authorization table or custom policy import, and the
// per-entity bundles. Verify must pass before anything is emitted.
type Artifacts struct {
	// Procedures are all synthesized plans, in entity then canonical
	// operation order.
	Procedures []*Procedure

	// ByEntity groups procedures by lower-camel entity key.
	ByEntity map[string][]*Procedure

	// Rules is the synthesized authorization table. Empty when a
	// custom policy module is configured.
	Rules RuleTable

	// Bundles are the per-entity emission units, in graph order.
	Bundles []*Bundle

	// Policy is the custom policy import, or nil when rules are
	// synthesized.
	Policy *PolicyImport
}

// Verify checks the cross-artifact guarantees: bundle exports, files,
// and mounts collide on nothing (case-insensitively), procedure names
// are unique within an entity, routes are globally unique, and the
// rule-table key set mirrors the procedures exactly.
func (a *Artifacts) Verify() error {
	if err := a.verifyBundles(); err != nil {
		return err
	}
	if err := a.verifyProcedures(); err != nil {
		return err
	}
	return a.verifyRules()
}

func (a *Artifacts) verifyBundles() error {
	var (
		exports = make(map[string]string, len(a.Bundles))
		files   = make(map[string]string, len(a.Bundles))
		mounts  = make(map[string]string, len(a.Bundles))
	)
	claim := func(entity, what string, seen map[string]string) error {
		folded := strings.ToLower(what)
		if prev, ok := seen[folded]; ok {
			return NewConsistencyError(entity, "bundles",
				"identifier collides after case folding", prev, what)
		}
		seen[folded] = what
		return nil
	}
	for _, b := range a.Bundles {
		if err := claim(b.Entity, b.Export, exports); err != nil {
			return err
		}
		if err := claim(b.Entity, b.File, files); err != nil {
			return err
		}
		if err := claim(b.Entity, b.Mount, mounts); err != nil {
			return err
		}
	}
	return nil
}

func (a *Artifacts) verifyProcedures() error {
	routes := make(map[string]string, len(a.Procedures))
	for key, procs := range a.ByEntity {
		names := make(map[string]bool, len(procs))
		for _, p := range procs {
			if names[p.Name] {
				return NewConsistencyError(p.Entity, "procedures",
					fmt.Sprintf("procedure name %q synthesized twice", p.Name))
			}
			names[p.Name] = true
			if prev, ok := routes[p.Route]; ok {
				return NewConsistencyError(p.Entity, "routes",
					fmt.Sprintf("route %q already mounted", p.Route), prev)
			}
			routes[p.Route] = key + "." + p.Name
		}
	}
	return nil
}

func (a *Artifacts) verifyRules() error {
	if a.Policy != nil {
		if len(a.Rules) > 0 {
			return NewConsistencyError("", "policy",
				"custom policy module configured but rules were synthesized")
		}
		if a.Policy.Export != PolicyExport {
			return NewConsistencyError("", "policy",
				fmt.Sprintf("policy module must export %q", PolicyExport))
		}
		return nil
	}
	if len(a.Rules) != len(a.ByEntity) {
		return NewConsistencyError("", "rules",
			fmt.Sprintf("rule table covers %d entities, procedures cover %d", len(a.Rules), len(a.ByEntity)))
	}
	for key, procs := range a.ByEntity {
		rules, ok := a.Rules[key]
		if !ok {
			return NewConsistencyError(key, "rules", "entity has procedures but no rule entry")
		}
		if len(rules) != len(procs) {
			return NewConsistencyError(key, "rules",
				fmt.Sprintf("entity has %d procedures but %d rules", len(procs), len(rules)))
		}
		for _, p := range procs {
			if _, ok := rules[p.Name]; !ok {
				return NewConsistencyError(key, "rules",
					fmt.Sprintf("procedure %q has no rule entry", p.Name))
			}
		}
	}
	return nil
}
