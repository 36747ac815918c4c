package gen

import (
	"strings"
)

// Rule is the authorization posture of one synthesized procedure.
// The zero value denies: unrecognized configuration can only ever
// become more restrictive, never less.
type Rule uint8

// Authorization rules.
const (
	RuleDeny Rule = iota
	RuleAllow
	RuleAuthenticated
	RuleCustom
)

var ruleNames = [...]string{
	RuleDeny:          "deny",
	RuleAllow:         "allow",
	RuleAuthenticated: "authenticated",
	RuleCustom:        "custom",
}

// String returns the configuration name of the rule.
func (r Rule) String() string {
	if int(r) >= len(ruleNames) {
		return "deny"
	}
	return ruleNames[r]
}

// ParseRule resolves a configured rule value. Anything that is not a
// recognized rule name, including the empty string, resolves to deny.
func ParseRule(s string) Rule {
	switch s {
	case "allow":
		return RuleAllow
	case "authenticated":
		return RuleAuthenticated
	}
	return RuleDeny
}

// RuleTable maps lower-camel entity keys to procedure names to rules.
// The key set mirrors the synthesized procedures exactly: every
// procedure has a rule, every rule has a procedure.
type RuleTable map[string]map[string]Rule

// Rule returns the rule for the given entity key and procedure name.
// Missing entries deny.
func (t RuleTable) Rule(entity, procedure string) Rule {
	return t[entity][procedure]
}

// synthesizeRules builds the rule table for the given procedures,
// applying the configured read and write defaults per bucket.
func (c *Config) synthesizeRules(byEntity map[string][]*Procedure) RuleTable {
	read := ParseRule(c.ReadRule)
	write := ParseRule(c.WriteRule)
	table := make(RuleTable, len(byEntity))
	for key, procs := range byEntity {
		rules := make(map[string]Rule, len(procs))
		for _, p := range procs {
			if p.Write {
				rules[p.Name] = write
			} else {
				rules[p.Name] = read
			}
		}
		table[key] = rules
	}
	return table
}

// PolicyImportKind classifies how a custom policy module is addressed.
type PolicyImportKind uint8

// Policy import kinds.
const (
	// ImportBare addresses a module by import path.
	ImportBare PolicyImportKind = iota
	// ImportRelative addresses a module relative to the target
	// directory.
	ImportRelative
	// ImportAbsolute addresses a module by absolute filesystem path.
	ImportAbsolute
)

// PolicyExport is the identifier a custom policy module must export.
const PolicyExport = "Permissions"

// PolicyImport describes the resolved import of a hand-written policy
// module. When present, rule-table synthesis is bypassed and the
// emitted policy artifact re-exports the module's Permissions object.
type PolicyImport struct {
	// Source is the configured policy source, verbatim.
	Source string

	// Kind is the addressing mode of the source.
	Kind PolicyImportKind

	// Export is the identifier the module must export.
	Export string
}

// resolvePolicy classifies the configured policy source. An empty
// source means no custom policy and synthesized rules apply.
func resolvePolicy(source string) (*PolicyImport, error) {
	if source == "" {
		return nil, nil
	}
	if strings.ContainsAny(source, " \t\n") {
		return nil, NewConfigError("PolicySource", source, "policy source contains whitespace")
	}
	imp := &PolicyImport{Source: source, Export: PolicyExport}
	switch {
	case strings.HasPrefix(source, "/"):
		imp.Kind = ImportAbsolute
	case strings.HasPrefix(source, "./"), strings.HasPrefix(source, "../"):
		imp.Kind = ImportRelative
	default:
		imp.Kind = ImportBare
	}
	return imp, nil
}
