package gen

import (
	"slices"

	"github.com/syssam/apigen/compiler/load"
)

// Config holds the typed generation configuration for a synthesis run.
// Construct it with NewConfig or ConfigFromLoad so defaults apply.
type Config struct {
	// Operations is the allow-list of operation kinds. Empty enables
	// every kind. Essential operations are synthesized regardless.
	Operations []Op

	// PrefixNames prepends the lower-camel entity name to every
	// procedure name.
	PrefixNames bool

	// SoftDelete enables marker-driven soft-delete rewriting for
	// entities that carry the marker field. Defaults to true.
	SoftDelete bool

	// Envelope wraps successful handler results in the uniform
	// response envelope. Defaults to true.
	Envelope bool

	// ReadRule and WriteRule are the configured default rules for the
	// read and write authorization buckets. Unrecognized values
	// resolve to deny.
	ReadRule  string
	WriteRule string

	// PolicySource points at a hand-written policy module. Non-empty
	// bypasses rule-table synthesis entirely.
	PolicySource string

	// ClientPackage is the import path of the generated data-access
	// client the emitted handlers delegate to.
	ClientPackage string

	// Package is the output package import path.
	Package string

	// Target is the output directory.
	Target string

	// Features toggles optional codegen capabilities.
	Features []Feature
}

// FeatureEnabled reports if the given feature name is enabled.
// It returns an error if the name is not a known feature.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	for _, f := range AllFeatures {
		if name == f.Name {
			return f.Default || slices.ContainsFunc(c.Features, func(f Feature) bool {
				return f.Name == name
			}), nil
		}
	}
	return false, NewConfigError("Features", name, "unknown feature flag")
}

// enabled returns the operation kinds this configuration synthesizes,
// in canonical order. An empty allow-list enables all kinds; essential
// operations are always included.
func (c *Config) enabled() []Op {
	if len(c.Operations) == 0 {
		return AllOps()
	}
	var ops []Op
	for _, op := range AllOps() {
		if op.Essential() || slices.Contains(c.Operations, op) {
			ops = append(ops, op)
		}
	}
	return ops
}

// ConfigFromLoad converts a loader configuration into a typed Config,
// resolving operation names to kinds.
func ConfigFromLoad(lc *load.Config) (*Config, error) {
	if lc == nil {
		return nil, NewConfigError("Config", nil, "loader configuration is nil")
	}
	c := &Config{
		PrefixNames:   lc.PrefixNames,
		SoftDelete:    lc.SoftDelete,
		Envelope:      lc.Envelope,
		ReadRule:      lc.ReadRule,
		WriteRule:     lc.WriteRule,
		PolicySource:  lc.PolicySource,
		ClientPackage: lc.ClientPackage,
		Package:       lc.Package,
		Target:        lc.Target,
	}
	for _, name := range lc.Operations {
		op, err := ParseOp(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(c.Operations, op) {
			c.Operations = append(c.Operations, op)
		}
	}
	return c, nil
}
