package load

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the typed generation configuration handed to the synthesis
// core. Documents historically carry booleans as the strings "true" /
// "false"; coercion happens here, exactly once, so the core only ever
// sees typed values.
type Config struct {
	// Operations is the allow-list of operation names. Empty enables
	// every operation kind.
	Operations []string

	// PrefixNames prepends the lower-camel entity name to procedure
	// names.
	PrefixNames bool

	// SoftDelete enables marker-driven soft-delete behavior. Defaults
	// to true; the toggle only restricts marker-driven behavior.
	SoftDelete bool

	// Envelope wraps every successful result in the uniform envelope.
	// Defaults to true; documents opt out explicitly.
	Envelope bool

	// ReadRule and WriteRule are the configured default rules per
	// authorization bucket. They are carried verbatim: unrecognized
	// values resolve to deny downstream, never to a load failure.
	ReadRule  string
	WriteRule string

	// PolicySource points at a custom policy module. Non-empty
	// bypasses rule-table synthesis.
	PolicySource string

	// ClientPackage is the import path of the generated data-access
	// client the emitted handlers call into.
	ClientPackage string

	// Package is the output package import path.
	Package string

	// Target is the output directory.
	Target string
}

// configDocument is the raw, string-tolerant document form.
type configDocument struct {
	Operations    []string  `yaml:"operations"`
	PrefixNames   flexBool  `yaml:"prefixNames"`
	SoftDelete    *flexBool `yaml:"softDelete"`
	Envelope      *flexBool `yaml:"envelope"`
	ReadRule      string    `yaml:"readRule"`
	WriteRule     string    `yaml:"writeRule"`
	PolicySource  string    `yaml:"policySource"`
	ClientPackage string    `yaml:"clientPackage"`
	Package       string    `yaml:"package"`
	Target        string    `yaml:"target"`
}

// flexBool accepts native booleans and their dynamic string forms.
type flexBool bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *flexBool) UnmarshalYAML(node *yaml.Node) error {
	var v bool
	if err := node.Decode(&v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("boolean option: %w", err)
	}
	switch s {
	case "true", "True", "TRUE", "1":
		*b = true
	case "false", "False", "FALSE", "0", "":
		*b = false
	default:
		return fmt.Errorf("boolean option: invalid value %q", s)
	}
	return nil
}

// ParseConfig coerces a raw configuration document into the typed
// Config.
func ParseConfig(data []byte) (*Config, error) {
	doc := configDocument{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("apigen: malformed config document: %w", err)
	}
	c := &Config{
		Operations:    doc.Operations,
		PrefixNames:   bool(doc.PrefixNames),
		SoftDelete:    true,
		Envelope:      true,
		ReadRule:      doc.ReadRule,
		WriteRule:     doc.WriteRule,
		PolicySource:  doc.PolicySource,
		ClientPackage: doc.ClientPackage,
		Package:       doc.Package,
		Target:        doc.Target,
	}
	if doc.SoftDelete != nil {
		c.SoftDelete = bool(*doc.SoftDelete)
	}
	if doc.Envelope != nil {
		c.Envelope = bool(*doc.Envelope)
	}
	return c, nil
}

// ReadConfig reads and coerces a configuration document from disk.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("apigen: reading config document %s: %w", path, err)
	}
	return ParseConfig(data)
}
