package gen

import (
	"errors"
	"slices"
)

// Option configures procedure synthesis.
type Option func(*Config) error

// WithOperations restricts synthesis to the given operation kinds.
// Essential operations are synthesized regardless of the allow-list.
func WithOperations(ops ...Op) Option {
	return func(c *Config) error {
		for _, op := range ops {
			if !op.Valid() {
				return NewConfigError("Operations", uint8(op), "unknown operation kind")
			}
			if !slices.Contains(c.Operations, op) {
				c.Operations = append(c.Operations, op)
			}
		}
		return nil
	}
}

// WithPrefixNames prepends the lower-camel entity name to procedure
// names, e.g. "userCreate" instead of "create".
func WithPrefixNames(prefix bool) Option {
	return func(c *Config) error {
		c.PrefixNames = prefix
		return nil
	}
}

// WithSoftDelete toggles marker-driven soft-delete rewriting. The
// toggle only restricts: entities without the marker field are never
// rewritten even when enabled.
func WithSoftDelete(enabled bool) Option {
	return func(c *Config) error {
		c.SoftDelete = enabled
		return nil
	}
}

// WithEnvelope toggles the uniform response envelope on handler
// results.
func WithEnvelope(enabled bool) Option {
	return func(c *Config) error {
		c.Envelope = enabled
		return nil
	}
}

// WithDefaultRules sets the default rules for the read and write
// authorization buckets. Unrecognized values resolve to deny.
func WithDefaultRules(read, write string) Option {
	return func(c *Config) error {
		c.ReadRule = read
		c.WriteRule = write
		return nil
	}
}

// WithPolicySource points synthesis at a hand-written policy module.
// Rule-table synthesis is bypassed; the module must export the
// Permissions object.
func WithPolicySource(source string) Option {
	return func(c *Config) error {
		c.PolicySource = source
		return nil
	}
}

// WithClientPackage sets the import path of the generated data-access
// client the emitted handlers delegate to.
func WithClientPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("ClientPackage", nil, "client package cannot be empty")
		}
		c.ClientPackage = pkg
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/api".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithFeatures enables specific features.
// Features control optional code generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options. Soft-delete
// rewriting and the response envelope are enabled by default.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{SoftDelete: true, Envelope: true}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
