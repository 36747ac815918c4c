package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureDocScaffold emits a markdown summary of every synthesized
	// procedure next to the handler files.
	FeatureDocScaffold = Feature{
		Name:        "docs",
		Stage:       Beta,
		Default:     false,
		Description: "Emits a markdown reference of synthesized procedures, routes, and rule keys",
		cleanup: func(c *Config) error {
			return remove(c.Target, "procedures.md")
		},
	}

	// FeatureTestScaffold emits skeleton _test.go files for the
	// generated handler bundles.
	FeatureTestScaffold = Feature{
		Name:        "tests",
		Stage:       Alpha,
		Default:     false,
		Description: "Emits skeleton test files exercising each generated handler bundle",
	}

	// FeatureSnapshot persists a fingerprinted snapshot of the
	// synthesized artifacts so unchanged schemas skip re-emission.
	FeatureSnapshot = Feature{
		Name:        "snapshot",
		Stage:       Experimental,
		Default:     false,
		Description: "Stores a fingerprinted artifact snapshot and skips emission when nothing changed",
		cleanup: func(c *Config) error {
			return remove(filepath.Join(c.Target, "internal"), "snapshot.bin")
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureDocScaffold,
		FeatureTestScaffold,
		FeatureSnapshot,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and actively being
	// tested in the integration environment.
	Experimental

	// Alpha features are features whose initial development was
	// finished, but breaking changes to their APIs are expected.
	Alpha

	// Beta features are Alpha features that are documented and no
	// breaking changes are expected for them.
	Beta

	// Stable features are Beta features that have been running for a
	// while in production setups.
	Stable
)

// A Feature of the apigen codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes artifacts of previous runs when a feature-flag
	// is removed.
	cleanup func(*Config) error
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
