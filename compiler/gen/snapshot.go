package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/apigen"
)

// snapshotVersion bumps whenever the projection layout changes, so
// stale snapshots never compare equal to fresh ones.
const snapshotVersion = 1

// Snapshot is the persisted picture of one synthesis run. Emission is
// skipped when a stored snapshot carries the same fingerprint.
type Snapshot struct {
	Version     int      `msgpack:"version"`
	Fingerprint string   `msgpack:"fingerprint"`
	Entities    []string `msgpack:"entities"`
	Procedures  []string `msgpack:"procedures"`
}

// projection is the deterministic, order-normalized view of the
// artifacts the fingerprint is computed over.
type projection struct {
	Version    int              `msgpack:"version"`
	Bundles    []*Bundle        `msgpack:"bundles"`
	Procedures []procProjection `msgpack:"procedures"`
	Rules      []ruleProjection `msgpack:"rules"`
	Policy     *PolicyImport    `msgpack:"policy"`
}

type procProjection struct {
	Entity    string           `msgpack:"entity"`
	Name      string           `msgpack:"name"`
	Op        string           `msgpack:"op"`
	Input     string           `msgpack:"input"`
	Output    string           `msgpack:"output"`
	Route     string           `msgpack:"route"`
	Write     bool             `msgpack:"write"`
	Envelope  bool             `msgpack:"envelope"`
	Selectors []string         `msgpack:"selectors"`
	Call      apigen.CallShape `msgpack:"call"`
}

type ruleProjection struct {
	Entity    string `msgpack:"entity"`
	Procedure string `msgpack:"procedure"`
	Rule      string `msgpack:"rule"`
}

// project flattens the artifacts into a canonical ordering.
func (a *Artifacts) project() *projection {
	p := &projection{Version: snapshotVersion, Policy: a.Policy}
	p.Bundles = append(p.Bundles, a.Bundles...)
	sort.Slice(p.Bundles, func(i, j int) bool { return p.Bundles[i].Key < p.Bundles[j].Key })
	for _, proc := range a.Procedures {
		p.Procedures = append(p.Procedures, procProjection{
			Entity:    proc.Entity,
			Name:      proc.Name,
			Op:        proc.Op.String(),
			Input:     proc.Input,
			Output:    proc.Output,
			Route:     proc.Route,
			Write:     proc.Write,
			Envelope:  proc.Envelope,
			Selectors: proc.Selectors,
			Call:      proc.Call,
		})
	}
	sort.Slice(p.Procedures, func(i, j int) bool {
		if p.Procedures[i].Entity != p.Procedures[j].Entity {
			return p.Procedures[i].Entity < p.Procedures[j].Entity
		}
		return p.Procedures[i].Route < p.Procedures[j].Route
	})
	for entity, rules := range a.Rules {
		for proc, rule := range rules {
			p.Rules = append(p.Rules, ruleProjection{Entity: entity, Procedure: proc, Rule: rule.String()})
		}
	}
	sort.Slice(p.Rules, func(i, j int) bool {
		if p.Rules[i].Entity != p.Rules[j].Entity {
			return p.Rules[i].Entity < p.Rules[j].Entity
		}
		return p.Rules[i].Procedure < p.Rules[j].Procedure
	})
	return p
}

// Fingerprint computes the deterministic content hash of the
// artifacts. Equal artifacts always fingerprint equal, regardless of
// map iteration order.
func (a *Artifacts) Fingerprint() (string, error) {
	data, err := msgpack.Marshal(a.project())
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Snapshot builds the persistable snapshot of the artifacts.
func (a *Artifacts) Snapshot() (*Snapshot, error) {
	fp, err := a.Fingerprint()
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Version: snapshotVersion, Fingerprint: fp}
	for _, b := range a.Bundles {
		s.Entities = append(s.Entities, b.Entity)
	}
	for _, p := range a.Procedures {
		s.Procedures = append(s.Procedures, lowerFirst(p.Entity)+"."+p.Name)
	}
	sort.Strings(s.Entities)
	sort.Strings(s.Procedures)
	return s, nil
}

// WriteSnapshot persists the snapshot under dir.
func (s *Snapshot) WriteSnapshot(dir string) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "snapshot.bin"), data, 0o644)
}

// ReadSnapshot loads a previously persisted snapshot. A missing file
// returns nil without error.
func ReadSnapshot(dir string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(dir, "snapshot.bin"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Version != snapshotVersion {
		return nil, nil
	}
	return &s, nil
}

// Unchanged reports whether the stored snapshot matches the artifacts.
func (s *Snapshot) Unchanged(a *Artifacts) bool {
	if s == nil {
		return false
	}
	fp, err := a.Fingerprint()
	if err != nil {
		return false
	}
	return s.Fingerprint == fp
}
