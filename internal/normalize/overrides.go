package normalize

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/ppiankov/lifespan/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var defaultOverrides []byte

// OverrideSet is a named, versioned list of hand-authored records
type OverrideSet struct {
	Name    string           `yaml:"name"`
	Version string           `yaml:"version"`
	Allow   []string         `yaml:"allow,omitempty"`
	Deny    []string         `yaml:"deny,omitempty"`
	Records []OverrideRecord `yaml:"records"`

	// RequireBorn drops scraped subjects without a birth year unless a
	// record here covers them. Off by default: such subjects are kept with
	// unknown years and trail the table.
	RequireBorn bool `yaml:"require_born,omitempty"`
}

// OverrideRecord is one hand-authored subject. Died is normally left out.
type OverrideRecord struct {
	Name string `yaml:"name"`
	Born *int   `yaml:"born,omitempty"`
	Died *int   `yaml:"died,omitempty"`
}

// DefaultOverrides returns the override set shipped with the binary
func DefaultOverrides() (*OverrideSet, error) {
	return ParseOverrides(defaultOverrides)
}

// LoadOverrides reads an override set from a YAML file
func LoadOverrides(path string) (*OverrideSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes and validates an override set
func ParseOverrides(data []byte) (*OverrideSet, error) {
	var set OverrideSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", model.ErrInvalidOverrides, err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks names are present and unique and years are consistent
func (s *OverrideSet) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrInvalidOverrides)
	}
	if s.Version == "" {
		return fmt.Errorf("%w: version is required", model.ErrInvalidOverrides)
	}

	seen := make(map[string]bool)
	for i, rec := range s.Records {
		if rec.Name == "" {
			return fmt.Errorf("%w: record %d: name is required", model.ErrInvalidOverrides, i)
		}
		if seen[rec.Name] {
			return fmt.Errorf("%w: duplicate record %q", model.ErrInvalidOverrides, rec.Name)
		}
		seen[rec.Name] = true

		if rec.Born != nil && (*rec.Born < 1000 || *rec.Born > 9999) {
			return fmt.Errorf("%w: %q: born %d is not a 4-digit year", model.ErrInvalidOverrides, rec.Name, *rec.Born)
		}
		if rec.Died != nil {
			if rec.Born == nil {
				return fmt.Errorf("%w: %q: died set without born", model.ErrInvalidOverrides, rec.Name)
			}
			if *rec.Died < *rec.Born {
				return fmt.Errorf("%w: %q: died %d before born %d", model.ErrInvalidOverrides, rec.Name, *rec.Died, *rec.Born)
			}
		}
	}

	return nil
}

// ID identifies the set in reports, e.g. "us-presidents@2025.1"
func (s *OverrideSet) ID() string {
	return s.Name + "@" + s.Version
}

// PersonRecords returns the overrides as final-table records
func (s *OverrideSet) PersonRecords() []model.PersonRecord {
	records := make([]model.PersonRecord, 0, len(s.Records))
	for _, rec := range s.Records {
		records = append(records, model.NewPersonRecord(rec.Name, rec.Born, rec.Died, model.SourceOverride))
	}
	return records
}

// Has reports whether the set carries a record for name
func (s *OverrideSet) Has(name string) bool {
	for _, rec := range s.Records {
		if rec.Name == name {
			return true
		}
	}
	return false
}
