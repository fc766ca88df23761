package reference

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional dataset descriptor stored next to the CSVs.
const ManifestFile = "manifest.yaml"

// Manifest describes a reference dataset release.
type Manifest struct {
	Version     string `yaml:"version"`
	Source      string `yaml:"source,omitempty"`
	Published   string `yaml:"published,omitempty"`
	GWPVersion  string `yaml:"gwp_version,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// LoadManifest reads a manifest file. A missing file returns (nil, nil).
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil //nolint:nilnil // Absent manifest is not an error.
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// CheckVersion reports whether the manifest satisfies constraint, e.g.
// ">= 2024.1, < 2026". An empty constraint always passes.
func (m *Manifest) CheckVersion(constraint string) error {
	if strings.TrimSpace(constraint) == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	if m == nil || m.Version == "" {
		return fmt.Errorf("%w: dataset has no version, want %s", ErrIncompatibleDataset, constraint)
	}
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return fmt.Errorf("invalid dataset version %q: %w", m.Version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleDataset, v, constraint)
	}
	return nil
}
