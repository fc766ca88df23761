package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// sectionDecoders replace one top-level section of a Config with the decoded
// YAML node. Each decoder starts from a zero value so an overlay section
// replaces the whole section instead of merging into its maps and slices.
//
//nolint:gochecknoglobals // Static dispatch table.
var sectionDecoders = map[string]func(*Config, *yaml.Node) error{
	"reference":   replaceSection(func(c *Config) *ReferenceConfig { return &c.Reference }),
	"calculation": replaceSection(func(c *Config) *CalculationConfig { return &c.Calculation }),
	"output":      replaceSection(func(c *Config) *OutputConfig { return &c.Output }),
	"logging":     replaceSection(func(c *Config) *LoggingConfig { return &c.Logging }),
	"server":      replaceSection(func(c *Config) *ServerConfig { return &c.Server }),
}

func replaceSection[T any](field func(*Config) *T) func(*Config, *yaml.Node) error {
	return func(c *Config, node *yaml.Node) error {
		var v T
		if err := node.Decode(&v); err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

// ShallowMergeYAML overlays the top-level sections present in the YAML file
// at overlayPath onto target. Sections absent from the overlay are left
// unchanged and unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var sections map[string]yaml.Node
	if err = yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range sections {
		decode, ok := sectionDecoders[key]
		if !ok {
			continue
		}
		if err = decode(target, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}
