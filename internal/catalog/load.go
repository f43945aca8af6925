/*
Package catalog
File: load.go
Description:
    Reads catalog files. JSON is the canonical format (an array of upgrade objects);
    YAML files with the same keys are accepted too.

    Every required field is checked for presence, not just for a zero value,
    so that "baseValue: 0" and a forgotten baseValue are told apart.
*/

package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed upgrades.json
var defaultCatalog []byte

// Format names a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is not YAML is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// entry mirrors one upgrade object on disk. Pointers mark required fields.
type entry struct {
	ID          *int     `json:"id" yaml:"id"`
	Name        *string  `json:"name" yaml:"name"`
	Description *string  `json:"description" yaml:"description"`
	Type        *string  `json:"type" yaml:"type"`
	BaseCost    *float64 `json:"baseCost" yaml:"baseCost"`
	BaseValue   *float64 `json:"baseValue" yaml:"baseValue"`
	Value       string   `json:"value,omitempty" yaml:"value,omitempty"` // Optional, defaults to "flat"
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatJSON)
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	cat, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog data in the given format.
func Parse(data []byte, format Format) (*Catalog, error) {
	var entries []entry
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	upgrades := make([]Upgrade, 0, len(entries))
	for i, e := range entries {
		u, err := e.upgrade(i)
		if err != nil {
			return nil, err
		}
		upgrades = append(upgrades, u)
	}
	return New(upgrades...)
}

func (e entry) upgrade(i int) (Upgrade, error) {
	missing := make([]string, 0, 6)
	if e.ID == nil {
		missing = append(missing, "id")
	}
	if e.Name == nil {
		missing = append(missing, "name")
	}
	if e.Description == nil {
		missing = append(missing, "description")
	}
	if e.Type == nil {
		missing = append(missing, "type")
	}
	if e.BaseCost == nil {
		missing = append(missing, "baseCost")
	}
	if e.BaseValue == nil {
		missing = append(missing, "baseValue")
	}
	if len(missing) > 0 {
		err := &MalformedEntryError{Index: i, Reason: "missing " + strings.Join(missing, ", ")}
		if e.ID != nil {
			err.ID, err.HasID = *e.ID, true
		}
		return Upgrade{}, err
	}

	kind := Kind(*e.Type)
	return Upgrade{
		ID:          *e.ID,
		Name:        *e.Name,
		Description: *e.Description,
		Kind:        kind,
		BaseCost:    *e.BaseCost,
		BaseValue:   *e.BaseValue,
		Value:       ValueRule(e.Value),
		Cost:        CostRuleFor(kind, *e.BaseCost),
	}, nil
}
