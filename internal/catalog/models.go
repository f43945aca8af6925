/*
Package catalog
File: models.go
Description:
    Defines the immutable upgrade definitions the economy is built from.
    These map directly to the JSON/YAML catalog files and the JSON API responses.

    Per-upgrade behaviour is data, not code: every upgrade carries a CostRule and a
    ValueRule tag, and the evaluators in rules.go switch on those tags.
*/

package catalog

import "fmt"

// Kind decides which aggregate an upgrade contributes to.
type Kind string

const (
	KindClick   Kind = "click"   // Adds to the value of a single click
	KindPassive Kind = "passive" // Adds to income per second
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindClick || k == KindPassive
}

// ValueRule selects how an upgrade's contribution scales with its level.
type ValueRule string

const (
	// ValueFlat contributes BaseValue * level.
	ValueFlat ValueRule = "flat"
	// ValuePercentOfIncome contributes BaseValue * level * current passive income.
	// Only click upgrades may use it; passive income never depends on click power.
	ValuePercentOfIncome ValueRule = "percentOfIncome"
)

// Valid reports whether r is one of the known value rules.
func (r ValueRule) Valid() bool {
	return r == ValueFlat || r == ValuePercentOfIncome
}

// CostRule is a geometric price curve: Base * Ratio^level.
type CostRule struct {
	Base  float64 `json:"base" yaml:"base"`
	Ratio float64 `json:"ratio" yaml:"ratio"`
}

// ValueContext carries the aggregates a value rule may depend on.
// There is intentionally no click power field: that would make the two aggregates cyclic.
type ValueContext struct {
	Income float64 // Current total passive income per second
}

// Upgrade is one purchasable, levelled upgrade.
type Upgrade struct {
	ID          int       `json:"id" yaml:"id"`                   // Unique, stable key
	Name        string    `json:"name" yaml:"name"`               // Display name
	Description string    `json:"description" yaml:"description"` // Flavor text
	Kind        Kind      `json:"type" yaml:"type"`               // "click" or "passive"
	BaseCost    float64   `json:"baseCost" yaml:"baseCost"`       // Price of the first level
	BaseValue   float64   `json:"baseValue" yaml:"baseValue"`     // Magnitude fed to the value rule
	Value       ValueRule `json:"value" yaml:"value"`             // How the contribution scales
	Cost        CostRule  `json:"cost" yaml:"cost"`               // Price curve, derived from Kind
}

// String renders a short debug form of the upgrade.
func (u Upgrade) String() string {
	return fmt.Sprintf("%s#%d(%s)", u.Name, u.ID, u.Kind)
}
