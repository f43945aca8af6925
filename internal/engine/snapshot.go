/*
Package engine
File: snapshot.go
Description:
    Read-only copies of engine state for renderers and the API.
*/

package engine

import "github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"

// UpgradeState is the presentation view of one upgrade.
type UpgradeState struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Kind         catalog.Kind `json:"type"`
	Level        int          `json:"level"`
	NextCost     float64      `json:"next_cost"`
	Contribution float64      `json:"contribution"` // Current value added to click power or income
	Affordable   bool         `json:"affordable"`   // False renders as a disabled buy button
}

// Snapshot is a consistent, read-only copy of the engine state for one render frame.
type Snapshot struct {
	Currency      float64        `json:"currency"`
	ClickPower    float64        `json:"click_power"`
	PassiveIncome float64        `json:"passive_income"`
	Upgrades      []UpgradeState `json:"upgrades"`
}

// Snapshot captures the whole engine state under a single read lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	income := e.passiveIncomeLocked()
	ctx := catalog.ValueContext{Income: income}
	snap := Snapshot{
		Currency:      e.currency,
		ClickPower:    e.clickPowerLocked(),
		PassiveIncome: income,
		Upgrades:      make([]UpgradeState, 0, e.cat.Len()),
	}
	for _, u := range e.cat.All() {
		level := e.levels[u.ID]
		cost := u.CostAt(level)
		snap.Upgrades = append(snap.Upgrades, UpgradeState{
			ID:           u.ID,
			Name:         u.Name,
			Description:  u.Description,
			Kind:         u.Kind,
			Level:        level,
			NextCost:     cost,
			Contribution: u.ValueAt(level, ctx),
			Affordable:   e.currency >= cost,
		})
	}
	return snap
}

// Upgrade finds the view of one upgrade in the snapshot.
func (s Snapshot) Upgrade(id int) (UpgradeState, bool) {
	for _, u := range s.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return UpgradeState{}, false
}
