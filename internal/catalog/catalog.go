/*
Package catalog
File: catalog.go
Description:
    The Catalog is the ordered, read-only list of every upgrade in the game.
    It is built once at startup (New / Load / Default) and never changes afterwards,
    so it can be shared between goroutines without locking.
*/

package catalog

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedEntry is matched by every *MalformedEntryError.
var ErrMalformedEntry = errors.New("malformed catalog entry")

// MalformedEntryError describes why a catalog entry was refused.
type MalformedEntryError struct {
	Index  int    // Position in the source list
	ID     int    // Upgrade id, if one was present
	HasID  bool   // False when the id field itself was missing
	Reason string // Human readable cause
}

func (e *MalformedEntryError) Error() string {
	if e.HasID {
		return fmt.Sprintf("catalog entry %d (id %d): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("catalog entry %d: %s", e.Index, e.Reason)
}

func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrMalformedEntry
}

// Catalog holds the upgrade definitions in display order.
type Catalog struct {
	upgrades []Upgrade
	index    map[int]int // upgrade ID -> position in upgrades
}

// New validates the given upgrades and builds a catalog from them.
// An empty Value defaults to ValueFlat and a zero Cost rule is derived from Kind and BaseCost.
// A non-zero Cost must equal CostRuleFor(Kind, BaseCost); the multiplier is fixed per kind.
// Any invalid entry fails the whole catalog: the economy must not run on partial rules.
func New(upgrades ...Upgrade) (*Catalog, error) {
	c := &Catalog{
		upgrades: make([]Upgrade, 0, len(upgrades)),
		index:    make(map[int]int, len(upgrades)),
	}

	for i, u := range upgrades {
		if u.Value == "" {
			u.Value = ValueFlat
		}
		if u.Cost == (CostRule{}) {
			u.Cost = CostRuleFor(u.Kind, u.BaseCost)
		}
		if err := validate(i, u); err != nil {
			return nil, err
		}
		if _, dup := c.index[u.ID]; dup {
			return nil, &MalformedEntryError{Index: i, ID: u.ID, HasID: true, Reason: "duplicate id"}
		}
		c.index[u.ID] = len(c.upgrades)
		c.upgrades = append(c.upgrades, u)
	}
	return c, nil
}

func validate(i int, u Upgrade) error {
	bad := func(reason string) error {
		return &MalformedEntryError{Index: i, ID: u.ID, HasID: true, Reason: reason}
	}
	switch {
	case !u.Kind.Valid():
		return bad(fmt.Sprintf("unknown type %q", u.Kind))
	case !u.Value.Valid():
		return bad(fmt.Sprintf("unknown value rule %q", u.Value))
	case u.Kind == KindPassive && u.Value == ValuePercentOfIncome:
		return bad("passive upgrades cannot scale with passive income")
	case !(u.BaseCost > 0) || math.IsInf(u.BaseCost, 0):
		return bad("baseCost must be a positive number")
	case !(u.BaseValue >= 0) || math.IsInf(u.BaseValue, 0):
		return bad("baseValue must be a non-negative number")
	case u.Cost != CostRuleFor(u.Kind, u.BaseCost):
		return bad(fmt.Sprintf("cost curve %v does not follow the %s multiplier", u.Cost, u.Kind))
	}
	return nil
}

// Len returns the number of upgrades.
func (c *Catalog) Len() int {
	return len(c.upgrades)
}

// All returns a copy of the upgrades in display order.
func (c *Catalog) All() []Upgrade {
	out := make([]Upgrade, len(c.upgrades))
	copy(out, c.upgrades)
	return out
}

// Lookup returns the upgrade with the given id.
func (c *Catalog) Lookup(id int) (Upgrade, bool) {
	i, ok := c.index[id]
	if !ok {
		return Upgrade{}, false
	}
	return c.upgrades[i], true
}

// At returns the upgrade at display position i (0-based).
func (c *Catalog) At(i int) (Upgrade, bool) {
	if i < 0 || i >= len(c.upgrades) {
		return Upgrade{}, false
	}
	return c.upgrades[i], true
}
