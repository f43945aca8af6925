/*
Package engine
File: engine.go
Description:
    The progression engine owns the player's mutable state (currency and upgrade levels)
    and enforces every economic rule:
    1. Clicks are worth the current click power.
    2. Passive income accrues per simulated second.
    3. Purchases spend currency and raise an upgrade's level by one.

    Derived figures (click power, passive income) are recomputed from levels on every call,
    never cached, so a purchase is reflected immediately.
*/

package engine

import (
	"math"
	"sync"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"
)

// BaseClickPower is the value of a click before any upgrades.
const BaseClickPower = 1.0

// Engine holds one player's progression. All methods are safe for concurrent use.
type Engine struct {
	cat *catalog.Catalog

	// mu protects the state below. Any method reading or writing it MUST hold this lock.
	mu       sync.RWMutex
	currency float64
	levels   map[int]int // upgrade ID -> purchased level, absent means 0

	listeners observers
}

// New starts a fresh session: zero currency, every upgrade at level 0.
// It panics if cat is nil.
func New(cat *catalog.Catalog) *Engine {
	if cat == nil {
		panic("engine: nil catalog")
	}
	return &Engine{
		cat:    cat,
		levels: make(map[int]int),
	}
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Currency returns the current balance.
func (e *Engine) Currency() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currency
}

// SetCurrency overwrites the balance, bypassing accrual. Debug and test use only.
func (e *Engine) SetCurrency(v float64) error {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 1) {
		return ErrInvalidCurrency
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currency = v
	return nil
}

// LevelOf returns how many times an upgrade has been bought.
func (e *Engine) LevelOf(id int) (int, error) {
	if _, ok := e.cat.Lookup(id); !ok {
		return 0, &UnknownUpgradeError{ID: id}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.levels[id], nil
}

// NextCost returns the price of the next level of an upgrade.
func (e *Engine) NextCost(id int) (float64, error) {
	u, ok := e.cat.Lookup(id)
	if !ok {
		return 0, &UnknownUpgradeError{ID: id}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return u.CostAt(e.levels[id]), nil
}

// ClickPower returns the currency earned by one click.
// Formula: 1 + sum of click upgrade values, with passive income as context.
func (e *Engine) ClickPower() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clickPowerLocked()
}

// PassiveIncome returns the currency earned per second.
func (e *Engine) PassiveIncome() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.passiveIncomeLocked()
}

// passiveIncomeLocked must never look at click power: click power depends on it.
func (e *Engine) passiveIncomeLocked() float64 {
	total := 0.0
	for _, u := range e.cat.All() {
		if u.Kind != catalog.KindPassive {
			continue
		}
		total += u.ValueAt(e.levels[u.ID], catalog.ValueContext{})
	}
	return total
}

func (e *Engine) clickPowerLocked() float64 {
	ctx := catalog.ValueContext{Income: e.passiveIncomeLocked()}
	total := BaseClickPower
	for _, u := range e.cat.All() {
		if u.Kind != catalog.KindClick {
			continue
		}
		total += u.ValueAt(e.levels[u.ID], ctx)
	}
	return total
}

// RegisterClicks credits n clicks at the current click power and returns the amount added.
// n <= 0 is a no-op.
func (e *Engine) RegisterClicks(n int) float64 {
	if n <= 0 {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	gain := float64(n) * e.clickPowerLocked()
	e.currency += gain
	return gain
}

// Accrue credits passive income for the given number of simulated seconds and returns the amount added.
// Callers pass measured simulation time, never a render frame time.
func (e *Engine) Accrue(seconds float64) float64 {
	if !(seconds > 0) || math.IsInf(seconds, 1) {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	gain := e.passiveIncomeLocked() * seconds
	e.currency += gain
	return gain
}

// Purchase buys the next level of an upgrade and returns the new level.
// With too little currency it returns an error matching ErrInsufficientFunds and changes nothing.
// Listeners are notified after the state lock is released, before Purchase returns.
func (e *Engine) Purchase(id int) (int, error) {
	u, ok := e.cat.Lookup(id)
	if !ok {
		return 0, &UnknownUpgradeError{ID: id}
	}

	e.mu.Lock()
	level := e.levels[id]
	cost := u.CostAt(level)
	if e.currency < cost {
		have := e.currency
		e.mu.Unlock()
		return level, &InsufficientFundsError{ID: id, Cost: cost, Currency: have}
	}
	e.currency -= cost
	if e.currency < 0 {
		e.currency = 0
	}
	e.levels[id] = level + 1
	e.mu.Unlock()

	e.listeners.notify(PurchaseEvent{UpgradeID: id, NewLevel: level + 1})
	return level + 1, nil
}

// Subscribe registers a purchase listener and returns a function that removes it.
// The returned function is safe to call more than once.
func (e *Engine) Subscribe(fn PurchaseListener) (unsubscribe func()) {
	return e.listeners.add(fn)
}

// Listeners returns the number of registered purchase listeners.
func (e *Engine) Listeners() int {
	return e.listeners.len()
}
