/*
Package catalog
File: rules.go
Description:
    The pure evaluators for upgrade cost and value.
    Nothing here touches player state: callers pass the level they care about,
    so the functions are safe to call every frame for display purposes.
*/

package catalog

import "math"

const (
	ClickCostMultiplier   = 3.0  // Click upgrades triple in price per level
	PassiveCostMultiplier = 1.15 // Passive upgrades grow 15% per level
)

// CostRuleFor builds the price curve for an upgrade of the given kind.
func CostRuleFor(kind Kind, baseCost float64) CostRule {
	ratio := PassiveCostMultiplier
	if kind == KindClick {
		ratio = ClickCostMultiplier
	}
	return CostRule{Base: baseCost, Ratio: ratio}
}

// EvaluateCost returns the price of buying the level after 'level'.
// Formula: Base * Ratio^level
func EvaluateCost(rule CostRule, level int) float64 {
	if level < 0 {
		level = 0
	}
	return rule.Base * math.Pow(rule.Ratio, float64(level))
}

// EvaluateValue returns the contribution of an upgrade owned at 'level'.
func EvaluateValue(rule ValueRule, baseValue float64, level int, ctx ValueContext) float64 {
	if level <= 0 {
		return 0
	}
	switch rule {
	case ValueFlat:
		return baseValue * float64(level)
	case ValuePercentOfIncome:
		return baseValue * float64(level) * ctx.Income
	default:
		return 0
	}
}

// CostAt is the price to go from level to level+1.
func (u Upgrade) CostAt(level int) float64 {
	return EvaluateCost(u.Cost, level)
}

// ValueAt is this upgrade's contribution to its aggregate at the given level.
func (u Upgrade) ValueAt(level int, ctx ValueContext) float64 {
	return EvaluateValue(u.Value, u.BaseValue, level, ctx)
}
