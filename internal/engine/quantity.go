package engine

import (
	"fmt"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// QuantityResult is the outcome of computing an order quantity for one item.
// IssueType is set when the item must be skipped; Quantity <= 0 after
// post-processing drops the item silently.
type QuantityResult struct {
	Quantity   int
	HasWarning bool
	Warning    string
	IssueType  string
}

// QuantityStrategy computes the raw (pre-multiplier, pre-clamp) order quantity
// for one item under one rule.
type QuantityStrategy interface {
	Compute(rule *model.AutoPORule, item *model.InventoryItem) QuantityResult
}

// EOQFunc is the pluggable economic-order-quantity hook supplied by the
// inventory collaborator. The engine mandates no forecasting model.
type EOQFunc func(rule *model.AutoPORule, item *model.InventoryItem) (int, error)

// Calculator selects a strategy by the rule's quantity method and applies the
// shared post-processing: multiplier scaling, min/max clamping and the drop of
// non-positive results.
type Calculator struct {
	strategies map[string]QuantityStrategy
}

// NewCalculator builds a calculator with all five strategies registered.
// eoq may be nil; ECONOMIC_ORDER then falls back to the item's reorder
// quantity and records a warning.
func NewCalculator(eoq EOQFunc) *Calculator {
	return &Calculator{
		strategies: map[string]QuantityStrategy{
			model.QuantityFixed:         fixedStrategy{},
			model.QuantityReorder:       reorderQuantityStrategy{},
			model.QuantityUpToMax:       upToMaxStrategy{},
			model.QuantityDaysOfStock:   daysOfStockStrategy{},
			model.QuantityEconomicOrder: economicOrderStrategy{eoq: eoq},
		},
	}
}

// Compute runs the rule's strategy for one item and post-processes the result.
// An unknown quantity method is a configuration error and is reported as an
// error rather than an issue; rule validation prevents it from reaching here.
func (c *Calculator) Compute(rule *model.AutoPORule, item *model.InventoryItem) (QuantityResult, error) {
	strategy, ok := c.strategies[rule.QuantityMethod]
	if !ok {
		return QuantityResult{}, fmt.Errorf("unknown quantity method %q", rule.QuantityMethod)
	}

	res := strategy.Compute(rule, item)
	if res.IssueType != "" {
		return res, nil
	}

	// Scale by the rule multiplier, rounding half away from zero.
	scaled := decimal.NewFromInt(int64(res.Quantity)).Mul(rule.Multiplier).Round(0)
	quantity := int(scaled.IntPart())

	if quantity < rule.MinimumOrderQuantity {
		quantity = rule.MinimumOrderQuantity
	}
	if rule.MaximumOrderQuantity > 0 && quantity > rule.MaximumOrderQuantity {
		quantity = rule.MaximumOrderQuantity
	}

	res.Quantity = quantity
	return res, nil
}

type fixedStrategy struct{}

func (fixedStrategy) Compute(rule *model.AutoPORule, _ *model.InventoryItem) QuantityResult {
	return QuantityResult{Quantity: rule.FixedQuantity}
}

type reorderQuantityStrategy struct{}

func (reorderQuantityStrategy) Compute(_ *model.AutoPORule, item *model.InventoryItem) QuantityResult {
	if item.ReorderQuantity <= 0 {
		return QuantityResult{
			HasWarning: true,
			Warning:    "item has no configured reorder quantity",
			IssueType:  model.IssueQuantityOutOfBounds,
		}
	}
	return QuantityResult{Quantity: item.ReorderQuantity}
}

type upToMaxStrategy struct{}

func (upToMaxStrategy) Compute(_ *model.AutoPORule, item *model.InventoryItem) QuantityResult {
	quantity := item.MaxStockLevel - item.CurrentQuantity
	if quantity < 0 {
		quantity = 0
	}
	return QuantityResult{Quantity: quantity}
}

type daysOfStockStrategy struct{}

func (daysOfStockStrategy) Compute(rule *model.AutoPORule, item *model.InventoryItem) QuantityResult {
	// ceil(avgDailyUsage * daysOfStock) - currentQuantity, floored at 0.
	needed := item.AvgDailyUsage.Mul(decimal.NewFromInt(int64(rule.DaysOfStock))).Ceil()
	quantity := int(needed.IntPart()) - item.CurrentQuantity
	if quantity < 0 {
		quantity = 0
	}
	return QuantityResult{Quantity: quantity}
}

type economicOrderStrategy struct {
	eoq EOQFunc
}

func (s economicOrderStrategy) Compute(rule *model.AutoPORule, item *model.InventoryItem) QuantityResult {
	if s.eoq == nil {
		res := reorderQuantityStrategy{}.Compute(rule, item)
		res.HasWarning = true
		if res.Warning == "" {
			res.Warning = "EOQ function not configured, used reorder quantity instead"
		}
		return res
	}
	quantity, err := s.eoq(rule, item)
	if err != nil {
		res := reorderQuantityStrategy{}.Compute(rule, item)
		res.HasWarning = true
		if res.IssueType == "" {
			res.Warning = "EOQ computation failed, used reorder quantity instead: " + err.Error()
		}
		return res
	}
	return QuantityResult{Quantity: quantity}
}
