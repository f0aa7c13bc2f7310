package engine

import (
	"errors"
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

func TestCompute_FixedQuantity(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityFixed,
		FixedQuantity:  50,
		Multiplier:     decimal.NewFromInt(1),
	}

	res, err := calc.Compute(rule, &model.InventoryItem{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 50 {
		t.Errorf("FIXED should order the configured quantity, got %d", res.Quantity)
	}
}

func TestCompute_ReorderQuantity(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityReorder,
		Multiplier:     decimal.NewFromInt(1),
	}

	res, err := calc.Compute(rule, &model.InventoryItem{ReorderQuantity: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 30 {
		t.Errorf("expected item's reorder quantity 30, got %d", res.Quantity)
	}

	res, err = calc.Compute(rule, &model.InventoryItem{ReorderQuantity: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IssueType != model.IssueQuantityOutOfBounds {
		t.Errorf("unconfigured reorder quantity must surface as an issue, got %q", res.IssueType)
	}
}

func TestCompute_UpToMax(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityUpToMax,
		Multiplier:     decimal.NewFromInt(1),
	}

	res, err := calc.Compute(rule, &model.InventoryItem{CurrentQuantity: 12, MaxStockLevel: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 88 {
		t.Errorf("UP_TO_MAX should fill to the max stock level, got %d", res.Quantity)
	}

	res, err = calc.Compute(rule, &model.InventoryItem{CurrentQuantity: 120, MaxStockLevel: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 0 {
		t.Errorf("overstocked item should produce 0, got %d", res.Quantity)
	}
}

func TestCompute_DaysOfStockWithMultiplier(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityDaysOfStock,
		DaysOfStock:    30,
		Multiplier:     decimal.RequireFromString("1.2"),
	}
	item := &model.InventoryItem{
		CurrentQuantity: 40,
		AvgDailyUsage:   decimal.NewFromInt(2),
	}

	// needed = ceil(2 * 30) - 40 = 20, scaled by 1.2 = 24.
	res, err := calc.Compute(rule, item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 24 {
		t.Errorf("expected 24, got %d", res.Quantity)
	}
}

func TestCompute_DaysOfStockFractionalUsageRoundsUp(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityDaysOfStock,
		DaysOfStock:    7,
		Multiplier:     decimal.NewFromInt(1),
	}
	item := &model.InventoryItem{
		CurrentQuantity: 0,
		AvgDailyUsage:   decimal.RequireFromString("1.5"),
	}

	// ceil(1.5 * 7) = ceil(10.5) = 11.
	res, err := calc.Compute(rule, item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 11 {
		t.Errorf("fractional demand rounds up, expected 11, got %d", res.Quantity)
	}
}

func TestCompute_MinMaxClamp(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod:       model.QuantityFixed,
		Multiplier:           decimal.NewFromInt(1),
		MinimumOrderQuantity: 10,
		MaximumOrderQuantity: 60,
	}

	rule.FixedQuantity = 3
	res, _ := calc.Compute(rule, &model.InventoryItem{})
	if res.Quantity != 10 {
		t.Errorf("below minimum should clamp up to 10, got %d", res.Quantity)
	}

	rule.FixedQuantity = 500
	res, _ = calc.Compute(rule, &model.InventoryItem{})
	if res.Quantity != 60 {
		t.Errorf("above maximum should clamp down to 60, got %d", res.Quantity)
	}

	// Max of 0 means unbounded.
	rule.MaximumOrderQuantity = 0
	res, _ = calc.Compute(rule, &model.InventoryItem{})
	if res.Quantity != 500 {
		t.Errorf("maximum 0 is unbounded, expected 500, got %d", res.Quantity)
	}
}

func TestCompute_MultiplierRoundsHalfAwayFromZero(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityFixed,
		FixedQuantity:  5,
		Multiplier:     decimal.RequireFromString("1.5"),
	}

	// 5 * 1.5 = 7.5 rounds to 8.
	res, _ := calc.Compute(rule, &model.InventoryItem{})
	if res.Quantity != 8 {
		t.Errorf("expected 7.5 to round to 8, got %d", res.Quantity)
	}
}

func TestCompute_EconomicOrderFallsBackWithoutEOQ(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityEconomicOrder,
		Multiplier:     decimal.NewFromInt(1),
	}

	res, err := calc.Compute(rule, &model.InventoryItem{ReorderQuantity: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 25 {
		t.Errorf("expected reorder-quantity fallback 25, got %d", res.Quantity)
	}
	if !res.HasWarning {
		t.Error("fallback must carry a warning")
	}
}

func TestCompute_EconomicOrderUsesHook(t *testing.T) {
	calc := NewCalculator(func(_ *model.AutoPORule, _ *model.InventoryItem) (int, error) {
		return 42, nil
	})
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityEconomicOrder,
		Multiplier:     decimal.NewFromInt(1),
	}

	res, err := calc.Compute(rule, &model.InventoryItem{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 42 || res.HasWarning {
		t.Errorf("expected EOQ hook result 42 with no warning, got %d (warning=%v)", res.Quantity, res.HasWarning)
	}
}

func TestCompute_EconomicOrderHookErrorFallsBack(t *testing.T) {
	calc := NewCalculator(func(_ *model.AutoPORule, _ *model.InventoryItem) (int, error) {
		return 0, errors.New("no usage history")
	})
	rule := &model.AutoPORule{
		QuantityMethod: model.QuantityEconomicOrder,
		Multiplier:     decimal.NewFromInt(1),
	}

	res, err := calc.Compute(rule, &model.InventoryItem{ReorderQuantity: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 15 || !res.HasWarning {
		t.Errorf("EOQ failure should fall back to reorder quantity with a warning, got %d (warning=%v)", res.Quantity, res.HasWarning)
	}
}

func TestCompute_UnknownMethod(t *testing.T) {
	calc := NewCalculator(nil)
	rule := &model.AutoPORule{QuantityMethod: "GUESSWORK", Multiplier: decimal.NewFromInt(1)}

	if _, err := calc.Compute(rule, &model.InventoryItem{}); err == nil {
		t.Error("unknown quantity method must be an error")
	}
}
