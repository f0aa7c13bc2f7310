package engine

import "backend/internal/model"

// ShouldFire reports whether the rule's reorder condition holds for one item:
// currentQuantity <= reorderLevel * thresholdPercentage / 100, with boundary
// equality firing. The comparison is done in integer cross-multiplied form so
// there is no float rounding at the boundary.
//
// Trigger timing is the orchestrator's concern: MANUAL rules are only ever
// evaluated on an explicit human invocation and SCHEDULED rules trust the
// scheduler to call at a due time, but both still re-check the stock condition
// here so a run only proposes items that are actually short at execution time.
// A threshold above 100 deliberately reorders before the nominal level is hit.
func ShouldFire(rule *model.AutoPORule, item *model.InventoryItem) bool {
	return item.CurrentQuantity*100 <= item.ReorderLevel*rule.ThresholdPercentage
}
