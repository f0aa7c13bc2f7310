package engine

import (
	"backend/internal/model"

	"github.com/google/uuid"
)

// ResolveScope returns the candidate items a rule applies to: the union of the
// rule's explicit item ids, category filters, tag filters and warehouse filter.
// When every filter is empty the rule covers all active items. Inactive items
// are always excluded. Output preserves the input order so downstream counts
// and issue lists are deterministic.
func ResolveScope(rule *model.AutoPORule, items []model.InventoryItem) []model.InventoryItem {
	unfiltered := len(rule.ItemIDs) == 0 &&
		len(rule.CategoryFilters) == 0 &&
		len(rule.TagFilters) == 0 &&
		rule.WarehouseID == nil

	idSet := make(map[string]bool, len(rule.ItemIDs))
	for _, id := range rule.ItemIDs {
		idSet[id] = true
	}
	categorySet := make(map[string]bool, len(rule.CategoryFilters))
	for _, c := range rule.CategoryFilters {
		categorySet[c] = true
	}
	tagSet := make(map[string]bool, len(rule.TagFilters))
	for _, t := range rule.TagFilters {
		tagSet[t] = true
	}

	var scoped []model.InventoryItem
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if unfiltered || matchesScope(rule, &item, idSet, categorySet, tagSet) {
			scoped = append(scoped, item)
		}
	}
	return scoped
}

func matchesScope(rule *model.AutoPORule, item *model.InventoryItem, idSet, categorySet, tagSet map[string]bool) bool {
	if idSet[item.ID.String()] {
		return true
	}
	if item.Category != "" && categorySet[item.Category] {
		return true
	}
	for _, tag := range item.Tags {
		if tagSet[tag] {
			return true
		}
	}
	if rule.WarehouseID != nil && item.WarehouseID != nil && *item.WarehouseID == *rule.WarehouseID {
		return true
	}
	return false
}

// MissingExplicitItems returns the rule's explicitly listed item ids that are
// absent from the snapshot, so the orchestrator can record ITEM_NOT_FOUND
// issues for them.
func MissingExplicitItems(rule *model.AutoPORule, items []model.InventoryItem) []uuid.UUID {
	if len(rule.ItemIDs) == 0 {
		return nil
	}
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[item.ID.String()] = true
	}
	var missing []uuid.UUID
	for _, raw := range rule.ItemIDs {
		if present[raw] {
			continue
		}
		if id, err := uuid.Parse(raw); err == nil {
			missing = append(missing, id)
		}
	}
	return missing
}
