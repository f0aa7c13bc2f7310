package engine

import (
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Consolidate groups proposed lines into draft purchase orders. Lines without
// a resolved supplier are ignored here; the orchestrator has already recorded
// a NO_SUPPLIER issue for them and keeps them preview-only.
//
// With ConsolidateBySupplier off every line becomes its own single-line draft.
// With it on, lines are grouped into one draft per supplier, in first-seen
// supplier order, so one execution never yields two drafts for the same
// supplier.
func Consolidate(rule *model.AutoPORule, lines []Line) []Draft {
	var drafts []Draft

	if !rule.ConsolidateBySupplier {
		for _, line := range lines {
			if line.SupplierID == nil {
				continue
			}
			drafts = append(drafts, Draft{
				SupplierID: *line.SupplierID,
				Lines:      []Line{line},
				Total:      line.LineTotal,
			})
		}
		return drafts
	}

	index := make(map[uuid.UUID]int)
	for _, line := range lines {
		if line.SupplierID == nil {
			continue
		}
		supplier := *line.SupplierID
		i, seen := index[supplier]
		if !seen {
			index[supplier] = len(drafts)
			drafts = append(drafts, Draft{SupplierID: supplier, Total: decimal.Zero})
			i = index[supplier]
		}
		drafts[i].Lines = append(drafts[i].Lines, line)
		drafts[i].Total = drafts[i].Total.Add(line.LineTotal)
	}
	return drafts
}

// MergeLines overlays fresher lines onto buffered ones, keyed by item. The
// newer computation wins because it was derived from a more recent snapshot.
// Order is stable: buffered lines keep their position, new items append.
func MergeLines(buffered, fresh []Line) []Line {
	if len(buffered) == 0 {
		return fresh
	}
	latest := make(map[uuid.UUID]Line, len(fresh))
	for _, line := range fresh {
		latest[line.ItemID] = line
	}

	merged := make([]Line, 0, len(buffered)+len(fresh))
	seen := make(map[uuid.UUID]bool, len(buffered))
	for _, line := range buffered {
		if replacement, ok := latest[line.ItemID]; ok {
			line = replacement
		}
		merged = append(merged, line)
		seen[line.ItemID] = true
	}
	for _, line := range fresh {
		if !seen[line.ItemID] {
			merged = append(merged, line)
		}
	}
	return merged
}
