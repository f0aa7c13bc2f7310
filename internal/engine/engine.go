// Package engine holds the pure calculation core of the auto-PO generator:
// scope resolution, trigger evaluation, quantity strategies, supplier
// consolidation and the approval gate. Nothing in here touches the database;
// the service layer feeds it snapshots and persists what it returns.
package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a proposed purchase-order line for one item. SupplierID is nil when
// no supplier could be resolved; such lines show up in previews with a warning
// but are never committed.
type Line struct {
	ItemID     uuid.UUID       `json:"item_id"`
	SKU        string          `json:"sku"`
	ItemName   string          `json:"item_name"`
	SupplierID *uuid.UUID      `json:"supplier_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LineTotal  decimal.Decimal `json:"line_total"`
	HasWarning bool            `json:"has_warning"`
	Warning    string          `json:"warning,omitempty"`
}

// Draft is an in-memory purchase order produced by consolidation, not yet
// persisted. Status is filled in by the approval gate.
type Draft struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	Lines      []Line          `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
}

// Issue is a recorded, non-fatal per-item problem.
type Issue struct {
	ItemID    uuid.UUID `json:"item_id"`
	IssueType string    `json:"issue_type"`
	Message   string    `json:"message"`
}
