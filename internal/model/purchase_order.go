package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus constants
const (
	POStatusPendingApproval = "PENDING_APPROVAL"
	POStatusApproved        = "APPROVED"
	POStatusRejected        = "REJECTED"
)

// PurchaseOrder groups order lines for one supplier. Auto-generated POs carry
// IsAutoPO and the originating rule id for traceability.
type PurchaseOrder struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderCode  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_code"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status     string    `gorm:"type:varchar(50);not null;index" json:"status"`

	IsAutoPO     bool                `gorm:"default:false;index" json:"is_auto_po"`
	AutoPORuleID *uuid.UUID          `gorm:"type:uuid;index" json:"auto_po_rule_id"`
	TotalValue   decimal.Decimal     `gorm:"type:decimal(14,2);not null;default:0" json:"total_value"`
	Lines        []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID" json:"lines"`

	DecidedBy *uuid.UUID `gorm:"type:uuid" json:"decided_by"`
	DecidedAt *time.Time `json:"decided_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PurchaseOrderLine is one item position within a purchase order.
type PurchaseOrderLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	Item            *InventoryItem  `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_cost"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}
