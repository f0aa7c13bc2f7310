package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TriggerType enum constants
const (
	TriggerReorderLevel  = "REORDER_LEVEL"
	TriggerScheduled     = "SCHEDULED"
	TriggerStockMovement = "STOCK_MOVEMENT"
	TriggerManual        = "MANUAL"
)

// QuantityMethod enum constants
const (
	QuantityFixed         = "FIXED"
	QuantityReorder       = "REORDER_QUANTITY"
	QuantityUpToMax       = "UP_TO_MAX"
	QuantityDaysOfStock   = "DAYS_OF_STOCK"
	QuantityEconomicOrder = "ECONOMIC_ORDER"
)

// AutoPORule is a persisted reorder policy. The engine evaluates enabled rules
// against the inventory snapshot and turns shortages into draft purchase orders.
type AutoPORule struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsEnabled   bool      `gorm:"default:true;index" json:"is_enabled"`

	TriggerType string `gorm:"type:varchar(20);not null;index" json:"trigger_type"`
	// ThresholdPercentage is the fraction of the reorder level (in percent) at
	// or below which an item counts as short. 100 = at reorder level,
	// 80 = 20% under it, >100 = reorder early.
	ThresholdPercentage int `gorm:"type:int;not null;default:100" json:"threshold_percentage"`

	// Scope filters; each optional, results are unioned. All empty = all active items.
	ItemIDs         pq.StringArray `gorm:"type:text[]" json:"item_ids"`
	CategoryFilters pq.StringArray `gorm:"type:text[]" json:"category_filters"`
	TagFilters      pq.StringArray `gorm:"type:text[]" json:"tag_filters"`
	WarehouseID     *uuid.UUID     `gorm:"type:uuid;index" json:"warehouse_id"`

	// DefaultSupplierID is used when an item has no preferred supplier.
	DefaultSupplierID *uuid.UUID `gorm:"type:uuid" json:"default_supplier_id"`

	QuantityMethod string          `gorm:"type:varchar(20);not null" json:"quantity_method"`
	FixedQuantity  int             `gorm:"type:int;default:0" json:"fixed_quantity"`
	DaysOfStock    int             `gorm:"type:int;default:0" json:"days_of_stock"`
	Multiplier     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1" json:"multiplier"`
	// MinimumOrderQuantity/MaximumOrderQuantity clamp the computed quantity.
	// A maximum of 0 means unbounded.
	MinimumOrderQuantity int `gorm:"type:int;default:0" json:"minimum_order_quantity"`
	MaximumOrderQuantity int `gorm:"type:int;default:0" json:"maximum_order_quantity"`

	RequiresApproval bool `gorm:"default:false" json:"requires_approval"`
	// ApprovalThreshold auto-approves POs whose total stays under it even when
	// RequiresApproval is set. 0 = always require approval.
	ApprovalThreshold decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"approval_threshold"`

	ConsolidateBySupplier    bool `gorm:"default:true" json:"consolidate_by_supplier"`
	ConsolidationWindowHours int  `gorm:"type:int;default:0" json:"consolidation_window_hours"`

	// ScheduleCron is only meaningful when TriggerType is SCHEDULED.
	ScheduleCron string `gorm:"type:varchar(100)" json:"schedule_cron"`

	NotifyOnGeneration     bool           `gorm:"default:false" json:"notify_on_generation"`
	NotificationRecipients pq.StringArray `gorm:"type:text[]" json:"notification_recipients"`

	TotalPOsGenerated int        `gorm:"type:int;default:0" json:"total_pos_generated"`
	LastTriggeredAt   *time.Time `json:"last_triggered_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
