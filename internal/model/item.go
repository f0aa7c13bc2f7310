package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is the read-side stock snapshot the engine evaluates rules against.
// The engine never mutates it except through the stock-movement endpoint, which
// adjusts CurrentQuantity before re-evaluating STOCK_MOVEMENT rules.
type InventoryItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU         string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Category    string         `gorm:"type:varchar(100);index" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	WarehouseID *uuid.UUID     `gorm:"type:uuid;index" json:"warehouse_id"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`

	CurrentQuantity int `gorm:"type:int;not null;default:0" json:"current_quantity"`
	ReorderLevel    int `gorm:"type:int;not null;default:0" json:"reorder_level"`
	// ReorderQuantity is the item's own configured order size, used by the
	// REORDER_QUANTITY method. 0 = not configured.
	ReorderQuantity int `gorm:"type:int;not null;default:0" json:"reorder_quantity"`
	MaxStockLevel   int `gorm:"type:int;not null;default:0" json:"max_stock_level"`

	AvgDailyUsage decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"avg_daily_usage"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"unit_cost"`

	PreferredSupplierID *uuid.UUID `gorm:"type:uuid" json:"preferred_supplier_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Supplier is the vendor directory entry draft POs resolve against.
type Supplier struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive bool      `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
