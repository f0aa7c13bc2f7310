package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderRepository is the PO store the engine commits drafts through.
// Create persists the order together with its lines; inside a transaction
// context that makes each PO write atomic.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, status string, autoOnly bool, page, limit int) ([]model.PurchaseOrder, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, decidedBy *uuid.UUID) error
	CountByStatus(ctx context.Context, status string, autoOnly bool) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time, autoOnly bool) (int64, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	// gorm persists the Lines association in the same insert batch.
	return GetDB(ctx, r.db).Create(po).Error
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := GetDB(ctx, r.db).Preload("Lines").Preload("Supplier").First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, status string, autoOnly bool, page, limit int) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	db := GetDB(ctx, r.db).Model(&model.PurchaseOrder{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if autoOnly {
		db = db.Where("is_auto_po = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := GetDB(ctx, r.db).Preload("Lines").Preload("Supplier")
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if autoOnly {
		fetch = fetch.Where("is_auto_po = ?", true)
	}
	if err := fetch.Order("created_at desc").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, decidedBy *uuid.UUID) error {
	now := time.Now()
	return GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": now,
		}).Error
}

func (r *purchaseOrderRepository) CountByStatus(ctx context.Context, status string, autoOnly bool) (int64, error) {
	var total int64
	db := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("status = ?", status)
	if autoOnly {
		db = db.Where("is_auto_po = ?", true)
	}
	err := db.Count(&total).Error
	return total, err
}

func (r *purchaseOrderRepository) CountCreatedSince(ctx context.Context, since time.Time, autoOnly bool) (int64, error) {
	var total int64
	db := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("created_at >= ?", since)
	if autoOnly {
		db = db.Where("is_auto_po = ?", true)
	}
	err := db.Count(&total).Error
	return total, err
}
