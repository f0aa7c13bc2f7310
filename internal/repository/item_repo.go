package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemRepository is the inventory snapshot provider: the engine reads current
// quantities, reorder settings and costs through it and never writes stock
// except via AdjustQuantity, the stock-movement entry point.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	ListActive(ctx context.Context) ([]model.InventoryItem, error)
	List(ctx context.Context, page, limit int, belowReorder bool) ([]model.InventoryItem, int64, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*model.InventoryItem, error)
	CountActive(ctx context.Context) (int64, error)
	CountBelowReorder(ctx context.Context) (int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) ListActive(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	// Stable order keeps execution counts and issue lists deterministic.
	err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("created_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *itemRepository) List(ctx context.Context, page, limit int, belowReorder bool) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("is_active = ?", true)
	if belowReorder {
		db = db.Where("current_quantity <= reorder_level")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("sku asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *itemRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}

	item.CurrentQuantity += delta
	if item.CurrentQuantity < 0 {
		item.CurrentQuantity = 0
	}
	if err := GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Where("id = ?", id).
		Update("current_quantity", item.CurrentQuantity).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("is_active = ?", true).Count(&total).Error
	return total, err
}

func (r *itemRepository) CountBelowReorder(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Where("is_active = ? AND current_quantity <= reorder_level", true).
		Count(&total).Error
	return total, err
}
