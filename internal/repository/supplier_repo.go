package repository

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierDirectory resolves the supplier a proposed order line should go to:
// the item's preferred supplier when it exists and is active, otherwise the
// rule's default. A (nil, nil) return means no supplier could be resolved,
// which the engine records as a NO_SUPPLIER issue rather than an error.
type SupplierDirectory interface {
	Resolve(ctx context.Context, item *model.InventoryItem, ruleDefault *uuid.UUID) (*uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
}

type supplierDirectory struct {
	db *gorm.DB
}

func NewSupplierDirectory(db *gorm.DB) SupplierDirectory {
	return &supplierDirectory{db: db}
}

func (r *supplierDirectory) Resolve(ctx context.Context, item *model.InventoryItem, ruleDefault *uuid.UUID) (*uuid.UUID, error) {
	for _, candidate := range []*uuid.UUID{item.PreferredSupplierID, ruleDefault} {
		if candidate == nil {
			continue
		}
		supplier, err := r.FindByID(ctx, *candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up supplier %s: %w", candidate, err)
		}
		if supplier.IsActive {
			id := supplier.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (r *supplierDirectory) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := GetDB(ctx, r.db).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}
