package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExecutionRepository interface {
	Create(ctx context.Context, exec *model.AutoPOExecution) error
	Update(ctx context.Context, exec *model.AutoPOExecution) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AutoPOExecution, error)
	List(ctx context.Context, ruleID *uuid.UUID, limit int) ([]model.AutoPOExecution, error)
	LastFinishedAt(ctx context.Context) (*time.Time, error)
}

type executionRepository struct {
	db *gorm.DB
}

func NewExecutionRepository(db *gorm.DB) ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Create(ctx context.Context, exec *model.AutoPOExecution) error {
	return GetDB(ctx, r.db).Create(exec).Error
}

func (r *executionRepository) Update(ctx context.Context, exec *model.AutoPOExecution) error {
	// Save cascades the Issues association so finalization writes them in one go.
	return GetDB(ctx, r.db).Session(&gorm.Session{FullSaveAssociations: true}).Save(exec).Error
}

func (r *executionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AutoPOExecution, error) {
	var exec model.AutoPOExecution
	if err := GetDB(ctx, r.db).Preload("Issues").First(&exec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &exec, nil
}

func (r *executionRepository) List(ctx context.Context, ruleID *uuid.UUID, limit int) ([]model.AutoPOExecution, error) {
	if limit <= 0 {
		limit = 20
	}
	db := GetDB(ctx, r.db).Preload("Issues")
	if ruleID != nil {
		db = db.Where("rule_id = ?", *ruleID)
	}
	var executions []model.AutoPOExecution
	err := db.Order("started_at desc").Limit(limit).Find(&executions).Error
	return executions, err
}

func (r *executionRepository) LastFinishedAt(ctx context.Context) (*time.Time, error) {
	var exec model.AutoPOExecution
	err := GetDB(ctx, r.db).
		Where("finished_at IS NOT NULL").
		Order("finished_at desc").
		First(&exec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return exec.FinishedAt, nil
}
