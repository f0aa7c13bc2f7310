package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *model.AutoPORule) error
	Update(ctx context.Context, rule *model.AutoPORule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AutoPORule, error)
	List(ctx context.Context, enabledOnly bool, page, limit int) ([]model.AutoPORule, int64, error)
	// ListRunnable returns enabled rules whose trigger is not MANUAL, in a
	// stable order, for "run all due rules" executions.
	ListRunnable(ctx context.Context) ([]model.AutoPORule, error)
	// ListScheduled returns enabled SCHEDULED rules with a cron expression,
	// for the scheduler to register.
	ListScheduled(ctx context.Context) ([]model.AutoPORule, error)
	// RecordTrigger bumps the rule's generation counters after a committed run.
	RecordTrigger(ctx context.Context, id uuid.UUID, posGenerated int, at time.Time) error
	CountEnabled(ctx context.Context) (int64, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.AutoPORule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.AutoPORule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AutoPORule{}).Error
}

func (r *ruleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AutoPORule, error) {
	var rule model.AutoPORule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context, enabledOnly bool, page, limit int) ([]model.AutoPORule, int64, error) {
	var rules []model.AutoPORule
	var total int64

	db := GetDB(ctx, r.db).Model(&model.AutoPORule{})
	if enabledOnly {
		db = db.Where("is_enabled = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}

func (r *ruleRepository) ListRunnable(ctx context.Context) ([]model.AutoPORule, error) {
	var rules []model.AutoPORule
	err := GetDB(ctx, r.db).
		Where("is_enabled = ? AND trigger_type <> ?", true, model.TriggerManual).
		Order("created_at asc").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) ListScheduled(ctx context.Context) ([]model.AutoPORule, error) {
	var rules []model.AutoPORule
	err := GetDB(ctx, r.db).
		Where("is_enabled = ? AND trigger_type = ? AND schedule_cron <> ''", true, model.TriggerScheduled).
		Order("created_at asc").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) RecordTrigger(ctx context.Context, id uuid.UUID, posGenerated int, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.AutoPORule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_pos_generated": gorm.Expr("total_pos_generated + ?", posGenerated),
			"last_triggered_at":   at,
		}).Error
}

func (r *ruleRepository) CountEnabled(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.AutoPORule{}).Where("is_enabled = ?", true).Count(&total).Error
	return total, err
}
