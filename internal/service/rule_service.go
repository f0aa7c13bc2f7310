package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/engine"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ScheduleReloader re-syncs cron registrations after rule mutations.
type ScheduleReloader interface {
	Reload()
}

// RuleRequest is the create/update payload for a reorder rule. Invalid
// configurations are rejected here, at save time; they never reach the
// orchestrator.
type RuleRequest struct {
	Name                string `json:"name" binding:"required"`
	Description         string `json:"description"`
	IsEnabled           *bool  `json:"is_enabled"`
	TriggerType         string `json:"trigger_type" binding:"required,oneof=REORDER_LEVEL SCHEDULED STOCK_MOVEMENT MANUAL"`
	ThresholdPercentage int    `json:"threshold_percentage"`

	ItemIDs         []string `json:"item_ids"`
	CategoryFilters []string `json:"category_filters"`
	TagFilters      []string `json:"tag_filters"`
	WarehouseID     *string  `json:"warehouse_id"`

	DefaultSupplierID *string `json:"default_supplier_id"`

	QuantityMethod       string          `json:"quantity_method" binding:"required,oneof=FIXED REORDER_QUANTITY UP_TO_MAX DAYS_OF_STOCK ECONOMIC_ORDER"`
	FixedQuantity        int             `json:"fixed_quantity"`
	DaysOfStock          int             `json:"days_of_stock"`
	Multiplier           decimal.Decimal `json:"multiplier"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity"`
	MaximumOrderQuantity int             `json:"maximum_order_quantity"`

	RequiresApproval  bool            `json:"requires_approval"`
	ApprovalThreshold decimal.Decimal `json:"approval_threshold"`

	ConsolidateBySupplier    *bool `json:"consolidate_by_supplier"`
	ConsolidationWindowHours int   `json:"consolidation_window_hours"`

	ScheduleCron string `json:"schedule_cron"`

	NotifyOnGeneration     bool     `json:"notify_on_generation"`
	NotificationRecipients []string `json:"notification_recipients"`
}

type RuleService interface {
	Create(ctx context.Context, actor Actor, req RuleRequest) (*model.AutoPORule, error)
	Update(ctx context.Context, actor Actor, id string, req RuleRequest) (*model.AutoPORule, error)
	Delete(ctx context.Context, actor Actor, id string) error
	SetEnabled(ctx context.Context, actor Actor, id string, enabled bool) (*model.AutoPORule, error)
	Get(ctx context.Context, id string) (*model.AutoPORule, error)
	List(ctx context.Context, enabledOnly bool, page, limit int) ([]model.AutoPORule, int64, error)
}

type ruleService struct {
	ruleRepo  repository.RuleRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	windows   *engine.WindowBuffer
	reloader  ScheduleReloader
}

func NewRuleService(
	ruleRepo repository.RuleRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	windows *engine.WindowBuffer,
	reloader ScheduleReloader,
) RuleService {
	return &ruleService{
		ruleRepo:  ruleRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		windows:   windows,
		reloader:  reloader,
	}
}

func (s *ruleService) Create(ctx context.Context, actor Actor, req RuleRequest) (*model.AutoPORule, error) {
	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Create(txCtx, rule); err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}
		return s.audit(txCtx, actor, model.ActionCreateRule, rule, req)
	})
	if err != nil {
		return nil, err
	}

	s.reload()
	return rule, nil
}

func (s *ruleService) Update(ctx context.Context, actor Actor, id string, req RuleRequest) (*model.AutoPORule, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule id: %w", err)
	}

	existing, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("rule not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updated, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.TotalPOsGenerated = existing.TotalPOsGenerated
	updated.LastTriggeredAt = existing.LastTriggeredAt
	updated.CreatedAt = existing.CreatedAt

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Update(txCtx, updated); err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		return s.audit(txCtx, actor, model.ActionUpdateRule, updated, req)
	})
	if err != nil {
		return nil, err
	}

	if !updated.IsEnabled {
		s.windows.Cancel(updated.ID)
	}
	s.reload()
	return updated, nil
}

func (s *ruleService) Delete(ctx context.Context, actor Actor, id string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid rule id: %w", err)
	}

	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("rule not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Delete(txCtx, ruleID); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}
		return s.audit(txCtx, actor, model.ActionDeleteRule, rule, nil)
	})
	if err != nil {
		return err
	}

	s.windows.Cancel(ruleID)
	s.reload()
	return nil
}

func (s *ruleService) SetEnabled(ctx context.Context, actor Actor, id string, enabled bool) (*model.AutoPORule, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule id: %w", err)
	}

	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("rule not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	rule.IsEnabled = enabled
	action := model.ActionEnableRule
	if !enabled {
		action = model.ActionDisableRule
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.Update(txCtx, rule); err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		return s.audit(txCtx, actor, action, rule, nil)
	})
	if err != nil {
		return nil, err
	}

	if !enabled {
		// A pending consolidation window must not commit for a disabled rule.
		s.windows.Cancel(ruleID)
	}
	s.reload()
	return rule, nil
}

func (s *ruleService) Get(ctx context.Context, id string) (*model.AutoPORule, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid rule id: %w", err)
	}
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("rule not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return rule, nil
}

func (s *ruleService) List(ctx context.Context, enabledOnly bool, page, limit int) ([]model.AutoPORule, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.ruleRepo.List(ctx, enabledOnly, page, limit)
}

func (s *ruleService) audit(ctx context.Context, actor Actor, action string, rule *model.AutoPORule, payload interface{}) error {
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		ActorID:    actor.ID,
		Action:     action,
		EntityID:   rule.ID.String(),
		EntityName: rule.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *ruleService) reload() {
	if s.reloader != nil {
		s.reloader.Reload()
	}
}

// ruleFromRequest maps and validates the payload. All configuration errors
// are caught here so the orchestrator only ever sees well-formed rules.
func ruleFromRequest(req RuleRequest) (*model.AutoPORule, error) {
	rule := &model.AutoPORule{
		Name:                     req.Name,
		Description:              req.Description,
		IsEnabled:                true,
		TriggerType:              req.TriggerType,
		ThresholdPercentage:      req.ThresholdPercentage,
		ItemIDs:                  req.ItemIDs,
		CategoryFilters:          req.CategoryFilters,
		TagFilters:               req.TagFilters,
		QuantityMethod:           req.QuantityMethod,
		FixedQuantity:            req.FixedQuantity,
		DaysOfStock:              req.DaysOfStock,
		Multiplier:               req.Multiplier,
		MinimumOrderQuantity:     req.MinimumOrderQuantity,
		MaximumOrderQuantity:     req.MaximumOrderQuantity,
		RequiresApproval:         req.RequiresApproval,
		ApprovalThreshold:        req.ApprovalThreshold,
		ConsolidateBySupplier:    true,
		ConsolidationWindowHours: req.ConsolidationWindowHours,
		ScheduleCron:             req.ScheduleCron,
		NotifyOnGeneration:       req.NotifyOnGeneration,
		NotificationRecipients:   req.NotificationRecipients,
	}
	if req.IsEnabled != nil {
		rule.IsEnabled = *req.IsEnabled
	}
	if req.ConsolidateBySupplier != nil {
		rule.ConsolidateBySupplier = *req.ConsolidateBySupplier
	}
	if rule.ThresholdPercentage == 0 {
		rule.ThresholdPercentage = 100
	}
	if rule.Multiplier.IsZero() {
		rule.Multiplier = decimal.NewFromInt(1)
	}

	if req.WarehouseID != nil && *req.WarehouseID != "" {
		id, err := uuid.Parse(*req.WarehouseID)
		if err != nil {
			return nil, fmt.Errorf("invalid warehouse_id: %w", err)
		}
		rule.WarehouseID = &id
	}
	if req.DefaultSupplierID != nil && *req.DefaultSupplierID != "" {
		id, err := uuid.Parse(*req.DefaultSupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid default_supplier_id: %w", err)
		}
		rule.DefaultSupplierID = &id
	}
	for _, raw := range req.ItemIDs {
		if _, err := uuid.Parse(raw); err != nil {
			return nil, fmt.Errorf("invalid item id %q: %w", raw, err)
		}
	}

	if err := validateRule(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func validateRule(rule *model.AutoPORule) error {
	if rule.ThresholdPercentage < 0 {
		return errors.New("threshold_percentage must not be negative")
	}
	if rule.Multiplier.IsNegative() {
		return errors.New("multiplier must not be negative")
	}
	if rule.MaximumOrderQuantity > 0 && rule.MinimumOrderQuantity > rule.MaximumOrderQuantity {
		return errors.New("minimum_order_quantity must not exceed maximum_order_quantity")
	}
	if rule.QuantityMethod == model.QuantityFixed && rule.FixedQuantity <= 0 {
		return errors.New("fixed_quantity must be positive for the FIXED method")
	}
	if rule.QuantityMethod == model.QuantityDaysOfStock && rule.DaysOfStock <= 0 {
		return errors.New("days_of_stock must be positive for the DAYS_OF_STOCK method")
	}
	if rule.ConsolidationWindowHours < 0 {
		return errors.New("consolidation_window_hours must not be negative")
	}
	if rule.TriggerType == model.TriggerScheduled {
		if rule.ScheduleCron == "" {
			return errors.New("schedule_cron is required for SCHEDULED rules")
		}
		if _, err := cron.ParseStandard(rule.ScheduleCron); err != nil {
			return fmt.Errorf("invalid schedule_cron: %w", err)
		}
	}
	return nil
}
