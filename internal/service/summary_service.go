package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
)

// SummaryResponse is the monitoring dashboard for the auto-PO engine.
type SummaryResponse struct {
	ActiveRules       int64                   `json:"active_rules"`
	ItemsMonitored    int64                   `json:"items_monitored"`
	ItemsBelowReorder int64                   `json:"items_below_reorder"`
	PendingAutoPOs    int64                   `json:"pending_auto_pos"`
	POsCreatedToday   int64                   `json:"pos_created_today"`
	POsCreatedWeek    int64                   `json:"pos_created_week"`
	POsCreatedMonth   int64                   `json:"pos_created_month"`
	LastExecutionAt   *time.Time              `json:"last_execution_at"`
	RecentExecutions  []model.AutoPOExecution `json:"recent_executions"`
}

type SummaryService interface {
	GetSummary(ctx context.Context) (SummaryResponse, error)
}

type summaryService struct {
	ruleRepo repository.RuleRepository
	itemRepo repository.ItemRepository
	poRepo   repository.PurchaseOrderRepository
	execRepo repository.ExecutionRepository
}

func NewSummaryService(
	ruleRepo repository.RuleRepository,
	itemRepo repository.ItemRepository,
	poRepo repository.PurchaseOrderRepository,
	execRepo repository.ExecutionRepository,
) SummaryService {
	return &summaryService{
		ruleRepo: ruleRepo,
		itemRepo: itemRepo,
		poRepo:   poRepo,
		execRepo: execRepo,
	}
}

func (s *summaryService) GetSummary(ctx context.Context) (SummaryResponse, error) {
	var res SummaryResponse
	var err error

	if res.ActiveRules, err = s.ruleRepo.CountEnabled(ctx); err != nil {
		return res, fmt.Errorf("failed to count rules: %w", err)
	}
	if res.ItemsMonitored, err = s.itemRepo.CountActive(ctx); err != nil {
		return res, fmt.Errorf("failed to count items: %w", err)
	}
	if res.ItemsBelowReorder, err = s.itemRepo.CountBelowReorder(ctx); err != nil {
		return res, fmt.Errorf("failed to count short items: %w", err)
	}
	if res.PendingAutoPOs, err = s.poRepo.CountByStatus(ctx, model.POStatusPendingApproval, true); err != nil {
		return res, fmt.Errorf("failed to count pending POs: %w", err)
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if res.POsCreatedToday, err = s.poRepo.CountCreatedSince(ctx, dayStart, true); err != nil {
		return res, fmt.Errorf("failed to count today's POs: %w", err)
	}
	if res.POsCreatedWeek, err = s.poRepo.CountCreatedSince(ctx, dayStart.AddDate(0, 0, -6), true); err != nil {
		return res, fmt.Errorf("failed to count this week's POs: %w", err)
	}
	if res.POsCreatedMonth, err = s.poRepo.CountCreatedSince(ctx, dayStart.AddDate(0, -1, 0), true); err != nil {
		return res, fmt.Errorf("failed to count this month's POs: %w", err)
	}

	if res.LastExecutionAt, err = s.execRepo.LastFinishedAt(ctx); err != nil {
		return res, fmt.Errorf("failed to find last execution: %w", err)
	}
	if res.RecentExecutions, err = s.execRepo.List(ctx, nil, 5); err != nil {
		return res, fmt.Errorf("failed to list recent executions: %w", err)
	}

	return res, nil
}
