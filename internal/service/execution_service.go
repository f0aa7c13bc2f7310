package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"backend/internal/engine"
	"backend/internal/model"
	"backend/internal/notify"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrRunInFlight is returned when a live execution for the same rule is
// already running. Concurrent triggers are dropped, not queued: the next
// scheduled tick re-evaluates whatever shortage remains.
var ErrRunInFlight = errors.New("an execution for this rule is already running")

// Actor identifies who (or what) triggered an engine call. It is threaded
// explicitly through every operation; there is no ambient current user.
type Actor struct {
	ID          *uuid.UUID
	TriggeredBy string // model.TriggeredBySystem / TriggeredBySchedule / TriggeredByUser
}

// DraftPreview summarizes one would-be purchase order in a dry run.
type DraftPreview struct {
	SupplierID string          `json:"supplier_id"`
	Status     string          `json:"status"`
	LineCount  int             `json:"line_count"`
	Total      decimal.Decimal `json:"total"`
}

// RulePreview is the dry-run outcome for a single rule.
type RulePreview struct {
	RuleID              string          `json:"rule_id"`
	RuleName            string          `json:"rule_name"`
	ItemsEvaluated      int             `json:"items_evaluated"`
	ItemsBelowThreshold int             `json:"items_below_threshold"`
	Lines               []engine.Line   `json:"lines"`
	Drafts              []DraftPreview  `json:"drafts"`
	Issues              []engine.Issue  `json:"issues"`
	TotalValue          decimal.Decimal `json:"total_value"`
}

// AutoPOPreview is the ephemeral result of a dry run. It is never persisted.
type AutoPOPreview struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Rules       []RulePreview   `json:"rules"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ExecuteResult is what ExecuteAutoPO returns: a preview for dry runs, the
// persisted execution records for live runs.
type ExecuteResult struct {
	DryRun     bool                    `json:"dry_run"`
	Preview    *AutoPOPreview          `json:"preview,omitempty"`
	Executions []model.AutoPOExecution `json:"executions,omitempty"`
}

type ExecutionService interface {
	// Execute runs one rule, or every enabled non-MANUAL rule when ruleID is
	// nil. A dry run previews a single rule even when it is disabled and
	// performs no mutation of any kind.
	Execute(ctx context.Context, actor Actor, ruleID *uuid.UUID, dryRun bool) (*ExecuteResult, error)
	// Preview is the read-only what-if across one rule or all runnable rules,
	// optionally narrowed to one warehouse.
	Preview(ctx context.Context, ruleID *uuid.UUID, warehouseID *uuid.UUID) (*AutoPOPreview, error)
	// RecordStockMovement adjusts an item's quantity and evaluates
	// STOCK_MOVEMENT rules for it, buffering lines into the consolidation
	// window where the rule asks for one.
	RecordStockMovement(ctx context.Context, actor Actor, itemID uuid.UUID, delta int) (*model.InventoryItem, error)
	GetExecution(ctx context.Context, id uuid.UUID) (*model.AutoPOExecution, error)
	ListExecutions(ctx context.Context, ruleID *uuid.UUID, limit int) ([]model.AutoPOExecution, error)
	// Windows exposes the consolidation buffer so rule mutations can cancel
	// pending drafts for disabled or deleted rules.
	Windows() *engine.WindowBuffer
}

type executionService struct {
	ruleRepo   repository.RuleRepository
	itemRepo   repository.ItemRepository
	suppliers  repository.SupplierDirectory
	poRepo     repository.PurchaseOrderRepository
	execRepo   repository.ExecutionRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	calculator *engine.Calculator
	windows    *engine.WindowBuffer
	dispatcher notify.Dispatcher

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewExecutionService wires the orchestrator. eoq may be nil; the
// ECONOMIC_ORDER method then degrades to REORDER_QUANTITY with a warning.
func NewExecutionService(
	ruleRepo repository.RuleRepository,
	itemRepo repository.ItemRepository,
	suppliers repository.SupplierDirectory,
	poRepo repository.PurchaseOrderRepository,
	execRepo repository.ExecutionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	dispatcher notify.Dispatcher,
	eoq engine.EOQFunc,
) ExecutionService {
	s := &executionService{
		ruleRepo:   ruleRepo,
		itemRepo:   itemRepo,
		suppliers:  suppliers,
		poRepo:     poRepo,
		execRepo:   execRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		calculator: engine.NewCalculator(eoq),
		dispatcher: dispatcher,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
	s.windows = engine.NewWindowBuffer(s.flushBufferedLines)
	return s
}

func (s *executionService) Windows() *engine.WindowBuffer {
	return s.windows
}

func (s *executionService) Execute(ctx context.Context, actor Actor, ruleID *uuid.UUID, dryRun bool) (*ExecuteResult, error) {
	rules, err := s.targetRules(ctx, ruleID, dryRun)
	if err != nil {
		return nil, err
	}

	result := &ExecuteResult{DryRun: dryRun}
	if dryRun {
		result.Preview = &AutoPOPreview{GeneratedAt: time.Now(), TotalValue: decimal.Zero}
	}

	for i := range rules {
		rule := &rules[i]
		if dryRun {
			preview, err := s.previewRule(ctx, rule, nil)
			if err != nil {
				return nil, err
			}
			result.Preview.Rules = append(result.Preview.Rules, *preview)
			result.Preview.TotalValue = result.Preview.TotalValue.Add(preview.TotalValue)
			continue
		}

		exec, err := s.executeRuleLive(ctx, actor, rule)
		if errors.Is(err, ErrRunInFlight) {
			if ruleID != nil {
				return nil, err
			}
			log.Printf("auto-po: rule %s already running, trigger dropped", rule.ID)
			continue
		}
		if err != nil {
			// The failure is captured in the FAILED execution record; a
			// multi-rule run keeps going for the remaining rules.
			if exec != nil {
				result.Executions = append(result.Executions, *exec)
			}
			if ruleID != nil {
				return result, err
			}
			log.Printf("auto-po: rule %s execution failed: %v", rule.ID, err)
			continue
		}
		result.Executions = append(result.Executions, *exec)
	}

	return result, nil
}

func (s *executionService) Preview(ctx context.Context, ruleID *uuid.UUID, warehouseID *uuid.UUID) (*AutoPOPreview, error) {
	rules, err := s.targetRules(ctx, ruleID, true)
	if err != nil {
		return nil, err
	}

	preview := &AutoPOPreview{GeneratedAt: time.Now(), TotalValue: decimal.Zero}
	for i := range rules {
		rp, err := s.previewRule(ctx, &rules[i], warehouseID)
		if err != nil {
			return nil, err
		}
		preview.Rules = append(preview.Rules, *rp)
		preview.TotalValue = preview.TotalValue.Add(rp.TotalValue)
	}
	return preview, nil
}

// targetRules resolves which rules a call addresses. Dry runs may address a
// disabled rule; live runs of a single rule require it enabled unless invoked
// manually, and "all rules" always means enabled non-MANUAL ones.
func (s *executionService) targetRules(ctx context.Context, ruleID *uuid.UUID, dryRun bool) ([]model.AutoPORule, error) {
	if ruleID == nil {
		rules, err := s.ruleRepo.ListRunnable(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list runnable rules: %w", err)
		}
		return rules, nil
	}

	rule, err := s.ruleRepo.FindByID(ctx, *ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("rule not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !dryRun && !rule.IsEnabled {
		return nil, errors.New("rule is disabled; enable it or use a dry run")
	}
	return []model.AutoPORule{*rule}, nil
}

// pipelineOutcome is everything one scope->trigger->quantity pass produced.
type pipelineOutcome struct {
	itemsEvaluated      int
	itemsBelowThreshold int
	lines               []engine.Line // supplier resolved, committable
	previewLines        []engine.Line // committable plus NO_SUPPLIER warnings
	issues              []engine.Issue
}

// runPipeline executes the calculation stages for one rule over the given
// snapshot. Per-item problems become issues and never abort; only collaborator
// failures (supplier directory unreachable) surface as errors.
func (s *executionService) runPipeline(ctx context.Context, rule *model.AutoPORule, items []model.InventoryItem) (*pipelineOutcome, error) {
	out := &pipelineOutcome{}

	for _, missing := range engine.MissingExplicitItems(rule, items) {
		out.issues = append(out.issues, engine.Issue{
			ItemID:    missing,
			IssueType: model.IssueItemNotFound,
			Message:   "rule references an item that is not in the inventory snapshot",
		})
	}

	scoped := engine.ResolveScope(rule, items)
	for i := range scoped {
		item := &scoped[i]
		out.itemsEvaluated++

		if !engine.ShouldFire(rule, item) {
			continue
		}
		out.itemsBelowThreshold++

		res, err := s.calculator.Compute(rule, item)
		if err != nil {
			out.issues = append(out.issues, engine.Issue{
				ItemID:    item.ID,
				IssueType: model.IssueQuantityOutOfBounds,
				Message:   err.Error(),
			})
			continue
		}
		if res.IssueType != "" {
			out.issues = append(out.issues, engine.Issue{
				ItemID:    item.ID,
				IssueType: res.IssueType,
				Message:   res.Warning,
			})
			continue
		}
		if res.Quantity <= 0 {
			// Nothing to order once clamped; not an error.
			continue
		}

		supplierID, err := s.suppliers.Resolve(ctx, item, rule.DefaultSupplierID)
		if err != nil {
			return nil, fmt.Errorf("supplier resolution: %w", err)
		}

		line := engine.Line{
			ItemID:     item.ID,
			SKU:        item.SKU,
			ItemName:   item.Name,
			SupplierID: supplierID,
			Quantity:   res.Quantity,
			UnitCost:   item.UnitCost,
			LineTotal:  item.UnitCost.Mul(decimal.NewFromInt(int64(res.Quantity))).Round(2),
			HasWarning: res.HasWarning,
			Warning:    res.Warning,
		}

		if supplierID == nil {
			line.HasWarning = true
			if line.Warning == "" {
				line.Warning = "no supplier could be resolved for this item"
			}
			out.issues = append(out.issues, engine.Issue{
				ItemID:    item.ID,
				IssueType: model.IssueNoSupplier,
				Message:   "no preferred supplier on the item and no default supplier on the rule",
			})
			// Kept in the preview so the shortage stays visible, but never
			// committed.
			out.previewLines = append(out.previewLines, line)
			continue
		}

		if !item.UnitCost.IsPositive() {
			out.issues = append(out.issues, engine.Issue{
				ItemID:    item.ID,
				IssueType: model.IssuePriceMissing,
				Message:   "item has no unit cost, cannot price the order line",
			})
			continue
		}

		out.lines = append(out.lines, line)
		out.previewLines = append(out.previewLines, line)
	}

	return out, nil
}

func (s *executionService) previewRule(ctx context.Context, rule *model.AutoPORule, warehouseID *uuid.UUID) (*RulePreview, error) {
	items, err := s.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory snapshot: %w", err)
	}
	if warehouseID != nil {
		var filtered []model.InventoryItem
		for _, item := range items {
			if item.WarehouseID != nil && *item.WarehouseID == *warehouseID {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	out, err := s.runPipeline(ctx, rule, items)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
	}

	drafts := engine.Consolidate(rule, out.lines)
	preview := &RulePreview{
		RuleID:              rule.ID.String(),
		RuleName:            rule.Name,
		ItemsEvaluated:      out.itemsEvaluated,
		ItemsBelowThreshold: out.itemsBelowThreshold,
		Lines:               out.previewLines,
		Issues:              out.issues,
		TotalValue:          decimal.Zero,
	}
	for i := range drafts {
		drafts[i].Status = engine.DecideApproval(rule, drafts[i].Total)
		preview.Drafts = append(preview.Drafts, DraftPreview{
			SupplierID: drafts[i].SupplierID.String(),
			Status:     drafts[i].Status,
			LineCount:  len(drafts[i].Lines),
			Total:      drafts[i].Total,
		})
		preview.TotalValue = preview.TotalValue.Add(drafts[i].Total)
	}
	return preview, nil
}

func (s *executionService) executeRuleLive(ctx context.Context, actor Actor, rule *model.AutoPORule) (*model.AutoPOExecution, error) {
	lock := s.lockFor(rule.ID)
	if !lock.TryLock() {
		return nil, ErrRunInFlight
	}
	defer lock.Unlock()

	exec := &model.AutoPOExecution{
		RuleID:      &rule.ID,
		Status:      model.ExecutionPending,
		TotalValue:  decimal.Zero,
		TriggeredBy: actor.TriggeredBy,
		ActorID:     actor.ID,
		StartedAt:   time.Now(),
	}
	if err := s.execRepo.Create(ctx, exec); err != nil {
		return nil, fmt.Errorf("failed to allocate execution record: %w", err)
	}

	exec.Status = model.ExecutionRunning
	if err := s.execRepo.Update(ctx, exec); err != nil {
		return s.finalizeFailed(ctx, exec, "start", err)
	}

	items, err := s.itemRepo.ListActive(ctx)
	if err != nil {
		return s.finalizeFailed(ctx, exec, "inventory snapshot", err)
	}

	out, err := s.runPipeline(ctx, rule, items)
	if err != nil {
		return s.finalizeFailed(ctx, exec, "calculation", err)
	}

	// Fold in lines still waiting in a consolidation window for this rule so
	// a full run commits them instead of racing the timer. Fresh lines win on
	// item collisions, they come from the newer snapshot.
	if buffered := s.windows.Take(rule.ID); len(buffered) > 0 {
		out.lines = engine.MergeLines(buffered, out.lines)
	}

	drafts := engine.Consolidate(rule, out.lines)
	for i := range drafts {
		drafts[i].Status = engine.DecideApproval(rule, drafts[i].Total)
	}

	created, err := s.commitDrafts(ctx, actor, rule, drafts)
	if err != nil {
		return s.finalizeFailed(ctx, exec, "persist purchase orders", err)
	}

	exec.ItemsEvaluated = out.itemsEvaluated
	exec.ItemsBelowThreshold = out.itemsBelowThreshold
	exec.POsCreated = len(created)
	for _, po := range created {
		exec.CreatedPOIDs = append(exec.CreatedPOIDs, po.ID.String())
		exec.LinesCreated += len(po.Lines)
		exec.TotalValue = exec.TotalValue.Add(po.TotalValue)
	}
	for _, issue := range out.issues {
		exec.Issues = append(exec.Issues, model.AutoPOExecutionIssue{
			ExecutionID: exec.ID,
			ItemID:      issue.ItemID,
			IssueType:   issue.IssueType,
			Message:     issue.Message,
		})
	}

	exec.Status = model.ExecutionCompleted
	if len(exec.Issues) > 0 {
		exec.Status = model.ExecutionCompletedWithWarnings
	}
	now := time.Now()
	exec.FinishedAt = &now
	if err := s.execRepo.Update(ctx, exec); err != nil {
		return exec, fmt.Errorf("failed to finalize execution record: %w", err)
	}

	s.notifyExecution(rule, exec, created)
	return exec, nil
}

// commitDrafts persists every draft PO and the rule counter bump in a single
// transaction: a failure while writing leaves no PO from this run behind.
func (s *executionService) commitDrafts(ctx context.Context, actor Actor, rule *model.AutoPORule, drafts []engine.Draft) ([]model.PurchaseOrder, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	var created []model.PurchaseOrder
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, draft := range drafts {
			po := purchaseOrderFromDraft(rule, draft)
			if err := s.poRepo.Create(txCtx, po); err != nil {
				return fmt.Errorf("failed to create purchase order for supplier %s: %w", draft.SupplierID, err)
			}
			created = append(created, *po)
		}

		if err := s.ruleRepo.RecordTrigger(txCtx, rule.ID, len(created), time.Now()); err != nil {
			return fmt.Errorf("failed to update rule counters: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"rule_id":     rule.ID.String(),
			"pos_created": len(created),
		})
		audit := &model.AuditLog{
			ActorID:    actor.ID,
			Action:     model.ActionExecuteAutoPO,
			EntityID:   rule.ID.String(),
			EntityName: rule.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func purchaseOrderFromDraft(rule *model.AutoPORule, draft engine.Draft) *model.PurchaseOrder {
	po := &model.PurchaseOrder{
		OrderCode:    generateOrderCode(),
		SupplierID:   draft.SupplierID,
		Status:       draft.Status,
		IsAutoPO:     true,
		AutoPORuleID: &rule.ID,
		TotalValue:   draft.Total,
	}
	for _, line := range draft.Lines {
		po.Lines = append(po.Lines, model.PurchaseOrderLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			LineTotal: line.LineTotal,
		})
	}
	return po
}

func generateOrderCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("APO-%s-%s", time.Now().Format("20060102"), suffix)
}

// finalizeFailed marks the execution FAILED with the stage that broke. The
// commit transaction has already rolled back by the time this runs, so no
// partial PO survives.
func (s *executionService) finalizeFailed(ctx context.Context, exec *model.AutoPOExecution, stage string, cause error) (*model.AutoPOExecution, error) {
	exec.Status = model.ExecutionFailed
	exec.ErrorMessage = fmt.Sprintf("%s: %v", stage, cause)
	now := time.Now()
	exec.FinishedAt = &now
	if err := s.execRepo.Update(ctx, exec); err != nil {
		log.Printf("auto-po: failed to record FAILED execution %s: %v", exec.ID, err)
	}
	if s.dispatcher != nil {
		// Failures always broadcast, independent of the rule's notify flag.
		s.dispatcher.Notify(notify.EventExecutionFailed, nil, map[string]interface{}{
			"execution_id": exec.ID.String(),
			"rule_id":      exec.RuleID,
			"error":        exec.ErrorMessage,
		})
	}
	return exec, fmt.Errorf("execution %s failed at %s: %w", exec.ID, stage, cause)
}

func (s *executionService) RecordStockMovement(ctx context.Context, actor Actor, itemID uuid.UUID, delta int) (*model.InventoryItem, error) {
	item, err := s.itemRepo.AdjustQuantity(ctx, itemID, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("item not found")
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	rules, err := s.ruleRepo.ListRunnable(ctx)
	if err != nil {
		return item, fmt.Errorf("failed to list rules: %w", err)
	}

	for i := range rules {
		rule := &rules[i]
		if rule.TriggerType != model.TriggerStockMovement {
			continue
		}
		if len(engine.ResolveScope(rule, []model.InventoryItem{*item})) == 0 {
			continue
		}
		if !engine.ShouldFire(rule, item) {
			continue
		}

		out, err := s.runPipeline(ctx, rule, []model.InventoryItem{*item})
		if err != nil {
			log.Printf("auto-po: stock movement pipeline for rule %s: %v", rule.ID, err)
			continue
		}
		if len(out.lines) == 0 {
			continue
		}

		window := time.Duration(rule.ConsolidationWindowHours) * time.Hour
		if rule.ConsolidateBySupplier && window > 0 {
			// Debounce: repeated dips for the same supplier within the window
			// merge into one draft instead of one PO per stock event.
			for _, line := range out.lines {
				s.windows.Add(rule.ID, *line.SupplierID, window, []engine.Line{line})
			}
			continue
		}

		if _, err := s.executeRuleLive(ctx, actor, rule); err != nil && !errors.Is(err, ErrRunInFlight) {
			log.Printf("auto-po: stock movement execution for rule %s: %v", rule.ID, err)
		}
	}

	return item, nil
}

// flushBufferedLines commits one rule+supplier buffer once its consolidation
// window closes. It runs from the window timer, detached from any request.
func (s *executionService) flushBufferedLines(ruleID, supplierID uuid.UUID, lines []engine.Line) {
	ctx := context.Background()

	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		log.Printf("auto-po: window flush dropped, rule %s not loadable: %v", ruleID, err)
		return
	}
	if !rule.IsEnabled {
		log.Printf("auto-po: window flush dropped, rule %s disabled", ruleID)
		return
	}

	lock := s.lockFor(rule.ID)
	if !lock.TryLock() {
		// A full run is committing right now; it already took or will re-derive
		// these shortages on its next tick.
		log.Printf("auto-po: window flush for rule %s dropped, execution in flight", ruleID)
		return
	}
	defer lock.Unlock()

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	draft := engine.Draft{
		SupplierID: supplierID,
		Lines:      lines,
		Total:      total,
		Status:     engine.DecideApproval(rule, total),
	}

	exec := &model.AutoPOExecution{
		RuleID:      &rule.ID,
		Status:      model.ExecutionRunning,
		TotalValue:  decimal.Zero,
		TriggeredBy: model.TriggeredBySystem,
		StartedAt:   time.Now(),
	}
	if err := s.execRepo.Create(ctx, exec); err != nil {
		log.Printf("auto-po: window flush for rule %s: %v", ruleID, err)
		return
	}

	created, err := s.commitDrafts(ctx, Actor{TriggeredBy: model.TriggeredBySystem}, rule, []engine.Draft{draft})
	if err != nil {
		_, _ = s.finalizeFailed(ctx, exec, "persist purchase orders", err)
		return
	}

	exec.ItemsEvaluated = len(lines)
	exec.ItemsBelowThreshold = len(lines)
	exec.POsCreated = len(created)
	for _, po := range created {
		exec.CreatedPOIDs = append(exec.CreatedPOIDs, po.ID.String())
		exec.LinesCreated += len(po.Lines)
		exec.TotalValue = exec.TotalValue.Add(po.TotalValue)
	}
	exec.Status = model.ExecutionCompleted
	now := time.Now()
	exec.FinishedAt = &now
	if err := s.execRepo.Update(ctx, exec); err != nil {
		log.Printf("auto-po: failed to finalize window execution %s: %v", exec.ID, err)
	}

	s.notifyExecution(rule, exec, created)
}

func (s *executionService) notifyExecution(rule *model.AutoPORule, exec *model.AutoPOExecution, created []model.PurchaseOrder) {
	if s.dispatcher == nil || !rule.NotifyOnGeneration {
		return
	}
	s.dispatcher.Notify(notify.EventExecutionCompleted, rule.NotificationRecipients, map[string]interface{}{
		"execution_id": exec.ID.String(),
		"rule_id":      rule.ID.String(),
		"rule_name":    rule.Name,
		"status":       exec.Status,
		"pos_created":  exec.POsCreated,
		"total_value":  exec.TotalValue,
	})
	for _, po := range created {
		if po.Status == model.POStatusPendingApproval {
			s.dispatcher.Notify(notify.EventPendingApproval, rule.NotificationRecipients, map[string]interface{}{
				"purchase_order_id": po.ID.String(),
				"order_code":        po.OrderCode,
				"supplier_id":       po.SupplierID.String(),
				"total_value":       po.TotalValue,
			})
		}
	}
}

func (s *executionService) GetExecution(ctx context.Context, id uuid.UUID) (*model.AutoPOExecution, error) {
	exec, err := s.execRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("execution not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return exec, nil
}

func (s *executionService) ListExecutions(ctx context.Context, ruleID *uuid.UUID, limit int) ([]model.AutoPOExecution, error) {
	return s.execRepo.List(ctx, ruleID, limit)
}

func (s *executionService) lockFor(ruleID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[ruleID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ruleID] = lock
	}
	return lock
}
