package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- in-memory fakes ---

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules map[uuid.UUID]*model.AutoPORule
}

func newFakeRuleRepo(rules ...*model.AutoPORule) *fakeRuleRepo {
	r := &fakeRuleRepo{rules: make(map[uuid.UUID]*model.AutoPORule)}
	for _, rule := range rules {
		if rule.ID == uuid.Nil {
			rule.ID = uuid.New()
		}
		r.rules[rule.ID] = rule
	}
	return r
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *model.AutoPORule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	stored := *rule
	r.rules[rule.ID] = &stored
	return nil
}

func (r *fakeRuleRepo) Update(_ context.Context, rule *model.AutoPORule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *rule
	r.rules[rule.ID] = &stored
	return nil
}

func (r *fakeRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, id)
	return nil
}

func (r *fakeRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AutoPORule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rule
	return &copied, nil
}

func (r *fakeRuleRepo) List(_ context.Context, enabledOnly bool, _, _ int) ([]model.AutoPORule, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AutoPORule
	for _, rule := range r.rules {
		if enabledOnly && !rule.IsEnabled {
			continue
		}
		out = append(out, *rule)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRuleRepo) ListRunnable(_ context.Context) ([]model.AutoPORule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AutoPORule
	for _, rule := range r.rules {
		if rule.IsEnabled && rule.TriggerType != model.TriggerManual {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) ListScheduled(_ context.Context) ([]model.AutoPORule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AutoPORule
	for _, rule := range r.rules {
		if rule.IsEnabled && rule.TriggerType == model.TriggerScheduled && rule.ScheduleCron != "" {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepo) RecordTrigger(_ context.Context, id uuid.UUID, posGenerated int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rule.TotalPOsGenerated += posGenerated
	rule.LastTriggeredAt = &at
	return nil
}

func (r *fakeRuleRepo) CountEnabled(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rule := range r.rules {
		if rule.IsEnabled {
			n++
		}
	}
	return n, nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items []model.InventoryItem
	// listGate, when set, makes ListActive signal and block until released.
	listStarted chan struct{}
	listGate    chan struct{}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			copied := item
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) ListActive(_ context.Context) ([]model.InventoryItem, error) {
	if r.listStarted != nil {
		r.listStarted <- struct{}{}
		<-r.listGate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryItem
	for _, item := range r.items {
		if item.IsActive {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) List(_ context.Context, _, _ int, _ bool) ([]model.InventoryItem, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.InventoryItem(nil), r.items...), int64(len(r.items)), nil
}

func (r *fakeItemRepo) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].CurrentQuantity += delta
			if r.items[i].CurrentQuantity < 0 {
				r.items[i].CurrentQuantity = 0
			}
			copied := r.items[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) CountActive(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeItemRepo) CountBelowReorder(_ context.Context) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.IsActive && item.CurrentQuantity <= item.ReorderLevel {
			n++
		}
	}
	return n, nil
}

type fakeSupplierDirectory struct {
	active map[uuid.UUID]bool
	err    error
}

func (d *fakeSupplierDirectory) Resolve(_ context.Context, item *model.InventoryItem, ruleDefault *uuid.UUID) (*uuid.UUID, error) {
	if d.err != nil {
		return nil, d.err
	}
	for _, candidate := range []*uuid.UUID{item.PreferredSupplierID, ruleDefault} {
		if candidate != nil && d.active[*candidate] {
			id := *candidate
			return &id, nil
		}
	}
	return nil, nil
}

func (d *fakeSupplierDirectory) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	if !d.active[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Supplier{ID: id, IsActive: true}, nil
}

type fakePORepo struct {
	mu        sync.Mutex
	orders    []model.PurchaseOrder
	createErr error
}

func (r *fakePORepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	r.orders = append(r.orders, *po)
	return nil
}

func (r *fakePORepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.orders {
		if po.ID == id {
			copied := po
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePORepo) List(_ context.Context, _ string, _ bool, _, _ int) ([]model.PurchaseOrder, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PurchaseOrder(nil), r.orders...), int64(len(r.orders)), nil
}

func (r *fakePORepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, decidedBy *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			r.orders[i].DecidedBy = decidedBy
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePORepo) CountByStatus(_ context.Context, status string, _ bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, po := range r.orders {
		if po.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakePORepo) CountCreatedSince(_ context.Context, _ time.Time, _ bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

func (r *fakePORepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeExecRepo struct {
	mu    sync.Mutex
	execs map[uuid.UUID]*model.AutoPOExecution
}

func newFakeExecRepo() *fakeExecRepo {
	return &fakeExecRepo{execs: make(map[uuid.UUID]*model.AutoPOExecution)}
}

func (r *fakeExecRepo) Create(_ context.Context, exec *model.AutoPOExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if exec.ID == uuid.Nil {
		exec.ID = uuid.New()
	}
	stored := *exec
	r.execs[exec.ID] = &stored
	return nil
}

func (r *fakeExecRepo) Update(_ context.Context, exec *model.AutoPOExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *exec
	r.execs[exec.ID] = &stored
	return nil
}

func (r *fakeExecRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AutoPOExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec, ok := r.execs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *exec
	return &copied, nil
}

func (r *fakeExecRepo) List(_ context.Context, ruleID *uuid.UUID, _ int) ([]model.AutoPOExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AutoPOExecution
	for _, exec := range r.execs {
		if ruleID != nil && (exec.RuleID == nil || *exec.RuleID != *ruleID) {
			continue
		}
		out = append(out, *exec)
	}
	return out, nil
}

func (r *fakeExecRepo) LastFinishedAt(_ context.Context) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *time.Time
	for _, exec := range r.execs {
		if exec.FinishedAt != nil && (latest == nil || exec.FinishedAt.After(*latest)) {
			latest = exec.FinishedAt
		}
	}
	return latest, nil
}

func (r *fakeExecRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.execs)
}

func (r *fakeExecRepo) only(t *testing.T) *model.AutoPOExecution {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.execs) != 1 {
		t.Fatalf("expected exactly 1 execution record, got %d", len(r.execs))
	}
	for _, exec := range r.execs {
		copied := *exec
		return &copied
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditLog(nil), r.entries...), int64(len(r.entries)), nil
}

func (r *fakeAuditRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- fixture helpers ---

type fixture struct {
	ruleRepo  *fakeRuleRepo
	itemRepo  *fakeItemRepo
	suppliers *fakeSupplierDirectory
	poRepo    *fakePORepo
	execRepo  *fakeExecRepo
	auditRepo *fakeAuditRepo
	svc       ExecutionService
}

func newFixture(rules []*model.AutoPORule, items []model.InventoryItem, activeSuppliers ...uuid.UUID) *fixture {
	f := &fixture{
		ruleRepo:  newFakeRuleRepo(rules...),
		itemRepo:  &fakeItemRepo{items: items},
		suppliers: &fakeSupplierDirectory{active: make(map[uuid.UUID]bool)},
		poRepo:    &fakePORepo{},
		execRepo:  newFakeExecRepo(),
		auditRepo: &fakeAuditRepo{},
	}
	for _, id := range activeSuppliers {
		f.suppliers.active[id] = true
	}
	f.svc = NewExecutionService(f.ruleRepo, f.itemRepo, f.suppliers, f.poRepo, f.execRepo, f.auditRepo, fakeTxManager{}, nil, nil)
	return f
}

func basicRule() *model.AutoPORule {
	return &model.AutoPORule{
		ID:                    uuid.New(),
		Name:                  "restock printers",
		IsEnabled:             true,
		TriggerType:           model.TriggerReorderLevel,
		ThresholdPercentage:   100,
		QuantityMethod:        model.QuantityReorder,
		Multiplier:            decimal.NewFromInt(1),
		ConsolidateBySupplier: true,
	}
}

func shortItem(supplier *uuid.UUID) model.InventoryItem {
	return model.InventoryItem{
		ID:                  uuid.New(),
		SKU:                 "SKU-" + uuid.NewString()[:8],
		Name:                "widget",
		IsActive:            true,
		CurrentQuantity:     2,
		ReorderLevel:        10,
		ReorderQuantity:     20,
		UnitCost:            decimal.RequireFromString("4.50"),
		PreferredSupplierID: supplier,
	}
}

var testActor = Actor{TriggeredBy: model.TriggeredByUser}

// --- tests ---

func TestExecute_DryRunMutatesNothing(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{shortItem(&supplier)}, supplier)

	result, err := f.svc.Execute(context.Background(), testActor, &rule.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DryRun || result.Preview == nil {
		t.Fatal("dry run must return a preview")
	}
	if len(result.Preview.Rules) != 1 || len(result.Preview.Rules[0].Lines) != 1 {
		t.Fatalf("expected one proposed line, got %+v", result.Preview.Rules)
	}

	if f.poRepo.count() != 0 {
		t.Error("dry run must not create purchase orders")
	}
	if f.execRepo.count() != 0 {
		t.Error("dry run must not create execution records")
	}
	if f.auditRepo.count() != 0 {
		t.Error("dry run must not write audit entries")
	}
	stored, _ := f.ruleRepo.FindByID(context.Background(), rule.ID)
	if stored.TotalPOsGenerated != 0 || stored.LastTriggeredAt != nil {
		t.Error("dry run must not bump rule counters")
	}
}

func TestExecute_LiveCommitsPOAndRecordsExecution(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	item := shortItem(&supplier)
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item}, supplier)

	result, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Executions) != 1 {
		t.Fatalf("expected one execution, got %d", len(result.Executions))
	}

	exec := f.execRepo.only(t)
	if exec.Status != model.ExecutionCompleted {
		t.Errorf("expected COMPLETED, got %s", exec.Status)
	}
	if exec.ItemsEvaluated != 1 || exec.ItemsBelowThreshold != 1 || exec.POsCreated != 1 || exec.LinesCreated != 1 {
		t.Errorf("unexpected counts: %+v", exec)
	}
	if exec.FinishedAt == nil {
		t.Error("finalized execution must carry a finish time")
	}
	// 20 units * 4.50
	if !exec.TotalValue.Equal(decimal.RequireFromString("90.00")) {
		t.Errorf("expected total 90.00, got %s", exec.TotalValue)
	}

	if f.poRepo.count() != 1 {
		t.Fatalf("expected one PO, got %d", f.poRepo.count())
	}
	po := f.poRepo.orders[0]
	if po.SupplierID != supplier || !po.IsAutoPO || po.AutoPORuleID == nil || *po.AutoPORuleID != rule.ID {
		t.Errorf("PO not linked to rule/supplier: %+v", po)
	}
	if po.Status != model.POStatusApproved {
		t.Errorf("rule without approval requirement should auto-approve, got %s", po.Status)
	}
	if len(exec.CreatedPOIDs) != 1 || exec.CreatedPOIDs[0] != po.ID.String() {
		t.Error("execution must reference the created PO")
	}

	stored, _ := f.ruleRepo.FindByID(context.Background(), rule.ID)
	if stored.TotalPOsGenerated != 1 || stored.LastTriggeredAt == nil {
		t.Error("live run must bump the rule counters")
	}
	if f.auditRepo.count() != 1 {
		t.Errorf("expected one audit entry, got %d", f.auditRepo.count())
	}
}

func TestExecute_ApprovalGateHoldsLargeOrders(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	rule.RequiresApproval = true
	rule.ApprovalThreshold = decimal.RequireFromString("50.00")
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{shortItem(&supplier)}, supplier)

	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.poRepo.count() != 1 {
		t.Fatalf("expected one PO, got %d", f.poRepo.count())
	}
	if got := f.poRepo.orders[0].Status; got != model.POStatusPendingApproval {
		t.Errorf("90.00 total over a 50.00 threshold must wait for approval, got %s", got)
	}
}

func TestExecute_NoSupplierNeverCommits(t *testing.T) {
	rule := basicRule()
	item := shortItem(nil) // no preferred supplier and no rule default
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item})

	// Dry run keeps the shortage visible as a warning line.
	preview, err := f.svc.Preview(context.Background(), &rule.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rp := preview.Rules[0]
	if len(rp.Lines) != 1 || !rp.Lines[0].HasWarning {
		t.Fatalf("NO_SUPPLIER line must appear in the preview with a warning, got %+v", rp.Lines)
	}
	if len(rp.Drafts) != 0 {
		t.Error("NO_SUPPLIER lines must not form drafts")
	}

	// Live run records the issue and commits nothing.
	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.poRepo.count() != 0 {
		t.Error("no PO may be committed without a supplier")
	}
	exec := f.execRepo.only(t)
	if exec.Status != model.ExecutionCompletedWithWarnings {
		t.Errorf("expected COMPLETED_WITH_WARNINGS, got %s", exec.Status)
	}
	if len(exec.Issues) != 1 || exec.Issues[0].IssueType != model.IssueNoSupplier {
		t.Errorf("expected one NO_SUPPLIER issue, got %+v", exec.Issues)
	}
}

func TestExecute_PriceMissingSkipsItemOnly(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	priced := shortItem(&supplier)
	unpriced := shortItem(&supplier)
	unpriced.UnitCost = decimal.Zero
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{priced, unpriced}, supplier)

	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.poRepo.count() != 1 || len(f.poRepo.orders[0].Lines) != 1 {
		t.Fatal("only the priced item may reach a PO")
	}
	if f.poRepo.orders[0].Lines[0].ItemID != priced.ID {
		t.Error("committed line must be the priced item")
	}
	exec := f.execRepo.only(t)
	if exec.Status != model.ExecutionCompletedWithWarnings {
		t.Errorf("expected COMPLETED_WITH_WARNINGS, got %s", exec.Status)
	}
	if len(exec.Issues) != 1 || exec.Issues[0].IssueType != model.IssuePriceMissing {
		t.Errorf("expected one PRICE_MISSING issue, got %+v", exec.Issues)
	}
}

func TestExecute_MissingExplicitItemRecordsIssue(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	item := shortItem(&supplier)
	ghost := uuid.New()
	rule.ItemIDs = []string{item.ID.String(), ghost.String()}
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item}, supplier)

	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exec := f.execRepo.only(t)
	if exec.Status != model.ExecutionCompletedWithWarnings {
		t.Errorf("expected COMPLETED_WITH_WARNINGS, got %s", exec.Status)
	}
	found := false
	for _, issue := range exec.Issues {
		if issue.IssueType == model.IssueItemNotFound && issue.ItemID == ghost {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an ITEM_NOT_FOUND issue for %s, got %+v", ghost, exec.Issues)
	}
	if f.poRepo.count() != 1 {
		t.Error("the present item must still be ordered")
	}
}

func TestExecute_FailedWhenPOStoreBreaks(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{shortItem(&supplier)}, supplier)
	f.poRepo.createErr = errors.New("disk full")

	_, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false)
	if err == nil {
		t.Fatal("expected an error from the broken PO store")
	}

	exec := f.execRepo.only(t)
	if exec.Status != model.ExecutionFailed {
		t.Errorf("expected FAILED, got %s", exec.Status)
	}
	if exec.ErrorMessage == "" {
		t.Error("FAILED execution must carry the error message")
	}
	if f.poRepo.count() != 0 {
		t.Error("no partial PO may survive a failed commit")
	}
	stored, _ := f.ruleRepo.FindByID(context.Background(), rule.ID)
	if stored.TotalPOsGenerated != 0 {
		t.Error("rule counters must not move on failure")
	}
}

func TestExecute_DisabledRule(t *testing.T) {
	rule := basicRule()
	rule.IsEnabled = false
	f := newFixture([]*model.AutoPORule{rule}, nil)

	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false); err == nil {
		t.Error("a live run of a disabled rule must be rejected")
	}
	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, true); err != nil {
		t.Errorf("a dry run of a disabled rule is allowed: %v", err)
	}
}

func TestExecute_AllRulesSkipsManual(t *testing.T) {
	supplier := uuid.New()
	auto := basicRule()
	manual := basicRule()
	manual.TriggerType = model.TriggerManual
	f := newFixture([]*model.AutoPORule{auto, manual}, []model.InventoryItem{shortItem(&supplier)}, supplier)

	result, err := f.svc.Execute(context.Background(), testActor, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Executions) != 1 {
		t.Errorf("MANUAL rules stay out of run-all, expected 1 execution, got %d", len(result.Executions))
	}
	if result.Executions[0].RuleID == nil || *result.Executions[0].RuleID != auto.ID {
		t.Error("the executed rule must be the non-manual one")
	}
}

func TestExecute_ConcurrentRunDropped(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{shortItem(&supplier)}, supplier)
	f.itemRepo.listStarted = make(chan struct{}, 1)
	f.itemRepo.listGate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false)
		done <- err
	}()

	<-f.itemRepo.listStarted // first run holds the rule lock now

	_, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false)
	if !errors.Is(err, ErrRunInFlight) {
		t.Errorf("expected ErrRunInFlight, got %v", err)
	}

	close(f.itemRepo.listGate)
	if err := <-done; err != nil {
		t.Fatalf("first run should complete: %v", err)
	}
	if f.poRepo.count() != 1 {
		t.Errorf("exactly one run commits, got %d POs", f.poRepo.count())
	}
}

func TestRecordStockMovement_BuffersIntoWindow(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	rule.TriggerType = model.TriggerStockMovement
	rule.ConsolidationWindowHours = 4
	item := shortItem(&supplier)
	item.CurrentQuantity = 15
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item}, supplier)

	updated, err := f.svc.RecordStockMovement(context.Background(), testActor, item.ID, -8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CurrentQuantity != 7 {
		t.Errorf("expected quantity 7 after the movement, got %d", updated.CurrentQuantity)
	}

	if f.poRepo.count() != 0 {
		t.Error("lines must wait in the consolidation window, not commit")
	}
	if got := f.svc.Windows().PendingLines(rule.ID); got != 1 {
		t.Errorf("expected 1 buffered line, got %d", got)
	}
}

func TestRecordStockMovement_CommitsWithoutWindow(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	rule.TriggerType = model.TriggerStockMovement
	rule.ConsolidationWindowHours = 0
	item := shortItem(&supplier)
	item.CurrentQuantity = 15
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item}, supplier)

	if _, err := f.svc.RecordStockMovement(context.Background(), testActor, item.ID, -8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.poRepo.count() != 1 {
		t.Errorf("windowless stock movement triggers an immediate run, got %d POs", f.poRepo.count())
	}
}

func TestRecordStockMovement_AboveThresholdStaysQuiet(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	rule.TriggerType = model.TriggerStockMovement
	item := shortItem(&supplier)
	item.CurrentQuantity = 50
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item}, supplier)

	if _, err := f.svc.RecordStockMovement(context.Background(), testActor, item.ID, -5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.poRepo.count() != 0 || f.execRepo.count() != 0 {
		t.Error("a movement that leaves stock above the threshold must not trigger anything")
	}
}

func TestExecute_FoldsBufferedWindowLines(t *testing.T) {
	supplier := uuid.New()
	rule := basicRule()
	rule.TriggerType = model.TriggerStockMovement
	rule.ConsolidationWindowHours = 4
	item := shortItem(&supplier)
	item.CurrentQuantity = 15
	f := newFixture([]*model.AutoPORule{rule}, []model.InventoryItem{item}, supplier)

	if _, err := f.svc.RecordStockMovement(context.Background(), testActor, item.ID, -8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.svc.Windows().PendingLines(rule.ID) != 1 {
		t.Fatal("precondition: a line must be buffered")
	}

	if _, err := f.svc.Execute(context.Background(), testActor, &rule.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.svc.Windows().PendingLines(rule.ID) != 0 {
		t.Error("a full run must drain the rule's window")
	}
	if f.poRepo.count() != 1 {
		t.Fatalf("expected one PO from the folded run, got %d", f.poRepo.count())
	}
	if len(f.poRepo.orders[0].Lines) != 1 || f.poRepo.orders[0].Lines[0].ItemID != item.ID {
		t.Error("the buffered item must appear exactly once in the committed PO")
	}
}

func TestGetExecution_NotFound(t *testing.T) {
	f := newFixture(nil, nil)
	if _, err := f.svc.GetExecution(context.Background(), uuid.New()); err == nil {
		t.Error("unknown execution id must error")
	}
}
