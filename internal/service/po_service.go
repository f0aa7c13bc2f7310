package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderService is the review surface for generated POs: listing them
// and deciding the ones the approval gate left pending.
type PurchaseOrderService interface {
	Get(ctx context.Context, id string) (*model.PurchaseOrder, error)
	List(ctx context.Context, status string, autoOnly bool, page, limit int) ([]model.PurchaseOrder, int64, error)
	Approve(ctx context.Context, actor Actor, id string) (*model.PurchaseOrder, error)
	Reject(ctx context.Context, actor Actor, id string, reason string) (*model.PurchaseOrder, error)
}

type purchaseOrderService struct {
	poRepo    repository.PurchaseOrderRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:    poRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

func (s *purchaseOrderService) Get(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase order id: %w", err)
	}
	po, err := s.poRepo.FindByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("purchase order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return po, nil
}

func (s *purchaseOrderService) List(ctx context.Context, status string, autoOnly bool, page, limit int) ([]model.PurchaseOrder, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.poRepo.List(ctx, status, autoOnly, page, limit)
}

func (s *purchaseOrderService) Approve(ctx context.Context, actor Actor, id string) (*model.PurchaseOrder, error) {
	return s.decide(ctx, actor, id, model.POStatusApproved, model.ActionApprovePO, "")
}

func (s *purchaseOrderService) Reject(ctx context.Context, actor Actor, id string, reason string) (*model.PurchaseOrder, error) {
	return s.decide(ctx, actor, id, model.POStatusRejected, model.ActionRejectPO, reason)
}

func (s *purchaseOrderService) decide(ctx context.Context, actor Actor, id, status, action, reason string) (*model.PurchaseOrder, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase order id: %w", err)
	}

	po, err := s.poRepo.FindByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("purchase order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if po.Status != model.POStatusPendingApproval {
		return nil, fmt.Errorf("purchase order is %s, only pending orders can be decided", po.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.poRepo.UpdateStatus(txCtx, poID, status, actor.ID); err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_code": po.OrderCode,
			"status":     status,
			"reason":     reason,
		})
		audit := &model.AuditLog{
			ActorID:    actor.ID,
			Action:     action,
			EntityID:   po.ID.String(),
			EntityName: po.OrderCode,
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

	po.Status = status
	return po, nil
}
