package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRule  = "CREATE_AUTO_PO_RULE"
	ActionUpdateRule  = "UPDATE_AUTO_PO_RULE"
	ActionDeleteRule  = "DELETE_AUTO_PO_RULE"
	ActionEnableRule  = "ENABLE_AUTO_PO_RULE"
	ActionDisableRule = "DISABLE_AUTO_PO_RULE"

	ActionExecuteAutoPO = "EXECUTE_AUTO_PO"
	ActionApprovePO     = "APPROVE_PURCHASE_ORDER"
	ActionRejectPO      = "REJECT_PURCHASE_ORDER"
)

// AuditLog tracks who did what and when for rule lifecycle changes, committed
// executions and PO approval decisions.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"` // nil for scheduler-driven actions
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
