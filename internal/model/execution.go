package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ExecutionStatus constants
const (
	ExecutionPending               = "PENDING"
	ExecutionRunning               = "RUNNING"
	ExecutionCompleted             = "COMPLETED"
	ExecutionCompletedWithWarnings = "COMPLETED_WITH_WARNINGS"
	ExecutionFailed                = "FAILED"
)

// TriggeredBy constants
const (
	TriggeredBySystem   = "system"
	TriggeredBySchedule = "schedule"
	TriggeredByUser     = "user"
)

// IssueType constants
const (
	IssueNoSupplier          = "NO_SUPPLIER"
	IssueItemNotFound        = "ITEM_NOT_FOUND"
	IssuePriceMissing        = "PRICE_MISSING"
	IssueQuantityOutOfBounds = "QUANTITY_OUT_OF_BOUNDS"
)

// AutoPOExecution is the immutable audit record of one live engine run.
// It is created before processing starts and finalized exactly once; dry runs
// never produce one.
type AutoPOExecution struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RuleID *uuid.UUID `gorm:"type:uuid;index" json:"rule_id"` // nil for manual runs without a rule
	Status string     `gorm:"type:varchar(30);not null;index" json:"status"`

	ItemsEvaluated      int `gorm:"type:int;not null;default:0" json:"items_evaluated"`
	ItemsBelowThreshold int `gorm:"type:int;not null;default:0" json:"items_below_threshold"`
	POsCreated          int `gorm:"type:int;not null;default:0" json:"pos_created"`
	LinesCreated        int `gorm:"type:int;not null;default:0" json:"lines_created"`

	TotalValue   decimal.Decimal        `gorm:"type:decimal(14,2);not null;default:0" json:"total_value"`
	CreatedPOIDs pq.StringArray         `gorm:"type:text[]" json:"created_po_ids"`
	Issues       []AutoPOExecutionIssue `gorm:"foreignKey:ExecutionID" json:"issues"`

	TriggeredBy  string     `gorm:"type:varchar(20);not null" json:"triggered_by"` // system, schedule, user
	ActorID      *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`

	StartedAt  time.Time  `gorm:"index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// AutoPOExecutionIssue records a non-fatal per-item problem. Issues never abort
// a run; the offending item is excluded from committed POs.
type AutoPOExecutionIssue struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ExecutionID uuid.UUID `gorm:"type:uuid;not null;index" json:"execution_id"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null" json:"item_id"`
	IssueType   string    `gorm:"type:varchar(30);not null" json:"issue_type"`
	Message     string    `gorm:"type:text" json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
