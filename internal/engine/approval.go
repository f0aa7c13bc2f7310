package engine

import (
	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// DecideApproval classifies a draft PO total under the rule's approval policy.
// Rules that don't require approval always auto-approve. Otherwise a positive
// threshold auto-approves totals strictly under it; a threshold of 0 means
// every PO needs approval regardless of value.
func DecideApproval(rule *model.AutoPORule, total decimal.Decimal) string {
	if !rule.RequiresApproval {
		return model.POStatusApproved
	}
	if rule.ApprovalThreshold.IsPositive() && total.LessThan(rule.ApprovalThreshold) {
		return model.POStatusApproved
	}
	return model.POStatusPendingApproval
}
