package timeoff

import (
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// PROMOTION TARGETS - Use-it-or-lose-it notices
// =============================================================================

var (
	averageMonthDays      = decimal.RequireFromString("30.44")
	promotionMinMonths    = 12
	promotionMinRemaining = decimal.NewFromInt(5)
)

// WorkingMonths approximates months of service as elapsed days / 30.44.
func WorkingMonths(hire, today generic.TimePoint) int {
	days := decimal.NewFromInt(int64(generic.DaysBetween(hire, today)))
	return int(days.Div(averageMonthDays).Floor().IntPart())
}

// IsPromotionTarget reports whether the employee must be prompted to use
// remaining annual leave: at least 12 working months and at least 5 days
// left. Missing hire date or ledger record yields false.
func IsPromotionTarget(emp Employee, rec *LedgerRecord, today generic.TimePoint) bool {
	if emp.HireDate == nil || rec == nil {
		return false
	}
	if WorkingMonths(*emp.HireDate, today) < promotionMinMonths {
		return false
	}
	return rec.Annual.Available().GreaterThanOrEqual(promotionMinRemaining)
}

// PromotionTarget is one flagged employee with the numbers behind the flag.
type PromotionTarget struct {
	EmployeeID     generic.EntityID
	Name           string
	WorkingMonths  int
	RemainingDays  decimal.Decimal
	AnnualDays     int
	UsedAnnualDays decimal.Decimal
}
