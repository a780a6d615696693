/*
accrual.go - Tenure-based annual leave entitlement

PURPOSE:
  Maps (hire date, evaluation date) to the number of annual leave days an
  employee is entitled to. The policy is keyed by calendar years since
  hire, not by elapsed days, and it is a fixed HR rule: keep the tiers
  exactly as written even where they disagree with an anniversary count.

TIERS (years = eval.Year - hire.Year):
  0   One day per calendar month crossed in the hire year:
        max(0, (evalMonth - hireMonth) + (evalDay >= hireDay ? 1 : 0))
  1   15 days pro-rated by the share of the hire year worked, rounded up,
      plus (hireMonth - 1) days:
        ceil((daysFromHireToDec31 + 1) * 15 / 365) + hireMonth - 1
  2   15 days flat
  3+  min(15 + floor((years - 1) / 2), 25)

EXAMPLES:
  hired 2024-03-10, eval 2024-06-09  -> 3
  hired 2024-03-10, eval 2024-06-10  -> 4
  hired 2024-10-01, eval 2025-01-01  -> ceil(92*15/365)=4, + 9 = 13
  hired 2015-01-01, eval 2025-01-01  -> 15 + 4 = 19

SEE ALSO:
  - accrual_run.go: Applies the entitlement to every active employee
*/
package timeoff

import "github.com/warp/leave-engine/generic"

const (
	baseAnnualDays = 15
	maxAnnualDays  = 25
	daysPerYear    = 365
)

// AnnualEntitlement returns the annual leave days earned by eval.
// A nil hire date yields 0, as does an evaluation before the hire year.
func AnnualEntitlement(hire *generic.TimePoint, eval generic.TimePoint) int {
	if hire == nil || hire.IsZero() {
		return 0
	}
	years := eval.Year() - hire.Year()
	switch {
	case years < 0:
		return 0
	case years == 0:
		months := int(eval.Month()) - int(hire.Month())
		if eval.Day() >= hire.Day() {
			months++
		}
		return max(0, months)
	case years == 1:
		worked := generic.DaysBetween(*hire, generic.EndOfYear(hire.Year())) + 1
		// integer ceiling so that exact multiples stay exact
		prorated := (worked*baseAnnualDays + daysPerYear - 1) / daysPerYear
		return prorated + int(hire.Month()) - 1
	case years == 2:
		return baseAnnualDays
	default:
		return min(baseAnnualDays+(years-1)/2, maxAnnualDays)
	}
}
