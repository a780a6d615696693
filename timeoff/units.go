package timeoff

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HoursPerDay is the conversion factor between hour and day amounts.
const HoursPerDay = 8

var hoursPerDay = decimal.NewFromInt(HoursPerDay)

// HoursToDays converts hours to fractional days. Non-positive input is 0.
func HoursToDays(h decimal.Decimal) decimal.Decimal {
	if !h.IsPositive() {
		return decimal.Zero
	}
	return h.Div(hoursPerDay)
}

// DaysToHours converts days to hours.
func DaysToHours(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hoursPerDay)
}

// FormatDays renders an hour amount for display, e.g. "1.125 days (9 hours)".
func FormatDays(h decimal.Decimal) string {
	return fmt.Sprintf("%s days (%s hours)", HoursToDays(h).String(), h.String())
}
