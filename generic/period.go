package generic

// =============================================================================
// PERIOD - Accrual period boundaries
// =============================================================================

// Period is an inclusive date range [Start, End].
//
// The annual accrual run resets balances per calendar-year period; leave
// requests also carry a Period for their start and end dates.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod validates that end is not before start.
func NewPeriod(start, end TimePoint) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// CalendarYear returns the Jan 1 - Dec 31 period containing date.
func CalendarYear(date TimePoint) Period {
	return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}
}

// Days returns the number of calendar days in the period, inclusive.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
