package generic

import (
	"context"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date abstraction
// =============================================================================

// TimePoint is a calendar date. All comparisons happen at day granularity
// in UTC; HR rules in this engine never look at time of day.
type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates any instant to its calendar date.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

const DateLayout = "2006-01-02"

func Today() TimePoint {
	return DateOf(time.Now())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.normalize().AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// HOLIDAY CALENDAR - Public holiday lookup (external collaborator)
// =============================================================================

// Holiday is a named public holiday.
type Holiday struct {
	ID        string
	Date      TimePoint
	Name      string
	Recurring bool // same month/day every year
}

// HolidayCalendar answers "is this date a public holiday".
//
// HolidayName returns the holiday's name, or "" when the date is not a
// holiday. Implementations may block on I/O and may fail transiently;
// callers decide how to treat errors.
type HolidayCalendar interface {
	HolidayName(ctx context.Context, date TimePoint) (string, error)
}

// NoHolidays is a calendar with no holidays at all.
type NoHolidays struct{}

func (NoHolidays) HolidayName(context.Context, TimePoint) (string, error) { return "", nil }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }
