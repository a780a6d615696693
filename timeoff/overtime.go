/*
overtime.go - Converting rest-day work into leave hours

PURPOSE:
  Work performed on a rest day earns leave instead of pay. How much, and
  of which kind, depends on the class of the day worked:

    weekday            nothing
    saturday           substitute   = regular*1.0 + overtime*1.5
    sunday_or_holiday  compensatory = regular*1.5 + overtime*2.0

  where regular = min(hours, 8) and overtime = max(0, hours-8). Results
  are rounded half-up to 0.1 hour.

CLASSIFICATION:
  Sunday is always sunday_or_holiday. Any other day the holiday calendar
  names is promoted to sunday_or_holiday, Saturdays included. Calendar
  errors and timeouts are logged and treated as "not a holiday"; they are
  never returned to the caller.

SEE ALSO:
  - generic/time.go: HolidayCalendar interface
  - ledger.go: Credits the earned hours
*/
package timeoff

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// DAY CLASSIFICATION
// =============================================================================

type DayClass string

const (
	DayWeekday         DayClass = "weekday"
	DaySaturday        DayClass = "saturday"
	DaySundayOrHoliday DayClass = "sunday_or_holiday"
)

// DefaultHolidayTimeout bounds a single holiday lookup.
const DefaultHolidayTimeout = 2 * time.Second

// Classifier maps dates to a DayClass using a holiday calendar.
// Concurrent lookups for the same date share one upstream call.
type Classifier struct {
	calendar generic.HolidayCalendar
	timeout  time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

func NewClassifier(calendar generic.HolidayCalendar, timeout time.Duration, logger *zap.Logger) *Classifier {
	if calendar == nil {
		calendar = generic.NoHolidays{}
	}
	if timeout <= 0 {
		timeout = DefaultHolidayTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{calendar: calendar, timeout: timeout, logger: logger.Named("classifier")}
}

// Classify returns the class of date and the holiday name, if any.
func (c *Classifier) Classify(ctx context.Context, date generic.TimePoint) (DayClass, string) {
	if date.Weekday() == time.Sunday {
		return DaySundayOrHoliday, ""
	}

	name, err := c.lookup(ctx, date)
	if err != nil {
		c.logger.Warn("holiday lookup failed, treating date as a regular day",
			zap.String("date", date.String()), zap.Error(err))
		name = ""
	}

	switch {
	case name != "":
		return DaySundayOrHoliday, name
	case date.Weekday() == time.Saturday:
		return DaySaturday, ""
	default:
		return DayWeekday, ""
	}
}

func (c *Classifier) lookup(ctx context.Context, date generic.TimePoint) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ch := c.group.DoChan(date.String(), func() (any, error) {
		// the shared call must not die with whichever caller started it
		callCtx, callCancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer callCancel()
		return c.calendar.HolidayName(callCtx, date)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("%w: %v", generic.ErrUpstreamUnavailable, res.Err)
		}
		name, _ := res.Val.(string)
		return name, nil
	case <-waitCtx.Done():
		return "", fmt.Errorf("%w: %v", generic.ErrUpstreamUnavailable, waitCtx.Err())
	}
}

// =============================================================================
// CONVERSION
// =============================================================================

// Earned is the leave produced by one day of work.
type Earned struct {
	Class        DayClass
	Substitute   decimal.Decimal
	Compensatory decimal.Decimal
}

// Category returns the hour category credited, or "" when nothing is earned.
func (e Earned) Category() Category {
	switch {
	case e.Substitute.IsPositive():
		return CategorySubstitute
	case e.Compensatory.IsPositive():
		return CategoryCompensatory
	}
	return ""
}

// Hours returns the credited amount.
func (e Earned) Hours() decimal.Decimal {
	return e.Substitute.Add(e.Compensatory)
}

var (
	regularDayHours = decimal.NewFromInt(8)
	rateOne         = decimal.NewFromInt(1)
	rateOneHalf     = decimal.RequireFromString("1.5")
	rateDouble      = decimal.NewFromInt(2)
)

// ConvertOvertime applies the multiplier schedule for class to hours worked.
func ConvertOvertime(class DayClass, hours decimal.Decimal) (Earned, error) {
	if hours.IsNegative() {
		return Earned{}, &generic.InvalidAmountError{
			Amount: generic.NewAmountFromDecimal(hours, generic.UnitHours),
			Reason: "hours worked cannot be negative",
		}
	}

	regular := decimal.Min(hours, regularDayHours)
	overtime := decimal.Max(decimal.Zero, hours.Sub(regularDayHours))

	out := Earned{Class: class, Substitute: decimal.Zero, Compensatory: decimal.Zero}
	switch class {
	case DaySaturday:
		out.Substitute = regular.Mul(rateOne).Add(overtime.Mul(rateOneHalf)).Round(1)
	case DaySundayOrHoliday:
		out.Compensatory = regular.Mul(rateOneHalf).Add(overtime.Mul(rateDouble)).Round(1)
	case DayWeekday:
	default:
		return Earned{}, fmt.Errorf("unknown day class %q", class)
	}
	return out, nil
}

// =============================================================================
// OVERTIME SERVICE - Classify, convert, credit
// =============================================================================

// OvertimeRecord is one day of rest-day work reported for an employee.
type OvertimeRecord struct {
	EmployeeID generic.EntityID
	WorkDate   generic.TimePoint
	Hours      float64
}

// OvertimeCredit is what a record earned and whether it reached the ledger.
type OvertimeCredit struct {
	Earned
	HolidayName string
	Credited    bool
}

type OvertimeService struct {
	classifier *Classifier
	ledger     *LeaveLedger
	logger     *zap.Logger
}

func NewOvertimeService(classifier *Classifier, ledger *LeaveLedger, logger *zap.Logger) *OvertimeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OvertimeService{classifier: classifier, ledger: ledger, logger: logger.Named("overtime")}
}

// Credit converts one overtime record and credits the earned hours. Each
// (employee, work date) pair can be credited once; a repeat returns
// generic.ErrDuplicateIdempotencyKey and leaves the balance untouched.
// Hours worked must lie in [0, 24].
func (s *OvertimeService) Credit(ctx context.Context, rec OvertimeRecord) (OvertimeCredit, error) {
	worked, err := generic.ParseAmount(rec.Hours, generic.UnitHours)
	if err != nil {
		return OvertimeCredit{}, err
	}
	if worked.Value.GreaterThan(maxHoursPerRequest) {
		return OvertimeCredit{}, &generic.InvalidAmountError{Amount: worked,
			Reason: fmt.Sprintf("a day has at most %d working hours", MaxHoursPerRequest)}
	}

	class, holiday := s.classifier.Classify(ctx, rec.WorkDate)
	earned, err := ConvertOvertime(class, worked.Value)
	if err != nil {
		return OvertimeCredit{}, err
	}
	out := OvertimeCredit{Earned: earned, HolidayName: holiday}

	cat := earned.Category()
	if cat == "" {
		return out, nil
	}
	err = s.ledger.Credit(ctx, rec.EmployeeID, cat,
		generic.NewAmountFromDecimal(earned.Hours(), generic.UnitHours),
		Source{
			Type:           generic.TxGrant,
			Reason:         fmt.Sprintf("%s hours worked on %s", worked.Value.String(), class),
			IdempotencyKey: fmt.Sprintf("overtime-%s-%s", rec.EmployeeID, rec.WorkDate),
			EffectiveAt:    rec.WorkDate,
			Metadata: map[string]string{
				"work_date":    rec.WorkDate.String(),
				"day_class":    string(class),
				"hours_worked": worked.Value.String(),
			},
		})
	if err != nil {
		return OvertimeCredit{}, err
	}
	out.Credited = true
	s.logger.Info("overtime credited",
		zap.String("employee_id", string(rec.EmployeeID)),
		zap.String("work_date", rec.WorkDate.String()),
		zap.String("category", string(cat)),
		zap.String("hours", earned.Hours().String()))
	return out, nil
}
