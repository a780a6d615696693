// Package timeoff implements the leave accounting rules: tenure accrual,
// overtime conversion, the per-employee entitlement ledger, the request
// lifecycle, promotion targets and the statutory entitlement table.
package timeoff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEAVE CATEGORY - Closed set of leave kinds
// =============================================================================

// Category is the concrete resource type for the leave domain.
// Implements generic.ResourceType.
type Category string

const (
	CategoryAnnual       Category = "annual"
	CategorySick         Category = "sick"
	CategorySubstitute   Category = "substitute"
	CategoryCompensatory Category = "compensatory"
	CategoryFamilyEvent  Category = "family_event"
	CategoryCivilDuty    Category = "civil_duty"
)

const Domain = "leave"

func (c Category) ResourceID() string     { return string(c) }
func (c Category) ResourceDomain() string { return Domain }

var _ generic.ResourceType = Category("")

// Kind says how a category is accounted.
type Kind int

const (
	KindDays  Kind = iota // entitlement/used pair, counted in days
	KindHours             // single running balance, counted in hours
	KindLegal             // statutory table, no ledger balance
)

var categoryKinds = map[Category]Kind{
	CategoryAnnual:       KindDays,
	CategorySick:         KindDays,
	CategorySubstitute:   KindHours,
	CategoryCompensatory: KindHours,
	CategoryFamilyEvent:  KindLegal,
	CategoryCivilDuty:    KindLegal,
}

func init() {
	for c := range categoryKinds {
		generic.RegisterResource(c)
	}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryKinds[c]; !ok {
		return "", fmt.Errorf("%w: %q", generic.ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) Kind() Kind { return categoryKinds[c] }

// Unit is the unit amounts of this category are expressed in.
func (c Category) Unit() generic.Unit {
	if c.Kind() == KindHours {
		return generic.UnitHours
	}
	return generic.UnitDays
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the slice of the HR record the engine reads.
type Employee struct {
	ID              generic.EntityID
	Name            string
	HireDate        *generic.TimePoint
	TerminationDate *generic.TimePoint
}

// Active reports whether the employee takes part in accrual runs and scans.
func (e Employee) Active() bool {
	return e.TerminationDate == nil
}

// =============================================================================
// LEDGER RECORD - One per employee
// =============================================================================

// DayBalance is an entitlement/used pair for day-based categories.
// Used may carry half days.
type DayBalance struct {
	Entitlement int
	Used        decimal.Decimal
}

func (b DayBalance) Available() decimal.Decimal {
	return decimal.NewFromInt(int64(b.Entitlement)).Sub(b.Used)
}

// HourBalance is a running total for earned-hours categories.
type HourBalance struct {
	Hours decimal.Decimal
}

// DefaultSickDays is the yearly sick entitlement granted on onboarding
// and restored by every accrual run.
const DefaultSickDays = 60

// LedgerRecord holds every balance of one employee.
type LedgerRecord struct {
	EmployeeID   generic.EntityID
	Annual       DayBalance
	Sick         DayBalance
	Substitute   HourBalance
	Compensatory HourBalance
	Archived     bool
	UpdatedAt    time.Time

	// LegacyHours is an unreconciled hour-balance blob carried over from
	// the previous system. MigrateLegacyBalances folds it into Substitute
	// and Compensatory and clears it.
	LegacyHours map[string]float64
}

// NewLedgerRecord returns the record created on onboarding.
func NewLedgerRecord(id generic.EntityID) LedgerRecord {
	return LedgerRecord{
		EmployeeID:   id,
		Annual:       DayBalance{Used: decimal.Zero},
		Sick:         DayBalance{Entitlement: DefaultSickDays, Used: decimal.Zero},
		Substitute:   HourBalance{Hours: decimal.Zero},
		Compensatory: HourBalance{Hours: decimal.Zero},
	}
}

func (r *LedgerRecord) days(c Category) *DayBalance {
	switch c {
	case CategoryAnnual:
		return &r.Annual
	case CategorySick:
		return &r.Sick
	}
	return nil
}

func (r *LedgerRecord) hours(c Category) *HourBalance {
	switch c {
	case CategorySubstitute:
		return &r.Substitute
	case CategoryCompensatory:
		return &r.Compensatory
	}
	return nil
}

// Balance returns the available-balance view of one ledger category.
func (r LedgerRecord) Balance(c Category) (generic.Balance, error) {
	b := generic.Balance{EntityID: r.EmployeeID, ResourceType: c}
	switch c.Kind() {
	case KindDays:
		d := r.days(c)
		b.Entitlement = generic.NewAmountFromInt(d.Entitlement, generic.UnitDays)
		b.Consumed = generic.NewAmountFromDecimal(d.Used, generic.UnitDays)
	case KindHours:
		h := r.hours(c)
		b.Entitlement = generic.NewAmountFromDecimal(h.Hours, generic.UnitHours)
		b.Consumed = generic.NewAmount(0, generic.UnitHours)
	default:
		return generic.Balance{}, fmt.Errorf("%w: %s has no ledger balance", generic.ErrInvalidCategory, c)
	}
	return b, nil
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// LeaveRequest is a single application for leave.
type LeaveRequest struct {
	ID          string
	EmployeeID  generic.EntityID
	Category    Category
	SubType     LegalSubType // only for legal categories
	Amount      generic.Amount
	Period      generic.Period
	Reason      string
	Status      RequestStatus
	SubmittedAt time.Time
	ProcessedAt *time.Time
	ProcessedBy string
	AdminNotes  string
}

// =============================================================================
// ACTOR - Already-authenticated caller
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
