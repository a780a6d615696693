/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes of the HTTP surface, kept apart from the domain types so the
  engine can change without breaking clients. Request bodies carry
  validator/v10 tags; handlers run them through one shared validator.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:     EmployeeDTO, CreateEmployeeRequest, TerminateRequest
  Ledger:       LedgerDTO, DayBalanceDTO, AvailabilityDTO
  Requests:     SubmitLeaveRequest, LeaveRequestDTO, DecisionRequest, DecisionResponse
  Overtime:     OvertimeRequest, OvertimeCreditDTO
  Transactions: TransactionDTO, AuditCheckDTO
  Admin:        AccrualRunRequest, AccrualSummaryDTO, PromotionTargetDTO

AMOUNTS:
  Amounts travel as JSON numbers rounded to one decimal place. Hour
  categories also carry their day equivalent for display.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	HireDate        *string `json:"hire_date,omitempty"`
	TerminationDate *string `json:"termination_date,omitempty"`
	Active          bool    `json:"active"`
}

type CreateEmployeeRequest struct {
	ID       string `json:"id" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=200"`
	HireDate string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
}

type TerminateRequest struct {
	TerminationDate string `json:"termination_date" validate:"required,datetime=2006-01-02"`
}

// =============================================================================
// LEDGER
// =============================================================================

type DayBalanceDTO struct {
	Entitlement int     `json:"entitlement"`
	Used        float64 `json:"used"`
	Available   float64 `json:"available"`
}

type HourBalanceDTO struct {
	Hours   float64 `json:"hours"`
	Display string  `json:"display"`
}

type LedgerDTO struct {
	EmployeeID   string         `json:"employee_id"`
	Annual       DayBalanceDTO  `json:"annual"`
	Sick         DayBalanceDTO  `json:"sick"`
	Substitute   HourBalanceDTO `json:"substitute"`
	Compensatory HourBalanceDTO `json:"compensatory"`
	Archived     bool           `json:"archived"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type AvailabilityDTO struct {
	Category  string  `json:"category"`
	CanApply  bool    `json:"can_apply"`
	Available float64 `json:"available"`
	Requested float64 `json:"requested"`
	Unit      string  `json:"unit"`
	Reason    string  `json:"reason,omitempty"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type SubmitLeaveRequest struct {
	Category  string  `json:"category" validate:"required"`
	SubType   string  `json:"sub_type"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string  `json:"reason" validate:"max=500"`
}

type LeaveRequestDTO struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	Category     string     `json:"category"`
	SubType      string     `json:"sub_type,omitempty"`
	Amount       float64    `json:"amount"`
	Unit         string     `json:"unit"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	CalendarDays int        `json:"calendar_days"`
	Reason       string     `json:"reason,omitempty"`
	Status       string     `json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ProcessedBy  string     `json:"processed_by,omitempty"`
	AdminNotes   string     `json:"admin_notes,omitempty"`
}

type DecisionRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type DecisionResponse struct {
	Request      LeaveRequestDTO `json:"request"`
	CalendarSync string          `json:"calendar_sync"`
}

// =============================================================================
// OVERTIME
// =============================================================================

type OvertimeRequest struct {
	WorkDate string  `json:"work_date" validate:"required,datetime=2006-01-02"`
	Hours    float64 `json:"hours" validate:"gte=0,lte=24"`
}

type OvertimeCreditDTO struct {
	DayClass     string  `json:"day_class"`
	HolidayName  string  `json:"holiday_name,omitempty"`
	Category     string  `json:"category,omitempty"`
	Substitute   float64 `json:"substitute_hours"`
	Compensatory float64 `json:"compensatory_hours"`
	Credited     bool    `json:"credited"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type TransactionDTO struct {
	ID             string            `json:"id"`
	Category       string            `json:"category"`
	Type           string            `json:"type"`
	Delta          float64           `json:"delta"`
	Unit           string            `json:"unit"`
	EffectiveAt    string            `json:"effective_at"`
	ReferenceID    string            `json:"reference_id,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	CreatedBy      string            `json:"created_by,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type AuditCheckDTO struct {
	Category  string  `json:"category"`
	Available float64 `json:"available"`
	AuditNet  float64 `json:"audit_net"`
	Unit      string  `json:"unit"`
	Balanced  bool    `json:"balanced"`
}

// =============================================================================
// ADMIN
// =============================================================================

type AccrualRunRequest struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

type AccrualSummaryDTO struct {
	AsOf      string            `json:"as_of"`
	Processed int               `json:"processed"`
	Skipped   int               `json:"skipped"`
	Failed    map[string]string `json:"failed,omitempty"`
}

type PromotionTargetDTO struct {
	EmployeeID     string  `json:"employee_id"`
	Name           string  `json:"name"`
	WorkingMonths  int     `json:"working_months"`
	RemainingDays  float64 `json:"remaining_days"`
	AnnualDays     int     `json:"annual_days"`
	UsedAnnualDays float64 `json:"used_annual_days"`
}

// ErrorResponse is the body of every non-2xx reply. Available is set when
// a request was refused for lack of balance.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Details   string   `json:"details,omitempty"`
	Available *float64 `json:"available,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func round1(d decimal.Decimal) float64 {
	f, _ := d.Round(1).Float64()
	return f
}

func datePtr(tp *generic.TimePoint) *string {
	if tp == nil {
		return nil
	}
	s := tp.String()
	return &s
}

func toEmployeeDTO(e timeoff.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:              string(e.ID),
		Name:            e.Name,
		HireDate:        datePtr(e.HireDate),
		TerminationDate: datePtr(e.TerminationDate),
		Active:          e.Active(),
	}
}

func toDayBalanceDTO(b timeoff.DayBalance) DayBalanceDTO {
	return DayBalanceDTO{Entitlement: b.Entitlement, Used: round1(b.Used), Available: round1(b.Available())}
}

func toHourBalanceDTO(b timeoff.HourBalance) HourBalanceDTO {
	return HourBalanceDTO{Hours: round1(b.Hours), Display: timeoff.FormatDays(b.Hours)}
}

func toLedgerDTO(rec timeoff.LedgerRecord) LedgerDTO {
	return LedgerDTO{
		EmployeeID:   string(rec.EmployeeID),
		Annual:       toDayBalanceDTO(rec.Annual),
		Sick:         toDayBalanceDTO(rec.Sick),
		Substitute:   toHourBalanceDTO(rec.Substitute),
		Compensatory: toHourBalanceDTO(rec.Compensatory),
		Archived:     rec.Archived,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func toAvailabilityDTO(a timeoff.Availability) AvailabilityDTO {
	return AvailabilityDTO{
		Category:  string(a.Category),
		CanApply:  a.CanApply,
		Available: round1(a.Available.Value),
		Requested: round1(a.Requested.Value),
		Unit:      string(a.Category.Unit()),
		Reason:    a.Reason,
	}
}

func toLeaveRequestDTO(r timeoff.LeaveRequest) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:           r.ID,
		EmployeeID:   string(r.EmployeeID),
		Category:     string(r.Category),
		SubType:      string(r.SubType),
		Amount:       round1(r.Amount.Value),
		Unit:         string(r.Amount.Unit),
		StartDate:    r.Period.Start.String(),
		EndDate:      r.Period.End.String(),
		CalendarDays: r.Period.Days(),
		Reason:       r.Reason,
		Status:       string(r.Status),
		SubmittedAt:  r.SubmittedAt,
		ProcessedAt:  r.ProcessedAt,
		ProcessedBy:  r.ProcessedBy,
		AdminNotes:   r.AdminNotes,
	}
}

func toLeaveRequestDTOs(rs []timeoff.LeaveRequest) []LeaveRequestDTO {
	out := make([]LeaveRequestDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toLeaveRequestDTO(r))
	}
	return out
}

func toOvertimeCreditDTO(c timeoff.OvertimeCredit) OvertimeCreditDTO {
	return OvertimeCreditDTO{
		DayClass:     string(c.Class),
		HolidayName:  c.HolidayName,
		Category:     string(c.Category()),
		Substitute:   round1(c.Substitute),
		Compensatory: round1(c.Compensatory),
		Credited:     c.Credited,
	}
}

func toTransactionDTO(tx generic.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:             string(tx.ID),
		Type:           string(tx.Type),
		Delta:          round1(tx.Delta.Value),
		Unit:           string(tx.Delta.Unit),
		EffectiveAt:    tx.EffectiveAt.String(),
		ReferenceID:    tx.ReferenceID,
		Reason:         tx.Reason,
		IdempotencyKey: tx.IdempotencyKey,
		CreatedBy:      tx.CreatedBy,
		Metadata:       tx.Metadata,
		CreatedAt:      tx.CreatedAt.Time,
	}
	if tx.ResourceType != nil {
		dto.Category = tx.ResourceType.ResourceID()
	}
	return dto
}

func toAuditCheckDTO(c timeoff.AuditCheck) AuditCheckDTO {
	return AuditCheckDTO{
		Category:  string(c.Category),
		Available: round1(c.Available.Value),
		AuditNet:  round1(c.AuditNet.Value),
		Unit:      string(c.Category.Unit()),
		Balanced:  c.Balanced(),
	}
}

func toAccrualSummaryDTO(s timeoff.AccrualSummary) AccrualSummaryDTO {
	dto := AccrualSummaryDTO{AsOf: s.AsOf.String(), Processed: s.Processed, Skipped: s.Skipped}
	if len(s.Failed) > 0 {
		dto.Failed = make(map[string]string, len(s.Failed))
		for id, msg := range s.Failed {
			dto.Failed[string(id)] = msg
		}
	}
	return dto
}

func toPromotionTargetDTO(p timeoff.PromotionTarget) PromotionTargetDTO {
	return PromotionTargetDTO{
		EmployeeID:     string(p.EmployeeID),
		Name:           p.Name,
		WorkingMonths:  p.WorkingMonths,
		RemainingDays:  round1(p.RemainingDays),
		AnnualDays:     p.AnnualDays,
		UsedAnnualDays: round1(p.UsedAnnualDays),
	}
}
