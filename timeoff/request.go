package timeoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// REQUEST SERVICE - Handles request lifecycle with transactional guarantees
// =============================================================================
//
//   pending ──approve──► approved
//      │        │
//      │        └─(balance drifted)─► rejected
//      └──reject──────────────────► rejected
//
// Balances are checked twice: optimistically at submission, so a request
// that cannot be honoured is never stored, and authoritatively at approval,
// under the employee lock, because balances move in between.

// CalendarPublisher pushes approved leave to an external calendar.
type CalendarPublisher interface {
	PublishLeave(ctx context.Context, req LeaveRequest) error
}

// CalendarSync is the outcome of publishing an approved request.
type CalendarSync string

const (
	CalendarPublished CalendarSync = "published"
	CalendarFailed    CalendarSync = "failed"
	CalendarSkipped   CalendarSync = "skipped"
)

// Decision is the result of an admin action on a request.
type Decision struct {
	Request      LeaveRequest
	CalendarSync CalendarSync
}

type RequestService struct {
	store     Store
	ledger    *LeaveLedger
	publisher CalendarPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewRequestService(store Store, ledger *LeaveLedger, publisher CalendarPublisher, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		store:     store,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger.Named("requests"),
		now:       time.Now,
	}
}

// WithClock replaces the service's time source.
func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	s.now = now
	return s
}

// =============================================================================
// SUBMIT
// =============================================================================

// SubmitInput is an employee's application for leave. Amount is in the
// category's unit: hours for substitute/compensatory, days otherwise.
type SubmitInput struct {
	EmployeeID generic.EntityID
	Category   Category
	SubType    LegalSubType
	Amount     float64
	Start      generic.TimePoint
	End        generic.TimePoint
	Reason     string
}

// Submit validates and stores a pending request. Requests that fail any
// check, the balance check included, are returned as errors and nothing
// is persisted.
func (s *RequestService) Submit(ctx context.Context, in SubmitInput) (LeaveRequest, error) {
	cat, err := ParseCategory(string(in.Category))
	if err != nil {
		return LeaveRequest{}, err
	}
	amount, err := generic.ParseAmount(in.Amount, cat.Unit())
	if err != nil {
		return LeaveRequest{}, err
	}
	period, err := generic.NewPeriod(in.Start, in.End)
	if err != nil {
		return LeaveRequest{}, err
	}

	if cat.Kind() == KindLegal {
		if _, err := s.store.GetEmployee(ctx, in.EmployeeID); err != nil {
			return LeaveRequest{}, err
		}
		if err := validateLegal(cat, in.SubType, amount); err != nil {
			return LeaveRequest{}, err
		}
	} else {
		if in.SubType != "" {
			return LeaveRequest{}, fmt.Errorf("%w: %s takes no sub-type", generic.ErrInvalidCategory, cat)
		}
		avail, err := s.ledger.CheckAvailability(ctx, in.EmployeeID, cat, amount)
		if err != nil {
			return LeaveRequest{}, err
		}
		if !avail.CanApply {
			return LeaveRequest{}, &generic.InsufficientBalanceError{
				EntityID:     in.EmployeeID,
				ResourceType: cat,
				Available:    avail.Available,
				Requested:    amount,
			}
		}
	}

	req := LeaveRequest{
		ID:          uuid.NewString(),
		EmployeeID:  in.EmployeeID,
		Category:    cat,
		SubType:     in.SubType,
		Amount:      amount,
		Period:      period,
		Reason:      in.Reason,
		Status:      StatusPending,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return LeaveRequest{}, fmt.Errorf("saving request: %w", err)
	}
	s.logger.Info("request submitted",
		zap.String("request_id", req.ID),
		zap.String("employee_id", string(req.EmployeeID)),
		zap.String("category", string(cat)),
		zap.String("amount", amount.String()))
	return req, nil
}

func validateLegal(cat Category, sub LegalSubType, amount generic.Amount) error {
	ent, ok := LookupLegal(cat, sub)
	if !ok {
		return fmt.Errorf("%w: no statutory entitlement for %s/%s, use a regular leave category",
			generic.ErrInvalidCategory, cat, sub)
	}
	if !amount.IsPositive() {
		return &generic.InvalidAmountError{Amount: amount, Reason: "amount must be greater than zero"}
	}
	if !ent.ActualDuration && amount.Value.GreaterThan(decimal.NewFromInt(int64(ent.Days))) {
		return &generic.InvalidAmountError{Amount: amount,
			Reason: fmt.Sprintf("%s allows at most %d days", sub, ent.Days)}
	}
	return nil
}

// =============================================================================
// APPROVE / REJECT
// =============================================================================

// Approve re-checks the balance and either debits it and approves, or,
// when the balance no longer covers the request, rejects with a note.
// Publishing to the calendar happens after commit and never fails the call.
func (s *RequestService) Approve(ctx context.Context, actor Actor, requestID, notes string) (Decision, error) {
	if !actor.IsAdmin() {
		return Decision{}, fmt.Errorf("%w: only admins can approve requests", generic.ErrForbidden)
	}
	pending, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return Decision{}, err
	}

	var out LeaveRequest
	err = s.ledger.Update(ctx, pending.EmployeeID, func(tx Store, rec *LedgerRecord) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status.Terminal() {
			return &generic.InvalidStateError{RequestID: req.ID, Current: string(req.Status), Attempted: "approve"}
		}

		now := s.now().UTC()
		req.ProcessedAt = &now
		req.ProcessedBy = actor.ID
		req.AdminNotes = notes
		req.Status = StatusApproved

		if req.Category.Kind() != KindLegal {
			err := s.ledger.debit(ctx, tx, rec, req.Category, req.Amount, Source{
				ReferenceID:    req.ID,
				Reason:         req.Reason,
				IdempotencyKey: "approve-" + req.ID,
				EffectiveAt:    req.Period.Start,
				Actor:          actor.ID,
			})
			var short *generic.InsufficientBalanceError
			switch {
			case errors.As(err, &short):
				req.Status = StatusRejected
				req.AdminNotes = joinNotes(notes, "rejected at approval: "+short.Error())
			case err != nil:
				return err
			}
		}

		out = req
		return tx.SaveRequest(ctx, req)
	})
	if err != nil {
		return Decision{}, err
	}

	s.logger.Info("request processed",
		zap.String("request_id", out.ID),
		zap.String("status", string(out.Status)),
		zap.String("admin_id", actor.ID))

	decision := Decision{Request: out, CalendarSync: CalendarSkipped}
	if out.Status == StatusApproved {
		decision.CalendarSync = s.publish(ctx, out)
	}
	return decision, nil
}

// Reject closes a pending request without touching the ledger.
func (s *RequestService) Reject(ctx context.Context, actor Actor, requestID, notes string) (Decision, error) {
	if !actor.IsAdmin() {
		return Decision{}, fmt.Errorf("%w: only admins can reject requests", generic.ErrForbidden)
	}
	var out LeaveRequest
	err := s.store.WithTx(ctx, func(tx Store) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status.Terminal() {
			return &generic.InvalidStateError{RequestID: req.ID, Current: string(req.Status), Attempted: "reject"}
		}
		now := s.now().UTC()
		req.Status = StatusRejected
		req.ProcessedAt = &now
		req.ProcessedBy = actor.ID
		req.AdminNotes = notes
		out = req
		return tx.SaveRequest(ctx, req)
	})
	if err != nil {
		return Decision{}, err
	}
	s.logger.Info("request rejected", zap.String("request_id", out.ID), zap.String("admin_id", actor.ID))
	return Decision{Request: out, CalendarSync: CalendarSkipped}, nil
}

func (s *RequestService) publish(ctx context.Context, req LeaveRequest) CalendarSync {
	if s.publisher == nil {
		return CalendarSkipped
	}
	if err := s.publisher.PublishLeave(ctx, req); err != nil {
		s.logger.Warn("calendar publish failed", zap.String("request_id", req.ID), zap.Error(err))
		return CalendarFailed
	}
	return CalendarPublished
}

func joinNotes(admin, system string) string {
	if admin == "" {
		return system
	}
	return admin + "; " + system
}

// =============================================================================
// LOGGING PUBLISHER
// =============================================================================

// LogPublisher is a CalendarPublisher that only logs. Used when no calendar
// integration is configured.
type LogPublisher struct {
	Logger *zap.Logger
}

func (p LogPublisher) PublishLeave(_ context.Context, req LeaveRequest) error {
	if p.Logger != nil {
		p.Logger.Info("leave published",
			zap.String("request_id", req.ID),
			zap.String("employee_id", string(req.EmployeeID)),
			zap.String("period", req.Period.String()))
	}
	return nil
}
