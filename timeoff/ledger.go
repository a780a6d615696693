/*
ledger.go - Per-employee entitlement ledger

PURPOSE:
  The ledger record is the only mutable shared state in the engine. This
  file is the single choke point through which it changes: every credit,
  debit, reset and migration runs through Update, which

    1. takes the employee's lock (different employees never wait on each other)
    2. opens a store transaction
    3. loads the record, creating it lazily for a known employee
    4. runs the mutation and records an audit transaction
    5. saves the record and commits

  Two approvals racing for the same balance therefore see each other's
  effect; the second re-check fails instead of over-drawing.

BALANCE RULES:
  Day categories (annual, sick):     available = entitlement - used
  Hour categories (substitute, comp): available = running balance

  Credits must be positive (whole days for day categories).
  Debits must be positive, at most 24 hours for hour categories, in
  half-day steps for day categories, and no larger than what is available.

AUDIT:
  Each mutation appends one generic.Transaction whose Delta is the change
  in the available amount. Summing the deltas of a category therefore
  reproduces its available balance.

SEE ALSO:
  - request.go: Approval debits through Update
  - accrual_run.go: Yearly resets through Update
  - generic/ledger.go: Audit log
*/
package timeoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
)

// MaxHoursPerRequest caps a single hour-based request or debit.
const MaxHoursPerRequest = 24

var (
	maxHoursPerRequest = decimal.NewFromInt(MaxHoursPerRequest)
	halfDay            = decimal.RequireFromString("0.5")
)

// Source describes where a balance change comes from. It becomes the
// audit transaction written next to the change.
type Source struct {
	Type           generic.TransactionType
	ReferenceID    string
	Reason         string
	IdempotencyKey string
	EffectiveAt    generic.TimePoint
	Actor          string
	Metadata       map[string]string
}

// Availability answers checkAvailability.
type Availability struct {
	Category  Category
	CanApply  bool
	Available generic.Amount
	Requested generic.Amount
	Reason    string
}

type LeaveLedger struct {
	store  Store
	locks  *keyedMutex
	logger *zap.Logger
	now    func() time.Time
}

func NewLeaveLedger(store Store, logger *zap.Logger) *LeaveLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveLedger{
		store:  store,
		locks:  newKeyedMutex(),
		logger: logger.Named("ledger"),
		now:    time.Now,
	}
}

// WithClock replaces the ledger's time source.
func (l *LeaveLedger) WithClock(now func() time.Time) *LeaveLedger {
	l.now = now
	return l
}

// =============================================================================
// UPDATE - The one mutation path
// =============================================================================

// Update runs fn on the employee's ledger record under the employee lock
// and inside a store transaction. fn must only use the Store it is given.
// The record is saved when fn returns nil; any error rolls everything back.
func (l *LeaveLedger) Update(ctx context.Context, id generic.EntityID, fn func(tx Store, rec *LedgerRecord) error) error {
	unlock := l.locks.Lock(id)
	defer unlock()

	return l.store.WithTx(ctx, func(tx Store) error {
		rec, err := l.loadOrCreate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, &rec); err != nil {
			return err
		}
		rec.UpdatedAt = l.now().UTC()
		return tx.SaveLedger(ctx, rec)
	})
}

func (l *LeaveLedger) loadOrCreate(ctx context.Context, tx Store, id generic.EntityID) (LedgerRecord, error) {
	rec, err := tx.LoadLedger(ctx, id)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, generic.ErrEntityNotFound) {
		return LedgerRecord{}, err
	}
	if _, err := tx.GetEmployee(ctx, id); err != nil {
		return LedgerRecord{}, err
	}
	return l.newRecord(ctx, tx, id)
}

// newRecord starts a ledger record and audits its sick leave grant. The
// caller saves the record.
func (l *LeaveLedger) newRecord(ctx context.Context, tx Store, id generic.EntityID) (LedgerRecord, error) {
	rec := NewLedgerRecord(id)
	rec.UpdatedAt = l.now().UTC()
	err := l.audit(ctx, tx, id, CategorySick,
		generic.NewAmountFromInt(DefaultSickDays, generic.UnitDays),
		Source{Type: generic.TxGrant, Reason: "onboarding", IdempotencyKey: "open-" + string(id)})
	return rec, err
}

// =============================================================================
// LIFECYCLE - Onboarding and termination
// =============================================================================

// Open registers the employee and creates their ledger record. Calling it
// again for an onboarded employee updates the employee and keeps the record.
// A terminated employee cannot be opened again.
func (l *LeaveLedger) Open(ctx context.Context, emp Employee) (LedgerRecord, error) {
	if emp.ID == "" {
		return LedgerRecord{}, errors.New("employee id is required")
	}
	unlock := l.locks.Lock(emp.ID)
	defer unlock()

	var out LedgerRecord
	err := l.store.WithTx(ctx, func(tx Store) error {
		existing, err := tx.GetEmployee(ctx, emp.ID)
		switch {
		case err == nil:
			if existing.TerminationDate != nil {
				return fmt.Errorf("%w: employee %s was terminated on %s",
					generic.ErrInvalidState, emp.ID, existing.TerminationDate)
			}
		case !errors.Is(err, generic.ErrEntityNotFound):
			return err
		}
		emp.TerminationDate = nil
		if err := tx.SaveEmployee(ctx, emp); err != nil {
			return err
		}

		rec, err := tx.LoadLedger(ctx, emp.ID)
		if err == nil {
			out = rec
			return nil
		}
		if !errors.Is(err, generic.ErrEntityNotFound) {
			return err
		}
		if rec, err = l.newRecord(ctx, tx, emp.ID); err != nil {
			return err
		}
		out = rec
		return tx.SaveLedger(ctx, rec)
	})
	if err != nil {
		return LedgerRecord{}, err
	}
	l.logger.Info("ledger opened", zap.String("employee_id", string(emp.ID)))
	return out, nil
}

// Archive records the termination date and soft-archives the ledger record.
func (l *LeaveLedger) Archive(ctx context.Context, id generic.EntityID, terminatedOn generic.TimePoint) error {
	return l.Update(ctx, id, func(tx Store, rec *LedgerRecord) error {
		emp, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		emp.TerminationDate = &terminatedOn
		if err := tx.SaveEmployee(ctx, emp); err != nil {
			return err
		}
		rec.Archived = true
		return nil
	})
}

// =============================================================================
// READS
// =============================================================================

// Snapshot returns the employee's ledger record, creating it if needed.
func (l *LeaveLedger) Snapshot(ctx context.Context, id generic.EntityID) (LedgerRecord, error) {
	rec, err := l.store.LoadLedger(ctx, id)
	if errors.Is(err, generic.ErrEntityNotFound) {
		err = l.Update(ctx, id, func(_ Store, r *LedgerRecord) error {
			rec = *r
			return nil
		})
	}
	if err != nil {
		return LedgerRecord{}, err
	}
	return rec, nil
}

// GetBalance returns the available-balance view of one category.
func (l *LeaveLedger) GetBalance(ctx context.Context, id generic.EntityID, cat Category) (generic.Balance, error) {
	rec, err := l.Snapshot(ctx, id)
	if err != nil {
		return generic.Balance{}, err
	}
	return rec.Balance(cat)
}

// CheckAvailability reports whether amount could be taken right now.
// Out-of-policy amounts are returned as errors; a shortage is not an error.
func (l *LeaveLedger) CheckAvailability(ctx context.Context, id generic.EntityID, cat Category, amount generic.Amount) (Availability, error) {
	bal, err := l.GetBalance(ctx, id, cat)
	if err != nil {
		return Availability{}, err
	}
	out := Availability{Category: cat, Available: bal.Available(), Requested: amount}
	err = checkConsume(bal, cat, amount)
	var short *generic.InsufficientBalanceError
	switch {
	case err == nil:
		out.CanApply = true
	case errors.As(err, &short):
		out.Reason = short.Error()
	default:
		return Availability{}, err
	}
	return out, nil
}

// CanConsume is CheckAvailability reduced to a yes/no. Invalid amounts
// answer false.
func (l *LeaveLedger) CanConsume(ctx context.Context, id generic.EntityID, cat Category, amount generic.Amount) (bool, error) {
	a, err := l.CheckAvailability(ctx, id, cat, amount)
	if errors.Is(err, generic.ErrInvalidAmount) {
		return false, nil
	}
	return a.CanApply, err
}

// LedgerCategories are the categories that carry a ledger balance.
var LedgerCategories = []Category{CategoryAnnual, CategorySick, CategorySubstitute, CategoryCompensatory}

// AuditCheck compares a category's available balance with the sum of its
// audit deltas.
type AuditCheck struct {
	Category  Category
	Available generic.Amount
	AuditNet  generic.Amount
}

func (c AuditCheck) Balanced() bool {
	return c.Available.Value.Equal(c.AuditNet.Value)
}

// Reconcile replays the audit log of every ledger category against the
// employee's record.
func (l *LeaveLedger) Reconcile(ctx context.Context, id generic.EntityID) ([]AuditCheck, error) {
	if _, err := l.Snapshot(ctx, id); err != nil {
		return nil, err
	}
	unlock := l.locks.Lock(id)
	defer unlock()

	rec, err := l.store.LoadLedger(ctx, id)
	if err != nil {
		return nil, err
	}
	audit := generic.NewLedger(l.store)
	out := make([]AuditCheck, 0, len(LedgerCategories))
	for _, cat := range LedgerCategories {
		bal, err := rec.Balance(cat)
		if err != nil {
			return nil, err
		}
		net, err := audit.Net(ctx, id, cat, cat.Unit())
		if err != nil {
			return nil, fmt.Errorf("summing %s audit: %w", cat, err)
		}
		out = append(out, AuditCheck{Category: cat, Available: bal.Available(), AuditNet: net})
	}
	return out, nil
}

// =============================================================================
// WRITES
// =============================================================================

// Credit adds to a day entitlement or an hour balance.
func (l *LeaveLedger) Credit(ctx context.Context, id generic.EntityID, cat Category, amount generic.Amount, src Source) error {
	return l.Update(ctx, id, func(tx Store, rec *LedgerRecord) error {
		return l.credit(ctx, tx, rec, cat, amount, src)
	})
}

// Debit consumes from a day entitlement or an hour balance.
func (l *LeaveLedger) Debit(ctx context.Context, id generic.EntityID, cat Category, amount generic.Amount, src Source) error {
	return l.Update(ctx, id, func(tx Store, rec *LedgerRecord) error {
		return l.debit(ctx, tx, rec, cat, amount, src)
	})
}

func (l *LeaveLedger) credit(ctx context.Context, tx Store, rec *LedgerRecord, cat Category, amount generic.Amount, src Source) error {
	if err := validateCredit(cat, amount); err != nil {
		return err
	}
	switch cat.Kind() {
	case KindDays:
		rec.days(cat).Entitlement += int(amount.Value.IntPart())
	case KindHours:
		h := rec.hours(cat)
		h.Hours = h.Hours.Add(amount.Value)
	}
	if src.Type == "" {
		src.Type = generic.TxGrant
	}
	if err := l.audit(ctx, tx, rec.EmployeeID, cat, amount, src); err != nil {
		return err
	}
	l.logger.Debug("credited",
		zap.String("employee_id", string(rec.EmployeeID)),
		zap.String("category", string(cat)),
		zap.String("amount", amount.String()))
	return nil
}

func (l *LeaveLedger) debit(ctx context.Context, tx Store, rec *LedgerRecord, cat Category, amount generic.Amount, src Source) error {
	bal, err := rec.Balance(cat)
	if err != nil {
		return err
	}
	if err := checkConsume(bal, cat, amount); err != nil {
		return err
	}
	switch cat.Kind() {
	case KindDays:
		d := rec.days(cat)
		d.Used = d.Used.Add(amount.Value)
	case KindHours:
		h := rec.hours(cat)
		h.Hours = h.Hours.Sub(amount.Value)
	}
	if src.Type == "" {
		src.Type = generic.TxConsumption
	}
	if err := l.audit(ctx, tx, rec.EmployeeID, cat, amount.Neg(), src); err != nil {
		return err
	}
	l.logger.Debug("debited",
		zap.String("employee_id", string(rec.EmployeeID)),
		zap.String("category", string(cat)),
		zap.String("amount", amount.String()))
	return nil
}

func (l *LeaveLedger) audit(ctx context.Context, tx Store, id generic.EntityID, cat Category, delta generic.Amount, src Source) error {
	log := generic.NewLedger(tx)
	log.Now = l.now
	err := log.Append(ctx, generic.Transaction{
		EntityID:       id,
		ResourceType:   cat,
		EffectiveAt:    src.EffectiveAt,
		Delta:          delta,
		Type:           src.Type,
		ReferenceID:    src.ReferenceID,
		Reason:         src.Reason,
		IdempotencyKey: src.IdempotencyKey,
		Metadata:       src.Metadata,
		CreatedBy:      src.Actor,
	})
	if err != nil {
		return fmt.Errorf("recording %s transaction: %w", src.Type, err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateUnit(cat Category, amount generic.Amount) error {
	if cat.Kind() == KindLegal {
		return fmt.Errorf("%w: %s has no ledger balance", generic.ErrInvalidCategory, cat)
	}
	if amount.Unit != cat.Unit() {
		return &generic.InvalidAmountError{Amount: amount,
			Reason: fmt.Sprintf("%s is counted in %s, got %s", cat, cat.Unit(), amount.Unit)}
	}
	if !amount.IsPositive() {
		return &generic.InvalidAmountError{Amount: amount, Reason: "amount must be greater than zero"}
	}
	return nil
}

func validateCredit(cat Category, amount generic.Amount) error {
	if err := validateUnit(cat, amount); err != nil {
		return err
	}
	if cat.Kind() == KindDays && !amount.Value.IsInteger() {
		return &generic.InvalidAmountError{Amount: amount, Reason: "day credits must be whole days"}
	}
	return nil
}

func validateConsume(cat Category, amount generic.Amount) error {
	if err := validateUnit(cat, amount); err != nil {
		return err
	}
	switch cat.Kind() {
	case KindHours:
		if amount.Value.GreaterThan(maxHoursPerRequest) {
			return &generic.InvalidAmountError{Amount: amount,
				Reason: fmt.Sprintf("hour requests are limited to %d hours", MaxHoursPerRequest)}
		}
	case KindDays:
		if !amount.Value.Mod(halfDay).IsZero() {
			return &generic.InvalidAmountError{Amount: amount, Reason: "day requests must be in half-day steps"}
		}
	}
	return nil
}

func checkConsume(bal generic.Balance, cat Category, amount generic.Amount) error {
	if err := validateConsume(cat, amount); err != nil {
		return err
	}
	if !bal.CanConsume(amount) {
		return bal.Shortage(amount)
	}
	return nil
}
