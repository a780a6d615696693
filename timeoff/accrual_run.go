/*
accrual_run.go - Bulk jobs over all employees

PURPOSE:
  The engine has no clock of its own. An external caller (cron, the
  api.AccrualScheduler, an admin endpoint) triggers these jobs; each one
  fans out over active employees with a bounded worker pool. Employees are
  independent, so one failure is counted and the run continues.

JOBS:
  RunAnnualAccrual(asOf)
    For every active employee:
      annual := AnnualEntitlement(hire, asOf), used annual := 0
      sick   := 60,                            used sick   := 0
    Idempotent per (employee, asOf): the audit key accrual-<id>-<date>
    marks the employee done, so a rerun skips them. Employees hired after
    asOf are skipped as well.

  PromotionTargets(today)
    Lists active employees flagged by IsPromotionTarget.

SEE ALSO:
  - accrual.go: The tenure formula
  - promotion.go: The promotion rule
  - api/scheduler.go: Yearly trigger
*/
package timeoff

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/leave-engine/generic"
)

// DefaultWorkers bounds concurrent per-employee work in bulk jobs.
const DefaultWorkers = 8

type AccrualRunner struct {
	store   Store
	ledger  *LeaveLedger
	workers int
	logger  *zap.Logger
}

func NewAccrualRunner(store Store, ledger *LeaveLedger, workers int, logger *zap.Logger) *AccrualRunner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccrualRunner{store: store, ledger: ledger, workers: workers, logger: logger.Named("accrual")}
}

// AccrualSummary reports what a run did.
type AccrualSummary struct {
	AsOf      generic.TimePoint
	Processed int
	Skipped   int
	Failed    map[generic.EntityID]string
}

// RunAnnualAccrual resets annual and sick entitlements for a new accrual
// period. Only context cancellation aborts the run.
func (r *AccrualRunner) RunAnnualAccrual(ctx context.Context, asOf generic.TimePoint) (AccrualSummary, error) {
	employees, err := r.store.ListEmployees(ctx)
	if err != nil {
		return AccrualSummary{}, fmt.Errorf("listing employees: %w", err)
	}

	summary := AccrualSummary{AsOf: asOf, Failed: map[generic.EntityID]string{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, emp := range employees {
		if !emp.Active() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			applied, err := r.accrue(gctx, emp, asOf)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed[emp.ID] = err.Error()
				r.logger.Error("accrual failed", zap.String("employee_id", string(emp.ID)), zap.Error(err))
			case applied:
				summary.Processed++
			default:
				summary.Skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	r.logger.Info("annual accrual finished",
		zap.String("as_of", asOf.String()),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)))
	return summary, nil
}

// AccrueEmployee applies the accrual of asOf to a single employee. It
// reports false when the employee was already accrued for asOf, was hired
// after it, or is no longer active.
func (r *AccrualRunner) AccrueEmployee(ctx context.Context, id generic.EntityID, asOf generic.TimePoint) (bool, error) {
	emp, err := r.store.GetEmployee(ctx, id)
	if err != nil {
		return false, err
	}
	if !emp.Active() {
		return false, nil
	}
	return r.accrue(ctx, emp, asOf)
}

func (r *AccrualRunner) accrue(ctx context.Context, emp Employee, asOf generic.TimePoint) (bool, error) {
	if emp.HireDate != nil && emp.HireDate.After(asOf) {
		return false, nil
	}
	key := fmt.Sprintf("accrual-%s-%s", emp.ID, asOf)
	applied := false

	err := r.ledger.Update(ctx, emp.ID, func(tx Store, rec *LedgerRecord) error {
		done, err := tx.Exists(ctx, key)
		if err != nil || done {
			return err
		}

		annualBefore := rec.Annual.Available()
		sickBefore := rec.Sick.Available()
		rec.Annual = DayBalance{Entitlement: AnnualEntitlement(emp.HireDate, asOf), Used: decimal.Zero}
		rec.Sick = DayBalance{Entitlement: DefaultSickDays, Used: decimal.Zero}

		if err := r.ledger.audit(ctx, tx, emp.ID, CategoryAnnual,
			generic.NewAmountFromDecimal(rec.Annual.Available().Sub(annualBefore), generic.UnitDays),
			Source{Type: generic.TxReconciliation, Reason: "annual accrual", IdempotencyKey: key, EffectiveAt: asOf,
				Metadata: map[string]string{"entitlement": fmt.Sprint(rec.Annual.Entitlement)}},
		); err != nil {
			return err
		}
		if err := r.ledger.audit(ctx, tx, emp.ID, CategorySick,
			generic.NewAmountFromDecimal(rec.Sick.Available().Sub(sickBefore), generic.UnitDays),
			Source{Type: generic.TxReconciliation, Reason: "sick leave reset", IdempotencyKey: key + "-sick", EffectiveAt: asOf},
		); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// PromotionTargets lists active employees who must be prompted to use
// their remaining annual leave, ordered by employee ID.
func (r *AccrualRunner) PromotionTargets(ctx context.Context, today generic.TimePoint) ([]PromotionTarget, error) {
	employees, err := r.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}

	var (
		mu      sync.Mutex
		targets []PromotionTarget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, emp := range employees {
		if !emp.Active() || emp.HireDate == nil {
			continue
		}
		g.Go(func() error {
			rec, err := r.store.LoadLedger(gctx, emp.ID)
			if generic.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading ledger for %s: %w", emp.ID, err)
			}
			if !IsPromotionTarget(emp, &rec, today) {
				return nil
			}
			mu.Lock()
			targets = append(targets, PromotionTarget{
				EmployeeID:     emp.ID,
				Name:           emp.Name,
				WorkingMonths:  WorkingMonths(*emp.HireDate, today),
				RemainingDays:  rec.Annual.Available(),
				AnnualDays:     rec.Annual.Entitlement,
				UsedAnnualDays: rec.Annual.Used,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].EmployeeID < targets[j].EmployeeID })
	return targets, nil
}
