/*
scenarios.go - Demo scenario loaders for development

PURPOSE:
  Populates the engine with small, realistic data sets so the HTTP API can
  be explored without an HR import. Every scenario goes through the normal
  engine operations (onboarding, accrual, overtime credit, submission,
  approval), so the audit log looks like real usage.

AVAILABLE SCENARIOS:
  new-hire:         Hired this year, monthly annual days only
  weekend-worker:   Saturday and Sunday overtime credited, one hour request
  promotion-due:    Long-tenured employee with unused annual leave

HOW SCENARIOS WORK:
  1. Onboard the scenario's employee (id prefixed with the scenario)
  2. Accrue for that employee only, as of January 1 (new-hire: today)
  3. Apply the scenario's activity

  Loading a scenario twice is harmless: onboarding is an upsert, accrual
  and overtime are idempotent, and requests are only submitted when the
  employee has none yet.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "weekend-worker"}

NOTE:
  Only routed outside production (RouterOptions.EnableScenarios).

SEE ALSO:
  - server.go: Route registration
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required,oneof=new-hire weekend-worker promotion-due"`
}

type scenario struct {
	ScenarioDTO
	load func(ctx context.Context, h *Handler, today generic.TimePoint) error
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "new-hire",
			Name:        "New Hire",
			Description: "Hired this year: one annual day per month worked",
		},
		load: loadNewHireScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "weekend-worker",
			Name:        "Weekend Worker",
			Description: "Saturday and Sunday overtime turned into substitute and compensatory hours",
		},
		load: loadWeekendWorkerScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "promotion-due",
			Name:        "Promotion Due",
			Description: "Senior employee with unused annual leave, flagged by the promotion scan",
		},
		load: loadPromotionDueScenario,
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s.ScenarioDTO)
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario loads one demo scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	for _, s := range scenarios {
		if s.ID != req.ScenarioID {
			continue
		}
		if err := s.load(r.Context(), h, h.today()); err != nil {
			h.writeDomainError(w, r, "Failed to load scenario", err)
			return
		}
		LoggerFrom(r.Context()).Info("scenario loaded", zap.String("scenario_id", s.ID))
		writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": s.ID})
		return
	}
	writeError(w, http.StatusNotFound, "Unknown scenario", nil)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadNewHireScenario(ctx context.Context, h *Handler, today generic.TimePoint) error {
	hire := generic.NewTimePoint(today.Year(), time.January, 15)
	if today.Month() == time.January {
		hire = generic.NewTimePoint(today.Year()-1, time.July, 1)
	}
	return onboard(ctx, h, "new-hire-1", "Jamie Park", hire, today)
}

func loadWeekendWorkerScenario(ctx context.Context, h *Handler, today generic.TimePoint) error {
	id := generic.EntityID("weekend-worker-1")
	if err := onboard(ctx, h, id, "Alex Kim", today.AddYears(-3), generic.StartOfYear(today.Year())); err != nil {
		return err
	}

	saturday := lastWeekday(today, time.Saturday)
	// a Saturday holiday earns compensatory hours instead
	requested := timeoff.CategorySubstitute
	for _, rec := range []timeoff.OvertimeRecord{
		{EmployeeID: id, WorkDate: saturday.AddDays(1), Hours: 6},
		{EmployeeID: id, WorkDate: saturday, Hours: 10},
	} {
		credit, err := h.Overtime.Credit(ctx, rec)
		if ignoreDuplicate(err) != nil {
			return err
		}
		if err == nil && credit.Credited {
			requested = credit.Category()
		}
	}
	return submitOnce(ctx, h, timeoff.SubmitInput{
		EmployeeID: id,
		Category:   requested,
		Amount:     4,
		Start:      today.AddDays(7),
		End:        today.AddDays(7),
		Reason:     "Afternoon off",
	})
}

func loadPromotionDueScenario(ctx context.Context, h *Handler, today generic.TimePoint) error {
	id := generic.EntityID("promotion-due-1")
	if err := onboard(ctx, h, id, "Sam Lee", today.AddYears(-6), generic.StartOfYear(today.Year())); err != nil {
		return err
	}
	err := submitOnce(ctx, h, timeoff.SubmitInput{
		EmployeeID: id,
		Category:   timeoff.CategoryAnnual,
		Amount:     2,
		Start:      today.AddDays(14),
		End:        today.AddDays(15),
		Reason:     "Long weekend",
	})
	if err != nil {
		return err
	}
	pending, err := h.Store.ListRequests(ctx, id)
	if err != nil {
		return err
	}
	admin := timeoff.Actor{ID: "scenario-admin", Role: timeoff.RoleAdmin}
	for _, req := range pending {
		if req.Status != timeoff.StatusPending {
			continue
		}
		if _, err := h.Requests.Approve(ctx, admin, req.ID, "demo approval"); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func onboard(ctx context.Context, h *Handler, id generic.EntityID, name string, hire, asOf generic.TimePoint) error {
	if _, err := h.Ledger.Open(ctx, timeoff.Employee{ID: id, Name: name, HireDate: &hire}); err != nil {
		return fmt.Errorf("onboarding %s: %w", id, err)
	}
	if _, err := h.Accruals.AccrueEmployee(ctx, id, asOf); err != nil {
		return fmt.Errorf("accruing for %s: %w", id, err)
	}
	return nil
}

func submitOnce(ctx context.Context, h *Handler, in timeoff.SubmitInput) error {
	existing, err := h.Store.ListRequests(ctx, in.EmployeeID)
	if err != nil || len(existing) > 0 {
		return err
	}
	_, err = h.Requests.Submit(ctx, in)
	return err
}

func ignoreDuplicate(err error) error {
	if generic.IsConflict(err) {
		return nil
	}
	return err
}

// lastWeekday returns the most recent day before today falling on wd.
func lastWeekday(today generic.TimePoint, wd time.Weekday) generic.TimePoint {
	d := today.AddDays(-1)
	for d.Weekday() != wd {
		d = d.AddDays(-1)
	}
	return d
}
