/*
handlers_test.go - HTTP tests for the leave API

Tests for:
- Onboarding and body validation
- Fail-fast submission (422 with the available amount)
- Overtime credit, approval and the admin role check
- Error status mapping (400/403/404/409)
- Self-or-admin writes and the audit reconciliation endpoint
- Admin jobs, reference data, holidays and scenarios
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/store/sqlite"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Wednesday; the previous Saturday is 2025-03-01.
var testNow = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *chi.Mux {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return testNow }
	ledger := timeoff.NewLeaveLedger(store, nil).WithClock(clock)
	requests := timeoff.NewRequestService(store, ledger, timeoff.LogPublisher{}, nil).WithClock(clock)
	overtime := timeoff.NewOvertimeService(timeoff.NewClassifier(store, time.Second, nil), ledger, nil)
	accruals := timeoff.NewAccrualRunner(store, ledger, 2, nil)

	h := NewHandler(store, ledger, requests, overtime, accruals, nil).WithClock(clock)
	h.Holidays = store
	return NewRouter(h, RouterOptions{EnableScenarios: true})
}

type caller struct {
	id   string
	role string
}

var (
	asAdmin    = caller{id: "admin-1", role: "Admin"}
	asEmployee = caller{id: "emp-1", role: "employee"}
)

func do(t *testing.T, router http.Handler, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if who.id != "" {
		req.Header.Set(HeaderUserID, who.id)
	}
	if who.role != "" {
		req.Header.Set(HeaderUserRole, who.role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createEmployee(t *testing.T, router http.Handler, id, hire string) {
	t.Helper()
	rec := do(t, router, asAdmin, http.MethodPost, "/api/employees", CreateEmployeeRequest{ID: id, Name: "Employee " + id, HireDate: hire})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestCreateEmployee(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, asAdmin, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: "emp-1", Name: "Ada", HireDate: "2020-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[struct {
		Employee EmployeeDTO `json:"employee"`
		Ledger   LedgerDTO   `json:"ledger"`
	}](t, rec)
	assert.Equal(t, "emp-1", body.Employee.ID)
	assert.True(t, body.Employee.Active)
	assert.Equal(t, 60, body.Ledger.Sick.Entitlement)
	assert.Equal(t, 60.0, body.Ledger.Sick.Available)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2020-01-01", *decode[EmployeeDTO](t, rec).HireDate)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]EmployeeDTO](t, rec), 1)
}

func TestCreateEmployee_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, asAdmin, http.MethodPost, "/api/employees",
		map[string]string{"id": "emp-1", "hire_date": "01/02/2020"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Validation failed", body.Error)
	assert.Contains(t, body.Details, "name is required")
	assert.Contains(t, body.Details, "hire_date must be a date")
}

func TestGetEmployee_NotFound(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/employees/ghost",
		"/api/employees/ghost/ledger",
		"/api/employees/ghost/transactions",
	} {
		rec := do(t, router, asEmployee, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestTerminateEmployee(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")
	body := TerminateRequest{TerminationDate: "2025-03-31"}

	rec := do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/terminate", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, asAdmin, http.MethodPost, "/api/employees/emp-1/terminate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[LedgerDTO](t, rec).Archived)
}

func TestCreateEmployee_AdminOnly(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, asEmployee, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: "emp-1", Name: "Ada", HireDate: "2020-01-01"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing was stored")
}

func TestCreateEmployee_TerminatedStaysTerminated(t *testing.T) {
	// GIVEN: A terminated employee
	// WHEN: An admin posts the same id again with a new hire date
	// THEN: 409, and the employee keeps the termination and the original hire date

	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")
	rec := do(t, router, asAdmin, http.MethodPost, "/api/employees/emp-1/terminate", TerminateRequest{TerminationDate: "2025-03-31"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, asAdmin, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: "emp-1", Name: "Ada again", HireDate: "2025-04-01"})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = do(t, router, asAdmin, http.MethodGet, "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[EmployeeDTO](t, rec)
	assert.False(t, emp.Active)
	assert.Equal(t, "2020-01-01", *emp.HireDate)
}

func TestReconcileLedger(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")

	rec := do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/overtime",
		OvertimeRequest{WorkDate: "2025-03-01", Hours: 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checks := decode[[]AuditCheckDTO](t, rec)
	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.True(t, c.Balanced, c.Category)
		assert.Equal(t, c.Available, c.AuditNet, c.Category)
	}
	assert.Equal(t, "sick", checks[1].Category)
	assert.Equal(t, 60.0, checks[1].Available)
	assert.Equal(t, "substitute", checks[2].Category)
	assert.Equal(t, 11.0, checks[2].AuditNet)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/ghost/audit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// LEAVE FLOW
// =============================================================================

func TestSubmitRequest_InsufficientBalance(t *testing.T) {
	// GIVEN: An employee with no substitute hours
	// WHEN: Applying for 4 hours
	// THEN: 422 with the available amount, and no request is stored

	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")

	rec := do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/requests", SubmitLeaveRequest{
		Category: "substitute", Amount: 4, StartDate: "2025-03-10", EndDate: "2025-03-10",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	body := decode[ErrorResponse](t, rec)
	require.NotNil(t, body.Available)
	assert.Equal(t, 0.0, *body.Available)
	assert.Contains(t, body.Details, "insufficient substitute balance")

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]LeaveRequestDTO](t, rec))
}

func TestSubmitRequest_BadInput(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")

	tests := []struct {
		name string
		body SubmitLeaveRequest
	}{
		{"unknown category", SubmitLeaveRequest{Category: "pto", Amount: 1, StartDate: "2025-03-10", EndDate: "2025-03-10"}},
		{"end before start", SubmitLeaveRequest{Category: "sick", Amount: 1, StartDate: "2025-03-10", EndDate: "2025-03-09"}},
		{"zero amount", SubmitLeaveRequest{Category: "sick", Amount: 0, StartDate: "2025-03-10", EndDate: "2025-03-10"}},
		{"tenth of a day", SubmitLeaveRequest{Category: "sick", Amount: 0.3, StartDate: "2025-03-10", EndDate: "2025-03-10"}},
		{"legal leave above allowance", SubmitLeaveRequest{Category: "family_event", SubType: "child_marriage", Amount: 2, StartDate: "2025-03-10", EndDate: "2025-03-11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/requests", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestEmployeeWrites_SelfOrAdmin(t *testing.T) {
	// GIVEN: Two employees
	// WHEN: One of them files overtime or a request for the other
	// THEN: 403, while the employee themself and an admin are allowed

	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")
	createEmployee(t, router, "emp-2", "2020-01-01")

	colleague := caller{id: "emp-2", role: "employee"}
	anonymous := caller{role: "employee"}
	overtime := OvertimeRequest{WorkDate: "2025-03-01", Hours: 2}
	request := SubmitLeaveRequest{Category: "sick", Amount: 1, StartDate: "2025-03-10", EndDate: "2025-03-10"}

	for _, who := range []caller{colleague, anonymous} {
		rec := do(t, router, who, http.MethodPost, "/api/employees/emp-1/overtime", overtime)
		assert.Equal(t, http.StatusForbidden, rec.Code, who.id)
		rec = do(t, router, who, http.MethodPost, "/api/employees/emp-1/requests", request)
		assert.Equal(t, http.StatusForbidden, rec.Code, who.id)
	}

	rec := do(t, router, asAdmin, http.MethodPost, "/api/employees/emp-1/overtime", overtime)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, router, asAdmin, http.MethodPost, "/api/employees/emp-1/requests", request)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/requests", request)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[LeaveRequestDTO](t, rec)
	assert.Equal(t, 1, created.CalendarDays)
	assert.Equal(t, "emp-1", created.EmployeeID)
}

func TestOvertimeThenApprove(t *testing.T) {
	// GIVEN: 10 hours worked on a Saturday (11 substitute hours)
	// WHEN: A 4 hour request is submitted and approved by an admin
	// THEN: 7 hours remain and the audit log shows the credit and the debit

	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")

	rec := do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/overtime",
		OvertimeRequest{WorkDate: "2025-03-01", Hours: 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	credit := decode[OvertimeCreditDTO](t, rec)
	assert.Equal(t, "saturday", credit.DayClass)
	assert.Equal(t, "substitute", credit.Category)
	assert.Equal(t, 11.0, credit.Substitute)
	assert.True(t, credit.Credited)

	rec = do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/overtime",
		OvertimeRequest{WorkDate: "2025-03-01", Hours: 10})
	assert.Equal(t, http.StatusConflict, rec.Code, "a work date is credited once")

	rec = do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/requests", SubmitLeaveRequest{
		Category: "substitute", Amount: 4, StartDate: "2025-03-10", EndDate: "2025-03-10", Reason: "dentist",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[LeaveRequestDTO](t, rec)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "hours", created.Unit)

	approvePath := "/api/requests/" + created.ID + "/approve"

	rec = do(t, router, asEmployee, http.MethodPost, approvePath, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, asAdmin, http.MethodPost, approvePath, DecisionRequest{Notes: "enjoy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decision := decode[DecisionResponse](t, rec)
	assert.Equal(t, "approved", decision.Request.Status)
	assert.Equal(t, "published", decision.CalendarSync)
	assert.Equal(t, "admin-1", decision.Request.ProcessedBy)

	rec = do(t, router, asAdmin, http.MethodPost, approvePath, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[LedgerDTO](t, rec)
	assert.Equal(t, 7.0, ledger.Substitute.Hours)
	assert.Equal(t, "0.875 days (7 hours)", ledger.Substitute.Display)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	txs := decode[[]TransactionDTO](t, rec)
	require.Len(t, txs, 3)
	assert.Equal(t, "sick", txs[0].Category)
	assert.Equal(t, 11.0, txs[1].Delta)
	assert.Equal(t, "overtime-emp-1-2025-03-01", txs[1].IdempotencyKey)
	assert.Equal(t, -4.0, txs[2].Delta)
	assert.Equal(t, created.ID, txs[2].ReferenceID)
}

func TestRejectRequest(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")

	rec := do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/requests", SubmitLeaveRequest{
		Category: "sick", Amount: 1.5, StartDate: "2025-03-10", EndDate: "2025-03-11",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[LeaveRequestDTO](t, rec)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/requests/pending", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, asAdmin, http.MethodGet, "/api/requests/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]LeaveRequestDTO](t, rec), 1)

	rec = do(t, router, asAdmin, http.MethodPost, "/api/requests/"+created.ID+"/reject", DecisionRequest{Notes: "busy week"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decision := decode[DecisionResponse](t, rec)
	assert.Equal(t, "rejected", decision.Request.Status)
	assert.Equal(t, "skipped", decision.CalendarSync)

	rec = do(t, router, asAdmin, http.MethodPost, "/api/requests/missing/reject", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckAvailability(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")

	rec := do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/availability?category=sick&amount=2.5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	avail := decode[AvailabilityDTO](t, rec)
	assert.True(t, avail.CanApply)
	assert.Equal(t, 60.0, avail.Available)
	assert.Equal(t, "days", avail.Unit)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/availability?category=sick&amount=61", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	avail = decode[AvailabilityDTO](t, rec)
	assert.False(t, avail.CanApply)
	assert.NotEmpty(t, avail.Reason)

	for _, q := range []string{"category=bogus&amount=1", "category=sick&amount=abc", "category=sick&amount=0.3"} {
		rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/availability?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

// =============================================================================
// ADMIN AND REFERENCE DATA
// =============================================================================

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, asEmployee, http.MethodPost, "/api/admin/accrual", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, caller{}, http.MethodGet, "/api/admin/promotion-targets", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTriggerAccrual(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2015-01-01")

	rec := do(t, router, asAdmin, http.MethodPost, "/api/admin/accrual", AccrualRunRequest{AsOf: "2025-01-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[AccrualSummaryDTO](t, rec)
	assert.Equal(t, "2025-01-01", summary.AsOf)
	assert.Equal(t, 1, summary.Processed)

	rec = do(t, router, asAdmin, http.MethodPost, "/api/admin/accrual", AccrualRunRequest{AsOf: "2025-01-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[AccrualSummaryDTO](t, rec).Skipped)

	rec = do(t, router, asEmployee, http.MethodGet, "/api/employees/emp-1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 19, decode[LedgerDTO](t, rec).Annual.Entitlement)

	rec = do(t, router, asAdmin, http.MethodPost, "/api/admin/accrual", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-05", decode[AccrualSummaryDTO](t, rec).AsOf, "as_of defaults to today")
}

func TestPromotionTargets(t *testing.T) {
	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2015-01-01")
	rec := do(t, router, asAdmin, http.MethodPost, "/api/admin/accrual", AccrualRunRequest{AsOf: "2025-01-01"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, asAdmin, http.MethodGet, "/api/admin/promotion-targets?as_of=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	targets := decode[[]PromotionTargetDTO](t, rec)
	require.Len(t, targets, 1)
	assert.Equal(t, "emp-1", targets[0].EmployeeID)
	assert.Equal(t, 19.0, targets[0].RemainingDays)

	rec = do(t, router, asAdmin, http.MethodGet, "/api/admin/promotion-targets?as_of=June", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLegalEntitlements(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, caller{}, http.MethodGet, "/api/legal-entitlements", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	table := decode[[]timeoff.LegalEntitlement](t, rec)
	assert.Len(t, table, 13)
}

func TestHolidays_ClassifyOvertime(t *testing.T) {
	// GIVEN: An admin-registered holiday on a Saturday
	// WHEN: Overtime worked that day is credited
	// THEN: It earns compensatory hours instead of substitute hours

	router := newTestRouter(t)
	createEmployee(t, router, "emp-1", "2020-01-01")
	holiday := CreateHolidayRequest{Date: "2025-03-01", Name: "Independence Movement Day", Recurring: true}

	rec := do(t, router, asEmployee, http.MethodPost, "/api/holidays", holiday)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, asAdmin, http.MethodPost, "/api/holidays", holiday)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, asEmployee, http.MethodGet, "/api/holidays?year=2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]HolidayDTO](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "2026-03-01", listed[0].Date)

	rec = do(t, router, asEmployee, http.MethodPost, "/api/employees/emp-1/overtime",
		OvertimeRequest{WorkDate: "2025-03-01", Hours: 8})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	credit := decode[OvertimeCreditDTO](t, rec)
	assert.Equal(t, "sunday_or_holiday", credit.DayClass)
	assert.Equal(t, "Independence Movement Day", credit.HolidayName)
	assert.Equal(t, 12.0, credit.Compensatory)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, caller{}, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), 3)

	rec = do(t, router, caller{}, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadScenario_WeekendWorker_Twice(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 2; i++ {
		rec := do(t, router, caller{}, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "weekend-worker"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(t, router, caller{}, http.MethodGet, "/api/employees/weekend-worker-1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[LedgerDTO](t, rec)
	assert.Equal(t, 11.0, ledger.Substitute.Hours)
	assert.Equal(t, 9.0, ledger.Compensatory.Hours)

	rec = do(t, router, caller{}, http.MethodGet, "/api/employees/weekend-worker-1/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]LeaveRequestDTO](t, rec), 1)
}

func TestLoadScenario_PromotionDue(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, caller{}, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "promotion-due"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, asAdmin, http.MethodGet, "/api/admin/promotion-targets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	targets := decode[[]PromotionTargetDTO](t, rec)
	require.Len(t, targets, 1)
	assert.Equal(t, "promotion-due-1", targets[0].EmployeeID)
	assert.Equal(t, 17, targets[0].AnnualDays)
	assert.Equal(t, 2.0, targets[0].UsedAnnualDays)
}

func TestLoadScenario_NewHire(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, caller{}, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "new-hire"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, caller{}, http.MethodGet, "/api/employees/new-hire-1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// hired 2025-01-15, evaluated 2025-03-05: January and February completed
	assert.Equal(t, 2, decode[LedgerDTO](t, rec).Annual.Entitlement)
}

func TestScenarioRoutes_OffInProduction(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledger := timeoff.NewLeaveLedger(store, nil)
	h := NewHandler(store, ledger, nil, nil, timeoff.NewAccrualRunner(store, ledger, 1, nil), nil)
	router := NewRouter(h, RouterOptions{})

	rec := do(t, router, caller{}, http.MethodGet, "/api/scenarios", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, caller{}, http.MethodGet, "/api/holidays", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "holiday routes need a HolidayStore")
}
