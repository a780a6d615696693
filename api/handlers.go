/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine over REST. Handlers parse and validate input,
  call exactly one engine operation, and serialize the result. No balance
  arithmetic happens here.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List employees
    POST   /api/employees                        Onboard employee (admin)
    GET    /api/employees/{id}                   Employee details
    POST   /api/employees/{id}/terminate         Archive on termination (admin)
    GET    /api/employees/{id}/ledger            Leave status
    GET    /api/employees/{id}/availability      ?category=&amount=
    GET    /api/employees/{id}/transactions      Audit history
    GET    /api/employees/{id}/audit             Balances replayed from the audit log
    GET    /api/employees/{id}/requests          Request history
    POST   /api/employees/{id}/requests          Apply for leave (self or admin)
    POST   /api/employees/{id}/overtime          Credit rest-day work (self or admin)

  Requests:
    GET    /api/requests/pending                 Approval queue (admin)
    POST   /api/requests/{id}/approve            Approve (admin)
    POST   /api/requests/{id}/reject             Reject (admin)

  Admin:
    POST   /api/admin/accrual                    Annual accrual run
    GET    /api/admin/promotion-targets          Leave promotion scan

  Reference:
    GET    /api/legal-entitlements               Statutory leave table
    GET    /api/holidays                         Holiday calendar (holidays.go)
    POST   /api/holidays                         Add holiday (admin)

  Development:
    GET    /api/scenarios                        Demo scenarios (scenarios.go)
    POST   /api/scenarios/load                   Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status derived from the error:
  - 400: Validation errors, invalid amount/category/period
  - 403: Caller lacks the admin role
  - 404: Employee or request not found
  - 409: Request not pending, duplicate idempotency key
  - 422: Insufficient balance (body carries the available amount)
  - 503: Upstream dependency unavailable
  - 500: Anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the engine services the endpoints delegate to.
type Handler struct {
	Store    timeoff.Store
	Ledger   *timeoff.LeaveLedger
	Requests *timeoff.RequestService
	Overtime *timeoff.OvertimeService
	Accruals *timeoff.AccrualRunner
	Holidays HolidayStore // optional; holiday routes are off without it
	Logger   *zap.Logger

	now func() time.Time
}

func NewHandler(store timeoff.Store, ledger *timeoff.LeaveLedger, requests *timeoff.RequestService,
	overtime *timeoff.OvertimeService, accruals *timeoff.AccrualRunner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Ledger:   ledger,
		Requests: requests,
		Overtime: overtime,
		Accruals: accruals,
		Logger:   logger.Named("api"),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for default dates.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) today() generic.TimePoint {
	return generic.DateOf(h.now())
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list employees", err)
		return
	}
	out := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee onboards an employee and opens their ledger.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	emp := timeoff.Employee{ID: generic.EntityID(req.ID), Name: req.Name}
	if req.HireDate != "" {
		hire, err := generic.ParseDate(req.HireDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hire_date", err)
			return
		}
		emp.HireDate = &hire
	}

	rec, err := h.Ledger.Open(r.Context(), emp)
	if err != nil {
		h.writeDomainError(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"employee": toEmployeeDTO(emp),
		"ledger":   toLedgerDTO(rec),
	})
}

// TerminateEmployee records a termination date and archives the ledger.
// POST /api/employees/{id}/terminate
func (h *Handler) TerminateEmployee(w http.ResponseWriter, r *http.Request) {
	var req TerminateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := generic.ParseDate(req.TerminationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid termination_date", err)
		return
	}
	id := employeeID(r)
	if err := h.Ledger.Archive(r.Context(), id, date); err != nil {
		h.writeDomainError(w, r, "Failed to terminate employee", err)
		return
	}
	LoggerFrom(r.Context()).Info("employee terminated",
		zap.String("employee_id", string(id)), zap.String("termination_date", date.String()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// =============================================================================
// LEDGER ENDPOINTS
// =============================================================================

// GetLedger returns every balance of the employee.
// GET /api/employees/{id}/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Ledger.Snapshot(r.Context(), employeeID(r))
	if err != nil {
		h.writeDomainError(w, r, "Failed to get ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTO(rec))
}

// CheckAvailability answers whether an amount could be requested now.
// GET /api/employees/{id}/availability?category=annual&amount=1.5
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	cat, err := timeoff.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		h.writeDomainError(w, r, "Invalid category", err)
		return
	}
	raw, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	amount, err := generic.ParseAmount(raw, cat.Unit())
	if err != nil {
		h.writeDomainError(w, r, "Invalid amount", err)
		return
	}

	avail, err := h.Ledger.CheckAvailability(r.Context(), employeeID(r), cat, amount)
	if err != nil {
		h.writeDomainError(w, r, "Failed to check availability", err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityDTO(avail))
}

// GetTransactions returns the audit history, oldest first.
// GET /api/employees/{id}/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id := employeeID(r)
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, r, "Failed to get transactions", err)
		return
	}
	txs, err := generic.NewLedger(h.Store).Transactions(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, "Failed to get transactions", err)
		return
	}
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

// ReconcileLedger compares each balance with the sum of its audit entries.
// GET /api/employees/{id}/audit
func (h *Handler) ReconcileLedger(w http.ResponseWriter, r *http.Request) {
	checks, err := h.Ledger.Reconcile(r.Context(), employeeID(r))
	if err != nil {
		h.writeDomainError(w, r, "Failed to reconcile ledger", err)
		return
	}
	out := make([]AuditCheckDTO, 0, len(checks))
	for _, c := range checks {
		out = append(out, toAuditCheckDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// REQUEST ENDPOINTS
// =============================================================================

// ListEmployeeRequests returns the employee's requests, newest first.
// GET /api/employees/{id}/requests
func (h *Handler) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Store.ListRequests(r.Context(), employeeID(r))
	if err != nil {
		h.writeDomainError(w, r, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(reqs))
}

// SubmitRequest applies for leave. Nothing is stored unless every check,
// the balance check included, passes.
// POST /api/employees/{id}/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := generic.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	created, err := h.Requests.Submit(r.Context(), timeoff.SubmitInput{
		EmployeeID: employeeID(r),
		Category:   timeoff.Category(req.Category),
		SubType:    timeoff.LegalSubType(req.SubType),
		Amount:     req.Amount,
		Start:      start,
		End:        end,
		Reason:     req.Reason,
	})
	if err != nil {
		h.writeDomainError(w, r, "Request refused", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(created))
}

// ListPendingRequests returns the approval queue, oldest first.
// GET /api/requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Store.ListPendingRequests(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(reqs))
}

// ApproveRequest approves a pending request. The response is 200 even when
// the balance no longer covers it; the returned status is then "rejected".
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	decision, err := h.Requests.Approve(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		h.writeDomainError(w, r, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, DecisionResponse{
		Request:      toLeaveRequestDTO(decision.Request),
		CalendarSync: string(decision.CalendarSync),
	})
}

// RejectRequest rejects a pending request.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	decision, err := h.Requests.Reject(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		h.writeDomainError(w, r, "Failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, DecisionResponse{
		Request:      toLeaveRequestDTO(decision.Request),
		CalendarSync: string(decision.CalendarSync),
	})
}

// =============================================================================
// OVERTIME
// =============================================================================

// CreditOvertime converts rest-day work into substitute or compensatory
// hours. A work date can be credited once per employee.
// POST /api/employees/{id}/overtime
func (h *Handler) CreditOvertime(w http.ResponseWriter, r *http.Request) {
	var req OvertimeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := generic.ParseDate(req.WorkDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work_date", err)
		return
	}
	credit, err := h.Overtime.Credit(r.Context(), timeoff.OvertimeRecord{
		EmployeeID: employeeID(r),
		WorkDate:   date,
		Hours:      req.Hours,
	})
	if err != nil {
		h.writeDomainError(w, r, "Failed to credit overtime", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeCreditDTO(credit))
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// TriggerAccrual runs the annual accrual. as_of defaults to today.
// POST /api/admin/accrual
func (h *Handler) TriggerAccrual(w http.ResponseWriter, r *http.Request) {
	var req AccrualRunRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	asOf := h.today()
	if req.AsOf != "" {
		d, err := generic.ParseDate(req.AsOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of", err)
			return
		}
		asOf = d
	}

	summary, err := h.Accruals.RunAnnualAccrual(r.Context(), asOf)
	if err != nil {
		h.writeDomainError(w, r, "Accrual run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccrualSummaryDTO(summary))
}

// GetPromotionTargets lists employees to prompt about unused annual leave.
// GET /api/admin/promotion-targets?as_of=2025-06-30
func (h *Handler) GetPromotionTargets(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	if q := r.URL.Query().Get("as_of"); q != "" {
		d, err := generic.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of", err)
			return
		}
		today = d
	}
	targets, err := h.Accruals.PromotionTargets(r.Context(), today)
	if err != nil {
		h.writeDomainError(w, r, "Promotion scan failed", err)
		return
	}
	out := make([]PromotionTargetDTO, 0, len(targets))
	for _, t := range targets {
		out = append(out, toPromotionTargetDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListLegalEntitlements returns the statutory leave table.
// GET /api/legal-entitlements
func (h *Handler) ListLegalEntitlements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, timeoff.LegalEntitlements())
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeID(r *http.Request) generic.EntityID {
	return generic.EntityID(chi.URLParam(r, "id"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var short *generic.InsufficientBalanceError
	switch {
	case errors.As(err, &short):
		available := round1(short.Available.Value)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:     message,
			Details:   short.Error(),
			Available: &available,
		})
	case errors.Is(err, generic.ErrForbidden):
		writeError(w, http.StatusForbidden, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, generic.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		LoggerFrom(r.Context()).Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return validateBody(w, dst)
}

// decodeOptional is decodeAndValidate for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return validateBody(w, dst)
	}
	return decodeAndValidate(w, r, dst)
}

func validateBody(w http.ResponseWriter, dst any) bool {
	err := validate.Struct(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		writeError(w, http.StatusBadRequest, "Validation failed", errors.New(strings.Join(msgs, "; ")))
		return false
	}
	writeError(w, http.StatusBadRequest, "Validation failed", err)
	return false
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "datetime":
		return fe.Field() + " must be a date (YYYY-MM-DD)"
	case "gt", "gte", "lte", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
