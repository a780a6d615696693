package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// HolidayStore is a writable holiday calendar. The sqlite store is one.
type HolidayStore interface {
	SaveHoliday(ctx context.Context, h generic.Holiday) error
	ListHolidays(ctx context.Context, year int) ([]generic.Holiday, error)
}

type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

type CreateHolidayRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"required,max=200"`
	Recurring bool   `json:"recurring"`
}

// ListHolidays returns the holidays of a year (default: current year).
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.today().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}
	holidays, err := h.Holidays.ListHolidays(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list holidays", err)
		return
	}
	out := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		out = append(out, HolidayDTO{ID: hol.ID, Date: hol.Date.String(), Name: hol.Name, Recurring: hol.Recurring})
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateHoliday adds a holiday. Overtime worked on it afterwards earns
// compensatory hours.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	hol := generic.Holiday{ID: uuid.NewString(), Date: date, Name: req.Name, Recurring: req.Recurring}
	if err := h.Holidays.SaveHoliday(r.Context(), hol); err != nil {
		h.writeDomainError(w, r, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{ID: hol.ID, Date: date.String(), Name: hol.Name, Recurring: hol.Recurring})
}
