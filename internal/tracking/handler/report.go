package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/httputil"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// ReportHandler handles the report endpoints. Period selection arrives as
// query parameters; anything malformed falls back to a sensible default
// instead of failing the chart.
type ReportHandler struct {
	service *service.ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// Totals returns worked hours per employee over the period
// GET /reports/totals?period=&year=&month=
func (h *ReportHandler) Totals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.service.Totals(r.Context(), q.Get("period"), q.Get("year"), q.Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// EmployeeDetail returns one employee's intervals over the period
// GET /reports/employees/{id}?period=&year=&month=
func (h *ReportHandler) EmployeeDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	detail, err := h.service.EmployeeDetail(r.Context(), id, q.Get("period"), q.Get("year"), q.Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, detail)
}

// Monthly returns the hours breakdown chart for the period
// GET /reports/monthly?period=&year=&month=&employee=
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	series, err := h.service.Monthly(r.Context(), q.Get("employee"), q.Get("period"), q.Get("year"), q.Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, series)
}

// Weekdays returns the average hours per weekday over the period
// GET /reports/weekdays?period=&year=&month=&employee=
func (h *ReportHandler) Weekdays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	series, err := h.service.Weekdays(r.Context(), q.Get("employee"), q.Get("period"), q.Get("year"), q.Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, series)
}

// Comparison returns one series per employee over the period
// GET /reports/comparison?period=&year=&month=
func (h *ReportHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	multi, err := h.service.Comparison(r.Context(), q.Get("period"), q.Get("year"), q.Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, multi)
}
