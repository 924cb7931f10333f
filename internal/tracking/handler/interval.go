package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/httputil"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// IntervalHandler handles admin corrections on work intervals
type IntervalHandler struct {
	service *service.TrackingService
	logger  *logger.Logger
}

// NewIntervalHandler creates a new interval handler
func NewIntervalHandler(svc *service.TrackingService, log *logger.Logger) *IntervalHandler {
	return &IntervalHandler{
		service: svc,
		logger:  log,
	}
}

// UpdateIntervalRequest is the interval correction payload. Dates and
// times arrive as the dashboard's form fields; the end is optional so an
// interval can be reopened.
type UpdateIntervalRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Start   string `json:"start" validate:"required,datetime=15:04"`
	EndDate string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End     string `json:"end,omitempty" validate:"omitempty,datetime=15:04"`
}

// Update corrects an interval's timestamps
// PUT /intervals/{id}
func (h *IntervalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateIntervalRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	startedAt, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Start, time.UTC)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid start timestamp"))
		return
	}

	var endedAt *time.Time
	if req.End != "" {
		endDate := req.EndDate
		if endDate == "" {
			endDate = req.Date
		}
		end, err := time.ParseInLocation("2006-01-02 15:04", endDate+" "+req.End, time.UTC)
		if err != nil {
			httputil.Error(w, errors.BadRequest("invalid end timestamp"))
			return
		}
		endedAt = &end
	}

	interval, err := h.service.UpdateInterval(r.Context(), id, startedAt, endedAt)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, interval)
}

// Delete removes an interval
// DELETE /intervals/{id}
func (h *IntervalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteInterval(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
