// Package handler exposes the time clock HTTP API: the kiosk punch and
// presence endpoints, admin corrections, employee management and the
// report endpoints.
package handler

import (
	"net/http"

	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/httputil"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// PunchHandler handles the kiosk punch and presence board endpoints
type PunchHandler struct {
	service *service.TrackingService
	logger  *logger.Logger
}

// NewPunchHandler creates a new punch handler
func NewPunchHandler(svc *service.TrackingService, log *logger.Logger) *PunchHandler {
	return &PunchHandler{
		service: svc,
		logger:  log,
	}
}

// PunchRequest is the kiosk punch payload
type PunchRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

// Punch toggles an employee's clock state
// POST /punches
func (h *PunchHandler) Punch(w http.ResponseWriter, r *http.Request) {
	var req PunchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Punch(r.Context(), req.EmployeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Status returns the presence board
// GET /status
func (h *PunchHandler) Status(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.CurrentStatus(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, board)
}
