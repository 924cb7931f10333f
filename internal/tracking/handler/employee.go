package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/httputil"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// EmployeeHandler handles employee management endpoints
type EmployeeHandler struct {
	service *service.EmployeeService
	logger  *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.EmployeeService, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: svc,
		logger:  log,
	}
}

// EmployeeRequest is the employee create/update payload
type EmployeeRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	HireDate  string  `json:"hire_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Color     string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (req *EmployeeRequest) toEmployee() (*repository.Employee, error) {
	emp := &repository.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Color:     req.Color,
	}
	if req.HireDate != "" {
		hireDate, err := time.ParseInLocation("2006-01-02", req.HireDate, time.UTC)
		if err != nil {
			return nil, errors.BadRequest("invalid hire date")
		}
		emp.HireDate = &hireDate
	}
	return emp, nil
}

// List lists all employees
// GET /employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employees)
}

// Get gets an employee by ID
// GET /employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Create creates a new employee
// POST /employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := req.toEmployee()
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Create(r.Context(), emp); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, emp)
}

// Update updates an employee
// PUT /employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := req.toEmployee()
	if err != nil {
		httputil.Error(w, err)
		return
	}
	emp.ID = chi.URLParam(r, "id")

	if err := h.service.Update(r.Context(), emp); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Delete removes an employee and their intervals
// DELETE /employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
