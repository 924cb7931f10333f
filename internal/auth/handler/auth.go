// Package handler exposes the authentication HTTP API: login, password
// changes and viewer account administration.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timbra/timbra-backend/internal/auth/service"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/httputil"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	service *service.AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a token
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// ChangePasswordRequest is the password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword updates the authenticated account's password
// POST /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID := httputil.GetAccountID(r.Context())
	if accountID == "" {
		httputil.Error(w, errors.Unauthorized("not authenticated"))
		return
	}

	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), accountID, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// CreateAccountRequest is the viewer account creation payload
type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateAccount creates a viewer account
// POST /accounts
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	account, err := h.service.CreateViewer(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, account)
}

// ResetPasswordsRequest is the bulk viewer password reset payload
type ResetPasswordsRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPasswords sets one password on every viewer account and forces a
// change on their next login
// POST /accounts/reset-passwords
func (h *AuthHandler) ResetPasswords(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	count, err := h.service.ResetViewerPasswords(r.Context(), req.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{"accounts_reset": count})
}

// ListAccounts lists the viewer accounts
// GET /accounts
func (h *AuthHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListViewers(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, accounts)
}

// DeleteAccount removes a viewer account
// DELETE /accounts/{id}
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteViewer(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
