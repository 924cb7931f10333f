// Package service implements login, password management and viewer
// account administration for the dashboard.
package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/timbra/timbra-backend/internal/auth/jwt"
	"github.com/timbra/timbra-backend/internal/auth/repository"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// MinPasswordLength is the minimum accepted password length
const MinPasswordLength = 8

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Token       *jwt.Token `json:"token"`
	AccountID   string     `json:"account_id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	ForceChange bool       `json:"force_change"`
}

// AuthService handles authentication business logic
type AuthService struct {
	accounts *repository.AccountRepository
	jwt      *jwt.Manager
	logger   *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(accounts *repository.AccountRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		jwt:      jwtManager,
		logger:   log,
	}
}

// Login verifies the credentials and issues a token. Accounts that still
// carry a plaintext password from the legacy installation are upgraded to
// a bcrypt hash on their first successful login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.InvalidCredentials()
	}

	if !s.verifyPassword(account, password) {
		s.logger.Warn().Str("username", username).Msg("failed login attempt")
		return nil, errors.InvalidCredentials()
	}

	if isLegacyHash(account.PasswordHash) {
		if err := s.upgradeHash(ctx, account, password); err != nil {
			// The login itself succeeded; keep the legacy hash and move on.
			s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to upgrade legacy password hash")
		}
	}

	token, err := s.jwt.Generate(&jwt.AccountInfo{
		ID:       account.ID,
		Username: account.Username,
		Role:     account.Role,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Str("role", account.Role).Msg("login")

	return &LoginResult{
		Token:       token,
		AccountID:   account.ID,
		Username:    account.Username,
		Role:        account.Role,
		ForceChange: account.ForceChange,
	}, nil
}

// ChangePassword verifies the current password and stores a new hash,
// clearing any pending force-change flag.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, current, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.verifyPassword(account, current) {
		return errors.InvalidCredentials()
	}

	if len(newPassword) < MinPasswordLength {
		return errors.Validation(map[string]string{
			"new_password": "must be at least 8 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, string(hash), false); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", accountID).Msg("password changed")
	return nil
}

// CreateViewer creates a read-only dashboard account. The account starts
// with the force-change flag set so the owner picks their own password.
func (s *AuthService) CreateViewer(ctx context.Context, username, password string) (*repository.Account, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.Validation(map[string]string{"username": "must not be empty"})
	}
	if len(password) < MinPasswordLength {
		return nil, errors.Validation(map[string]string{"password": "must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &repository.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         repository.RoleViewer,
		ForceChange:  true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Str("username", username).Msg("viewer account created")
	return account, nil
}

// ResetViewerPasswords sets one shared password on every viewer account
// and flags them all for a forced change on next login. Returns how many
// accounts were reset.
func (s *AuthService) ResetViewerPasswords(ctx context.Context, newPassword string) (int64, error) {
	if len(newPassword) < MinPasswordLength {
		return 0, errors.Validation(map[string]string{
			"password": "must be at least 8 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	count, err := s.accounts.ResetViewerPasswords(ctx, string(hash))
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("accounts", count).Msg("viewer passwords reset")
	return count, nil
}

// ListViewers lists the viewer accounts
func (s *AuthService) ListViewers(ctx context.Context) ([]*repository.Account, error) {
	return s.accounts.ListViewers(ctx)
}

// DeleteViewer removes a viewer account
func (s *AuthService) DeleteViewer(ctx context.Context, id string) error {
	if err := s.accounts.DeleteViewer(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", id).Msg("viewer account deleted")
	return nil
}

// verifyPassword checks the password against the stored hash, falling back
// to a plain comparison for legacy accounts that predate hashing.
func (s *AuthService) verifyPassword(account *repository.Account, password string) bool {
	if isLegacyHash(account.PasswordHash) {
		return account.PasswordHash == password
	}
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}

// upgradeHash replaces a legacy plaintext password with a bcrypt hash,
// preserving the force-change flag.
func (s *AuthService) upgradeHash(ctx context.Context, account *repository.Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, string(hash), account.ForceChange); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", account.ID).Msg("legacy password hash upgraded")
	return nil
}

// isLegacyHash reports whether the stored value is a plaintext password
// rather than a bcrypt hash.
func isLegacyHash(stored string) bool {
	return !strings.HasPrefix(stored, "$2a$") &&
		!strings.HasPrefix(stored, "$2b$") &&
		!strings.HasPrefix(stored, "$2y$")
}
