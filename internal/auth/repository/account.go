package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/errors"
)

// Account roles
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Account represents a dashboard login account. Viewer accounts can read
// reports; the admin account can also manage data and other accounts.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	ForceChange  bool      `db:"force_change" json:"force_change"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AccountRepository handles account persistence
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByUsername gets an account by username. Returns nil, not an error,
// when no account matches: the caller decides how to report a failed login.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	var account Account
	err := r.db.GetContext(ctx, &account, `
		SELECT id, username, password_hash, role, force_change, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`, username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	var account Account
	err := r.db.GetContext(ctx, &account, `
		SELECT id, username, password_hash, role, force_change, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("account")
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Role == "" {
		account.Role = RoleViewer
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO accounts (id, username, password_hash, role, force_change)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, account.ID, account.Username, account.PasswordHash, account.Role, account.ForceChange).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// UpdatePassword stores a new password hash and the force-change flag
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, forceChange bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $2, force_change = $3, updated_at = NOW()
		WHERE id = $1
	`, id, passwordHash, forceChange)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("account")
	}
	return nil
}

// ResetViewerPasswords stores one hash and the force-change flag on every
// viewer account at once. Returns the number of accounts touched.
func (r *AccountRepository) ResetViewerPasswords(ctx context.Context, passwordHash string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $1, force_change = TRUE, updated_at = NOW()
		WHERE role = $2
	`, passwordHash, RoleViewer)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListViewers lists the viewer accounts ordered by username
func (r *AccountRepository) ListViewers(ctx context.Context) ([]*Account, error) {
	accounts := []*Account{}
	err := r.db.SelectContext(ctx, &accounts, `
		SELECT id, username, password_hash, role, force_change, created_at, updated_at
		FROM accounts
		WHERE role = $1
		ORDER BY username
	`, RoleViewer)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteViewer removes a viewer account. Admin accounts cannot be deleted
// through this path.
func (r *AccountRepository) DeleteViewer(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = $1 AND role = $2
	`, id, RoleViewer)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("account")
	}
	return nil
}
