package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/timbra/timbra-backend/internal/tracking/period"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/errors"
)

// Interval represents one work interval: a punch-in, optionally closed by a
// punch-out. An open interval has a nil EndedAt.
type Interval struct {
	ID         string     `db:"id" json:"id"`
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// IntervalEntry is an interval row enriched with the computed hours, as
// listed in the per-employee detail report. Hours is nil while the interval
// is still open.
type IntervalEntry struct {
	ID        string     `db:"id" json:"id"`
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndedAt   *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	Hours     *float64   `db:"hours" json:"hours,omitempty"`
}

// EmployeePresence is one row of the presence board: an employee plus their
// open interval, if any.
type EmployeePresence struct {
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Color      string     `db:"color" json:"color"`
	IntervalID *string    `db:"interval_id" json:"interval_id,omitempty"`
	Since      *time.Time `db:"since" json:"since,omitempty"`
}

// IntervalRepository handles work interval persistence
type IntervalRepository struct {
	db *database.DB
}

// NewIntervalRepository creates a new interval repository
func NewIntervalRepository(db *database.DB) *IntervalRepository {
	return &IntervalRepository{db: db}
}

// Punch toggles the employee's clock state in a single transaction. The
// latest open interval is locked while we decide: if one exists it is
// closed (punch-out), otherwise a new interval is opened (punch-in).
// The lock keeps two concurrent punches from closing the same interval
// twice or opening two intervals at once.
func (r *IntervalRepository) Punch(ctx context.Context, employeeID string, at time.Time) (*Interval, bool, error) {
	var interval Interval
	var clockedIn bool

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var open Interval
		err := tx.GetContext(ctx, &open, `
			SELECT id, employee_id, started_at, ended_at, created_at, updated_at
			FROM intervals
			WHERE employee_id = $1 AND ended_at IS NULL
			ORDER BY started_at DESC
			LIMIT 1
			FOR UPDATE
		`, employeeID)

		if err == sql.ErrNoRows {
			interval = Interval{
				ID:         uuid.New().String(),
				EmployeeID: employeeID,
				StartedAt:  at,
			}
			clockedIn = true
			return tx.QueryRowxContext(ctx, `
				INSERT INTO intervals (id, employee_id, started_at)
				VALUES ($1, $2, $3)
				RETURNING created_at, updated_at
			`, interval.ID, interval.EmployeeID, interval.StartedAt).
				Scan(&interval.CreatedAt, &interval.UpdatedAt)
		}
		if err != nil {
			return err
		}

		interval = open
		interval.EndedAt = &at
		clockedIn = false
		return tx.QueryRowxContext(ctx, `
			UPDATE intervals
			SET ended_at = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, open.ID, at).Scan(&interval.UpdatedAt)
	})
	if err != nil {
		return nil, false, database.MapPQError(err)
	}

	return &interval, clockedIn, nil
}

// GetByID gets an interval by ID
func (r *IntervalRepository) GetByID(ctx context.Context, id string) (*Interval, error) {
	var interval Interval
	err := r.db.GetContext(ctx, &interval, `
		SELECT id, employee_id, started_at, ended_at, created_at, updated_at
		FROM intervals
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("interval")
	}
	if err != nil {
		return nil, err
	}
	return &interval, nil
}

// Update rewrites an interval's start and end timestamps
func (r *IntervalRepository) Update(ctx context.Context, id string, startedAt time.Time, endedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE intervals
		SET started_at = $2, ended_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, startedAt, endedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("interval")
	}
	return nil
}

// Delete removes an interval
func (r *IntervalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM intervals WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("interval")
	}
	return nil
}

// ListForEmployee lists an employee's intervals whose start falls in the
// range, newest first, with hours computed for closed intervals.
func (r *IntervalRepository) ListForEmployee(ctx context.Context, employeeID string, rng period.Range) ([]*IntervalEntry, error) {
	entries := []*IntervalEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, started_at, ended_at,
		       CASE WHEN ended_at IS NOT NULL
		            THEN EXTRACT(EPOCH FROM (ended_at - started_at)) / 3600
		       END AS hours
		FROM intervals
		WHERE employee_id = $1 AND started_at BETWEEN $2 AND $3
		ORDER BY started_at DESC
	`, employeeID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PresenceBoard returns every employee with their open interval, if any,
// ordered by name. Employees who never punched still appear.
func (r *IntervalRepository) PresenceBoard(ctx context.Context) ([]*EmployeePresence, error) {
	rows := []*EmployeePresence{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT e.id AS employee_id, e.first_name, e.last_name, e.color,
		       o.id AS interval_id, o.started_at AS since
		FROM employees e
		LEFT JOIN LATERAL (
			SELECT id, started_at
			FROM intervals
			WHERE employee_id = e.id AND ended_at IS NULL
			ORDER BY started_at DESC
			LIMIT 1
		) o ON true
		ORDER BY e.last_name, e.first_name
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
