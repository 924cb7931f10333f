package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/errors"
)

// DefaultEmployeeColor is assigned when an employee is created without a
// badge color.
const DefaultEmployeeColor = "#4361ee"

// Employee represents an employee tracked by the time clock
type Employee struct {
	ID        string     `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     *string    `db:"email" json:"email,omitempty"`
	HireDate  *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	Color     string     `db:"color" json:"color"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	if emp.Color == "" {
		emp.Color = DefaultEmployeeColor
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, email, hire_date, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.HireDate, emp.Color).
		Scan(&emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}
	return nil
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	err := r.db.GetContext(ctx, &emp, `
		SELECT id, first_name, last_name, email, hire_date, color, created_at, updated_at
		FROM employees
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// List lists all employees ordered by name
func (r *EmployeeRepository) List(ctx context.Context) ([]*Employee, error) {
	employees := []*Employee{}
	err := r.db.SelectContext(ctx, &employees, `
		SELECT id, first_name, last_name, email, hire_date, color, created_at, updated_at
		FROM employees
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, err
	}
	return employees, nil
}

// Exists reports whether an employee with the given ID exists
func (r *EmployeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)
	`, id)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Update updates an employee's details
func (r *EmployeeRepository) Update(ctx context.Context, emp *Employee) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, hire_date = $5, color = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.HireDate, emp.Color)
	if err != nil {
		return database.MapPQError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("employee")
	}
	return nil
}

// Delete removes an employee and, via cascade, their intervals
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("employee")
	}
	return nil
}
