package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/timbra/timbra-backend/pkg/errors"
)

// MapPQError converts PostgreSQL constraint violations to AppErrors with
// meaningful messages. Any other error passes through unchanged.
func MapPQError(err error) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return err
	}

	switch pqErr.Code {
	// Check constraint violation
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return err
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "ended_after_started"):
		return errors.Validation(map[string]string{
			"ended_at": "must be after the interval start",
		})

	case strings.Contains(constraint, "email_format"):
		return errors.Validation(map[string]string{
			"email": "must be a valid email address",
		})

	case strings.Contains(constraint, "role_valid"):
		return errors.Validation(map[string]string{
			"role": "must be one of: admin, viewer",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "username"):
		return "an account with this username already exists"
	case strings.Contains(constraint, "email"):
		return "an employee with this email already exists"
	default:
		return "a record with these values already exists"
	}
}
