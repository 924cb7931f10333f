// Package service implements the time clock business logic on top of the
// repositories: punch toggling, interval corrections, the presence board
// and the report orchestration.
package service

import (
	"context"
	"time"

	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// EventPublisher publishes time clock events. Implementations must not
// fail the calling operation.
type EventPublisher interface {
	PublishPunch(ctx context.Context, interval *repository.Interval, clockedIn bool)
	PublishIntervalUpdated(ctx context.Context, interval *repository.Interval)
	PublishIntervalDeleted(ctx context.Context, intervalID string)
	PublishEmployeeCreated(ctx context.Context, emp *repository.Employee)
	PublishEmployeeUpdated(ctx context.Context, emp *repository.Employee)
	PublishEmployeeDeleted(ctx context.Context, employeeID string)
}

// PunchResult is the outcome of a punch: which way the clock toggled.
type PunchResult struct {
	Type       string    `json:"type"` // in, out
	IntervalID string    `json:"interval_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// EmployeeStatus is one row of the presence board
type EmployeeStatus struct {
	EmployeeID string     `json:"employee_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Color      string     `json:"color"`
	Present    bool       `json:"present"`
	Since      *time.Time `json:"since,omitempty"`
}

// TrackingService handles punches and interval corrections
type TrackingService struct {
	intervals *repository.IntervalRepository
	employees *repository.EmployeeRepository
	publisher EventPublisher
	logger    *logger.Logger
}

// NewTrackingService creates a new tracking service
func NewTrackingService(
	intervals *repository.IntervalRepository,
	employees *repository.EmployeeRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *TrackingService {
	return &TrackingService{
		intervals: intervals,
		employees: employees,
		publisher: publisher,
		logger:    log,
	}
}

// Punch toggles the employee's clock state: clocked out becomes clocked in
// and vice versa. The punch itself decides which, the caller never does.
func (s *TrackingService) Punch(ctx context.Context, employeeID string) (*PunchResult, error) {
	exists, err := s.employees.Exists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	now := time.Now().UTC()
	interval, clockedIn, err := s.intervals.Punch(ctx, employeeID, now)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPunch(ctx, interval, clockedIn)

	result := &PunchResult{Type: "out", IntervalID: interval.ID, Timestamp: now}
	if clockedIn {
		result.Type = "in"
	}

	s.logger.Info().
		Str("employee_id", employeeID).
		Str("interval_id", interval.ID).
		Str("punch_type", result.Type).
		Msg("punch recorded")

	return result, nil
}

// CurrentStatus returns the presence board: every employee with their
// clock state, ordered by name.
func (s *TrackingService) CurrentStatus(ctx context.Context) ([]*EmployeeStatus, error) {
	rows, err := s.intervals.PresenceBoard(ctx)
	if err != nil {
		return nil, err
	}

	board := make([]*EmployeeStatus, 0, len(rows))
	for _, row := range rows {
		board = append(board, &EmployeeStatus{
			EmployeeID: row.EmployeeID,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			Color:      row.Color,
			Present:    row.IntervalID != nil,
			Since:      row.Since,
		})
	}
	return board, nil
}

// UpdateInterval corrects an interval's timestamps. An end not after the
// start is rejected before anything is written.
func (s *TrackingService) UpdateInterval(ctx context.Context, id string, startedAt time.Time, endedAt *time.Time) (*repository.Interval, error) {
	if endedAt != nil && !endedAt.After(startedAt) {
		return nil, errors.Validation(map[string]string{
			"ended_at": "must be after the interval start",
		})
	}

	if err := s.intervals.Update(ctx, id, startedAt, endedAt); err != nil {
		return nil, err
	}

	interval, err := s.intervals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishIntervalUpdated(ctx, interval)
	return interval, nil
}

// DeleteInterval removes an interval
func (s *TrackingService) DeleteInterval(ctx context.Context, id string) error {
	if err := s.intervals.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishIntervalDeleted(ctx, id)
	return nil
}
