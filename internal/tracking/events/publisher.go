package events

import (
	"context"

	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/pkg/logger"
	"github.com/timbra/timbra-backend/pkg/messaging"
)

// TimeclockEventPublisher publishes time clock events. Publishing is
// fire-and-forget: a broker failure is logged but never fails the punch
// or edit that triggered it.
type TimeclockEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewTimeclockEventPublisher creates a new time clock event publisher
func NewTimeclockEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TimeclockEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeTimeclockEvents, "timeclock-service", log)
	if err != nil {
		return nil, err
	}

	return &TimeclockEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishPunch publishes a punch-in or punch-out event for an interval
func (p *TimeclockEventPublisher) PublishPunch(ctx context.Context, interval *repository.Interval, clockedIn bool) {
	eventType := messaging.EventPunchOut
	if clockedIn {
		eventType = messaging.EventPunchIn
	}

	data := messaging.PunchEvent{
		IntervalID: interval.ID,
		EmployeeID: interval.EmployeeID,
		StartedAt:  interval.StartedAt,
		EndedAt:    interval.EndedAt,
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("interval_id", interval.ID).Msg("failed to publish punch event")
	}
}

// PublishIntervalUpdated publishes an interval correction event
func (p *TimeclockEventPublisher) PublishIntervalUpdated(ctx context.Context, interval *repository.Interval) {
	data := messaging.IntervalUpdatedEvent{
		IntervalID: interval.ID,
		StartedAt:  interval.StartedAt,
		EndedAt:    interval.EndedAt,
	}

	if err := p.publisher.Publish(ctx, messaging.EventIntervalUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("interval_id", interval.ID).Msg("failed to publish interval updated event")
	}
}

// PublishIntervalDeleted publishes an interval deletion event
func (p *TimeclockEventPublisher) PublishIntervalDeleted(ctx context.Context, intervalID string) {
	data := messaging.IntervalDeletedEvent{IntervalID: intervalID}

	if err := p.publisher.Publish(ctx, messaging.EventIntervalDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("interval_id", intervalID).Msg("failed to publish interval deleted event")
	}
}

// PublishEmployeeCreated publishes an employee created event
func (p *TimeclockEventPublisher) PublishEmployeeCreated(ctx context.Context, emp *repository.Employee) {
	data := messaging.EmployeeCreatedEvent{
		EmployeeID: emp.ID,
		Name:       emp.FirstName + " " + emp.LastName,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeCreated, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", emp.ID).Msg("failed to publish employee created event")
	}
}

// PublishEmployeeUpdated publishes an employee updated event
func (p *TimeclockEventPublisher) PublishEmployeeUpdated(ctx context.Context, emp *repository.Employee) {
	data := messaging.EmployeeUpdatedEvent{
		EmployeeID: emp.ID,
		Fields:     map[string]any{"name": emp.FirstName + " " + emp.LastName, "color": emp.Color},
	}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", emp.ID).Msg("failed to publish employee updated event")
	}
}

// PublishEmployeeDeleted publishes an employee deleted event
func (p *TimeclockEventPublisher) PublishEmployeeDeleted(ctx context.Context, employeeID string) {
	data := messaging.EmployeeDeletedEvent{EmployeeID: employeeID}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", employeeID).Msg("failed to publish employee deleted event")
	}
}
