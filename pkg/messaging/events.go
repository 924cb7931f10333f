package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Punch events
	EventPunchIn  = "timeclock.punch.in"
	EventPunchOut = "timeclock.punch.out"

	// Interval events (admin corrections)
	EventIntervalUpdated = "timeclock.interval.updated"
	EventIntervalDeleted = "timeclock.interval.deleted"

	// Employee events
	EventEmployeeCreated = "timeclock.employee.created"
	EventEmployeeUpdated = "timeclock.employee.updated"
	EventEmployeeDeleted = "timeclock.employee.deleted"
)

// Exchange names
const (
	ExchangeTimeclockEvents = "timeclock.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// PunchEvent is published when an employee punches in or out
type PunchEvent struct {
	IntervalID string     `json:"interval_id"`
	EmployeeID string     `json:"employee_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// IntervalUpdatedEvent is published when an admin corrects an interval
type IntervalUpdatedEvent struct {
	IntervalID string     `json:"interval_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// IntervalDeletedEvent is published when an admin deletes an interval
type IntervalDeletedEvent struct {
	IntervalID string `json:"interval_id"`
}

// EmployeeCreatedEvent is published when an employee is created
type EmployeeCreatedEvent struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

// EmployeeUpdatedEvent is published when an employee is updated
type EmployeeUpdatedEvent struct {
	EmployeeID string         `json:"employee_id"`
	Fields     map[string]any `json:"fields"`
}

// EmployeeDeletedEvent is published when an employee is deleted
type EmployeeDeletedEvent struct {
	EmployeeID string `json:"employee_id"`
}
