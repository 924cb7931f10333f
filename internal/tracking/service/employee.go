package service

import (
	"context"

	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// EmployeeService handles employee management
type EmployeeService struct {
	employees *repository.EmployeeRepository
	publisher EventPublisher
	logger    *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	employees *repository.EmployeeRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		publisher: publisher,
		logger:    log,
	}
}

// List lists all employees ordered by name
func (s *EmployeeService) List(ctx context.Context) ([]*repository.Employee, error) {
	return s.employees.List(ctx)
}

// Get gets an employee by ID
func (s *EmployeeService) Get(ctx context.Context, id string) (*repository.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

// Create creates a new employee
func (s *EmployeeService) Create(ctx context.Context, emp *repository.Employee) error {
	if err := s.employees.Create(ctx, emp); err != nil {
		return err
	}

	s.publisher.PublishEmployeeCreated(ctx, emp)
	s.logger.Info().Str("employee_id", emp.ID).Msg("employee created")
	return nil
}

// Update updates an employee's details
func (s *EmployeeService) Update(ctx context.Context, emp *repository.Employee) error {
	if err := s.employees.Update(ctx, emp); err != nil {
		return err
	}

	s.publisher.PublishEmployeeUpdated(ctx, emp)
	return nil
}

// Delete removes an employee and their intervals
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishEmployeeDeleted(ctx, id)
	s.logger.Info().Str("employee_id", id).Msg("employee deleted")
	return nil
}
