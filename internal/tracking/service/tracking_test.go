package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/logger"
	"github.com/timbra/timbra-backend/pkg/testutil"
)

// fakePublisher records published events for assertions
type fakePublisher struct {
	mu               sync.Mutex
	punches          []string // "in" or "out"
	intervalsUpdated []string
	intervalsDeleted []string
	employeesCreated []string
	employeesUpdated []string
	employeesDeleted []string
}

func (f *fakePublisher) PublishPunch(_ context.Context, _ *repository.Interval, clockedIn bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if clockedIn {
		f.punches = append(f.punches, "in")
	} else {
		f.punches = append(f.punches, "out")
	}
}

func (f *fakePublisher) PublishIntervalUpdated(_ context.Context, interval *repository.Interval) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervalsUpdated = append(f.intervalsUpdated, interval.ID)
}

func (f *fakePublisher) PublishIntervalDeleted(_ context.Context, intervalID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervalsDeleted = append(f.intervalsDeleted, intervalID)
}

func (f *fakePublisher) PublishEmployeeCreated(_ context.Context, emp *repository.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employeesCreated = append(f.employeesCreated, emp.ID)
}

func (f *fakePublisher) PublishEmployeeUpdated(_ context.Context, emp *repository.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employeesUpdated = append(f.employeesUpdated, emp.ID)
}

func (f *fakePublisher) PublishEmployeeDeleted(_ context.Context, employeeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employeesDeleted = append(f.employeesDeleted, employeeID)
}

func newTrackingService(t *testing.T) (*service.TrackingService, *testutil.MockDB, *fakePublisher) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewWithDB(mockDB.DB, logger.New("test", "test"))
	publisher := &fakePublisher{}
	svc := service.NewTrackingService(
		repository.NewIntervalRepository(db),
		repository.NewEmployeeRepository(db),
		publisher,
		logger.New("test", "test"),
	)
	return svc, mockDB, publisher
}

func TestTrackingService_Punch_ClockIn(t *testing.T) {
	svc, mockDB, publisher := newTrackingService(t)

	employeeID := "3f2f3c61-6f8e-4a0b-9a31-64a2b7a0f001"
	now := time.Now().UTC()

	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs(employeeID).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs(employeeID).
		WillReturnRows(testutil.MockRows("id", "employee_id", "started_at", "ended_at", "created_at", "updated_at"))
	mockDB.Mock.ExpectQuery("INSERT INTO intervals").
		WithArgs(testutil.AnyUUID{}, employeeID, testutil.AnyTime{}).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))
	mockDB.ExpectCommit()

	result, err := svc.Punch(context.Background(), employeeID)
	require.NoError(t, err)

	assert.Equal(t, "in", result.Type)
	assert.NotEmpty(t, result.IntervalID)
	assert.Equal(t, []string{"in"}, publisher.punches)

	mockDB.ExpectationsWereMet(t)
}

func TestTrackingService_Punch_ClockOut(t *testing.T) {
	svc, mockDB, publisher := newTrackingService(t)

	employeeID := "3f2f3c61-6f8e-4a0b-9a31-64a2b7a0f001"
	start := time.Now().UTC().Add(-8 * time.Hour)

	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs(employeeID).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs(employeeID).
		WillReturnRows(testutil.MockRows("id", "employee_id", "started_at", "ended_at", "created_at", "updated_at").
			AddRow("open-id", employeeID, start, nil, start, start))
	mockDB.Mock.ExpectQuery("UPDATE intervals").
		WithArgs("open-id", testutil.AnyTime{}).
		WillReturnRows(testutil.MockRows("updated_at").AddRow(time.Now().UTC()))
	mockDB.ExpectCommit()

	result, err := svc.Punch(context.Background(), employeeID)
	require.NoError(t, err)

	assert.Equal(t, "out", result.Type)
	assert.Equal(t, "open-id", result.IntervalID)
	assert.Equal(t, []string{"out"}, publisher.punches)
}

func TestTrackingService_Punch_UnknownEmployee(t *testing.T) {
	svc, mockDB, publisher := newTrackingService(t)

	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))

	result, err := svc.Punch(context.Background(), "ghost")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, publisher.punches, "no event for a rejected punch")
}

func TestTrackingService_UpdateInterval_RejectsEndBeforeStart(t *testing.T) {
	svc, mockDB, publisher := newTrackingService(t)

	start := time.Now().UTC()
	end := start.Add(-time.Minute)

	// Rejected before any query runs
	interval, err := svc.UpdateInterval(context.Background(), "int-1", start, &end)
	require.Error(t, err)
	assert.Nil(t, interval)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, publisher.intervalsUpdated)

	mockDB.ExpectationsWereMet(t)
}

func TestTrackingService_UpdateInterval_RejectsEndEqualStart(t *testing.T) {
	svc, _, _ := newTrackingService(t)

	start := time.Now().UTC()
	_, err := svc.UpdateInterval(context.Background(), "int-1", start, &start)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestTrackingService_UpdateInterval(t *testing.T) {
	svc, mockDB, publisher := newTrackingService(t)

	start := time.Date(2025, time.June, 18, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	mockDB.Mock.ExpectExec("UPDATE intervals").
		WithArgs("int-1", start, &end).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("FROM intervals").
		WithArgs("int-1").
		WillReturnRows(testutil.MockRows("id", "employee_id", "started_at", "ended_at", "created_at", "updated_at").
			AddRow("int-1", "emp-1", start, end, start, end))

	interval, err := svc.UpdateInterval(context.Background(), "int-1", start, &end)
	require.NoError(t, err)
	assert.Equal(t, "int-1", interval.ID)
	assert.Equal(t, []string{"int-1"}, publisher.intervalsUpdated)
}

func TestTrackingService_DeleteInterval(t *testing.T) {
	svc, mockDB, publisher := newTrackingService(t)

	mockDB.Mock.ExpectExec("DELETE FROM intervals").
		WithArgs("int-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.DeleteInterval(context.Background(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"int-1"}, publisher.intervalsDeleted)
}

func TestTrackingService_CurrentStatus(t *testing.T) {
	svc, mockDB, _ := newTrackingService(t)

	since := time.Now().UTC().Add(-2 * time.Hour)
	mockDB.Mock.ExpectQuery("FROM employees e").
		WillReturnRows(testutil.MockRows("employee_id", "first_name", "last_name", "color", "interval_id", "since").
			AddRow("emp-1", "Mario", "Rossi", "#4361ee", "int-1", since).
			AddRow("emp-2", "Luigi", "Verdi", "#e63946", nil, nil))

	board, err := svc.CurrentStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.True(t, board[0].Present)
	require.NotNil(t, board[0].Since)
	assert.False(t, board[1].Present)
	assert.Nil(t, board[1].Since)
}
