package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/internal/tracking/service"
	"github.com/timbra/timbra-backend/pkg/database"
	"github.com/timbra/timbra-backend/pkg/errors"
	"github.com/timbra/timbra-backend/pkg/logger"
	"github.com/timbra/timbra-backend/pkg/testutil"
)

func newReportService(t *testing.T) (*service.ReportService, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewWithDB(mockDB.DB, logger.New("test", "test"))
	svc := service.NewReportService(
		repository.NewReportRepository(db),
		repository.NewIntervalRepository(db),
		repository.NewEmployeeRepository(db),
		logger.New("test", "test"),
	)
	return svc, mockDB
}

// february2024 is the resolved window for specific_month 2024-02
var (
	feb2024Start = time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	feb2024End   = time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)
)

func TestReportService_Totals(t *testing.T) {
	svc, mockDB := newReportService(t)

	mockDB.Mock.ExpectQuery("FROM employees e").
		WithArgs(feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("employee_id", "first_name", "last_name", "total_hours").
			AddRow("emp-1", "Mario", "Rossi", 160.12345).
			AddRow("emp-2", "Luigi", "Verdi", 80.0))

	rows, err := svc.Totals(context.Background(), "specific_month", "2024", "2")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 160.12, rows[0].TotalHours, "totals are rounded to two decimals")
	assert.Equal(t, "Verdi", rows[1].LastName)
}

func TestReportService_Totals_UnknownPeriodFallsBack(t *testing.T) {
	svc, mockDB := newReportService(t)

	// An unrecognized period resolves like "month"; only the args differ,
	// so match loosely and assert the call succeeds.
	mockDB.Mock.ExpectQuery("FROM employees e").
		WillReturnRows(testutil.MockRows("employee_id", "first_name", "last_name", "total_hours"))

	rows, err := svc.Totals(context.Background(), "decade", "", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportService_EmployeeDetail(t *testing.T) {
	svc, mockDB := newReportService(t)

	employeeID := "emp-1"
	now := time.Now().UTC()
	start := time.Date(2024, time.February, 5, 8, 30, 0, 0, time.UTC)
	end := start.Add(8*time.Hour + 15*time.Minute)

	mockDB.Mock.ExpectQuery("FROM employees").
		WithArgs(employeeID).
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at").
			AddRow(employeeID, "Mario", "Rossi", nil, nil, "#4361ee", now, now))
	mockDB.Mock.ExpectQuery("SELECT id, started_at, ended_at").
		WithArgs(employeeID, feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("id", "started_at", "ended_at", "hours").
			AddRow("int-2", start.AddDate(0, 0, 1), nil, nil).
			AddRow("int-1", start, end, 8.25))
	mockDB.Mock.ExpectQuery("SELECT COALESCE").
		WithArgs(employeeID, feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(8.25))

	detail, err := svc.EmployeeDetail(context.Background(), employeeID, "specific_month", "2024", "2")
	require.NoError(t, err)

	assert.Equal(t, "Rossi", detail.Employee.LastName)
	assert.Equal(t, 8.25, detail.TotalHours)
	require.Len(t, detail.Entries, 2)

	open := detail.Entries[0]
	assert.Equal(t, "06/02/2024", open.Date)
	assert.Nil(t, open.End)
	assert.Nil(t, open.Hours)

	closed := detail.Entries[1]
	assert.Equal(t, "05/02/2024", closed.Date)
	assert.Equal(t, "08:30:00", closed.Start)
	require.NotNil(t, closed.End)
	assert.Equal(t, "16:45:00", *closed.End)
	require.NotNil(t, closed.Hours)
	assert.Equal(t, 8.25, *closed.Hours)
}

func TestReportService_EmployeeDetail_UnknownEmployee(t *testing.T) {
	svc, mockDB := newReportService(t)

	mockDB.Mock.ExpectQuery("FROM employees").
		WithArgs("ghost").
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at"))

	detail, err := svc.EmployeeDetail(context.Background(), "ghost", "month", "", "")
	require.Error(t, err)
	assert.Nil(t, detail)
	assert.True(t, errors.IsNotFound(err))
}

func TestReportService_Monthly_YearPeriod(t *testing.T) {
	svc, mockDB := newReportService(t)

	yearStart := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC)

	mockDB.Mock.ExpectQuery("GROUP BY bucket").
		WithArgs(yearStart, yearEnd, "emp-1").
		WillReturnRows(testutil.MockRows("bucket", "hours").
			AddRow("03", 120.5).
			AddRow("07", 90.0))

	series, err := svc.Monthly(context.Background(), "emp-1", "year", "2023", "")
	require.NoError(t, err)

	require.Len(t, series.Labels, 12)
	require.Len(t, series.Data, 12)
	assert.Equal(t, "2023", series.Year)
	assert.Equal(t, 120.5, series.Data[2])
	assert.Equal(t, 90.0, series.Data[6])
	assert.Equal(t, 0.0, series.Data[0], "months without hours are zero-filled")
}

func TestReportService_Monthly_SpecificMonth(t *testing.T) {
	svc, mockDB := newReportService(t)

	mockDB.Mock.ExpectQuery("GROUP BY bucket").
		WithArgs(feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("bucket", "hours").
			AddRow("2024-02-05", 8.0))

	series, err := svc.Monthly(context.Background(), "", "specific_month", "2024", "2")
	require.NoError(t, err)

	require.Len(t, series.Labels, 29, "leap-year february has 29 daily buckets")
	assert.Equal(t, "01/02", series.Labels[0])
	assert.Equal(t, "29/02", series.Labels[28])
	assert.Equal(t, 8.0, series.Data[4])
	assert.Empty(t, series.Year)
}

func TestReportService_Weekdays(t *testing.T) {
	svc, mockDB := newReportService(t)

	mockDB.Mock.ExpectQuery("ended_at IS NOT NULL").
		WithArgs(feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("bucket", "hours").
			AddRow("1", 8.2).
			AddRow("5", 6.75))

	series, err := svc.Weekdays(context.Background(), "", "specific_month", "2024", "2")
	require.NoError(t, err)

	require.Len(t, series.Data, 7)
	assert.Equal(t, "Domenica", series.Labels[0])
	assert.Equal(t, 8.2, series.Data[1])
	assert.Equal(t, 6.75, series.Data[5])
	assert.Equal(t, 0.0, series.Data[0])
}

func TestReportService_Comparison_MonthBars(t *testing.T) {
	svc, mockDB := newReportService(t)

	now := time.Now().UTC()
	mockDB.Mock.ExpectQuery("ORDER BY last_name, first_name").
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at").
			AddRow("emp-1", "Anna", "Bianchi", nil, nil, "#4361ee", now, now).
			AddRow("emp-2", "Mario", "Rossi", nil, nil, "#4361ee", now, now))
	mockDB.Mock.ExpectQuery("SELECT COALESCE").
		WithArgs("emp-1", feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(120.0))
	mockDB.Mock.ExpectQuery("SELECT COALESCE").
		WithArgs("emp-2", feb2024Start, feb2024End).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(0.0))

	multi, err := svc.Comparison(context.Background(), "specific_month", "2024", "2")
	require.NoError(t, err)

	assert.Equal(t, []string{service.ComparisonLabel}, multi.Labels)
	require.Len(t, multi.Datasets, 2)
	assert.Equal(t, "Bianchi Anna", multi.Datasets[0].Label)
	assert.Equal(t, []float64{120.0}, multi.Datasets[0].Data)
	assert.Equal(t, []float64{0.0}, multi.Datasets[1].Data, "employees without hours still get a series")
	assert.NotEqual(t, multi.Datasets[0].BorderColor, multi.Datasets[1].BorderColor)
}

func TestReportService_Comparison_MonthPastYear(t *testing.T) {
	svc, mockDB := newReportService(t)

	// A month comparison for a past reference year covers the last month
	// of that year, not a rolling window anchored on now.
	dec2020Start := time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC)
	dec2020End := time.Date(2020, time.December, 31, 23, 59, 59, 0, time.UTC)

	now := time.Now().UTC()
	mockDB.Mock.ExpectQuery("ORDER BY last_name, first_name").
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at").
			AddRow("emp-1", "Anna", "Bianchi", nil, nil, "#4361ee", now, now))
	mockDB.Mock.ExpectQuery("SELECT COALESCE").
		WithArgs("emp-1", dec2020Start, dec2020End).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(152.0))

	multi, err := svc.Comparison(context.Background(), "month", "2020", "")
	require.NoError(t, err)

	require.Len(t, multi.Datasets, 1)
	assert.Equal(t, []float64{152.0}, multi.Datasets[0].Data)
	mockDB.ExpectationsWereMet(t)
}

func TestReportService_Comparison_YearLines(t *testing.T) {
	svc, mockDB := newReportService(t)

	yearStart := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC)

	now := time.Now().UTC()
	mockDB.Mock.ExpectQuery("ORDER BY last_name, first_name").
		WillReturnRows(testutil.MockRows("id", "first_name", "last_name", "email", "hire_date", "color", "created_at", "updated_at").
			AddRow("emp-1", "Anna", "Bianchi", nil, nil, "#4361ee", now, now))
	mockDB.Mock.ExpectQuery("GROUP BY bucket").
		WithArgs(yearStart, yearEnd, "emp-1").
		WillReturnRows(testutil.MockRows("bucket", "hours").AddRow("06", 150.0))

	multi, err := svc.Comparison(context.Background(), "year", "2023", "")
	require.NoError(t, err)

	assert.Equal(t, "2023", multi.Year)
	assert.Equal(t, "Gen", multi.Labels[0])
	require.Len(t, multi.Datasets, 1)
	require.Len(t, multi.Datasets[0].Data, 12)
	assert.Equal(t, 150.0, multi.Datasets[0].Data[5])
	assert.Equal(t, 0.1, multi.Datasets[0].Tension)
}
