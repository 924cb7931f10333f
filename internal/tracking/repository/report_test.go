package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timbra/timbra-backend/internal/tracking/period"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/pkg/testutil"
)

var testRange = period.Range{
	Start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
}

func TestReportRepository_EmployeeTotals(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	mockDB.Mock.ExpectQuery("FROM employees e").
		WithArgs(testRange.Start, testRange.End).
		WillReturnRows(testutil.MockRows("employee_id", "first_name", "last_name", "total_hours").
			AddRow("emp-1", "Mario", "Rossi", 168.5).
			AddRow("emp-2", "Luigi", "Verdi", 140.0))

	totals, err := repo.EmployeeTotals(context.Background(), testRange)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "Rossi", totals[0].LastName)
	assert.Equal(t, 168.5, totals[0].TotalHours)
	assert.GreaterOrEqual(t, totals[0].TotalHours, totals[1].TotalHours, "rows come back most hours first")

	mockDB.ExpectationsWereMet(t)
}

func TestReportRepository_EmployeeTotals_Empty(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	mockDB.Mock.ExpectQuery("FROM employees e").
		WillReturnRows(testutil.MockRows("employee_id", "first_name", "last_name", "total_hours"))

	totals, err := repo.EmployeeTotals(context.Background(), testRange)
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NotNil(t, totals, "no rows yields an empty slice, not nil")
}

func TestReportRepository_TotalForEmployee(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	mockDB.Mock.ExpectQuery("SELECT COALESCE").
		WithArgs("emp-1", testRange.Start, testRange.End).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(42.25))

	total, err := repo.TotalForEmployee(context.Background(), "emp-1", testRange)
	require.NoError(t, err)
	assert.Equal(t, 42.25, total)
}

func TestReportRepository_HoursByDay(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	mockDB.Mock.ExpectQuery("GROUP BY bucket").
		WithArgs(testRange.Start, testRange.End).
		WillReturnRows(testutil.MockRows("bucket", "hours").
			AddRow("2025-06-02", 7.5).
			AddRow("2025-06-03", 8.0))

	buckets, err := repo.HoursByDay(context.Background(), "", testRange)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"2025-06-02": 7.5, "2025-06-03": 8.0}, buckets)
}

func TestReportRepository_HoursByDay_FiltersByEmployee(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	mockDB.Mock.ExpectQuery("AND employee_id").
		WithArgs(testRange.Start, testRange.End, "emp-1").
		WillReturnRows(testutil.MockRows("bucket", "hours").AddRow("2025-06-02", 4.0))

	buckets, err := repo.HoursByDay(context.Background(), "emp-1", testRange)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"2025-06-02": 4.0}, buckets)
}

func TestReportRepository_HoursByMonth(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	year := period.Range{
		Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
	}

	mockDB.Mock.ExpectQuery("GROUP BY bucket").
		WithArgs(year.Start, year.End).
		WillReturnRows(testutil.MockRows("bucket", "hours").
			AddRow("01", 160.0).
			AddRow("11", 152.5))

	buckets, err := repo.HoursByMonth(context.Background(), "", year)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 160.0, 11: 152.5}, buckets, "zero-padded month keys parse to ints")
}

func TestReportRepository_AvgHoursByWeekday(t *testing.T) {
	db, mockDB := newTestDB(t)
	repo := repository.NewReportRepository(db)

	mockDB.Mock.ExpectQuery("ended_at IS NOT NULL").
		WithArgs(testRange.Start, testRange.End, "emp-1").
		WillReturnRows(testutil.MockRows("bucket", "hours").
			AddRow("0", 2.5).
			AddRow("1", 8.25))

	buckets, err := repo.AvgHoursByWeekday(context.Background(), "emp-1", testRange)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 2.5, 1: 8.25}, buckets)
}
