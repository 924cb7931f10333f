package repository

import (
	"context"
	"fmt"

	"github.com/timbra/timbra-backend/internal/tracking/period"
	"github.com/timbra/timbra-backend/pkg/database"
)

// GroupBy selects the bucketing dimension of an hours aggregation.
type GroupBy string

const (
	GroupByDay     GroupBy = "day"
	GroupByMonth   GroupBy = "month"
	GroupByWeekday GroupBy = "weekday"
)

// groupExprs maps each dimension to its SQL bucket expression. Grouping is
// enum-driven: the expression is never built from request input.
var groupExprs = map[GroupBy]string{
	GroupByDay:     `to_char(started_at, 'YYYY-MM-DD')`,
	GroupByMonth:   `to_char(started_at, 'MM')`,
	GroupByWeekday: `EXTRACT(DOW FROM started_at)::int::text`,
}

// hoursExpr computes worked hours for a row, counting open intervals as zero.
const hoursExpr = `CASE WHEN ended_at IS NOT NULL
	THEN EXTRACT(EPOCH FROM (ended_at - started_at)) / 3600 ELSE 0 END`

// EmployeeTotal is one row of the totals report.
type EmployeeTotal struct {
	EmployeeID string  `db:"employee_id" json:"employee_id"`
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	TotalHours float64 `db:"total_hours" json:"total_hours"`
}

type bucketRow struct {
	Bucket string  `db:"bucket"`
	Hours  float64 `db:"hours"`
}

// ReportRepository runs the aggregation queries behind the report endpoints
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// EmployeeTotals sums worked hours per employee over the range, most hours
// first. Only employees with at least one interval in the range appear.
func (r *ReportRepository) EmployeeTotals(ctx context.Context, rng period.Range) ([]*EmployeeTotal, error) {
	totals := []*EmployeeTotal{}
	err := r.db.SelectContext(ctx, &totals, `
		SELECT e.id AS employee_id, e.first_name, e.last_name,
		       SUM(`+hoursExpr+`) AS total_hours
		FROM employees e
		JOIN intervals i ON i.employee_id = e.id
		WHERE i.started_at BETWEEN $1 AND $2
		GROUP BY e.id, e.first_name, e.last_name
		ORDER BY total_hours DESC
	`, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// TotalForEmployee sums one employee's worked hours over the range.
func (r *ReportRepository) TotalForEmployee(ctx context.Context, employeeID string, rng period.Range) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(`+hoursExpr+`), 0)
		FROM intervals
		WHERE employee_id = $1 AND started_at BETWEEN $2 AND $3
	`, employeeID, rng.Start, rng.End)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// HoursByDay sums worked hours per calendar day. Keys are "2006-01-02" day
// strings; days without intervals are absent. An empty employeeID covers
// all employees.
func (r *ReportRepository) HoursByDay(ctx context.Context, employeeID string, rng period.Range) (map[string]float64, error) {
	return r.sumGrouped(ctx, GroupByDay, employeeID, rng)
}

// HoursByMonth sums worked hours per month of the year. Keys are month
// numbers 1..12; months without intervals are absent.
func (r *ReportRepository) HoursByMonth(ctx context.Context, employeeID string, rng period.Range) (map[int]float64, error) {
	buckets, err := r.sumGrouped(ctx, GroupByMonth, employeeID, rng)
	if err != nil {
		return nil, err
	}
	return intKeys(buckets)
}

// AvgHoursByWeekday averages hours per weekday over closed intervals only;
// including open ones would drag every average toward zero. Keys are
// Postgres DOW values 0 (Sunday) to 6.
func (r *ReportRepository) AvgHoursByWeekday(ctx context.Context, employeeID string, rng period.Range) (map[int]float64, error) {
	query := `
		SELECT ` + groupExprs[GroupByWeekday] + ` AS bucket,
		       AVG(EXTRACT(EPOCH FROM (ended_at - started_at)) / 3600) AS hours
		FROM intervals
		WHERE started_at BETWEEN $1 AND $2 AND ended_at IS NOT NULL
	`
	args := []any{rng.Start, rng.End}
	if employeeID != "" {
		query += ` AND employee_id = $3`
		args = append(args, employeeID)
	}
	query += ` GROUP BY bucket ORDER BY bucket`

	buckets, err := r.selectBuckets(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return intKeys(buckets)
}

func (r *ReportRepository) sumGrouped(ctx context.Context, groupBy GroupBy, employeeID string, rng period.Range) (map[string]float64, error) {
	query := `
		SELECT ` + groupExprs[groupBy] + ` AS bucket, SUM(` + hoursExpr + `) AS hours
		FROM intervals
		WHERE started_at BETWEEN $1 AND $2
	`
	args := []any{rng.Start, rng.End}
	if employeeID != "" {
		query += ` AND employee_id = $3`
		args = append(args, employeeID)
	}
	query += ` GROUP BY bucket ORDER BY bucket`

	return r.selectBuckets(ctx, query, args)
}

func (r *ReportRepository) selectBuckets(ctx context.Context, query string, args []any) (map[string]float64, error) {
	rows := []bucketRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	buckets := make(map[string]float64, len(rows))
	for _, row := range rows {
		buckets[row.Bucket] = row.Hours
	}
	return buckets, nil
}

func intKeys(buckets map[string]float64) (map[int]float64, error) {
	out := make(map[int]float64, len(buckets))
	for k, v := range buckets {
		var n int
		if _, err := fmt.Sscanf(k, "%d", &n); err != nil {
			return nil, fmt.Errorf("unexpected bucket key %q: %w", k, err)
		}
		out[n] = v
	}
	return out, nil
}
