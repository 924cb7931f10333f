package service

import (
	"context"
	"strconv"
	"time"

	"github.com/timbra/timbra-backend/internal/tracking/period"
	"github.com/timbra/timbra-backend/internal/tracking/report"
	"github.com/timbra/timbra-backend/internal/tracking/repository"
	"github.com/timbra/timbra-backend/pkg/logger"
)

// ComparisonLabel is the single bucket label of the month comparison chart.
const ComparisonLabel = "Ore Lavorate"

// TotalRow is one employee's total in the period totals report
type TotalRow struct {
	EmployeeID string  `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	TotalHours float64 `json:"total_hours"`
}

// DetailEntry is one interval row of the per-employee detail report.
// End and Hours are nil while the interval is open.
type DetailEntry struct {
	ID    string   `json:"id"`
	Date  string   `json:"date"`  // dd/mm/yyyy
	Start string   `json:"start"` // HH:MM:SS
	End   *string  `json:"end,omitempty"`
	Hours *float64 `json:"hours,omitempty"`
}

// EmployeeDetail is the per-employee detail report
type EmployeeDetail struct {
	Employee   *repository.Employee `json:"employee"`
	TotalHours float64              `json:"total_hours"`
	Entries    []*DetailEntry       `json:"entries"`
}

// ReportService orchestrates the report pipeline: resolve the period,
// aggregate, then shape the chart payload.
type ReportService struct {
	reports   *repository.ReportRepository
	intervals *repository.IntervalRepository
	employees *repository.EmployeeRepository
	logger    *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reports *repository.ReportRepository,
	intervals *repository.IntervalRepository,
	employees *repository.EmployeeRepository,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		reports:   reports,
		intervals: intervals,
		employees: employees,
		logger:    log,
	}
}

// Totals sums worked hours per employee over the selected period, most
// hours first. Employees with no intervals in the period are absent.
func (s *ReportService) Totals(ctx context.Context, periodRaw, year, month string) ([]*TotalRow, error) {
	kind := period.ParseKind(periodRaw, period.Month)
	rng := period.Resolve(kind, year, month, time.Now().UTC())

	totals, err := s.reports.EmployeeTotals(ctx, rng)
	if err != nil {
		return nil, err
	}

	rows := make([]*TotalRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, &TotalRow{
			EmployeeID: t.EmployeeID,
			FirstName:  t.FirstName,
			LastName:   t.LastName,
			TotalHours: report.Round2(t.TotalHours),
		})
	}
	return rows, nil
}

// EmployeeDetail lists one employee's intervals over the selected period,
// newest first, with the period total.
func (s *ReportService) EmployeeDetail(ctx context.Context, employeeID, periodRaw, year, month string) (*EmployeeDetail, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	kind := period.ParseKind(periodRaw, period.Month)
	rng := period.Resolve(kind, year, month, time.Now().UTC())

	entries, err := s.intervals.ListForEmployee(ctx, employeeID, rng)
	if err != nil {
		return nil, err
	}

	total, err := s.reports.TotalForEmployee(ctx, employeeID, rng)
	if err != nil {
		return nil, err
	}

	detail := &EmployeeDetail{
		Employee:   emp,
		TotalHours: report.Round2(total),
		Entries:    make([]*DetailEntry, 0, len(entries)),
	}
	for _, e := range entries {
		entry := &DetailEntry{
			ID:    e.ID,
			Date:  e.StartedAt.Format("02/01/2006"),
			Start: e.StartedAt.Format("15:04:05"),
		}
		if e.EndedAt != nil {
			end := e.EndedAt.Format("15:04:05")
			entry.End = &end
		}
		if e.Hours != nil {
			hours := report.Round2(*e.Hours)
			entry.Hours = &hours
		}
		detail.Entries = append(detail.Entries, entry)
	}
	return detail, nil
}

// Monthly returns the hours breakdown chart: twelve month buckets for a
// year period, one bucket per day otherwise. An empty employeeID covers
// all employees.
func (s *ReportService) Monthly(ctx context.Context, employeeID, periodRaw, year, month string) (*report.Series, error) {
	kind := period.ParseKind(periodRaw, period.Month)
	rng := period.ResolveBreakdown(kind, year, month, time.Now().UTC())

	if kind == period.Year {
		byMonth, err := s.reports.HoursByMonth(ctx, employeeID, rng)
		if err != nil {
			return nil, err
		}
		series := report.MonthlySeries(byMonth)
		series.Year = strconv.Itoa(rng.Start.Year())
		return &series, nil
	}

	byDay, err := s.reports.HoursByDay(ctx, employeeID, rng)
	if err != nil {
		return nil, err
	}
	series := report.DailySeries(rng, byDay)
	return &series, nil
}

// Weekdays returns the average hours per weekday over the selected period,
// Sunday first. Open intervals never enter an average.
func (s *ReportService) Weekdays(ctx context.Context, employeeID, periodRaw, year, month string) (*report.Series, error) {
	kind := period.ParseKind(periodRaw, period.Month)
	rng := period.Resolve(kind, year, month, time.Now().UTC())

	byWeekday, err := s.reports.AvgHoursByWeekday(ctx, employeeID, rng)
	if err != nil {
		return nil, err
	}
	series := report.WeekdaySeries(byWeekday)
	return &series, nil
}

// Comparison returns one series per employee, every employee included in
// name order. Month periods compare a single total bar per employee, any
// other period compares twelve-month lines.
func (s *ReportService) Comparison(ctx context.Context, periodRaw, year, month string) (*report.MultiSeries, error) {
	kind := period.ParseKind(periodRaw, period.Month)
	now := time.Now().UTC()

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}

	if kind == period.Month || kind == period.SpecificMonth {
		rng := period.ResolveBreakdown(kind, year, month, now)
		multi := &report.MultiSeries{
			Labels:   []string{ComparisonLabel},
			Datasets: make([]report.Dataset, 0, len(employees)),
		}
		for i, emp := range employees {
			total, err := s.reports.TotalForEmployee(ctx, emp.ID, rng)
			if err != nil {
				return nil, err
			}
			label := report.DisplayName(emp.LastName, emp.FirstName)
			multi.Datasets = append(multi.Datasets, report.BarDataset(i, label, total))
		}
		return multi, nil
	}

	rng := period.ResolveBreakdown(period.Year, year, month, now)
	multi := &report.MultiSeries{
		Labels:   report.MonthShortLabels,
		Datasets: make([]report.Dataset, 0, len(employees)),
		Year:     strconv.Itoa(rng.Start.Year()),
	}
	for i, emp := range employees {
		byMonth, err := s.reports.HoursByMonth(ctx, emp.ID, rng)
		if err != nil {
			return nil, err
		}
		label := report.DisplayName(emp.LastName, emp.FirstName)
		multi.Datasets = append(multi.Datasets, report.LineDataset(i, label, byMonth))
	}
	return multi, nil
}
