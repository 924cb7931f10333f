// Package period resolves a report period selection into a concrete date range.
//
// Two resolution policies exist because different report endpoints genuinely
// disagree on what a period means for past years: Resolve keeps rolling
// windows anchored on "now", while ResolveBreakdown pins past years to the
// last week/month of that year so day-by-day and comparison charts stay
// inside the selected year. Do not unify them.
package period

import (
	"strconv"
	"time"
)

// Kind is a caller-selected time-window policy.
type Kind string

const (
	Week          Kind = "week"
	Month         Kind = "month"
	SpecificMonth Kind = "specific_month"
	Year          Kind = "year"
)

// ParseKind maps a raw query value to a Kind, falling back to def for
// anything unknown. Malformed input never fails a report.
func ParseKind(raw string, def Kind) Kind {
	switch Kind(raw) {
	case Week, Month, SpecificMonth, Year:
		return Kind(raw)
	default:
		return def
	}
}

// Range is a resolved report window. Start is midnight of the first day,
// End is 23:59:59 of the last day, so a BETWEEN filter on the interval
// start timestamp covers both boundary days.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns every calendar day of the range, in order.
func (r Range) Days() []time.Time {
	var days []time.Time
	end := dayStart(r.End)
	for d := dayStart(r.Start); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Resolve maps a period selection to a date range. Used by the totals,
// per-employee detail and weekday distribution reports.
//
// Rules:
//   - week:  [now-7d, now]
//   - month: [now-30d, now]
//   - specific month: the calendar month; on parse failure, the current
//     month up to now
//   - year: the rolling last 365 days when the reference year is the
//     current one, the full calendar year for past years
func Resolve(kind Kind, year, month string, now time.Time) Range {
	switch kind {
	case Week:
		return rolling(now, 7)
	case Month:
		return rolling(now, 30)
	case SpecificMonth:
		y, m, ok := parseYearMonth(year, month)
		if !ok {
			return Range{Start: firstOfMonth(now), End: endOfDay(now)}
		}
		return calendarMonth(y, m, now.Location())
	default: // Year
		y := parseYear(year, now)
		if y == now.Year() {
			return rolling(now, 365)
		}
		return calendarYear(y, now.Location())
	}
}

// ResolveBreakdown maps a period selection to a date range for the
// day-by-day breakdown and cross-employee comparison reports. It matches
// Resolve for the current year but pins past reference years to windows
// inside that year:
//   - week:  the last week of the year  [Y-12-24, Y-12-31]
//   - month: the last month of the year [Y-12-01, Y-12-31]
//   - year:  always the full calendar year, so the twelve month-of-year
//     buckets never mix two different years
//   - specific month: on parse failure, the whole reference year
func ResolveBreakdown(kind Kind, year, month string, now time.Time) Range {
	y := parseYear(year, now)
	loc := now.Location()

	switch kind {
	case Week:
		if y == now.Year() {
			return rolling(now, 7)
		}
		return Range{
			Start: time.Date(y, time.December, 24, 0, 0, 0, 0, loc),
			End:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, loc)),
		}
	case Month:
		if y == now.Year() {
			return rolling(now, 30)
		}
		return Range{
			Start: time.Date(y, time.December, 1, 0, 0, 0, 0, loc),
			End:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, loc)),
		}
	case SpecificMonth:
		py, pm, ok := parseYearMonth(year, month)
		if !ok {
			return calendarYear(y, loc)
		}
		return calendarMonth(py, pm, loc)
	default: // Year
		return calendarYear(y, loc)
	}
}

func rolling(now time.Time, days int) Range {
	return Range{
		Start: dayStart(now.AddDate(0, 0, -days)),
		End:   endOfDay(now),
	}
}

func calendarMonth(y int, m time.Month, loc *time.Location) Range {
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)

	// December rolls to the 31st directly to avoid stepping into the
	// next year; every other month derives its last day from the first
	// day of the following month.
	var last time.Time
	if m == time.December {
		last = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	} else {
		last = time.Date(y, m+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	}

	return Range{Start: start, End: endOfDay(last)}
}

func calendarYear(y int, loc *time.Location) Range {
	return Range{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
		End:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, loc)),
	}
}

func parseYear(raw string, now time.Time) int {
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1 {
		return now.Year()
	}
	return y
}

func parseYearMonth(year, month string) (int, time.Month, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, time.Month(m), true
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
