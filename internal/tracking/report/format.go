// Package report shapes aggregation results into chart-ready payloads.
// It owns the fixed label sets, zero-filling of empty buckets, the
// two-decimal rounding applied at the presentation boundary, and the
// deterministic per-series colors.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/timbra/timbra-backend/internal/tracking/period"
)

// Month labels, January through December, as shown on the dashboard.
var MonthLabels = []string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// Abbreviated month labels used by the comparison line chart.
var MonthShortLabels = []string{
	"Gen", "Feb", "Mar", "Apr", "Mag", "Giu",
	"Lug", "Ago", "Set", "Ott", "Nov", "Dic",
}

// Weekday labels indexed by Postgres DOW (0 = Sunday).
var WeekdayLabels = []string{
	"Domenica", "Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato",
}

// palette holds the fixed series colors. Assignment is by employee index
// modulo the palette size and carries no meaning beyond telling lines apart.
var palette = []string{
	"rgba(54, 162, 235, %s)", "rgba(255, 99, 132, %s)", "rgba(75, 192, 192, %s)",
	"rgba(255, 206, 86, %s)", "rgba(153, 102, 255, %s)", "rgba(255, 159, 64, %s)",
	"rgba(199, 199, 199, %s)", "rgba(83, 102, 255, %s)", "rgba(40, 167, 69, %s)",
}

// SeriesColor returns the opaque palette color for a series index.
func SeriesColor(idx int) string {
	return fmt.Sprintf(palette[idx%len(palette)], "1")
}

// SeriesColorAlpha returns the palette color for a series index with the
// given alpha (e.g. "0.7").
func SeriesColorAlpha(idx int, alpha string) string {
	return fmt.Sprintf(palette[idx%len(palette)], alpha)
}

// Series is a single-series chart payload: data[i] belongs to labels[i].
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
	Year   string    `json:"year,omitempty"`
}

// Dataset is one series of a multi-series chart payload.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

// MultiSeries is the per-employee comparison payload.
type MultiSeries struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Year     string    `json:"year,omitempty"`
}

// Round2 rounds hour values to two decimals. Only formatted output is
// rounded; aggregation sums keep full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DailySeries zero-fills one bucket per calendar day of the range.
// Input keys are "2006-01-02" day strings, labels come out as "dd/mm".
func DailySeries(r period.Range, hoursByDay map[string]float64) Series {
	days := r.Days()
	s := Series{
		Labels: make([]string, 0, len(days)),
		Data:   make([]float64, 0, len(days)),
	}
	for _, day := range days {
		s.Labels = append(s.Labels, day.Format("02/01"))
		s.Data = append(s.Data, Round2(hoursByDay[day.Format("2006-01-02")]))
	}
	return s
}

// MonthlySeries zero-fills exactly twelve month buckets. Input keys are
// month numbers 1..12; out-of-range keys are dropped.
func MonthlySeries(hoursByMonth map[int]float64) Series {
	return monthSeries(MonthLabels, hoursByMonth)
}

func monthSeries(labels []string, hoursByMonth map[int]float64) Series {
	s := Series{
		Labels: labels,
		Data:   make([]float64, 12),
	}
	for m, hours := range hoursByMonth {
		if m >= 1 && m <= 12 {
			s.Data[m-1] = Round2(hours)
		}
	}
	return s
}

// WeekdaySeries zero-fills exactly seven weekday buckets, Sunday first.
// Input keys are Postgres DOW values 0..6. A weekday with no closed
// intervals stays 0, never NaN.
func WeekdaySeries(avgByWeekday map[int]float64) Series {
	s := Series{
		Labels: WeekdayLabels,
		Data:   make([]float64, 7),
	}
	for dow, hours := range avgByWeekday {
		if dow >= 0 && dow <= 6 {
			s.Data[dow] = Round2(hours)
		}
	}
	return s
}

// BarDataset builds the single-value bar series used by the month-period
// comparison chart.
func BarDataset(idx int, label string, total float64) Dataset {
	return Dataset{
		Label:           label,
		Data:            []float64{Round2(total)},
		BackgroundColor: SeriesColorAlpha(idx, "0.7"),
		BorderColor:     SeriesColor(idx),
		BorderWidth:     1,
	}
}

// LineDataset builds the twelve-point line series used by the year-period
// comparison chart.
func LineDataset(idx int, label string, hoursByMonth map[int]float64) Dataset {
	fill := false
	return Dataset{
		Label:           label,
		Data:            monthSeries(MonthShortLabels, hoursByMonth).Data,
		BackgroundColor: SeriesColorAlpha(idx, "0.1"),
		BorderColor:     SeriesColor(idx),
		Fill:            &fill,
		Tension:         0.1,
	}
}

// DisplayName renders an employee name the way report series label them.
func DisplayName(lastName, firstName string) string {
	return strings.TrimSpace(lastName + " " + firstName)
}
