package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// RecordLister is the read side of the daily stat store.
type RecordLister interface {
	ListDailyStats(ctx context.Context) []model.DailyStatRecord
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Today         string
	WindowDays    int
	Chart         ChartData
	Lifetime      Lifetime
	Streak        int
	LongestStreak int
	Operators     []OperatorRow
	Busiest       []model.DailyStatRecord
}

// BuildReport loads all records and prepares the dashboard data for the window.
func BuildReport(ctx context.Context, src RecordLister, now time.Time, windowDays int) Report {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	records := src.ListDailyStats(ctx)
	today := model.DateOf(now)
	chart := Project(records, now, windowDays)

	streak := 0
	if hasActivity(records, today) {
		streak = ComputeStreak(records, today)
	} else if len(chart.Dates) > 1 {
		// Streak still alive if yesterday counted.
		yesterday := chart.Dates[len(chart.Dates)-2]
		if hasActivity(records, yesterday) {
			streak = ComputeStreak(records, yesterday)
		}
	}

	return Report{
		Today:         today,
		WindowDays:    windowDays,
		Chart:         chart,
		Lifetime:      LifetimeTotals(records),
		Streak:        streak,
		LongestStreak: LongestStreak(records),
		Operators:     OperatorBreakdown(RecordsSince(records, chart.Dates[0])),
		Busiest:       BusiestDays(records, 3),
	}
}

func hasActivity(records []model.DailyStatRecord, date string) bool {
	for _, r := range records {
		if r.Date == date && r.Total > 0 {
			return true
		}
	}
	return false
}

// RenderReport prints the plain-text dashboard.
func RenderReport(w io.Writer, r Report, totalWidth int, useColor bool) error {
	if r.Lifetime.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	lines := []string{
		fmt.Sprintf("Last %d days", r.WindowDays),
		r.Chart.Summary.String(),
		fmt.Sprintf("Lifetime: %d attempts • %d sessions • %.1f%% accuracy",
			r.Lifetime.Total, r.Lifetime.Sessions, r.Lifetime.Accuracy()*100),
		fmt.Sprintf("Streak: %d days (best %d)", r.Streak, r.LongestStreak),
		"Attempts trend: " + AttemptsTrend(r.Chart),
		"",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	width := PlotWidthFor(totalWidth)
	labels := ShortDates(r.Chart.Dates)
	if err := (Plot{
		Title:     fmt.Sprintf("Accuracy (last %d days)", r.WindowDays),
		Series:    []Series{{Name: "Accuracy", Values: r.Chart.Accuracy}},
		Labels:    labels,
		Unit:      "%",
		Width:     width,
		ZeroBased: true,
		Color:     useColor,
	}).Render(w); err != nil {
		return err
	}
	if err := (Plot{
		Title:     fmt.Sprintf("Avg time (ms, last %d days)", r.WindowDays),
		Series:    []Series{{Name: "Avg time", Values: IntsToFloats(r.Chart.AvgTimeMs)}},
		Labels:    labels,
		Width:     width,
		ZeroBased: true,
		Color:     useColor,
	}).Render(w); err != nil {
		return err
	}
	if err := PlotBars(w, fmt.Sprintf("Attempts (last %d days)", r.WindowDays), labels, IntsToFloats(r.Chart.Attempts), totalWidth); err != nil {
		return err
	}
	if err := PlotBars(w, fmt.Sprintf("Badges earned (last %d days)", r.WindowDays), labels, IntsToFloats(r.Chart.Badges), totalWidth); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderOperatorTable(w, r.Operators)
}

// AttemptsTrend renders the daily attempts, smoothed over trendWindow days, as a sparkline.
func AttemptsTrend(c ChartData) string {
	return Sparkline(MovingAverage(IntsToFloats(c.Attempts), trendWindow))
}

// RenderOperatorTable prints per-operator aggregates.
func RenderOperatorTable(w io.Writer, rows []OperatorRow) error {
	if _, err := fmt.Fprintln(w, "Per-Operator (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Op", "Accuracy", "Avg Time (s)", "Correct", "Total"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, OperatorCells(r))
	}
	for _, line := range formatTable(headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// OperatorCells formats one operator row for tabular display.
func OperatorCells(r OperatorRow) []string {
	acc, avg := "-", "-"
	if r.Stats.Total > 0 {
		acc = fmt.Sprintf("%.1f%%", r.Stats.Accuracy()*100)
		avg = FormatSeconds(r.Stats.AvgTimeMs())
	}
	return []string{
		r.Op.Symbol(),
		acc,
		avg,
		fmt.Sprintf("%d", r.Stats.Correct),
		fmt.Sprintf("%d", r.Stats.Total),
	}
}

// ShortDates trims ISO dates to MM-DD for axis labels.
func ShortDates(dates []string) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		if len(d) == len(model.DateLayout) {
			out[i] = d[5:]
		} else {
			out[i] = d
		}
	}
	return out
}
