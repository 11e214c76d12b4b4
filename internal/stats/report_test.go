package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mathdrill/internal/model"
)

type staticRecords []model.DailyStatRecord

func (s staticRecords) ListDailyStats(context.Context) []model.DailyStatRecord {
	return s
}

func record(date string, total, correct int, timeMs int64) model.DailyStatRecord {
	r := model.NewDailyStatRecord(date)
	r.Total = total
	r.Correct = correct
	r.TotalTimeMs = timeMs
	r.Sessions = 1
	r.PerOp[model.OpAdd] = model.OpStats{Total: total, Correct: correct, TimeMs: timeMs}
	r.ModeCount[model.ModeEndless] = 1
	Recompute(&r)
	return r
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	src := staticRecords{
		record("2024-02-01", 100, 50, 100000),
		record("2024-03-08", 10, 9, 20000),
		record("2024-03-09", 20, 18, 30000),
	}

	report := BuildReport(context.Background(), src, now, 7)
	if report.Today != "2024-03-10" {
		t.Fatalf("unexpected today: %s", report.Today)
	}
	if report.Lifetime.Total != 130 || report.Lifetime.Sessions != 3 {
		t.Fatalf("unexpected lifetime: %+v", report.Lifetime)
	}
	if report.Streak != 2 {
		t.Fatalf("expected streak 2 carried from yesterday, got %d", report.Streak)
	}
	if report.Chart.Summary.Attempts != 30 {
		t.Fatalf("expected 30 windowed attempts, got %d", report.Chart.Summary.Attempts)
	}
	add := report.Operators[0]
	if add.Op != model.OpAdd || add.Stats.Total != 30 {
		t.Fatalf("expected windowed addition totals, got %+v", add)
	}
	if len(report.Busiest) != 3 || report.Busiest[0].Date != "2024-02-01" {
		t.Fatalf("unexpected busiest days: %+v", report.Busiest)
	}
}

func TestRenderReport(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	report := BuildReport(context.Background(), staticRecords{record("2024-03-10", 20, 19, 30000)}, now, 7)

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 80, false); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Last 7 days",
		"Attempts: 20 • Accuracy: 95% • Avg time: 1.5s • Badges earned: 0",
		"Accuracy (last 7 days)",
		"Attempts (last 7 days)",
		"Attempts trend:       @",
		"Per-Operator (Windowed)",
		"03-10",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	report := BuildReport(context.Background(), staticRecords{}, time.Now(), 7)
	if err := RenderReport(&buf, report, 80, false); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions recorded yet." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestAttemptsTrend(t *testing.T) {
	chart := ChartData{Attempts: []int{0, 0, 0, 0, 0, 0, 20}}
	if got := AttemptsTrend(chart); got != "      @" {
		t.Fatalf("unexpected trend %q", got)
	}
	if got := AttemptsTrend(ChartData{}); got != "" {
		t.Fatalf("expected empty trend, got %q", got)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if same := MovingAverage([]float64{4, 8}, 1); same[0] != 4 || same[1] != 8 {
		t.Fatalf("window 1 should copy values, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 2, 3}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{2, 2}); got != "++" {
		t.Fatalf("flat series should use the middle glyph, got %q", got)
	}
}
