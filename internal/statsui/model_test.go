package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/stats"
)

type fakeSource struct {
	recs []model.DailyStatRecord
}

func (f fakeSource) ListDailyStats(context.Context) []model.DailyStatRecord {
	return f.recs
}

func (f fakeSource) GetDailyStat(_ context.Context, date string) *model.DailyStatRecord {
	for _, r := range f.recs {
		if r.Date == date {
			rec := r
			return &rec
		}
	}
	return nil
}

type fakeBadges []string

func (f fakeBadges) Unlocked(context.Context) []string {
	return f
}

func day(date string, total, correct int) model.DailyStatRecord {
	rec := model.NewDailyStatRecord(date)
	rec.Total = total
	rec.Correct = correct
	rec.TotalTimeMs = int64(total) * 1500
	rec.Sessions = 1
	rec.ModeCount[model.ModeKumon] = 1
	rec.PerOp[model.OpAdd] = model.OpStats{Total: total, Correct: correct, TimeMs: int64(total) * 1500}
	stats.Recompute(&rec)
	return rec
}

func newTestModel(recs ...model.DailyStatRecord) *Model {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewModel(fakeSource{recs: recs}, fakeBadges{"first_session"}, Config{
		Now: func() time.Time { return now },
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsSummary(t *testing.T) {
	m := newTestModel(day("2024-03-09", 20, 18), day("2024-03-10", 20, 20))
	view := m.View()
	assert.Contains(t, view, "Overview")
	assert.Contains(t, view, "Window: 7 days")
	assert.Contains(t, view, "Streak: 2")
	assert.Contains(t, view, "Attempts: 40")
	assert.Equal(t, 7, len(m.report.Chart.Dates))
}

func TestEmptyOverview(t *testing.T) {
	m := newTestModel()
	assert.Contains(t, m.View(), "No sessions recorded yet.")
}

func TestWindowCycles(t *testing.T) {
	m := newTestModel(day("2024-03-10", 20, 20))
	m.Update(keyRunes("="))
	assert.Equal(t, 14, m.window)
	assert.Len(t, m.report.Chart.Dates, 14)
	m.Update(keyRunes("="))
	m.Update(keyRunes("="))
	assert.Equal(t, 30, m.window)
	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	assert.Equal(t, 7, m.window)
}

func TestWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{7, 14, 7},
		{10, 14, 7},
		{14, 30, 7},
		{30, 30, 14},
		{90, 30, 30},
	}
	for _, tc := range cases {
		if got := nextWindow(tc.in); got != tc.next {
			t.Fatalf("nextWindow(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevWindow(tc.in); got != tc.prev {
			t.Fatalf("prevWindow(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}

func TestOperatorsTab(t *testing.T) {
	m := newTestModel(day("2024-03-10", 20, 15))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, tabOperators, m.activeTab)
	view := m.View()
	assert.Contains(t, view, "Accuracy")
	assert.Contains(t, view, "75.0%")
	assert.Len(t, m.opTable.Rows(), len(model.Operators))
}

func TestBadgesTab(t *testing.T) {
	m := newTestModel(day("2024-03-10", 20, 15))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, tabBadges, m.activeTab)
	view := m.View()
	assert.Contains(t, view, "Unlocked 1 of 7")
	assert.Contains(t, view, "First Session")
}

func TestDayLookup(t *testing.T) {
	m := newTestModel(day("2024-03-08", 10, 5))
	m.Update(keyRunes("/"))
	require.True(t, m.dayMode)
	assert.Equal(t, "2024-03-10", m.dayInput.Value())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.dayError, "no practice recorded")

	m.dayInput.SetValue("2024-03-08")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.dayError)
	assert.Contains(t, m.dayDetail, "10 attempts")
	assert.Contains(t, m.dayDetail, "50.0% accuracy")

	m.dayInput.SetValue("nope")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.dayError, "invalid date")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.dayMode)
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "a  " {
		t.Fatalf("expected padded line, got %q", lines[0])
	}
}
