package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// DefaultWindowDays is the dashboard window when none is configured.
const DefaultWindowDays = 7

// ChartData holds per-day series for a trailing window of calendar days.
type ChartData struct {
	Dates     []string  `json:"dates"`
	Accuracy  []float64 `json:"accuracy"`
	Attempts  []int     `json:"attempts"`
	AvgTimeMs []int     `json:"avgTimeMs"`
	Badges    []int     `json:"badgesEarned"`
	Summary   Summary   `json:"summary"`
}

// Summary rolls up a chart window.
type Summary struct {
	Attempts  int     `json:"attempts"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
	AvgTimeMs float64 `json:"avgTimeMs"`
	Badges    int     `json:"badgesEarned"`
}

// String renders the one-line dashboard summary.
func (s Summary) String() string {
	avg := "—"
	if s.AvgTimeMs > 0 {
		avg = FormatSeconds(s.AvgTimeMs)
	}
	return fmt.Sprintf("Attempts: %d • Accuracy: %d%% • Avg time: %ss • Badges earned: %d",
		s.Attempts, int(math.Round(s.Accuracy*100)), avg, s.Badges)
}

// LastNDates returns n contiguous calendar dates ending at today, oldest first.
func LastNDates(today time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = day.AddDate(0, 0, i-(n-1)).Format(model.DateLayout)
	}
	return out
}

// Project builds chart series for the windowDays calendar days ending today.
// Days without a record contribute zeros.
func Project(records []model.DailyStatRecord, today time.Time, windowDays int) ChartData {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	byDate := make(map[string]model.DailyStatRecord, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	dates := LastNDates(today, windowDays)
	data := ChartData{
		Dates:     dates,
		Accuracy:  make([]float64, len(dates)),
		Attempts:  make([]int, len(dates)),
		AvgTimeMs: make([]int, len(dates)),
		Badges:    make([]int, len(dates)),
	}

	var avgSum float64
	var avgCount int
	for i, d := range dates {
		r, ok := byDate[d]
		if !ok {
			continue
		}
		if r.Total > 0 {
			data.Accuracy[i] = math.Round(float64(r.Correct)/float64(r.Total)*1000) / 10
		}
		data.Attempts[i] = r.Total
		data.AvgTimeMs[i] = int(math.Round(r.AvgTimeMs))
		data.Badges[i] = r.BadgesEarned

		data.Summary.Attempts += r.Total
		data.Summary.Correct += r.Correct
		data.Summary.Badges += r.BadgesEarned
		if r.AvgTimeMs > 0 {
			avgSum += r.AvgTimeMs
			avgCount++
		}
	}
	if data.Summary.Attempts > 0 {
		data.Summary.Accuracy = float64(data.Summary.Correct) / float64(data.Summary.Attempts)
	}
	if avgCount > 0 {
		data.Summary.AvgTimeMs = avgSum / float64(avgCount)
	}
	return data
}

// FormatSeconds renders milliseconds as seconds rounded to a tenth.
func FormatSeconds(ms float64) string {
	return fmt.Sprintf("%.1f", math.Round(ms/100)/10)
}
