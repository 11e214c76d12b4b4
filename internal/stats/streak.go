package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// MaxStreakDays caps the backwards walk of ComputeStreak.
const MaxStreakDays = 3650

// ComputeStreak counts consecutive practice days ending at endingDate.
// endingDate always counts as the first day; each earlier calendar day extends
// the streak only while a record with Total > 0 exists for it.
func ComputeStreak(records []model.DailyStatRecord, endingDate string) int {
	day, err := time.Parse(model.DateLayout, endingDate)
	if err != nil {
		return 0
	}
	active := activeDays(records)

	streak := 1
	for streak < MaxStreakDays {
		day = day.AddDate(0, 0, -1)
		if !active[day.Format(model.DateLayout)] {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days with Total > 0.
func LongestStreak(records []model.DailyStatRecord) int {
	active := activeDays(records)
	if len(active) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(active))
	for d := range active {
		t, err := time.Parse(model.DateLayout, d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 0, 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func activeDays(records []model.DailyStatRecord) map[string]bool {
	active := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Total > 0 {
			active[r.Date] = true
		}
	}
	return active
}
