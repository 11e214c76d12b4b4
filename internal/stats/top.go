package stats

import (
	"sort"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// BusiestDays returns the n records with the most attempts, newest first on ties.
func BusiestDays(records []model.DailyStatRecord, n int) []model.DailyStatRecord {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	items := make([]model.DailyStatRecord, 0, len(records))
	for _, r := range records {
		if r.Total > 0 {
			items = append(items, r)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Total == items[j].Total {
			return items[i].Date > items[j].Date
		}
		return items[i].Total > items[j].Total
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
