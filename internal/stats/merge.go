package stats

import "github.com/verte-zerg/mathdrill/internal/model"

// MergeSession folds a finished session into the daily record for date.
// existing may be nil for the first session of the day; it is never mutated.
// Counters are added, Sessions and the mode count grow by one, and the derived
// Accuracy and AvgTimeMs are recomputed from the new totals.
func MergeSession(existing *model.DailyStatRecord, s *model.Session, date string) model.DailyStatRecord {
	out := model.NewDailyStatRecord(date)
	if existing != nil {
		out.Total = existing.Total
		out.Correct = existing.Correct
		out.TotalTimeMs = existing.TotalTimeMs
		out.Sessions = existing.Sessions
		out.BadgesEarned = existing.BadgesEarned
		for op, v := range existing.PerOp {
			out.PerOp[op] = v
		}
		for m, v := range existing.ModeCount {
			out.ModeCount[m] = v
		}
	}

	out.Total += s.Total
	out.Correct += s.Correct
	out.TotalTimeMs += s.TotalTimeMs
	out.Sessions++
	for op, v := range s.PerOp {
		out.PerOp[op] = out.PerOp[op].Add(v)
	}
	out.ModeCount[s.Mode]++

	Recompute(&out)
	return out
}

// Recompute refreshes the derived fields of rec from its counters.
func Recompute(rec *model.DailyStatRecord) {
	if rec.Total > 0 {
		rec.Accuracy = float64(rec.Correct) / float64(rec.Total)
		rec.AvgTimeMs = float64(rec.TotalTimeMs) / float64(rec.Total)
		return
	}
	rec.Accuracy = 0
	rec.AvgTimeMs = 0
}
