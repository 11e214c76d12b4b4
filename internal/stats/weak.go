package stats

import (
	"sort"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// WeakestOperators returns up to top practiced operators ordered by lowest accuracy.
// Operators with no attempts are skipped.
func WeakestOperators(rows []OperatorRow, top int) []model.Operator {
	candidates := make([]OperatorRow, 0, len(rows))
	for _, r := range rows {
		if r.Stats.Total > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ai := candidates[i].Stats.Accuracy()
		aj := candidates[j].Stats.Accuracy()
		if ai == aj {
			return candidates[i].Stats.AvgTimeMs() > candidates[j].Stats.AvgTimeMs()
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]model.Operator, 0, top)
	for _, c := range candidates[:top] {
		out = append(out, c.Op)
	}
	return out
}
