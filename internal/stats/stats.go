// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/mathdrill/internal/model"
)

const (
	sparkChars  = " .:-=+*#%@"
	trendWindow = 3
)

// Lifetime holds all-time totals.
type Lifetime struct {
	Total    int `json:"total"`
	Correct  int `json:"correct"`
	Sessions int `json:"sessions"`
}

// Accuracy returns Correct/Total or 0.
func (l Lifetime) Accuracy() float64 {
	if l.Total <= 0 {
		return 0
	}
	return float64(l.Correct) / float64(l.Total)
}

// LifetimeTotals sums every stored record.
func LifetimeTotals(records []model.DailyStatRecord) Lifetime {
	var l Lifetime
	for _, r := range records {
		l.Total += r.Total
		l.Correct += r.Correct
		l.Sessions += r.Sessions
	}
	return l
}

// WithSession adds a just-finished session that is not yet part of the stored records.
func (l Lifetime) WithSession(s *model.Session) Lifetime {
	l.Total += s.Total
	l.Correct += s.Correct
	l.Sessions++
	return l
}

// OperatorRow is one operator's totals across a set of records.
type OperatorRow struct {
	Op    model.Operator `json:"op"`
	Stats model.OpStats  `json:"stats"`
}

// OperatorBreakdown sums per-operator counters, in canonical operator order.
func OperatorBreakdown(records []model.DailyStatRecord) []OperatorRow {
	totals := make(map[model.Operator]model.OpStats, len(model.Operators))
	for _, r := range records {
		for op, v := range r.PerOp {
			totals[op] = totals[op].Add(v)
		}
	}
	rows := make([]OperatorRow, 0, len(model.Operators))
	for _, op := range model.Operators {
		rows = append(rows, OperatorRow{Op: op, Stats: totals[op]})
	}
	return rows
}

// RecordsSince keeps records whose date is on or after from.
func RecordsSince(records []model.DailyStatRecord, from string) []model.DailyStatRecord {
	out := make([]model.DailyStatRecord, 0, len(records))
	for _, r := range records {
		if r.Date >= from {
			out = append(out, r)
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := seriesMinMaxSingle(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// IntsToFloats converts an int series for plotting.
func IntsToFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
