// Package badges defines the achievement catalog and unlock evaluation.
package badges

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/mathdrill/internal/store"
)

// MetaKey is the meta record holding the unlocked badge ids.
const MetaKey = "badges_unlocked"

// Context is the state badge predicates are evaluated against.
// Lifetime fields include the session that just ended; Today fields come from
// the merged daily record.
type Context struct {
	LifetimeTotal    int
	LifetimeCorrect  int
	LifetimeSessions int
	TodayTotal       int
	TodayAccuracy    float64
	TodayAvgTimeMs   float64
	Streak           int
}

// Definition is a static catalog entry.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	check       func(Context) bool
}

// Unlocks reports whether the predicate holds for ctx.
func (d Definition) Unlocks(ctx Context) bool {
	return d.check != nil && d.check(ctx)
}

const dailyMinimum = 20

var catalog = []Definition{
	{
		ID: "first_session", Name: "First Session", Icon: "🎉",
		Description: "Finish your first session.",
		check:       func(c Context) bool { return c.LifetimeSessions >= 1 },
	},
	{
		ID: "50_questions", Name: "50 Questions", Icon: "🔢",
		Description: "Answer 50 questions total.",
		check:       func(c Context) bool { return c.LifetimeTotal >= 50 },
	},
	{
		ID: "200_questions", Name: "200 Questions", Icon: "📚",
		Description: "Answer 200 questions total.",
		check:       func(c Context) bool { return c.LifetimeTotal >= 200 },
	},
	{
		ID: "90_accuracy_day", Name: "90% Day", Icon: "🎯",
		Description: "Hit 90%+ accuracy in a day (min 20 questions).",
		check: func(c Context) bool {
			return c.TodayTotal >= dailyMinimum && c.TodayAccuracy >= 0.9
		},
	},
	{
		ID: "fast_day", Name: "Fast Hands", Icon: "⚡",
		Description: "Average under 1.8s today (min 20 questions).",
		check: func(c Context) bool {
			return c.TodayTotal >= dailyMinimum && c.TodayAvgTimeMs > 0 && c.TodayAvgTimeMs < 1800
		},
	},
	{
		ID: "streak_3", Name: "3-Day Streak", Icon: "🔥",
		Description: "Practice 3 days in a row.",
		check:       func(c Context) bool { return c.Streak >= 3 },
	},
	{
		ID: "streak_7", Name: "7-Day Streak", Icon: "🏆",
		Description: "Practice 7 days in a row.",
		check:       func(c Context) bool { return c.Streak >= 7 },
	},
}

// Catalog returns the badge definitions in display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Evaluate returns the unlocked set after checking every locked badge against ctx,
// plus the ids that became unlocked in this call. Existing ids keep their order;
// new ids follow in catalog order. unlocked is not modified.
func Evaluate(ctx Context, unlocked []string) (all []string, newly []string) {
	have := make(map[string]bool, len(unlocked))
	all = make([]string, 0, len(unlocked)+len(catalog))
	for _, id := range unlocked {
		if have[id] {
			continue
		}
		have[id] = true
		all = append(all, id)
	}
	for _, d := range catalog {
		if have[d.ID] || !d.Unlocks(ctx) {
			continue
		}
		have[d.ID] = true
		all = append(all, d.ID)
		newly = append(newly, d.ID)
	}
	return all, newly
}

// MetaStore persists small JSON values by key. Both methods are best effort.
type MetaStore interface {
	LoadMeta(ctx context.Context, key string, dst any) bool
	SetMeta(ctx context.Context, key string, value any) bool
}

// Evaluator evaluates badges against the persisted unlocked set.
type Evaluator struct {
	meta MetaStore
	log  *slog.Logger
}

// NewEvaluator returns an Evaluator backed by meta.
func NewEvaluator(meta MetaStore, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{meta: meta, log: log}
}

// Unlocked returns the persisted unlocked ids, or none when unavailable.
func (e *Evaluator) Unlocked(ctx context.Context) []string {
	ids := store.GetMeta(ctx, e.meta, MetaKey, []string{})
	if ids == nil {
		return []string{}
	}
	return ids
}

// Evaluate unlocks every badge whose predicate holds, persists the set only when
// it grew, and returns the full set with the newly unlocked ids.
func (e *Evaluator) Evaluate(ctx context.Context, bctx Context) (all []string, newly []string) {
	all, newly = Evaluate(bctx, e.Unlocked(ctx))
	if len(newly) == 0 {
		return all, nil
	}
	if !e.meta.SetMeta(ctx, MetaKey, all) {
		e.log.Warn("failed to persist unlocked badges", "new", newly)
	}
	e.log.Info("badges unlocked", "ids", newly)
	return all, newly
}
