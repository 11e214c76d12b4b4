package badges

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryMeta struct {
	values map[string][]byte
	writes int
	fail   bool
}

func newMemoryMeta() *memoryMeta {
	return &memoryMeta{values: map[string][]byte{}}
}

func (m *memoryMeta) LoadMeta(_ context.Context, key string, dst any) bool {
	raw, ok := m.values[key]
	if !ok || m.fail {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (m *memoryMeta) SetMeta(_ context.Context, key string, value any) bool {
	if m.fail {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	m.values[key] = raw
	m.writes++
	return true
}

func TestCatalogOrder(t *testing.T) {
	ids := make([]string, 0, len(catalog))
	for _, d := range Catalog() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{
		"first_session", "50_questions", "200_questions",
		"90_accuracy_day", "fast_day", "streak_3", "streak_7",
	}, ids)

	d, ok := Lookup("fast_day")
	require.True(t, ok)
	assert.Equal(t, "Fast Hands", d.Name)
	_, ok = Lookup("missing")
	assert.False(t, ok)
}

func TestFiftyQuestionsBoundary(t *testing.T) {
	ctx := Context{LifetimeSessions: 3, LifetimeTotal: 49}
	all, newly := Evaluate(ctx, nil)
	assert.NotContains(t, all, "50_questions")
	assert.Equal(t, []string{"first_session"}, newly)

	ctx.LifetimeTotal = 50
	all, newly = Evaluate(ctx, all)
	assert.Equal(t, []string{"50_questions"}, newly)
	assert.Equal(t, []string{"first_session", "50_questions"}, all)

	again, none := Evaluate(ctx, all)
	assert.Empty(t, none)
	assert.Equal(t, all, again)
}

func TestEvaluateNeverRemoves(t *testing.T) {
	unlocked := []string{"streak_7", "200_questions"}
	all, newly := Evaluate(Context{}, unlocked)
	assert.Empty(t, newly)
	assert.Equal(t, unlocked, all)
}

func TestDailyBadgesNeedMinimumAttempts(t *testing.T) {
	_, newly := Evaluate(Context{LifetimeSessions: 1, TodayTotal: 19, TodayAccuracy: 1, TodayAvgTimeMs: 900}, nil)
	assert.Equal(t, []string{"first_session"}, newly)

	_, newly = Evaluate(Context{LifetimeSessions: 1, TodayTotal: 20, TodayAccuracy: 0.9, TodayAvgTimeMs: 1799}, []string{"first_session"})
	assert.Equal(t, []string{"90_accuracy_day", "fast_day"}, newly)

	_, newly = Evaluate(Context{TodayTotal: 20, TodayAccuracy: 0.5, TodayAvgTimeMs: 0}, nil)
	assert.Empty(t, newly)
}

func TestStreakBadges(t *testing.T) {
	_, newly := Evaluate(Context{Streak: 7}, nil)
	assert.Equal(t, []string{"streak_3", "streak_7"}, newly)
}

func TestEvaluatorPersistsOnlyOnChange(t *testing.T) {
	meta := newMemoryMeta()
	ev := NewEvaluator(meta, nil)
	ctx := context.Background()

	assert.Empty(t, ev.Unlocked(ctx))

	all, newly := ev.Evaluate(ctx, Context{LifetimeSessions: 1, LifetimeTotal: 60})
	assert.Equal(t, []string{"first_session", "50_questions"}, newly)
	assert.Equal(t, all, ev.Unlocked(ctx))
	assert.Equal(t, 1, meta.writes)

	_, newly = ev.Evaluate(ctx, Context{LifetimeSessions: 2, LifetimeTotal: 70})
	assert.Empty(t, newly)
	assert.Equal(t, 1, meta.writes)
}

func TestEvaluatorToleratesStoreFailure(t *testing.T) {
	meta := newMemoryMeta()
	meta.fail = true
	ev := NewEvaluator(meta, nil)

	all, newly := ev.Evaluate(context.Background(), Context{LifetimeSessions: 1})
	assert.Equal(t, []string{"first_session"}, all)
	assert.Equal(t, []string{"first_session"}, newly)
}

func TestUnlockedFallsBackOnBadMeta(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`null`, `{"not":"a list"}`, `oops`} {
		meta := newMemoryMeta()
		meta.values[MetaKey] = []byte(raw)
		ids := NewEvaluator(meta, nil).Unlocked(ctx)
		require.NotNil(t, ids, raw)
		assert.Empty(t, ids, raw)
	}

	meta := newMemoryMeta()
	meta.values[MetaKey] = []byte(`["streak_3"]`)
	assert.Equal(t, []string{"streak_3"}, NewEvaluator(meta, nil).Unlocked(ctx))
}
