package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mathdrill/internal/model"
)

var errBroken = errors.New("disk on fire")

type brokenBackend struct{}

func (brokenBackend) GetDailyStat(context.Context, string) (*model.DailyStatRecord, error) {
	return nil, errBroken
}

func (brokenBackend) PutDailyStat(context.Context, model.DailyStatRecord) error {
	return errBroken
}

func (brokenBackend) ListDailyStats(context.Context) ([]model.DailyStatRecord, error) {
	return nil, errBroken
}

func (brokenBackend) GetMetaRaw(context.Context, string) ([]byte, error) {
	return nil, errBroken
}

func (brokenBackend) SetMeta(context.Context, string, any) error {
	return errBroken
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepositorySwallowsFailures(t *testing.T) {
	repo := NewRepository(brokenBackend{}, quietLogger())
	ctx := context.Background()

	assert.Nil(t, repo.GetDailyStat(ctx, "2024-03-10"))
	assert.False(t, repo.PutDailyStat(ctx, model.NewDailyStatRecord("2024-03-10")))
	all := repo.ListDailyStats(ctx)
	assert.NotNil(t, all)
	assert.Empty(t, all)
	assert.False(t, repo.SetMeta(ctx, "k", 1))
	assert.Equal(t, []string{"fallback"}, GetMeta(ctx, repo, "k", []string{"fallback"}))
}

func TestRepositoryOverStore(t *testing.T) {
	st := openTestStore(t)
	repo := NewRepository(st, quietLogger())
	ctx := context.Background()

	assert.Equal(t, []string{}, GetMeta(ctx, repo, "badges_unlocked", []string{}))
	require.True(t, repo.SetMeta(ctx, "badges_unlocked", []string{"first_session"}))
	assert.Equal(t, []string{"first_session"}, GetMeta(ctx, repo, "badges_unlocked", []string{}))

	// Undecodable values fall back.
	require.True(t, repo.SetMeta(ctx, "count", "not a number"))
	assert.Equal(t, 7, GetMeta(ctx, repo, "count", 7))

	require.True(t, repo.PutDailyStat(ctx, sampleRecord("2024-03-10")))
	rec := repo.GetDailyStat(ctx, "2024-03-10")
	require.NotNil(t, rec)
	assert.Equal(t, 23, rec.Total)
	assert.Len(t, repo.ListDailyStats(ctx), 1)
	assert.False(t, repo.PutDailyStat(ctx, model.NewDailyStatRecord("bad-date")))
}
