package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// Backend is the error-returning storage contract implemented by Store.
type Backend interface {
	GetDailyStat(ctx context.Context, date string) (*model.DailyStatRecord, error)
	PutDailyStat(ctx context.Context, rec model.DailyStatRecord) error
	ListDailyStats(ctx context.Context) ([]model.DailyStatRecord, error)
	GetMetaRaw(ctx context.Context, key string) ([]byte, error)
	SetMeta(ctx context.Context, key string, value any) error
}

// Repository is the never-failing view of a Backend used by the practice engine.
// Read failures yield empty results and write failures yield false; every
// swallowed error is logged at warn level.
type Repository struct {
	backend Backend
	log     *slog.Logger
}

// NewRepository wraps backend. A nil logger uses slog.Default.
func NewRepository(backend Backend, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{backend: backend, log: log.With("component", "store")}
}

// GetDailyStat returns the record for date, or nil when missing or unreadable.
func (r *Repository) GetDailyStat(ctx context.Context, date string) *model.DailyStatRecord {
	rec, err := r.backend.GetDailyStat(ctx, date)
	if err != nil {
		r.log.Warn("get daily stat failed", "date", date, "error", err)
		return nil
	}
	return rec
}

// PutDailyStat writes rec and reports success.
func (r *Repository) PutDailyStat(ctx context.Context, rec model.DailyStatRecord) bool {
	if err := r.backend.PutDailyStat(ctx, rec); err != nil {
		r.log.Warn("put daily stat failed", "date", rec.Date, "error", err)
		return false
	}
	return true
}

// ListDailyStats returns all records, or an empty slice on failure.
func (r *Repository) ListDailyStats(ctx context.Context) []model.DailyStatRecord {
	recs, err := r.backend.ListDailyStats(ctx)
	if err != nil {
		r.log.Warn("list daily stats failed", "error", err)
		return []model.DailyStatRecord{}
	}
	if recs == nil {
		return []model.DailyStatRecord{}
	}
	return recs
}

// LoadMeta decodes the value under key into dst. It reports false when the key
// is missing, unreadable, or not decodable into dst.
func (r *Repository) LoadMeta(ctx context.Context, key string, dst any) bool {
	raw, err := r.backend.GetMetaRaw(ctx, key)
	if err != nil {
		r.log.Warn("get meta failed", "key", key, "error", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.log.Warn("decode meta failed", "key", key, "error", err)
		return false
	}
	return true
}

// SetMeta stores value under key and reports success.
func (r *Repository) SetMeta(ctx context.Context, key string, value any) bool {
	if err := r.backend.SetMeta(ctx, key, value); err != nil {
		r.log.Warn("set meta failed", "key", key, "error", err)
		return false
	}
	return true
}

// MetaLoader decodes the JSON value stored under key into dst and reports success.
type MetaLoader interface {
	LoadMeta(ctx context.Context, key string, dst any) bool
}

// GetMeta returns the value under key, or fallback when it cannot be loaded.
func GetMeta[T any](ctx context.Context, r MetaLoader, key string, fallback T) T {
	var v T
	if !r.LoadMeta(ctx, key, &v) {
		return fallback
	}
	return v
}
