package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/mathdrill/internal/badges"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/stats"
)

// MaxWindowDays bounds the dashboard window.
const MaxWindowDays = 365

// Source is the read side of the daily stat store.
type Source interface {
	stats.RecordLister
	GetDailyStat(ctx context.Context, date string) *model.DailyStatRecord
}

// BadgeSource reports the unlocked badge ids.
type BadgeSource interface {
	Unlocked(ctx context.Context) []string
}

// Handler serves the dashboard endpoints.
type Handler struct {
	src           Source
	badges        BadgeSource
	now           func() time.Time
	defaultWindow int
	log           *slog.Logger
}

// NewHandler returns a Handler. A nil now uses time.Now; windowDays <= 0 uses
// stats.DefaultWindowDays.
func NewHandler(src Source, bs BadgeSource, windowDays int, now func() time.Time, log *slog.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	if windowDays <= 0 {
		windowDays = stats.DefaultWindowDays
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		src:           src,
		badges:        bs,
		now:           now,
		defaultWindow: windowDays,
		log:           log.With("component", "api"),
	}
}

// DashboardResponse is the /api/dashboard payload.
type DashboardResponse struct {
	Today         string              `json:"today"`
	WindowDays    int                 `json:"windowDays"`
	Chart         stats.ChartData     `json:"chart"`
	Lifetime      stats.Lifetime      `json:"lifetime"`
	Streak        int                 `json:"streak"`
	LongestStreak int                 `json:"longestStreak"`
	Operators     []stats.OperatorRow `json:"operators"`
}

// BadgeStatus is one catalog entry with its unlock state.
type BadgeStatus struct {
	badges.Definition
	Unlocked bool `json:"unlocked"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Dashboard returns the chart projection for ?days=N (default window).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days := h.defaultWindow
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxWindowDays {
			RespondWithError(w, r, http.StatusBadRequest, "days must be an integer between 1 and 365")
			return
		}
		days = n
	}
	rep := stats.BuildReport(r.Context(), h.src, h.now(), days)
	RespondWithJSON(w, r, http.StatusOK, DashboardResponse{
		Today:         rep.Today,
		WindowDays:    rep.WindowDays,
		Chart:         rep.Chart,
		Lifetime:      rep.Lifetime,
		Streak:        rep.Streak,
		LongestStreak: rep.LongestStreak,
		Operators:     rep.Operators,
	})
}

// Day returns the stored record for {date}.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	rec := h.src.GetDailyStat(r.Context(), date)
	if rec == nil {
		RespondWithError(w, r, http.StatusNotFound, "no record for "+date)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, rec)
}

// Badges lists the catalog with unlock state.
func (h *Handler) Badges(w http.ResponseWriter, r *http.Request) {
	unlocked := map[string]bool{}
	if h.badges != nil {
		for _, id := range h.badges.Unlocked(r.Context()) {
			unlocked[id] = true
		}
	}
	catalog := badges.Catalog()
	out := make([]BadgeStatus, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, BadgeStatus{Definition: def, Unlocked: unlocked[def.ID]})
	}
	RespondWithJSON(w, r, http.StatusOK, out)
}
