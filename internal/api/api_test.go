package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/stats"
)

type fakeSource struct {
	recs []model.DailyStatRecord
}

func (f fakeSource) ListDailyStats(context.Context) []model.DailyStatRecord {
	return f.recs
}

func (f fakeSource) GetDailyStat(_ context.Context, date string) *model.DailyStatRecord {
	for _, r := range f.recs {
		if r.Date == date {
			rec := r
			return &rec
		}
	}
	return nil
}

type fakeBadges []string

func (f fakeBadges) Unlocked(context.Context) []string {
	return f
}

func record(date string, total, correct int) model.DailyStatRecord {
	rec := model.NewDailyStatRecord(date)
	rec.Total = total
	rec.Correct = correct
	rec.TotalTimeMs = int64(total) * 2000
	rec.Sessions = 1
	rec.PerOp[model.OpMul] = model.OpStats{Total: total, Correct: correct, TimeMs: int64(total) * 2000}
	stats.Recompute(&rec)
	return rec
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	src := fakeSource{recs: []model.DailyStatRecord{
		record("2024-03-09", 10, 8),
		record("2024-03-10", 20, 19),
	}}
	h := NewHandler(src, fakeBadges{"first_session"}, 0,
		func() time.Time { return now },
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ok", body["status"])
}

func TestDashboardDefaultWindow(t *testing.T) {
	srv := newTestServer(t)
	var body DashboardResponse
	resp := getJSON(t, srv.URL+"/api/dashboard", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "2024-03-10", body.Today)
	assert.Equal(t, 7, body.WindowDays)
	require.Len(t, body.Chart.Dates, 7)
	assert.Equal(t, "2024-03-10", body.Chart.Dates[6])
	assert.Equal(t, 95.0, body.Chart.Accuracy[6])
	assert.Equal(t, 30, body.Chart.Summary.Attempts)
	assert.Equal(t, 2, body.Streak)
	assert.Equal(t, 30, body.Lifetime.Total)
	require.Len(t, body.Operators, 4)
	assert.Equal(t, model.OpMul, body.Operators[2].Op)
	assert.Equal(t, 30, body.Operators[2].Stats.Total)
}

func TestDashboardCustomWindow(t *testing.T) {
	srv := newTestServer(t)
	var body DashboardResponse
	getJSON(t, srv.URL+"/api/dashboard?days=30", &body)
	assert.Equal(t, 30, body.WindowDays)
	assert.Len(t, body.Chart.Dates, 30)
}

func TestDashboardRejectsBadWindow(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"0", "-3", "abc", "366"} {
		var body ErrorResponse
		resp := getJSON(t, srv.URL+"/api/dashboard?days="+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, body.Error, "days must be")
		assert.NotEmpty(t, body.RequestID)
	}
}

func TestDay(t *testing.T) {
	srv := newTestServer(t)
	var rec model.DailyStatRecord
	resp := getJSON(t, srv.URL+"/api/days/2024-03-09", &rec)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, rec.Total)
	assert.Equal(t, 8, rec.PerOp[model.OpMul].Correct)

	var missing ErrorResponse
	resp = getJSON(t, srv.URL+"/api/days/2024-01-01", &missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no record for 2024-01-01", missing.Error)

	var bad ErrorResponse
	resp = getJSON(t, srv.URL+"/api/days/yesterday", &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBadges(t *testing.T) {
	srv := newTestServer(t)
	var body []BadgeStatus
	resp := getJSON(t, srv.URL+"/api/badges", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body, 7)
	assert.Equal(t, "first_session", body[0].ID)
	assert.True(t, body[0].Unlocked)
	assert.False(t, body[1].Unlocked)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	var body ErrorResponse
	resp := getJSON(t, srv.URL+"/api/nope", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body.Error)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
