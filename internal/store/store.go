// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose/v3"

	"github.com/verte-zerg/mathdrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrInvalidRecord is returned when a daily record fails validation before write.
var ErrInvalidRecord = errors.New("invalid daily record")

var (
	gooseMu  sync.Mutex
	validate = validator.New()
)

// Store wraps SQLite access for daily stats and meta values.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// dsn applies connection pragmas so every pooled connection gets them.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// gooseLogger forwards goose output to slog at debug level.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "migrations")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...), "component", "migrations")
}

// GetDailyStat returns the record for date, or nil when none exists.
func (s *Store) GetDailyStat(ctx context.Context, date string) (*model.DailyStatRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT date, total, correct, total_time_ms, sessions, accuracy, avg_time_ms, badges_earned
		 FROM daily_stats WHERE date = ?`, date)
	rec := model.NewDailyStatRecord(date)
	if err := scanDaily(row, &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read daily stat: %w", err)
	}
	byDate := map[string]*model.DailyStatRecord{date: &rec}
	if err := s.loadChildren(ctx, byDate, "WHERE date = ?", date); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListDailyStats returns every record ordered by date.
func (s *Store) ListDailyStats(ctx context.Context) ([]model.DailyStatRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, total, correct, total_time_ms, sessions, accuracy, avg_time_ms, badges_earned
		 FROM daily_stats ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []*model.DailyStatRecord
	byDate := map[string]*model.DailyStatRecord{}
	for rows.Next() {
		rec := model.NewDailyStatRecord("")
		if err := scanDaily(rows, &rec); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		records = append(records, &rec)
		byDate[rec.Date] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	if err := s.loadChildren(ctx, byDate, ""); err != nil {
		return nil, err
	}

	out := make([]model.DailyStatRecord, len(records))
	for i, rec := range records {
		out[i] = *rec
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDaily(row scanner, rec *model.DailyStatRecord) error {
	return row.Scan(&rec.Date, &rec.Total, &rec.Correct, &rec.TotalTimeMs, &rec.Sessions,
		&rec.Accuracy, &rec.AvgTimeMs, &rec.BadgesEarned)
}

// loadChildren fills PerOp and ModeCount for the records in byDate.
func (s *Store) loadChildren(ctx context.Context, byDate map[string]*model.DailyStatRecord, where string, args ...any) error {
	opRows, err := s.db.QueryContext(ctx,
		`SELECT date, op, total, correct, time_ms FROM daily_op_stats `+where, args...)
	if err != nil {
		return fmt.Errorf("failed to read operator stats: %w", err)
	}
	for opRows.Next() {
		var date, op string
		var v model.OpStats
		if err := opRows.Scan(&date, &op, &v.Total, &v.Correct, &v.TimeMs); err != nil {
			_ = opRows.Close()
			return fmt.Errorf("failed to scan operator stats: %w", err)
		}
		if rec, ok := byDate[date]; ok {
			rec.PerOp[model.Operator(op)] = v
		}
	}
	if err := opRows.Err(); err != nil {
		_ = opRows.Close()
		return fmt.Errorf("failed to read operator stats: %w", err)
	}
	if cerr := opRows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}

	modeRows, err := s.db.QueryContext(ctx,
		`SELECT date, mode, sessions FROM daily_mode_counts `+where, args...)
	if err != nil {
		return fmt.Errorf("failed to read mode counts: %w", err)
	}
	defer func() {
		if cerr := modeRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for modeRows.Next() {
		var date, mode string
		var n int
		if err := modeRows.Scan(&date, &mode, &n); err != nil {
			return fmt.Errorf("failed to scan mode counts: %w", err)
		}
		if rec, ok := byDate[date]; ok {
			rec.ModeCount[model.Mode(mode)] = n
		}
	}
	if err := modeRows.Err(); err != nil {
		return fmt.Errorf("failed to read mode counts: %w", err)
	}
	return nil
}

// PutDailyStat inserts or replaces the record for rec.Date in one transaction.
func (s *Store) PutDailyStat(ctx context.Context, rec model.DailyStatRecord) (err error) {
	if verr := validate.Struct(rec); verr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, verr)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO daily_stats (date, total, correct, total_time_ms, sessions, accuracy, avg_time_ms, badges_earned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			total = excluded.total,
			correct = excluded.correct,
			total_time_ms = excluded.total_time_ms,
			sessions = excluded.sessions,
			accuracy = excluded.accuracy,
			avg_time_ms = excluded.avg_time_ms,
			badges_earned = excluded.badges_earned`,
		rec.Date, rec.Total, rec.Correct, rec.TotalTimeMs, rec.Sessions,
		rec.Accuracy, rec.AvgTimeMs, rec.BadgesEarned,
	)
	if err != nil {
		return fmt.Errorf("failed to write daily stat: %w", err)
	}

	opStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_op_stats (date, op, total, correct, time_ms) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date, op) DO UPDATE SET
			total = excluded.total, correct = excluded.correct, time_ms = excluded.time_ms`)
	if err != nil {
		return fmt.Errorf("failed to prepare operator stats: %w", err)
	}
	defer func() {
		if cerr := opStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, op := range model.Operators {
		v := rec.PerOp[op]
		if _, err = opStmt.ExecContext(ctx, rec.Date, string(op), v.Total, v.Correct, v.TimeMs); err != nil {
			return fmt.Errorf("failed to write operator stats: %w", err)
		}
	}

	modeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_mode_counts (date, mode, sessions) VALUES (?, ?, ?)
		 ON CONFLICT(date, mode) DO UPDATE SET sessions = excluded.sessions`)
	if err != nil {
		return fmt.Errorf("failed to prepare mode counts: %w", err)
	}
	defer func() {
		if cerr := modeStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, m := range model.Modes {
		if _, err = modeStmt.ExecContext(ctx, rec.Date, string(m), rec.ModeCount[m]); err != nil {
			return fmt.Errorf("failed to write mode counts: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily stat: %w", err)
	}
	return nil
}

// GetMetaRaw returns the JSON value stored under key, or nil when missing.
func (s *Store) GetMetaRaw(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read meta %q: %w", key, err)
	}
	return []byte(value), nil
}

// SetMeta stores value as JSON under key.
func (s *Store) SetMeta(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode meta %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write meta %q: %w", key, err)
	}
	return nil
}

// Reset deletes every stored record and meta value.
func (s *Store) Reset(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	for _, table := range []string{"daily_op_stats", "daily_mode_counts", "daily_stats", "meta"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}
