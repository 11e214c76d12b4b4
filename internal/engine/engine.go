// Package engine runs practice sessions: it hands out questions, scores answers,
// drives the countdown and folds finished sessions into the daily statistics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/mathdrill/internal/badges"
	"github.com/verte-zerg/mathdrill/internal/generator"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/session"
	"github.com/verte-zerg/mathdrill/internal/stats"
)

// State is the orchestrator lifecycle phase.
type State int

// Lifecycle phases.
const (
	Idle State = iota
	InSession
	Ending
)

func (s State) String() string {
	switch s {
	case InSession:
		return "in-session"
	case Ending:
		return "ending"
	default:
		return "idle"
	}
}

// Session end reasons.
const (
	ReasonKumonDone = "🎉 Kumon done!"
	ReasonTimeUp    = "⏱️ Time's up!"
	ReasonBuzzer    = "⏱️ Buzzer Beater finished!"
	ReasonEnded     = "🛑 Ended"
)

var (
	// ErrSessionActive is returned by Start while a session is running.
	ErrSessionActive = errors.New("session already active")
	// ErrNoSession is returned when an operation needs a running session.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidConfig wraps session config validation failures.
	ErrInvalidConfig = errors.New("invalid session config")
)

// Repository is the best-effort daily stat store.
type Repository interface {
	GetDailyStat(ctx context.Context, date string) *model.DailyStatRecord
	PutDailyStat(ctx context.Context, rec model.DailyStatRecord) bool
	ListDailyStats(ctx context.Context) []model.DailyStatRecord
}

// BadgeEvaluator unlocks badges for a context and reports the new ones.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, bctx badges.Context) (all []string, newly []string)
}

// QuestionSource produces questions.
type QuestionSource interface {
	Generate(ops []model.Operator, d model.Difficulty) model.Question
}

// Answer is the outcome of one submitted answer.
type Answer struct {
	Correct  bool
	Expected int
	// Next is set while the session continues.
	Next *model.Question
	// Summary is set when this answer ended the session.
	Summary *Summary
}

// Summary describes a finished session.
type Summary struct {
	Reason    string
	Date      string
	Mode      model.Mode
	Total     int
	Correct   int
	Accuracy  float64
	AvgTimeMs float64
	NewBadges []string
	Streak    int
	Saved     bool
	// Discarded is set when the session ended without any answers.
	Discarded bool
}

// Text renders the end-of-session message.
func (s Summary) Text() string {
	if s.Discarded {
		return s.Reason
	}
	var b strings.Builder
	b.WriteString(s.Reason)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Session: %d%% • Avg %ss\n", int(math.Round(s.Accuracy*100)), stats.FormatSeconds(s.AvgTimeMs))
	if s.Saved {
		fmt.Fprintf(&b, "Saved to %s", s.Date)
	} else {
		b.WriteString("Could not save results")
	}
	if n := len(s.NewBadges); n > 0 {
		fmt.Fprintf(&b, "\nNew badges: %d", n)
	}
	return b.String()
}

// Status is a snapshot of the running session for display.
type Status struct {
	State     State
	SessionID string
	Mode      model.Mode
	Question  model.Question
	Total     int
	Correct   int
	// TimeLeft is the countdown in seconds, or -1 without a timer.
	TimeLeft int
	// KumonLeft is the number of answers left, or -1 outside kumon.
	KumonLeft int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithGenerator replaces the random question source.
func WithGenerator(g QuestionSource) Option {
	return func(o *Orchestrator) { o.gen = g }
}

// WithTickInterval sets how long one countdown second lasts.
func WithTickInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.tick = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// Orchestrator owns the session lifecycle. Methods are safe for concurrent use
// but are meant to be driven from a single event loop.
type Orchestrator struct {
	repo   Repository
	badges BadgeEvaluator
	gen    QuestionSource
	now    func() time.Time
	tick   time.Duration
	log    *slog.Logger

	mu        sync.Mutex
	state     State
	sess      *model.Session
	question  model.Question
	shownAt   time.Time
	timeLeft  int
	countdown *Countdown
}

// New returns an idle Orchestrator.
func New(repo Repository, ev BadgeEvaluator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		repo:   repo,
		badges: ev,
		now:    time.Now,
		tick:   time.Second,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.gen == nil {
		o.gen = generator.New()
	}
	o.log = o.log.With("component", "engine")
	return o
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Status returns a snapshot of the running session.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := Status{State: o.state, TimeLeft: -1, KumonLeft: -1}
	if o.sess == nil {
		return st
	}
	st.SessionID = o.sess.ID
	st.Mode = o.sess.Mode
	st.Question = o.question
	st.Total = o.sess.Total
	st.Correct = o.sess.Correct
	st.KumonLeft = session.Remaining(o.sess)
	if o.sess.TimerSec > 0 {
		st.TimeLeft = o.timeLeft
	}
	return st
}

// Countdown returns the running countdown, or nil when the session has no timer.
func (o *Orchestrator) Countdown() *Countdown {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.countdown
}

// Start validates cfg, begins a session and returns its first question.
func (o *Orchestrator) Start(ctx context.Context, cfg model.SessionConfig) (model.Question, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Idle {
		return model.Question{}, ErrSessionActive
	}
	cfg, err := NormalizeConfig(cfg)
	if err != nil {
		return model.Question{}, err
	}

	o.stopCountdownLocked()
	o.sess = session.Start(cfg, o.now())
	o.state = InSession
	o.timeLeft = cfg.TimerSec
	if cfg.TimerSec > 0 {
		o.countdown = startCountdown(o.sess.ID, cfg.TimerSec, o.tick)
	}
	o.nextQuestionLocked()

	o.log.InfoContext(ctx, "session started",
		"session_id", o.sess.ID,
		"mode", cfg.Mode,
		"difficulty", cfg.Difficulty,
		"ops", cfg.Operators,
		"timer_sec", cfg.TimerSec)
	return o.question, nil
}

// Submit scores raw against the current question. Kumon sessions end on their
// last answer; otherwise the next question is returned.
func (o *Orchestrator) Submit(ctx context.Context, raw string) (Answer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != InSession || o.sess == nil {
		return Answer{}, ErrNoSession
	}
	q := o.question
	correct := session.Score(o.sess, q, raw, o.now().Sub(o.shownAt))
	ans := Answer{Correct: correct, Expected: q.Answer}

	if session.Done(o.sess) {
		sum := o.endLocked(ctx, ReasonKumonDone)
		ans.Summary = &sum
		return ans, nil
	}
	o.nextQuestionLocked()
	next := o.question
	ans.Next = &next
	return ans, nil
}

// Tick applies a countdown step. When the countdown reaches zero the session
// ends and its summary is returned. Ticks from other sessions are ignored.
func (o *Orchestrator) Tick(ctx context.Context, t Tick) *Summary {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != InSession || o.sess == nil || o.sess.ID != t.SessionID {
		return nil
	}
	o.timeLeft = max(t.Remaining, 0)
	if o.timeLeft > 0 {
		return nil
	}
	reason := ReasonTimeUp
	if o.sess.Mode == model.ModeBuzzer {
		reason = ReasonBuzzer
	}
	sum := o.endLocked(ctx, reason)
	return &sum
}

// End stops the running session and persists it.
func (o *Orchestrator) End(ctx context.Context, reason string) (Summary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != InSession || o.sess == nil {
		return Summary{}, ErrNoSession
	}
	if reason == "" {
		reason = ReasonEnded
	}
	return o.endLocked(ctx, reason), nil
}

// Close stops any running countdown without persisting the session.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopCountdownLocked()
}

func (o *Orchestrator) nextQuestionLocked() {
	o.question = o.gen.Generate(o.sess.Operators, o.sess.Difficulty)
	o.shownAt = o.now()
}

func (o *Orchestrator) stopCountdownLocked() {
	if o.countdown != nil {
		o.countdown.Stop()
		o.countdown = nil
	}
}

func (o *Orchestrator) endLocked(ctx context.Context, reason string) Summary {
	o.state = Ending
	o.stopCountdownLocked()
	s := o.sess
	defer func() {
		o.sess = nil
		o.question = model.Question{}
		o.state = Idle
	}()

	sum := Summary{
		Reason:    reason,
		Mode:      s.Mode,
		Total:     s.Total,
		Correct:   s.Correct,
		Accuracy:  s.Accuracy(),
		AvgTimeMs: s.AvgTimeMs(),
	}
	if s.Total == 0 {
		sum.Discarded = true
		o.log.InfoContext(ctx, "session discarded", "session_id", s.ID, "reason", reason)
		return sum
	}

	date := model.DateOf(o.now())
	sum.Date = date
	merged := stats.MergeSession(o.repo.GetDailyStat(ctx, date), s, date)

	// Read before the write so the lifetime view counts this session exactly once.
	all := o.repo.ListDailyStats(ctx)
	lifetime := stats.LifetimeTotals(all).WithSession(s)
	streak := stats.ComputeStreak(all, date)

	_, newly := o.badges.Evaluate(ctx, badges.Context{
		LifetimeTotal:    lifetime.Total,
		LifetimeCorrect:  lifetime.Correct,
		LifetimeSessions: lifetime.Sessions,
		TodayTotal:       merged.Total,
		TodayAccuracy:    merged.Accuracy,
		TodayAvgTimeMs:   merged.AvgTimeMs,
		Streak:           streak,
	})
	merged.BadgesEarned += len(newly)

	sum.Saved = o.repo.PutDailyStat(ctx, merged)
	sum.NewBadges = newly
	sum.Streak = streak

	o.log.InfoContext(ctx, "session ended",
		"session_id", s.ID,
		"reason", reason,
		"total", s.Total,
		"correct", s.Correct,
		"saved", sum.Saved,
		"new_badges", len(newly),
		"streak", streak)
	return sum
}
