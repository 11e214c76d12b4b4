// Package session tracks answers within a single practice run.
package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// KumonLength is the number of answers that completes a kumon session.
const KumonLength = 20

// MaxAnswerLen bounds the raw input accepted from the keyboard.
const MaxAnswerLen = 6

// Start creates a session with zeroed counters for every operator.
func Start(cfg model.SessionConfig, now time.Time) *model.Session {
	perOp := make(map[model.Operator]model.OpStats, len(model.Operators))
	for _, op := range model.Operators {
		perOp[op] = model.OpStats{}
	}
	ops := make([]model.Operator, len(cfg.Operators))
	copy(ops, cfg.Operators)
	return &model.Session{
		ID:         uuid.New().String(),
		Mode:       cfg.Mode,
		Difficulty: cfg.Difficulty,
		Operators:  ops,
		TimerSec:   cfg.TimerSec,
		StartedAt:  now,
		PerOp:      perOp,
	}
}

// ParseAnswer parses raw numeric input. Leading/trailing whitespace and one
// leading minus sign are accepted; an explicit plus sign is not.
func ParseAnswer(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" || raw[0] == '+' {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Score records one answer to q and reports whether it was correct.
// Malformed input counts as an incorrect attempt.
func Score(s *model.Session, q model.Question, raw string, elapsed time.Duration) bool {
	v, ok := ParseAnswer(raw)
	correct := ok && v == q.Answer

	ms := elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	delta := model.OpStats{Total: 1, TimeMs: ms}
	if correct {
		delta.Correct = 1
	}

	s.Total++
	s.TotalTimeMs += ms
	if correct {
		s.Correct++
	}
	if s.PerOp == nil {
		s.PerOp = map[model.Operator]model.OpStats{}
	}
	s.PerOp[q.Op] = s.PerOp[q.Op].Add(delta)
	return correct
}

// Done reports whether the session's count rule is satisfied.
func Done(s *model.Session) bool {
	return s.Mode == model.ModeKumon && s.Total >= KumonLength
}

// Remaining returns the number of answers left in a kumon session, or -1.
func Remaining(s *model.Session) int {
	if s.Mode != model.ModeKumon {
		return -1
	}
	if left := KumonLength - s.Total; left > 0 {
		return left
	}
	return 0
}
