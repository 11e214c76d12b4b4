// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Operator is one of the four arithmetic operations.
type Operator string

// Supported operators.
const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
)

// Operators lists every operator in canonical order.
var Operators = []Operator{OpAdd, OpSub, OpMul, OpDiv}

// Symbol returns the glyph used when rendering a question.
func (o Operator) Symbol() string {
	switch o {
	case OpMul:
		return "×"
	case OpDiv:
		return "÷"
	case OpSub:
		return "−"
	default:
		return string(o)
	}
}

// Name returns a human readable operator name.
func (o Operator) Name() string {
	switch o {
	case OpAdd:
		return "addition"
	case OpSub:
		return "subtraction"
	case OpMul:
		return "multiplication"
	case OpDiv:
		return "division"
	default:
		return string(o)
	}
}

// ParseOperator maps user input to an operator. Accepts symbols and short names.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+", "add", "addition":
		return OpAdd, nil
	case "-", "sub", "subtraction":
		return OpSub, nil
	case "*", "x", "mul", "multiplication":
		return OpMul, nil
	case "/", "div", "division":
		return OpDiv, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Difficulty selects operand ranges.
type Difficulty string

// Difficulty presets.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the presets in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Mode selects the session end rule.
type Mode string

// Session modes.
const (
	ModeKumon   Mode = "kumon"
	ModeEndless Mode = "endless"
	ModeBuzzer  Mode = "buzzer"
)

// Modes lists the modes in display order.
var Modes = []Mode{ModeKumon, ModeEndless, ModeBuzzer}

// Label returns the mode name shown in menus.
func (m Mode) Label() string {
	switch m {
	case ModeKumon:
		return "kumon (20)"
	case ModeBuzzer:
		return "buzzer (1:00)"
	default:
		return string(m)
	}
}

// Question is an immutable arithmetic problem.
type Question struct {
	Op     Operator
	Left   int
	Right  int
	Answer int
}

// Text renders the question as "<left> <op> <right>".
func (q Question) Text() string {
	return fmt.Sprintf("%d %s %d", q.Left, q.Op, q.Right)
}

// Display renders the question with typographic operator glyphs.
func (q Question) Display() string {
	return fmt.Sprintf("%d %s %d", q.Left, q.Op.Symbol(), q.Right)
}

// OpStats holds counters for one operator.
type OpStats struct {
	Total   int   `json:"total"`
	Correct int   `json:"correct"`
	TimeMs  int64 `json:"timeMs"`
}

// Add returns the element-wise sum.
func (o OpStats) Add(other OpStats) OpStats {
	return OpStats{
		Total:   o.Total + other.Total,
		Correct: o.Correct + other.Correct,
		TimeMs:  o.TimeMs + other.TimeMs,
	}
}

// Accuracy returns Correct/Total or 0.
func (o OpStats) Accuracy() float64 {
	if o.Total <= 0 {
		return 0
	}
	return float64(o.Correct) / float64(o.Total)
}

// AvgTimeMs returns TimeMs/Total or 0.
func (o OpStats) AvgTimeMs() float64 {
	if o.Total <= 0 {
		return 0
	}
	return float64(o.TimeMs) / float64(o.Total)
}

// SessionConfig is the user selection that starts a session.
type SessionConfig struct {
	Mode       Mode       `validate:"required,oneof=kumon endless buzzer"`
	Difficulty Difficulty `validate:"required,oneof=easy medium hard"`
	Operators  []Operator `validate:"min=1,dive,oneof=+ - * /"`
	TimerSec   int        `validate:"gte=0"`
}

// Session is the in-memory state of one practice run.
type Session struct {
	ID          string
	Mode        Mode
	Difficulty  Difficulty
	Operators   []Operator
	TimerSec    int
	StartedAt   time.Time
	Total       int
	Correct     int
	TotalTimeMs int64
	PerOp       map[Operator]OpStats
}

// Accuracy returns the session accuracy in [0,1].
func (s *Session) Accuracy() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// AvgTimeMs returns the mean answer time.
func (s *Session) AvgTimeMs() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.TotalTimeMs) / float64(s.Total)
}

// DailyStatRecord aggregates all sessions of one calendar date.
type DailyStatRecord struct {
	Date         string               `json:"date" validate:"required,datetime=2006-01-02"`
	Total        int                  `json:"total" validate:"gte=0"`
	Correct      int                  `json:"correct" validate:"gte=0,ltefield=Total"`
	TotalTimeMs  int64                `json:"totalTimeMs" validate:"gte=0"`
	Sessions     int                  `json:"sessions" validate:"gte=0"`
	PerOp        map[Operator]OpStats `json:"perOp"`
	ModeCount    map[Mode]int         `json:"modeCount"`
	Accuracy     float64              `json:"accuracy"`
	AvgTimeMs    float64              `json:"avgTimeMs"`
	BadgesEarned int                  `json:"badgesEarned" validate:"gte=0"`
}

// NewDailyStatRecord returns a zero record with every operator and mode present.
func NewDailyStatRecord(date string) DailyStatRecord {
	rec := DailyStatRecord{
		Date:      date,
		PerOp:     make(map[Operator]OpStats, len(Operators)),
		ModeCount: make(map[Mode]int, len(Modes)),
	}
	for _, op := range Operators {
		rec.PerOp[op] = OpStats{}
	}
	for _, m := range Modes {
		rec.ModeCount[m] = 0
	}
	return rec
}

// DateLayout is the calendar date format used as record key.
const DateLayout = "2006-01-02"

// DateOf formats t as a calendar date in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
