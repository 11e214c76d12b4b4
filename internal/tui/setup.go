package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mathdrill/internal/engine"
	"github.com/verte-zerg/mathdrill/internal/model"
)

type setupRow int

const (
	rowMode setupRow = iota
	rowDifficulty
	rowOps
	rowTimer
	rowStart
	setupRowCount
)

var (
	errNoOps    = errors.New("Select at least one operation.")
	errBadTimer = errors.New("Timer must be a whole number of seconds.")
)

// setupForm collects a SessionConfig before a session starts.
type setupForm struct {
	mode       int
	difficulty int
	ops        [4]bool
	opCursor   int
	timer      textinput.Model
	focus      setupRow
	err        string
}

func newSetupForm(cfg model.SessionConfig) setupForm {
	f := setupForm{}
	for i, m := range model.Modes {
		if m == cfg.Mode {
			f.mode = i
		}
	}
	f.difficulty = 1
	for i, d := range model.Difficulties {
		if d == cfg.Difficulty {
			f.difficulty = i
		}
	}
	for _, op := range cfg.Operators {
		for i, known := range model.Operators {
			if op == known {
				f.ops[i] = true
			}
		}
	}

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "0"
	input.CharLimit = 4
	input.Width = 6
	input.Cursor.SetMode(cursor.CursorBlink)
	if cfg.TimerSec > 0 {
		input.SetValue(strconv.Itoa(cfg.TimerSec))
	}
	f.timer = input
	return f
}

func (f *setupForm) selectedMode() model.Mode {
	return model.Modes[f.mode]
}

func (f *setupForm) selectedOps() []model.Operator {
	out := make([]model.Operator, 0, len(model.Operators))
	for i, on := range f.ops {
		if on {
			out = append(out, model.Operators[i])
		}
	}
	return out
}

// config returns the session configuration or a message for the user.
func (f *setupForm) config() (model.SessionConfig, error) {
	ops := f.selectedOps()
	if len(ops) == 0 {
		return model.SessionConfig{}, errNoOps
	}
	timer := 0
	raw := strings.TrimSpace(f.timer.Value())
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return model.SessionConfig{}, errBadTimer
		}
		timer = n
	}
	if f.selectedMode() == model.ModeBuzzer {
		timer = engine.BuzzerSec
	}
	return model.SessionConfig{
		Mode:       f.selectedMode(),
		Difficulty: model.Difficulties[f.difficulty],
		Operators:  ops,
		TimerSec:   min(timer, engine.MaxTimerSec),
	}, nil
}

func (f *setupForm) setFocus(row setupRow) tea.Cmd {
	if row < 0 {
		row = setupRowCount - 1
	}
	if row >= setupRowCount {
		row = 0
	}
	f.focus = row
	if row == rowTimer {
		return f.timer.Focus()
	}
	f.timer.Blur()
	return nil
}

// update handles a key on the setup screen. submit is true when the user asked
// to start a session.
func (f *setupForm) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return nil, true
	case tea.KeyUp, tea.KeyShiftTab:
		return f.setFocus(f.focus - 1), false
	case tea.KeyDown, tea.KeyTab:
		return f.setFocus(f.focus + 1), false
	case tea.KeyLeft:
		f.cycle(-1)
		return nil, false
	case tea.KeyRight:
		f.cycle(1)
		return nil, false
	case tea.KeySpace:
		switch f.focus {
		case rowOps:
			f.ops[f.opCursor] = !f.ops[f.opCursor]
			f.err = ""
		case rowStart:
			return nil, true
		case rowTimer:
		default:
			f.cycle(1)
		}
		return nil, false
	}
	if f.focus == rowTimer {
		if msg.Type == tea.KeyRunes && !allDigits(msg.Runes) {
			return nil, false
		}
		var cmd tea.Cmd
		f.timer, cmd = f.timer.Update(msg)
		return cmd, false
	}
	if msg.Type == tea.KeyRunes && f.focus == rowOps {
		for _, r := range msg.Runes {
			if op, err := model.ParseOperator(string(r)); err == nil {
				f.toggleOp(op)
			}
		}
	}
	return nil, false
}

func (f *setupForm) toggleOp(op model.Operator) {
	for i, known := range model.Operators {
		if known == op {
			f.ops[i] = !f.ops[i]
			f.opCursor = i
			f.err = ""
		}
	}
}

func (f *setupForm) cycle(delta int) {
	switch f.focus {
	case rowMode:
		f.mode = wrapIndex(f.mode+delta, len(model.Modes))
	case rowDifficulty:
		f.difficulty = wrapIndex(f.difficulty+delta, len(model.Difficulties))
	case rowOps:
		f.opCursor = wrapIndex(f.opCursor+delta, len(model.Operators))
	}
}

func allDigits(runes []rune) bool {
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}

func (f *setupForm) view() string {
	lines := []string{titleStyle.Render("Practice setup"), ""}
	lines = append(lines, f.row(rowMode, "Mode", choiceStyle.Render(f.selectedMode().Label())))
	lines = append(lines, f.row(rowDifficulty, "Difficulty", choiceStyle.Render(string(model.Difficulties[f.difficulty]))))

	opParts := make([]string, 0, len(model.Operators))
	for i, op := range model.Operators {
		box := "[ ]"
		if f.ops[i] {
			box = "[x]"
		}
		label := fmt.Sprintf("%s %s", box, op.Symbol())
		style := mutedStyle
		if f.ops[i] {
			style = choiceStyle
		}
		if f.focus == rowOps && i == f.opCursor {
			style = style.Underline(true)
		}
		opParts = append(opParts, style.Render(label))
	}
	lines = append(lines, f.row(rowOps, "Operations", strings.Join(opParts, "  ")))

	timer := f.timer.View()
	if f.selectedMode() == model.ModeBuzzer {
		timer = mutedStyle.Render(fmt.Sprintf("%d (fixed)", engine.BuzzerSec))
	}
	lines = append(lines, f.row(rowTimer, "Timer (s)", timer))
	lines = append(lines, "")
	start := mutedStyle.Render("[ Start ]")
	if f.focus == rowStart {
		start = currentStyle.Render("[ Start ]")
	}
	lines = append(lines, start)
	if f.err != "" {
		lines = append(lines, "", incorrectStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (f *setupForm) row(r setupRow, label, value string) string {
	marker := "  "
	labelStyle := mutedStyle
	if f.focus == r {
		marker = currentStyle.Render("› ")
		labelStyle = currentStyle
	}
	return marker + labelStyle.Render(fmt.Sprintf("%-11s", label)) + value
}
