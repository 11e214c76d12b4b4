// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mathdrill/internal/badges"
	"github.com/verte-zerg/mathdrill/internal/engine"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/session"
)

type screen int

const (
	screenSetup screen = iota
	screenQuestion
	screenSummary
)

const (
	pillPadding = 2
	pillGap     = 1
)

type tickMsg engine.Tick

type countdownClosedMsg struct{}

// Model implements the Bubble Tea drill UI.
type Model struct {
	ctx       context.Context
	orch      *engine.Orchestrator
	autoStart bool

	screen   screen
	form     setupForm
	buf      answerBuffer
	status   engine.Status
	lastCfg  model.SessionConfig
	summary  *engine.Summary
	feedback string
	wasRight bool

	width  int
	height int
}

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	choiceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true).Underline(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pillStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Background(lipgloss.Color("#2A2A2A")).
			Padding(0, 1)
)

// NewModel constructs a drill TUI model. With autoStart the session starts
// immediately using cfg; otherwise the setup form is shown pre-filled with it.
func NewModel(orch *engine.Orchestrator, cfg model.SessionConfig, autoStart bool) *Model {
	return &Model{
		ctx:       context.Background(),
		orch:      orch,
		autoStart: autoStart,
		form:      newSetupForm(cfg),
		buf:       newAnswerBuffer(),
		lastCfg:   cfg,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.autoStart {
		return m.start(m.lastCfg)
	}
	return m.form.setFocus(rowMode)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.handleTick(engine.Tick(msg))
	case countdownClosedMsg:
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenQuestion:
			return m.updateQuestion(msg)
		case screenSummary:
			return m.updateSummary(msg)
		default:
			return m.updateSetup(msg)
		}
	default:
		if m.screen == screenSetup && m.form.focus == rowTimer {
			var cmd tea.Cmd
			m.form.timer, cmd = m.form.timer.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyRunes:
		if m.form.focus != rowTimer && string(msg.Runes) == "q" {
			return m, tea.Quit
		}
	}
	cmd, submit := m.form.update(msg)
	if !submit {
		return m, cmd
	}
	cfg, err := m.form.config()
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	return m, m.start(cfg)
}

func (m *Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.end(engine.ReasonEnded)
		return m, tea.Quit
	case tea.KeyCtrlE:
		m.end(engine.ReasonEnded)
		return m, nil
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.buf.backspace()
		return m, nil
	case tea.KeyEsc:
		m.buf.clear()
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r == '-' {
				m.buf.toggleSign()
				continue
			}
			m.buf.appendDigit(r)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.summary = nil
		m.screen = screenSetup
		return m, m.form.setFocus(rowStart)
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m, tea.Quit
		case "r":
			m.summary = nil
			return m, m.start(m.lastCfg)
		}
	}
	return m, nil
}

func (m *Model) start(cfg model.SessionConfig) tea.Cmd {
	if _, err := m.orch.Start(m.ctx, cfg); err != nil {
		m.screen = screenSetup
		m.form.err = err.Error()
		return nil
	}
	m.lastCfg = cfg
	m.form.err = ""
	m.screen = screenQuestion
	m.buf.clear()
	m.feedback = ""
	m.status = m.orch.Status()
	if cd := m.orch.Countdown(); cd != nil {
		return waitTick(cd.Events())
	}
	return nil
}

func (m *Model) submit() {
	ans, err := m.orch.Submit(m.ctx, m.buf.String())
	if err != nil {
		return
	}
	m.wasRight = ans.Correct
	if ans.Correct {
		m.feedback = "✅ Correct"
	} else {
		m.feedback = fmt.Sprintf("❌ %d", ans.Expected)
	}
	m.buf.clear()
	if ans.Summary != nil {
		m.showSummary(*ans.Summary)
		return
	}
	m.status = m.orch.Status()
}

func (m *Model) end(reason string) {
	sum, err := m.orch.End(m.ctx, reason)
	if err != nil {
		return
	}
	m.showSummary(sum)
}

func (m *Model) handleTick(t engine.Tick) tea.Cmd {
	if sum := m.orch.Tick(m.ctx, t); sum != nil {
		m.showSummary(*sum)
		return nil
	}
	if m.screen != screenQuestion || t.SessionID != m.status.SessionID {
		return nil
	}
	m.status = m.orch.Status()
	if cd := m.orch.Countdown(); cd != nil {
		return waitTick(cd.Events())
	}
	return nil
}

func (m *Model) showSummary(sum engine.Summary) {
	m.summary = &sum
	m.screen = screenSummary
	m.status = m.orch.Status()
}

// waitTick turns the next countdown value into a message.
func waitTick(events <-chan engine.Tick) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-events
		if !ok {
			return countdownClosedMsg{}
		}
		return tickMsg(t)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content, footer string
	switch m.screen {
	case screenQuestion:
		content = m.renderQuestion()
		footer = "0-9 answer  -: sign  backspace: delete  esc: clear  enter: submit  ctrl+e: end"
	case screenSummary:
		content = m.renderSummary()
		footer = "enter: new setup  r: repeat  q: quit"
	default:
		content = m.form.view()
		footer = "up/down: field  left/right: change  space: toggle  enter: start  q: quit"
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footerStyle.Render(footer)
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footerStyle.Render(footer))
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		return 0
	}
	return w
}

func (m *Model) renderQuestion() string {
	lines := []string{
		wrapSegments(m.pills(), m.contentWidth(), pillGap),
		"",
		questionStyle.Render(m.status.Question.Display() + " = ?"),
		"",
		answerStyle.Render(m.buf.String()),
		"",
	}
	switch {
	case m.feedback == "":
		lines = append(lines, "")
	case m.wasRight:
		lines = append(lines, correctStyle.Render(m.feedback))
	default:
		lines = append(lines, incorrectStyle.Render(m.feedback))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) pills() []styledSegment {
	st := m.status
	segs := []styledSegment{
		newSegment(fmt.Sprintf("Mode: %s • %s", st.Mode.Label(), m.lastCfg.Difficulty), pillStyle),
	}
	switch st.Mode {
	case model.ModeKumon:
		segs = append(segs, newSegment(fmt.Sprintf("Progress: %d/%d", st.Total, session.KumonLength), pillStyle))
	case model.ModeBuzzer:
		segs = append(segs, newSegment(fmt.Sprintf("Solved: %d", st.Total), pillStyle))
	default:
		segs = append(segs, newSegment(fmt.Sprintf("Answered: %d", st.Total), pillStyle))
	}
	if st.TimeLeft >= 0 {
		segs = append(segs, newSegment(fmt.Sprintf("Time: %ds", st.TimeLeft), pillStyle))
	} else {
		segs = append(segs, newSegment("Time: ∞", pillStyle))
	}
	segs = append(segs, newSegment(fmt.Sprintf("Score: %d/%d", st.Correct, st.Total), pillStyle))
	return segs
}

func (m *Model) renderSummary() string {
	if m.summary == nil {
		return ""
	}
	lines := []string{titleStyle.Render(m.summary.Text())}
	if m.summary.Discarded {
		lines = append(lines, "", mutedStyle.Render("No answers, nothing saved."))
		return strings.Join(lines, "\n")
	}
	if m.summary.Streak > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Streak: %d days", m.summary.Streak)))
	}
	for _, id := range m.summary.NewBadges {
		def, ok := badges.Lookup(id)
		if !ok {
			continue
		}
		lines = append(lines, currentStyle.Render(fmt.Sprintf("%s %s", def.Icon, def.Name))+" "+mutedStyle.Render(def.Description))
	}
	return strings.Join(lines, "\n")
}
