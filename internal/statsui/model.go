// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mathdrill/internal/badges"
	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/stats"
)

const (
	tabOverview = iota
	tabOperators
	tabBadges
)

const (
	plotHeight = 8
)

// windowChoices are the selectable chart windows in days.
var windowChoices = []int{7, 14, 30}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	unlockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	lockedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Source is the read side of the daily stat store.
type Source interface {
	stats.RecordLister
	GetDailyStat(ctx context.Context, date string) *model.DailyStatRecord
}

// BadgeSource reports the unlocked badge ids.
type BadgeSource interface {
	Unlocked(ctx context.Context) []string
}

// Config holds the dashboard start-up settings.
type Config struct {
	WindowDays int
	// Now replaces time.Now.
	Now func() time.Time
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src    Source
	badges BadgeSource
	now    func() time.Time
	window int

	report   stats.Report
	unlocked map[string]bool

	tabs      []string
	activeTab int
	viewports []viewport.Model
	opTable   table.Model
	opLayout  tableLayout

	width  int
	height int

	dayMode   bool
	dayInput  textinput.Model
	dayDetail string
	dayError  string
}

type tableLayout struct {
	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(src Source, bs BadgeSource, cfg Config) *Model {
	m := &Model{
		src:    src,
		badges: bs,
		now:    cfg.Now,
		window: cfg.WindowDays,
		tabs:   []string{"Overview", "Operators", "Badges"},
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.window <= 0 {
		m.window = stats.DefaultWindowDays
	}
	m.initDayInput()
	m.initOpTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.dayMode {
			return m.updateDayInput(msg)
		}
		if m.activeTab == tabOperators {
			m.opTable.Focus()
		} else {
			m.opTable.Blur()
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.window = nextWindow(m.window)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.window = prevWindow(m.window)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		case "/":
			return m.startDayInput()
		case "g", "home":
			if m.activeTab == tabOperators {
				m.opTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabOperators {
				m.opTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabOperators {
				var cmd tea.Cmd
				m.opTable, cmd = m.opTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	if m.dayMode {
		var cmd tea.Cmd
		m.dayInput, cmd = m.dayInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.dayMode {
		return fitLines(m.renderDayModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initOpTable() {
	m.opTable = table.New(
		table.WithColumns(opColumns()),
		table.WithHeight(1),
	)
	m.opTable.SetStyles(opTableStyles())
}

func (m *Model) initDayInput() {
	input := textinput.New()
	input.Prompt = "Date (YYYY-MM-DD): "
	input.CharLimit = len(model.DateLayout)
	input.Cursor.SetMode(cursor.CursorBlink)
	m.dayInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setOpTableSize(m.width, vpHeight)
	promptWidth := lipgloss.Width(m.dayInput.Prompt)
	m.dayInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabOperators {
		m.opTable.Focus()
	} else {
		m.opTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	settings := padLines(m.renderSettings(), m.width)
	return tabs + "\n" + settings
}

func (m *Model) renderSettings() string {
	summary := fmt.Sprintf("Window: %d days  Today: %s  Streak: %d (best %d)",
		m.window, m.report.Today, m.report.Streak, m.report.LongestStreak)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Day: /  Refresh: r  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabOperators {
		if m.report.Lifetime.Sessions == 0 {
			return fitLines("No sessions recorded yet.", m.width, height)
		}
		view := tableMutedStyle.Render(m.opTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	ctx := context.Background()
	m.report = stats.BuildReport(ctx, m.src, m.now(), m.window)
	m.unlocked = map[string]bool{}
	if m.badges != nil {
		for _, id := range m.badges.Unlocked(ctx) {
			m.unlocked[id] = true
		}
	}
	m.opTable.SetRows(buildOpRows(m.report.Operators))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabBadges].SetContent(renderBadges(m.unlocked))
}

func renderOverview(r stats.Report, width int) string {
	if r.Lifetime.Sessions == 0 {
		return "No sessions recorded yet."
	}
	parts := []string{
		renderSummaryCards(r, width),
		headerStyle.Render(r.Chart.Summary.String()),
	}
	if weak := stats.WeakestOperators(r.Operators, 2); len(weak) > 0 {
		syms := make([]string, len(weak))
		for i, op := range weak {
			syms[i] = op.Symbol()
		}
		parts = append(parts, headerStyle.Render("Practice next: "+strings.Join(syms, " ")))
	}
	parts = append(parts, "", renderCharts(r, width))
	return strings.TrimRight(strings.Join(parts, "\n"), "\n")
}

func renderSummaryCards(r stats.Report, width int) string {
	avg := "—"
	if r.Chart.Summary.AvgTimeMs > 0 {
		avg = stats.FormatSeconds(r.Chart.Summary.AvgTimeMs) + "s"
	}
	cards := []string{
		metricCard("Attempts", fmt.Sprintf("%d", r.Chart.Summary.Attempts)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", r.Chart.Summary.Accuracy*100)),
		metricCard("Avg Time", avg),
		metricCard("Streak", fmt.Sprintf("%d days", r.Streak)),
		metricCard("Badges", fmt.Sprintf("%d", r.Chart.Summary.Badges)),
		metricCard("Lifetime", fmt.Sprintf("%d in %d sessions", r.Lifetime.Total, r.Lifetime.Sessions)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCharts(r stats.Report, width int) string {
	var buf bytes.Buffer
	labels := stats.ShortDates(r.Chart.Dates)
	plotWidth := stats.PlotWidthFor(width)
	plots := []stats.Plot{
		{
			Title:     "Accuracy (%)",
			Series:    []stats.Series{{Name: "Accuracy", Values: r.Chart.Accuracy}},
			Labels:    labels,
			Unit:      "%",
			Width:     plotWidth,
			Height:    plotHeight,
			ZeroBased: true,
			Color:     true,
		},
		{
			Title:     "Avg time (ms)",
			Series:    []stats.Series{{Name: "Avg time", Values: stats.IntsToFloats(r.Chart.AvgTimeMs)}},
			Labels:    labels,
			Width:     plotWidth,
			Height:    plotHeight,
			ZeroBased: true,
			Color:     true,
		},
	}
	for _, p := range plots {
		if err := p.Render(&buf); err != nil {
			return fmt.Sprintf("Failed to render chart: %v", err)
		}
	}
	if err := stats.PlotBars(&buf, "Attempts", labels, stats.IntsToFloats(r.Chart.Attempts), width); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	if err := stats.PlotBars(&buf, "Badges earned", labels, stats.IntsToFloats(r.Chart.Badges), width); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderBadges(unlocked map[string]bool) string {
	catalog := badges.Catalog()
	count := 0
	lines := make([]string, 0, len(catalog)+2)
	for _, def := range catalog {
		if unlocked[def.ID] {
			count++
			lines = append(lines, unlockedStyle.Render(fmt.Sprintf("%s %s", def.Icon, def.Name))+"  "+def.Description)
			continue
		}
		lines = append(lines, lockedStyle.Render(fmt.Sprintf("🔒 %s  %s", def.Name, def.Description)))
	}
	head := cardValueStyle.Render(fmt.Sprintf("Unlocked %d of %d", count, len(catalog)))
	return head + "\n\n" + strings.Join(lines, "\n")
}

func opColumns() []table.Column {
	return []table.Column{
		{Title: "Op", Width: 4},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Time (s)", Width: 13},
		{Title: "Correct", Width: 8},
		{Title: "Total", Width: 7},
	}
}

func buildOpRows(rows []stats.OperatorRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row(stats.OperatorCells(r)))
	}
	return out
}

func (m *Model) setOpTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.opLayout.width == width && m.opLayout.height == viewportHeight {
		return
	}
	m.opLayout.width = width
	m.opLayout.height = viewportHeight
	m.opTable.SetWidth(width)
	m.opTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustOpTableHeight(height)
	if m.opLayout.height != viewportHeight {
		m.opLayout.height = viewportHeight
		m.opTable.SetHeight(viewportHeight)
	}
}

func (m *Model) adjustOpTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.opTable.Height()
	viewHeight := lipgloss.Height(m.opTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func opTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startDayInput() (tea.Model, tea.Cmd) {
	m.dayMode = true
	m.dayError = ""
	m.dayDetail = ""
	m.dayInput.SetValue(m.report.Today)
	m.dayInput.CursorEnd()
	return m, m.dayInput.Focus()
}

func (m *Model) updateDayInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.dayMode = false
		m.dayInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.lookupDay()
		return m, nil
	}
	var cmd tea.Cmd
	m.dayInput, cmd = m.dayInput.Update(msg)
	return m, cmd
}

func (m *Model) lookupDay() {
	m.dayDetail = ""
	m.dayError = ""
	date := strings.TrimSpace(m.dayInput.Value())
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		m.dayError = "invalid date (expected YYYY-MM-DD)"
		return
	}
	rec := m.src.GetDailyStat(context.Background(), date)
	if rec == nil || rec.Total == 0 {
		m.dayError = fmt.Sprintf("no practice recorded on %s", date)
		return
	}
	m.dayDetail = renderDay(*rec)
}

func renderDay(rec model.DailyStatRecord) string {
	lines := []string{
		fmt.Sprintf("%s: %d attempts • %.1f%% accuracy • avg %ss",
			rec.Date, rec.Total, rec.Accuracy*100, stats.FormatSeconds(rec.AvgTimeMs)),
	}
	modes := make([]string, 0, len(model.Modes))
	for _, md := range model.Modes {
		modes = append(modes, fmt.Sprintf("%s %d", md, rec.ModeCount[md]))
	}
	lines = append(lines, fmt.Sprintf("Sessions: %d (%s)", rec.Sessions, strings.Join(modes, ", ")))
	for _, op := range model.Operators {
		st := rec.PerOp[op]
		if st.Total == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s  %d/%d  avg %ss", op.Symbol(), st.Correct, st.Total, stats.FormatSeconds(st.AvgTimeMs())))
	}
	if rec.BadgesEarned > 0 {
		lines = append(lines, fmt.Sprintf("Badges earned: %d", rec.BadgesEarned))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDayModal() string {
	body := []string{
		cardValueStyle.Render("Look up a day"),
		m.dayInput.View(),
		headerStyle.Render("Enter to look up / Esc to close"),
	}
	if m.dayError != "" {
		body = append(body, errorStyle.Render(m.dayError))
	}
	if m.dayDetail != "" {
		body = append(body, "", m.dayDetail)
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func nextWindow(n int) int {
	for _, w := range windowChoices {
		if w > n {
			return w
		}
	}
	return windowChoices[len(windowChoices)-1]
}

func prevWindow(n int) int {
	for i := len(windowChoices) - 1; i >= 0; i-- {
		if windowChoices[i] < n {
			return windowChoices[i]
		}
	}
	return windowChoices[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
