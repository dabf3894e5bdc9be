// Package statsui provides the Bubble Tea journal dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tcgjournal/internal/model"
	"github.com/verte-zerg/tcgjournal/internal/stats"
)

const (
	tabOverview = iota
	tabDecks
	tabOpponents
	tabTimeline
	tabRecent
)

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
)

// Loader reads the current journal collections.
type Loader interface {
	Load(ctx context.Context) (model.Snapshot, error)
}

// Config holds the dashboard's starting filter and rendering options.
type Config struct {
	Filter   model.StatsFilter
	Recent   int
	BarWidth int
}

// ReloadMsg asks the dashboard to reload from its Loader, for example
// after another process changed the journal.
type ReloadMsg struct{}

// Model implements the Bubble Tea dashboard.
type Model struct {
	loader Loader
	cfg    Config

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a dashboard model and loads the first report.
func NewModel(loader Loader, cfg Config) *Model {
	if cfg.Recent <= 0 {
		cfg.Recent = stats.DefaultRecent
	}
	m := &Model{
		loader: loader,
		cfg:    cfg,
		tabs:   []string{"Overview", "Decks", "Opponents", "Timeline", "Recent"},
	}
	m.initInputs()
	m.initTables()
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
	case ReloadMsg:
		m.refreshReport()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "r":
			m.refreshReport()
			return m, nil
		case "g", "home":
			if t := m.activeTable(); t != nil {
				t.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if t := m.activeTable(); t != nil {
				t.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if t := m.activeTable(); t != nil {
				var cmd tea.Cmd
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Report returns the report currently on screen.
func (m *Model) Report() stats.Report {
	return m.report
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Deck: "),
		newFilterInput("Opponent: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initTables() {
	decks := buildTable(deckColumns(), nil, 0, 1)
	opponents := buildTable(opponentColumns(), nil, 0, 1)
	m.tables = map[int]*table.Model{
		tabDecks:     &decks,
		tabOpponents: &opponents,
	}
}

func (m *Model) activeTable() *table.Model {
	return m.tables[m.activeTab]
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	f := m.cfg.Filter
	m.filterInputs[0].SetValue(f.Deck)
	m.filterInputs[1].SetValue(f.Opponent)
	if f.Since != nil {
		m.filterInputs[2].SetValue(f.Since.Format(model.DateLayout))
	} else {
		m.filterInputs[2].SetValue("")
	}
	if f.Last > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(f.Last))
	} else {
		m.filterInputs[3].SetValue("")
	}
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
	for _, t := range m.tables {
		setTableSize(t, m.width, vpHeight)
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
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
	for idx, t := range m.tables {
		if idx == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
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
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	summary := fmt.Sprintf("Filter: %s  Games: %d", stats.FormatFilter(m.cfg.Filter), m.report.Overall.TotalGames)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Reload: r  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	switch m.activeTab {
	case tabDecks:
		if len(m.report.Decks) == 0 {
			return fitLines("No decks yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.tables[tabDecks].View()), m.width, height)
	case tabOpponents:
		if len(m.report.Opponents) == 0 {
			return fitLines("No games logged.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.tables[tabOpponents].View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	snap, err := m.loader.Load(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load journal.")
		}
		return
	}
	m.errMsg = ""
	m.report = stats.NewReport(snap, m.cfg.Filter, m.cfg.Recent)
	m.tables[tabDecks].SetRows(deckRows(m.report.Decks))
	m.tables[tabOpponents].SetRows(opponentRows(m.report.Opponents))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load journal.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width, m.cfg.BarWidth))
	m.viewports[tabTimeline].SetContent(renderTimeline(m.report.Timeline, width, m.cfg.BarWidth))
	m.viewports[tabRecent].SetContent(renderRecent(m.report.Recent))
}

func renderOverview(r stats.Report, width, barWidth int) string {
	if r.Overall.TotalGames == 0 && r.DeckCount == 0 {
		return "No decks or games yet. Add a deck with `tcgjournal deck add`."
	}
	summary := renderSummaryCards(r, width)
	rates := renderDeckRates(r.Decks, width, barWidth)
	return strings.TrimRight(summary+"\n\n"+rates, "\n")
}

func renderSummaryCards(r stats.Report, width int) string {
	o := r.Overall
	cards := []string{
		metricCard("Games", fmt.Sprintf("%d", o.TotalGames)),
		metricCard("Win Rate", fmt.Sprintf("%.1f%%", o.OverallWinRate)),
		metricCard("Record", fmt.Sprintf("%d-%d-%d", o.TotalWins, o.TotalLosses, o.TotalDraws)),
		metricCard("Decks", fmt.Sprintf("%d", r.DeckCount)),
		metricCard("Opponents", fmt.Sprintf("%d", len(r.Opponents))),
		metricCard("Streak", stats.FormatStreak(r.Streaks.CurrentStreak)),
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

func renderDeckRates(decks []model.DeckStats, width, barWidth int) string {
	if len(decks) == 0 {
		return ""
	}
	bars := make([]stats.Bar, len(decks))
	labelWidth := 0
	for i, d := range decks {
		bars[i] = stats.Bar{Label: d.Name, Value: d.WinRate}
		if lw := lipgloss.Width(d.Name); lw > labelWidth {
			labelWidth = lw
		}
	}
	if barWidth <= 0 {
		barWidth = maxInt(10, width-labelWidth-12)
	}
	var buf bytes.Buffer
	if err := stats.RateChart(&buf, "Deck Win Rates", bars, barWidth, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTimeline(entries []model.TimelineEntry, width, barWidth int) string {
	if barWidth <= 0 {
		barWidth = maxInt(10, width-len(model.DateLayout)-20)
	}
	var buf bytes.Buffer
	if err := stats.TimelineChart(&buf, "", entries, barWidth, true); err != nil {
		return fmt.Sprintf("Failed to render timeline: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderRecent(games []model.GameRecord) string {
	if len(games) == 0 {
		return "No games logged."
	}
	var buf bytes.Buffer
	if err := stats.WriteTable(&buf, stats.GameHeaders(), stats.GameRows(games), map[int]bool{0: true}); err != nil {
		return fmt.Sprintf("Failed to render recent games: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func deckColumns() []table.Column {
	return []table.Column{
		{Title: "Deck", Width: 20},
		{Title: "Colors", Width: 10},
		{Title: "Leader", Width: 14},
		{Title: "W", Width: 4},
		{Title: "L", Width: 4},
		{Title: "D", Width: 4},
		{Title: "Games", Width: 6},
		{Title: "Win %", Width: 7},
	}
}

func deckRows(decks []model.DeckStats) []table.Row {
	rows := make([]table.Row, 0, len(decks))
	for _, d := range decks {
		rows = append(rows, table.Row{
			d.Name,
			d.Colors,
			d.Leader,
			strconv.Itoa(d.Wins),
			strconv.Itoa(d.Losses),
			strconv.Itoa(d.Draws),
			strconv.Itoa(d.Total),
			fmt.Sprintf("%.1f%%", d.WinRate),
		})
	}
	return rows
}

func opponentColumns() []table.Column {
	return []table.Column{
		{Title: "Opponent", Width: 20},
		{Title: "W", Width: 4},
		{Title: "L", Width: 4},
		{Title: "D", Width: 4},
		{Title: "Games", Width: 6},
		{Title: "Win %", Width: 7},
	}
}

func opponentRows(opps []model.OpponentStats) []table.Row {
	rows := make([]table.Row, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, table.Row{
			o.Opponent,
			strconv.Itoa(o.Wins),
			strconv.Itoa(o.Losses),
			strconv.Itoa(o.Draws),
			strconv.Itoa(o.Total),
			fmt.Sprintf("%.1f%%", o.WinRate),
		})
	}
	return rows
}

func buildTable(columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func setTableSize(t *table.Model, width, height int) {
	t.SetWidth(width)
	t.SetHeight(maxInt(1, height-1))
	// The header and its border take lines the height setting ignores.
	if extra := lipgloss.Height(t.View()) - height; extra > 0 {
		t.SetHeight(maxInt(1, t.Height()-extra))
	}
}

func tableStyles() table.Styles {
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

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		filter, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg.Filter = filter
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) parseFilter() (model.StatsFilter, error) {
	f := model.StatsFilter{
		Deck:     strings.TrimSpace(m.filterInputs[0].Value()),
		Opponent: strings.TrimSpace(m.filterInputs[1].Value()),
	}
	if sinceInput := strings.TrimSpace(m.filterInputs[2].Value()); sinceInput != "" {
		parsed, err := time.ParseInLocation(model.DateLayout, sinceInput, time.UTC)
		if err != nil {
			return model.StatsFilter{}, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		f.Since = &parsed
	}
	if lastInput := strings.TrimSpace(m.filterInputs[3].Value()); lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return model.StatsFilter{}, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		f.Last = parsed
	}
	return f, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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
