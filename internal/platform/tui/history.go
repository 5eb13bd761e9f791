package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilefall/internal/storage"
)

const maxHistory = 200 // Max games to load

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Delete, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing the game journal.
type HistoryModel struct {
	store     *storage.Store
	games     []storage.GameSummary
	stats     storage.Stats
	err       error
	table     table.Model
	help      help.Model
	keys      HistoryKeyMap
	theme     Theme
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewHistoryModel creates a history model and loads the journal.
func NewHistoryModel(store *storage.Store, width, height int) HistoryModel {
	m := HistoryModel{
		store:  store,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		theme:  GetTheme(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Board", Width: 16},
		{Title: "Size", Width: 7},
		{Title: "Moves", Width: 6},
		{Title: "Cleared", Width: 9},
		{Title: "Player", Width: 12},
		{Title: "Date", Width: 13},
	}

	height := m.height - 9 // title, stats, help, and margins
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads recent games and totals from the store.
func (m *HistoryModel) load() {
	m.games = nil
	m.err = nil
	if m.store != nil {
		m.games, m.err = m.store.RecentGames(maxHistory)
		if m.err == nil {
			m.stats, m.err = m.store.Stats()
		}
	}
	m.updateTableRows()
}

func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.games))
	for i, g := range m.games {
		rows[i] = historyRow(g)
	}
	m.table.SetRows(rows)
}

// historyRow formats one journal entry for the table.
func historyRow(g storage.GameSummary) table.Row {
	board := g.LayoutID
	switch {
	case g.Mode == storage.ModeShared:
		board = "table " + g.TableCode
	case board == "":
		board = "seed " + strconv.FormatInt(g.Seed%100000, 10)
	}
	cleared := fmt.Sprintf("%d/%d", g.Cleared, g.Tiles)
	if g.Finished() {
		cleared = "all"
	}
	return table.Row{
		strconv.FormatInt(g.ID, 10),
		board,
		fmt.Sprintf("%dx%d", g.Width, g.Height),
		strconv.Itoa(g.Moves),
		cleared,
		g.Player,
		g.CreatedAt.Format("Jan 02 15:04"),
	}
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Delete):
			m.deleteSelected()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *HistoryModel) deleteSelected() {
	if m.store == nil || len(m.games) == 0 {
		return
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.games) {
		return
	}
	if err := m.store.DeleteGame(m.games[idx].ID); err != nil {
		m.err = err
		return
	}
	m.load()
	if idx >= len(m.games) {
		idx = len(m.games) - 1
	}
	if idx >= 0 {
		m.table.SetCursor(idx)
	}
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("H I S T O R Y"), m.width))
	b.WriteString("\n\n")

	summary := fmt.Sprintf("%d boards  |  %d cleared  |  %d moves  |  %d tiles removed",
		m.stats.Games, m.stats.BoardsCleared, m.stats.Moves, m.stats.TilesCleared)
	b.WriteString(centerText(m.theme.MenuDescription.Render(summary), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case m.err != nil:
		b.WriteString(centerText(m.theme.Error.Render(m.err.Error()), m.width))
	case len(m.games) == 0:
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No boards journaled yet.\nPlay a game to start a history!")
		b.WriteString(centerText(tableStyle.Render(empty), m.width))
	default:
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.help.View(m.keys)))

	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store *storage.Store, width, height int) (goBack bool, err error) {
	finalModel, err := tea.NewProgram(NewHistoryModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
