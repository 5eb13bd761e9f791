package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	platformcore "github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
)

// TableState is the current step of the shared table flow.
type TableState int

const (
	TableStateChoose    TableState = iota // Create, join, or watch
	TableStateEnterCode                   // Typing a table code
	TableStateWaiting                     // Request sent, waiting for the coordinator
	TableStateAtTable                     // Seated as player or watcher
	TableStateClosed                      // Table closed under us
)

// TableSettings are used when this session creates a table.
type TableSettings struct {
	Width     int
	Height    int
	Colours   int
	CellWidth int
}

// Sender delivers messages to the coordinator.
type Sender interface {
	Send(msg multiplayer.CoordinatorMessage)
}

// TableModel drives one session through the shared table flow.
// Session events arrive as tea messages; the owner of the program is
// responsible for pumping them with waitForEvent.
type TableModel struct {
	state     TableState
	sessionID multiplayer.SessionID
	coord     Sender
	settings  TableSettings
	theme     Theme
	keys      GameKeyMap
	help      help.Model

	width  int
	height int
	screen *platformcore.Screen

	codeInput textinput.Model
	watching  bool // Code entry leads to a watch request
	errMsg    string

	code     string
	role     multiplayer.Role
	players  []multiplayer.SessionID
	watchers int
	board    core.Snapshot
	moves    int
	lastBy   multiplayer.SessionID
	lastN    int
	cursor   core.Coord
	hover    map[core.Coord]bool
	box      platformcore.Rect
	closedBy multiplayer.CloseReason

	// abandoned counts create or join replies still owed for requests
	// cancelled while waiting.
	abandoned int

	backToMenu bool
	quitting   bool
}

// NewTableModel creates the shared table flow for one session.
func NewTableModel(id multiplayer.SessionID, coord Sender, settings TableSettings, width, height int) TableModel {
	if settings.CellWidth < 1 {
		settings.CellWidth = 2
	}
	ti := textinput.New()
	ti.Placeholder = "ABC123"
	ti.CharLimit = 6
	ti.Width = 8
	ti.Prompt = "Code: "

	return TableModel{
		state:     TableStateChoose,
		sessionID: id,
		coord:     coord,
		settings:  settings,
		theme:     GetTheme(),
		keys:      DefaultGameKeyMap(),
		help:      help.New(),
		width:     width,
		height:    height,
		screen:    platformcore.NewScreen(width, max(height-1, 1)),
		codeInput: ti,
	}
}

// waitForEvent returns a command that delivers the next session event.
func waitForEvent(s *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-s.Events():
			return evt
		case <-s.Done():
			return nil
		}
	}
}

// Init initializes the model.
func (m TableModel) Init() tea.Cmd {
	return nil
}

// Update handles keys, mouse input, and session events.
func (m TableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.layoutBoard()
		return m, nil
	case multiplayer.SessionEvent:
		m.handleEvent(msg)
		return m, nil
	}

	if m.state == TableStateEnterCode {
		var cmd tea.Cmd
		m.codeInput, cmd = m.codeInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *TableModel) handleEvent(evt multiplayer.SessionEvent) {
	switch e := evt.(type) {
	case multiplayer.TableCreatedEvent:
		if m.skipReply() {
			return
		}
		m.seat(e.Code, multiplayer.RolePlayer, []multiplayer.SessionID{m.sessionID}, e.Board, 0)
	case multiplayer.TableJoinedEvent:
		if m.skipReply() {
			return
		}
		m.seat(e.Code, e.Role, e.Players, e.Board, e.Moves)
	case multiplayer.MembersEvent:
		if !m.atTable(e.Code) {
			return
		}
		m.players = e.Players
		m.watchers = e.Watchers
	case multiplayer.BoardEvent:
		if !m.atTable(e.Code) {
			return
		}
		m.board = e.Board
		m.moves = e.Moves
		m.lastBy = e.By
		m.lastN = len(e.Removed)
		m.errMsg = ""
		m.clampCursor()
		m.layoutBoard()
		m.refreshHover()
	case multiplayer.TableErrorEvent:
		if m.state != TableStateAtTable && m.skipReply() {
			return
		}
		m.errMsg = e.Message
		if m.state == TableStateWaiting {
			m.state = TableStateChoose
		}
	case multiplayer.TableClosedEvent:
		if !m.atTable(e.Code) {
			return
		}
		m.state = TableStateClosed
		m.closedBy = e.Reason
	}
}

// skipReply consumes one reply owed to a cancelled request.
func (m *TableModel) skipReply() bool {
	if m.abandoned == 0 {
		return false
	}
	m.abandoned--
	return true
}

func (m *TableModel) atTable(code string) bool {
	return m.state == TableStateAtTable && code == m.code
}

// cancelWait gives up on a pending create or join. The coordinator handles
// messages in order, so the leave releases whatever seat the request got.
func (m *TableModel) cancelWait() {
	m.coord.Send(multiplayer.LeaveTableMsg{SessionID: m.sessionID})
	m.abandoned++
	m.state = TableStateChoose
}

func (m *TableModel) seat(code string, role multiplayer.Role, players []multiplayer.SessionID, board core.Snapshot, moves int) {
	m.state = TableStateAtTable
	m.code = code
	m.role = role
	m.players = players
	m.board = board
	m.moves = moves
	m.lastBy = ""
	m.lastN = 0
	m.errMsg = ""
	m.cursor = core.C(0, 0)
	m.layoutBoard()
	m.refreshHover()
}

func (m TableModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case TableStateChoose, TableStateClosed:
		return m.handleChooseKey(msg)
	case TableStateEnterCode:
		return m.handleCodeKey(msg)
	case TableStateWaiting:
		if key.Matches(msg, m.keys.Back) {
			m.cancelWait()
		}
		return m, nil
	case TableStateAtTable:
		return m.handleTableKey(msg)
	}
	return m, nil
}

func (m TableModel) handleChooseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c", "1":
		m.errMsg = ""
		m.state = TableStateWaiting
		m.coord.Send(multiplayer.CreateTableMsg{
			SessionID: m.sessionID,
			Width:     m.settings.Width,
			Height:    m.settings.Height,
			Colours:   m.settings.Colours,
		})
	case "j", "2", "w", "3":
		m.errMsg = ""
		m.watching = msg.String() == "w" || msg.String() == "3"
		m.state = TableStateEnterCode
		m.codeInput.SetValue("")
		return m, m.codeInput.Focus()
	case "esc", "b":
		m.backToMenu = true
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m TableModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.codeInput.Blur()
		m.state = TableStateChoose
		return m, nil
	case "enter":
		code := strings.ToUpper(strings.TrimSpace(m.codeInput.Value()))
		if code == "" {
			m.errMsg = "Enter a table code"
			return m, nil
		}
		m.codeInput.Blur()
		m.state = TableStateWaiting
		if m.watching {
			m.coord.Send(multiplayer.WatchTableMsg{SessionID: m.sessionID, Code: code})
		} else {
			m.coord.Send(multiplayer.JoinTableMsg{SessionID: m.sessionID, Code: code})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.codeInput, cmd = m.codeInput.Update(msg)
	return m, cmd
}

func (m TableModel) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action := m.keys.ActionFor(msg); action {
	case platformcore.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case platformcore.ActionBack:
		m.coord.Send(multiplayer.LeaveTableMsg{SessionID: m.sessionID})
		m.state = TableStateChoose
		m.code = ""
	case platformcore.ActionUp:
		m.cursor.Y++
	case platformcore.ActionDown:
		m.cursor.Y--
	case platformcore.ActionLeft:
		m.cursor.X--
	case platformcore.ActionRight:
		m.cursor.X++
	case platformcore.ActionJump, platformcore.ActionConfirm:
		m.selectAt(m.cursor)
	case platformcore.ActionRestart:
		m.coord.Send(multiplayer.RedealMsg{SessionID: m.sessionID})
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
	}
	m.clampCursor()
	m.refreshHover()
	return m, nil
}

func (m *TableModel) handleMouse(msg tea.MouseMsg) {
	if m.state != TableStateAtTable {
		return
	}
	x, y, click, ok := pointerFromMouse(msg)
	if !ok {
		return
	}
	c, inside := tilefall.CellAt(m.box, m.settings.CellWidth, m.board.Height, x, y)
	if !inside {
		return
	}
	m.cursor = c
	if click {
		m.selectAt(c)
	}
	m.refreshHover()
}

func (m *TableModel) selectAt(c core.Coord) {
	if m.role != multiplayer.RolePlayer {
		m.errMsg = "Watchers cannot select"
		return
	}
	if m.board.ColourAt(c.X, c.Y).IsEmpty() {
		return
	}
	m.coord.Send(multiplayer.SelectMsg{SessionID: m.sessionID, X: c.X, Y: c.Y})
}

func (m *TableModel) clampCursor() {
	if m.board.Width == 0 || m.board.Height == 0 {
		m.cursor = core.C(0, 0)
		return
	}
	m.cursor.X = platformcore.Clamp(m.cursor.X, 0, m.board.Width-1)
	m.cursor.Y = platformcore.Clamp(m.cursor.Y, 0, m.board.Height-1)
}

// refreshHover highlights the group under the cursor.
func (m *TableModel) refreshHover() {
	m.hover = nil
	if m.state != TableStateAtTable || m.role != multiplayer.RolePlayer {
		return
	}
	grid, err := m.board.Grid()
	if err != nil {
		return
	}
	component, err := core.FindComponent(grid, m.cursor.X, m.cursor.Y)
	if err != nil || len(component) < 2 {
		return
	}
	m.hover = make(map[core.Coord]bool, len(component))
	for _, c := range component {
		m.hover[c] = true
	}
}

// layoutBoard centers the board between the status lines and the help bar.
func (m *TableModel) layoutBoard() {
	box := tilefall.BoardRect(0, 0, m.board, m.settings.CellWidth)
	box.X = (m.width - box.W) / 2
	box.Y = 3 + (m.height-5-box.H)/2
	if box.Y < 3 {
		box.Y = 3
	}
	m.box = box
}

// View renders the current step.
func (m TableModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	if m.state == TableStateAtTable {
		return m.viewTable()
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("S H A R E D   T A B L E"), m.width))
	b.WriteString("\n\n")

	switch m.state {
	case TableStateChoose:
		for _, line := range []string{"[C] Create a table", "[J] Join with a code", "[W] Watch with a code"} {
			b.WriteString(centerText(m.theme.MenuItemNormal.Render(line), m.width))
			b.WriteString("\n")
		}
	case TableStateEnterCode:
		label := "Join table"
		if m.watching {
			label = "Watch table"
		}
		b.WriteString(centerText(m.theme.MenuDescription.Render(label), m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(m.codeInput.View(), m.width))
		b.WriteString("\n")
	case TableStateWaiting:
		b.WriteString(centerText(m.theme.MenuDescription.Render("Waiting for the table..."), m.width))
		b.WriteString("\n")
	case TableStateClosed:
		b.WriteString(centerText(m.theme.Error.Render(m.closedBy.String()), m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(m.theme.MenuItemNormal.Render("[C] Create  [J] Join  [W] Watch"), m.width))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(centerText(m.theme.Error.Render(m.errMsg), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.Help.Render("Esc: Back  |  Q: Quit"), m.width))
	b.WriteString("\n")
	return b.String()
}

func (m TableModel) viewTable() string {
	s := m.screen
	s.Clear()

	status := fmt.Sprintf("Table %s  |  %s  |  %d players  %d watching  |  Moves: %d  Left: %d",
		m.code, m.role, len(m.players), m.watchers, m.moves, m.board.Remaining())
	s.DrawTextCenteredWithColor(0, status, platformcore.ColorBrightWhite)

	switch {
	case m.errMsg != "":
		s.DrawTextCenteredWithColor(1, m.errMsg, platformcore.ColorBrightRed)
	case m.board.Remaining() == 0:
		s.DrawTextCenteredWithColor(1, "Board cleared! Press R for a new one", platformcore.ColorBrightGreen)
	case m.lastBy != "":
		s.DrawTextCenteredWithColor(1, fmt.Sprintf("%s removed %d", DisplayName(m.lastBy), m.lastN), platformcore.ColorGray)
	}

	style := tilefall.BoardStyle{CellWidth: m.settings.CellWidth, Highlight: m.hover}
	if m.role == multiplayer.RolePlayer {
		cursor := m.cursor
		style.Cursor = &cursor
	}
	if m.box.X >= 0 && m.box.Right() <= s.Width() && m.box.Bottom() <= s.Height() {
		tilefall.RenderBoard(s, m.box, m.board, style)
	} else {
		s.DrawTextCenteredWithColor(s.Height()/2, "Window too small", platformcore.ColorBrightRed)
	}

	return RenderScreenWith(s, m.theme) + "\n" + m.theme.Help.Render(m.help.View(m.keys))
}

// DisplayName strips the connection suffix from a session ID.
func DisplayName(id multiplayer.SessionID) string {
	s := string(id)
	if i := strings.LastIndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// State returns the current flow step.
func (m TableModel) State() TableState {
	return m.state
}

// Code returns the table code, or "" when not seated.
func (m TableModel) Code() string {
	return m.code
}

// BackToMenu returns true if user requested to go back to menu.
func (m TableModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user requested to quit entirely.
func (m TableModel) IsQuitting() bool {
	return m.quitting
}
