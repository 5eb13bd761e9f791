package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/registry"
	"github.com/vovakirdan/tilefall/internal/storage"
)

// Resizer is implemented by games that can keep their board across a
// terminal resize. Other games are reset instead.
type Resizer interface {
	Resize(w, h int)
}

// dealer is implemented by games that can describe how their board was dealt.
type dealer interface {
	Info() tilefall.Info
}

// GameModel is the Bubble Tea model for playing one game.
// It journals every dealt board and every move when a store is set.
type GameModel struct {
	game    registry.Game
	screen  *core.Screen
	store   *storage.Store
	player  string
	logger  *log.Logger
	config  core.RuntimeConfig
	input   core.InputFrame
	state   core.GameState
	keys    GameKeyMap
	help    help.Model
	theme   Theme
	gameRef int64 // Journal ID of the current board, 0 if not journaled
	seq     int

	width      int
	height     int
	standalone bool // Back quits the program instead of returning to a menu
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a model and deals the first board.
func NewGameModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, player string) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	m := GameModel{
		game:   game,
		store:  store,
		player: player,
		logger: log.New(io.Discard),
		config: cfg,
		input:  core.NewInputFrame(),
		keys:   DefaultGameKeyMap(),
		help:   help.New(),
		theme:  GetTheme(),
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
	}
	m.help.Width = cfg.ScreenW

	boardH := m.boardHeight()
	m.screen = core.NewScreen(cfg.ScreenW, boardH)
	m.config.ScreenH = boardH
	m.game.Reset(m.config)
	m.state = m.game.State()
	m.startJournal()
	return m
}

// WithLogger returns a copy of the model that logs journal failures to l.
func (m GameModel) WithLogger(l *log.Logger) GameModel {
	if l != nil {
		m.logger = l
	}
	return m
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if x, y, click, ok := pointerFromMouse(msg); ok {
			m.input.SetPointer(x, y, click)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil
	}

	switch action := m.keys.ActionFor(msg); action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
	case core.ActionNone:
	default:
		m.input.Set(action)
	}
	return m, nil
}

func (m *GameModel) helpHeight() int {
	if m.help.ShowAll {
		return 4
	}
	return 1
}

func (m *GameModel) boardHeight() int {
	h := m.height - m.helpHeight()
	if h < 1 {
		h = 1
	}
	return h
}

func (m *GameModel) resize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w
	boardH := m.boardHeight()
	m.config.ScreenW = w
	m.config.ScreenH = boardH
	m.screen.Resize(w, boardH)

	if r, ok := m.game.(Resizer); ok {
		r.Resize(w, boardH)
		return
	}
	m.game.Reset(m.config)
	m.state = m.game.State()
	m.startJournal()
}

func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.input)
	m.state = result.State

	if result.Dealt {
		m.startJournal()
	}
	if result.Move != nil {
		m.recordMove(*result.Move)
	}

	m.input.Clear()
	return m, tickCmd(m.config.TickRate)
}

// startJournal records the board that was just dealt.
func (m *GameModel) startJournal() {
	m.gameRef = 0
	m.seq = 0
	if m.store == nil {
		return
	}
	d, ok := m.game.(dealer)
	if !ok {
		return
	}
	info := d.Info()
	if info.Width == 0 || m.state.Remaining == 0 {
		return
	}

	id, err := m.store.CreateGame(storage.GameRecord{
		GameID:   m.game.ID(),
		Mode:     storage.ModeLocal,
		Player:   m.player,
		Seed:     info.Seed,
		Width:    info.Width,
		Height:   info.Height,
		Palette:  info.Palette,
		LayoutID: info.LayoutID,
		Tiles:    m.state.Remaining,
	})
	if err != nil {
		m.logger.Warn("could not journal board", "game", m.game.ID(), "error", err)
		return
	}
	m.gameRef = id
}

func (m *GameModel) recordMove(mv core.Move) {
	if m.store == nil || m.gameRef == 0 {
		return
	}
	m.seq++
	err := m.store.RecordMove(storage.MoveRecord{
		GameRef: m.gameRef,
		Seq:     m.seq,
		X:       mv.X,
		Y:       mv.Y,
		Removed: mv.Removed,
		Player:  m.player,
	})
	if err != nil {
		m.logger.Warn("could not journal move", "game", m.gameRef, "seq", m.seq, "error", err)
	}
}

// saveScreenshot saves the current board to a text file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".tilefall", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the board and the help bar.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreenWith(m.screen, m.theme) + "\n" + m.theme.Help.Render(m.help.View(m.keys))
}

// State returns the game state after the last frame.
func (m GameModel) State() core.GameState {
	return m.state
}

// JournalID returns the journal ID of the current board, or 0.
func (m GameModel) JournalID() int64 {
	return m.gameRef
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Config returns the runtime config, including the latest terminal size.
func (m GameModel) Config() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = m.height
	return cfg
}

// programOptions are shared by every full-screen program.
func programOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	}
}

// Run plays a single game until the user quits or goes back.
// It returns true if the user asked for the menu.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, player string) (backToMenu bool, err error) {
	model := NewGameModel(game, store, cfg, player)
	model.standalone = true

	finalModel, err := tea.NewProgram(model, programOptions()...).Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(GameModel)
	if !ok {
		return false, nil
	}
	return m.BackToMenu(), nil
}
