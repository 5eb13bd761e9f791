package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
	"github.com/vovakirdan/tilefall/internal/registry"
	"github.com/vovakirdan/tilefall/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// Wish generates the key on first start if it does not exist.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the frame rate of local games.
	TickRate int

	// Table is used for tables created over SSH.
	Table TableSettings
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    30,
		Table:       TableSettings{CellWidth: 2},
	}
}

// SSHServer wraps a Wish SSH server that serves tilefall to every connection.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	coord    *multiplayer.Coordinator
	sessions *multiplayer.SessionRegistry
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server.
// The store may be nil; the coordinator and registry are shared with other front ends.
func NewSSHServer(
	cfg SSHServerConfig,
	store *storage.Store,
	coord *multiplayer.Coordinator,
	sessions *multiplayer.SessionRegistry,
	logger *log.Logger,
) (*SSHServer, error) {
	if cfg.HostKeyPath == "" {
		return nil, errors.New("ssh: host key path is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		coord:    coord,
		sessions: sessions,
		logger:   logger,
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	id := multiplayer.SessionID(fmt.Sprintf("%s-%d", sshSession.User(), time.Now().UnixNano()))
	handle := multiplayer.NewChannelSession(id, 64)
	if !s.sessions.Register(handle) {
		s.logger.Warn("duplicate session id", "session", id)
		return nil, nil
	}

	go func() {
		<-sshSession.Context().Done()
		s.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
		s.sessions.Unregister(id)
		handle.Close()
		if n := handle.Dropped(); n > 0 {
			s.logger.Warn("session dropped events", "session", id, "count", n)
		}
	}()

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}

	model := NewSessionModel(s.store, cfg, sshSession.User(), handle, s.coord, s.config.Table).
		WithLogger(s.logger)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// screen is the active view of a session.
type screen int

const (
	screenMenu screen = iota
	screenGame
	screenLayouts
	screenHistory
	screenTable
)

// SessionModel manages the full session flow: menu, games, history, and shared tables.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	store    *storage.Store
	config   core.RuntimeConfig
	username string
	handle   *multiplayer.ChannelSession
	coord    Sender
	table    TableSettings
	logger   *log.Logger

	active   screen
	menu     MenuModel
	game     GameModel
	layouts  LayoutMenuModel
	history  HistoryModel
	shared   TableModel
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(
	store *storage.Store,
	cfg core.RuntimeConfig,
	username string,
	handle *multiplayer.ChannelSession,
	coord Sender,
	table TableSettings,
) SessionModel {
	return SessionModel{
		store:    store,
		config:   cfg,
		username: username,
		handle:   handle,
		coord:    coord,
		table:    table,
		logger:   log.Default(),
		menu:     NewMenuModel(MenuItems(coord != nil && handle != nil), cfg),
	}
}

// WithLogger returns a copy of the model that logs to l.
func (m SessionModel) WithLogger(l *log.Logger) SessionModel {
	if l != nil {
		m.logger = l
	}
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.handle == nil {
		return m.menu.Init()
	}
	return tea.Batch(m.menu.Init(), waitForEvent(m.handle))
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if evt, ok := msg.(multiplayer.SessionEvent); ok {
		var cmd tea.Cmd
		// Replies to requests cancelled before leaving the table screen
		// still have to be consumed.
		if m.active == screenTable || m.shared.abandoned > 0 {
			var next tea.Model
			next, cmd = m.shared.Update(evt)
			m.shared = next.(TableModel)
		}
		return m, tea.Batch(cmd, waitForEvent(m.handle))
	}

	switch m.active {
	case screenGame:
		return m.updateGame(msg)
	case screenLayouts:
		return m.updateLayouts(msg)
	case screenHistory:
		return m.updateHistory(msg)
	case screenTable:
		return m.updateTable(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.active = screenMenu
	m.menu = NewMenuModel(MenuItems(m.coord != nil && m.handle != nil), m.config)
	return m, m.menu.Init()
}

func (m SessionModel) startGame(gameID string) (tea.Model, tea.Cmd) {
	game, err := registry.Create(gameID)
	if err != nil {
		m.logger.Error("cannot create game", "game", gameID, "error", err)
		return m.toMenu()
	}
	m.game = NewGameModel(game, m.store, m.config, m.username).WithLogger(m.logger)
	m.active = screenGame
	return m, m.game.Init()
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}

	// Sub-models quit their own program on selection; inside a session we
	// only switch screens, so their tea.Quit is dropped from here on.
	switch selected.Kind {
	case ItemLayouts:
		m.layouts = NewLayoutMenuModel(m.config.ScreenW, m.config.ScreenH)
		m.active = screenLayouts
		return m, nil
	case ItemHistory:
		m.history = NewHistoryModel(m.store, m.config.ScreenW, m.config.ScreenH)
		m.active = screenHistory
		return m, nil
	case ItemShared:
		return m.openTable()
	default:
		return m.startGame(selected.GameID)
	}
}

func (m SessionModel) openTable() (tea.Model, tea.Cmd) {
	owed := m.shared.abandoned
	m.shared = NewTableModel(m.handle.ID(), m.coord, m.table, m.config.ScreenW, m.config.ScreenH)
	m.shared.abandoned = owed
	m.active = screenTable
	return m, nil
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	m.game = next.(GameModel)

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateLayouts(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.layouts.Update(msg)
	m.layouts = next.(LayoutMenuModel)

	switch {
	case m.layouts.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.layouts.WantsBack():
		return m.toMenu()
	case m.layouts.Selected() != "":
		game := tilefall.NewLayoutWith(m.layouts.Selected())
		m.game = NewGameModel(game, m.store, m.config, m.username).WithLogger(m.logger)
		m.active = screenGame
		return m, m.game.Init()
	}
	return m, cmd
}

func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.history.Update(msg)
	m.history = next.(HistoryModel)

	switch {
	case m.history.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.history.IsGoingBack():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.shared.Update(msg)
	m.shared = next.(TableModel)

	switch {
	case m.shared.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.shared.BackToMenu():
		m.coord.Send(multiplayer.LeaveTableMsg{SessionID: m.handle.ID()})
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.active {
	case screenGame:
		return m.game.View()
	case screenLayouts:
		return m.layouts.View()
	case screenHistory:
		return m.history.View()
	case screenTable:
		return m.shared.View()
	default:
		return m.menu.View()
	}
}
