package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	TableTimeout  time.Duration // How long a table without players survives
	CleanupPeriod time.Duration // How often to look for expired tables
	MaxPlayers    int           // Players per table; watchers are unlimited
	MaxBoardSize  int           // Upper bound for width and height
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		TableTimeout:  2 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		MaxPlayers:    8,
		MaxBoardSize:  40,
	}
}

// Coordinator manages shared tables.
// All table state lives in the goroutine started by Start.
type Coordinator struct {
	config   CoordinatorConfig
	sessions *SessionRegistry
	journal  TableJournal // Optional, can be nil
	logger   *log.Logger
	now      func() time.Time

	tables       map[string]*table    // code -> table
	sessionTable map[SessionID]string // sessionID -> table code

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry) *Coordinator {
	def := DefaultCoordinatorConfig()
	if cfg.TableTimeout <= 0 {
		cfg.TableTimeout = def.TableTimeout
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = def.CleanupPeriod
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.MaxBoardSize <= 0 {
		cfg.MaxBoardSize = def.MaxBoardSize
	}
	return &Coordinator{
		config:       cfg,
		sessions:     sessions,
		logger:       log.New(io.Discard),
		now:          time.Now,
		tables:       make(map[string]*table),
		sessionTable: make(map[SessionID]string),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetJournal sets the optional table journal. Call before Start.
func (c *Coordinator) SetJournal(j TableJournal) {
	c.journal = j
}

// SetLogger sets the logger. Call before Start.
func (c *Coordinator) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	c.wg.Go(c.processMessages)
	c.wg.Go(c.cleanupLoop)
}

// Stop shuts down the coordinator and closes every table.
// It returns once every table has been closed. Safe to call multiple times.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// processMessages handles incoming messages until Stop.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			for code := range c.tables {
				c.closeTable(code, CloseReasonShutdown)
			}
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateTableMsg:
		c.handleCreateTable(m)
	case JoinTableMsg:
		c.handleJoin(m.SessionID, m.Code, RolePlayer)
	case WatchTableMsg:
		c.handleJoin(m.SessionID, m.Code, RoleWatcher)
	case SelectMsg:
		c.handleSelect(m)
	case RedealMsg:
		c.handleRedeal(m)
	case LeaveTableMsg:
		c.leave(m.SessionID)
	case SessionDisconnectedMsg:
		c.leave(m.SessionID)
	case inspectMsg:
		m.reply <- c.inspect(m.code)
	case cleanupMsg:
		c.cleanupExpiredTables()
	}
}

func (c *Coordinator) handleCreateTable(msg CreateTableMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	if _, atTable := c.sessionTable[msg.SessionID]; atTable {
		session.Send(TableErrorEvent{Message: "Already at a table"})
		return
	}

	width, height, colours := msg.Width, msg.Height, msg.Colours
	if width == 0 {
		width = core.DefaultWidth
	}
	if height == 0 {
		height = core.DefaultHeight
	}
	if colours == 0 {
		colours = 4
	}
	if width < 1 || height < 1 || width > c.config.MaxBoardSize || height > c.config.MaxBoardSize {
		session.Send(TableErrorEvent{Message: fmt.Sprintf("Board size must be between 1 and %d", c.config.MaxBoardSize)})
		return
	}
	if colours < 1 || colours > core.MaxColours {
		session.Send(TableErrorEvent{Message: fmt.Sprintf("Colours must be between 1 and %d", core.MaxColours)})
		return
	}

	seed := msg.Seed
	if seed == 0 {
		seed = c.now().UnixNano()
	}
	grid, err := core.NewGrid(width, height, core.SeededPainter(seed, colours))
	if err != nil {
		session.Send(TableErrorEvent{Message: "Failed to deal board"})
		return
	}

	code := c.generateUniqueCode()
	t := newTable(code, grid, seed, colours, c.now())
	t.addPlayer(session)
	c.tables[code] = t
	c.sessionTable[msg.SessionID] = code
	c.startJournal(t, msg.SessionID)

	c.logger.Info("table created", "code", code, "size", fmt.Sprintf("%dx%d", width, height), "colours", colours, "seed", seed)
	session.Send(TableCreatedEvent{Code: code, Board: grid.Snapshot()})
}

func (c *Coordinator) handleJoin(id SessionID, rawCode string, role Role) {
	session, ok := c.sessions.Get(id)
	if !ok {
		return
	}

	if _, atTable := c.sessionTable[id]; atTable {
		session.Send(TableErrorEvent{Message: "Already at a table"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(rawCode))
	t, exists := c.tables[code]
	if !exists {
		session.Send(TableErrorEvent{Message: "Table not found"})
		return
	}

	if role == RolePlayer {
		if len(t.players) >= c.config.MaxPlayers {
			session.Send(TableErrorEvent{Message: "Table is full"})
			return
		}
		t.addPlayer(session)
	} else {
		t.addWatcher(session)
	}
	c.sessionTable[id] = code

	session.Send(TableJoinedEvent{
		Code:    code,
		Role:    role,
		Players: t.playerIDs(),
		Board:   t.grid.Snapshot(),
		Moves:   t.moves,
	})
	t.broadcast(t.members())
}

func (c *Coordinator) handleSelect(msg SelectMsg) {
	session, _ := c.sessions.Get(msg.SessionID)

	t, role, ok := c.tableOf(msg.SessionID)
	if !ok {
		if session != nil {
			session.Send(TableErrorEvent{Message: "Not at a table"})
		}
		return
	}
	if role != RolePlayer {
		if session != nil {
			session.Send(TableErrorEvent{Message: "Watchers cannot select"})
		}
		return
	}

	removed, err := core.ResolveSelection(t.grid, msg.X, msg.Y)
	if err != nil {
		c.logger.Debug("rejected selection", "code", t.code, "session", msg.SessionID, "error", err)
		if session != nil {
			session.Send(TableErrorEvent{Message: "Selection out of bounds"})
		}
		return
	}
	if len(removed) == 0 {
		return
	}

	t.moves++
	if c.journal != nil && t.journalRef != 0 {
		err := c.journal.RecordTableMove(TableMove{
			GameRef: t.journalRef,
			Seq:     t.moves,
			X:       msg.X,
			Y:       msg.Y,
			Removed: len(removed),
			Player:  msg.SessionID,
		})
		if err != nil {
			c.logger.Warn("journal move failed", "code", t.code, "error", err)
		}
	}

	t.broadcast(BoardEvent{
		Code:    t.code,
		Board:   t.grid.Snapshot(),
		Removed: removed,
		By:      msg.SessionID,
		Moves:   t.moves,
	})
}

func (c *Coordinator) handleRedeal(msg RedealMsg) {
	session, _ := c.sessions.Get(msg.SessionID)
	t, role, ok := c.tableOf(msg.SessionID)
	if !ok || role != RolePlayer {
		if session != nil {
			session.Send(TableErrorEvent{Message: "Only players can deal a new board"})
		}
		return
	}
	if t.grid.Remaining() > 0 {
		if session != nil {
			session.Send(TableErrorEvent{Message: "Board not cleared yet"})
		}
		return
	}

	seed := msg.Seed
	if seed == 0 {
		seed = c.now().UnixNano()
	}
	grid, err := core.NewGrid(t.grid.Width(), t.grid.Height(), core.SeededPainter(seed, t.colours))
	if err != nil {
		return
	}
	t.grid = grid
	t.seed = seed
	t.moves = 0
	c.startJournal(t, msg.SessionID)

	c.logger.Info("table redealt", "code", t.code, "seed", seed)
	t.broadcast(BoardEvent{Code: t.code, Board: grid.Snapshot(), By: msg.SessionID})
}

// leave detaches a session from its table, if any.
func (c *Coordinator) leave(id SessionID) {
	code, ok := c.sessionTable[id]
	if !ok {
		return
	}
	delete(c.sessionTable, id)

	t, exists := c.tables[code]
	if !exists {
		return
	}
	if t.remove(id, c.now()) {
		t.broadcast(t.members())
	}
}

func (c *Coordinator) tableOf(id SessionID) (*table, Role, bool) {
	code, ok := c.sessionTable[id]
	if !ok {
		return nil, 0, false
	}
	t, exists := c.tables[code]
	if !exists {
		return nil, 0, false
	}
	role, ok := t.roleOf(id)
	return t, role, ok
}

func (c *Coordinator) startJournal(t *table, host SessionID) {
	t.journalRef = 0
	if c.journal == nil {
		return
	}
	ref, err := c.journal.StartTable(TableStart{
		Code:    t.code,
		Seed:    t.seed,
		Width:   t.grid.Width(),
		Height:  t.grid.Height(),
		Palette: core.Palette(t.colours),
		Tiles:   t.grid.Remaining(),
		Host:    host,
	})
	if err != nil {
		c.logger.Warn("journal start failed", "code", t.code, "error", err)
		return
	}
	t.journalRef = ref
}

func (c *Coordinator) closeTable(code string, reason CloseReason) {
	t, exists := c.tables[code]
	if !exists {
		return
	}
	t.broadcast(TableClosedEvent{Code: code, Reason: reason})
	for id := range t.players {
		delete(c.sessionTable, id)
	}
	for id := range t.watchers {
		delete(c.sessionTable, id)
	}
	delete(c.tables, code)
	c.logger.Info("table closed", "code", code, "reason", reason.String())
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Send(cleanupMsg{})
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredTables() {
	now := c.now()
	for code, t := range c.tables {
		if t.expired(now, c.config.TableTimeout) {
			c.closeTable(code, CloseReasonExpired)
		}
	}
}

func (c *Coordinator) inspect(code string) []TableInfo {
	if code != "" {
		t, ok := c.tables[strings.ToUpper(code)]
		if !ok {
			return nil
		}
		return []TableInfo{t.info()}
	}
	out := make([]TableInfo, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t.info())
	}
	return out
}

// query round-trips through the message goroutine so results reflect every
// message sent before it.
func (c *Coordinator) query(code string) ([]TableInfo, bool) {
	reply := make(chan []TableInfo, 1)
	select {
	case c.msgChan <- inspectMsg{code: code, reply: reply}:
	case <-c.done:
		return nil, false
	}
	select {
	case infos := <-reply:
		return infos, true
	case <-c.done:
		return nil, false
	}
}

// Table returns a copy of one table's state.
func (c *Coordinator) Table(code string) (TableInfo, bool) {
	infos, ok := c.query(code)
	if !ok || len(infos) == 0 {
		return TableInfo{}, false
	}
	return infos[0], true
}

// Tables returns a copy of every open table, in no particular order.
func (c *Coordinator) Tables() []TableInfo {
	infos, _ := c.query("")
	return infos
}

// TableCount returns the number of open tables.
func (c *Coordinator) TableCount() int {
	return len(c.Tables())
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.tables[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	// Use base32 encoding (A-Z, 2-7), take first 6 chars
	code := base32.StdEncoding.EncodeToString(b)[:6]
	return strings.ToUpper(code)
}
