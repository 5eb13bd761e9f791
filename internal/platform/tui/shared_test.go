package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
)

type recordingSender struct {
	sent []multiplayer.CoordinatorMessage
}

func (r *recordingSender) Send(msg multiplayer.CoordinatorMessage) {
	r.sent = append(r.sent, msg)
}

func (r *recordingSender) last(t *testing.T) multiplayer.CoordinatorMessage {
	t.Helper()
	if len(r.sent) == 0 {
		t.Fatal("expected a message to be sent")
	}
	return r.sent[len(r.sent)-1]
}

func mustBoard(t *testing.T, rows ...string) core.Snapshot {
	t.Helper()
	s, err := core.ParseASCII(rows...)
	if err != nil {
		t.Fatalf("ParseASCII: %v", err)
	}
	return s
}

func update(m TableModel, msg tea.Msg) TableModel {
	next, _ := m.Update(msg)
	return next.(TableModel)
}

func newTable(t *testing.T) (TableModel, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	settings := TableSettings{Width: 4, Height: 3, Colours: 3, CellWidth: 2}
	return NewTableModel("alice-1", sender, settings, 80, 24), sender
}

func TestTableModelCreate(t *testing.T) {
	m, sender := newTable(t)

	m = update(m, runeKey('c'))
	if m.State() != TableStateWaiting {
		t.Fatalf("expected waiting state, got %v", m.State())
	}
	create, ok := sender.last(t).(multiplayer.CreateTableMsg)
	if !ok {
		t.Fatalf("expected CreateTableMsg, got %T", sender.last(t))
	}
	if create.SessionID != "alice-1" || create.Width != 4 || create.Height != 3 || create.Colours != 3 {
		t.Errorf("unexpected create message: %+v", create)
	}

	board := mustBoard(t, "RRGB", "RGGB", "BBGR")
	m = update(m, multiplayer.TableCreatedEvent{Code: "ABC123", Board: board})
	if m.State() != TableStateAtTable || m.Code() != "ABC123" {
		t.Fatalf("expected to be seated at ABC123, got state %v code %q", m.State(), m.Code())
	}
	if !containsPlain(m.View(), "Table ABC123") {
		t.Error("expected table code in view")
	}
}

func TestTableModelJoinWithCode(t *testing.T) {
	m, sender := newTable(t)

	m = update(m, runeKey('j'))
	if m.State() != TableStateEnterCode {
		t.Fatalf("expected code entry, got %v", m.State())
	}
	for _, r := range "abc123" {
		m = update(m, runeKey(r))
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	join, ok := sender.last(t).(multiplayer.JoinTableMsg)
	if !ok {
		t.Fatalf("expected JoinTableMsg, got %T", sender.last(t))
	}
	if join.Code != "ABC123" {
		t.Errorf("expected code ABC123, got %q", join.Code)
	}
	if m.State() != TableStateWaiting {
		t.Errorf("expected waiting state, got %v", m.State())
	}

	m = update(m, multiplayer.TableErrorEvent{Message: "Table not found"})
	if m.State() != TableStateChoose {
		t.Errorf("expected choose state after error, got %v", m.State())
	}
	if !containsPlain(m.View(), "Table not found") {
		t.Error("expected error in view")
	}
}

func TestTableModelWatchSendsWatch(t *testing.T) {
	m, sender := newTable(t)

	m = update(m, runeKey('w'))
	for _, r := range "XYZ789" {
		m = update(m, runeKey(r))
	}
	update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := sender.last(t).(multiplayer.WatchTableMsg); !ok {
		t.Fatalf("expected WatchTableMsg, got %T", sender.last(t))
	}
}

func TestTableModelSelectAndBoardUpdate(t *testing.T) {
	m, sender := newTable(t)
	board := mustBoard(t, "RRGB", "RGGB", "BBGR")
	m = update(m, multiplayer.TableJoinedEvent{
		Code:    "ABC123",
		Role:    multiplayer.RolePlayer,
		Players: []multiplayer.SessionID{"bob-1", "alice-1"},
		Board:   board,
	})

	m = update(m, runeKey('d'))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	sel, ok := sender.last(t).(multiplayer.SelectMsg)
	if !ok {
		t.Fatalf("expected SelectMsg, got %T", sender.last(t))
	}
	if sel.X != 1 || sel.Y != 0 {
		t.Errorf("expected selection at (1,0), got (%d,%d)", sel.X, sel.Y)
	}

	after := mustBoard(t, "R..B", "RR.B", "BBGR")
	m = update(m, multiplayer.BoardEvent{Code: "ABC123", Board: after, By: "bob-1", Moves: 1, Removed: []core.Coord{{X: 2, Y: 1}}})
	if m.moves != 1 {
		t.Errorf("expected 1 move, got %d", m.moves)
	}
	if !containsPlain(m.View(), "bob removed 1") {
		t.Error("expected last move in view")
	}
}

func TestTableModelWatcherCannotSelect(t *testing.T) {
	m, sender := newTable(t)
	m = update(m, multiplayer.TableJoinedEvent{
		Code:  "ABC123",
		Role:  multiplayer.RoleWatcher,
		Board: mustBoard(t, "RG", "GR"),
	})

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(sender.sent) != 0 {
		t.Errorf("watcher should not send selections, got %v", sender.sent)
	}
	if !containsPlain(m.View(), "Watchers cannot select") {
		t.Error("expected watcher notice")
	}
}

func TestTableModelEmptyCellIsNotSent(t *testing.T) {
	m, sender := newTable(t)
	m = update(m, multiplayer.TableCreatedEvent{Code: "ABC123", Board: mustBoard(t, "R.", "..")})

	m = update(m, runeKey('d'))
	update(m, tea.KeyMsg{Type: tea.KeyEnter})
	for _, msg := range sender.sent {
		if _, ok := msg.(multiplayer.SelectMsg); ok {
			t.Error("selecting an empty cell should not reach the coordinator")
		}
	}
}

func TestTableModelLeaveAndClose(t *testing.T) {
	m, sender := newTable(t)
	m = update(m, multiplayer.TableCreatedEvent{Code: "ABC123", Board: mustBoard(t, "RG")})

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := sender.last(t).(multiplayer.LeaveTableMsg); !ok {
		t.Fatalf("expected LeaveTableMsg, got %T", sender.last(t))
	}
	if m.State() != TableStateChoose {
		t.Errorf("expected choose state, got %v", m.State())
	}

	m = update(m, multiplayer.TableCreatedEvent{Code: "DEF456", Board: mustBoard(t, "RG")})
	m = update(m, multiplayer.TableClosedEvent{Code: "DEF456", Reason: multiplayer.CloseReasonShutdown})
	if m.State() != TableStateClosed {
		t.Errorf("expected closed state, got %v", m.State())
	}
	if !containsPlain(m.View(), "Server shutting down") {
		t.Error("expected close reason in view")
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("expected back to menu from closed state")
	}
}

func TestTableModelCancelWhileWaiting(t *testing.T) {
	m, sender := newTable(t)

	m = update(m, runeKey('c'))
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := sender.last(t).(multiplayer.LeaveTableMsg); !ok {
		t.Fatalf("expected LeaveTableMsg after cancelling, got %T", sender.last(t))
	}
	if m.State() != TableStateChoose {
		t.Fatalf("expected choose state, got %v", m.State())
	}

	m = update(m, runeKey('c'))
	m = update(m, multiplayer.TableCreatedEvent{Code: "OLD111", Board: mustBoard(t, "RG")})
	if m.State() != TableStateWaiting || m.Code() != "" {
		t.Fatalf("reply to the cancelled create should be skipped, got state %v code %q", m.State(), m.Code())
	}
	m = update(m, multiplayer.TableCreatedEvent{Code: "NEW222", Board: mustBoard(t, "RG")})
	if m.State() != TableStateAtTable || m.Code() != "NEW222" {
		t.Errorf("expected seat at NEW222, got state %v code %q", m.State(), m.Code())
	}
}

func TestTableModelCancelledJoinError(t *testing.T) {
	m, _ := newTable(t)

	m = update(m, runeKey('j'))
	for _, r := range "ABC123" {
		m = update(m, runeKey(r))
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})

	m = update(m, multiplayer.TableErrorEvent{Message: "Table not found"})
	if containsPlain(m.View(), "Table not found") {
		t.Error("error for the cancelled join should not be shown")
	}
	m = update(m, multiplayer.TableErrorEvent{Message: "Table is full"})
	if !containsPlain(m.View(), "Table is full") {
		t.Error("expected later errors to be shown")
	}
}

func TestTableModelIgnoresOtherTables(t *testing.T) {
	m, _ := newTable(t)
	m = update(m, multiplayer.TableCreatedEvent{Code: "ABC123", Board: mustBoard(t, "RG")})

	m = update(m, multiplayer.BoardEvent{Code: "OLD111", Board: mustBoard(t, ".."), Moves: 5})
	m = update(m, multiplayer.MembersEvent{Code: "OLD111", Watchers: 3})
	m = update(m, multiplayer.TableClosedEvent{Code: "OLD111", Reason: multiplayer.CloseReasonExpired})

	if m.State() != TableStateAtTable {
		t.Fatalf("expected to stay at ABC123, got %v", m.State())
	}
	if m.moves != 0 || m.watchers != 0 {
		t.Errorf("events from another table leaked in: moves %d watchers %d", m.moves, m.watchers)
	}
	if m.board.ColourAt(0, 0).IsEmpty() {
		t.Error("board was replaced by another table's board")
	}
}

func nextEvent(t *testing.T, s *multiplayer.ChannelSession) multiplayer.SessionEvent {
	t.Helper()
	select {
	case evt := <-s.Events():
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a session event")
		return nil
	}
}

func TestTableModelCancelThenCreateOnCoordinator(t *testing.T) {
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.CleanupPeriod = time.Hour
	reg := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(cfg, reg)
	coord.Start()
	t.Cleanup(coord.Stop)

	session := multiplayer.NewChannelSession("alice-1", 16)
	defer session.Close()
	reg.Register(session)

	settings := TableSettings{Width: 4, Height: 3, Colours: 3, CellWidth: 2}
	m := NewTableModel("alice-1", coord, settings, 80, 24)

	m = update(m, runeKey('c'))
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(m, runeKey('c'))

	var codes []string
	for i := 0; i < 8 && m.State() == TableStateWaiting; i++ {
		evt := nextEvent(t, session)
		if created, ok := evt.(multiplayer.TableCreatedEvent); ok {
			codes = append(codes, created.Code)
		}
		m = update(m, evt)
	}

	if m.State() != TableStateAtTable {
		t.Fatalf("expected to be seated, got state %v (error %q)", m.State(), m.errMsg)
	}
	if len(codes) != 2 {
		t.Fatalf("expected two tables created, got %v", codes)
	}
	if m.Code() != codes[1] {
		t.Errorf("expected seat at the second table %s, got %s", codes[1], m.Code())
	}
}

func TestTableModelRedeal(t *testing.T) {
	m, sender := newTable(t)
	m = update(m, multiplayer.TableCreatedEvent{Code: "ABC123", Board: mustBoard(t, "..")})

	update(m, runeKey('r'))
	if _, ok := sender.last(t).(multiplayer.RedealMsg); !ok {
		t.Fatalf("expected RedealMsg, got %T", sender.last(t))
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id   multiplayer.SessionID
		want string
	}{
		{"alice-1700000000", "alice"},
		{"bob-smith-42", "bob-smith"},
		{"watcher", "watcher"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.id); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, expected %q", tt.id, got, tt.want)
		}
	}
}
