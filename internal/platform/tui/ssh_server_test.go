package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilefall/internal/multiplayer"
)

func newSession(t *testing.T) (SessionModel, *recordingSender) {
	t.Helper()
	handle := multiplayer.NewChannelSession("alice-1", 8)
	t.Cleanup(handle.Close)
	sender := &recordingSender{}
	settings := TableSettings{Width: 4, Height: 3, Colours: 3, CellWidth: 2}
	m := NewSessionModel(nil, testConfig(), "alice", handle, sender, settings)
	next, _ := m.openTable()
	return next.(SessionModel), sender
}

func sessionUpdate(m SessionModel, msg tea.Msg) SessionModel {
	next, _ := m.Update(msg)
	return next.(SessionModel)
}

func leaves(sender *recordingSender) int {
	n := 0
	for _, msg := range sender.sent {
		if _, ok := msg.(multiplayer.LeaveTableMsg); ok {
			n++
		}
	}
	return n
}

func TestSessionModelLeavingTableScreenLeavesTable(t *testing.T) {
	m, sender := newSession(t)
	m = sessionUpdate(m, multiplayer.TableCreatedEvent{Code: "ABC123", Board: mustBoard(t, "RG")})

	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.active != screenMenu {
		t.Fatalf("expected menu screen, got %v", m.active)
	}
	if got := leaves(sender); got != 2 {
		t.Errorf("expected a leave from the table and one from the screen, got %d", got)
	}
}

func TestSessionModelCancelledReplyAcrossScreens(t *testing.T) {
	m, sender := newSession(t)

	m = sessionUpdate(m, runeKey('c'))
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.active != screenMenu {
		t.Fatalf("expected menu screen, got %v", m.active)
	}
	if got := leaves(sender); got != 2 {
		t.Errorf("expected 2 leave messages, got %d", got)
	}

	// Back on the table screen before the old reply arrives.
	next, _ := m.openTable()
	m = next.(SessionModel)
	m = sessionUpdate(m, runeKey('c'))

	m = sessionUpdate(m, multiplayer.TableCreatedEvent{Code: "OLD111", Board: mustBoard(t, "RG")})
	if m.shared.State() != TableStateWaiting {
		t.Fatalf("reply to the cancelled create should be skipped, got %v", m.shared.State())
	}
	m = sessionUpdate(m, multiplayer.TableCreatedEvent{Code: "NEW222", Board: mustBoard(t, "RG")})
	if m.shared.Code() != "NEW222" {
		t.Errorf("expected seat at NEW222, got %q", m.shared.Code())
	}
}

func TestSessionModelCancelledReplyWhileInMenu(t *testing.T) {
	m, _ := newSession(t)

	m = sessionUpdate(m, runeKey('c'))
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = sessionUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = sessionUpdate(m, multiplayer.TableCreatedEvent{Code: "OLD111", Board: mustBoard(t, "RG")})
	if m.active != screenMenu {
		t.Fatalf("a late reply should not leave the menu, got %v", m.active)
	}

	next, _ := m.openTable()
	m = next.(SessionModel)
	m = sessionUpdate(m, runeKey('c'))
	m = sessionUpdate(m, multiplayer.TableCreatedEvent{Code: "NEW222", Board: mustBoard(t, "RG")})
	if m.shared.Code() != "NEW222" {
		t.Errorf("expected seat at NEW222, got %q", m.shared.Code())
	}
}
