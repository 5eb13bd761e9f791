package multiplayer

import "github.com/vovakirdan/tilefall/internal/games/tilefall/core"

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// TableCreatedEvent is sent to the creator of a new table.
type TableCreatedEvent struct {
	Code  string
	Board core.Snapshot
}

func (TableCreatedEvent) sessionEvent() {}

// TableJoinedEvent is sent to a session that joined or started watching a table.
type TableJoinedEvent struct {
	Code    string
	Role    Role
	Players []SessionID
	Board   core.Snapshot
	Moves   int
}

func (TableJoinedEvent) sessionEvent() {}

// MembersEvent is broadcast when the set of players or watchers changes.
type MembersEvent struct {
	Code     string
	Players  []SessionID
	Watchers int
}

func (MembersEvent) sessionEvent() {}

// TableErrorEvent is sent when a table operation fails.
type TableErrorEvent struct {
	Message string
}

func (TableErrorEvent) sessionEvent() {}

// BoardEvent is broadcast after a selection removed tiles or a board was redealt.
// Removed is empty for a redeal.
type BoardEvent struct {
	Code    string
	Board   core.Snapshot
	Removed []core.Coord
	By      SessionID
	Moves   int
}

func (BoardEvent) sessionEvent() {}

// TableClosedEvent is sent to everyone still at a table when it closes.
type TableClosedEvent struct {
	Code   string
	Reason CloseReason
}

func (TableClosedEvent) sessionEvent() {}

// CloseReason describes why a table closed.
type CloseReason int

const (
	CloseReasonExpired  CloseReason = iota // No players for longer than the table timeout
	CloseReasonShutdown                    // Coordinator stopped
)

func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "Table expired"
	case CloseReasonShutdown:
		return "Server shutting down"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the reason as its message.
func (r CloseReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateTableMsg requests a new table with a random board.
// A zero Seed means a time-based seed.
type CreateTableMsg struct {
	SessionID SessionID
	Width     int
	Height    int
	Colours   int
	Seed      int64
}

func (CreateTableMsg) coordinatorMessage() {}

// JoinTableMsg requests joining a table as a player.
type JoinTableMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinTableMsg) coordinatorMessage() {}

// WatchTableMsg requests joining a table as a watcher.
type WatchTableMsg struct {
	SessionID SessionID
	Code      string
}

func (WatchTableMsg) coordinatorMessage() {}

// SelectMsg selects a cell on the sender's table.
type SelectMsg struct {
	SessionID SessionID
	X, Y      int
}

func (SelectMsg) coordinatorMessage() {}

// RedealMsg replaces a cleared board with a fresh one of the same shape.
type RedealMsg struct {
	SessionID SessionID
	Seed      int64
}

func (RedealMsg) coordinatorMessage() {}

// LeaveTableMsg requests leaving the sender's table.
type LeaveTableMsg struct {
	SessionID SessionID
}

func (LeaveTableMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}

// inspectMsg asks the message goroutine for a copy of table state.
type inspectMsg struct {
	code  string
	reply chan []TableInfo
}

func (inspectMsg) coordinatorMessage() {}

// cleanupMsg triggers expiry of idle tables.
type cleanupMsg struct{}

func (cleanupMsg) coordinatorMessage() {}
