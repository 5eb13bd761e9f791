// Package multiplayer runs shared tables: several sessions playing one board.
// Every table is owned by the Coordinator's message goroutine, which is the
// only code that reads or mutates a table's grid.
package multiplayer

import (
	"time"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

// SessionID uniquely identifies a session (SSH connection, websocket watcher).
type SessionID string

// Role is how a session takes part in a table.
type Role int

const (
	// RolePlayer may select cells.
	RolePlayer Role = iota

	// RoleWatcher receives board updates only.
	RoleWatcher
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleWatcher:
		return "watcher"
	default:
		return "unknown"
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// TableInfo is a read-only copy of a table's state.
type TableInfo struct {
	Code      string
	Players   []SessionID
	Watchers  int
	Moves     int
	Seed      int64
	Board     core.Snapshot
	CreatedAt time.Time
}

// TableJournal records shared games.
// This allows the coordinator to persist tables without depending on the storage package.
type TableJournal interface {
	StartTable(start TableStart) (int64, error)
	RecordTableMove(move TableMove) error
}

// TableStart describes a freshly dealt shared board.
type TableStart struct {
	Code    string
	Seed    int64
	Width   int
	Height  int
	Palette []core.Colour
	Tiles   int
	Host    SessionID
}

// TableMove is one selection that removed tiles on a shared board.
type TableMove struct {
	GameRef int64
	Seq     int
	X, Y    int
	Removed int
	Player  SessionID
}
