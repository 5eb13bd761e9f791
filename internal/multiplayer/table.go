package multiplayer

import (
	"time"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

// table is one shared board and the sessions attached to it.
// Only the coordinator's message goroutine touches a table.
type table struct {
	code    string
	grid    *core.Grid
	seed    int64
	colours int
	moves   int

	players  map[SessionID]SessionHandle
	order    []SessionID // Join order of players
	watchers map[SessionID]SessionHandle

	journalRef int64 // 0 when the table is not journaled
	createdAt  time.Time
	emptySince time.Time // Zero while at least one player is seated
}

func newTable(code string, grid *core.Grid, seed int64, colours int, now time.Time) *table {
	return &table{
		code:       code,
		grid:       grid,
		seed:       seed,
		colours:    colours,
		players:    make(map[SessionID]SessionHandle),
		watchers:   make(map[SessionID]SessionHandle),
		createdAt:  now,
		emptySince: now,
	}
}

func (t *table) addPlayer(s SessionHandle) {
	if _, ok := t.players[s.ID()]; ok {
		return
	}
	t.players[s.ID()] = s
	t.order = append(t.order, s.ID())
	t.emptySince = time.Time{}
}

func (t *table) addWatcher(s SessionHandle) {
	t.watchers[s.ID()] = s
}

// remove detaches a session. Returns false if it was not at the table.
func (t *table) remove(id SessionID, now time.Time) bool {
	if _, ok := t.watchers[id]; ok {
		delete(t.watchers, id)
		return true
	}
	if _, ok := t.players[id]; !ok {
		return false
	}
	delete(t.players, id)
	for i, pid := range t.order {
		if pid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	if len(t.players) == 0 {
		t.emptySince = now
	}
	return true
}

func (t *table) roleOf(id SessionID) (Role, bool) {
	if _, ok := t.players[id]; ok {
		return RolePlayer, true
	}
	if _, ok := t.watchers[id]; ok {
		return RoleWatcher, true
	}
	return 0, false
}

func (t *table) playerIDs() []SessionID {
	out := make([]SessionID, len(t.order))
	copy(out, t.order)
	return out
}

// broadcast sends evt to every player and watcher.
func (t *table) broadcast(evt SessionEvent) {
	for _, id := range t.order {
		t.players[id].Send(evt)
	}
	for _, w := range t.watchers {
		w.Send(evt)
	}
}

func (t *table) members() MembersEvent {
	return MembersEvent{Code: t.code, Players: t.playerIDs(), Watchers: len(t.watchers)}
}

func (t *table) info() TableInfo {
	return TableInfo{
		Code:      t.code,
		Players:   t.playerIDs(),
		Watchers:  len(t.watchers),
		Moves:     t.moves,
		Seed:      t.seed,
		Board:     t.grid.Snapshot(),
		CreatedAt: t.createdAt,
	}
}

// expired reports whether the table has had no players for longer than timeout.
func (t *table) expired(now time.Time, timeout time.Duration) bool {
	return len(t.players) == 0 && !t.emptySince.IsZero() && now.Sub(t.emptySince) > timeout
}
