package multiplayer

import (
	"sort"
	"sync"
	"sync/atomic"
)

// SessionHandle is the transport-neutral interface for communicating with a session.
// It allows the coordinator to reach SSH players and websocket watchers alike.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send sends an event to the session asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel.
// The SSH front end drains Events from its Bubble Tea program.
type ChannelSession struct {
	id       SessionID
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
	sendMu   sync.Mutex
	dropped  atomic.Int64
}

// NewChannelSession creates a session whose queue holds eventBufferSize events.
func NewChannelSession(id SessionID, eventBufferSize int) *ChannelSession {
	if eventBufferSize < 1 {
		eventBufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt without blocking.
// On a full queue the oldest board or membership update is discarded,
// since a later one carries the complete state. Without one, the oldest
// event goes.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	select {
	case s.events <- evt:
		return
	default:
	}

	queued := s.drain()
	if len(queued) > 0 {
		queued = dropStale(queued)
		s.dropped.Add(1)
	}
	for _, e := range append(queued, evt) {
		select {
		case s.events <- e:
		default:
			s.dropped.Add(1)
		}
	}
}

// drain empties the queue without blocking.
func (s *ChannelSession) drain() []SessionEvent {
	var out []SessionEvent
	for {
		select {
		case e := <-s.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

// dropStale removes the first superseded event, or the first event.
func dropStale(queued []SessionEvent) []SessionEvent {
	for i, e := range queued {
		switch e.(type) {
		case BoardEvent, MembersEvent:
			return append(queued[:i], queued[i+1:]...)
		}
	}
	return queued[1:]
}

// Dropped returns how many events were discarded because the buffer was full.
func (s *ChannelSession) Dropped() int64 {
	return s.dropped.Load()
}

// Events is the receive side of the queue.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close ends the session. Later sends are discarded.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry maps session IDs to live handles for every front end.
// The coordinator looks sessions up here when they create or join tables.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates a new session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session to the registry.
// Returns false if the ID is already taken.
func (r *SessionRegistry) Register(session SessionHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ID()]; exists {
		return false
	}
	r.sessions[session.ID()] = session
	return true
}

// Unregister removes a session from the registry.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the registered session IDs in sorted order.
func (r *SessionRegistry) IDs() []SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]SessionID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
