// Package watch streams shared tables to browsers and scripts over websockets.
// Each websocket client is a watcher session registered with the coordinator.
package watch

import (
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Watchers never send data.
	maxMessageSize = 512

	sendBuffer = 64
)

// Message is the JSON frame sent to watchers. One event per frame.
type Message struct {
	Type     string         `json:"type"`
	Code     string         `json:"code,omitempty"`
	Board    *core.Snapshot `json:"board,omitempty"`
	Rows     []string       `json:"rows,omitempty"` // Board as text, top row first
	Players  []string       `json:"players,omitempty"`
	Watchers int            `json:"watchers,omitempty"`
	Moves    int            `json:"moves,omitempty"`
	Removed  []core.Coord   `json:"removed,omitempty"`
	By       string         `json:"by,omitempty"`
	Error    string         `json:"error,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

// Message types.
const (
	TypeJoined  = "joined"
	TypeMembers = "members"
	TypeBoard   = "board"
	TypeError   = "error"
	TypeClosed  = "closed"
)

// NewMessage converts a session event to its wire form.
// Returns false for events watchers never receive.
func NewMessage(evt multiplayer.SessionEvent) (Message, bool) {
	switch e := evt.(type) {
	case multiplayer.TableJoinedEvent:
		m := withBoard(Message{Type: TypeJoined, Code: e.Code, Moves: e.Moves}, e.Board)
		m.Players = names(e.Players)
		return m, true
	case multiplayer.MembersEvent:
		return Message{Type: TypeMembers, Code: e.Code, Players: names(e.Players), Watchers: e.Watchers}, true
	case multiplayer.BoardEvent:
		m := withBoard(Message{Type: TypeBoard, Code: e.Code, Moves: e.Moves, By: string(e.By)}, e.Board)
		m.Removed = e.Removed
		return m, true
	case multiplayer.TableErrorEvent:
		return Message{Type: TypeError, Error: e.Message}, true
	case multiplayer.TableClosedEvent:
		return Message{Type: TypeClosed, Code: e.Code, Reason: e.Reason.String()}, true
	}
	return Message{}, false
}

func withBoard(m Message, s core.Snapshot) Message {
	m.Board = &s
	m.Rows = strings.Split(core.RenderASCII(s), "\n")
	return m
}

func names(ids []multiplayer.SessionID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Client is one websocket watcher. It implements multiplayer.SessionHandle.
type Client struct {
	id     multiplayer.SessionID
	conn   *websocket.Conn
	logger *log.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool // send is closed
	joined bool

	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Int64
}

func newClient(id multiplayer.SessionID, conn *websocket.Conn, logger *log.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (c *Client) ID() multiplayer.SessionID {
	return c.id
}

// Done returns a channel that closes when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send queues an event for the write pump. It never blocks: frames are
// dropped when the peer is too slow. A closed table, or an error before the
// client was seated, ends the stream.
func (c *Client) Send(evt multiplayer.SessionEvent) {
	msg, ok := NewMessage(evt)
	if !ok {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Warn("cannot encode watch message", "session", c.id, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.dropped.Add(1)
	}

	switch evt.(type) {
	case multiplayer.TableJoinedEvent:
		c.joined = true
	case multiplayer.TableClosedEvent:
		c.closeSendLocked()
	case multiplayer.TableErrorEvent:
		if !c.joined {
			c.closeSendLocked()
		}
	}
}

// Dropped returns how many frames were discarded for a slow peer.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Client) closeSendLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeSendLocked()
}

func (c *Client) finish() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// readPump drains the connection so pongs and close frames are processed.
// It returns when the peer goes away.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	//nolint:errcheck // Deadline errors surface on the next read
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("watch connection error", "session", c.id, "error", err)
			}
			return
		}
	}
}

// writePump pumps frames from Send to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			//nolint:errcheck // Deadline errors surface on the next write
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint:errcheck // Best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			//nolint:errcheck // Deadline errors surface on the next write
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
