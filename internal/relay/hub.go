package relay

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Binding ties a live socket to the session it joined. It exists only in hub
// memory for the lifetime of the connection; the hub is its sole owner.
type Binding struct {
	SessionID string
	UserID    string
	IsHost    bool
}

// BroadcastMessage is one event to fan out to a room.
type BroadcastMessage struct {
	Room  string
	Event string
	Data  any
}

// Hub tracks socket-to-room membership and fans out events to every socket
// in a session's room. Room keys are case-normalized, so callers may pass
// session ids in either case.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Connection]bool
	bindings map[*Connection]Binding

	broadcastCh chan BroadcastMessage
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Connection]bool),
		bindings:    make(map[*Connection]Binding),
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// RoomKey builds the canonical room key for a session id.
func RoomKey(sessionID string) string {
	return "session:" + strings.ToLower(sessionID)
}

// Run processes broadcast messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("hub shutting down")
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(message)
		}
	}
}

// JoinRoom adds a socket to a session's room. A non-empty userID records the
// binding used for disconnect handling.
func (h *Hub) JoinRoom(c *Connection, sessionID, userID string, isHost bool) {
	room := RoomKey(sessionID)

	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Connection]bool)
	}
	h.rooms[room][c] = true
	if userID != "" {
		h.bindings[c] = Binding{SessionID: sessionID, UserID: userID, IsHost: isHost}
	}
	size := len(h.rooms[room])
	h.mu.Unlock()

	log.Info().
		Str("socket_id", c.ID).
		Str("room", room).
		Str("user_id", userID).
		Bool("is_host", isHost).
		Int("room_size", size).
		Msg("socket joined room")
}

// LeaveRoom removes a socket from a session's room. It does not touch the
// binding or any session state.
func (h *Hub) LeaveRoom(c *Connection, sessionID string) {
	room := RoomKey(sessionID)

	h.mu.Lock()
	if sockets, ok := h.rooms[room]; ok {
		delete(sockets, c)
		if len(sockets) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	log.Info().Str("socket_id", c.ID).Str("room", room).Msg("socket left room")
}

// Unregister removes a socket from all rooms and returns its binding, if
// any. Called exactly once when the socket's read pump exits.
func (h *Hub) Unregister(c *Connection) (Binding, bool) {
	h.mu.Lock()
	for room, sockets := range h.rooms {
		if sockets[c] {
			delete(sockets, c)
			if len(sockets) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	binding, bound := h.bindings[c]
	delete(h.bindings, c)
	h.mu.Unlock()

	c.closeSend()
	return binding, bound
}

// Broadcast queues an event for every socket in the session's room. An empty
// room is a silent no-op. Delivery is fire-and-forget: a slow socket is
// closed rather than blocking the room.
func (h *Hub) Broadcast(sessionID, event string, data any) {
	select {
	case h.broadcastCh <- BroadcastMessage{Room: RoomKey(sessionID), Event: event, Data: data}:
	default:
		log.Warn().Str("room", RoomKey(sessionID)).Msg("broadcast channel full, dropping message")
	}
}

// RoomSize returns the current live membership of a session's room.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomKey(sessionID)])
}

func (h *Hub) handleBroadcast(message BroadcastMessage) {
	h.mu.RLock()
	sockets, ok := h.rooms[message.Room]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Connection, 0, len(sockets))
	for c := range sockets {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(ServerMessage{Event: message.Event, Data: message.Data})
	if err != nil {
		log.Error().Err(err).Str("event", message.Event).Msg("failed to marshal broadcast")
		return
	}

	for _, c := range targets {
		select {
		case c.Send <- data:
		default:
			log.Warn().
				Str("socket_id", c.ID).
				Str("room", message.Room).
				Msg("socket send buffer full, closing connection")
			h.Unregister(c)
			c.close()
		}
	}

	log.Debug().
		Str("event", message.Event).
		Str("room", message.Room).
		Int("sockets", len(targets)).
		Msg("event broadcasted")
}

// Stats reports live connection counts per room, for diagnostics.
func (h *Hub) Stats() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	roomCounts := make(map[string]int, len(h.rooms))
	for room, sockets := range h.rooms {
		roomCounts[room] = len(sockets)
		total += len(sockets)
	}
	return map[string]any{
		"total_connections": total,
		"active_rooms":      len(h.rooms),
		"room_connections":  roomCounts,
	}
}
