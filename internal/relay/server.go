package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Disconnecter is the slice of the store client the server needs; it lets
// tests observe disconnect handling without HTTP.
type Disconnecter interface {
	SocketDisconnect(ctx context.Context, sessionID, userID string) error
}

// Server owns the relay's socket endpoint, the client message dispatch and
// the emit trigger surface used by the CRUD layer.
type Server struct {
	hub      *Hub
	store    Disconnecter
	config   Config
	upgrader websocket.Upgrader
}

// NewServer creates the relay server.
func NewServer(hub *Hub, store Disconnecter, config Config) *Server {
	return &Server{
		hub:    hub,
		store:  store,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}
}

// RegisterRoutes mounts the socket endpoint and the emit trigger endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /socket", s.handleSocket)
	mux.HandleFunc("POST /emit/game-started", s.emitHandler(EventGameStarted))
	mux.HandleFunc("POST /emit/game-updated", s.emitHandler(EventGameUpdated))
	mux.HandleFunc("POST /emit/game-ended", s.emitHandler(EventGameFinished))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
}

// handleSocket upgrades the connection. Room membership is established by a
// later join-game message, not at upgrade time.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade socket")
		return
	}

	c := &Connection{
		ID:          uuid.New().String(),
		Send:        make(chan []byte, 256),
		conn:        conn,
		server:      s,
		ConnectedAt: time.Now(),
	}

	go c.writePump()
	go c.readPump()

	log.Info().Str("socket_id", c.ID).Msg("socket connected")
}

// handleClientMessage dispatches one inbound socket message. Unknown events
// are logged and dropped, never fatal to the connection.
func (s *Server) handleClientMessage(c *Connection, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Err(err).Str("socket_id", c.ID).Msg("unparseable client message")
		return
	}

	switch msg.Event {
	case MsgJoinGame:
		p, err := decodeJoin(msg.Data)
		if err != nil || p.SessionID == "" {
			log.Debug().Err(err).Str("socket_id", c.ID).Msg("bad join-game payload")
			return
		}
		s.hub.JoinRoom(c, p.SessionID, p.UserID, p.IsHost)

	case MsgLeaveGame:
		id, err := decodeSessionID(msg.Data)
		if err != nil || id == "" {
			return
		}
		s.hub.LeaveRoom(c, id)

	case MsgStartGame:
		id, err := decodeSessionID(msg.Data)
		if err != nil || id == "" {
			return
		}
		s.hub.Broadcast(id, EventGameStarted, SessionPayload{SessionID: id})

	case MsgAnswerSubmitted:
		var p answerSubmittedPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		s.hub.Broadcast(p.SessionID, EventGameUpdated, SessionPayload{SessionID: p.SessionID})

	case MsgTurnChanged:
		var p turnChangedPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		s.hub.Broadcast(p.SessionID, EventTurnUpdated, TurnPayload{SessionID: p.SessionID, Turn: p.Turn})

	case MsgPlayerForfeit:
		var p playerForfeitPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		// A forfeit always ends the session, so the room gets the terminal
		// event and clients navigate to results.
		s.hub.Broadcast(p.SessionID, EventGameFinished, SessionPayload{SessionID: p.SessionID})

	case MsgGameEnded:
		id, err := decodeSessionID(msg.Data)
		if err != nil || id == "" {
			return
		}
		s.hub.Broadcast(id, EventGameFinished, SessionPayload{SessionID: id})

	case MsgChatMessage:
		var p chatMessageIn
		if err := json.Unmarshal(msg.Data, &p); err != nil || p.SessionID == "" {
			return
		}
		out := ChatPayload{
			UserID:   p.UserID,
			Username: p.Username,
			Message:  p.Message,
		}
		if p.Timestamp != nil {
			out.Timestamp = *p.Timestamp
		} else {
			out.Timestamp = time.Now().UTC()
		}
		s.hub.Broadcast(p.SessionID, EventChatMessage, out)

	default:
		log.Debug().
			Str("socket_id", c.ID).
			Str("event", msg.Event).
			Msg("unknown client event")
	}
}

// handleDisconnect runs after a bound socket drops. Hosts are deliberately
// left alone so a dropped host connection never deletes the lobby. For a
// non-host the store decides whether removal applies; a store failure is
// logged and the disconnect otherwise completes.
func (s *Server) handleDisconnect(binding Binding) {
	if binding.IsHost || binding.UserID == "" {
		log.Debug().
			Str("session_id", binding.SessionID).
			Str("user_id", binding.UserID).
			Msg("socket disconnected, no roster change")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.SocketDisconnect(ctx, binding.SessionID, binding.UserID); err != nil {
		log.Error().
			Err(err).
			Str("session_id", binding.SessionID).
			Str("user_id", binding.UserID).
			Msg("failed to notify store of disconnect")
		return
	}

	s.hub.Broadcast(binding.SessionID, EventGameUpdated, SessionPayload{SessionID: binding.SessionID})
}

type emitRequest struct {
	SessionID string `json:"sessionId"`
}

type emitResponse struct {
	Success      bool   `json:"success"`
	Room         string `json:"room"`
	SocketsCount int    `json:"socketsCount"`
}

// emitHandler builds a trigger endpoint that broadcasts the given event to a
// session's room and reports the live membership.
func (s *Server) emitHandler(event string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
			http.Error(w, "sessionId is required", http.StatusBadRequest)
			return
		}

		s.hub.Broadcast(req.SessionID, event, SessionPayload{SessionID: req.SessionID})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(emitResponse{
			Success:      true,
			Room:         RoomKey(req.SessionID),
			SocketsCount: s.hub.RoomSize(req.SessionID),
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.hub.Stats())
}
