package relay

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire event names. Clients pattern-match on these exact strings.
const (
	EventGameStarted  = "game-started"
	EventGameUpdated  = "game-updated"
	EventGameFinished = "game-finished"
	EventTurnUpdated  = "turn-updated"
	EventChatMessage  = "chat-message"
)

// Inbound client message names.
const (
	MsgJoinGame        = "join-game"
	MsgLeaveGame       = "leave-game"
	MsgStartGame       = "start-game"
	MsgAnswerSubmitted = "answer-submitted"
	MsgTurnChanged     = "turn-changed"
	MsgPlayerForfeit   = "player-forfeit"
	MsgGameEnded       = "game-ended"
	MsgChatMessage     = "chat-message"
)

// ClientMessage is the envelope for inbound socket messages.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerMessage is the envelope for outbound socket messages.
type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// SessionPayload is the minimal outbound payload carrying a session id.
type SessionPayload struct {
	SessionID string `json:"sessionId"`
}

// TurnPayload carries a turn number alongside the session id.
type TurnPayload struct {
	SessionID string `json:"sessionId"`
	Turn      int    `json:"turn"`
}

// ChatPayload is relayed verbatim to the room, no persistence.
type ChatPayload struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// JoinPayload is the join-game payload. Older clients send a bare session-id
// string instead of the object form, so both decode.
type JoinPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	IsHost    bool   `json:"isHost"`
}

// decodeJoin accepts either a bare string or the object form.
func decodeJoin(data json.RawMessage) (JoinPayload, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return JoinPayload{SessionID: id}, nil
	}
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return JoinPayload{}, fmt.Errorf("invalid join-game payload: %w", err)
	}
	return p, nil
}

// decodeSessionID accepts either a bare string or {"sessionId": ...}.
func decodeSessionID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id, nil
	}
	var p SessionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("invalid session payload: %w", err)
	}
	return p.SessionID, nil
}

type turnChangedPayload struct {
	SessionID string `json:"sessionId"`
	Turn      int    `json:"turn"`
}

type answerSubmittedPayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	IsCorrect bool   `json:"isCorrect"`
}

type playerForfeitPayload struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

type chatMessageIn struct {
	SessionID string     `json:"sessionId"`
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp"`
}
