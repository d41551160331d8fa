package events

import "time"

// Event payload types shared between the game and relay packages.

// Event type names as stored in the outbox and carried on the bus.
const (
	TypeGameStarted  = "GameStarted"
	TypeGameUpdated  = "GameUpdated"
	TypeGameFinished = "GameFinished"
	TypeTurnUpdated  = "TurnUpdated"
)

// GameStartedPayload is the payload for a GameStarted event.
type GameStartedPayload struct {
	GameID      string    `json:"game_id"`
	StartedAt   time.Time `json:"started_at"`
	PlayerCount int       `json:"player_count"`
	TotalTurns  int       `json:"total_turns"`
}

// GameUpdatedPayload is the payload for a GameUpdated event. Reason is
// informational only; clients treat the event as a refetch hint.
type GameUpdatedPayload struct {
	GameID    string    `json:"game_id"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameFinishedPayload is the payload for a GameFinished event, emitted when a
// game reaches FINISHED or CANCELLED.
type GameFinishedPayload struct {
	GameID     string    `json:"game_id"`
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
}

// TurnUpdatedPayload is the payload for a TurnUpdated event.
type TurnUpdatedPayload struct {
	GameID     string    `json:"game_id"`
	Turn       int       `json:"turn"`
	AdvancedAt time.Time `json:"advanced_at"`
}
