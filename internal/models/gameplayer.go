package models

import (
	"time"

	"github.com/google/uuid"
)

// GamePlayer is one user's membership in a game. Exactly one player per
// active game has IsHost set; the host is the creator and is never
// reassigned.
type GamePlayer struct {
	ID       uuid.UUID `json:"id"`
	GameID   uuid.UUID `json:"gameId"`
	UserID   uuid.UUID `json:"userId"`
	IsHost   bool      `json:"isHost"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
	User     *User     `json:"user,omitempty"`
}
