package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus defines the lifecycle status of a game.
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "WAITING"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
	GameStatusFinished   GameStatus = "FINISHED"
	GameStatusCancelled  GameStatus = "CANCELLED"
)

// Difficulty selects the trivia subject pool for a game.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Game represents one trivia session. MaxTurns is rounds per player, so the
// total number of turns is MaxTurns * roster size at evaluation time.
type Game struct {
	ID          uuid.UUID  `json:"id"`
	Status      GameStatus `json:"status"`
	CurrentTurn int        `json:"currentTurn"`
	MaxPlayers  int        `json:"maxPlayers"`
	MaxTurns    int        `json:"maxTurns"`
	Difficulty  Difficulty `json:"difficulty"`
	TimePerTurn int        `json:"timePerTurn"`
	CreatorID   uuid.UUID  `json:"creatorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
