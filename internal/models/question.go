package models

import (
	"time"

	"github.com/google/uuid"
)

// Question records which trivia subject was asked in a given round of a game.
// SubjectID is the id of the football player being guessed, not a user. The
// set of a game's questions doubles as the exclusion set so a subject is
// never re-asked within one game. Round is 1-indexed.
type Question struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"gameId"`
	SubjectID string    `json:"subjectId"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"createdAt"`
}
