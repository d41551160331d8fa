package game

import (
	"github.com/footyguess/footyguess/internal/content"
	"github.com/footyguess/footyguess/internal/models"
)

// CreateGameRequest carries the immutable configuration fixed at creation.
// MaxTurns is rounds per player.
type CreateGameRequest struct {
	MaxPlayers  int               `json:"maxPlayers"`
	MaxTurns    int               `json:"maxTurns"`
	Difficulty  models.Difficulty `json:"difficulty"`
	TimePerTurn int               `json:"timePerTurn"`
}

func (r *CreateGameRequest) applyDefaults() {
	if r.MaxPlayers == 0 {
		r.MaxPlayers = 4
	}
	if r.MaxTurns == 0 {
		r.MaxTurns = 10
	}
	if r.Difficulty == "" {
		r.Difficulty = models.DifficultyMedium
	}
	if r.TimePerTurn == 0 {
		r.TimePerTurn = 30
	}
}

// View is the full read model of a game: the record, the creator profile and
// the roster ordered by joinedAt ascending. The stable ordering is part of
// the contract: every client derives whose turn it is from the same index.
type View struct {
	Game    models.Game         `json:"game"`
	Creator *models.User        `json:"creator,omitempty"`
	Players []models.GamePlayer `json:"players"`
}

// JoinResult reports the outcome of a join. AlreadyInGame is set when the
// user already had a seat; the join is idempotent so a reconnect after a page
// refresh does not error.
type JoinResult struct {
	View          *View `json:"view"`
	AlreadyInGame bool  `json:"alreadyInGame"`
}

// LeaveResult reports the outcome of a lobby leave.
type LeaveResult struct {
	GameCancelled    bool `json:"gameCancelled"`
	RemainingPlayers int  `json:"remainingPlayers"`
}

// AdvanceResult reports the outcome of a turn advance.
type AdvanceResult struct {
	Game         *models.Game `json:"game,omitempty"`
	GameFinished bool         `json:"gameFinished"`
}

// ForfeitResult reports the outcome of an in-progress forfeit. Winner is nil
// when the game was cancelled (nobody left) or the tie-break yields no winner.
type ForfeitResult struct {
	GameCancelled bool               `json:"gameCancelled"`
	GameFinished  bool               `json:"gameFinished"`
	Winner        *models.GamePlayer `json:"winner,omitempty"`
}

// QuestionResult carries the round's trivia subject. AlreadyExists is set on
// an idempotent re-fetch of an existing round. GameFinished is set when the
// subject pool ran dry and the game soft-finished.
type QuestionResult struct {
	Subject           content.Subject `json:"subject"`
	AlreadyExists     bool            `json:"alreadyExists"`
	GameFinished      bool            `json:"gameFinished"`
	AvailableSubjects int             `json:"availableSubjects"`
	TurnsRemaining    int             `json:"turnsRemaining"`
}

// GuessResult reports whether a guess matched the current round's subject.
type GuessResult struct {
	Correct bool `json:"correct"`
	Round   int  `json:"round"`
}

// Results is the final standings view for a finished game.
type Results struct {
	Game    models.Game         `json:"game"`
	Players []models.GamePlayer `json:"players"`
	Winner  *models.GamePlayer  `json:"winner,omitempty"`
}

// ActiveIndex returns the roster index whose turn it is. The roster must be
// ordered by joinedAt ascending.
func ActiveIndex(currentTurn, playerCount int) int {
	if playerCount == 0 {
		return 0
	}
	return currentTurn % playerCount
}

// ActivePlayer returns the player whose turn it is, or nil for an empty
// roster.
func ActivePlayer(players []models.GamePlayer, currentTurn int) *models.GamePlayer {
	if len(players) == 0 {
		return nil
	}
	return &players[ActiveIndex(currentTurn, len(players))]
}

// TotalTurns returns the number of turns a game runs for with the given
// roster size. MaxTurns counts rounds per player, so the roster size at
// evaluation time is authoritative.
func TotalTurns(g *models.Game, playerCount int) int {
	return g.MaxTurns * playerCount
}
