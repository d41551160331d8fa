package game

import (
	"sort"

	"github.com/footyguess/footyguess/internal/models"
)

// ComputeWinner applies the winner rule shared by forfeit handling, the
// results view and win/loss statistics: sort by score descending, the top
// scorer wins only with a positive score that strictly beats second place.
// A tie for first yields no winner even though the game still finishes.
func ComputeWinner(players []models.GamePlayer) *models.GamePlayer {
	if len(players) == 0 {
		return nil
	}

	sorted := make([]models.GamePlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	top := sorted[0]
	if top.Score <= 0 {
		return nil
	}
	if len(sorted) > 1 && sorted[1].Score >= top.Score {
		return nil
	}
	return &top
}

// SortByScore returns a copy of players ordered by score descending, for
// standings displays. Ties keep roster order.
func SortByScore(players []models.GamePlayer) []models.GamePlayer {
	sorted := make([]models.GamePlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
