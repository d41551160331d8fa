package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/footyguess/footyguess/internal/content"
	"github.com/footyguess/footyguess/internal/game/events"
	"github.com/footyguess/footyguess/internal/models"
)

// App owns the authoritative lifecycle of game sessions. Every mutation runs
// inside a single transaction with the game row locked, so roster capacity,
// turn bounds and status transitions are enforced at one chokepoint. Domain
// events are written to the outbox in the same transaction.
type App struct {
	repo    Repository
	catalog *content.Catalog

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewApp creates the game application service.
func NewApp(repo Repository, catalog *content.Catalog) *App {
	return &App{
		repo:    repo,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *App) emit(ctx context.Context, s Store, gameID uuid.UUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return s.InsertOutbox(ctx, eventType, gameID, data)
}

func (a *App) emitUpdated(ctx context.Context, s Store, gameID uuid.UUID, reason string) error {
	return a.emit(ctx, s, gameID, events.TypeGameUpdated, events.GameUpdatedPayload{
		GameID:    gameID.String(),
		Reason:    reason,
		UpdatedAt: time.Now().UTC(),
	})
}

func (a *App) emitFinished(ctx context.Context, s Store, gameID uuid.UUID, status models.GameStatus) error {
	return a.emit(ctx, s, gameID, events.TypeGameFinished, events.GameFinishedPayload{
		GameID:     gameID.String(),
		Status:     string(status),
		FinishedAt: time.Now().UTC(),
	})
}

func view(ctx context.Context, s Store, g *models.Game) (*View, error) {
	players, err := s.ListPlayers(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	creator, err := s.GetUser(ctx, g.CreatorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &View{Game: *g, Creator: creator, Players: players}, nil
}

// Create inserts a WAITING game and seats the creator as host.
func (a *App) Create(ctx context.Context, creatorID uuid.UUID, req CreateGameRequest) (*View, error) {
	req.applyDefaults()

	var v *View
	err := a.repo.WithTx(ctx, func(s Store) error {
		g := &models.Game{
			ID:          uuid.New(),
			Status:      models.GameStatusWaiting,
			CurrentTurn: 0,
			MaxPlayers:  req.MaxPlayers,
			MaxTurns:    req.MaxTurns,
			Difficulty:  req.Difficulty,
			TimePerTurn: req.TimePerTurn,
			CreatorID:   creatorID,
		}
		if err := s.InsertGame(ctx, g); err != nil {
			return err
		}
		if err := s.InsertPlayer(ctx, &models.GamePlayer{
			ID:     uuid.New(),
			GameID: g.ID,
			UserID: creatorID,
			IsHost: true,
			Score:  0,
		}); err != nil {
			return err
		}
		created, err := s.GetGame(ctx, g.ID)
		if err != nil {
			return err
		}
		v, err = view(ctx, s, created)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", v.Game.ID.String()).
		Str("creator_id", creatorID.String()).
		Str("difficulty", string(v.Game.Difficulty)).
		Msg("game created")
	return v, nil
}

// Get returns the full read model for a game, resolving short codes.
func (a *App) Get(ctx context.Context, idOrCode string) (*View, error) {
	id, err := a.repo.FindGameID(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	g, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(ctx, a.repo, g)
}

// Join seats a user in a WAITING game. Re-joining a WAITING game the user is
// already in succeeds with AlreadyInGame set, so a reconnect after a page
// refresh does not error; once the game has left WAITING every join is
// rejected. The capacity check and the insert run in one transaction.
func (a *App) Join(ctx context.Context, idOrCode string, userID uuid.UUID) (*JoinResult, error) {
	var res JoinResult
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if g.Status != models.GameStatusWaiting {
			return fmt.Errorf("cannot join game in status %s: %w", g.Status, ErrInvalidState)
		}

		existing, err := s.GetPlayer(ctx, g.ID, userID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			res.AlreadyInGame = true
			res.View, err = view(ctx, s, g)
			return err
		}

		players, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		if len(players) >= g.MaxPlayers {
			return ErrGameFull
		}

		if err := s.InsertPlayer(ctx, &models.GamePlayer{
			ID:     uuid.New(),
			GameID: g.ID,
			UserID: userID,
			IsHost: false,
			Score:  0,
		}); err != nil {
			return err
		}
		if err := a.emitUpdated(ctx, s, g.ID, "player-joined"); err != nil {
			return err
		}
		res.View, err = view(ctx, s, g)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", res.View.Game.ID.String()).
		Str("user_id", userID.String()).
		Bool("already_in_game", res.AlreadyInGame).
		Msg("player joined game")
	return &res, nil
}

// Start transitions a WAITING game to IN_PROGRESS. Host only, two players
// minimum. The turn counter is reset to zero.
func (a *App) Start(ctx context.Context, idOrCode string, requesterID uuid.UUID) (*models.Game, error) {
	var started *models.Game
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusWaiting {
			return fmt.Errorf("cannot start game in status %s: %w", g.Status, ErrInvalidState)
		}

		requester, err := s.GetPlayer(ctx, g.ID, requesterID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("requester is not in the game: %w", ErrForbidden)
			}
			return err
		}
		if !requester.IsHost {
			return fmt.Errorf("only the host can start the game: %w", ErrForbidden)
		}

		players, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		if len(players) < 2 {
			return ErrInsufficientPlayers
		}

		if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusInProgress); err != nil {
			return err
		}
		if err := a.emit(ctx, s, g.ID, events.TypeGameStarted, events.GameStartedPayload{
			GameID:      g.ID.String(),
			StartedAt:   time.Now().UTC(),
			PlayerCount: len(players),
			TotalTurns:  TotalTurns(g, len(players)),
		}); err != nil {
			return err
		}

		started, err = s.GetGame(ctx, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("game_id", started.ID.String()).Msg("game started")
	return started, nil
}

// RecordAnswer credits a correct answer with exactly one point. Incorrect
// answers are a successful no-op. At-most-once per answer is the caller's
// responsibility.
func (a *App) RecordAnswer(ctx context.Context, idOrCode string, userID uuid.UUID, isCorrect bool) (*models.GamePlayer, error) {
	var scored *models.GamePlayer
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusInProgress {
			return fmt.Errorf("cannot score game in status %s: %w", g.Status, ErrInvalidState)
		}

		p, err := s.GetPlayer(ctx, g.ID, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("user is not in the game: %w", ErrForbidden)
			}
			return err
		}
		if !isCorrect {
			scored = p
			return nil
		}

		if err := s.IncrementScore(ctx, p.ID); err != nil {
			return err
		}
		p.Score++
		scored = p
		return a.emitUpdated(ctx, s, g.ID, "score-updated")
	})
	if err != nil {
		return nil, err
	}
	return scored, nil
}

// AdvanceTurn moves the turn counter to nextTurn. When nextTurn reaches the
// total turn budget the game finishes instead and the turn value is not
// written. The finish check runs before the write against the roster size at
// evaluation time. Values at or behind the recorded turn are ignored, so
// duplicate or stale client timeouts cannot regress the counter.
func (a *App) AdvanceTurn(ctx context.Context, idOrCode string, requesterID uuid.UUID, nextTurn int) (*AdvanceResult, error) {
	var res AdvanceResult
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusInProgress {
			return fmt.Errorf("cannot advance game in status %s: %w", g.Status, ErrInvalidState)
		}
		if _, err := s.GetPlayer(ctx, g.ID, requesterID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("requester is not in the game: %w", ErrForbidden)
			}
			return err
		}

		players, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		if nextTurn >= TotalTurns(g, len(players)) {
			if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusFinished); err != nil {
				return err
			}
			if err := a.emitFinished(ctx, s, g.ID, models.GameStatusFinished); err != nil {
				return err
			}
			res.GameFinished = true
			res.Game, err = s.GetGame(ctx, g.ID)
			return err
		}

		applied, err := s.UpdateGameTurn(ctx, g.ID, nextTurn)
		if err != nil {
			return err
		}
		if applied {
			if err := a.emit(ctx, s, g.ID, events.TypeTurnUpdated, events.TurnUpdatedPayload{
				GameID:     g.ID.String(),
				Turn:       nextTurn,
				AdvancedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}
		} else {
			log.Debug().
				Str("game_id", g.ID.String()).
				Int("current_turn", g.CurrentTurn).
				Int("next_turn", nextTurn).
				Msg("stale turn advance ignored")
		}
		res.Game, err = s.GetGame(ctx, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Leave removes a user from a WAITING game. A leaving host cancels the game
// and deletes the whole roster. A leaving non-host deletes only their own
// row; if fewer than two players remain the game is cancelled but the
// remaining rows are kept.
func (a *App) Leave(ctx context.Context, idOrCode string, userID uuid.UUID) (*LeaveResult, error) {
	var res LeaveResult
	var gameID uuid.UUID
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		gameID = g.ID
		if g.Status != models.GameStatusWaiting {
			return fmt.Errorf("cannot leave game in status %s: %w", g.Status, ErrInvalidState)
		}

		p, err := s.GetPlayer(ctx, g.ID, userID)
		if err != nil {
			return err
		}

		if p.IsHost {
			if err := s.DeletePlayersByGame(ctx, g.ID); err != nil {
				return err
			}
			if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusCancelled); err != nil {
				return err
			}
			res.GameCancelled = true
			res.RemainingPlayers = 0
			return a.emitFinished(ctx, s, g.ID, models.GameStatusCancelled)
		}

		if err := s.DeletePlayer(ctx, p.ID); err != nil {
			return err
		}
		remaining, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		res.RemainingPlayers = len(remaining)
		if len(remaining) < 2 {
			if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusCancelled); err != nil {
				return err
			}
			res.GameCancelled = true
			return a.emitFinished(ctx, s, g.ID, models.GameStatusCancelled)
		}
		return a.emitUpdated(ctx, s, g.ID, "player-left")
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Bool("game_cancelled", res.GameCancelled).
		Msg("player left game")
	return &res, nil
}

// Forfeit removes a player from an IN_PROGRESS game. With nobody left the
// game is cancelled; otherwise it finishes immediately and a winner is
// computed from the remaining players.
func (a *App) Forfeit(ctx context.Context, idOrCode string, userID uuid.UUID) (*ForfeitResult, error) {
	var res ForfeitResult
	var gameID uuid.UUID
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		gameID = g.ID
		if g.Status != models.GameStatusInProgress {
			return fmt.Errorf("cannot forfeit game in status %s: %w", g.Status, ErrInvalidState)
		}

		p, err := s.GetPlayer(ctx, g.ID, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("user is not in the game: %w", ErrForbidden)
			}
			return err
		}
		if err := s.DeletePlayer(ctx, p.ID); err != nil {
			return err
		}

		remaining, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusCancelled); err != nil {
				return err
			}
			res.GameCancelled = true
			return a.emitFinished(ctx, s, g.ID, models.GameStatusCancelled)
		}

		if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusFinished); err != nil {
			return err
		}
		res.GameFinished = true
		res.Winner = ComputeWinner(remaining)
		return a.emitFinished(ctx, s, g.ID, models.GameStatusFinished)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Bool("game_cancelled", res.GameCancelled).
		Msg("player forfeited")
	return &res, nil
}

// RemovePlayer lets the host evict a non-host player from the lobby. The
// game stays WAITING regardless of the resulting roster size.
func (a *App) RemovePlayer(ctx context.Context, idOrCode string, requesterID, targetPlayerID uuid.UUID) (*View, error) {
	var v *View
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusWaiting {
			return fmt.Errorf("cannot remove players in status %s: %w", g.Status, ErrInvalidState)
		}

		requester, err := s.GetPlayer(ctx, g.ID, requesterID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("requester is not in the game: %w", ErrForbidden)
			}
			return err
		}
		if !requester.IsHost {
			return fmt.Errorf("only the host can remove players: %w", ErrForbidden)
		}

		players, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		var target *models.GamePlayer
		for i := range players {
			if players[i].ID == targetPlayerID {
				target = &players[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("player not in the game: %w", ErrNotFound)
		}
		if target.IsHost {
			return fmt.Errorf("the host cannot be removed: %w", ErrForbidden)
		}

		if err := s.DeletePlayer(ctx, target.ID); err != nil {
			return err
		}
		if err := a.emitUpdated(ctx, s, g.ID, "player-removed"); err != nil {
			return err
		}
		v, err = view(ctx, s, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// QuestionForRound returns the trivia subject for round currentTurn+1,
// creating the Question row on first call. Re-fetching an existing round is
// idempotent and returns the same subject. When every subject of the game's
// difficulty has been used the game soft-finishes instead of erroring.
func (a *App) QuestionForRound(ctx context.Context, idOrCode string) (*QuestionResult, error) {
	var res QuestionResult
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusInProgress {
			return fmt.Errorf("cannot fetch question in status %s: %w", g.Status, ErrInvalidState)
		}

		players, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		questions, err := s.ListQuestions(ctx, g.ID)
		if err != nil {
			return err
		}

		round := g.CurrentTurn + 1
		used := make(map[string]bool, len(questions))
		for _, q := range questions {
			used[q.SubjectID] = true
			if q.Round == round {
				subject, ok := a.catalog.Get(q.SubjectID)
				if !ok {
					return fmt.Errorf("question subject %s missing from catalog", q.SubjectID)
				}
				res.Subject = subject
				res.AlreadyExists = true
			}
		}
		res.AvailableSubjects = len(a.catalog.ByDifficulty(g.Difficulty)) - len(used)
		res.TurnsRemaining = TotalTurns(g, len(players)) - g.CurrentTurn
		if res.AlreadyExists {
			return nil
		}

		a.rngMu.Lock()
		subject, err := a.catalog.Pick(g.Difficulty, used, a.rng)
		a.rngMu.Unlock()
		if err != nil {
			if !errors.Is(err, content.ErrExhausted) {
				return err
			}
			// Soft finish: content exhaustion ends the game, it never
			// surfaces as a user-facing error.
			if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusFinished); err != nil {
				return err
			}
			res.GameFinished = true
			res.AvailableSubjects = 0
			log.Warn().
				Str("game_id", g.ID.String()).
				Str("difficulty", string(g.Difficulty)).
				Msg("subject pool exhausted, finishing game")
			return a.emitFinished(ctx, s, g.ID, models.GameStatusFinished)
		}

		if err := s.InsertQuestion(ctx, &models.Question{
			ID:        uuid.New(),
			GameID:    g.ID,
			SubjectID: subject.ID,
			Round:     round,
		}); err != nil {
			return err
		}
		res.Subject = subject
		res.AvailableSubjects--
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckGuess compares a guess against the current round's subject. The match
// ignores case, accents and surrounding whitespace, mirroring what the clients
// do locally. Read-only: scoring stays with RecordAnswer.
func (a *App) CheckGuess(ctx context.Context, idOrCode, guess string) (*GuessResult, error) {
	id, err := a.repo.FindGameID(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	g, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status != models.GameStatusInProgress {
		return nil, fmt.Errorf("cannot check guess in status %s: %w", g.Status, ErrInvalidState)
	}

	questions, err := a.repo.ListQuestions(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	round := g.CurrentTurn + 1
	for _, q := range questions {
		if q.Round != round {
			continue
		}
		subject, ok := a.catalog.Get(q.SubjectID)
		if !ok {
			return nil, fmt.Errorf("question subject %s missing from catalog", q.SubjectID)
		}
		return &GuessResult{
			Correct: content.CheckGuess(guess, subject),
			Round:   round,
		}, nil
	}
	return nil, fmt.Errorf("no question for round %d: %w", round, ErrNotFound)
}

// Finish ends an IN_PROGRESS game explicitly, e.g. when the last round was
// played out client-side. Idempotent for already-finished games.
func (a *App) Finish(ctx context.Context, idOrCode string, requesterID uuid.UUID) (*Results, error) {
	var res *Results
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.GetPlayer(ctx, g.ID, requesterID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("requester is not in the game: %w", ErrForbidden)
			}
			return err
		}

		switch g.Status {
		case models.GameStatusInProgress:
			if err := s.UpdateGameStatus(ctx, g.ID, models.GameStatusFinished); err != nil {
				return err
			}
			if err := a.emitFinished(ctx, s, g.ID, models.GameStatusFinished); err != nil {
				return err
			}
			g, err = s.GetGame(ctx, g.ID)
			if err != nil {
				return err
			}
		case models.GameStatusFinished:
			// Already finished, return the standings as they are.
		default:
			return fmt.Errorf("cannot finish game in status %s: %w", g.Status, ErrInvalidState)
		}

		players, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		standings := SortByScore(players)
		res = &Results{
			Game:    *g,
			Players: standings,
			Winner:  ComputeWinner(players),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Results returns the final standings of a finished or cancelled game.
func (a *App) Results(ctx context.Context, idOrCode string) (*Results, error) {
	id, err := a.repo.FindGameID(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	g, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status != models.GameStatusFinished && g.Status != models.GameStatusCancelled {
		return nil, fmt.Errorf("game is still %s: %w", g.Status, ErrInvalidState)
	}
	players, err := a.repo.ListPlayers(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	return &Results{
		Game:    *g,
		Players: SortByScore(players),
		Winner:  ComputeWinner(players),
	}, nil
}

// HandleDisconnect is the relay's internal hook for a dropped socket. Only a
// non-host player in a WAITING game is removed; every other case is a
// successful no-op. Host rows survive disconnects so a dropped host
// connection never deletes the lobby.
func (a *App) HandleDisconnect(ctx context.Context, idOrCode string, userID uuid.UUID) (*LeaveResult, error) {
	var res LeaveResult
	err := a.repo.WithTx(ctx, func(s Store) error {
		id, err := s.FindGameID(ctx, idOrCode)
		if err != nil {
			return err
		}
		g, err := s.GetGameForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusWaiting {
			return nil
		}

		p, err := s.GetPlayer(ctx, g.ID, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if p.IsHost {
			return nil
		}

		if err := s.DeletePlayer(ctx, p.ID); err != nil {
			return err
		}
		remaining, err := s.ListPlayers(ctx, g.ID)
		if err != nil {
			return err
		}
		res.RemainingPlayers = len(remaining)
		log.Info().
			Str("game_id", g.ID.String()).
			Str("user_id", userID.String()).
			Msg("removed disconnected player")
		return a.emitUpdated(ctx, s, g.ID, "player-disconnected")
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
