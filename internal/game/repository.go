package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/footyguess/footyguess/internal/models"
	"github.com/footyguess/footyguess/internal/sqlutil"
)

// Store is the data access contract the state machine composes its
// operations from. Inside WithTx every call runs on the same transaction, so
// check-then-write sequences (roster capacity, turn bounds) are atomic.
type Store interface {
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetGameForUpdate(ctx context.Context, id uuid.UUID) (*models.Game, error)
	FindGameID(ctx context.Context, idOrCode string) (uuid.UUID, error)
	InsertGame(ctx context.Context, g *models.Game) error
	UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error
	UpdateGameTurn(ctx context.Context, id uuid.UUID, turn int) (bool, error)

	ListPlayers(ctx context.Context, gameID uuid.UUID) ([]models.GamePlayer, error)
	GetPlayer(ctx context.Context, gameID, userID uuid.UUID) (*models.GamePlayer, error)
	InsertPlayer(ctx context.Context, p *models.GamePlayer) error
	DeletePlayer(ctx context.Context, id uuid.UUID) error
	DeletePlayersByGame(ctx context.Context, gameID uuid.UUID) error
	IncrementScore(ctx context.Context, playerID uuid.UUID) error

	ListQuestions(ctx context.Context, gameID uuid.UUID) ([]models.Question, error)
	InsertQuestion(ctx context.Context, q *models.Question) error

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	InsertOutbox(ctx context.Context, eventType string, gameID uuid.UUID, payload []byte) error
}

// Repository is a Store plus the transactional boundary.
type Repository interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries implements Store against a DBTX.
type Queries struct {
	db DBTX
}

// NewQueries binds queries to a database handle or transaction.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func newTxQueries(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// SQLRepository implements Repository over Postgres.
type SQLRepository struct {
	*Queries
	db *sql.DB
}

// NewRepository creates a Postgres-backed repository.
func NewRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{
		Queries: NewQueries(db),
		db:      db,
	}
}

// WithTx runs fn with every Store call bound to one transaction.
func (r *SQLRepository) WithTx(ctx context.Context, fn func(Store) error) error {
	return sqlutil.Run(ctx, r.db, newTxQueries, func(q *Queries) error {
		return fn(q)
	})
}

const gameColumns = `id, status, current_turn, max_players, max_turns, difficulty, time_per_turn, creator_id, created_at, updated_at`

func scanGame(row *sql.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(
		&g.ID, &g.Status, &g.CurrentTurn, &g.MaxPlayers, &g.MaxTurns,
		&g.Difficulty, &g.TimePerTurn, &g.CreatorID, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return &g, nil
}

func (q *Queries) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (q *Queries) GetGameForUpdate(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, id)
	return scanGame(row)
}

// FindGameID resolves a full id or an 8-character case-insensitive short
// code. A short code matching more than one game is rejected as ambiguous.
func (q *Queries) FindGameID(ctx context.Context, idOrCode string) (uuid.UUID, error) {
	if len(idOrCode) == 8 {
		rows, err := q.db.QueryContext(ctx,
			`SELECT id FROM games WHERE id::text LIKE $1 LIMIT 2`,
			strings.ToLower(idOrCode)+"%")
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to resolve game code: %w", err)
		}
		defer rows.Close()

		var ids []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return uuid.Nil, fmt.Errorf("failed to scan game id: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return uuid.Nil, err
		}
		switch len(ids) {
		case 0:
			return uuid.Nil, ErrNotFound
		case 1:
			return ids[0], nil
		default:
			return uuid.Nil, ErrAmbiguousID
		}
	}

	id, err := uuid.Parse(idOrCode)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	var found uuid.UUID
	err = q.db.QueryRowContext(ctx, `SELECT id FROM games WHERE id = $1`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve game id: %w", err)
	}
	return found, nil
}

func (q *Queries) InsertGame(ctx context.Context, g *models.Game) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO games (id, status, current_turn, max_players, max_turns, difficulty, time_per_turn, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.Status, g.CurrentTurn, g.MaxPlayers, g.MaxTurns, g.Difficulty, g.TimePerTurn, g.CreatorID)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func (q *Queries) UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE games SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	return nil
}

// UpdateGameTurn applies the turn value only when it moves forward. Stale or
// duplicate advances report false with no write.
func (q *Queries) UpdateGameTurn(ctx context.Context, id uuid.UUID, turn int) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE games SET current_turn = $2, updated_at = now() WHERE id = $1 AND current_turn < $2`,
		id, turn)
	if err != nil {
		return false, fmt.Errorf("failed to update game turn: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const playerColumns = `gp.id, gp.game_id, gp.user_id, gp.is_host, gp.score, gp.joined_at,
	u.id, u.username, u.first_name, u.last_name`

func scanPlayer(scan func(dest ...any) error) (*models.GamePlayer, error) {
	var p models.GamePlayer
	var u models.User
	err := scan(
		&p.ID, &p.GameID, &p.UserID, &p.IsHost, &p.Score, &p.JoinedAt,
		&u.ID, &u.Username, &u.FirstName, &u.LastName,
	)
	if err != nil {
		return nil, err
	}
	p.User = &u
	return &p, nil
}

// ListPlayers returns the roster ordered by joinedAt ascending. The ordering
// is load-bearing: the active-player index is derived from it on every
// client.
func (q *Queries) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]models.GamePlayer, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+playerColumns+`
		 FROM game_players gp
		 JOIN users u ON u.id = gp.user_id
		 WHERE gp.game_id = $1
		 ORDER BY gp.joined_at ASC, gp.id ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.GamePlayer
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (q *Queries) GetPlayer(ctx context.Context, gameID, userID uuid.UUID) (*models.GamePlayer, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+`
		 FROM game_players gp
		 JOIN users u ON u.id = gp.user_id
		 WHERE gp.game_id = $1 AND gp.user_id = $2`, gameID, userID)
	p, err := scanPlayer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (q *Queries) InsertPlayer(ctx context.Context, p *models.GamePlayer) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO game_players (id, game_id, user_id, is_host, score)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.GameID, p.UserID, p.IsHost, p.Score)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (q *Queries) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM game_players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

func (q *Queries) DeletePlayersByGame(ctx context.Context, gameID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM game_players WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game roster: %w", err)
	}
	return nil
}

func (q *Queries) IncrementScore(ctx context.Context, playerID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE game_players SET score = score + 1 WHERE id = $1`, playerID)
	if err != nil {
		return fmt.Errorf("failed to increment score: %w", err)
	}
	return nil
}

func (q *Queries) ListQuestions(ctx context.Context, gameID uuid.UUID) ([]models.Question, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, game_id, subject_id, round, created_at
		 FROM questions WHERE game_id = $1 ORDER BY round ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var qu models.Question
		if err := rows.Scan(&qu.ID, &qu.GameID, &qu.SubjectID, &qu.Round, &qu.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, qu)
	}
	return questions, rows.Err()
}

func (q *Queries) InsertQuestion(ctx context.Context, qu *models.Question) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO questions (id, game_id, subject_id, round) VALUES ($1, $2, $3, $4)`,
		qu.ID, qu.GameID, qu.SubjectID, qu.Round)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, username, first_name, last_name FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// InsertOutbox records a domain event in the same transaction as the
// mutation that produced it. A trigger notifies the outbox listener.
func (q *Queries) InsertOutbox(ctx context.Context, eventType string, gameID uuid.UUID, payload []byte) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO game_outbox (id, game_id, event_type, payload) VALUES ($1, $2, $3, $4)`,
		uuid.New(), gameID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}
