package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// ErrNotFound means the outbox row is absent or already sent.
var ErrNotFound = errors.New("outbox event not found or already sent")

// Repository reads and settles outbox rows. Inserts happen in the game
// package, inside the mutating transaction.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanEvent(scan func(dest ...any) error) (*OutboxEvent, error) {
	var e OutboxEvent
	var payload pqtype.NullRawMessage
	var sentAt sql.NullTime
	if err := scan(&e.ID, &e.GameID, &e.EventType, &payload, &e.CreatedAt, &sentAt); err != nil {
		return nil, err
	}
	if payload.Valid {
		e.Payload = payload.RawMessage
	}
	if sentAt.Valid {
		e.SentAt = &sentAt.Time
	}
	return &e, nil
}

// FetchByID returns an unsent outbox event by id.
func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, event_type, payload, created_at, sent_at
		 FROM game_outbox WHERE id = $1 AND sent_at IS NULL`, id)
	e, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return e, nil
}

// FetchUnsent returns up to limit unsent events, oldest first.
func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, event_type, payload, created_at, sent_at
		 FROM game_outbox WHERE sent_at IS NULL
		 ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// MarkSent stamps an event as delivered to the bus.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE game_outbox SET sent_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}
