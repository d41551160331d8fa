package game

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/footyguess/footyguess/internal/models"
)

// fakeRepo is an in-memory Repository. WithTx serializes callers with a
// mutex, which is enough to stand in for the store's transactional
// guarantees in tests.
type fakeRepo struct {
	mu sync.Mutex

	games     map[uuid.UUID]*models.Game
	players   map[uuid.UUID]*models.GamePlayer
	questions map[uuid.UUID]*models.Question
	users     map[uuid.UUID]*models.User

	outbox []recordedEvent

	joinSeq int
}

type recordedEvent struct {
	EventType string
	GameID    uuid.UUID
	Payload   json.RawMessage
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		games:     make(map[uuid.UUID]*models.Game),
		players:   make(map[uuid.UUID]*models.GamePlayer),
		questions: make(map[uuid.UUID]*models.Question),
		users:     make(map[uuid.UUID]*models.User),
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func (f *fakeRepo) addUser(username string) uuid.UUID {
	id := uuid.New()
	f.users[id] = &models.User{ID: id, Username: username}
	return id
}

func (f *fakeRepo) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeRepo) GetGameForUpdate(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return f.GetGame(ctx, id)
}

func (f *fakeRepo) FindGameID(ctx context.Context, idOrCode string) (uuid.UUID, error) {
	if len(idOrCode) == 8 {
		prefix := strings.ToLower(idOrCode)
		var matches []uuid.UUID
		for id := range f.games {
			if strings.HasPrefix(id.String(), prefix) {
				matches = append(matches, id)
			}
		}
		switch len(matches) {
		case 0:
			return uuid.Nil, ErrNotFound
		case 1:
			return matches[0], nil
		default:
			return uuid.Nil, ErrAmbiguousID
		}
	}
	id, err := uuid.Parse(idOrCode)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	if _, ok := f.games[id]; !ok {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func (f *fakeRepo) InsertGame(ctx context.Context, g *models.Game) error {
	cp := *g
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.games[g.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	g, ok := f.games[id]
	if !ok {
		return ErrNotFound
	}
	g.Status = status
	g.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) UpdateGameTurn(ctx context.Context, id uuid.UUID, turn int) (bool, error) {
	g, ok := f.games[id]
	if !ok {
		return false, ErrNotFound
	}
	if turn <= g.CurrentTurn {
		return false, nil
	}
	g.CurrentTurn = turn
	g.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRepo) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]models.GamePlayer, error) {
	var players []models.GamePlayer
	for _, p := range f.players {
		if p.GameID == gameID {
			cp := *p
			if u, ok := f.users[p.UserID]; ok {
				uc := *u
				cp.User = &uc
			}
			players = append(players, cp)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (f *fakeRepo) GetPlayer(ctx context.Context, gameID, userID uuid.UUID) (*models.GamePlayer, error) {
	for _, p := range f.players {
		if p.GameID == gameID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) InsertPlayer(ctx context.Context, p *models.GamePlayer) error {
	cp := *p
	f.joinSeq++
	cp.JoinedAt = time.Unix(int64(f.joinSeq), 0)
	f.players[p.ID] = &cp
	return nil
}

func (f *fakeRepo) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	delete(f.players, id)
	return nil
}

func (f *fakeRepo) DeletePlayersByGame(ctx context.Context, gameID uuid.UUID) error {
	for id, p := range f.players {
		if p.GameID == gameID {
			delete(f.players, id)
		}
	}
	return nil
}

func (f *fakeRepo) IncrementScore(ctx context.Context, playerID uuid.UUID) error {
	p, ok := f.players[playerID]
	if !ok {
		return ErrNotFound
	}
	p.Score++
	return nil
}

func (f *fakeRepo) ListQuestions(ctx context.Context, gameID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	for _, q := range f.questions {
		if q.GameID == gameID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Round < questions[j].Round
	})
	return questions, nil
}

func (f *fakeRepo) InsertQuestion(ctx context.Context, q *models.Question) error {
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) InsertOutbox(ctx context.Context, eventType string, gameID uuid.UUID, payload []byte) error {
	f.outbox = append(f.outbox, recordedEvent{
		EventType: eventType,
		GameID:    gameID,
		Payload:   append(json.RawMessage(nil), payload...),
	})
	return nil
}

func (f *fakeRepo) eventTypes() []string {
	types := make([]string, len(f.outbox))
	for i, e := range f.outbox {
		types[i] = e.EventType
	}
	return types
}
