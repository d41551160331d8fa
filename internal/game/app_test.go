package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/footyguess/footyguess/internal/content"
	"github.com/footyguess/footyguess/internal/game/events"
	"github.com/footyguess/footyguess/internal/models"
)

func testCatalog(size int) *content.Catalog {
	subjects := make([]content.Subject, size)
	for i := range subjects {
		subjects[i] = content.Subject{
			ID:         fmt.Sprintf("subject-%d", i),
			Name:       fmt.Sprintf("Player %d", i),
			Difficulty: models.DifficultyMedium,
		}
	}
	return content.New(subjects)
}

func newTestApp(catalogSize int) (*App, *fakeRepo) {
	repo := newFakeRepo()
	return NewApp(repo, testCatalog(catalogSize)), repo
}

// createGame seats host plus (extraPlayers) additional users and returns the
// game view and every user id in join order.
func createGame(t *testing.T, app *App, repo *fakeRepo, req CreateGameRequest, extraPlayers int) (*View, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	host := repo.addUser("host")
	v, err := app.Create(ctx, host, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	users := []uuid.UUID{host}
	for i := 0; i < extraPlayers; i++ {
		u := repo.addUser(fmt.Sprintf("player-%d", i+1))
		if _, err := app.Join(ctx, v.Game.ID.String(), u); err != nil {
			t.Fatalf("Join player %d: %v", i+1, err)
		}
		users = append(users, u)
	}
	return v, users
}

func TestCreateSeatsHost(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 0)

	if v.Game.Status != models.GameStatusWaiting {
		t.Errorf("status = %s, want WAITING", v.Game.Status)
	}
	if v.Game.CurrentTurn != 0 {
		t.Errorf("currentTurn = %d, want 0", v.Game.CurrentTurn)
	}
	if v.Game.MaxPlayers != 4 || v.Game.MaxTurns != 10 || v.Game.TimePerTurn != 30 {
		t.Errorf("defaults not applied: %+v", v.Game)
	}
	if len(v.Players) != 1 || !v.Players[0].IsHost || v.Players[0].UserID != users[0] {
		t.Errorf("creator not seated as host: %+v", v.Players)
	}
	if v.Players[0].Score != 0 {
		t.Errorf("host score = %d, want 0", v.Players[0].Score)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 1)
	ctx := context.Background()

	res, err := app.Join(ctx, v.Game.ID.String(), users[1])
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !res.AlreadyInGame {
		t.Error("second join should report alreadyInGame")
	}
	if len(res.View.Players) != 2 {
		t.Errorf("roster size = %d, want 2 (no duplicate row)", len(res.View.Players))
	}
}

func TestJoinResolvesShortCode(t *testing.T) {
	app, repo := newTestApp(20)
	v, _ := createGame(t, app, repo, CreateGameRequest{}, 0)
	ctx := context.Background()

	code := strings.ToUpper(v.Game.ID.String()[:8])
	u := repo.addUser("by-code")
	res, err := app.Join(ctx, code, u)
	if err != nil {
		t.Fatalf("join by short code: %v", err)
	}
	if res.View.Game.ID != v.Game.ID {
		t.Errorf("resolved wrong game: %s", res.View.Game.ID)
	}
}

func TestJoinRequiresWaiting(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 1)
	ctx := context.Background()
	if _, err := app.Start(ctx, v.Game.ID.String(), users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Once the game has left WAITING even a seated member is rejected; the
	// status check comes before the membership lookup.
	if _, err := app.Join(ctx, v.Game.ID.String(), users[1]); !errors.Is(err, ErrInvalidState) {
		t.Errorf("member join err = %v, want ErrInvalidState", err)
	}

	outsider := repo.addUser("late")
	if _, err := app.Join(ctx, v.Game.ID.String(), outsider); !errors.Is(err, ErrInvalidState) {
		t.Errorf("outsider join err = %v, want ErrInvalidState", err)
	}
}

func TestJoinRejectsUnknownGame(t *testing.T) {
	app, _ := newTestApp(20)
	_, err := app.Join(context.Background(), uuid.New().String(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	app, repo := newTestApp(20)
	v, _ := createGame(t, app, repo, CreateGameRequest{MaxPlayers: 3}, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		u := repo.addUser(fmt.Sprintf("racer-%d", i))
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := app.Join(ctx, v.Game.ID.String(), userID)
			if err != nil && !errors.Is(err, ErrGameFull) {
				t.Errorf("join: %v", err)
			}
		}(u)
	}
	wg.Wait()

	got, err := app.Get(ctx, v.Game.ID.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Players) != 3 {
		t.Errorf("final roster = %d, want exactly maxPlayers 3", len(got.Players))
	}
}

func TestStartRules(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 0)
	ctx := context.Background()

	if _, err := app.Start(ctx, v.Game.ID.String(), users[0]); !errors.Is(err, ErrInsufficientPlayers) {
		t.Errorf("solo start err = %v, want ErrInsufficientPlayers", err)
	}

	u2 := repo.addUser("second")
	if _, err := app.Join(ctx, v.Game.ID.String(), u2); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if _, err := app.Start(ctx, v.Game.ID.String(), u2); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-host start err = %v, want ErrForbidden", err)
	}

	g, err := app.Start(ctx, v.Game.ID.String(), users[0])
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if g.Status != models.GameStatusInProgress || g.CurrentTurn != 0 {
		t.Errorf("started game = %+v", g)
	}

	if _, err := app.Start(ctx, v.Game.ID.String(), users[0]); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double start err = %v, want ErrInvalidState", err)
	}

	found := false
	for _, e := range repo.eventTypes() {
		if e == events.TypeGameStarted {
			found = true
		}
	}
	if !found {
		t.Error("GameStarted event not written to outbox")
	}
}

func TestRecordAnswer(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 1)
	ctx := context.Background()
	if _, err := app.Start(ctx, v.Game.ID.String(), users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	p, err := app.RecordAnswer(ctx, v.Game.ID.String(), users[0], false)
	if err != nil {
		t.Fatalf("incorrect answer: %v", err)
	}
	if p.Score != 0 {
		t.Errorf("score after incorrect = %d, want 0", p.Score)
	}

	p, err = app.RecordAnswer(ctx, v.Game.ID.String(), users[0], true)
	if err != nil {
		t.Fatalf("correct answer: %v", err)
	}
	if p.Score != 1 {
		t.Errorf("score after correct = %d, want 1", p.Score)
	}
}

func TestAdvanceTurnFinishBoundary(t *testing.T) {
	app, repo := newTestApp(60)
	v, users := createGame(t, app, repo, CreateGameRequest{MaxTurns: 5}, 1)
	ctx := context.Background()
	id := v.Game.ID.String()
	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// 5 rounds x 2 players = 10 turns. Turns 1..9 keep the game going.
	for turn := 1; turn <= 9; turn++ {
		res, err := app.AdvanceTurn(ctx, id, users[0], turn)
		if err != nil {
			t.Fatalf("AdvanceTurn(%d): %v", turn, err)
		}
		if res.GameFinished {
			t.Fatalf("game finished early at turn %d", turn)
		}
		if res.Game.CurrentTurn != turn {
			t.Errorf("currentTurn = %d, want %d", res.Game.CurrentTurn, turn)
		}
	}

	res, err := app.AdvanceTurn(ctx, id, users[0], 10)
	if err != nil {
		t.Fatalf("AdvanceTurn(10): %v", err)
	}
	if !res.GameFinished {
		t.Error("turn 10 should finish the game")
	}
	if res.Game.Status != models.GameStatusFinished {
		t.Errorf("status = %s, want FINISHED", res.Game.Status)
	}
	if res.Game.CurrentTurn != 9 {
		t.Errorf("currentTurn = %d, the limit value must not be written", res.Game.CurrentTurn)
	}
}

func TestAdvanceTurnIgnoresStaleValues(t *testing.T) {
	app, repo := newTestApp(60)
	v, users := createGame(t, app, repo, CreateGameRequest{MaxTurns: 5}, 1)
	ctx := context.Background()
	id := v.Game.ID.String()
	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := app.AdvanceTurn(ctx, id, users[0], 3); err != nil {
		t.Fatalf("AdvanceTurn(3): %v", err)
	}
	turnEvents := 0
	for _, e := range repo.eventTypes() {
		if e == events.TypeTurnUpdated {
			turnEvents++
		}
	}

	// A duplicate and a regression are both silent no-ops.
	for _, stale := range []int{3, 2} {
		res, err := app.AdvanceTurn(ctx, id, users[0], stale)
		if err != nil {
			t.Fatalf("AdvanceTurn(%d): %v", stale, err)
		}
		if res.Game.CurrentTurn != 3 {
			t.Errorf("currentTurn = %d after stale advance %d, want 3", res.Game.CurrentTurn, stale)
		}
	}

	after := 0
	for _, e := range repo.eventTypes() {
		if e == events.TypeTurnUpdated {
			after++
		}
	}
	if after != turnEvents {
		t.Errorf("stale advances emitted %d extra TurnUpdated events", after-turnEvents)
	}
}

func TestLeaveHostCancelsAndCascades(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 2)
	ctx := context.Background()

	res, err := app.Leave(ctx, v.Game.ID.String(), users[0])
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if !res.GameCancelled || res.RemainingPlayers != 0 {
		t.Errorf("result = %+v, want cancelled with empty roster", res)
	}

	players, _ := repo.ListPlayers(ctx, v.Game.ID)
	if len(players) != 0 {
		t.Errorf("roster not cascaded: %d rows remain", len(players))
	}
	g, _ := repo.GetGame(ctx, v.Game.ID)
	if g.Status != models.GameStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", g.Status)
	}
}

func TestLeaveNonHostKeepsRosterOnCancel(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 2)
	ctx := context.Background()
	id := v.Game.ID.String()

	// Three seated. First non-host leave keeps the lobby alive.
	res, err := app.Leave(ctx, id, users[1])
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if res.GameCancelled || res.RemainingPlayers != 2 {
		t.Errorf("result = %+v, want 2 remaining and no cancel", res)
	}

	// Second non-host leave drops below two: cancelled, but the remaining
	// row is kept.
	res, err = app.Leave(ctx, id, users[2])
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if !res.GameCancelled || res.RemainingPlayers != 1 {
		t.Errorf("result = %+v, want cancelled with 1 remaining", res)
	}
	players, _ := repo.ListPlayers(ctx, v.Game.ID)
	if len(players) != 1 || !players[0].IsHost {
		t.Errorf("host row should survive: %+v", players)
	}
}

func TestLeaveRequiresWaiting(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 1)
	ctx := context.Background()
	if _, err := app.Start(ctx, v.Game.ID.String(), users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := app.Leave(ctx, v.Game.ID.String(), users[1]); !errors.Is(err, ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestForfeitFinishesWithWinner(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 2)
	ctx := context.Background()
	id := v.Game.ID.String()
	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// users[1] scores twice, users[2] once, then users[2] forfeits.
	for i := 0; i < 2; i++ {
		if _, err := app.RecordAnswer(ctx, id, users[1], true); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	if _, err := app.RecordAnswer(ctx, id, users[2], true); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	res, err := app.Forfeit(ctx, id, users[2])
	if err != nil {
		t.Fatalf("Forfeit: %v", err)
	}
	if !res.GameFinished || res.GameCancelled {
		t.Errorf("result = %+v, want finished", res)
	}
	if res.Winner == nil || res.Winner.UserID != users[1] {
		t.Errorf("winner = %+v, want users[1]", res.Winner)
	}

	players, _ := repo.ListPlayers(ctx, v.Game.ID)
	for _, p := range players {
		if p.UserID == users[2] {
			t.Error("forfeiting player row should be deleted")
		}
	}
}

func TestForfeitLastPlayerCancels(t *testing.T) {
	app, repo := newTestApp(20)
	ctx := context.Background()

	// An in-progress game with a single seat cannot arise through the
	// public operations, so stage it directly.
	u := repo.addUser("lonely")
	g := &models.Game{
		ID: uuid.New(), Status: models.GameStatusInProgress,
		MaxPlayers: 4, MaxTurns: 5, Difficulty: models.DifficultyMedium,
		TimePerTurn: 30, CreatorID: u,
	}
	repo.InsertGame(ctx, g)
	repo.InsertPlayer(ctx, &models.GamePlayer{ID: uuid.New(), GameID: g.ID, UserID: u, IsHost: true})

	res, err := app.Forfeit(ctx, g.ID.String(), u)
	if err != nil {
		t.Fatalf("Forfeit: %v", err)
	}
	if !res.GameCancelled || res.GameFinished {
		t.Errorf("result = %+v, want cancelled", res)
	}
}

func TestForfeitRequiresMembership(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 1)
	ctx := context.Background()
	if _, err := app.Start(ctx, v.Game.ID.String(), users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}
	outsider := repo.addUser("outsider")
	if _, err := app.Forfeit(ctx, v.Game.ID.String(), outsider); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestRemovePlayer(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 2)
	ctx := context.Background()
	id := v.Game.ID.String()

	players, _ := repo.ListPlayers(ctx, v.Game.ID)
	var hostRow, targetRow models.GamePlayer
	for _, p := range players {
		switch p.UserID {
		case users[0]:
			hostRow = p
		case users[1]:
			targetRow = p
		}
	}

	if _, err := app.RemovePlayer(ctx, id, users[1], targetRow.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-host removal err = %v, want ErrForbidden", err)
	}
	if _, err := app.RemovePlayer(ctx, id, users[0], hostRow.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("host self-removal err = %v, want ErrForbidden", err)
	}

	got, err := app.RemovePlayer(ctx, id, users[0], targetRow.ID)
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if len(got.Players) != 2 {
		t.Errorf("roster = %d, want 2", len(got.Players))
	}
	// Roster dropping below two via removal does not cancel: the host can
	// still invite more.
	if got.Game.Status != models.GameStatusWaiting {
		t.Errorf("status = %s, want WAITING", got.Game.Status)
	}
}

func TestQuestionRoundIdempotentAndUnique(t *testing.T) {
	app, repo := newTestApp(30)
	v, users := createGame(t, app, repo, CreateGameRequest{MaxTurns: 3}, 1)
	ctx := context.Background()
	id := v.Game.ID.String()
	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	seen := make(map[string]int)
	for turn := 0; turn < 6; turn++ {
		res, err := app.QuestionForRound(ctx, id)
		if err != nil {
			t.Fatalf("QuestionForRound turn %d: %v", turn, err)
		}
		if res.AlreadyExists {
			t.Errorf("turn %d: fresh round reported alreadyExists", turn)
		}

		again, err := app.QuestionForRound(ctx, id)
		if err != nil {
			t.Fatalf("re-fetch turn %d: %v", turn, err)
		}
		if !again.AlreadyExists || again.Subject.ID != res.Subject.ID {
			t.Errorf("turn %d: re-fetch returned %q (alreadyExists=%v), want %q",
				turn, again.Subject.ID, again.AlreadyExists, res.Subject.ID)
		}

		seen[res.Subject.ID]++
		if turn < 5 {
			if _, err := app.AdvanceTurn(ctx, id, users[0], turn+1); err != nil {
				t.Fatalf("AdvanceTurn: %v", err)
			}
		}
	}

	for subject, count := range seen {
		if count > 1 {
			t.Errorf("subject %s asked %d times", subject, count)
		}
	}
}

func TestQuestionExhaustionSoftFinishes(t *testing.T) {
	app, repo := newTestApp(2)
	v, users := createGame(t, app, repo, CreateGameRequest{MaxTurns: 5}, 1)
	ctx := context.Background()
	id := v.Game.ID.String()
	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for turn := 0; turn < 2; turn++ {
		if _, err := app.QuestionForRound(ctx, id); err != nil {
			t.Fatalf("QuestionForRound: %v", err)
		}
		if _, err := app.AdvanceTurn(ctx, id, users[0], turn+1); err != nil {
			t.Fatalf("AdvanceTurn: %v", err)
		}
	}

	res, err := app.QuestionForRound(ctx, id)
	if err != nil {
		t.Fatalf("exhausted pool must not error, got %v", err)
	}
	if !res.GameFinished {
		t.Error("exhausted pool should soft-finish the game")
	}
	g, _ := repo.GetGame(ctx, v.Game.ID)
	if g.Status != models.GameStatusFinished {
		t.Errorf("status = %s, want FINISHED", g.Status)
	}
}

func TestCheckGuess(t *testing.T) {
	app, repo := newTestApp(30)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 1)
	ctx := context.Background()
	id := v.Game.ID.String()

	if _, err := app.CheckGuess(ctx, id, "anything"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("guess before start err = %v, want ErrInvalidState", err)
	}

	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}
	q, err := app.QuestionForRound(ctx, id)
	if err != nil {
		t.Fatalf("QuestionForRound: %v", err)
	}

	res, err := app.CheckGuess(ctx, id, "  "+strings.ToUpper(q.Subject.Name)+"  ")
	if err != nil {
		t.Fatalf("CheckGuess: %v", err)
	}
	if !res.Correct || res.Round != 1 {
		t.Errorf("result = %+v, want correct for round 1", res)
	}

	res, err = app.CheckGuess(ctx, id, "somebody else")
	if err != nil {
		t.Fatalf("CheckGuess: %v", err)
	}
	if res.Correct {
		t.Error("wrong name reported correct")
	}
}

func TestHandleDisconnect(t *testing.T) {
	app, repo := newTestApp(20)
	v, users := createGame(t, app, repo, CreateGameRequest{}, 2)
	ctx := context.Background()
	id := v.Game.ID.String()

	// Host disconnect while WAITING: untouched.
	if _, err := app.HandleDisconnect(ctx, id, users[0]); err != nil {
		t.Fatalf("host disconnect: %v", err)
	}
	players, _ := repo.ListPlayers(ctx, v.Game.ID)
	if len(players) != 3 {
		t.Errorf("host disconnect changed roster: %d rows", len(players))
	}

	// Non-host disconnect while WAITING: that row alone removed.
	if _, err := app.HandleDisconnect(ctx, id, users[1]); err != nil {
		t.Fatalf("non-host disconnect: %v", err)
	}
	players, _ = repo.ListPlayers(ctx, v.Game.ID)
	if len(players) != 2 {
		t.Errorf("roster = %d, want 2", len(players))
	}
	updated := false
	for _, e := range repo.eventTypes() {
		if e == events.TypeGameUpdated {
			updated = true
		}
	}
	if !updated {
		t.Error("disconnect removal should emit GameUpdated")
	}

	// In progress: disconnects never mutate the roster.
	if _, err := app.Start(ctx, id, users[0]); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := app.HandleDisconnect(ctx, id, users[2]); err != nil {
		t.Fatalf("in-progress disconnect: %v", err)
	}
	players, _ = repo.ListPlayers(ctx, v.Game.ID)
	if len(players) != 2 {
		t.Errorf("in-progress disconnect changed roster: %d rows", len(players))
	}
}

func TestResultsRequiresTerminalStatus(t *testing.T) {
	app, repo := newTestApp(20)
	v, _ := createGame(t, app, repo, CreateGameRequest{}, 1)

	if _, err := app.Results(context.Background(), v.Game.ID.String()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestFullGameScenario(t *testing.T) {
	app, repo := newTestApp(30)
	ctx := context.Background()

	u1 := repo.addUser("u1")
	v, err := app.Create(ctx, u1, CreateGameRequest{MaxPlayers: 4, MaxTurns: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := v.Game.ID.String()

	u2 := repo.addUser("u2")
	if _, err := app.Join(ctx, id, u2); err != nil {
		t.Fatalf("Join: %v", err)
	}

	g, err := app.Start(ctx, id, u1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if g.CurrentTurn != 0 {
		t.Errorf("currentTurn = %d, want 0", g.CurrentTurn)
	}

	if _, err := app.RecordAnswer(ctx, id, u1, true); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	// 3 rounds x 2 players = 6 turns.
	for turn := 1; turn <= 5; turn++ {
		res, err := app.AdvanceTurn(ctx, id, u1, turn)
		if err != nil {
			t.Fatalf("AdvanceTurn(%d): %v", turn, err)
		}
		if res.GameFinished {
			t.Fatalf("finished early at turn %d", turn)
		}
	}
	res, err := app.AdvanceTurn(ctx, id, u1, 6)
	if err != nil {
		t.Fatalf("AdvanceTurn(6): %v", err)
	}
	if !res.GameFinished {
		t.Fatal("turn 6 should finish the game")
	}

	results, err := app.Results(ctx, id)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if results.Winner == nil || results.Winner.UserID != u1 {
		t.Errorf("winner = %+v, want u1 with score 1", results.Winner)
	}
	if results.Players[0].UserID != u1 {
		t.Errorf("standings[0] = %+v, want u1 first", results.Players[0])
	}
}
