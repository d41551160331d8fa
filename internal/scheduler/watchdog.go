package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/footyguess/footyguess/internal/game"
	"github.com/footyguess/footyguess/internal/models"
)

// Turn timing is client-driven: the active player's client runs the
// countdown and calls advanceTurn itself when it expires. The watchdog is an
// optional server-side backstop for the liveness gap where the active client
// crashes and the turn stalls. It waits timePerTurn plus a grace period and
// then advances the turn on the stalled player's behalf. Stale advances are
// ignored store-side, so the watchdog racing a healthy client is harmless.

// GameAdvancer is the slice of the game application the watchdog drives.
type GameAdvancer interface {
	Get(ctx context.Context, idOrCode string) (*game.View, error)
	AdvanceTurn(ctx context.Context, idOrCode string, requesterID uuid.UUID, nextTurn int) (*game.AdvanceResult, error)
}

// Config holds watchdog tuning knobs.
type Config struct {
	// Grace is added on top of the game's timePerTurn before the watchdog
	// steps in, leaving the active client room to advance first.
	Grace time.Duration

	WorkBuffer int
}

func DefaultConfig() Config {
	return Config{
		Grace:      15 * time.Second,
		WorkBuffer: 64,
	}
}

// Watchdog keeps one one-shot timer per in-progress game.
type Watchdog struct {
	app   GameAdvancer
	clock clockwork.Clock
	cfg   Config

	activeTimersMu sync.Mutex
	activeTimers   map[uuid.UUID]clockwork.Timer

	lastScheduledMu sync.Mutex
	lastScheduled   map[uuid.UUID]time.Time

	workCh chan uuid.UUID
}

// NewWatchdog creates a watchdog. Pass a fake clock in tests.
func NewWatchdog(app GameAdvancer, clock clockwork.Clock, cfg Config) *Watchdog {
	return &Watchdog{
		app:           app,
		clock:         clock,
		cfg:           cfg,
		activeTimers:  make(map[uuid.UUID]clockwork.Timer),
		lastScheduled: make(map[uuid.UUID]time.Time),
		workCh:        make(chan uuid.UUID, cfg.WorkBuffer),
	}
}

// Start drains expired timers until ctx is cancelled.
func (w *Watchdog) Start(ctx context.Context) {
	log.Info().Dur("grace", w.cfg.Grace).Msg("turn watchdog started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("turn watchdog shutting down")
			return
		case gameID := <-w.workCh:
			w.processExpiry(ctx, gameID)
		}
	}
}

// OnGameStarted arms the timer for the first turn.
func (w *Watchdog) OnGameStarted(ctx context.Context, gameID uuid.UUID) {
	w.schedule(ctx, gameID, w.clock.Now())
}

// OnTurnAdvanced re-arms the timer for the next turn.
func (w *Watchdog) OnTurnAdvanced(ctx context.Context, gameID uuid.UUID) {
	w.schedule(ctx, gameID, w.clock.Now())
}

// OnGameFinished drops the game's timer.
func (w *Watchdog) OnGameFinished(gameID uuid.UUID) {
	w.cancelTimer(gameID)
}

// schedule arms a one-shot timer relative to baseTime. Duplicate schedules
// for the same baseTime are skipped.
func (w *Watchdog) schedule(ctx context.Context, gameID uuid.UUID, baseTime time.Time) {
	w.lastScheduledMu.Lock()
	if last, exists := w.lastScheduled[gameID]; exists && last.Equal(baseTime) {
		w.lastScheduledMu.Unlock()
		log.Debug().
			Str("game_id", gameID.String()).
			Time("base_time", baseTime).
			Msg("skipping duplicate schedule")
		return
	}
	w.lastScheduled[gameID] = baseTime
	w.lastScheduledMu.Unlock()

	v, err := w.app.Get(ctx, gameID.String())
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID.String()).Msg("failed to load game for scheduling")
		return
	}
	deadline := baseTime.Add(time.Duration(v.Game.TimePerTurn)*time.Second + w.cfg.Grace)

	duration := deadline.Sub(w.clock.Now())
	if duration <= 0 {
		duration = time.Millisecond
	}
	timer := w.clock.NewTimer(duration)
	w.replaceTimer(gameID, timer)

	go func(id uuid.UUID, t clockwork.Timer) {
		select {
		case <-t.Chan():
			w.removeTimer(id)
			w.lastScheduledMu.Lock()
			delete(w.lastScheduled, id)
			w.lastScheduledMu.Unlock()

			select {
			case w.workCh <- id:
				log.Debug().Str("game_id", id.String()).Msg("turn timer fired")
			default:
				log.Warn().Str("game_id", id.String()).Msg("turn timer fired but work channel full")
			}
		case <-ctx.Done():
			stopAndDrainTimer(t)
			w.removeTimer(id)
			w.lastScheduledMu.Lock()
			delete(w.lastScheduled, id)
			w.lastScheduledMu.Unlock()
		}
	}(gameID, timer)

	log.Debug().
		Str("game_id", gameID.String()).
		Time("deadline", deadline).
		Msg("armed turn timer")
}

// processExpiry advances a stalled turn as if the active player had answered
// incorrectly: no score change, turn moves forward.
func (w *Watchdog) processExpiry(ctx context.Context, gameID uuid.UUID) {
	v, err := w.app.Get(ctx, gameID.String())
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID.String()).Msg("failed to load game on expiry")
		return
	}
	if v.Game.Status != models.GameStatusInProgress {
		w.cancelTimer(gameID)
		return
	}

	active := game.ActivePlayer(v.Players, v.Game.CurrentTurn)
	if active == nil {
		w.cancelTimer(gameID)
		return
	}

	res, err := w.app.AdvanceTurn(ctx, gameID.String(), active.UserID, v.Game.CurrentTurn+1)
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID.String()).Msg("watchdog failed to advance turn")
		return
	}

	log.Info().
		Str("game_id", gameID.String()).
		Int("turn", v.Game.CurrentTurn+1).
		Bool("game_finished", res.GameFinished).
		Msg("watchdog advanced stalled turn")

	if !res.GameFinished {
		w.schedule(ctx, gameID, w.clock.Now())
	} else {
		w.cancelTimer(gameID)
	}
}

func (w *Watchdog) replaceTimer(gameID uuid.UUID, newTimer clockwork.Timer) {
	w.activeTimersMu.Lock()
	defer w.activeTimersMu.Unlock()

	if existing, exists := w.activeTimers[gameID]; exists {
		stopAndDrainTimer(existing)
		log.Debug().Str("game_id", gameID.String()).Msg("replaced existing timer")
	}
	w.activeTimers[gameID] = newTimer
}

func (w *Watchdog) cancelTimer(gameID uuid.UUID) {
	w.activeTimersMu.Lock()
	defer w.activeTimersMu.Unlock()

	if timer, exists := w.activeTimers[gameID]; exists {
		stopAndDrainTimer(timer)
		delete(w.activeTimers, gameID)

		w.lastScheduledMu.Lock()
		delete(w.lastScheduled, gameID)
		w.lastScheduledMu.Unlock()
	}
}

func (w *Watchdog) removeTimer(gameID uuid.UUID) {
	w.activeTimersMu.Lock()
	defer w.activeTimersMu.Unlock()
	delete(w.activeTimers, gameID)
}

// stopAndDrainTimer stops a timer and drains its channel so the goroutine
// waiting on it cannot leak.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
