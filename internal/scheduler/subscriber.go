package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/footyguess/footyguess/internal/game/events"
)

// Subscriber feeds bus events into the watchdog so timers follow the actual
// game lifecycle: armed on start, re-armed on turn advance, dropped on
// finish.
type Subscriber struct {
	watchdog *Watchdog
	nc       *nats.Conn
	subject  string
	sub      *nats.Subscription
}

// NewSubscriber connects to NATS and subscribes to the game event subjects.
func NewSubscriber(watchdog *Watchdog, url, subject string) (*Subscriber, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Subscriber{watchdog: watchdog, nc: nc, subject: subject}, nil
}

// Start subscribes and blocks until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		s.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub

	log.Info().Str("subject", s.subject).Msg("watchdog subscriber started")
	<-ctx.Done()
	return s.Stop()
}

// Stop unsubscribes and closes the connection.
func (s *Subscriber) Stop() error {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("failed to unsubscribe")
		}
	}
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}

func (s *Subscriber) handle(ctx context.Context, msg *nats.Msg) {
	var envelope struct {
		EventType string `json:"eventType"`
		GameID    string `json:"gameId"`
	}
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("unparseable bus event")
		return
	}
	gameID, err := uuid.Parse(envelope.GameID)
	if err != nil {
		log.Error().Err(err).Str("game_id", envelope.GameID).Msg("invalid game id on bus event")
		return
	}

	switch envelope.EventType {
	case events.TypeGameStarted:
		s.watchdog.OnGameStarted(ctx, gameID)
	case events.TypeTurnUpdated:
		s.watchdog.OnTurnAdvanced(ctx, gameID)
	case events.TypeGameFinished:
		s.watchdog.OnGameFinished(gameID)
	}
}
