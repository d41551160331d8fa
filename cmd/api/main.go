package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/footyguess/footyguess/internal/content"
	"github.com/footyguess/footyguess/internal/dbconfig"
	"github.com/footyguess/footyguess/internal/game"
	"github.com/footyguess/footyguess/internal/game/outbox"
	"github.com/footyguess/footyguess/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	port := getEnv("API_PORT", "8080")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")
	internalSecret := getEnv("INTERNAL_API_SECRET", "")
	if internalSecret == "" {
		log.Warn().Msg("INTERNAL_API_SECRET not set, disconnect hook disabled")
	}

	cfg, err := loadConfig(getEnv("APP_CONFIG", "config.yaml"))
	if err != nil {
		log.Warn().Err(err).Msg("could not load config file, using defaults")
		cfg = defaultConfig()
	}

	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("pgx", dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	catalog, err := content.Load(cfg.Content.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Content.CatalogPath).Msg("failed to load subject catalog")
	}

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", natsURL).
		Str("port", port).
		Bool("watchdog", cfg.Watchdog.Enabled).
		Msg("starting game api")

	repo := game.NewRepository(db)
	app := game.NewApp(repo, catalog)
	service := game.NewService(app, internalSecret)

	mux := http.NewServeMux()
	service.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "*")},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "X-User-Id", "X-Username", "X-Internal-Secret"},
		AllowCredentials: true,
	}).Handler(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox drain: LISTEN/NOTIFY fast path with a fallback sweep, publishing
	// to JetStream for the relay.
	publisherCfg := outbox.DefaultJetStreamConfig()
	publisherCfg.URL = natsURL
	publisher, err := outbox.NewJetStreamPublisher(publisherCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()

	listenerCfg := outbox.DefaultListenerConfig()
	listenerCfg.DatabaseURL = dbCfg.DSN()
	listener, err := outbox.NewListener(outbox.NewRepository(db), publisher, listenerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create outbox listener")
	}
	go func() {
		if err := listener.Start(ctx); err != nil {
			log.Error().Err(err).Msg("outbox listener failed")
		}
	}()

	// Optional server-side backstop for stalled turns. Off by default: turn
	// timing is client-driven.
	if cfg.Watchdog.Enabled {
		wdCfg := scheduler.DefaultConfig()
		wdCfg.Grace = time.Duration(cfg.Watchdog.GraceSeconds) * time.Second
		watchdog := scheduler.NewWatchdog(app, clockwork.NewRealClock(), wdCfg)
		subscriber, err := scheduler.NewSubscriber(watchdog, natsURL, "game.events.>")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create watchdog subscriber")
		}
		go watchdog.Start(ctx)
		go func() {
			if err := subscriber.Start(ctx); err != nil {
				log.Error().Err(err).Msg("watchdog subscriber failed")
			}
		}()
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()
	time.Sleep(1 * time.Second)

	log.Info().Msg("game api shutdown complete")
}
