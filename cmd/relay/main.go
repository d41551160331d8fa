package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/netutil"

	"github.com/footyguess/footyguess/internal/relay"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	port := getEnv("RELAY_PORT", "8081")
	natsURL := getEnv("NATS_URL", "nats://localhost:4222")
	apiURL := getEnv("API_URL", "http://localhost:8080")
	internalSecret := getEnv("INTERNAL_API_SECRET", "")
	maxConns := getEnvAsInt("RELAY_MAX_CONNS", 4096)

	log.Info().
		Str("nats_url", natsURL).
		Str("api_url", apiURL).
		Str("port", port).
		Int("max_conns", maxConns).
		Msg("starting game relay")

	hub := relay.NewHub()
	store := relay.NewStoreClient(apiURL, internalSecret)
	server := relay.NewServer(hub, store, relay.DefaultConfig())

	consumerCfg := relay.DefaultConsumerConfig()
	consumerCfg.URL = natsURL
	consumer, err := relay.NewEventConsumer(hub, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event consumer")
	}
	defer consumer.Stop()

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{getEnv("CORS_ORIGIN", "*")},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	httpServer := &http.Server{
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}
	// Cap concurrent sockets so a connection flood degrades into queueing
	// instead of exhausting file descriptors.
	ln = netutil.LimitListener(ln, maxConns)

	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server starting")
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()
	time.Sleep(1 * time.Second)

	log.Info().Msg("game relay shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
