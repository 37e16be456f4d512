package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Traijan1/emote-counter/config"
	"github.com/Traijan1/emote-counter/internal/bot"
	"github.com/Traijan1/emote-counter/internal/gateway"
	"github.com/Traijan1/emote-counter/internal/middleware"
	"github.com/Traijan1/emote-counter/internal/services/command"
	"github.com/Traijan1/emote-counter/internal/services/leaderboard"
	"github.com/Traijan1/emote-counter/internal/services/usage"
	"github.com/Traijan1/emote-counter/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgresPool(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := database.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Usage tracking
	store := usage.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure usage schema")
	}

	filter, err := usage.NewFilter(cfg.Tracker.EmotePattern)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compile emote pattern")
	}

	ingester := usage.NewIngester(store, filter)

	// Platform client and leaderboard
	client := gateway.NewClient(cfg.Bot.APIBaseURL, cfg.Bot.Token)
	view := leaderboard.NewService(store, cfg.Tracker.PageSize)
	pager := leaderboard.NewPager(view, client)
	dispatcher := command.NewDispatcher(store, view)

	// Gateway session
	handler := bot.NewHandler(ingester, pager, dispatcher, client)
	session := gateway.NewSession(cfg.Bot.GatewayURL, cfg.Bot.Token, handler)
	go func() {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Gateway session stopped")
		}
	}()

	// Register slash commands
	if cfg.Bot.ApplicationID != "" {
		if err := client.RegisterCommands(ctx, cfg.Bot.ApplicationID, command.Definitions()); err != nil {
			log.Error().Err(err).Msg("Failed to register slash commands")
		}
	}

	// HTTP read API
	leaderboardHandler := leaderboard.NewHandler(view, store, redisClient, cfg.Tracker.CacheTTL)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RedirectSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Origin"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
		r.Use(middleware.RateLimitMiddleware(redisClient, cfg.Server.RateLimitRPS))

		r.Mount("/", leaderboardHandler.Routes())
	})

	server := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting read API")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Stopped")
}
