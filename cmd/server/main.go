package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/stake-lattice/api/internal/config"
	"github.com/freeeve/stake-lattice/api/internal/handler"
	"github.com/freeeve/stake-lattice/api/internal/logger"
	"github.com/freeeve/stake-lattice/api/internal/middleware"
	"github.com/freeeve/stake-lattice/api/internal/repository"
	"github.com/freeeve/stake-lattice/api/internal/repository/memory"
	redisrepo "github.com/freeeve/stake-lattice/api/internal/repository/redis"
	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dev: cfg.Dev})
	log.Info().Str("port", cfg.Port).Bool("cache", cfg.RedisURL != "").Msg("Config loaded")

	// Session defaults
	defaults := scenario.Default()
	defaults.AxisLimit = cfg.AxisLimit
	defaults.AllowUnilateralIncrement = cfg.AllowUnilateralIncrement
	if cfg.ScenarioFile != "" {
		sc, err := scenario.Load(cfg.ScenarioFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.ScenarioFile).Msg("Scenario load failed")
		}
		defaults = sc
	}
	if err := defaults.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid session defaults")
	}

	// Analysis cache
	var cache repository.AnalysisCache = repository.NoopCache{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		cache = redisClient
	}

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	analyzer := service.NewCachingAnalyzer(cache, cfg.CacheTTL)
	svc := service.NewAnalysisService(memory.NewSessionStore(), analyzer, wsHub, defaults)
	if _, err := svc.Open(context.Background(), service.DefaultSessionID); err != nil {
		log.Fatal().Err(err).Msg("Session setup failed")
	}

	// Handlers
	sessionHandler := handler.NewSessionHandler(svc, service.DefaultSessionID)
	latticeHandler := handler.NewLatticeHandler(svc, defaults.AxisLimit)
	wsHandler := handler.NewWSHandler(wsHub, svc)

	// Router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Health)

	mux.HandleFunc("GET /api/v1/lattice", latticeHandler.GetLattice)
	mux.HandleFunc("POST /api/v1/evaluate", latticeHandler.Evaluate)

	mux.HandleFunc("GET /api/v1/session", sessionHandler.GetSession)
	mux.HandleFunc("GET /api/v1/session/scenario", sessionHandler.GetScenario)
	mux.HandleFunc("PATCH /api/v1/session/settings", sessionHandler.UpdateSettings)
	mux.HandleFunc("POST /api/v1/session/initialize", sessionHandler.Initialize)
	mux.HandleFunc("PATCH /api/v1/session/voter", sessionHandler.EditVoter)
	mux.HandleFunc("PATCH /api/v1/session/entity", sessionHandler.EditEntity)
	mux.HandleFunc("POST /api/v1/session/randomize/{kind}", sessionHandler.Randomize)
	mux.HandleFunc("POST /api/v1/session/confirm", sessionHandler.Confirm)
	mux.HandleFunc("POST /api/v1/session/discard", sessionHandler.Discard)

	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
