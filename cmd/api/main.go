package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"honeypot-lab/internal/api"
	"honeypot-lab/internal/api/handlers"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/infrastructure/database"
	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/internal/llm"
	"honeypot-lab/internal/session"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting honeypot")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize optional infrastructure
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}
	defer func() {
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var db *database.PostgresDB
	var journal services.DeliveryJournal
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without delivery journal")
			db = nil
		} else {
			deliveries := repository.NewDeliveryRepository(db.Pool())
			if err := deliveries.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to prepare delivery journal schema")
			} else {
				journal = deliveries
			}
		}
	}
	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	// Initialize streaming infrastructure
	var events services.EventPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err := streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
		} else {
			defer natsPublisher.Close()
			events = natsPublisher
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	// Initialize services
	store := session.New(cfg.Session.Timeout, log)
	chatClient := llm.NewChatClient(cfg.LLM, log)
	extractor := services.NewEntityExtractor(log)
	scorer := services.NewScamScorer(cfg.Detection, chatClient, log)
	policy := services.NewCallbackPolicy(cfg.Session.MaxTurns)
	reporter := services.NewReporter(cfg.Callback, journal, events, log)
	defer reporter.Stop()

	engine := services.NewEngine(services.EngineDeps{
		Sessions:  store,
		Extractor: extractor,
		Scorer:    scorer,
		Policy:    policy,
		Generator: chatClient,
		Sink:      reporter,
		Events:    events,
		MaxTurns:  cfg.Session.MaxTurns,
		Logger:    log,
	})

	// Initialize handlers
	h := handlers.NewHandlers(handlers.Dependencies{
		Config:   *cfg,
		Engine:   engine,
		Sessions: store,
		Cache:    redisCache,
		DB:       db,
		Logger:   log,
	})

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}
