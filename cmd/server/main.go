package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"emirps/internal/api"
	"emirps/internal/config"
	"emirps/internal/emirp"
	"emirps/internal/primes"
)

func main() {
	configPath := flag.String("config", "", "Optional config file (yaml, json or toml)")
	warm := flag.Bool("warm", false, "Grow the prime cache for the configured limit before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize database
	logger.Info("connecting to database", "path", cfg.DBPath)
	db, err := api.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := api.CreateSchema(db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	cache := primes.New(primes.WithWorkers(cfg.Workers))
	finder := emirp.New(cache, emirp.WithWorkers(cfg.Workers), emirp.WithProgress(func(msg string) {
		logger.Debug(msg)
	}))

	if *warm {
		start := time.Now()
		if err := cache.EnsureCoverage(min(cfg.Limit, cfg.MaxLimit)); err != nil {
			log.Fatalf("Failed to warm prime cache: %v", err)
		}
		logger.Info("prime cache warmed", "primes", cache.Len(), "ceiling", cache.Ceiling(), "elapsed", time.Since(start))
	}

	server, err := api.NewServer(finder, db, api.Options{
		CacheSize: cfg.CacheSize,
		MaxLimit:  cfg.MaxLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	h := api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseRouter:       mux,
		ErrorHandlerFunc: api.JSONErrorHandler,
	})

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "max_limit", cfg.MaxLimit)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
