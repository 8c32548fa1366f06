// Package main is the entry point for the Inventra API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventra/internal/config"
	"inventra/internal/domain/documents"
	"inventra/internal/domain/linking"
	"inventra/internal/domain/sequence"
	"inventra/internal/infrastructure/backend"
	v1 "inventra/internal/infrastructure/http/v1"
	"inventra/internal/infrastructure/http/v1/handlers"
	"inventra/internal/infrastructure/storage"
	"inventra/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting inventra server", "env", cfg.Env, "store", cfg.Store.Driver)

	// --- Baseline store ---
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalw("failed to open baseline store", "error", err)
	}
	defer store.Close()

	// --- Backend client ---
	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		Token:   cfg.Backend.Token,
	})
	if err != nil {
		log.Fatalw("failed to create backend client", "error", err)
	}

	// --- Domain ---
	sequences := sequence.NewRegistry(client, store.Store, sequence.WithClock(cfg.Clock()))
	sequences.LoadAll(logger.WithLogger(ctx, log.WithComponent("sequence")))

	linker := linking.NewService(client)
	docs := documents.NewService(documents.NewFormRegistry(), sequences, client, linker)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:    log.WithComponent("http"),
		Sequences: sequences,
		Documents: docs,
		HealthChecks: map[string]handlers.CheckFunc{
			"store":   store.Ping,
			"backend": client.Ping,
		},
		CORSAllowedOrigins: cfg.AllowedOrigins(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "backend", cfg.Backend.URL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
