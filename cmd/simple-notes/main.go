package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/simple-notes-saas/internal/config"
	httpserver "github.com/tendant/simple-notes-saas/internal/http"
	"github.com/tendant/simple-notes-saas/pkg/auth"
	"github.com/tendant/simple-notes-saas/pkg/notes"
	"github.com/tendant/simple-notes-saas/pkg/store"
	"github.com/tendant/simple-notes-saas/pkg/tenant"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Seed users share one placeholder credential, stored hashed.
	seedHash, err := auth.HashPassword(store.SeedPassword)
	if err != nil {
		logger.Error("failed to hash seed password", "error", err)
		os.Exit(1)
	}

	// Select the store: in-memory unless a database host is configured.
	var st store.Store
	if cfg.UseMemoryStore() {
		st = store.NewMemoryStore(seedHash)
		logger.Info("using in-memory store (volatile, single process)")
	} else {
		pg, err := store.NewPostgresStore(store.PostgresConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := pg.EnsureSeed(context.Background(), seedHash); err != nil {
			logger.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
		st = pg
		logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)
	}
	defer st.Close()

	// Initialize services
	tokenService := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	})
	loginService := auth.NewLoginService(st, tokenService)
	notesService := notes.NewService(st)
	tenantsService := tenant.NewService(st)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:                 logger,
		TokenService:           tokenService,
		LoginService:           loginService,
		NotesService:           notesService,
		TenantsService:         tenantsService,
		LoginRequestsPerMinute: cfg.LoginRequestsPerMinute,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
