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

	"github.com/courseforge/courseforge/internal/course"
	"github.com/courseforge/courseforge/internal/export"
	"github.com/courseforge/courseforge/internal/platform/cache"
	"github.com/courseforge/courseforge/internal/platform/config"
	"github.com/courseforge/courseforge/internal/platform/database"
	"github.com/courseforge/courseforge/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	limits := course.DefaultLimits()
	if cfg.LimitsPath != "" {
		limits, err = course.LoadLimits(cfg.LimitsPath)
		if err != nil {
			slog.Error("failed to load limits", "path", cfg.LimitsPath, "error", err)
			os.Exit(1)
		}
		slog.Info("limits loaded", "path", cfg.LimitsPath)
	}

	var store course.Store = course.NewMemoryStore()
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store, err = course.NewPostgresStore(db.Pool)
		if err != nil {
			slog.Error("failed to create course store", "error", err)
			os.Exit(1)
		}
		slog.Info("using postgres course store")
	} else {
		slog.Info("using in-memory course store")
	}

	var exportCache *cache.Cache
	if cfg.Cache.URL != "" {
		exportCache, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer exportCache.Close()
	}

	feed := export.NewFeed()
	svc := export.NewService(store, limits, exportCache, feed)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.New(store, svc, feed).Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
