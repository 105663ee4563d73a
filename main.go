package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"email-designer/api"
	"email-designer/composer"
	"email-designer/config"
	"email-designer/design"
	"email-designer/notify"
	"email-designer/param"
	"email-designer/session"
	"email-designer/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(cfg.Log.Handler())
	slog.SetDefault(logger)

	store, err := storage.Open(context.Background(), cfg.Storage.Store())
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	notes := notify.NewQueue(cfg.Notify.TTL)
	bridge := composer.NewBridge(logger, cfg.Composer.RequestTimeout)
	params := param.NewStore(cfg.Params.Seeds()...)
	ctrl := session.NewController(bridge, design.NewManager(store), params, notes, logger)

	bridge.OnKey(ctrl.Keymap().Combos(), func(ev composer.KeyEvent) {
		ctrl.HandleKey(context.Background(), ev)
	})
	notes.Subscribe(bridge.PushNotification)

	router := api.RegisterRoutes(ctrl, notes, bridge, staticFiles, api.Options{
		Logger:          logger,
		CORSAllowOrigin: cfg.Server.CORSAllowOrigin,
		JWTSecret:       cfg.Auth.JWTSecret,
		JWTIssuer:       cfg.Auth.JWTIssuer,
	})

	// No WriteTimeout: composer requests wait on the page, bounded by
	// composer.request_timeout when one is configured.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("email-designer listening",
			"port", cfg.Server.Port,
			"storage", cfg.Storage.Backend,
			"auth", cfg.Auth.JWTSecret != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
