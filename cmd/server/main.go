package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zenvue/adcontrol-hub/internal/catalog"
	"github.com/zenvue/adcontrol-hub/internal/config"
	"github.com/zenvue/adcontrol-hub/internal/identity"
	"github.com/zenvue/adcontrol-hub/internal/notifier"
	"github.com/zenvue/adcontrol-hub/internal/recommend"
	"github.com/zenvue/adcontrol-hub/internal/storage"
	"github.com/zenvue/adcontrol-hub/internal/store"
)

func main() {
	slog.Info("Starting AdControl Hub server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	users, err := storage.New(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Critical error initializing Firestore client", "error", err)
		os.Exit(1)
	}
	defer users.Close()

	cat := catalog.Load()
	feed := notifier.NewFeed(cfg.ToastBufferSize)
	ident := identity.New(cfg.FirebaseAPIKey, cfg.IdentityStatePath)
	st := store.New(ident, users, cat, feed, cfg.SeedCount)

	// Identity or seeding failure is non-fatal: the server stays up and
	// mutation endpoints answer 503 until a restart succeeds.
	initCtx, cancelInit := context.WithTimeout(ctx, 30*time.Second)
	if err := st.Init(initCtx); err != nil {
		slog.Error("Store initialization failed, mutations disabled", "error", err)
	}
	cancelInit()

	recommender, err := recommend.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Warn("Failed to create recommendation client, recommendations disabled", "error", err)
	}

	srv := &Server{
		store:       st,
		catalog:     cat,
		recommender: recommender,
		feed:        feed,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		st.Teardown()
		feed.Close()
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}
