package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/feedbackdash/internal/api"
	"github.com/dgallion1/feedbackdash/internal/config"
	"github.com/dgallion1/feedbackdash/internal/dashboard"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	layout, err := survey.LoadLayout(cfg.LayoutFile)
	if err != nil {
		log.Error("invalid layout", "error", err)
		os.Exit(1)
	}

	src, closeSource, err := cfg.OpenSource(context.Background(), log)
	if err != nil {
		log.Error("failed to open response source", "source", cfg.Source, "error", err)
		os.Exit(1)
	}

	svc := dashboard.NewService(src, dashboard.Options{
		Layout: layout,
		Report: cfg.ReportOptions(),
	}, log)

	// Initialize HTTP server.
	srv := api.NewServer(svc, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.DashAPIKey == "" {
		log.Warn("DASH_API_KEY is empty; the dashboard is not authenticated")
	}
	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting feedbackdash", "port", cfg.Port, "source", cfg.Source)
	if err := serve(ctx, httpServer, ln, closeSource, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// serve runs srv on ln until ctx is done. It returns only after the server
// has shut down and closeFn has released the response source.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, closeFn func() error, log *slog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown incomplete", "error", err)
		}
		if err := closeFn(); err != nil {
			log.Warn("failed to close response source", "error", err)
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
