package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-recipes-go/internal/app"
	"family-recipes-go/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

const usage = `usage: family-recipes [serve|migrate]

  serve    apply pending migrations and start the HTTP API (default)
  migrate  apply pending migrations and exit`

func main() {
	log := logger.NewFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var exitCode int
	switch command {
	case "serve":
		exitCode = serve(ctx, log)
	case "migrate":
		if err := app.Migrate(log); err != nil {
			log.Critical("migrate: failed", "err", err)
			exitCode = 1
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		exitCode = 2
	}

	if exitCode != 0 {
		stop()
		os.Exit(exitCode)
	}
}

func serve(ctx context.Context, log logger.Logger) int {
	log.Info("app: starting")

	application, err := app.New(ctx, log)
	if err != nil {
		log.Critical("app: init failed", "err", err)
		return 1
	}

	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		exitCode = 1
	}
	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		exitCode = 1
	}

	if exitCode == 0 {
		log.Info("app: stopped")
	}
	return exitCode
}
