// Command ferrodb-server runs the in-memory, Redis-protocol-compatible
// key-value store described in spec §6: it parses flags via cobra, builds
// a zap logger, recovers any persisted state, and serves connections until
// a signal requests shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ferrodb/ferrodb/internal/config"
	"github.com/ferrodb/ferrodb/internal/logging"
	"github.com/ferrodb/ferrodb/internal/server"
)

func main() {
	root := config.NewRootCommand(run)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log, err := logging.New(logging.Format(cfg.LogFormat), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	// server.New binds the listener and loads persisted state, so any error
	// here — including "address already in use" — is a startup failure
	// (§6 exit code 1). Errors from srv.Run, below, are post-startup I/O
	// failures (exit code 2).
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Error("fatal server error", zap.Error(err))
		os.Exit(2)
	}
	return nil
}
