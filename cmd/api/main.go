package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopmonkeyus/go-common/logger"
	"golang.org/x/sync/errgroup"

	"er_diagram/internal/config"
	"er_diagram/internal/server"
)

func main() {
	log := logger.NewConsoleLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration: %s", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start server: %s", err)
		os.Exit(1)
	}
	defer srv.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening on %s", srv.HTTP.Addr)
		if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.HTTP.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error: %s", err)
		srv.Close()
		os.Exit(1)
	}
	log.Info("server exiting")
}
