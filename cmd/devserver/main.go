package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/finwallet/finwallet/internal/config"
	"github.com/finwallet/finwallet/internal/devserver"
	"github.com/finwallet/finwallet/internal/logger"
)

func main() {
	log := logger.NewLogger("finwallet-devserver")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	state := devserver.NewState()
	state.Seed()

	handler := devserver.NewHandler(state, cfg.Server.PageSize, log)
	srv := devserver.NewServer(handler, cfg.Server, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("dev server error")
	}
}
