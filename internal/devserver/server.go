package devserver

import (
	"context"
	"net/http"
	"time"

	"github.com/finwallet/finwallet/internal/config"
	"github.com/finwallet/finwallet/internal/logger"
)

// Server wraps the dev sync API in an http.Server with graceful shutdown.
type Server struct {
	server *http.Server
	logger *logger.Logger
}

func NewServer(handler *Handler, cfg config.Server, logger *logger.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handler.Init(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("dev sync server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("dev sync server shutdown")
	}
}
