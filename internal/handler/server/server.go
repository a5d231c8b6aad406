package server

import (
	"context"
	"net/http"

	"github.com/bagdasarian/pr-insight/internal/handler"
	"go.uber.org/zap"
)

type Server struct {
	handler *handler.Handler
	server  *http.Server
	log     *zap.SugaredLogger
}

func NewServer(h *handler.Handler, addr string, log *zap.SugaredLogger) *Server {
	mux := http.NewServeMux()
	SetupRoutes(mux, h)

	return &Server{
		handler: h,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		log: log.Named("http.server"),
	}
}

func (s *Server) Start() error {
	s.log.Infow("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
