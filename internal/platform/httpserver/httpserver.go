package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server wraps http.Server with the timeouts every forum listener uses.
type Server struct {
	HTTP *http.Server
	name string
}

type Options struct {
	Addr        string
	ServiceName string
	Router      chi.Router
}

// New builds a server. A nil Router gets the platform routes only.
func New(opts Options) *Server {
	if opts.Router == nil {
		r := chi.NewRouter()
		SetupRouter(r)
		opts.Router = r
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           opts.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    64 << 10,
	}
	return &Server{HTTP: srv, name: opts.ServiceName}
}

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start(log *zap.Logger) error {
	lis, err := net.Listen("tcp", s.HTTP.Addr)
	if err != nil {
		return err
	}
	return s.Serve(lis, log)
}

// Serve blocks serving on lis. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Serve(lis net.Listener, log *zap.Logger) error {
	log.Info("http server starting", zap.String("addr", lis.Addr().String()), zap.String("service", s.name))
	return s.HTTP.Serve(lis)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
