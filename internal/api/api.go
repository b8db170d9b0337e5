package api

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/curaious/devboard/internal/api/authenticator"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/services"
)

// Server is the HTTP server in front of the services
type Server struct {
	srv      *fasthttp.Server
	addr     string
	conf     *config.Config
	services *services.Services
	auth     *authenticator.Authenticator
}

// New creates a server. Migrations and store connections are the caller's
// responsibility.
func New(conf *config.Config, svc *services.Services, auth *authenticator.Authenticator) *Server {
	s := &Server{
		srv: &fasthttp.Server{
			Name:         "devboard",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		addr:     conf.SERVER_ADDR,
		conf:     conf,
		services: svc,
		auth:     auth,
	}

	s.srv.Handler = s.initNewRoutes()

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.srv.Handler
}

// Start the rest server and block until SIGINT or SIGTERM.
func (s *Server) Start() error {
	slog.Info("Starting REST server...", slog.String("addr", s.addr))
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe(s.addr)
	}()

	// Listen for OS interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case err := <-errCh:
		return err
	case <-c:
		slog.Info("Received interrupt...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	return s.shutdown(ctx)
}

// shutdown waits for in-flight requests until ctx expires
func (s *Server) shutdown(ctx context.Context) error {
	slog.Info("Gracefully shutting down REST server...")
	if err := s.srv.ShutdownWithContext(ctx); err != nil {
		slog.Error("Failed to shutdown the server", slog.Any("error", err))
		return err
	}
	slog.Info("REST server shutdown!")
	return nil
}
