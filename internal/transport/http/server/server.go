package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/invest_assistant/config"
	customMW "github.com/KotFed0t/invest_assistant/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Controller mounts its routes on the service router.
type Controller interface {
	Register(r chi.Router)
}

type Server struct {
	name   string
	server *http.Server
}

// NewRouter returns the router shared by every service, with logging, recovery and permissive CORS.
func NewRouter(cfg *config.Config, controllers ...Controller) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestID)
	r.Use(customMW.Logger)
	r.Use(chimw.Timeout(cfg.HTTP.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	for _, c := range controllers {
		c.Register(r)
	}

	return r
}

func New(cfg *config.Config, name string, port int, handler http.Handler) *Server {
	return &Server{
		name: name,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, port),
			Handler:      handler,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
}

func (s *Server) Start() {
	go func() {
		slog.Info("http server started", slog.String("service", s.name), slog.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("service", s.name), slog.String("err", err.Error()))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	slog.Info("start stopping http server", slog.String("service", s.name))
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", slog.String("service", s.name), slog.String("err", err.Error()))
	}
	slog.Info("http server stopped", slog.String("service", s.name))
}
