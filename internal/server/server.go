// Package server provides the thin HTTP serving layer over cached
// engine snapshots. All probability work happens upstream; handlers
// only shape and serve the latest snapshot.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/service"
)

// DatabasePinger defines the interface for checking database
// connectivity in the readiness probe.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// SignalHistory serves persisted decision history for a game's market.
// Nil when the history store is disabled.
type SignalHistory interface {
	HistoryForGame(ctx context.Context, gameID string, marketType models.MarketType, limit int) ([]repository.SignalRow, error)
}

// Server serves the games API, health probes, metrics and the
// websocket feed.
type Server struct {
	cfg      config.ServerConfig
	snapshot *service.SnapshotService
	db       DatabasePinger
	history  SignalHistory
	hub      *Hub
	logger   *logrus.Logger
	httpSrv  *http.Server
}

// New creates the HTTP server. db and history may be nil when the
// history store is disabled; the readiness probe then skips the
// database check and the history endpoint reports not found.
func New(cfg config.ServerConfig, metricsCfg config.MetricsConfig, snapshot *service.SnapshotService, db DatabasePinger, history SignalHistory, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		snapshot: snapshot,
		db:       db,
		history:  history,
		logger:   logger,
	}

	if cfg.EnableWS {
		s.hub = NewHub(logger)
		snapshot.Subscribe(s.hub.Broadcast)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if metricsCfg.Enabled {
		metricsHandler := metrics.Handler()
		r.Get(metricsCfg.Path, func(w http.ResponseWriter, req *http.Request) {
			s.snapshot.ObserveSnapshotAge()
			metricsHandler.ServeHTTP(w, req)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/games", s.handleGames)
		r.Get("/games/{gameID}/props", s.handleProps)
		r.Get("/games/{gameID}/history", s.handleHistory)
	})

	if cfg.EnableWS {
		r.Get("/ws", s.hub.HandleSubscribe)
	}

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the assembled route tree.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start runs the HTTP server until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpSrv.Addr).Info("HTTP server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and websocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpSrv.Shutdown(ctx)
}
