package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/repository"
)

// gamesResponse is the envelope for the games listing. Games is never
// null; an empty slice means no game currently clears the decision
// gate, which is distinct from having no data at all.
type gamesResponse struct {
	Games          []*models.Game `json:"games"`
	FetchedAt      time.Time      `json:"fetched_at"`
	QuotaRemaining int            `json:"quota_remaining,omitempty"`
}

type propsResponse struct {
	GameID    string              `json:"game_id"`
	Props     []models.PropSignal `json:"props"`
	FetchedAt time.Time           `json:"fetched_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Latest()
	if snap == nil {
		s.renderNoData(w)
		return
	}

	games := snap.Games
	if games == nil {
		games = []*models.Game{}
	}
	s.renderJSON(w, http.StatusOK, gamesResponse{
		Games:          games,
		FetchedAt:      snap.FetchedAt,
		QuotaRemaining: snap.QuotaRemaining,
	})
}

func (s *Server) handleProps(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Latest()
	if snap == nil {
		s.renderNoData(w)
		return
	}

	gameID := chi.URLParam(r, "gameID")
	for _, g := range snap.Games {
		if g.ID != gameID {
			continue
		}
		props := g.PlayerProps
		if props == nil {
			props = []models.PropSignal{}
		}
		s.renderJSON(w, http.StatusOK, propsResponse{
			GameID:    g.ID,
			Props:     props,
			FetchedAt: snap.FetchedAt,
		})
		return
	}
	s.renderJSON(w, http.StatusNotFound, errorResponse{Error: "game not found"})
}

// handleHistory serves the persisted decision history for one game's
// market. Only available when the history store is enabled.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.renderJSON(w, http.StatusNotFound, errorResponse{Error: "signal history is not enabled"})
		return
	}

	gameID := chi.URLParam(r, "gameID")
	marketType := models.MarketType(r.URL.Query().Get("market"))
	if marketType == "" {
		marketType = models.MarketMoneyline
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := s.history.HistoryForGame(r.Context(), gameID, marketType, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to query signal history")
		s.renderJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to query signal history"})
		return
	}
	if rows == nil {
		rows = []repository.SignalRow{}
	}
	s.renderJSON(w, http.StatusOK, map[string]any{
		"game_id":     gameID,
		"market_type": marketType,
		"history":     rows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once at least one snapshot has been
// served and, when a history store is configured, the database
// answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.snapshot.Latest() == nil {
		s.renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no snapshot yet"})
		return
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.renderJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
			return
		}
	}
	s.renderJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// renderNoData distinguishes "upstream has never produced a snapshot"
// from an empty-but-valid snapshot.
func (s *Server) renderNoData(w http.ResponseWriter) {
	msg := "no snapshot available"
	if err := s.snapshot.LastError(); err != nil {
		msg = err.Error()
	}
	s.renderJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msg})
}

func (s *Server) renderJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithFields(logrus.Fields{"error": err}).Error("Failed to encode response")
	}
}
