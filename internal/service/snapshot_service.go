// Package service orchestrates fetch cycles: collect quotes, run the
// engine, cache the resulting snapshot for the serving layer.
package service

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
)

const snapshotKey = "latest"

// Snapshot is one fetch cycle's complete engine output. Games is empty
// (never nil) when the upstream returned no events, which the serving
// layer renders as "no data" distinctly from games without qualified
// signals.
type Snapshot struct {
	Games          []*models.Game `json:"games"`
	FetchedAt      time.Time      `json:"fetched_at"`
	QuotaRemaining int            `json:"quota_remaining,omitempty"`
}

// QuoteCollector is the upstream collaborator feeding the engine.
type QuoteCollector interface {
	Collect(ctx context.Context) ([]engine.GameSnapshot, error)
}

// SignalStore persists snapshot history; optional.
type SignalStore interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}

// SnapshotService owns the refresh cycle and the snapshot cache. Each
// refresh is an independent computation over that cycle's quotes; no
// probability state survives between cycles.
type SnapshotService struct {
	collector QuoteCollector
	engine    *engine.Engine
	store     SignalStore
	cache     *cache.Cache
	ttl       time.Duration
	log       *logger.SignalLogger

	mu        sync.RWMutex
	lastError error
	listeners []func(*Snapshot)
}

// NewSnapshotService creates the snapshot service. store may be nil
// when history persistence is disabled.
func NewSnapshotService(collector QuoteCollector, eng *engine.Engine, store SignalStore, ttl time.Duration, baseLogger *logrus.Logger) *SnapshotService {
	return &SnapshotService{
		collector: collector,
		engine:    eng,
		store:     store,
		cache:     cache.New(ttl, ttl*2),
		ttl:       ttl,
		log:       logger.NewSignalLogger(baseLogger),
	}
}

// Subscribe registers a callback invoked with every fresh snapshot.
// Used by the websocket broadcaster. Must be called before Refresh.
func (s *SnapshotService) Subscribe(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh runs one full cycle: collect, aggregate, cache, persist,
// notify. Upstream failure leaves the previous snapshot in place until
// its TTL runs out.
func (s *SnapshotService) Refresh(ctx context.Context) (*Snapshot, error) {
	raw, err := s.collector.Collect(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err
		s.mu.Unlock()
		return nil, err
	}

	started := time.Now()
	games, drops := s.engine.EvaluateGamesWithStats(raw, started)
	metrics.AggregationDuration.Observe(time.Since(started).Seconds())

	snap := &Snapshot{
		Games:     games,
		FetchedAt: started.UTC(),
	}
	if qr, ok := s.collector.(interface{ QuotaRemaining() int }); ok {
		snap.QuotaRemaining = qr.QuotaRemaining()
	}

	s.recordPass(len(raw), snap)
	s.log.LogDroppedQuotes(drops.Malformed, drops.Degenerate, drops.ThinSample)

	s.cache.Set(snapshotKey, snap, s.ttl)
	s.mu.Lock()
	s.lastError = nil
	listeners := s.listeners
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			s.log.WithError(err).Warn("Failed to persist snapshot history")
		}
	}

	for _, fn := range listeners {
		fn(snap)
	}

	return snap, nil
}

// Latest returns the cached snapshot, or nil when none is fresh.
func (s *SnapshotService) Latest() *Snapshot {
	if v, found := s.cache.Get(snapshotKey); found {
		if snap, ok := v.(*Snapshot); ok {
			return snap
		}
	}
	return nil
}

// LastError returns the most recent refresh failure, or nil after a
// successful refresh. Used to distinguish "no data available" from "no
// qualified signals".
func (s *SnapshotService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *SnapshotService) recordPass(gamesIn int, snap *Snapshot) {
	plays, leans, passes := 0, 0, 0
	for _, game := range snap.Games {
		for _, sig := range game.Markets {
			switch sig.Decision {
			case models.DecisionPlay:
				plays++
			case models.DecisionLean:
				leans++
			default:
				passes++
			}
			metrics.RecordMarketSignal(string(sig.Decision))
			if best := sig.Best(); best != nil {
				s.log.LogMarketDecision(game.ID, string(sig.MarketType), string(sig.Decision),
					deref(best.Lean), deref(best.EV), sig.Stability, sig.ConfidenceScore,
					best.BestBook, best.BestOdds)
			}
		}
	}
	metrics.GamesInSnapshot.Set(float64(len(snap.Games)))
	metrics.SnapshotAgeSeconds.Set(0)
	s.log.LogAggregationPass(gamesIn, len(snap.Games), gamesIn-len(snap.Games), plays, leans, passes, float64(time.Since(snap.FetchedAt).Milliseconds()))
}

// ObserveSnapshotAge refreshes the snapshot age gauge from the cached
// snapshot. Called by the serving layer before each metrics scrape so
// the gauge does not stay frozen at the last refresh.
func (s *SnapshotService) ObserveSnapshotAge() {
	if snap := s.Latest(); snap != nil {
		metrics.SnapshotAgeSeconds.Set(time.Since(snap.FetchedAt).Seconds())
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
