package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
)

type stubCollector struct {
	snapshots []engine.GameSnapshot
	err       error
	quota     int
	calls     int
}

func (c *stubCollector) Collect(ctx context.Context) ([]engine.GameSnapshot, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.snapshots, nil
}

func (c *stubCollector) QuotaRemaining() int { return c.quota }

type stubStore struct {
	saved []*Snapshot
	err   error
}

func (s *stubStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snap)
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testSnapshots() []engine.GameSnapshot {
	return []engine.GameSnapshot{
		{
			ID:         "g1",
			HomeTeam:   "Home",
			AwayTeam:   "Away",
			CommenceAt: time.Now().Add(2 * time.Hour),
			Quotes: []models.Quote{
				{Book: "fanduel", MarketType: models.MarketMoneyline, Selection: models.SelectionKey{Side: "Home"}, AmericanOdds: -140},
				{Book: "fanduel", MarketType: models.MarketMoneyline, Selection: models.SelectionKey{Side: "Away"}, AmericanOdds: 120},
				{Book: "draftkings", MarketType: models.MarketMoneyline, Selection: models.SelectionKey{Side: "Home"}, AmericanOdds: -150},
				{Book: "draftkings", MarketType: models.MarketMoneyline, Selection: models.SelectionKey{Side: "Away"}, AmericanOdds: 130},
			},
		},
	}
}

func newTestService(collector QuoteCollector, store SignalStore, ttl time.Duration) *SnapshotService {
	eng := engine.New(engine.DefaultParams(), nil, testLogger())
	return NewSnapshotService(collector, eng, store, ttl, testLogger())
}

func TestRefreshCachesSnapshot(t *testing.T) {
	collector := &stubCollector{snapshots: testSnapshots(), quota: 480}
	svc := newTestService(collector, nil, time.Minute)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Games, 1)
	assert.Equal(t, 480, snap.QuotaRemaining)
	assert.NotNil(t, snap.Games[0].Markets[models.MarketMoneyline])

	assert.Same(t, snap, svc.Latest())
	assert.NoError(t, svc.LastError())
}

func TestRefreshEmptyUpstream(t *testing.T) {
	collector := &stubCollector{}
	svc := newTestService(collector, nil, time.Minute)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	// No events is a valid snapshot with zero games, not an error.
	require.NotNil(t, snap.Games)
	assert.Empty(t, snap.Games)
}

func TestRefreshUpstreamFailureKeepsLastSnapshot(t *testing.T) {
	collector := &stubCollector{snapshots: testSnapshots()}
	svc := newTestService(collector, nil, time.Minute)

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	collector.err = errors.New("upstream down")
	_, err = svc.Refresh(context.Background())
	require.Error(t, err)

	// The previous snapshot keeps serving until its TTL runs out, and
	// the failure is reported alongside it.
	assert.Same(t, first, svc.Latest())
	assert.Error(t, svc.LastError())

	// A later success clears the error.
	collector.err = nil
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.NoError(t, svc.LastError())
}

func TestObserveSnapshotAgeTracksLatest(t *testing.T) {
	svc := newTestService(&stubCollector{snapshots: testSnapshots()}, nil, time.Minute)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	svc.ObserveSnapshotAge()
	assert.Greater(t, testutil.ToFloat64(metrics.SnapshotAgeSeconds), 0.0)
}

func TestLatestExpires(t *testing.T) {
	collector := &stubCollector{snapshots: testSnapshots()}
	svc := newTestService(collector, nil, 30*time.Millisecond)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, svc.Latest())

	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, svc.Latest())
}

func TestRefreshPersistsHistory(t *testing.T) {
	collector := &stubCollector{snapshots: testSnapshots()}
	store := &stubStore{}
	svc := newTestService(collector, store, time.Minute)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Same(t, snap, store.saved[0])
}

func TestRefreshSurvivesStoreFailure(t *testing.T) {
	collector := &stubCollector{snapshots: testSnapshots()}
	store := &stubStore{err: errors.New("db down")}
	svc := newTestService(collector, store, time.Minute)

	// History persistence is best-effort; a dead store must not fail
	// the cycle.
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, svc.Latest())
}

func TestSubscribeNotifiedOnRefresh(t *testing.T) {
	collector := &stubCollector{snapshots: testSnapshots()}
	svc := newTestService(collector, nil, time.Minute)

	var got []*Snapshot
	svc.Subscribe(func(s *Snapshot) { got = append(got, s) })

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, snap, got[0])

	collector.err = errors.New("upstream down")
	_, _ = svc.Refresh(context.Background())
	// Failed refreshes do not notify.
	assert.Len(t, got, 1)
}
