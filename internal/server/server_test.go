package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/service"
)

type stubCollector struct {
	snapshots []engine.GameSnapshot
	err       error
}

func (c *stubCollector) Collect(ctx context.Context) ([]engine.GameSnapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.snapshots, nil
}

func quietLogger() *logrus.Logger {
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

func newTestServer(t *testing.T, collector service.QuoteCollector) (*Server, *service.SnapshotService) {
	t.Helper()
	eng := engine.New(engine.DefaultParams(), nil, quietLogger())
	svc := service.NewSnapshotService(collector, eng, nil, time.Minute, quietLogger())
	srv := New(
		config.ServerConfig{Port: 0},
		config.MetricsConfig{Enabled: true, Path: "/metrics"},
		svc, nil, nil, quietLogger(),
	)
	return srv, svc
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGamesEndpoint(t *testing.T) {
	srv, svc := newTestServer(t, &stubCollector{snapshots: testSnapshots()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	rec := get(t, srv, "/api/games")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp gamesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "g1", resp.Games[0].ID)
	assert.NotNil(t, resp.Games[0].Markets[models.MarketMoneyline])
}

func TestGamesEndpointNoData(t *testing.T) {
	srv, svc := newTestServer(t, &stubCollector{err: errors.New("upstream down")})
	_, _ = svc.Refresh(context.Background())

	rec := get(t, srv, "/api/games")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "upstream down")
}

func TestGamesEndpointEmptySnapshotIsNotAnError(t *testing.T) {
	srv, svc := newTestServer(t, &stubCollector{})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// No qualified games renders 200 with an empty list, distinct from
	// the 503 served when no snapshot exists at all.
	rec := get(t, srv, "/api/games")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp gamesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Games)
	assert.Empty(t, resp.Games)
}

func TestPropsEndpoint(t *testing.T) {
	snaps := testSnapshots()
	point := "249.5"
	snaps[0].PropQuotes = []models.PropQuote{
		{Book: "fanduel", MarketType: "player_pass_yds", Player: "Josh Allen", Side: models.PropOver, Point: &point, AmericanOdds: -115},
		{Book: "fanduel", MarketType: "player_pass_yds", Player: "Josh Allen", Side: models.PropUnder, Point: &point, AmericanOdds: -105},
		{Book: "draftkings", MarketType: "player_pass_yds", Player: "Josh Allen", Side: models.PropOver, Point: &point, AmericanOdds: -120},
		{Book: "draftkings", MarketType: "player_pass_yds", Player: "Josh Allen", Side: models.PropUnder, Point: &point, AmericanOdds: 100},
	}

	srv, svc := newTestServer(t, &stubCollector{snapshots: snaps})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	rec := get(t, srv, "/api/games/g1/props")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp propsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "g1", resp.GameID)
	require.Len(t, resp.Props, 1)
	assert.Equal(t, "Josh Allen", resp.Props[0].Player)

	rec = get(t, srv, "/api/games/unknown/props")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	srv, svc := newTestServer(t, &stubCollector{snapshots: testSnapshots()})

	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
	// Not ready until a snapshot exists.
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/readyz").Code)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)
}

func TestMetricsEndpointMounted(t *testing.T) {
	srv, _ := newTestServer(t, &stubCollector{})
	assert.Equal(t, http.StatusOK, get(t, srv, "/metrics").Code)
}

func TestHistoryEndpointDisabled(t *testing.T) {
	srv, _ := newTestServer(t, &stubCollector{})
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/games/g1/history").Code)
}
