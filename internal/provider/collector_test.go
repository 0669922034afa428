package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/config"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func collectorTestConfig(baseURL string) config.OddsAPIConfig {
	return config.OddsAPIConfig{
		BaseURL:            baseURL,
		APIKey:             "test-key",
		SportKey:           "americanfootball_nfl",
		Regions:            "us",
		TimeoutSeconds:     5,
		MaxRetries:         0,
		RateLimitPerSecond: 500,
		PropWorkers:        3,
		FetchProps:         true,
	}
}

func propEventBody(id string) *APIEvent {
	point := 249.5
	event := fixtureEvent()
	event.ID = id
	event.Bookmakers = []APIBookmaker{
		{
			Key: "fanduel",
			Markets: []APIMarket{
				{
					Key: "player_pass_yds",
					Outcomes: []APIOutcome{
						{Name: "Over", Description: "Josh Allen", Price: -115, Point: &point},
						{Name: "Under", Description: "Josh Allen", Price: -105, Point: &point},
					},
				},
			},
		},
	}
	return event
}

// Exercises the full collect cycle with PropWorkers prop requests in
// flight through one shared client, including intermittent upstream
// failures, so the circuit breaker and quota tracking run concurrently.
// Run with the race detector.
func TestCollectConcurrentPropFetches(t *testing.T) {
	events := make([]APIEvent, 6)
	for i := range events {
		e := fixtureEvent()
		e.ID = fmt.Sprintf("evt%d", i)
		events[i] = *e
	}

	var quota atomic.Int64
	quota.Store(500)
	var propCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/sports/americanfootball_nfl/odds", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(quotaHeader, strconv.FormatInt(quota.Add(-1), 10))
		json.NewEncoder(w).Encode(events)
	})
	mux.HandleFunc("/sports/americanfootball_nfl/events/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(quotaHeader, strconv.FormatInt(quota.Add(-1), 10))
		if propCalls.Add(1)%3 == 0 {
			// A failed prop fetch only costs that game its props.
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(propEventBody("evt"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := collectorTestConfig(srv.URL)
	client := NewClient(cfg, quietLogger())
	defer client.Close()
	collector := NewCollector(cfg, client, quietLogger())

	snaps, err := collector.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 6)

	withProps := 0
	for _, snap := range snaps {
		if len(snap.PropQuotes) > 0 {
			assert.Equal(t, "Josh Allen", snap.PropQuotes[0].Player)
			withProps++
		}
	}
	// Prop calls 3 and 6 returned 500.
	assert.Equal(t, 4, withProps)

	// One list call plus six prop calls each consumed quota; the last
	// header seen wins, whichever worker that was.
	assert.Equal(t, int64(493), quota.Load())
	assert.GreaterOrEqual(t, collector.QuotaRemaining(), 493)
	assert.Less(t, collector.QuotaRemaining(), 500)
}

func TestRateLimitedHTTPClientCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 500
	cfg.CircuitBreakerMax = 3
	c := NewRateLimitedHTTPClient(cfg, quietLogger())
	defer c.Close()

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}

	// Breaker is open: the request never reaches the upstream.
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
