package provider

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
)

// Collector fetches one cycle's odds from the upstream API and shapes
// them for the engine. Prop endpoints cost one API request per event,
// so those calls run through a small bounded worker pool.
type Collector struct {
	cfg    config.OddsAPIConfig
	client *Client
	log    *logger.CollectorLogger
}

// NewCollector creates a collector over the given client.
func NewCollector(cfg config.OddsAPIConfig, client *Client, baseLogger *logrus.Logger) *Collector {
	return &Collector{
		cfg:    cfg,
		client: client,
		log:    logger.NewCollectorLogger(baseLogger),
	}
}

// Collect fetches the featured markets for every upcoming event, plus
// player props where enabled, and returns engine-ready snapshots.
// Upstream failure on the event list is fatal for the cycle; a failed
// prop fetch only leaves that one game without props.
func (c *Collector) Collect(ctx context.Context) ([]engine.GameSnapshot, error) {
	started := time.Now()

	events, err := c.client.ListEventOdds(ctx)
	if err != nil {
		metrics.RecordUpstreamError("events")
		return nil, err
	}

	snapshots := make([]engine.GameSnapshot, len(events))
	for i := range events {
		snapshots[i] = ToSnapshot(&events[i])
	}

	propEvents := 0
	if c.cfg.FetchProps {
		propEvents = c.collectProps(ctx, events, snapshots)
	}

	duration := time.Since(started)
	metrics.RecordFetchCycle(duration.Seconds())
	if quota := c.client.QuotaRemaining(); quota >= 0 {
		metrics.APIQuotaRemaining.Set(float64(quota))
	}
	c.log.LogFetchCycle(c.cfg.SportKey, len(events), propEvents, c.client.QuotaRemaining(), duration)

	return snapshots, nil
}

// QuotaRemaining reports the upstream API quota seen on the most
// recent response.
func (c *Collector) QuotaRemaining() int {
	return c.client.QuotaRemaining()
}

// collectProps fetches prop odds for each event with bounded
// concurrency and attaches them to the matching snapshot. Returns the
// number of events for which props were fetched successfully.
func (c *Collector) collectProps(ctx context.Context, events []APIEvent, snapshots []engine.GameSnapshot) int {
	workers := c.cfg.PropWorkers
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	fetched := 0

	for i := range events {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			event, err := c.client.EventPropOdds(ctx, events[idx].ID)
			if err != nil {
				metrics.RecordUpstreamError("event_odds")
				return
			}
			props := ParseProps(event)

			mu.Lock()
			snapshots[idx].PropQuotes = props
			fetched++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	return fetched
}
