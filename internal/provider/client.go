// Package provider implements the client for the third-party odds
// aggregator API and the conversion of its responses into engine
// snapshots.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/models"
)

const quotaHeader = "x-requests-remaining"

// Client talks to The Odds API v4. Safe for concurrent use.
type Client struct {
	cfg  config.OddsAPIConfig
	http *RateLimitedHTTPClient
	log  *logger.CollectorLogger

	quotaMu sync.Mutex
	quota   int
}

// NewClient creates an odds API client.
func NewClient(cfg config.OddsAPIConfig, baseLogger *logrus.Logger) *Client {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.RequestTimeout()
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimitPerSecond

	return &Client{
		cfg:   cfg,
		http:  NewRateLimitedHTTPClient(httpCfg, baseLogger),
		log:   logger.NewCollectorLogger(baseLogger),
		quota: -1,
	}
}

// QuotaRemaining returns the last seen value of the API's
// requests-remaining header, or -1 before the first call.
func (c *Client) QuotaRemaining() int {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()
	return c.quota
}

func (c *Client) setQuota(n int) {
	c.quotaMu.Lock()
	c.quota = n
	c.quotaMu.Unlock()
}

// ListEventOdds fetches the featured game markets (moneyline, spreads,
// totals) for every upcoming event of the configured sport.
func (c *Client) ListEventOdds(ctx context.Context) ([]APIEvent, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.cfg.BaseURL, c.cfg.SportKey)
	query := url.Values{
		"apiKey":     {c.cfg.APIKey},
		"regions":    {c.cfg.Regions},
		"markets":    {joinMarkets(models.MarketMoneyline, models.MarketSpread, models.MarketTotal)},
		"oddsFormat": {"american"},
	}

	var events []APIEvent
	if err := c.getJSON(ctx, endpoint, query, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// EventPropOdds fetches the player prop markets for one event.
func (c *Client) EventPropOdds(ctx context.Context, eventID string) (*APIEvent, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/events/%s/odds", c.cfg.BaseURL, c.cfg.SportKey, eventID)
	query := url.Values{
		"apiKey":     {c.cfg.APIKey},
		"regions":    {c.cfg.Regions},
		"markets":    {joinMarkets(models.PlayerPropMarkets...)},
		"oddsFormat": {"american"},
	}

	var event APIEvent
	if err := c.getJSON(ctx, endpoint, query, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	resp, err := c.http.Get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		c.log.LogUpstreamError(redacted(endpoint), 0, err)
		return fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if remaining := resp.Header.Get(quotaHeader); remaining != "" {
		if n, err := strconv.Atoi(remaining); err == nil {
			c.setQuota(n)
			if n < 50 {
				c.log.LogQuotaWarning(n)
			}
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", models.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
		c.log.LogUpstreamError(redacted(endpoint), resp.StatusCode, err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode odds API response: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

func joinMarkets(markets ...models.MarketType) string {
	keys := make([]string, len(markets))
	for i, m := range markets {
		keys[i] = string(m)
	}
	return strings.Join(keys, ",")
}

// redacted strips nothing today but keeps the API key out of logs by
// logging the bare endpoint, never the query string.
func redacted(endpoint string) string {
	return endpoint
}
