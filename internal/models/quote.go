package models

import (
	"fmt"
	"strings"
)

// MarketType represents the type of betting market
type MarketType string

const (
	MarketMoneyline MarketType = "h2h"
	MarketSpread    MarketType = "spreads"
	MarketTotal     MarketType = "totals"
)

// PlayerPropMarkets lists the player prop market keys fetched per event
var PlayerPropMarkets = []MarketType{
	"player_pass_yds",
	"player_pass_tds",
	"player_rush_yds",
	"player_receptions",
	"player_reception_yds",
	"player_anytime_td",
}

// IsPlayerProp checks whether the market is a per-player prop market
func (m MarketType) IsPlayerProp() bool {
	return strings.HasPrefix(string(m), "player_")
}

// IsGameMarket checks whether the market is a featured game-level market
func (m MarketType) IsGameMarket() bool {
	switch m {
	case MarketMoneyline, MarketSpread, MarketTotal:
		return true
	}
	return false
}

// SelectionKey uniquely identifies a bettable line within a market.
// Side is the team, Over/Under, or player+side for props. Point is the
// handicap or total line; nil for moneyline-style selections. Point is
// carried as a canonical string so that 47.5 from every book groups
// identically regardless of how the provider serialized the number.
type SelectionKey struct {
	Side  string  `json:"side"`
	Point *string `json:"point,omitempty"`
}

// String returns the grouping key used during aggregation
func (k SelectionKey) String() string {
	if k.Point == nil {
		return k.Side
	}
	return k.Side + "|" + *k.Point
}

// Quote represents one bookmaker's price for one outcome of one market.
// Quotes are created fresh per fetch cycle and never mutated.
type Quote struct {
	Book         string       `json:"book" validate:"required"`
	MarketType   MarketType   `json:"market_type" validate:"required"`
	Selection    SelectionKey `json:"selection"`
	AmericanOdds int          `json:"american_odds"`
}

// Validate checks the quote for structural problems that would poison
// aggregation. A zero odds value is the provider's way of signalling a
// pulled line.
func (q *Quote) Validate() error {
	if q.Book == "" {
		return fmt.Errorf("%w: missing book", ErrMalformedQuote)
	}
	if q.Selection.Side == "" {
		return fmt.Errorf("%w: missing selection side", ErrMalformedQuote)
	}
	if q.AmericanOdds == 0 {
		return fmt.Errorf("%w: zero odds for %s at %s", ErrMalformedQuote, q.Selection.String(), q.Book)
	}
	return nil
}
