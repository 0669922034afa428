package models

import (
	"time"
)

// Game is the container for one event's raw quotes going into the
// engine and its per-market signals coming out.
type Game struct {
	ID          string                       `json:"id" validate:"required"`
	SportKey    string                       `json:"sport_key"`
	HomeTeam    string                       `json:"home_team" validate:"required"`
	AwayTeam    string                       `json:"away_team" validate:"required"`
	CommenceAt  time.Time                    `json:"commence_time" validate:"required"`
	Markets     map[MarketType]*MarketSignal `json:"markets,omitempty"`
	BestMarket  *MarketType                  `json:"best_market,omitempty"`
	PlayerProps []PropSignal                 `json:"player_props,omitempty"`
}

// IsExpired checks whether the game has passed the post-kickoff expiry
// window and should be dropped before aggregation.
func (g *Game) IsExpired(now time.Time, expiry time.Duration) bool {
	return now.After(g.CommenceAt.Add(expiry))
}

// PropSignal is a player prop line with its over/under consensus views.
// Point is always present for yardage/receptions lines and nil for
// anytime-TD style props.
type PropSignal struct {
	MarketType MarketType     `json:"market_type"`
	Player     string         `json:"player"`
	Point      *string        `json:"point,omitempty"`
	Over       *ConsensusView `json:"over,omitempty"`
	Under      *ConsensusView `json:"under,omitempty"`
	Stability  float64        `json:"stability"`
	Decision   Decision       `json:"decision"`
}

// BookQuotes is one bookmaker's full set of markets for a game as
// delivered by the provider, before flattening into Quotes.
type BookQuotes struct {
	Book    string
	Markets map[MarketType][]Quote
}
