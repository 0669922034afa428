package provider

import "time"

// Wire types for The Odds API v4 responses.

// APIEvent is one game with its per-bookmaker markets.
type APIEvent struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []APIBookmaker `json:"bookmakers"`
}

// APIBookmaker is one book's markets for an event.
type APIBookmaker struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []APIMarket `json:"markets"`
}

// APIMarket is one market's outcomes at one book.
type APIMarket struct {
	Key      string       `json:"key"`
	Outcomes []APIOutcome `json:"outcomes"`
}

// APIOutcome is a single priced outcome. Price is American odds.
// Description carries the player name for prop markets. Point is nil
// for moneyline-style outcomes.
type APIOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       int      `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}
