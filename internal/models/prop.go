package models

// PropSide is the over/under side of a player prop line.
type PropSide string

const (
	PropOver  PropSide = "Over"
	PropUnder PropSide = "Under"
)

// PropQuote represents one bookmaker's price on one side of a player
// prop line. Kept separate from Quote because props group by player and
// point rather than by team selection.
type PropQuote struct {
	Book         string     `json:"book"`
	MarketType   MarketType `json:"market_type"`
	Player       string     `json:"player"`
	Side         PropSide   `json:"side"`
	Point        *string    `json:"point,omitempty"`
	AmericanOdds int        `json:"american_odds"`
}
