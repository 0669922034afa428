package provider

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/models"
)

var (
	suffixPattern     = regexp.MustCompile(` (Jr\.?|III|II|IV|V)$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizePlayerName collapses whitespace and strips a trailing
// generational suffix so the same player groups across books that
// disagree on "Odell Beckham Jr." vs "Odell Beckham". Only the final
// token is a candidate; an interior "II" or "IV" is part of the name.
func NormalizePlayerName(name string) string {
	name = strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))
	return suffixPattern.ReplaceAllString(name, "")
}

// canonicalPoint renders a line value in a canonical decimal form so
// 47.5 groups identically no matter how the provider serialized it.
func canonicalPoint(point *float64) *string {
	if point == nil {
		return nil
	}
	s := decimal.NewFromFloat(*point).String()
	return &s
}

// ToSnapshot flattens one event's featured markets into an engine
// snapshot. Outcomes with zero odds are carried through; the engine
// drops them as malformed and counts them.
func ToSnapshot(event *APIEvent) engine.GameSnapshot {
	snap := engine.GameSnapshot{
		ID:         event.ID,
		SportKey:   event.SportKey,
		HomeTeam:   event.HomeTeam,
		AwayTeam:   event.AwayTeam,
		CommenceAt: event.CommenceTime,
	}

	for _, book := range event.Bookmakers {
		for _, market := range book.Markets {
			marketType := models.MarketType(market.Key)
			if !marketType.IsGameMarket() {
				continue
			}
			for _, outcome := range market.Outcomes {
				snap.Quotes = append(snap.Quotes, models.Quote{
					Book:       book.Key,
					MarketType: marketType,
					Selection: models.SelectionKey{
						Side:  outcome.Name,
						Point: canonicalPoint(outcome.Point),
					},
					AmericanOdds: outcome.Price,
				})
			}
		}
	}
	return snap
}

// ParseProps flattens one event's player prop markets into prop quotes.
// Outcomes that are neither Over nor Under (anytime-TD style yes-only
// lines) are skipped: with only one side quoted there is no vig pair to
// remove.
func ParseProps(event *APIEvent) []models.PropQuote {
	var quotes []models.PropQuote
	for _, book := range event.Bookmakers {
		for _, market := range book.Markets {
			marketType := models.MarketType(market.Key)
			if !marketType.IsPlayerProp() {
				continue
			}
			for _, outcome := range market.Outcomes {
				side, ok := propSide(outcome.Name)
				if !ok {
					continue
				}
				player := NormalizePlayerName(outcome.Description)
				if player == "" {
					continue
				}
				quotes = append(quotes, models.PropQuote{
					Book:         book.Key,
					MarketType:   marketType,
					Player:       player,
					Side:         side,
					Point:        canonicalPoint(outcome.Point),
					AmericanOdds: outcome.Price,
				})
			}
		}
	}
	return quotes
}

func propSide(name string) (models.PropSide, bool) {
	switch {
	case strings.EqualFold(name, "over"):
		return models.PropOver, true
	case strings.EqualFold(name, "under"):
		return models.PropUnder, true
	}
	return "", false
}
