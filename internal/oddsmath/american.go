// Package oddsmath implements American-odds probability conversion,
// vig removal and expected value. All functions are pure; probability
// results that cannot be computed are returned as nil pointers rather
// than zero values.
package oddsmath

import (
	"math"

	"github.com/yourusername/sharpline/internal/models"
)

// ImpliedProbability converts American odds to implied probability,
// bookmaker margin included.
// +150 → 100/(150+100) = 0.40; -150 → 150/(150+100) = 0.60.
func ImpliedProbability(odds int) (float64, error) {
	if odds == 0 {
		return 0, models.ErrInvalidOdds
	}
	if odds > 0 {
		return 100.0 / float64(odds+100), nil
	}
	return float64(-odds) / float64(-odds+100), nil
}

// AmericanToDecimal converts American odds to decimal odds.
// +150 → 2.50; -150 → 1.67.
func AmericanToDecimal(odds int) (float64, error) {
	if odds == 0 {
		return 0, models.ErrInvalidOdds
	}
	if odds > 0 {
		return float64(odds)/100.0 + 1.0, nil
	}
	return 100.0/float64(-odds) + 1.0, nil
}

// DecimalToAmerican converts decimal odds back to the nearest American
// price.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1.0 {
		return 0, models.ErrInvalidOdds
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// PayoutFactor returns profit per unit staked at the given odds.
// +150 pays 1.5 units; -150 pays 0.667 units. Zero odds pay nothing.
func PayoutFactor(odds int) float64 {
	if odds > 0 {
		return float64(odds) / 100.0
	}
	if odds < 0 {
		return 100.0 / float64(-odds)
	}
	return 0
}

// ExpectedValue returns expected profit per unit staked at the given
// odds under fairProb. Nil or non-finite fair probability yields nil.
func ExpectedValue(fairProb *float64, odds int) *float64 {
	if fairProb == nil || math.IsNaN(*fairProb) || math.IsInf(*fairProb, 0) || odds == 0 {
		return nil
	}
	p := *fairProb
	ev := p*PayoutFactor(odds) - (1.0 - p)
	return &ev
}
