package engine

import (
	"math"

	"github.com/yourusername/sharpline/internal/models"
)

// Confidence blend weights. The composite score is reported alongside
// the threshold gate; the gate is the decision method and stays the
// same for every market in a deployment.
const (
	confidenceLeanWeight      = 0.45
	confidenceStabilityWeight = 0.35
	confidenceEVWeight        = 0.20
)

// Gate classifies one evaluated market as PLAY, LEAN or PASS.
//
// PLAY needs expected value, sharp/public divergence and cross-book
// agreement all above their floors at once. Low stability vetoes the
// signal outright: when the books disagree, an attractive EV or lean is
// noise. LEAN marks markets where either signal clears half its floor
// but the full bar is missed. Everything else is PASS.
func (p Params) Gate(lean, ev *float64, stability float64) models.Decision {
	if stability < p.StabilityFloor {
		return models.DecisionPass
	}

	absLean := 0.0
	if lean != nil {
		absLean = math.Abs(*lean)
	}
	evVal := 0.0
	if ev != nil {
		evVal = *ev
	}

	if ev != nil && lean != nil && evVal >= p.EVFloor && absLean >= p.LeanFloor {
		return models.DecisionPlay
	}
	if evVal >= p.EVFloor/2 || absLean >= p.LeanFloor/2 {
		return models.DecisionLean
	}
	return models.DecisionPass
}

// ConfidenceScore folds lean, stability and EV into a 0-100 composite.
// Negative EV contributes nothing rather than subtracting, so a stable
// market with no value still scores its agreement.
func ConfidenceScore(lean, ev *float64, stability float64) float64 {
	absLean := 0.0
	if lean != nil {
		absLean = math.Abs(*lean)
	}
	evVal := 0.0
	if ev != nil && *ev > 0 {
		evVal = *ev
	}
	score := (absLean*confidenceLeanWeight + stability*confidenceStabilityWeight + evVal*confidenceEVWeight) * 100
	if score > 100 {
		return 100
	}
	return score
}
