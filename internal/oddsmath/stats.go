package oddsmath

import "math"

// WeightedAverage computes sum(p*w)/sum(w). A zero weight sum means no
// qualifying books and yields nil. Panics if the slices differ in
// length, which is a programmer error, not a data problem.
func WeightedAverage(probs, weights []float64) *float64 {
	if len(probs) != len(weights) {
		panic("oddsmath: probs and weights length mismatch")
	}
	var num, denom float64
	for i, p := range probs {
		num += p * weights[i]
		denom += weights[i]
	}
	if denom == 0 || math.IsNaN(denom) {
		return nil
	}
	avg := num / denom
	return &avg
}

// Variance computes population variance of the given probabilities.
func Variance(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range probs {
		sum += p
	}
	mean := sum / float64(len(probs))

	var sq float64
	for _, p := range probs {
		d := p - mean
		sq += d * d
	}
	return sq / float64(len(probs))
}

// StabilityScore measures cross-book agreement on a selection:
// max(0, 1 - variance*scale), clamped to [0,1]. With fewer than two
// data points the sample says nothing either way, so a fixed neutral
// value is returned instead of 0 or 1.
func StabilityScore(probs []float64, scale, neutral float64) float64 {
	if len(probs) < 2 {
		return neutral
	}
	s := 1.0 - Variance(probs)*scale
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
