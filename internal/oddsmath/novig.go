package oddsmath

import "math"

// VigMethod selects the no-vig normalization applied to two-way
// markets. Exactly one method is active per aggregation pass; mixing
// them produces incomparable probabilities across selections.
type VigMethod string

const (
	// VigMultiplicative divides each implied probability by their sum
	// so the pair sums to exactly 1. The standard method for spreads,
	// totals and two-way moneylines, and the default.
	VigMultiplicative VigMethod = "multiplicative"

	// VigLogarithmic applies p / (pA + pB - pA*pB), which shaves
	// proportionally more margin off longshots.
	VigLogarithmic VigMethod = "logarithmic"
)

// Valid reports whether the method is a known normalization.
func (m VigMethod) Valid() bool {
	return m == VigMultiplicative || m == VigLogarithmic
}

// RemoveVig normalizes a pair of implied probabilities to fair
// probabilities using the selected method. A zero or non-finite
// denominator makes the pair unresolvable and yields (nil, nil).
func RemoveVig(probA, probB float64, method VigMethod) (*float64, *float64) {
	var denom float64
	switch method {
	case VigLogarithmic:
		denom = probA + probB - probA*probB
	default:
		denom = probA + probB
	}
	if denom <= 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return nil, nil
	}
	fairA := probA / denom
	fairB := probB / denom
	return &fairA, &fairB
}

// RemoveVigTwoWay converts both American prices to implied
// probabilities and removes the vig. Invalid odds on either side make
// the pair unresolvable.
func RemoveVigTwoWay(oddsA, oddsB int, method VigMethod) (*float64, *float64) {
	probA, errA := ImpliedProbability(oddsA)
	probB, errB := ImpliedProbability(oddsB)
	if errA != nil || errB != nil {
		return nil, nil
	}
	return RemoveVig(probA, probB, method)
}
