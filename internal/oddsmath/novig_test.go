package oddsmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveVigTwoWaySymmetric(t *testing.T) {
	// Symmetric -110/-110 must come out exactly 50/50.
	fairA, fairB := RemoveVigTwoWay(-110, -110, VigMultiplicative)
	require.NotNil(t, fairA)
	require.NotNil(t, fairB)
	assert.InDelta(t, 0.5, *fairA, 1e-12)
	assert.InDelta(t, 0.5, *fairB, 1e-12)
}

func TestRemoveVigSumsToOne(t *testing.T) {
	pairs := [][2]int{
		{-110, -110},
		{-150, 130},
		{-240, 195},
		{100, -120},
		{350, -450},
	}
	for _, pair := range pairs {
		fairA, fairB := RemoveVigTwoWay(pair[0], pair[1], VigMultiplicative)
		require.NotNil(t, fairA, "pair %v", pair)
		require.NotNil(t, fairB, "pair %v", pair)
		assert.InDelta(t, 1.0, *fairA+*fairB, 1e-9, "pair %v", pair)
	}
}

func TestRemoveVigPreservesOrdering(t *testing.T) {
	// The favorite stays the favorite after de-vig.
	fairFav, fairDog := RemoveVigTwoWay(-150, 130, VigMultiplicative)
	require.NotNil(t, fairFav)
	require.NotNil(t, fairDog)
	if *fairFav <= *fairDog {
		t.Fatalf("favorite %f should exceed underdog %f", *fairFav, *fairDog)
	}
}

func TestRemoveVigLogarithmic(t *testing.T) {
	probA, _ := ImpliedProbability(-150)
	probB, _ := ImpliedProbability(130)

	fairA, fairB := RemoveVig(probA, probB, VigLogarithmic)
	require.NotNil(t, fairA)
	require.NotNil(t, fairB)

	denom := probA + probB - probA*probB
	assert.InDelta(t, probA/denom, *fairA, 1e-12)
	assert.InDelta(t, probB/denom, *fairB, 1e-12)

	// Unlike multiplicative, the logarithmic pair is not forced to sum
	// to 1.
	assert.Greater(t, *fairA+*fairB, 1.0)
}

func TestRemoveVigDegenerate(t *testing.T) {
	fairA, fairB := RemoveVig(0, 0, VigMultiplicative)
	if fairA != nil || fairB != nil {
		t.Fatal("expected nil pair for zero probabilities")
	}

	fairA, fairB = RemoveVig(math.NaN(), 0.5, VigMultiplicative)
	if fairA != nil || fairB != nil {
		t.Fatal("expected nil pair for NaN input")
	}

	fairA, fairB = RemoveVigTwoWay(0, -110, VigMultiplicative)
	if fairA != nil || fairB != nil {
		t.Fatal("expected nil pair for invalid odds")
	}
}

func TestVigMethodValid(t *testing.T) {
	assert.True(t, VigMultiplicative.Valid())
	assert.True(t, VigLogarithmic.Valid())
	assert.False(t, VigMethod("additive").Valid())
	assert.False(t, VigMethod("").Valid())
}
