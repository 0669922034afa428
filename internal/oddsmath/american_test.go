package oddsmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/sharpline/internal/models"
)

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		name string
		odds int
		want float64
	}{
		{"even money underdog", 100, 0.5},
		{"even money favorite", -100, 0.5},
		{"plus 150", 150, 0.4},
		{"minus 150", -150, 0.6},
		{"standard juice", -110, 110.0 / 210.0},
		{"big longshot", 900, 0.1},
		{"heavy favorite", -900, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImpliedProbability(tt.odds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestImpliedProbabilityZeroOdds(t *testing.T) {
	_, err := ImpliedProbability(0)
	assert.ErrorIs(t, err, models.ErrInvalidOdds)
}

func TestImpliedProbabilityBounds(t *testing.T) {
	for _, odds := range []int{-100000, -505, -110, -101, 100, 101, 110, 505, 100000} {
		p, err := ImpliedProbability(odds)
		if err != nil {
			t.Fatalf("odds %d: unexpected error: %v", odds, err)
		}
		if p <= 0 || p >= 1 {
			t.Fatalf("odds %d: probability %f outside (0,1)", odds, p)
		}
	}
}

func TestAmericanDecimalRoundTrip(t *testing.T) {
	for _, odds := range []int{-400, -150, -110, 100, 120, 250, 1000} {
		dec, err := AmericanToDecimal(odds)
		if err != nil {
			t.Fatalf("odds %d: unexpected error: %v", odds, err)
		}
		back, err := DecimalToAmerican(dec)
		if err != nil {
			t.Fatalf("decimal %f: unexpected error: %v", dec, err)
		}
		// -100 and +100 are the same price in decimal terms.
		if odds == 100 && back == -100 {
			continue
		}
		assert.Equal(t, odds, back, "odds %d", odds)
	}
}

func TestPayoutFactor(t *testing.T) {
	assert.InDelta(t, 1.5, PayoutFactor(150), 1e-12)
	assert.InDelta(t, 100.0/150.0, PayoutFactor(-150), 1e-12)
	assert.Equal(t, 0.0, PayoutFactor(0))
}

func TestExpectedValue(t *testing.T) {
	p := 0.5
	ev := ExpectedValue(&p, 100)
	if ev == nil {
		t.Fatal("expected non-nil EV")
	}
	assert.InDelta(t, 0.0, *ev, 1e-12)

	// Fair prob above break-even gives positive EV.
	p = 0.55
	ev = ExpectedValue(&p, 100)
	assert.Greater(t, *ev, 0.0)

	// +150 at its own implied probability is exactly break-even.
	p = 0.4
	ev = ExpectedValue(&p, 150)
	assert.InDelta(t, 0.0, *ev, 1e-12)
}

func TestExpectedValueNotComputable(t *testing.T) {
	if ExpectedValue(nil, -110) != nil {
		t.Fatal("expected nil EV for nil probability")
	}
	nan := math.NaN()
	if ExpectedValue(&nan, -110) != nil {
		t.Fatal("expected nil EV for NaN probability")
	}
	p := 0.5
	if ExpectedValue(&p, 0) != nil {
		t.Fatal("expected nil EV for zero odds")
	}
}
