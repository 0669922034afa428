package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/sharpline/internal/models"
)

func f(v float64) *float64 { return &v }

func TestGate(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name      string
		lean      *float64
		ev        *float64
		stability float64
		want      models.Decision
	}{
		{"all floors cleared", f(0.05), f(0.05), 0.9, models.DecisionPlay},
		{"exactly at floors", f(0.03), f(0.03), 0.65, models.DecisionPlay},
		{"negative lean still plays", f(-0.05), f(0.05), 0.9, models.DecisionPlay},
		{"everything weak", f(0.01), f(0.01), 0.9, models.DecisionPass},
		{"stability veto", f(0.05), f(0.05), 0.5, models.DecisionPass},
		{"lean clears half floor", f(0.02), f(0.005), 0.9, models.DecisionLean},
		{"ev clears half floor", f(0.005), f(0.02), 0.9, models.DecisionLean},
		{"ev without lean cannot play", nil, f(0.05), 0.9, models.DecisionLean},
		{"lean without ev cannot play", f(0.05), nil, 0.9, models.DecisionLean},
		{"nothing computable", nil, nil, 0.9, models.DecisionPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Gate(tt.lean, tt.ev, tt.stability))
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	score := ConfidenceScore(f(0.05), f(0.05), 0.9)
	assert.InDelta(t, (0.05*0.45+0.9*0.35+0.05*0.20)*100, score, 1e-9)

	// Negative EV contributes nothing rather than subtracting.
	withNeg := ConfidenceScore(f(0.05), f(-0.10), 0.9)
	withZero := ConfidenceScore(f(0.05), f(0.0), 0.9)
	assert.Equal(t, withZero, withNeg)

	// Nil inputs score only the stability term.
	assert.InDelta(t, 0.9*0.35*100, ConfidenceScore(nil, nil, 0.9), 1e-9)

	assert.Equal(t, 0.0, ConfidenceScore(nil, nil, 0))
}
