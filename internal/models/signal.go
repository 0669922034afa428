package models

// Decision is the three-way outcome of the decision gate
type Decision string

const (
	DecisionPlay Decision = "PLAY"
	DecisionLean Decision = "LEAN"
	DecisionPass Decision = "PASS"
)

// SharpSource records how the sharp subset for a selection was chosen.
// SourceProxy means no named sharp book quoted the selection and the
// top-weighted books were used as a stand-in; consumers should discount
// confidence accordingly.
type SharpSource string

const (
	SourceNamed SharpSource = "named"
	SourceProxy SharpSource = "proxy"
)

// ConsensusView is the per-selection output of an aggregation pass.
// Probability fields are nil when they could not be computed (no
// qualifying books, degenerate vig removal), never zero-filled.
type ConsensusView struct {
	Selection     SelectionKey `json:"selection"`
	ConsensusProb *float64     `json:"consensus_prob"`
	SharpProb     *float64     `json:"sharp_prob"`
	PublicProb    *float64     `json:"public_prob"`
	Lean          *float64     `json:"lean"`
	BestOdds      int          `json:"best_odds"`
	BestBook      string       `json:"best_book"`
	EV            *float64     `json:"ev"`
	BookCount     int          `json:"book_count"`
	SharpSource   SharpSource  `json:"sharp_source"`
}

// MarketSignal is the per-market output of an aggregation pass:
// selections sorted most-likely-first plus market-level agreement and
// the gate decision. It is owned by the pass that produced it and
// read-only to the serving layer.
type MarketSignal struct {
	MarketType      MarketType      `json:"market_type"`
	Selections      []ConsensusView `json:"selections"`
	Stability       float64         `json:"stability"`
	Decision        Decision        `json:"decision"`
	ConfidenceScore float64         `json:"confidence_score"`
}

// Best returns the top selection by expected value, or nil when the
// market produced no qualified selections.
func (m *MarketSignal) Best() *ConsensusView {
	var best *ConsensusView
	for i := range m.Selections {
		v := &m.Selections[i]
		if v.EV == nil {
			continue
		}
		if best == nil || best.EV == nil || *v.EV > *best.EV {
			best = v
		}
	}
	return best
}
