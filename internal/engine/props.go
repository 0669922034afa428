package engine

import (
	"sort"

	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
)

// propLine accumulates one player+point line across books.
type propLine struct {
	marketType models.MarketType
	player     string
	point      *string
	over       []bookProb
	under      []bookProb
}

func (l *propLine) groupKey() string {
	key := string(l.marketType) + "|" + l.player
	if l.point != nil {
		key += "|" + *l.point
	}
	return key
}

// AggregateProps aggregates player prop quotes into ranked signals.
// Lines are de-vigged per book, so only books quoting both sides of a
// line contribute. Each prop market keeps its top lines by best-side
// expected value; returns nil when nothing qualifies.
func (e *Engine) AggregateProps(quotes []models.PropQuote) []models.PropSignal {
	var stats DropStats
	return e.aggregateProps(quotes, &stats)
}

func (e *Engine) aggregateProps(quotes []models.PropQuote, stats *DropStats) []models.PropSignal {
	lines := e.collectPropLines(quotes, stats)

	signals := make([]models.PropSignal, 0, len(lines))
	for _, line := range lines {
		if len(line.over) < e.params.MinBooks || len(line.under) < e.params.MinBooks {
			stats.dropThinSample()
			continue
		}

		overView := e.buildView(selectionGroup{
			key:   models.SelectionKey{Side: string(models.PropOver), Point: line.point},
			probs: line.over,
		})
		underView := e.buildView(selectionGroup{
			key:   models.SelectionKey{Side: string(models.PropUnder), Point: line.point},
			probs: line.under,
		})

		probs := make([]float64, 0, len(line.over)+len(line.under))
		for _, bp := range line.over {
			probs = append(probs, bp.prob)
		}
		for _, bp := range line.under {
			probs = append(probs, bp.prob)
		}
		stability := oddsmath.StabilityScore(probs, e.params.StabilityScale, e.params.StabilityNeutral)

		best := betterSide(&overView, &underView)
		signals = append(signals, models.PropSignal{
			MarketType: line.marketType,
			Player:     line.player,
			Point:      line.point,
			Over:       &overView,
			Under:      &underView,
			Stability:  stability,
			Decision:   e.params.Gate(best.Lean, best.EV, stability),
		})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		ei, ej := maxSideEV(&signals[i]), maxSideEV(&signals[j])
		if ei != ej {
			return ei > ej
		}
		return signals[i].Player < signals[j].Player
	})

	// Cap per market type, not across the combined list, so one deep
	// market cannot crowd every other prop market out of a game.
	if e.params.TopProps > 0 {
		perMarket := make(map[models.MarketType]int)
		kept := signals[:0]
		for i := range signals {
			if perMarket[signals[i].MarketType] >= e.params.TopProps {
				continue
			}
			perMarket[signals[i].MarketType]++
			kept = append(kept, signals[i])
		}
		signals = kept
	}
	if len(signals) == 0 {
		return nil
	}
	return signals
}

// collectPropLines pairs each book's over/under prop quotes, removes
// the vig per book, and groups fair probabilities by player and point.
func (e *Engine) collectPropLines(quotes []models.PropQuote, stats *DropStats) []*propLine {
	grouped := make(map[string]*propLine)
	order := make([]string, 0)

	byBook := make(map[string][]models.PropQuote)
	bookOrder := make([]string, 0)
	for _, q := range quotes {
		if q.AmericanOdds == 0 || q.Player == "" {
			stats.dropMalformed()
			continue
		}
		if _, seen := byBook[q.Book]; !seen {
			bookOrder = append(bookOrder, q.Book)
		}
		byBook[q.Book] = append(byBook[q.Book], q)
	}
	sort.Strings(bookOrder)

	for _, book := range bookOrder {
		sides := make(map[string]map[models.PropSide]models.PropQuote)
		sideOrder := make([]string, 0)
		for _, q := range byBook[book] {
			line := propLine{marketType: q.MarketType, player: q.Player, point: q.Point}
			key := line.groupKey()
			if _, ok := sides[key]; !ok {
				sides[key] = make(map[models.PropSide]models.PropQuote, 2)
				sideOrder = append(sideOrder, key)
			}
			sides[key][q.Side] = q
		}
		sort.Strings(sideOrder)

		for _, key := range sideOrder {
			pair := sides[key]
			over, hasOver := pair[models.PropOver]
			under, hasUnder := pair[models.PropUnder]
			if !hasOver || !hasUnder {
				continue
			}
			fairOver, fairUnder := oddsmath.RemoveVigTwoWay(over.AmericanOdds, under.AmericanOdds, e.params.VigMethod)
			if fairOver == nil || fairUnder == nil {
				stats.dropDegenerate()
				continue
			}
			line, ok := grouped[key]
			if !ok {
				line = &propLine{marketType: over.MarketType, player: over.Player, point: over.Point}
				grouped[key] = line
				order = append(order, key)
			}
			line.over = append(line.over, bookProb{book: book, prob: *fairOver, odds: over.AmericanOdds})
			line.under = append(line.under, bookProb{book: book, prob: *fairUnder, odds: under.AmericanOdds})
		}
	}

	sort.Strings(order)
	out := make([]*propLine, 0, len(order))
	for _, key := range order {
		out = append(out, grouped[key])
	}
	return out
}

// betterSide returns the side with the higher expected value, falling
// back to the over when neither side has one.
func betterSide(over, under *models.ConsensusView) *models.ConsensusView {
	if under.EV != nil && (over.EV == nil || *under.EV > *over.EV) {
		return under
	}
	return over
}

func maxSideEV(s *models.PropSignal) float64 {
	best := 0.0
	for _, v := range []*models.ConsensusView{s.Over, s.Under} {
		if v != nil && v.EV != nil && *v.EV > best {
			best = *v.EV
		}
	}
	return best
}
