package engine

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
)

// bookProb is one book's de-vigged probability and price for a
// selection.
type bookProb struct {
	book string
	prob float64
	odds int
}

// selectionGroup accumulates per-book fair probabilities for one
// selection key.
type selectionGroup struct {
	key   models.SelectionKey
	probs []bookProb
}

// AggregateMarket runs consensus aggregation, signal derivation and the
// decision gate for one market's quotes. Returns nil when no selection
// survives the minimum-book threshold, which callers treat as the
// market being omitted rather than an error.
func (e *Engine) AggregateMarket(marketType models.MarketType, quotes []models.Quote) *models.MarketSignal {
	var stats DropStats
	return e.aggregateMarket(marketType, quotes, &stats)
}

func (e *Engine) aggregateMarket(marketType models.MarketType, quotes []models.Quote, stats *DropStats) *models.MarketSignal {
	groups := e.collectFairProbs(marketType, quotes, stats)
	if len(groups) == 0 {
		return nil
	}

	views := make([]models.ConsensusView, 0, len(groups))
	marketStability := 1.0
	for _, group := range groups {
		view := e.buildView(group)
		views = append(views, view)

		probs := make([]float64, len(group.probs))
		for i, bp := range group.probs {
			probs[i] = bp.prob
		}
		s := oddsmath.StabilityScore(probs, e.params.StabilityScale, e.params.StabilityNeutral)
		if s < marketStability {
			marketStability = s
		}
	}

	sortViews(views)

	signal := &models.MarketSignal{
		MarketType: marketType,
		Selections: views,
		Stability:  marketStability,
	}
	best := signal.Best()
	var lean, ev *float64
	if best != nil {
		lean, ev = best.Lean, best.EV
	}
	signal.Decision = e.params.Gate(lean, ev, marketStability)
	signal.ConfidenceScore = ConfidenceScore(lean, ev, marketStability)
	return signal
}

// collectFairProbs pairs each book's two-way quotes, removes the vig
// per book, and groups the fair probabilities by selection key.
// Selections quoted by fewer than MinBooks books are dropped here.
func (e *Engine) collectFairProbs(marketType models.MarketType, quotes []models.Quote, stats *DropStats) []selectionGroup {
	byBook := make(map[string][]models.Quote)
	bookOrder := make([]string, 0)
	for _, q := range quotes {
		if _, seen := byBook[q.Book]; !seen {
			bookOrder = append(bookOrder, q.Book)
		}
		byBook[q.Book] = append(byBook[q.Book], q)
	}
	sort.Strings(bookOrder)

	grouped := make(map[string]*selectionGroup)
	keyOrder := make([]string, 0)

	for _, book := range bookOrder {
		pairs := pairTwoWay(marketType, byBook[book])
		for _, pair := range pairs {
			probA, probB := oddsmath.RemoveVigTwoWay(pair[0].AmericanOdds, pair[1].AmericanOdds, e.params.VigMethod)
			if probA == nil || probB == nil {
				// Degenerate pair at this book; the selection can
				// still resolve from other books.
				stats.dropDegenerate()
				continue
			}
			for i, fair := range []*float64{probA, probB} {
				q := pair[i]
				key := q.Selection.String()
				group, ok := grouped[key]
				if !ok {
					group = &selectionGroup{key: q.Selection}
					grouped[key] = group
					keyOrder = append(keyOrder, key)
				}
				group.probs = append(group.probs, bookProb{book: q.Book, prob: *fair, odds: q.AmericanOdds})
			}
		}
	}

	sort.Strings(keyOrder)
	out := make([]selectionGroup, 0, len(keyOrder))
	for _, key := range keyOrder {
		group := grouped[key]
		if len(group.probs) < e.params.MinBooks {
			stats.dropThinSample()
			continue
		}
		out = append(out, *group)
	}
	return out
}

// pairTwoWay matches a book's quotes into complementary two-way pairs.
// Totals pair Over/Under on the same point, spreads pair opposite sides
// of the same line magnitude, moneylines pair the two teams. Books
// quoting only one side of a line cannot be de-vigged and are skipped.
func pairTwoWay(marketType models.MarketType, quotes []models.Quote) [][2]models.Quote {
	byLine := make(map[string][]models.Quote)
	lineOrder := make([]string, 0)
	for _, q := range quotes {
		key := lineKey(marketType, q)
		if _, seen := byLine[key]; !seen {
			lineOrder = append(lineOrder, key)
		}
		byLine[key] = append(byLine[key], q)
	}
	sort.Strings(lineOrder)

	pairs := make([][2]models.Quote, 0, len(lineOrder))
	for _, key := range lineOrder {
		group := byLine[key]
		if len(group) != 2 || group[0].Selection.Side == group[1].Selection.Side {
			continue
		}
		pairs = append(pairs, [2]models.Quote{group[0], group[1]})
	}
	return pairs
}

// lineKey buckets quotes that belong to the same two-way line at one
// book. Spread points are matched on magnitude so home -3.5 pairs with
// away +3.5.
func lineKey(marketType models.MarketType, q models.Quote) string {
	if q.Selection.Point == nil {
		return ""
	}
	if marketType == models.MarketSpread {
		if d, err := decimal.NewFromString(*q.Selection.Point); err == nil {
			return d.Abs().String()
		}
	}
	return *q.Selection.Point
}

// buildView derives the consensus, sharp and public probabilities, the
// lean, and the best-value price for one selection.
func (e *Engine) buildView(group selectionGroup) models.ConsensusView {
	present := make([]string, 0, len(group.probs))
	for _, bp := range group.probs {
		present = append(present, bp.book)
	}
	sharpSet, source := e.classifier.SharpSet(present)

	var allProbs, allWeights []float64
	var sharpProbs, sharpWeights []float64
	var publicProbs, publicWeights []float64
	for _, bp := range group.probs {
		allProbs = append(allProbs, bp.prob)
		allWeights = append(allWeights, e.classifier.BlendedWeight(bp.book))
		if sharpSet[bp.book] {
			sharpProbs = append(sharpProbs, bp.prob)
			sharpWeights = append(sharpWeights, e.classifier.Weight(bp.book))
		} else {
			publicProbs = append(publicProbs, bp.prob)
			publicWeights = append(publicWeights, e.classifier.Weight(bp.book))
		}
	}

	consensus := oddsmath.WeightedAverage(allProbs, allWeights)
	sharp := oddsmath.WeightedAverage(sharpProbs, sharpWeights)
	public := oddsmath.WeightedAverage(publicProbs, publicWeights)

	var lean *float64
	if sharp != nil && public != nil {
		l := *sharp - *public
		lean = &l
	}

	ref := consensus
	if e.params.EVBaseline == BaselineSharp && sharp != nil {
		ref = sharp
	}

	bestOdds, bestBook, ev := bestValue(group.probs, ref)

	return models.ConsensusView{
		Selection:     group.key,
		ConsensusProb: consensus,
		SharpProb:     sharp,
		PublicProb:    public,
		Lean:          lean,
		BestOdds:      bestOdds,
		BestBook:      bestBook,
		EV:            ev,
		BookCount:     len(group.probs),
		SharpSource:   source,
	}
}

// bestValue finds the quote maximizing expected value against the
// reference probability: best value, not best price. With a nil
// reference nothing is computable and the zero pair is returned.
func bestValue(probs []bookProb, ref *float64) (int, string, *float64) {
	if ref == nil {
		return 0, "", nil
	}
	bestEV := math.Inf(-1)
	bestOdds := 0
	bestBook := ""
	for _, bp := range probs {
		ev := oddsmath.ExpectedValue(ref, bp.odds)
		if ev == nil {
			continue
		}
		if *ev > bestEV {
			bestEV = *ev
			bestOdds = bp.odds
			bestBook = bp.book
		}
	}
	if bestBook == "" {
		return 0, "", nil
	}
	return bestOdds, bestBook, &bestEV
}

// sortViews orders selections most-likely-first with a deterministic
// tie-break on selection name. Selections with no computable consensus
// sort last.
func sortViews(views []models.ConsensusView) {
	sort.SliceStable(views, func(i, j int) bool {
		pi, pj := views[i].ConsensusProb, views[j].ConsensusProb
		switch {
		case pi == nil && pj == nil:
			return views[i].Selection.String() < views[j].Selection.String()
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi > *pj
		}
		return views[i].Selection.String() < views[j].Selection.String()
	})
}
