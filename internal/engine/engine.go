// Package engine implements the odds aggregation and signal pipeline:
// per-book vig removal, weighted consensus across sharp and public
// subsets, lean/EV/stability derivation and the PLAY/LEAN/PASS gate.
//
// The engine is a pure computation over one fetch cycle's quote
// snapshot. It holds no mutable state, performs no I/O, and is safe to
// run across many games in parallel.
package engine

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/books"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
)

// EVBaseline selects which consensus probability anchors expected
// value: the overall blended consensus or the sharp-only subset.
type EVBaseline string

const (
	BaselineConsensus EVBaseline = "consensus"
	BaselineSharp     EVBaseline = "sharp"
)

// Params holds the deployment-tunable knobs of the pipeline. One set of
// params applies to every market in a pass so scores stay comparable.
type Params struct {
	VigMethod        oddsmath.VigMethod
	EVBaseline       EVBaseline
	MinBooks         int
	StabilityScale   float64
	StabilityNeutral float64
	EVFloor          float64
	LeanFloor        float64
	StabilityFloor   float64
	ExpiryWindow     time.Duration
	TopProps         int
}

// DefaultParams returns the calibration used when config leaves the
// engine section empty.
func DefaultParams() Params {
	return Params{
		VigMethod:        oddsmath.VigMultiplicative,
		EVBaseline:       BaselineConsensus,
		MinBooks:         2,
		StabilityScale:   400,
		StabilityNeutral: 0.75,
		EVFloor:          0.03,
		LeanFloor:        0.03,
		StabilityFloor:   0.65,
		ExpiryWindow:     8 * time.Hour,
		TopProps:         3,
	}
}

// DropStats counts data-quality drops during one evaluation pass.
// Units follow the drop site: Malformed counts single quotes,
// Degenerate counts unresolvable two-way pairs, ThinSample counts
// selections below the minimum book threshold.
type DropStats struct {
	Malformed  int
	Degenerate int
	ThinSample int
}

func (s *DropStats) dropMalformed() {
	s.Malformed++
	metrics.RecordQuoteDropped("malformed")
}

func (s *DropStats) dropDegenerate() {
	s.Degenerate++
	metrics.RecordQuoteDropped("degenerate_pair")
}

func (s *DropStats) dropThinSample() {
	s.ThinSample++
	metrics.RecordQuoteDropped("thin_sample")
}

// GameSnapshot is the engine's input for one game: the parsed quotes
// from every bookmaker for one fetch cycle.
type GameSnapshot struct {
	ID         string
	SportKey   string
	HomeTeam   string
	AwayTeam   string
	CommenceAt time.Time
	Quotes     []models.Quote
	PropQuotes []models.PropQuote
}

// Engine runs the aggregation pipeline with fixed params and a fixed
// book classifier.
type Engine struct {
	params     Params
	classifier *books.Classifier
	logger     *logrus.Entry
}

// New creates an engine. A nil logger is replaced with a discard-level
// default so the engine stays usable from tests and tools.
func New(params Params, classifier *books.Classifier, logger *logrus.Logger) *Engine {
	if classifier == nil {
		classifier = books.NewClassifier(books.Config{})
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	if params.MinBooks < 1 {
		params.MinBooks = 1
	}
	return &Engine{
		params:     params,
		classifier: classifier,
		logger:     logger.WithField("component", "engine"),
	}
}

// Params returns the engine calibration.
func (e *Engine) Params() Params {
	return e.params
}

// EvaluateGames runs the full pipeline over a fetch cycle's snapshots.
// Expired games are dropped before any aggregation. The result is
// sorted by kickoff time, soonest first. An empty snapshot set yields
// an empty (non-nil) slice, never an error.
func (e *Engine) EvaluateGames(snapshots []GameSnapshot, now time.Time) []*models.Game {
	games, _ := e.EvaluateGamesWithStats(snapshots, now)
	return games
}

// EvaluateGamesWithStats is EvaluateGames plus the pass's data-quality
// drop counts, for callers that report them.
func (e *Engine) EvaluateGamesWithStats(snapshots []GameSnapshot, now time.Time) ([]*models.Game, DropStats) {
	var stats DropStats
	games := make([]*models.Game, 0, len(snapshots))
	for i := range snapshots {
		snap := &snapshots[i]
		if now.After(snap.CommenceAt.Add(e.params.ExpiryWindow)) {
			continue
		}
		games = append(games, e.evaluateGame(snap, &stats))
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CommenceAt.Before(games[j].CommenceAt)
	})
	return games, stats
}

// EvaluateGame aggregates every market of a single game and picks the
// game-level headline market.
func (e *Engine) EvaluateGame(snap *GameSnapshot) *models.Game {
	var stats DropStats
	return e.evaluateGame(snap, &stats)
}

func (e *Engine) evaluateGame(snap *GameSnapshot, stats *DropStats) *models.Game {
	game := &models.Game{
		ID:         snap.ID,
		SportKey:   snap.SportKey,
		HomeTeam:   snap.HomeTeam,
		AwayTeam:   snap.AwayTeam,
		CommenceAt: snap.CommenceAt,
		Markets:    make(map[models.MarketType]*models.MarketSignal),
	}

	byMarket := make(map[models.MarketType][]models.Quote)
	for _, q := range snap.Quotes {
		if err := q.Validate(); err != nil {
			stats.dropMalformed()
			e.logger.WithError(err).WithField("game_id", snap.ID).Debug("Dropping malformed quote")
			continue
		}
		byMarket[q.MarketType] = append(byMarket[q.MarketType], q)
	}

	for marketType, quotes := range byMarket {
		signal := e.aggregateMarket(marketType, quotes, stats)
		if signal == nil {
			continue
		}
		game.Markets[marketType] = signal
	}

	game.BestMarket = pickBestMarket(game.Markets)
	game.PlayerProps = e.aggregateProps(snap.PropQuotes, stats)
	return game
}

// pickBestMarket returns the market with the highest best-selection EV
// among those that reached PLAY, or nil when none did.
func pickBestMarket(markets map[models.MarketType]*models.MarketSignal) *models.MarketType {
	var best *models.MarketType
	bestEV := 0.0
	for mt, sig := range markets {
		if sig.Decision != models.DecisionPlay {
			continue
		}
		view := sig.Best()
		if view == nil || view.EV == nil {
			continue
		}
		if best == nil || *view.EV > bestEV {
			mt := mt
			best = &mt
			bestEV = *view.EV
		}
	}
	return best
}
