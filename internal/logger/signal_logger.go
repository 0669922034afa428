// Package logger provides signal-pipeline logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SignalLogger provides dedicated logging for aggregation passes.
type SignalLogger struct {
	*logrus.Entry
}

// NewSignalLogger creates a new signal logger.
func NewSignalLogger(baseLogger *logrus.Logger) *SignalLogger {
	return &SignalLogger{
		Entry: baseLogger.WithField("component", "signal"),
	}
}

// LogAggregationPass logs the outcome of one full aggregation pass.
func (sl *SignalLogger) LogAggregationPass(gamesIn, gamesOut, expired int, plays, leans, passes int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"games_in":    gamesIn,
		"games_out":   gamesOut,
		"expired":     expired,
		"plays":       plays,
		"leans":       leans,
		"passes":      passes,
		"duration_ms": durationMs,
	}).Info("Aggregation pass completed")
}

// LogMarketDecision logs an individual market's gate outcome.
func (sl *SignalLogger) LogMarketDecision(gameID, marketType, decision string, lean, ev, stability, confidence float64, bestBook string, bestOdds int) {
	sl.WithFields(logrus.Fields{
		"game_id":     gameID,
		"market_type": marketType,
		"decision":    decision,
		"lean":        lean,
		"ev":          ev,
		"stability":   stability,
		"confidence":  confidence,
		"best_book":   bestBook,
		"best_odds":   bestOdds,
	}).Debug("Market decision made")
}

// LogDroppedQuotes logs per-cycle data-quality drop counts.
func (sl *SignalLogger) LogDroppedQuotes(malformed, degenerate, thinSample int) {
	if malformed == 0 && degenerate == 0 && thinSample == 0 {
		return
	}
	sl.WithFields(logrus.Fields{
		"malformed":   malformed,
		"degenerate":  degenerate,
		"thin_sample": thinSample,
	}).Warn("Quotes dropped during aggregation")
}
