// Package logger provides collector logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CollectorLogger provides dedicated logging for odds collection.
type CollectorLogger struct {
	*logrus.Entry
}

// NewCollectorLogger creates a new collector logger.
func NewCollectorLogger(baseLogger *logrus.Logger) *CollectorLogger {
	return &CollectorLogger{
		Entry: baseLogger.WithField("component", "collector"),
	}
}

// LogFetchCycle logs a completed fetch cycle against the upstream API.
func (cl *CollectorLogger) LogFetchCycle(sportKey string, events, propEvents int, quotaRemaining int, duration time.Duration) {
	cl.WithFields(logrus.Fields{
		"sport_key":       sportKey,
		"events":          events,
		"prop_events":     propEvents,
		"quota_remaining": quotaRemaining,
		"duration_ms":     duration.Milliseconds(),
	}).Info("Odds fetch cycle completed")
}

// LogUpstreamError logs a failed upstream call.
func (cl *CollectorLogger) LogUpstreamError(endpoint string, statusCode int, err error) {
	cl.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status_code": statusCode,
	}).WithError(err).Error("Upstream odds request failed")
}

// LogQuotaWarning warns when the API quota is running low.
func (cl *CollectorLogger) LogQuotaWarning(remaining int) {
	cl.WithField("quota_remaining", remaining).Warn("Odds API quota running low")
}
