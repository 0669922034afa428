// Package scheduler drives periodic snapshot refreshes on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/service"
)

// Scheduler manages the recurring snapshot refresh job. All schedules
// run in UTC.
type Scheduler struct {
	cron        *cron.Cron
	snapshotSvc *service.SnapshotService
	logger      *logrus.Entry
	mu          sync.RWMutex
	isRunning   bool
	jobIDs      []cron.EntryID
	refreshWait time.Duration
}

// NewScheduler creates a scheduler around the snapshot service.
func NewScheduler(snapshotSvc *service.SnapshotService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		snapshotSvc: snapshotSvc,
		logger:      logger.WithField("component", "scheduler"),
		jobIDs:      make([]cron.EntryID, 0),
		refreshWait: 2 * time.Minute,
	}
}

// ScheduleRefresh registers the snapshot refresh job under the given
// cron expression.
func (s *Scheduler) ScheduleRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshWait)
		defer cancel()

		snap, err := s.snapshotSvc.Refresh(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled snapshot refresh failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"games":           len(snap.Games),
			"quota_remaining": snap.QuotaRemaining,
		}).Info("Scheduled snapshot refresh completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled snapshot refresh job")

	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits for any in-flight job to finish, then stops the
// scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled refresh, or the zero
// time when the scheduler is idle.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
