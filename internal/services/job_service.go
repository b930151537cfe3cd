package services

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/billing"
	"github.com/sjperalta/rentdesk-api/internal/jobs"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
)

// SweepSummary is a finished dispatching sweep, without its items
type SweepSummary struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	BranchID   uint      `json:"branch_id,omitempty"`
	Today      string    `json:"today"`
	Items      int       `json:"items"`
	Failures   int       `json:"failures"`
	Expired    int       `json:"expired"`
	Dispatched int       `json:"dispatched"`
	Skipped    int       `json:"skipped"`
	FinishedAt time.Time `json:"finished_at"`
}

type JobService struct {
	worker    *jobs.Worker
	reminders *ReminderService
	location  *time.Location
	now       func() time.Time

	mu              sync.RWMutex
	lastSweep       *SweepSummary
	lastManualSweep *SweepSummary
}

func NewJobService(worker *jobs.Worker, reminders *ReminderService, location *time.Location) *JobService {
	if location == nil {
		location = time.UTC
	}
	return &JobService{
		worker:    worker,
		reminders: reminders,
		location:  location,
		now:       time.Now,
	}
}

// Today is the current calendar date in the configured time zone
func (s *JobService) Today() time.Time {
	return billing.DateOnly(s.now().In(s.location))
}

// sweepOffset delays the daily run past local midnight
const sweepOffset = 5 * time.Minute

// Worker job names
const (
	JobDailySweep  = "daily_reminder_sweep"
	JobManualSweep = "manual_reminder_sweep"
)

// ScheduleDailySweep runs the dispatching sweep once a day, shortly after
// local midnight. Each run schedules the next one from the wall clock, so
// daylight saving changes do not shift the run time.
func (s *JobService) ScheduleDailySweep() {
	at := s.NextSweepAt()
	logger.Info("[Job] Daily reminder sweep scheduled", "run_at", at)
	s.worker.ScheduleAt(JobDailySweep, at, func(ctx context.Context) error {
		defer func() {
			if ctx.Err() == nil {
				s.ScheduleDailySweep()
			}
		}()
		return s.RunDailySweep(ctx)
	})
}

// NextSweepAt is the next local midnight plus the sweep offset
func (s *JobService) NextSweepAt() time.Time {
	now := s.now().In(s.location)
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location).Add(sweepOffset)
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.location).Add(sweepOffset)
	}
	return next
}

// RunDailySweep classifies every branch and sends due reminders
func (s *JobService) RunDailySweep(ctx context.Context) error {
	return s.runSweep(ctx, TriggerDaily, 0)
}

// TriggerSweep queues a dispatching sweep on the worker pool. A non-zero
// branchID limits it to that branch.
func (s *JobService) TriggerSweep(branchID uint) error {
	job := func(ctx context.Context) error {
		return s.runSweep(ctx, TriggerManual, branchID)
	}
	if !s.worker.EnqueueAsync(JobManualSweep, job) {
		return ErrWorkerStopped
	}
	return nil
}

func (s *JobService) runSweep(ctx context.Context, trigger string, branchID uint) error {
	result, err := s.reminders.Sweep(ctx, SweepOptions{
		Today:    s.Today(),
		BranchID: branchID,
		Dispatch: true,
		Trigger:  trigger,
	})
	if err != nil {
		return err
	}

	summary := &SweepSummary{
		RunID:      result.RunID.String(),
		Trigger:    trigger,
		BranchID:   branchID,
		Today:      result.Today,
		Items:      len(result.Items),
		Failures:   len(result.Failures),
		Expired:    result.Expired,
		Dispatched: result.Dispatched,
		Skipped:    result.Skipped,
		FinishedAt: s.now(),
	}

	s.mu.Lock()
	if trigger == TriggerDaily {
		s.lastSweep = summary
	} else {
		s.lastManualSweep = summary
	}
	s.mu.Unlock()
	return nil
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()

	s.mu.RLock()
	last, lastManual := s.lastSweep, s.lastManualSweep
	s.mu.RUnlock()

	runs := map[string]jobs.JobRun{}
	for _, name := range []string{JobDailySweep, JobManualSweep} {
		if run, ok := s.worker.LastRun(name); ok {
			runs[name] = run
		}
	}

	return map[string]interface{}{
		"active_jobs":       stats.ActiveJobs,
		"completed_jobs":    stats.CompletedJobs,
		"failed_jobs":       stats.FailedJobs,
		"queue_length":      stats.QueueLength,
		"max_concurrent":    stats.MaxConcurrent,
		"last_sweep":        last,
		"last_manual_sweep": lastManual,
		"last_runs":         runs,
		"timezone":          s.location.String(),
	}
}
