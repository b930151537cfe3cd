package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_Today(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := NewJobService(worker, nil, taipei)
	// 17:30 UTC on June 5 is already June 6 in Taipei
	svc.now = func() time.Time { return time.Date(2024, time.June, 5, 17, 30, 0, 0, time.UTC) }

	assert.Equal(t, day(2024, time.June, 6), svc.Today())
}

func TestJobService_RunDailySweep(t *testing.T) {
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	h := newSweepHarness(sweepFixture())
	svc := NewJobService(worker, h.svc, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, time.June, 6, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.RunDailySweep(context.Background()))

	status := svc.GetStatus()
	last, ok := status["last_sweep"].(*SweepSummary)
	require.True(t, ok)
	assert.Equal(t, "2024-06-06", last.Today)
	assert.Equal(t, 7, last.Items)
	assert.Equal(t, 2, last.Dispatched)
	assert.Equal(t, TriggerDaily, last.Trigger)
	assert.Nil(t, status["last_manual_sweep"].(*SweepSummary))
	assert.Equal(t, "UTC", status["timezone"])
}

func TestJobService_NextSweepAt(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svc := NewJobService(worker, nil, taipei)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"Before offset", time.Date(2024, time.June, 6, 0, 1, 0, 0, taipei), time.Date(2024, time.June, 6, 0, 5, 0, 0, taipei)},
		{"During the day", time.Date(2024, time.June, 6, 9, 0, 0, 0, taipei), time.Date(2024, time.June, 7, 0, 5, 0, 0, taipei)},
		{"Exactly at offset", time.Date(2024, time.June, 6, 0, 5, 0, 0, taipei), time.Date(2024, time.June, 7, 0, 5, 0, 0, taipei)},
		{"Month end", time.Date(2024, time.June, 30, 23, 0, 0, 0, taipei), time.Date(2024, time.July, 1, 0, 5, 0, 0, taipei)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.now = func() time.Time { return tt.now }
			assert.True(t, tt.want.Equal(svc.NextSweepAt()), "got %s", svc.NextSweepAt())
		})
	}
}

func TestJobService_TriggerSweep(t *testing.T) {
	tests := []struct {
		name           string
		branchID       uint
		wantItems      int
		wantDispatched int
	}{
		{"All branches", 0, 7, 2},
		{"Other branch only", 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			worker := jobs.NewWorker(1)
			defer worker.Shutdown()

			h := newSweepHarness(sweepFixture())
			svc := NewJobService(worker, h.svc, time.UTC)
			svc.now = func() time.Time { return time.Date(2024, time.June, 6, 9, 0, 0, 0, time.UTC) }

			require.NoError(t, svc.TriggerSweep(tt.branchID))

			var manual *SweepSummary
			require.Eventually(t, func() bool {
				manual, _ = svc.GetStatus()["last_manual_sweep"].(*SweepSummary)
				return manual != nil
			}, 2*time.Second, 10*time.Millisecond)

			assert.Equal(t, TriggerManual, manual.Trigger)
			assert.Equal(t, tt.branchID, manual.BranchID)
			assert.Equal(t, tt.wantItems, manual.Items)
			assert.Equal(t, tt.wantDispatched, manual.Dispatched)
			assert.Len(t, h.sender.sent, tt.wantDispatched)

			daily, _ := svc.GetStatus()["last_sweep"].(*SweepSummary)
			assert.Nil(t, daily, "a manual run does not replace the daily summary")

			assert.Eventually(t, func() bool {
				runs, _ := svc.GetStatus()["last_runs"].(map[string]jobs.JobRun)
				run, ok := runs[JobManualSweep]
				return ok && run.Error == ""
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestJobService_ScheduleDailySweep_ReschedulesFromWallClock(t *testing.T) {
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	h := newSweepHarness(sweepFixture())
	svc := NewJobService(worker, h.svc, time.UTC)

	// The first schedule lands in the past and runs at once; every later
	// reading of the clock is the real time, so the next run is tomorrow.
	var mu sync.Mutex
	calls := 0
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return time.Date(2024, time.June, 6, 0, 1, 0, 0, time.UTC)
		}
		return time.Now()
	}

	svc.ScheduleDailySweep()

	require.Eventually(t, func() bool {
		_, ok := worker.LastRun(JobDailySweep)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	daily, _ := svc.GetStatus()["last_sweep"].(*SweepSummary)
	require.NotNil(t, daily)
	assert.Equal(t, TriggerDaily, daily.Trigger)

	assert.Never(t, func() bool {
		return worker.GetStats().CompletedJobs > 1
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestJobService_TriggerSweepAfterShutdown(t *testing.T) {
	worker := jobs.NewWorker(1)
	worker.Shutdown()

	svc := NewJobService(worker, nil, time.UTC)
	assert.ErrorIs(t, svc.TriggerSweep(0), ErrWorkerStopped)
}
