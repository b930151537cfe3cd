package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/metrics"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
)

// Job represents a background task. It must return when ctx is cancelled.
type Job func(ctx context.Context) error

type task struct {
	name string
	run  Job
}

// Worker runs named jobs on a bounded pool and drives the recurring schedules
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	queue    chan task
	asyncSem chan struct{}
	closed   atomic.Bool

	statsMu sync.RWMutex
	stats   WorkerStats
	lastRun map[string]JobRun
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// JobRun describes the most recent run of a named job
type JobRun struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// NewWorker creates a worker with N queue processors. Async jobs may use
// twice as many goroutines, never fewer than 10.
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan task, 100),
		asyncSem: make(chan struct{}, asyncLimit),
		lastRun:  make(map[string]JobRun),
	}
	w.stats.MaxConcurrent = asyncLimit

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}
	return w
}

// Enqueue hands a job to the pool. When the queue is full the job runs on the
// caller's goroutine. It reports false once the worker is shut down.
func (w *Worker) Enqueue(name string, job Job) bool {
	if w.closed.Load() {
		logger.Warn("[Worker] Rejected job after shutdown", "job", name)
		return false
	}
	select {
	case w.queue <- task{name: name, run: job}:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
		w.run(name, job)
	}
	return true
}

// EnqueueAsync runs a job on its own goroutine, bounded by the async limit
func (w *Worker) EnqueueAsync(name string, job Job) bool {
	if w.closed.Load() {
		logger.Warn("[Worker] Rejected async job after shutdown", "job", name)
		return false
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case w.asyncSem <- struct{}{}:
		case <-w.ctx.Done():
			return
		}
		defer func() { <-w.asyncSem }()
		w.run(name, job)
	}()
	return true
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t, ok := <-w.queue:
			if !ok {
				return
			}
			logger.Debug("[Worker] Picked up job", "worker", workerID, "job", t.name)
			w.run(t.name, t.run)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals, first after one interval
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, job, false)
}

// ScheduleEveryImmediate runs a job once now, then at fixed intervals, so a
// restarted process does not wait a full interval for its first run.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, job, true)
}

func (w *Worker) schedule(name string, interval time.Duration, job Job, immediate bool) {
	if w.closed.Load() {
		logger.Warn("[Worker] Rejected schedule after shutdown", "job", name)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.run(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(name, job)
			}
		}
	}()
}

// ScheduleAt runs a job once at a specific time. A time in the past runs it now.
func (w *Worker) ScheduleAt(name string, at time.Time, job Job) {
	if w.closed.Load() {
		logger.Warn("[Worker] Rejected schedule after shutdown", "job", name)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(time.Until(at))
		defer timer.Stop()

		select {
		case <-w.ctx.Done():
		case <-timer.C:
			w.run(name, job)
		}
	}()
}

// run executes one job with panic recovery, stats and metrics
func (w *Worker) run(name string, job Job) {
	w.trackJobStart()
	start := time.Now()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = job(w.ctx)
	}()

	elapsed := time.Since(start)
	metrics.JobDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	run := JobRun{StartedAt: start, Duration: elapsed}
	if err != nil {
		run.Error = err.Error()
		metrics.JobRuns.WithLabelValues(name, metrics.ResultFailed).Inc()
		logger.Error("[Worker] Job failed", "job", name, "elapsed", elapsed, "error", err)
	} else {
		metrics.JobRuns.WithLabelValues(name, metrics.ResultSucceeded).Inc()
		logger.Info("[Worker] Job completed", "job", name, "elapsed", elapsed)
	}
	w.trackJobEnd(name, run)
}

// Shutdown cancels running jobs and waits for every goroutine to exit
func (w *Worker) Shutdown() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.cancel()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	return stats
}

// LastRun returns the most recent run of a named job
func (w *Worker) LastRun(name string) (JobRun, bool) {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	run, ok := w.lastRun[name]
	return run, ok
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// trackJobEnd records a finished run. CompletedJobs counts every finished
// run, so FailedJobs is a subset of it.
func (w *Worker) trackJobEnd(name string, run JobRun) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if run.Error != "" {
		w.stats.FailedJobs++
	}
	w.lastRun[name] = run
}
