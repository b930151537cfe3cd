package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/metrics"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
	"golang.org/x/time/rate"
)

var ErrDispatchFailed = errors.New("notification dispatch failed")

// Sender delivers a rendered message to the messaging channel
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SentLedger remembers which reminders already went out.
// MarkSent reports false when the key was already present.
type SentLedger interface {
	MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// DedupeKey identifies one reminder for one contract on one day
func DedupeKey(contractID uint, reason string, day time.Time) string {
	return fmt.Sprintf("reminder:%d:%s:%s", contractID, reason, day.Format("2006-01-02"))
}

type DispatcherOptions struct {
	RatePerSecond float64
	Burst         int
	MaxAttempts   int
	RetryDelay    time.Duration
	DedupeTTL     time.Duration
}

func (o DispatcherOptions) withDefaults() DispatcherOptions {
	if o.RatePerSecond <= 0 {
		o.RatePerSecond = 5
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if o.DedupeTTL <= 0 {
		o.DedupeTTL = 36 * time.Hour
	}
	return o
}

// Dispatcher sends messages through a Sender at a bounded rate, retrying
// transient failures and skipping reminders already sent
type Dispatcher struct {
	sender  Sender
	ledger  SentLedger
	limiter *rate.Limiter
	opts    DispatcherOptions
}

// NewDispatcher creates a dispatcher. ledger may be nil to disable dedupe.
func NewDispatcher(sender Sender, ledger SentLedger, opts DispatcherOptions) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		sender:  sender,
		ledger:  ledger,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		opts:    opts,
	}
}

// Dispatch delivers msg once per dedupeKey. It returns sent=false with a nil
// error when the key was already recorded.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message, dedupeKey string) (bool, error) {
	if d.ledger != nil && dedupeKey != "" {
		fresh, err := d.ledger.MarkSent(ctx, dedupeKey, d.opts.DedupeTTL)
		if err != nil {
			// Ledger outage: prefer a duplicate over a missed reminder
			logger.Warn("[Dispatcher] Sent ledger unavailable", "key", dedupeKey, "error", err)
		} else if !fresh {
			metrics.Notifications.WithLabelValues(string(msg.Kind), metrics.ResultDuplicate).Inc()
			return false, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		if err := d.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		lastErr = d.sender.Send(ctx, msg)
		if lastErr == nil {
			metrics.Notifications.WithLabelValues(string(msg.Kind), metrics.ResultSent).Inc()
			return true, nil
		}

		logger.Warn("[Dispatcher] Send attempt failed",
			"contract_id", msg.ContractID,
			"attempt", attempt,
			"error", lastErr,
		)

		if attempt < d.opts.MaxAttempts && !sleep(ctx, d.opts.RetryDelay*time.Duration(attempt)) {
			lastErr = ctx.Err()
			break
		}
	}

	if d.ledger != nil && dedupeKey != "" {
		if err := d.ledger.Forget(context.WithoutCancel(ctx), dedupeKey); err != nil {
			logger.Warn("[Dispatcher] Could not release dedupe key", "key", dedupeKey, "error", err)
		}
	}
	metrics.Notifications.WithLabelValues(string(msg.Kind), metrics.ResultFailed).Inc()
	return false, fmt.Errorf("contract %d: %w: %v", msg.ContractID, ErrDispatchFailed, lastErr)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// LogSender writes messages to the application log instead of a channel
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info("[Notify] Reminder",
		"channel_id", msg.ChannelID,
		"kind", msg.Kind,
		"contract_id", msg.ContractID,
		"text", msg.Text,
	)
	return nil
}

// MemoryLedger is a process-local SentLedger. Expired keys are pruned as
// new ones are marked, at most once per pruneInterval.
type MemoryLedger struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	now       func() time.Time
	nextPrune time.Time
}

const pruneInterval = time.Minute

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryLedger) MarkSent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !now.Before(l.nextPrune) {
		for k, expires := range l.entries {
			if !now.Before(expires) {
				delete(l.entries, k)
			}
		}
		l.nextPrune = now.Add(pruneInterval)
	}

	if expires, ok := l.entries[key]; ok && now.Before(expires) {
		return false, nil
	}
	l.entries[key] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLedger) Forget(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
