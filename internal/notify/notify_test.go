package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	fields := map[string]string{
		TokenName:       "A",
		TokenAmount:     "1,000",
		TokenNextPayDay: "2024-06-10",
		TokenEndDay:     "2025-06-01",
	}

	tests := []struct {
		name     string
		kind     Kind
		template string
		expected string
	}{
		{"Payment tokens", KindPayment, "Hi [name], pay [amount] by [next_pay_day]", "Hi A, pay 1,000 by 2024-06-10"},
		{"Unknown token stays verbatim", KindPayment, "Hi [name], see [foo]", "Hi A, see [foo]"},
		{"Token from other vocabulary stays verbatim", KindRenewal, "Ends [end_day], pay [amount]", "Ends 2025-06-01, pay [amount]"},
		{"Known token without value stays verbatim", KindPayment, "[project_name] due", "[project_name] due"},
		{"Repeated tokens", KindPayment, "[name]/[name]", "A/A"},
		{"No tokens", KindRenewal, "plain text", "plain text"},
		{"Unclosed bracket", KindPayment, "[name", "[name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderTemplate(tt.kind, tt.template, fields))
		})
	}
}

func TestUnknownTokens(t *testing.T) {
	assert.Empty(t, UnknownTokens(KindPayment, "Hi [name], pay [amount] by [next_pay_day] for [project_name]"))
	assert.Equal(t, []string{"foo", "end_day"}, UnknownTokens(KindPayment, "[foo] [name] [end_day] [foo]"))
	assert.Equal(t, []string{"amount"}, UnknownTokens(KindRenewal, "[name] [amount] [end_day]"))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("renewal")
	assert.True(t, ok)
	assert.Equal(t, KindRenewal, k)

	_, ok = ParseKind("sms")
	assert.False(t, ok)

	assert.Equal(t, []string{"amount", "name", "next_pay_day", "project_name"}, Vocabulary(KindPayment))
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("zh-TW")
	assert.Equal(t, "2024/6/10", f.Date(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1,000", f.Amount(decimal.NewFromInt(1000)))
	assert.Equal(t, "12,500", f.Amount(decimal.RequireFromString("12500.00")))
	assert.Equal(t, "1,234.50", f.Amount(decimal.RequireFromString("1234.5")))

	en := NewFormatter("en-US")
	assert.Equal(t, "6/10/2024", en.Date(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)))

	fallback := NewFormatter("not a locale!!")
	assert.Equal(t, "2024/6/10", fallback.Date(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)))
}

func TestComposer_Compose(t *testing.T) {
	next := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	contract := &models.Contract{
		ID:              7,
		CustomerID:      3,
		Name:            "A棟 3F",
		PeriodPrice:     decimal.NewFromInt(1000),
		NextPaymentDate: &next,
		ContractEndDate: &end,
	}
	customer := &models.Customer{ID: 3, Name: "王小明", ChannelID: "U123"}
	composer := NewComposer(NewFormatter("zh-TW"))

	t.Run("Payment reminder", func(t *testing.T) {
		msg, err := composer.Compose(KindPayment, "[name] 您好，[project_name] 請於 [next_pay_day] 繳納 [amount] 元", customer, contract)
		require.NoError(t, err)
		assert.Equal(t, "王小明 您好，A棟 3F 請於 2024/6/10 繳納 1,000 元", msg.Text)
		assert.Equal(t, "U123", msg.ChannelID)
		assert.Equal(t, uint(7), msg.ContractID)
		assert.Equal(t, KindPayment, msg.Kind)
	})

	t.Run("Renewal reminder", func(t *testing.T) {
		msg, err := composer.Compose(KindRenewal, "[name]，合約 [end_day] 到期 [amount]", customer, contract)
		require.NoError(t, err)
		assert.Equal(t, "王小明，合約 2025/6/1 到期 [amount]", msg.Text)
	})

	t.Run("Missing channel", func(t *testing.T) {
		_, err := composer.Compose(KindPayment, "[name]", &models.Customer{ID: 3, Name: "x", ChannelID: "  "}, contract)
		assert.ErrorIs(t, err, ErrMissingChannelIdentifier)

		_, err = composer.Compose(KindPayment, "[name]", nil, contract)
		assert.ErrorIs(t, err, ErrMissingChannelIdentifier)
	})

	t.Run("Missing date leaves token", func(t *testing.T) {
		bare := &models.Contract{ID: 8, Name: "B", PeriodPrice: decimal.NewFromInt(500)}
		msg, err := composer.Compose(KindPayment, "[project_name] [next_pay_day] [amount]", customer, bare)
		require.NoError(t, err)
		assert.Equal(t, "B [next_pay_day] 500", msg.Text)
	})
}

type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []Message
	calls    int
}

func (s *fakeSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("channel unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type brokenLedger struct{}

func (brokenLedger) MarkSent(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenLedger) Forget(context.Context, string) error { return nil }

func fastOptions() DispatcherOptions {
	return DispatcherOptions{RatePerSecond: 1000, Burst: 10, MaxAttempts: 3}
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	msg := Message{ChannelID: "U1", Kind: KindPayment, ContractID: 1, Text: "hi"}
	key := DedupeKey(1, "payment_near_due", time.Date(2024, time.June, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "reminder:1:payment_near_due:2024-06-06", key)

	t.Run("Sends once per key", func(t *testing.T) {
		sender := &fakeSender{}
		d := NewDispatcher(sender, NewMemoryLedger(), fastOptions())

		sent, err := d.Dispatch(ctx, msg, key)
		require.NoError(t, err)
		assert.True(t, sent)

		sent, err = d.Dispatch(ctx, msg, key)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("Retries transient failures", func(t *testing.T) {
		sender := &fakeSender{failures: 2}
		d := NewDispatcher(sender, NewMemoryLedger(), fastOptions())

		sent, err := d.Dispatch(ctx, msg, key)
		require.NoError(t, err)
		assert.True(t, sent)
		assert.Equal(t, 3, sender.calls)
	})

	t.Run("Gives up and releases key", func(t *testing.T) {
		sender := &fakeSender{failures: 5}
		ledger := NewMemoryLedger()
		d := NewDispatcher(sender, ledger, fastOptions())

		sent, err := d.Dispatch(ctx, msg, key)
		assert.False(t, sent)
		assert.ErrorIs(t, err, ErrDispatchFailed)
		assert.Equal(t, 3, sender.calls)

		fresh, err := ledger.MarkSent(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("Ledger outage still sends", func(t *testing.T) {
		sender := &fakeSender{}
		d := NewDispatcher(sender, brokenLedger{}, fastOptions())

		sent, err := d.Dispatch(ctx, msg, key)
		require.NoError(t, err)
		assert.True(t, sent)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		sender := &fakeSender{}
		d := NewDispatcher(sender, nil, fastOptions())

		sent, err := d.Dispatch(cancelled, msg, key)
		assert.False(t, sent)
		assert.ErrorIs(t, err, ErrDispatchFailed)
		assert.Zero(t, sender.calls)
	})
}

func TestMemoryLedger_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 6, 8, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	ledger.now = func() time.Time { return now }

	fresh, _ := ledger.MarkSent(ctx, "k", time.Hour)
	assert.True(t, fresh)
	fresh, _ = ledger.MarkSent(ctx, "k", time.Hour)
	assert.False(t, fresh)

	now = now.Add(2 * time.Hour)
	fresh, _ = ledger.MarkSent(ctx, "k", time.Hour)
	assert.True(t, fresh)
}

func TestMemoryLedger_PrunesExpiredKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 6, 8, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	ledger.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		_, err := ledger.MarkSent(ctx, key, time.Hour)
		require.NoError(t, err)
	}
	_, err := ledger.MarkSent(ctx, "long", 48*time.Hour)
	require.NoError(t, err)
	assert.Len(t, ledger.entries, 4)

	// Within the prune interval expired keys are kept
	now = now.Add(90 * time.Minute)
	ledger.nextPrune = now.Add(time.Second)
	_, err = ledger.MarkSent(ctx, "d", time.Hour)
	require.NoError(t, err)
	assert.Len(t, ledger.entries, 5)

	now = now.Add(pruneInterval)
	_, err = ledger.MarkSent(ctx, "e", time.Hour)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"long", "d", "e"}, keys(ledger.entries))
}

func keys(m map[string]time.Time) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
