package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	declareErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return c.declareErr
}

func (c *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_Send(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "reminders")
	require.NoError(t, err)
	assert.Equal(t, []string{"reminders:direct"}, ch.declared)

	msg := notify.Message{ChannelID: "U1", Kind: notify.KindRenewal, ContractID: 4, Text: "hello"}
	require.NoError(t, p.Send(context.Background(), msg))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "reminders", got.exchange)
	assert.Equal(t, "renewal", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var decoded notify.Message
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, msg, decoded)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_Errors(t *testing.T) {
	_, err := NewPublisher(&fakeChannel{declareErr: errors.New("access refused")}, "reminders")
	assert.Error(t, err)

	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewPublisher(ch, "reminders")
	require.NoError(t, err)
	assert.Error(t, p.Send(context.Background(), notify.Message{Kind: notify.KindPayment}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, notify.Message{}), context.Canceled)
}
