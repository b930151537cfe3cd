// Package queue hands rendered reminders to the messaging gateway over AMQP.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/rentdesk-api/internal/notify"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
	"github.com/streadway/amqp"
)

// Channel is the subset of *amqp.Channel the publisher uses
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Connect dials the broker, retrying a fixed number of times
func Connect(url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "queue.Connect"
	var conn *amqp.Connection
	var err error

	if retries < 1 {
		retries = 1
	}
	for range retries {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("[Queue] Broker not reachable, retrying", "error", err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// Publisher implements notify.Sender by publishing each message as JSON.
// The routing key is the message kind.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

// NewPublisher declares the exchange and returns a publisher bound to it
func NewPublisher(ch Channel, exchange string) (*Publisher, error) {
	const op = "queue.NewPublisher"
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

// OpenPublisher opens a channel on conn and wraps it in a Publisher
func OpenPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("queue.OpenPublisher: %w", err)
	}
	return NewPublisher(ch, exchange)
}

func (p *Publisher) Send(ctx context.Context, msg notify.Message) error {
	const op = "queue.Publish"
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// amqp.Channel is not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		string(msg.Kind),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
