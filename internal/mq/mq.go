package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"yasno-exporter/internal/schedule"
)

// Exchange and routing key constants.
const (
	ExchangeName = "yasno"

	RoutingStatusChange = "status.change"

	QueueStatusChange = "yasno.status_change"
)

// StatusChangeMsg is published when a group's projected power status
// flips from one value to another.
type StatusChangeMsg struct {
	Group    string    `json:"group"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	When     time.Time `json:"when"`
	UntilSec float64   `json:"until_sec"` // seconds until the next scheduled change
}

// SetupTopology declares the exchange, the queue, and its binding.
// Safe to call multiple times (all declarations are idempotent).
func SetupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueStatusChange, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueStatusChange, err)
	}
	if err := ch.QueueBind(QueueStatusChange, RoutingStatusChange, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueStatusChange, err)
	}
	return nil
}

// Publisher publishes messages to the RabbitMQ exchange.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  zerolog.Logger
}

// NewPublisher connects to RabbitMQ, sets up topology, and returns a Publisher.
func NewPublisher(url string, logger zerolog.Logger) (*Publisher, error) {
	conn, err := dialWithRetry(url, logger)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := SetupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, log: logger}, nil
}

// PublishStatusChange publishes a status change event.
func (p *Publisher) PublishStatusChange(ctx context.Context, msg StatusChangeMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}
	return p.ch.PublishWithContext(ctx, ExchangeName, RoutingStatusChange, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// StatusChanged publishes a status flip observed by the watcher.
// Publish errors are logged and dropped; event delivery is best effort.
func (p *Publisher) StatusChanged(group string, from, to schedule.Status, at time.Time, until time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.PublishStatusChange(ctx, StatusChangeMsg{
		Group:    group,
		From:     from.String(),
		To:       to.String(),
		When:     at,
		UntilSec: until.Seconds(),
	})
	if err != nil {
		p.log.Error().Err(err).Str("group", group).Msg("publish status change failed")
	}
}

// Close closes the channel and connection.
func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// dialWithRetry attempts to connect to RabbitMQ with exponential backoff.
func dialWithRetry(url string, logger zerolog.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := range 5 {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		wait := time.Duration(1<<uint(i)) * time.Second
		logger.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).Msg("rabbitmq connection failed")
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("connect to rabbitmq after 5 attempts: %w", err)
}
