package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/core"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 5
	openTimeout = 30 * time.Second
	maxBackoff  = 30 * time.Second
)

var errDeliveriesClosed = errors.New("delivery channel closed: connection closed")

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient dials the broker and declares the exchange, queue and binding.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if _, err := client.ensureChannel(); err != nil {
		return nil, err
	}
	return client, nil
}

// ensureChannel returns the open channel, reconnecting when needed.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn, c.channel = conn, channel
	return channel, nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on the direct exchange.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishRecordAdded publishes a record-added event. It fails fast while the
// circuit breaker is open.
func (c *Client) PublishRecordAdded(ctx context.Context, kind core.RecordKind, id string, date core.Date) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, skipping publish of %s", id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := NewRecordAddedMessage(kind, id, date).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published record added message",
		"id", id,
		"kind", kind,
		"date", date,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeRecordAdded delivers record-added events to handler until ctx is
// cancelled. Deliveries are acked on success, requeued on handler error and
// dropped when undecodable. Lost connections are re-established with
// exponential backoff.
func (c *Client) ConsumeRecordAdded(ctx context.Context, handler func(context.Context, *RecordAddedMessage) error) error {
	attempt := 0
	for {
		started, err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}
		if started {
			attempt = 0
		}

		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP consumer lost connection, retrying",
			"error", err,
			"attempt", attempt,
			"backoff", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *RecordAddedMessage) error) (bool, error) {
	ch, err := c.ensureChannel()
	if err != nil {
		return false, err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return false, fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return false, fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming record added messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return true, ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return true, errDeliveriesClosed
			}
			settle(ctx, delivery.Body, delivery, handler)
		}
	}
}

// acknowledger is the part of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(ctx context.Context, body []byte, ack acknowledger, handler func(context.Context, *RecordAddedMessage) error) {
	msg, err := RecordAddedMessageFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		_ = ack.Nack(false, false) // reject and don't requeue
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"id", msg.ID,
			"kind", msg.Kind)
		_ = ack.Nack(false, true) // reject and requeue
		return
	}

	_ = ack.Ack(false)
	slog.DebugContext(ctx, "Processed record added message", "id", msg.ID, "kind", msg.Kind)
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	if time.Since(c.lastFailure) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordFailure() {
	c.lastFailure = time.Now()
	n := atomic.AddInt64(&c.failureCount, 1)
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// exponentialBackoff doubles from one second and caps at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	return min(time.Second<<attempt, maxBackoff)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "eof", "broken pipe", "closed"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if err != nil && !errors.Is(err, amqp091.ErrClosed) {
			return err
		}
	}
	return nil
}
