// Package amqp carries ledger change notifications between API instances
// over RabbitMQ so every instance can refresh its live subscribers.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Antonio-217/controle-financeiro/internal/logger"
)

const (
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var (
	errMissingGroup  = errors.New("message has no group_id")
	errChannelClosed = errors.New("message channel closed")
)

// Client publishes and consumes ledger change messages on a fanout
// exchange. Each instance consumes from its own exclusive queue.
type Client struct {
	url          string
	exchangeName string
	instanceID   string
	log          *zap.SugaredLogger

	mu        sync.Mutex
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	queueName string
}

// NewClient dials the broker and declares the exchange and this instance's
// queue.
func NewClient(url, exchangeName, instanceID string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		instanceID:   instanceID,
		log:          logger.Named("amqp"),
	}
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	queueName, err := setup(channel, c.exchangeName)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.queueName = queueName
	c.mu.Unlock()
	return nil
}

func setup(channel *amqp091.Channel, exchangeName string) (string, error) {
	err := channel.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare exchange: %w", err)
	}

	// server-named, gone with the connection
	queue, err := channel.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name,   // queue name
		"",           // routing key, ignored by fanout
		exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("bind queue: %w", err)
	}

	return queue.Name, nil
}

// PublishLedgerChanged announces a change of the group's ledger.
func (c *Client) PublishLedgerChanged(ctx context.Context, groupID string) error {
	msg := NewLedgerChangedMessage(groupID, c.instanceID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return errChannelClosed
	}

	err = channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		"",             // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   msg.Timestamp,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.log.Debugw("Published ledger change",
		"group_id", groupID,
		"exchange", c.exchangeName,
	)
	return nil
}

// Notify publishes a change for the group, logging failures. Live clients
// on other instances miss the update when publishing fails.
func (c *Client) Notify(groupID string) {
	if err := c.PublishLedgerChanged(context.Background(), groupID); err != nil {
		c.log.Warnw("Failed to publish ledger change", "group_id", groupID, "error", err)
	}
}

// ConsumeLedgerChanges hands every message published by another instance to
// handler until ctx is done or the channel closes.
func (c *Client) ConsumeLedgerChanges(ctx context.Context, handler func(*LedgerChangedMessage) error) error {
	c.mu.Lock()
	channel, queueName := c.channel, c.queueName
	c.mu.Unlock()
	if channel == nil {
		return errChannelClosed
	}

	msgs, err := channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		true,      // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log.Infow("Started consuming ledger changes", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			c.log.Infow("Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errChannelClosed
			}
			c.handleDelivery(delivery, handler)
		}
	}
}

func (c *Client) handleDelivery(delivery amqp091.Delivery, handler func(*LedgerChangedMessage) error) {
	msg, err := LedgerChangedMessageFromJSON(delivery.Body)
	if err != nil {
		c.log.Errorw("Failed to unmarshal message", "error", err)
		delivery.Nack(false, false) // reject and don't requeue
		return
	}

	if msg.InstanceID == c.instanceID {
		// already applied locally
		delivery.Ack(false)
		return
	}

	if err := handler(msg); err != nil {
		c.log.Errorw("Failed to handle message", "error", err, "group_id", msg.GroupID)
		delivery.Nack(false, true) // reject and requeue
		return
	}

	delivery.Ack(false)
}

// Run consumes until ctx is done, reconnecting with exponential backoff
// when the broker connection drops.
func (c *Client) Run(ctx context.Context, handler func(*LedgerChangedMessage) error) error {
	attempt := 0
	for {
		err := c.ConsumeLedgerChanges(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		for {
			wait := exponentialBackoff(attempt)
			c.log.Warnw("AMQP connection lost, reconnecting", "error", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			c.closeConnection()
			if err = c.connect(); err == nil {
				attempt = 0
				break
			}
			attempt++
		}
	}
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	return c.closeConnection()
}

func (c *Client) closeConnection() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		if errors.Is(err, amqp091.ErrClosed) {
			return nil
		}
		return err
	}
	return nil
}

// exponentialBackoff doubles from one second, capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errChannelClosed) || errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
