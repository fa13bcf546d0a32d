package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Config names the broker objects the client uses.
type Config struct {
	URL       string
	Exchange  string
	Queue     string
	ResultKey string
}

// Client is an AMQP connection with the check and result queues declared.
type Client struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	cfg     Config
	logger  *slog.Logger
}

// Dial connects to the broker and declares the exchange and queues.
func Dial(cfg Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logger:  common.OrDefault(logger),
	}

	if err := c.setup(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return c, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.cfg.Exchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Requests are routed by queue name; results go to a queue named after
	// the result key so they survive until a reader picks them up.
	for _, name := range []string{c.cfg.Queue, c.cfg.ResultKey} {
		if _, err := c.channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		if err := c.channel.QueueBind(name, name, c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", name, err)
		}
	}

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	return nil
}

// SubmitCheck publishes a check request to the request queue.
func (c *Client) SubmitCheck(ctx context.Context, req CheckRequest) error {
	body, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	if err := c.publish(ctx, c.cfg.Queue, body); err != nil {
		return err
	}
	c.logger.Info("submitted check request", "id", req.ID, "queue", c.cfg.Queue)
	return nil
}

// PublishResult publishes a check result under the result key.
func (c *Client) PublishResult(ctx context.Context, result CheckResult) error {
	body, err := result.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return c.publish(ctx, c.cfg.ResultKey, body)
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.cfg.Exchange, // exchange
		routingKey,     // routing key
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
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Consume feeds request deliveries to p until ctx is canceled.
func (c *Client) Consume(ctx context.Context, p *Processor) error {
	msgs, err := c.channel.Consume(
		c.cfg.Queue, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.Info("consuming check requests", "queue", c.cfg.Queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopping consumer", "reason", ctx.Err())
			return nil
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.settle(delivery, p.Handle(ctx, delivery.Body))
		}
	}
}

func (c *Client) settle(delivery amqp091.Delivery, handleErr error) {
	var err error
	switch Settle(handleErr) {
	case Ack:
		err = delivery.Ack(false)
	case Drop:
		c.logger.Warn("dropping malformed message", "error", handleErr)
		err = delivery.Nack(false, false)
	case Requeue:
		common.LogError(c.logger, handleErr, "check request failed, requeueing",
			common.Fields{"queue": c.cfg.Queue, "delivery_tag": delivery.DeliveryTag})
		err = delivery.Nack(false, true)
	}
	if err != nil {
		common.LogError(c.logger, err, "failed to settle delivery",
			common.Fields{"queue": c.cfg.Queue, "delivery_tag": delivery.DeliveryTag})
	}
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
