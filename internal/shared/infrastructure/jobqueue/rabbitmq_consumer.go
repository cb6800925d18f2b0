package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aurumlife/aurum/pkg/observability"
)

const (
	// DefaultQueueName is the default work queue for scoring jobs.
	DefaultQueueName = "aurum.scoring"

	// DefaultMaxRetries is how many times a failed job is retried before
	// being abandoned.
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the delay before the first retry. Each
	// further retry doubles it.
	DefaultRetryBackoff = 60 * time.Second
)

// RabbitMQConsumer consumes scoring jobs from RabbitMQ. Failed jobs are
// parked in a companion retry queue with a per-message TTL; when the TTL
// expires the broker dead-letters them back onto the work queue.
type RabbitMQConsumer struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queue        string
	retryQueue   string
	exchange     string
	maxRetries   int
	retryBackoff time.Duration
	registry     *HandlerRegistry
	logger       *slog.Logger
	metrics      observability.Metrics
	mu           sync.Mutex
	running      bool
	closeChan    chan struct{}
}

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL          string
	QueueName    string
	Exchange     string
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *slog.Logger
	Metrics      observability.Metrics
}

// NewRabbitMQConsumer connects to RabbitMQ and declares the work queue and
// its retry queue.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *HandlerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Expired messages fall back onto the work queue via the default
	// exchange.
	retryQueue := cfg.QueueName + ".retry"
	_, err = ch.QueueDeclare(
		retryQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": cfg.QueueName,
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare retry queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"retry_queue", retryQueue,
		"exchange", cfg.Exchange,
	)

	return &RabbitMQConsumer{
		conn:         conn,
		channel:      ch,
		queue:        cfg.QueueName,
		retryQueue:   retryQueue,
		exchange:     cfg.Exchange,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		registry:     registry,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		closeChan:    make(chan struct{}),
	}, nil
}

// RegisterHandler registers a job handler and binds its routing keys to the
// work queue.
func (c *RabbitMQConsumer) RegisterHandler(handler JobHandler) {
	c.registry.Register(handler)

	for _, key := range handler.RoutingKeys() {
		if err := c.bindQueue(key); err != nil {
			c.logger.Error("failed to bind queue for routing key",
				"routing_key", key,
				"error", err,
			)
		}
	}
}

func (c *RabbitMQConsumer) bindQueue(routingKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.QueueBind(
		c.queue,
		routingKey,
		c.exchange,
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.logger.Debug("bound queue to routing key",
		"queue", c.queue,
		"routing_key", routingKey,
	)

	return nil
}

// Start begins consuming jobs from the work queue.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	// One job at a time; fan-outs multiply fast enough already.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (we'll manually ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming jobs", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()

		case <-c.closeChan:
			c.logger.Info("consumer close requested, stopping")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("message channel closed")
				return fmt.Errorf("message channel closed unexpectedly")
			}

			c.processMessage(ctx, msg)
		}
	}
}

func (c *RabbitMQConsumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	job := &Job{}
	if err := json.Unmarshal(msg.Body, job); err != nil {
		// A message we cannot decode will never succeed; drop it.
		c.logger.Error("failed to unmarshal job",
			"routing_key", msg.RoutingKey,
			"error", err,
		)
		c.ack(msg)
		return
	}

	// Retry redeliveries arrive via the default exchange with the queue
	// name as routing key; the envelope keeps the original.
	if job.RoutingKey == "" {
		job.RoutingKey = msg.RoutingKey
	}

	start := time.Now()
	err := c.registry.Dispatch(ctx, job)
	duration := time.Since(start)

	keyTag := observability.T("routing_key", job.RoutingKey)
	c.metrics.Timing("jobs.duration", duration, keyTag)

	if err == nil {
		c.metrics.Counter("jobs.processed", 1, keyTag)
		c.logger.Debug("job processed",
			"routing_key", job.RoutingKey,
			"job_id", job.JobID,
			"attempt", job.Attempt,
			"duration_ms", duration.Milliseconds(),
		)
		c.ack(msg)
		return
	}

	if IsFatal(err) || job.Attempt >= c.maxRetries {
		c.metrics.Counter("jobs.abandoned", 1, keyTag)
		c.logger.Error("job abandoned",
			"routing_key", job.RoutingKey,
			"job_id", job.JobID,
			"attempt", job.Attempt,
			"fatal", IsFatal(err),
			"error", err,
		)
		c.ack(msg)
		return
	}

	delay := RetryBackoff(c.retryBackoff, job.Attempt)
	if retryErr := c.scheduleRetry(ctx, job, delay); retryErr != nil {
		c.logger.Error("failed to schedule retry, requeueing",
			"routing_key", job.RoutingKey,
			"job_id", job.JobID,
			"error", retryErr,
		)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	c.metrics.Counter("jobs.retried", 1, keyTag)
	c.logger.Warn("job scheduled for retry",
		"routing_key", job.RoutingKey,
		"job_id", job.JobID,
		"attempt", job.Attempt+1,
		"delay", delay,
		"error", err,
	)
	c.ack(msg)
}

func (c *RabbitMQConsumer) scheduleRetry(ctx context.Context, job *Job, delay time.Duration) error {
	retry := *job
	retry.Attempt = job.Attempt + 1

	body, err := retry.Encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.channel.PublishWithContext(ctx,
		"",           // default exchange
		c.retryQueue, // straight to the retry queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
			Timestamp:    time.Now().UTC(),
		},
	)
}

func (c *RabbitMQConsumer) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
	}
}

// Close closes the consumer connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	close(c.closeChan)
	c.running = false

	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
