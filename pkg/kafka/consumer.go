package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrDuplicate is returned by handlers that recognised an already-processed
// event. The consumer commits it without retrying.
var ErrDuplicate = errors.New("duplicate event")

// Handler processes one event.
type Handler func(ctx context.Context, event *Event) error

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	MaxRetries int
	RetryDelay time.Duration
}

// Consumer reads one topic with a consumer group. Each message is handed to
// the handler up to MaxRetries times; a message that still fails goes to the
// DLQ (when set) and is committed so the partition keeps moving.
type Consumer struct {
	reader    MessageReader
	cfg       ConsumerConfig
	handler   Handler
	dlq       *DLQ
	logger    *slog.Logger
	closeOnce sync.Once
}

func NewConsumer(cfg ConsumerConfig, h Handler, l *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   cfg.Topic,
	})
	return NewConsumerWithReader(r, cfg, h, l)
}

func NewConsumerWithReader(r MessageReader, cfg ConsumerConfig, h Handler, l *slog.Logger) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	return &Consumer{reader: r, cfg: cfg, handler: h, logger: l}
}

// WithDLQ enables dead-lettering.
func (c *Consumer) WithDLQ(d *DLQ) *Consumer {
	c.dlq = d
	return c
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("topic", c.cfg.Topic), slog.String("group", c.cfg.GroupID))
	defer c.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("fetch message", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.cfg.RetryDelay):
			}
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit message", slog.String("error", err.Error()), slog.Int64("offset", msg.Offset))
		}
	}
}

// process returns false only when ctx was cancelled mid-retry, in which case
// the message must not be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		consumerProcessed.WithLabelValues(msg.Topic, "malformed").Inc()
		c.logger.Error("malformed event", slog.String("error", err.Error()), slog.Int64("offset", msg.Offset))
		c.deadLetter(ctx, msg, err)
		return true
	}

	start := time.Now()
	defer func() { consumerDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds()) }()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			consumerProcessed.WithLabelValues(msg.Topic, "ok").Inc()
			return true
		}
		if errors.Is(lastErr, ErrDuplicate) {
			consumerProcessed.WithLabelValues(msg.Topic, "duplicate").Inc()
			return true
		}
		c.logger.Warn("handler failed",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(time.Duration(attempt) * c.cfg.RetryDelay):
			}
		}
	}

	consumerProcessed.WithLabelValues(msg.Topic, "failed").Inc()
	c.logger.Error("handler exhausted retries",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
		slog.String("error", lastErr.Error()),
	)
	c.deadLetter(ctx, msg, lastErr)
	return true
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.cfg.GroupID); err != nil {
		c.logger.Error("dead-letter message", slog.String("error", err.Error()))
	}
}

// Close is idempotent.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
