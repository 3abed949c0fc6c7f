package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"hobbystudio/pkg/logger"
)

// Handler processes one decoded message
type Handler func(ctx context.Context, msg *Message) error

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "hobbystudio-insights-workers",
		Topics:               []string{string(MessageTypeEventsImported)},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    5 * time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// Consumer runs a pool of consumer-group workers that dispatch to a Handler
type Consumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	handler Handler
	logger  *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewConsumer(config *ConsumerConfig, handler Handler) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:   group,
		config:  config,
		handler: handler,
		logger:  logger.GetDefault(),
	}, nil
}

// Start launches numWorkers consumers and returns immediately
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.logger.InfoWithContext(ctx, "Starting consumer workers", map[string]interface{}{
		"workers": numWorkers,
		"topics":  c.config.Topics,
		"group":   c.config.GroupID,
	})

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	h := &groupHandler{consumer: c, workerID: workerID}
	for {
		if err := c.group.Consume(ctx, c.config.Topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.logger.ErrorWithContext(ctx, "Consume failed", err, map[string]interface{}{"worker": workerID})
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) handleErrors() {
	for err := range c.group.Errors() {
		c.logger.ErrorWithContext(context.Background(), "Consumer group error", err, nil)
	}
}

// Stop cancels the workers, closes the group and waits for the workers to exit
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	consumer *Consumer
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case raw, ok := <-claim.Messages():
			if !ok || raw == nil {
				return nil
			}
			if err := h.consumer.process(session.Context(), raw.Value); err != nil {
				h.consumer.logger.ErrorWithContext(session.Context(), "Message processing failed", err, map[string]interface{}{
					"worker":    h.workerID,
					"topic":     raw.Topic,
					"partition": raw.Partition,
					"offset":    raw.Offset,
				})
			}
			// Failed messages are marked too; the next import re-triggers the same work.
			session.MarkMessage(raw, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return c.executeWithRetry(ctx, &msg)
}

func (c *Consumer) executeWithRetry(ctx context.Context, msg *Message) error {
	var err error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.config.MaxRetries {
			break
		}

		delay := c.config.RetryBackoffDuration * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("handler failed after %d attempts: %w", c.config.MaxRetries+1, err)
}
