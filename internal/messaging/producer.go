package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"hobbystudio/pkg/logger"
)

// Publisher defines the contract for announcing studio changes to other services
type Publisher interface {
	PublishEventsImported(ctx context.Context, studioID string, payload EventsImportedPayload) error
	PublishInsightsGenerated(ctx context.Context, studioID string, payload InsightsGeneratedPayload) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// ProducerConfig contains configuration for the Kafka publisher
type ProducerConfig struct {
	Brokers                []string
	EventsImportedTopic    string
	InsightsGeneratedTopic string
	RetryMax               int
	Timeout                time.Duration
	RequiredAcks           sarama.RequiredAcks
	CompressionType        sarama.CompressionCodec
	IdempotentWrites       bool
	MaxMessageBytes        int
}

// DefaultProducerConfig returns a default producer configuration
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:                []string{"localhost:9092"},
		EventsImportedTopic:    string(MessageTypeEventsImported),
		InsightsGeneratedTopic: string(MessageTypeInsightsGenerated),
		RetryMax:               3,
		Timeout:                10 * time.Second,
		RequiredAcks:           sarama.WaitForAll,
		CompressionType:        sarama.CompressionSnappy,
		IdempotentWrites:       true,
		MaxMessageBytes:        1000000,
	}
}

var ErrPublisherClosed = errors.New("publisher is closed")

// KafkaPublisher publishes messages with a sarama SyncProducer
type KafkaPublisher struct {
	client   sarama.Client
	producer sarama.SyncProducer
	config   *ProducerConfig
	logger   *logger.Logger
}

// NewKafkaPublisher connects to the configured brokers
func NewKafkaPublisher(config *ProducerConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	// Studio id is the key, so a studio's messages stay ordered on one partition.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	client, err := sarama.NewClient(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p := NewKafkaPublisherWithProducer(producer, config)
	p.client = client
	return p, nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, config *ProducerConfig) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		config:   config,
		logger:   logger.GetDefault(),
	}
}

func (p *KafkaPublisher) PublishEventsImported(ctx context.Context, studioID string, payload EventsImportedPayload) error {
	msg, err := NewMessage(MessageTypeEventsImported, studioID, payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.config.EventsImportedTopic, msg)
}

func (p *KafkaPublisher) PublishInsightsGenerated(ctx context.Context, studioID string, payload InsightsGeneratedPayload) error {
	msg, err := NewMessage(MessageTypeInsightsGenerated, studioID, payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.config.InsightsGeneratedTopic, msg)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(msg.GetPartitionKey()),
		Value:     sarama.ByteEncoder(body),
		Headers:   createHeaders(msg),
		Timestamp: msg.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s to Kafka: %w", msg.Type, err)
	}

	p.logger.LogMessagePublished(ctx, topic, partition, offset, string(msg.Type))
	return nil
}

func createHeaders(msg *Message) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("message_id"), Value: []byte(msg.ID.String())},
		{Key: []byte("message_type"), Value: []byte(msg.Type)},
		{Key: []byte("studio_id"), Value: []byte(msg.StudioID)},
		{Key: []byte("producer"), Value: []byte("hobbystudio")},
	}
}

// Close closes the producer and its client
func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	if p.client != nil && !p.client.Closed() {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka client: %w", err)
		}
	}
	return nil
}

// HealthCheck reports whether at least one broker is reachable
func (p *KafkaPublisher) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	if p.client.Closed() {
		return ErrPublisherClosed
	}
	if len(p.client.Brokers()) == 0 {
		return fmt.Errorf("no Kafka brokers available")
	}
	return nil
}

// NoopPublisher drops every message. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishEventsImported(context.Context, string, EventsImportedPayload) error {
	return nil
}

func (NoopPublisher) PublishInsightsGenerated(context.Context, string, InsightsGeneratedPayload) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

func (NoopPublisher) HealthCheck(context.Context) error { return nil }
