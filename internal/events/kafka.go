package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"timesheet-service/internal/metrics"

	"github.com/IBM/sarama"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	client   sarama.Client
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "timesheet-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

func NewKafkaPublisher(brokers []string, topic string, m *metrics.Metrics, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := sarama.NewClient(brokers, NewKafkaConfig())
	if err != nil {
		return nil, err
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	m.Messaging.RecordConnectionChange(context.Background(), 1)

	logger.Info("kafka publisher initialized", "brokers", brokers, "topic", topic)

	p := NewKafkaPublisherWithProducer(producer, topic, m, logger)
	p.client = client
	return p, nil
}

// NewKafkaPublisherWithProducer wraps an existing producer (useful for testing)
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.Messaging.RecordPublish(ctx, p.topic, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to kafka", "type", event.Type, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event published to kafka", "topic", p.topic, "partition", partition, "offset", offset, "key", event.Key)
	return nil
}

func (p *KafkaPublisher) Ping(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	if len(p.client.Brokers()) == 0 || p.client.Closed() {
		return ErrNotConnected
	}
	return p.client.RefreshMetadata(p.topic)
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return err
	}
	// Producers built from a client leave it open.
	if p.client != nil && !p.client.Closed() {
		return p.client.Close()
	}
	return nil
}
