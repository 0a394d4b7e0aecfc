package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KafkaPublisher implements Publisher using a sarama SyncProducer.
type KafkaPublisher struct {
	producer          sarama.SyncProducer
	logger            *zap.Logger
	auditTopic        string
	notificationTopic string
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(brokers []string, auditTopic, notificationTopic string, logger *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer:          producer,
		logger:            logger,
		auditTopic:        auditTopic,
		notificationTopic: notificationTopic,
	}, nil
}

// Publish serializes the event and sends it to the topic matching its type.
// The account id keys the message so one account's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	topic, partitionKey, eventType := p.route(event)
	if topic == "" {
		return fmt.Errorf("unknown event type %T", event)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
			{Key: []byte("event-id"), Value: []byte(uuid.New().String())},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}
	if partitionKey != "" {
		message.Key = sarama.StringEncoder(partitionKey)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published to Kafka",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("event-type", eventType),
	)
	return nil
}

func (p *KafkaPublisher) route(event interface{}) (topic, partitionKey, eventType string) {
	switch e := event.(type) {
	case AuditEvent:
		return p.auditTopic, e.AccountID, "pantry.audit." + e.Action
	case ExpiringItemEvent:
		return p.notificationTopic, e.AccountID, "pantry.expiring"
	default:
		return "", "", ""
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
