package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"minishop/models"
	"minishop/requestid"
)

// EventType represents the type of a checkout event.
type EventType string

const EventTypeReceiptCreated EventType = "receipt.created"

// ReceiptEvent is the envelope written to the receipts topic.
type ReceiptEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	ReceiptID     int64           `json:"receipt_id"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// Publisher announces receipts. Publishing is best-effort: callers log failures.
type Publisher interface {
	PublishReceiptCreated(ctx context.Context, receipt models.Receipt) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes receipt events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based receipt publisher.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// PublishReceiptCreated publishes a receipt created event.
func (p *KafkaPublisher) PublishReceiptCreated(ctx context.Context, receipt models.Receipt) error {
	msg, event, err := buildReceiptMessage(ctx, receipt)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("receipt_id", receipt.ID),
			zap.Error(err))
		return err
	}

	p.logger.Info("event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("receipt_id", receipt.ID))
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("closing kafka publisher")
	return p.writer.Close()
}

func buildReceiptMessage(ctx context.Context, receipt models.Receipt) (kafka.Message, *ReceiptEvent, error) {
	data, err := json.Marshal(receipt)
	if err != nil {
		return kafka.Message{}, nil, err
	}

	event := &ReceiptEvent{
		ID:            uuid.NewString(),
		Type:          EventTypeReceiptCreated,
		ReceiptID:     receipt.ID,
		Data:          data,
		Timestamp:     time.Now().UTC(),
		CorrelationID: requestid.FromContext(ctx),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, nil, err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(receipt.ID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "request_id", Value: []byte(event.CorrelationID)},
		},
	}
	return msg, event, nil
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishReceiptCreated(context.Context, models.Receipt) error { return nil }
func (NoopPublisher) Close() error                                                { return nil }
