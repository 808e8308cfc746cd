package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/fyp-labs/adaptive-learning-platform/internal/utils"
)

// Publisher emits domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Close() error
}

type EventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaPublisher publishes to the given brokers
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &EventPublisher{publisher: publisher, logger: logger}, nil
}

// NewInMemoryPublisher returns a publisher backed by an in-process channel
// pub/sub. The GoChannel is returned so callers can subscribe to it.
func NewInMemoryPublisher(logger *slog.Logger) (*EventPublisher, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))

	return &EventPublisher{publisher: pubSub, logger: logger}, pubSub
}

// NewPublisher picks kafka when brokers are configured
func NewPublisher(brokers []string, logger *slog.Logger) (*EventPublisher, error) {
	if len(brokers) > 0 {
		return NewKafkaPublisher(brokers, logger)
	}
	publisher, _ := NewInMemoryPublisher(logger)
	return publisher, nil
}

func (p *EventPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}

	p.logger.Debug("Event published", "topic", topic, "message_uuid", msg.UUID)
	return nil
}

func (p *EventPublisher) Close() error {
	return p.publisher.Close()
}

// PublishSafe publishes and logs failures instead of returning them
func PublishSafe(ctx context.Context, publisher Publisher, logger *slog.Logger, topic string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, payload); err != nil {
		logger.Warn("Failed to publish event", "topic", topic, "error", err)
	}
}
