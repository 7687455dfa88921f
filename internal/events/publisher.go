package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	watermillKafka "github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/kafka"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	jsoniter "github.com/json-iterator/go"
)

// Publisher emits invoice events after the owning transaction commits
type Publisher interface {
	Publish(ctx context.Context, event *InvoiceEvent) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *logger.Logger
}

// NewPublisher builds the publisher selected by cfg.Event.PublisherType
func NewPublisher(cfg *config.Configuration, log *logger.Logger) (Publisher, error) {
	wmLogger := log.GetWatermillLogger()

	switch cfg.Event.PublisherType {
	case types.PublisherTypeMemory:
		log.Warnw("invoice events stay in process and are dropped unless subscribed to",
			"publisher_type", cfg.Event.PublisherType,
			"topic", cfg.Event.Topic)
		return NewMemoryPublisher(cfg.Event.Topic, log), nil

	case types.PublisherTypeKafka:
		saramaConfig, err := kafka.NewProducerConfig(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		pub, err := watermillKafka.NewPublisher(
			watermillKafka.PublisherConfig{
				Brokers:               cfg.Kafka.Brokers,
				Marshaler:             watermillKafka.NewWithPartitioningMarshaler(partitionByInvoice),
				OverwriteSaramaConfig: saramaConfig,
			},
			wmLogger,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to create kafka publisher").
				Mark(ierr.ErrSystem)
		}
		return newWatermillPublisher(pub, cfg.Event.Topic, log), nil

	case types.PublisherTypeNoop, "":
		return NewNoopPublisher(), nil

	default:
		return nil, ierr.NewErrorf("unknown event publisher type %q", cfg.Event.PublisherType).
			WithHint("event.publisher_type must be one of noop, memory or kafka").
			Mark(ierr.ErrValidation)
	}
}

// NewMemoryPublisher publishes on an in-process channel. Events are dropped
// unless something subscribes to the returned publisher's pubsub.
func NewMemoryPublisher(topic string, log *logger.Logger) *MemoryPublisher {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, log.GetWatermillLogger())

	return &MemoryPublisher{
		watermillPublisher: newWatermillPublisher(pubSub, topic, log),
		PubSub:             pubSub,
	}
}

// MemoryPublisher exposes the underlying channel so in-process consumers can
// subscribe to Topic.
type MemoryPublisher struct {
	*watermillPublisher
	PubSub *gochannel.GoChannel
}

// Topic returns the topic events are published to
func (p *MemoryPublisher) Topic() string {
	return p.topic
}

func newWatermillPublisher(pub message.Publisher, topic string, log *logger.Logger) *watermillPublisher {
	return &watermillPublisher{
		publisher: pub,
		topic:     topic,
		logger:    log,
	}
}

func (p *watermillPublisher) Publish(ctx context.Context, event *InvoiceEvent) error {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal invoice event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_id", event.ID)
	msg.Metadata.Set("event_name", string(event.EventName))
	msg.Metadata.Set("invoice_id", event.InvoiceID)
	msg.Metadata.Set("request_id", types.GetRequestID(ctx))

	p.logger.Debugw("publishing invoice event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"invoice_id", event.InvoiceID,
		"topic", p.topic)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish invoice event").
			WithReportableDetails(map[string]any{
				"event_name": event.EventName,
				"invoice_id": event.InvoiceID,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// partitionByInvoice keeps every event of an invoice on one partition so
// consumers see them in order.
func partitionByInvoice(_ string, msg *message.Message) (string, error) {
	return msg.Metadata.Get("invoice_id"), nil
}

type noopPublisher struct{}

// NewNoopPublisher discards every event
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *InvoiceEvent) error { return nil }
func (noopPublisher) Close() error                                 { return nil }
