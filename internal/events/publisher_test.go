package events

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherDefaultsToNoop(t *testing.T) {
	cfg := config.GetDefaultConfig()
	assert.Equal(t, types.PublisherTypeNoop, cfg.Event.PublisherType)

	pub, err := NewPublisher(cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.IsType(t, noopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), &InvoiceEvent{ID: "evt_1"}))
}

func TestNewPublisherRejectsUnknownType(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Event.PublisherType = "rabbitmq"

	_, err := NewPublisher(cfg, logger.NewNoopLogger())
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestMemoryPublisherDeliversToSubscriber(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Event.PublisherType = types.PublisherTypeMemory

	pub, err := NewPublisher(cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	defer pub.Close()

	mem, ok := pub.(*MemoryPublisher)
	require.True(t, ok)

	messages, err := mem.PubSub.Subscribe(context.Background(), mem.Topic())
	require.NoError(t, err)

	event := &InvoiceEvent{
		ID:            "evt_1",
		EventName:     types.InvoiceEventCreated,
		InvoiceID:     "inv_1",
		InvoiceNumber: "INV-2026-000001",
		InvoiceStatus: types.InvoiceStatusIssued,
		NetAmount:     decimal.NewFromInt(150),
	}
	require.NoError(t, pub.Publish(context.Background(), event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "inv_1", msg.Metadata.Get("invoice_id"))
		assert.Equal(t, string(types.InvoiceEventCreated), msg.Metadata.Get("event_name"))
		assert.Equal(t, "INV-2026-000001", jsoniter.Get(msg.Payload, "invoice_number").ToString())
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}
