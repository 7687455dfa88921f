package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/events"
)

// InMemoryPublisher records published invoice events
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []*events.InvoiceEvent
	// Err, when set, fails every Publish
	Err error
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, event *events.InvoiceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	cp := *event
	p.events = append(p.events, &cp)
	return nil
}

func (p *InMemoryPublisher) Close() error { return nil }

// Events returns the published events in order
func (p *InMemoryPublisher) Events() []*events.InvoiceEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.InvoiceEvent(nil), p.events...)
}

func (p *InMemoryPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
	p.Err = nil
}
