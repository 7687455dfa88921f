package testutil

import (
	"context"
	"sync"
)

// InMemoryPayerDirectory implements payer.Directory over a fixed set of ids
type InMemoryPayerDirectory struct {
	mu     sync.RWMutex
	payers map[string]struct{}
	// Err, when set, is returned by every lookup
	Err error
}

func NewInMemoryPayerDirectory(payerIDs ...string) *InMemoryPayerDirectory {
	d := &InMemoryPayerDirectory{payers: make(map[string]struct{})}
	d.Add(payerIDs...)
	return d
}

func (d *InMemoryPayerDirectory) Add(payerIDs ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range payerIDs {
		d.payers[id] = struct{}{}
	}
}

func (d *InMemoryPayerDirectory) Exists(_ context.Context, payerID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.Err != nil {
		return false, d.Err
	}
	_, ok := d.payers[payerID]
	return ok, nil
}

func (d *InMemoryPayerDirectory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payers = make(map[string]struct{})
	d.Err = nil
}
