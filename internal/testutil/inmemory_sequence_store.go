package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/types"
)

// InMemorySequenceStore implements invoice.SequenceRepository with one
// counter per period. Resync reads issued numbers from invoices.
type InMemorySequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
	invoices *InMemoryInvoiceStore
}

func NewInMemorySequenceStore(invoices *InMemoryInvoiceStore) *InMemorySequenceStore {
	return &InMemorySequenceStore{
		counters: make(map[string]int64),
		invoices: invoices,
	}
}

func (s *InMemorySequenceStore) NextSequence(ctx context.Context, period string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[period]++
	reserved := s.counters[period]

	// Release the reservation on rollback unless a later number was already
	// handed out, which the row lock would have prevented in postgres.
	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.counters[period] == reserved {
			s.counters[period]--
		}
	})
	return reserved, nil
}

func (s *InMemorySequenceStore) Resync(ctx context.Context, period string) error {
	var highest int64
	if s.invoices != nil {
		prefix := types.InvoiceNumberPeriodPrefix(period)
		issued, err := s.invoices.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return strings.HasPrefix(inv.InvoiceNumber, prefix)
		}, nil)
		if err != nil {
			return err
		}
		for _, inv := range issued {
			if _, seq, err := types.ParseInvoiceNumber(inv.InvoiceNumber); err == nil && seq > highest {
				highest = seq
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if highest > s.counters[period] {
		s.counters[period] = highest
	}
	return nil
}

// Seed sets the last issued sequence of period
func (s *InMemorySequenceStore) Seed(period string, last int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[period] = last
}

// Last returns the last issued sequence of period
func (s *InMemorySequenceStore) Last(period string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[period]
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int64)
}
