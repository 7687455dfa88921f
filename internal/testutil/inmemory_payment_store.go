package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/domain/payment"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	mu          sync.Mutex
	allocations []*payment.Allocation
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{}
}

// AddAllocation stands in for the payment recording collaborator
func (s *InMemoryPaymentStore) AddAllocation(a *payment.Allocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.allocations = append(s.allocations, &cp)
}

func (s *InMemoryPaymentStore) ListByInvoice(_ context.Context, invoiceID string) ([]*payment.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*payment.Allocation, 0)
	for _, a := range s.allocations {
		if a.InvoiceID == invoiceID {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *InMemoryPaymentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations = nil
}
