package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/domain/audit"
	"github.com/flexprice/feeledger/internal/types"
)

// InMemoryAuditStore implements audit.Repository as an append-only log
type InMemoryAuditStore struct {
	mu      sync.Mutex
	entries []*audit.Entry
	// CreateErr, when set, fails every Create
	CreateErr error
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

func (s *InMemoryAuditStore) Create(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}

	cp := *entry
	s.entries = append(s.entries, &cp)

	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.entries {
			if e.ID == cp.ID {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *InMemoryAuditStore) ListByEntity(_ context.Context, entityType types.AuditEntityType, entityID string) ([]*audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*audit.Entry, 0)
	for _, e := range s.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Len returns the number of stored entries
func (s *InMemoryAuditStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryAuditStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.CreateErr = nil
}
