package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/flexprice/feeledger/internal/errors"
)

// FilterFunc reports whether item matches filter
type FilterFunc[T any] func(ctx context.Context, item T, filter interface{}) bool

// SortFunc orders two items
type SortFunc[T any] func(i, j T) bool

// paginated is satisfied by the list filters in internal/types
type paginated interface {
	GetLimit() int
	GetOffset() int
	IsUnlimited() bool
}

// InMemoryStore is a thread-safe map store. Writes made inside an
// InMemoryDB transaction are undone when the transaction fails.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewErrorf("item %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item

	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.items, id)
	})
	return nil
}

func (s *InMemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewErrorf("item %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, exists := s.items[id]
	if !exists {
		return ierr.NewErrorf("item %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item

	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items[id] = previous
	})
	return nil
}

func (s *InMemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, exists := s.items[id]
	if !exists {
		return ierr.NewErrorf("item %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	delete(s.items, id)

	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items[id] = previous
	})
	return nil
}

// List returns matching items sorted by sortFn and paginated when filter
// carries pagination.
func (s *InMemoryStore[T]) List(ctx context.Context, filter interface{}, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]T, error) {
	items := s.matching(ctx, filter, filterFn)

	if sortFn != nil {
		sort.SliceStable(items, func(i, j int) bool {
			return sortFn(items[i], items[j])
		})
	}

	if p, ok := filter.(paginated); ok && p != nil {
		offset := p.GetOffset()
		if offset >= len(items) {
			return []T{}, nil
		}
		items = items[offset:]
		if !p.IsUnlimited() && p.GetLimit() < len(items) {
			items = items[:p.GetLimit()]
		}
	}

	return items, nil
}

func (s *InMemoryStore[T]) Count(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) (int, error) {
	return len(s.matching(ctx, filter, filterFn)), nil
}

func (s *InMemoryStore[T]) matching(ctx context.Context, filter interface{}, filterFn FilterFunc[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item, filter) {
			items = append(items, item)
		}
	}
	return items
}

// Len returns the number of stored items
func (s *InMemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
