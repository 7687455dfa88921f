package audit

import (
	"context"

	"github.com/flexprice/feeledger/internal/types"
)

// Repository is append-only: entries are never updated or deleted
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	// ListByEntity returns entries oldest first
	ListByEntity(ctx context.Context, entityType types.AuditEntityType, entityID string) ([]*Entry, error)
}
