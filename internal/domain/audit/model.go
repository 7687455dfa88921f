package audit

import (
	"encoding/json"
	"time"

	"github.com/flexprice/feeledger/internal/types"
)

// Entry is an immutable before/after record of one mutation
type Entry struct {
	ID         string                `json:"id"`
	EntityType types.AuditEntityType `json:"entity_type"`
	EntityID   string                `json:"entity_id"`
	Action     types.AuditAction     `json:"action"`
	ActorID    string                `json:"actor_id"`
	// OldValue is nil for CREATE
	OldValue  json.RawMessage `json:"old_value"`
	NewValue  json.RawMessage `json:"new_value"`
	CreatedAt time.Time       `json:"created_at"`
}
