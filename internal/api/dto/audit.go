package dto

import (
	"github.com/flexprice/feeledger/internal/domain/audit"
)

// AuditEntryResponse is the API view of an audit entry
type AuditEntryResponse struct {
	*audit.Entry
}

// ListAuditEntriesResponse lists an entity's audit trail oldest first
type ListAuditEntriesResponse struct {
	Items []*AuditEntryResponse `json:"items"`
}
