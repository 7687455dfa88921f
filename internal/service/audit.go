package service

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/domain/audit"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var auditJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// AuditRecorder appends before/after snapshots of invoice mutations
type AuditRecorder interface {
	// RecordInvoice writes one entry. before is nil for CREATE. metadata is
	// merged into the serialized after-state only.
	RecordInvoice(ctx context.Context, action types.AuditAction, before, after *invoice.Invoice, metadata types.Metadata) error
}

type auditRecorder struct {
	ServiceParams
}

func NewAuditRecorder(params ServiceParams) AuditRecorder {
	return &auditRecorder{
		ServiceParams: params,
	}
}

// invoiceSnapshot is the serialized form of an invoice in the audit log
type invoiceSnapshot struct {
	*invoice.Invoice
	Metadata types.Metadata `json:"metadata,omitempty"`
}

func (s *auditRecorder) RecordInvoice(
	ctx context.Context,
	action types.AuditAction,
	before, after *invoice.Invoice,
	metadata types.Metadata,
) error {
	if after == nil {
		return ierr.NewError("audit after-state is required").
			Mark(ierr.ErrInternal)
	}

	var oldValue []byte
	if before != nil {
		b, err := auditJSON.Marshal(invoiceSnapshot{Invoice: before})
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to serialize invoice for audit").
				Mark(ierr.ErrSystem)
		}
		oldValue = b
	}

	newValue, err := auditJSON.Marshal(invoiceSnapshot{Invoice: after, Metadata: metadata})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to serialize invoice for audit").
			Mark(ierr.ErrSystem)
	}

	entry := &audit.Entry{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_ENTRY),
		EntityType: types.AuditEntityTypeInvoice,
		EntityID:   after.ID,
		Action:     action,
		ActorID:    types.GetUserID(ctx),
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.AuditRepo.Create(ctx, entry); err != nil {
		return err
	}

	s.Logger.Debugw("recorded audit entry",
		"audit_id", entry.ID,
		"invoice_id", after.ID,
		"action", action)
	return nil
}
