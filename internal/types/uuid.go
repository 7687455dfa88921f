package types

import (
	"fmt"
	"strings"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_INVOICE      = "inv"
	UUID_PREFIX_INVOICE_LINE = "invl"
	UUID_PREFIX_AUDIT_ENTRY  = "aud"
	UUID_PREFIX_EVENT        = "evt"
	UUID_PREFIX_REQUEST      = "req"
)

// GenerateUUID returns a lexicographically sortable ULID
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a ULID prefixed with the entity type, e.g. inv_01H...
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

// ValidatePayerID enforces the identity format issued by the student registry.
func ValidatePayerID(payerID string) error {
	if strings.TrimSpace(payerID) == "" {
		return ierr.NewError("payer id is required").
			WithHint("Payer ID is required").
			Mark(ierr.ErrValidation)
	}
	if _, err := uuid.Parse(payerID); err != nil {
		return ierr.NewErrorf("invalid id format: %q is not a valid payer id", payerID).
			WithHint("invalid id format").
			WithReportableDetails(map[string]any{
				"payer_id": payerID,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
