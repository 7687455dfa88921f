package invoice

import (
	"context"

	"github.com/flexprice/feeledger/internal/types"
)

// Repository persists invoices and their lines
type Repository interface {
	// CreateWithLines inserts the invoice row followed by one row per line.
	// Callers wrap it in a transaction together with the audit entry.
	CreateWithLines(ctx context.Context, inv *Invoice) error

	// Get returns the invoice with its lines
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetForUpdate is Get with a row lock held until the surrounding
	// transaction ends
	GetForUpdate(ctx context.Context, id string) (*Invoice, error)

	// Update writes the mutable invoice columns if inv.Version still matches
	// the stored version, then increments inv.Version. A mismatch returns
	// ErrVersionConflict.
	Update(ctx context.Context, inv *Invoice) error

	// List returns invoices without lines
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}

// SequenceRepository hands out invoice number sequences
type SequenceRepository interface {
	// NextSequence atomically reserves the next sequence of period. When called
	// inside a transaction the reservation rolls back with it.
	NextSequence(ctx context.Context, period string) (int64, error)

	// Resync raises the period counter to the highest invoice number already
	// stored, after a number turned out to be taken
	Resync(ctx context.Context, period string) error
}
