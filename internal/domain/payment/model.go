package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is the share of a recorded payment applied to an invoice.
// Rows are written by payment recording; billing only reads them.
type Allocation struct {
	ID          string          `json:"id"`
	PaymentID   string          `json:"payment_id"`
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	AllocatedAt time.Time       `json:"allocated_at"`
}

// Repository reads payment allocations
type Repository interface {
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Allocation, error)
}
