package invoice

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one charge category on an invoice. Lines are written together
// with their invoice and never mutated afterwards; adjustments act on the
// invoice aggregate.
type InvoiceLine struct {
	ID               string          `json:"id"`
	InvoiceID        string          `json:"invoice_id"`
	FeeLineID        string          `json:"fee_line_id,omitempty"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Quantity         decimal.Decimal `json:"quantity"`
	LineItemDiscount decimal.Decimal `json:"line_item_discount"`
	LedgerAccountRef string          `json:"ledger_account_ref"`
	SortOrder        int             `json:"sort_order"`
}

// NetAmount is the line amount after its discount
func (l *InvoiceLine) NetAmount() decimal.Decimal {
	return l.Amount.Sub(l.LineItemDiscount)
}

// Validate validates the invoice line
func (l *InvoiceLine) Validate() error {
	if l.Amount.IsNegative() {
		return ierr.NewError("invoice line validation failed").
			WithHint("amount must be non negative").
			Mark(ierr.ErrValidation)
	}

	if l.Quantity.IsNegative() {
		return ierr.NewError("invoice line validation failed").
			WithHint("quantity must be non negative").
			Mark(ierr.ErrValidation)
	}

	if l.LineItemDiscount.IsNegative() || l.LineItemDiscount.GreaterThan(l.Amount) {
		return ierr.NewError("invoice line validation failed").
			WithHint("line discount must be between zero and the line amount").
			WithReportableDetails(map[string]any{
				"amount":             l.Amount.String(),
				"line_item_discount": l.LineItemDiscount.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
