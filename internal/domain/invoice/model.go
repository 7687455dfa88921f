package invoice

import (
	"time"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Invoice is a financial obligation of one payer derived from a fee definition
type Invoice struct {
	ID              string              `json:"id"`
	InvoiceNumber   string              `json:"invoice_number"`
	PayerID         string              `json:"payer_id"`
	FeeDefinitionID string              `json:"fee_definition_id"`
	PeriodID        string              `json:"period_id"`
	CampusID        *string             `json:"campus_id,omitempty"`
	Currency        string              `json:"currency"`
	InvoiceStatus   types.InvoiceStatus `json:"invoice_status"`
	IssueDate       time.Time           `json:"issue_date"`
	DueDate         time.Time           `json:"due_date"`

	// TotalAmount is the sum of line amounts before discount
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LateFeeAmount  decimal.Decimal `json:"late_fee_amount"`
	// NetAmount is always TotalAmount - DiscountAmount + LateFeeAmount
	NetAmount decimal.Decimal `json:"net_amount"`
	// PaidAmount is owned by payment recording and read-only here
	PaidAmount decimal.Decimal `json:"paid_amount"`

	ReversalReason *string    `json:"reversal_reason,omitempty"`
	ReversedAt     *time.Time `json:"reversed_at,omitempty"`
	ReversedBy     *string    `json:"reversed_by,omitempty"`

	// Version is bumped by every update and guards against lost updates from
	// concurrent writers, including payment recording.
	Version int `json:"version"`

	Lines []*InvoiceLine `json:"lines,omitempty"`

	types.BaseModel
}

// ComputeNetAmount derives the net amount from the aggregate fields
func (i *Invoice) ComputeNetAmount() decimal.Decimal {
	return i.TotalAmount.Sub(i.DiscountAmount).Add(i.LateFeeAmount)
}

// RecalculateNet restores the net amount invariant after a field change
func (i *Invoice) RecalculateNet() {
	i.NetAmount = i.ComputeNetAmount()
}

// AmountDue is what remains to be collected
func (i *Invoice) AmountDue() decimal.Decimal {
	return i.NetAmount.Sub(i.PaidAmount)
}

// IsCancelled reports whether the invoice has been reversed
func (i *Invoice) IsCancelled() bool {
	return i.InvoiceStatus == types.InvoiceStatusCancelled
}

// Validate checks the monetary invariants of the aggregate and its lines
func (i *Invoice) Validate() error {
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	for name, amount := range map[string]decimal.Decimal{
		"total_amount":    i.TotalAmount,
		"discount_amount": i.DiscountAmount,
		"late_fee_amount": i.LateFeeAmount,
		"paid_amount":     i.PaidAmount,
	} {
		if amount.IsNegative() {
			return ierr.NewErrorf("invoice %s must be non negative", name).
				WithHintf("Invoice %s must be non negative", name).
				WithReportableDetails(map[string]any{
					name: amount.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	}

	if !i.NetAmount.Equal(i.ComputeNetAmount()) {
		return ierr.NewError("invoice net amount does not match its components").
			WithHint("Net amount must equal total - discount + late fee").
			WithReportableDetails(map[string]any{
				"total_amount":    i.TotalAmount.String(),
				"discount_amount": i.DiscountAmount.String(),
				"late_fee_amount": i.LateFeeAmount.String(),
				"net_amount":      i.NetAmount.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	for _, line := range i.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Copy returns a deep copy so a before-state survives later mutation
func (i *Invoice) Copy() *Invoice {
	if i == nil {
		return nil
	}
	cp := *i
	cp.CampusID = copyPtr(i.CampusID)
	cp.ReversalReason = copyPtr(i.ReversalReason)
	cp.ReversedAt = copyPtr(i.ReversedAt)
	cp.ReversedBy = copyPtr(i.ReversedBy)
	cp.Lines = lo.Map(i.Lines, func(l *InvoiceLine, _ int) *InvoiceLine {
		lc := *l
		return &lc
	})
	return &cp
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
