package dto

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/domain/payment"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/flexprice/feeledger/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest issues one invoice for a payer from a fee definition
type GenerateInvoiceRequest struct {
	PayerID         string    `json:"payer_id" validate:"required"`
	FeeDefinitionID string    `json:"fee_definition_id" validate:"required"`
	PeriodID        string    `json:"period_id" validate:"required"`
	DueDate         time.Time `json:"due_date" validate:"required"`
	CampusID        *string   `json:"campus_id,omitempty"`
	// ApplyDiscounts defaults to true when omitted
	ApplyDiscounts *bool `json:"apply_discounts,omitempty"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return types.ValidatePayerID(r.PayerID)
}

// ShouldApplyDiscounts resolves the optional flag
func (r *GenerateInvoiceRequest) ShouldApplyDiscounts() bool {
	return lo.FromPtrOr(r.ApplyDiscounts, true)
}

// BulkGenerateInvoicesRequest issues one invoice per payer. Duplicate payer
// ids are processed as submitted.
type BulkGenerateInvoicesRequest struct {
	PayerIDs        []string  `json:"payer_ids" validate:"required,min=1"`
	FeeDefinitionID string    `json:"fee_definition_id" validate:"required"`
	PeriodID        string    `json:"period_id" validate:"required"`
	DueDate         time.Time `json:"due_date" validate:"required"`
	CampusID        *string   `json:"campus_id,omitempty"`
	ApplyDiscounts  *bool     `json:"apply_discounts,omitempty"`
}

// Validate checks the shared fields. Individual payer ids are validated per
// item so one malformed id cannot fail the batch.
func (r *BulkGenerateInvoicesRequest) Validate(maxSize int) error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if maxSize > 0 && len(r.PayerIDs) > maxSize {
		return ierr.NewErrorf("bulk request has %d payers, limit is %d", len(r.PayerIDs), maxSize).
			WithHintf("At most %d payers can be invoiced per request", maxSize).
			WithReportableDetails(map[string]any{
				"payer_count": len(r.PayerIDs),
				"max_size":    maxSize,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToGenerateInvoiceRequest derives the single invoice request for payerID
func (r *BulkGenerateInvoicesRequest) ToGenerateInvoiceRequest(payerID string) *GenerateInvoiceRequest {
	return &GenerateInvoiceRequest{
		PayerID:         payerID,
		FeeDefinitionID: r.FeeDefinitionID,
		PeriodID:        r.PeriodID,
		DueDate:         r.DueDate,
		CampusID:        r.CampusID,
		ApplyDiscounts:  r.ApplyDiscounts,
	}
}

// BulkGenerateFailure records why one payer could not be invoiced
type BulkGenerateFailure struct {
	PayerID string `json:"payer_id"`
	Error   string `json:"error"`
}

// BulkGenerateInvoicesResponse lists outcomes in request order
type BulkGenerateInvoicesResponse struct {
	Successful   []*InvoiceResponse     `json:"successful"`
	Failed       []*BulkGenerateFailure `json:"failed"`
	TotalCount   int                    `json:"total_count"`
	SuccessCount int                    `json:"success_count"`
	FailureCount int                    `json:"failure_count"`
}

// AdjustInvoiceRequest carries non-negative deltas added to the invoice
// aggregate.
type AdjustInvoiceRequest struct {
	AdditionalDiscount *decimal.Decimal `json:"additional_discount,omitempty" swaggertype:"string"`
	AdditionalLateFee  *decimal.Decimal `json:"additional_late_fee,omitempty" swaggertype:"string"`
}

func (r *AdjustInvoiceRequest) Validate() error {
	if r.AdditionalDiscount == nil && r.AdditionalLateFee == nil {
		return ierr.NewError("no adjustment supplied").
			WithHint("Provide additional_discount or additional_late_fee").
			Mark(ierr.ErrValidation)
	}

	for field, delta := range map[string]*decimal.Decimal{
		"additional_discount": r.AdditionalDiscount,
		"additional_late_fee": r.AdditionalLateFee,
	} {
		if delta != nil && delta.IsNegative() {
			return ierr.NewErrorf("%s must be non negative", field).
				WithHintf("%s must be zero or greater", field).
				WithReportableDetails(map[string]any{
					field: delta.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ReverseInvoiceRequest cancels an unpaid invoice
type ReverseInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (r *ReverseInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ReverseInvoiceResponse returns the invoice before and after cancellation
type ReverseInvoiceResponse struct {
	OriginalInvoice  *InvoiceResponse `json:"original_invoice"`
	CancelledInvoice *InvoiceResponse `json:"cancelled_invoice"`
	Reason           string           `json:"reason"`
}

// UpdateInvoiceRequest changes the due date or status of an open invoice
type UpdateInvoiceRequest struct {
	DueDate       *time.Time           `json:"due_date,omitempty"`
	InvoiceStatus *types.InvoiceStatus `json:"invoice_status,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	if r.DueDate == nil && r.InvoiceStatus == nil {
		return ierr.NewError("no update supplied").
			WithHint("Provide due_date or invoice_status").
			Mark(ierr.ErrValidation)
	}

	if r.InvoiceStatus != nil {
		if err := r.InvoiceStatus.Validate(); err != nil {
			return err
		}
		// DRAFT is never re-entered and CANCELLED is reserved for reversal
		if *r.InvoiceStatus == types.InvoiceStatusDraft || *r.InvoiceStatus == types.InvoiceStatusCancelled {
			return ierr.NewErrorf("invoice status cannot be set to %s", *r.InvoiceStatus).
				WithHintf("Invoice status cannot be set to %s", *r.InvoiceStatus).
				WithReportableDetails(map[string]any{
					"invoice_status": *r.InvoiceStatus,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ApplyTo writes the requested fields onto inv
func (r *UpdateInvoiceRequest) ApplyTo(ctx context.Context, inv *invoice.Invoice) {
	if r.DueDate != nil {
		inv.DueDate = r.DueDate.UTC()
	}
	if r.InvoiceStatus != nil {
		inv.InvoiceStatus = *r.InvoiceStatus
	}
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	*invoice.Invoice

	// AmountDue is net_amount - paid_amount
	AmountDue decimal.Decimal `json:"amount_due" swaggertype:"string"`
	// PaymentAllocations is only populated by the single invoice lookup
	PaymentAllocations []*payment.Allocation `json:"payment_allocations,omitempty"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{
		Invoice:   inv,
		AmountDue: inv.AmountDue(),
	}
}

// WithAllocations attaches the payment allocations of the invoice
func (r *InvoiceResponse) WithAllocations(allocations []*payment.Allocation) *InvoiceResponse {
	r.PaymentAllocations = allocations
	return r
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// InvoiceCSVRow is one line of the invoice export
type InvoiceCSVRow struct {
	InvoiceNumber   string `csv:"invoice_number"`
	InvoiceID       string `csv:"invoice_id"`
	PayerID         string `csv:"payer_id"`
	PeriodID        string `csv:"period_id"`
	FeeDefinitionID string `csv:"fee_definition_id"`
	Status          string `csv:"status"`
	Currency        string `csv:"currency"`
	IssueDate       string `csv:"issue_date"`
	DueDate         string `csv:"due_date"`
	TotalAmount     string `csv:"total_amount"`
	DiscountAmount  string `csv:"discount_amount"`
	LateFeeAmount   string `csv:"late_fee_amount"`
	NetAmount       string `csv:"net_amount"`
	PaidAmount      string `csv:"paid_amount"`
	AmountDue       string `csv:"amount_due"`
}

func NewInvoiceCSVRow(inv *invoice.Invoice) *InvoiceCSVRow {
	precision := types.GetCurrencyPrecision(inv.Currency)
	money := func(d decimal.Decimal) string {
		return d.StringFixed(precision)
	}
	return &InvoiceCSVRow{
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceID:       inv.ID,
		PayerID:         inv.PayerID,
		PeriodID:        inv.PeriodID,
		FeeDefinitionID: inv.FeeDefinitionID,
		Status:          string(inv.InvoiceStatus),
		Currency:        inv.Currency,
		IssueDate:       inv.IssueDate.Format(time.RFC3339),
		DueDate:         inv.DueDate.Format(time.RFC3339),
		TotalAmount:     money(inv.TotalAmount),
		DiscountAmount:  money(inv.DiscountAmount),
		LateFeeAmount:   money(inv.LateFeeAmount),
		NetAmount:       money(inv.NetAmount),
		PaidAmount:      money(inv.PaidAmount),
		AmountDue:       money(inv.AmountDue()),
	}
}
