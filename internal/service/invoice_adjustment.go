package service

import (
	"context"

	"github.com/flexprice/feeledger/internal/api/dto"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
)

const metadataReversalReason = "reversal_reason"

// AdjustInvoice adds discount and late fee deltas to the invoice aggregate.
// Lines are left untouched.
func (s *invoiceService) AdjustInvoice(ctx context.Context, id string, req *dto.AdjustInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var adjusted *invoice.Invoice
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus.IsFinal() {
			return ierr.NewErrorf("cannot adjust invoice in status %s", inv.InvoiceStatus).
				WithHintf("Cannot adjust a %s invoice", inv.InvoiceStatus).
				WithReportableDetails(map[string]any{
					"invoice_id":     inv.ID,
					"invoice_status": inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		before := inv.Copy()

		if req.AdditionalDiscount != nil {
			inv.DiscountAmount = inv.DiscountAmount.Add(*req.AdditionalDiscount)
		}
		if req.AdditionalLateFee != nil {
			inv.LateFeeAmount = inv.LateFeeAmount.Add(*req.AdditionalLateFee)
		}
		inv.RecalculateNet()

		if inv.NetAmount.IsNegative() {
			return ierr.NewError("adjustment would make the net amount negative").
				WithHint("Discount cannot exceed the invoice total plus late fees").
				WithReportableDetails(map[string]any{
					"invoice_id":      inv.ID,
					"total_amount":    inv.TotalAmount.String(),
					"discount_amount": inv.DiscountAmount.String(),
					"late_fee_amount": inv.LateFeeAmount.String(),
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if inv.NetAmount.LessThan(inv.PaidAmount) {
			return ierr.NewError("adjustment would make the net amount lower than the amount paid").
				WithHint("Discount cannot reduce the invoice below the amount already paid").
				WithReportableDetails(map[string]any{
					"invoice_id":      inv.ID,
					"net_amount":      inv.NetAmount.String(),
					"paid_amount":     inv.PaidAmount.String(),
					"discount_amount": inv.DiscountAmount.String(),
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		inv.UpdatedAt = s.now()
		inv.UpdatedBy = types.GetUserID(txCtx)

		if err := inv.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}
		if err := s.audit.RecordInvoice(txCtx, types.AuditActionUpdate, before, inv, nil); err != nil {
			return err
		}

		adjusted = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("adjusted invoice",
		"invoice_id", adjusted.ID,
		"discount_amount", adjusted.DiscountAmount.String(),
		"late_fee_amount", adjusted.LateFeeAmount.String(),
		"net_amount", adjusted.NetAmount.String())

	s.publishInvoiceEvent(ctx, types.InvoiceEventAdjusted, adjusted)
	return dto.NewInvoiceResponse(adjusted), nil
}

// ReverseInvoice cancels an unpaid invoice. Cancellation is terminal.
func (s *invoiceService) ReverseInvoice(ctx context.Context, id string, req *dto.ReverseInvoiceRequest) (*dto.ReverseInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var original, cancelled *invoice.Invoice
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if inv.IsCancelled() {
			return ierr.NewError("invoice is already cancelled").
				WithHint("Invoice is already cancelled").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if inv.InvoiceStatus == types.InvoiceStatusPaid {
			return ierr.NewError("cannot reverse a paid invoice").
				WithHint("Paid invoices cannot be reversed").
				WithReportableDetails(map[string]any{
					"invoice_id":     inv.ID,
					"invoice_status": inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if !inv.PaidAmount.IsZero() {
			return ierr.NewError("cannot reverse invoice with payments; process refunds first").
				WithHint("Cannot reverse invoice with payments; process refunds first").
				WithReportableDetails(map[string]any{
					"invoice_id":  inv.ID,
					"paid_amount": inv.PaidAmount.String(),
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		original = inv.Copy()

		now := s.now()
		actor := types.GetUserID(txCtx)
		inv.InvoiceStatus = types.InvoiceStatusCancelled
		inv.ReversalReason = lo.ToPtr(req.Reason)
		inv.ReversedAt = lo.ToPtr(now)
		inv.ReversedBy = lo.EmptyableToPtr(actor)
		inv.UpdatedAt = now
		inv.UpdatedBy = actor

		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}
		if err := s.audit.RecordInvoice(txCtx, types.AuditActionUpdate, original, inv, types.Metadata{
			metadataReversalReason: req.Reason,
		}); err != nil {
			return err
		}

		cancelled = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reversed invoice",
		"invoice_id", cancelled.ID,
		"invoice_number", cancelled.InvoiceNumber,
		"reason", req.Reason)

	s.publishInvoiceEvent(ctx, types.InvoiceEventReversed, cancelled)
	return &dto.ReverseInvoiceResponse{
		OriginalInvoice:  dto.NewInvoiceResponse(original),
		CancelledInvoice: dto.NewInvoiceResponse(cancelled),
		Reason:           req.Reason,
	}, nil
}
