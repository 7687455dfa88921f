package service

import (
	"context"

	"github.com/flexprice/feeledger/internal/api/dto"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

const opaqueFailureMessage = "An unexpected error occurred"

// GenerateInvoicesBulk issues one invoice per payer on a bounded worker pool.
// A shared precondition failure aborts the batch; per payer failures are
// collected and never stop the remaining payers. Each invoice commits in its
// own transaction.
func (s *invoiceService) GenerateInvoicesBulk(ctx context.Context, req *dto.BulkGenerateInvoicesRequest) (*dto.BulkGenerateInvoicesResponse, error) {
	if err := req.Validate(s.Config.Billing.MaxBulkSize); err != nil {
		return nil, err
	}

	def, err := s.loadBillableDefinition(ctx, req.FeeDefinitionID)
	if err != nil {
		return nil, err
	}

	concurrency := s.Config.Billing.BulkConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if s.Config.Billing.BulkRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.Config.Billing.BulkRateLimit), 1)
	}

	s.Logger.Infow("starting bulk invoice generation",
		"fee_definition_id", def.ID,
		"period_id", req.PeriodID,
		"payer_count", len(req.PayerIDs),
		"concurrency", concurrency)

	// indexed by request position so the response keeps request order
	invoices := make([]*invoice.Invoice, len(req.PayerIDs))
	failures := make([]error, len(req.PayerIDs))

	p := pool.New().WithMaxGoroutines(concurrency)
	for i, payerID := range req.PayerIDs {
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					s.Logger.Errorw("panic while generating invoice",
						"payer_id", payerID,
						"panic", r)
					failures[i] = ierr.NewErrorf("panic: %v", r).Mark(ierr.ErrSystem)
				}
			}()

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					failures[i] = ierr.WithError(err).
						WithHint("Bulk generation was cancelled").
						Mark(ierr.ErrSystem)
					return
				}
			}

			single := req.ToGenerateInvoiceRequest(payerID)
			if err := single.Validate(); err != nil {
				failures[i] = err
				return
			}

			invoices[i], failures[i] = s.generateForDefinition(ctx, def, single)
		})
	}
	p.Wait()

	resp := &dto.BulkGenerateInvoicesResponse{
		Successful: make([]*dto.InvoiceResponse, 0, len(req.PayerIDs)),
		Failed:     make([]*dto.BulkGenerateFailure, 0),
		TotalCount: len(req.PayerIDs),
	}

	for i, payerID := range req.PayerIDs {
		if err := failures[i]; err != nil {
			s.Logger.Warnw("bulk invoice generation failed for payer",
				"payer_id", payerID,
				"fee_definition_id", def.ID,
				"error", err)
			resp.Failed = append(resp.Failed, &dto.BulkGenerateFailure{
				PayerID: payerID,
				Error:   bulkFailureMessage(err),
			})
			continue
		}

		resp.Successful = append(resp.Successful, dto.NewInvoiceResponse(invoices[i]))
		s.publishInvoiceEvent(ctx, types.InvoiceEventCreated, invoices[i])
	}

	resp.SuccessCount = len(resp.Successful)
	resp.FailureCount = len(resp.Failed)

	s.Logger.Infow("completed bulk invoice generation",
		"fee_definition_id", def.ID,
		"total_count", resp.TotalCount,
		"success_count", resp.SuccessCount,
		"failure_count", resp.FailureCount)

	return resp, nil
}

// bulkFailureMessage exposes caller-correctable errors verbatim and hides
// system failures the same way the error middleware does.
func bulkFailureMessage(err error) string {
	switch {
	case ierr.IsValidation(err), ierr.IsNotFound(err), ierr.IsInvalidOperation(err), ierr.IsAlreadyExists(err):
		return err.Error()
	default:
		return opaqueFailureMessage
	}
}
