package service

import (
	"context"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/feeledger/internal/api/dto"
	"github.com/flexprice/feeledger/internal/domain/feedefinition"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/events"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const defaultNumberRetryInterval = 50 * time.Millisecond

// InvoiceService owns the invoice lifecycle: generation, adjustment and
// reversal, plus the read side used by the API.
type InvoiceService interface {
	GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	GenerateInvoicesBulk(ctx context.Context, req *dto.BulkGenerateInvoicesRequest) (*dto.BulkGenerateInvoicesResponse, error)
	AdjustInvoice(ctx context.Context, id string, req *dto.AdjustInvoiceRequest) (*dto.InvoiceResponse, error)
	ReverseInvoice(ctx context.Context, id string, req *dto.ReverseInvoiceRequest) (*dto.ReverseInvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req *dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	ExportInvoicesCSV(ctx context.Context, filter *types.InvoiceFilter, w io.Writer) error
	GetInvoiceAuditHistory(ctx context.Context, id string) (*dto.ListAuditEntriesResponse, error)
}

type invoiceService struct {
	ServiceParams
	sequence  SequenceGenerator
	discounts DiscountResolver
	audit     AuditRecorder
	location  *time.Location
	now       func() time.Time
}

func NewInvoiceService(params ServiceParams) (InvoiceService, error) {
	sequence, err := NewSequenceGenerator(params)
	if err != nil {
		return nil, err
	}
	loc, err := types.LoadLocation(params.Config.Billing.Timezone)
	if err != nil {
		return nil, err
	}

	return &invoiceService{
		ServiceParams: params,
		sequence:      sequence,
		discounts:     NewDiscountResolver(params),
		audit:         NewAuditRecorder(params),
		location:      loc,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	def, err := s.loadBillableDefinition(ctx, req.FeeDefinitionID)
	if err != nil {
		return nil, err
	}

	inv, err := s.generateForDefinition(ctx, def, req)
	if err != nil {
		return nil, err
	}

	s.publishInvoiceEvent(ctx, types.InvoiceEventCreated, inv)
	return dto.NewInvoiceResponse(inv), nil
}

// loadBillableDefinition fetches the fee definition and checks it can be
// invoiced against
func (s *invoiceService) loadBillableDefinition(ctx context.Context, id string) (*feedefinition.FeeDefinition, error) {
	def, err := s.FeeDefinitionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := def.ValidateBillable(); err != nil {
		return nil, err
	}
	return def, nil
}

// generateForDefinition issues one invoice. req is already validated and def
// already checked, so bulk generation can share both across payers.
func (s *invoiceService) generateForDefinition(
	ctx context.Context,
	def *feedefinition.FeeDefinition,
	req *dto.GenerateInvoiceRequest,
) (*invoice.Invoice, error) {
	exists, err := s.PayerDirectory.Exists(ctx, req.PayerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ierr.NewErrorf("payer %s not found", req.PayerID).
			WithHint("Payer was not found in the registry").
			WithReportableDetails(map[string]any{
				"payer_id": req.PayerID,
			}).
			Mark(ierr.ErrNotFound)
	}

	issueDate := s.now()
	if req.DueDate.Before(s.startOfBillingDay(issueDate)) {
		return nil, ierr.NewError("due date is before the issue date").
			WithHint("Due date cannot be in the past").
			WithReportableDetails(map[string]any{
				"due_date": req.DueDate,
			}).
			Mark(ierr.ErrValidation)
	}

	inv := s.buildInvoice(ctx, def, req, issueDate)

	if req.ShouldApplyDiscounts() {
		resolved, err := s.discounts.Resolve(ctx, &ResolveDiscountsRequest{
			Lines:    inv.Lines,
			PayerID:  inv.PayerID,
			PeriodID: inv.PeriodID,
			Currency: inv.Currency,
			AsOf:     issueDate,
		})
		if err != nil {
			return nil, err
		}
		inv.Lines = resolved.Lines
		inv.DiscountAmount = resolved.TotalDiscount
	}
	inv.RecalculateNet()

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	period := s.sequence.PeriodFor(issueDate)
	err = s.retryOnNumberCollision(ctx, period, func() error {
		return s.DB.WithTx(ctx, func(txCtx context.Context) error {
			number, err := s.sequence.NextInvoiceNumber(txCtx, period)
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number

			if err := s.InvoiceRepo.CreateWithLines(txCtx, inv); err != nil {
				return err
			}
			return s.audit.RecordInvoice(txCtx, types.AuditActionCreate, nil, inv, nil)
		})
	})
	if err != nil {
		s.Logger.Errorw("failed to generate invoice",
			"payer_id", req.PayerID,
			"fee_definition_id", def.ID,
			"error", err)
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"payer_id", inv.PayerID,
		"net_amount", inv.NetAmount.String())
	return inv, nil
}

func (s *invoiceService) buildInvoice(
	ctx context.Context,
	def *feedefinition.FeeDefinition,
	req *dto.GenerateInvoiceRequest,
	issueDate time.Time,
) *invoice.Invoice {
	invoiceID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)

	lines := lo.Map(def.Lines, func(t *feedefinition.FeeLineTemplate, i int) *invoice.InvoiceLine {
		quantity := t.Quantity
		if quantity.IsZero() {
			quantity = decimal.NewFromInt(1)
		}
		return &invoice.InvoiceLine{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE),
			InvoiceID:        invoiceID,
			FeeLineID:        t.ID,
			Category:         t.Category,
			Description:      t.Description,
			Amount:           t.Amount,
			Quantity:         quantity,
			LineItemDiscount: decimal.Zero,
			LedgerAccountRef: t.LedgerAccountRef,
			SortOrder:        i,
		}
	})

	campusID := req.CampusID
	if campusID == nil {
		campusID = lo.EmptyableToPtr(types.GetCampusID(ctx))
	}

	return &invoice.Invoice{
		ID:              invoiceID,
		PayerID:         req.PayerID,
		FeeDefinitionID: def.ID,
		PeriodID:        req.PeriodID,
		CampusID:        campusID,
		Currency:        lo.Ternary(def.Currency != "", def.Currency, s.Config.Billing.Currency),
		InvoiceStatus:   types.InvoiceStatusIssued,
		IssueDate:       issueDate,
		DueDate:         req.DueDate.UTC(),
		TotalAmount:     def.TotalAmount(),
		DiscountAmount:  decimal.Zero,
		LateFeeAmount:   decimal.Zero,
		PaidAmount:      decimal.Zero,
		Version:         1,
		Lines:           lines,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
}

// retryOnNumberCollision reruns op while it fails on a duplicate invoice
// number. Every other failure is returned immediately.
// The counter is resynced before each retry; a rolled back transaction
// releases its number.
func (s *invoiceService) retryOnNumberCollision(ctx context.Context, period string, op func() error) error {
	interval := s.Config.Billing.RetryInterval
	if interval <= 0 {
		interval = defaultNumberRetryInterval
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = interval
	expBackoff.MaxInterval = 20 * interval
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, s.Config.Billing.NumberRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if ierr.IsAlreadyExists(err) {
			s.Logger.Warnw("invoice number collision, retrying",
				"attempt", attempt,
				"period", period,
				"error", err)
			if syncErr := s.sequence.Resync(ctx, period); syncErr != nil {
				return backoff.Permanent(syncErr)
			}
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req *dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *invoice.Invoice
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus.IsFinal() {
			return ierr.NewErrorf("cannot update invoice in status %s", inv.InvoiceStatus).
				WithHintf("Invoice is %s and can no longer be updated", inv.InvoiceStatus).
				WithReportableDetails(map[string]any{
					"invoice_id":     inv.ID,
					"invoice_status": inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if req.InvoiceStatus != nil {
			if err := checkStatusUpdate(inv, *req.InvoiceStatus); err != nil {
				return err
			}
		}

		if req.DueDate != nil && req.DueDate.Before(s.startOfBillingDay(inv.IssueDate)) {
			return ierr.NewError("due date is before the issue date").
				WithHint("Due date cannot be before the issue date").
				WithReportableDetails(map[string]any{
					"due_date":   *req.DueDate,
					"issue_date": inv.IssueDate,
				}).
				Mark(ierr.ErrValidation)
		}

		before := inv.Copy()
		req.ApplyTo(txCtx, inv)

		if err := inv.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}
		if err := s.audit.RecordInvoice(txCtx, types.AuditActionUpdate, before, inv, nil); err != nil {
			return err
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("updated invoice",
		"invoice_id", updated.ID,
		"invoice_status", updated.InvoiceStatus,
		"due_date", updated.DueDate)

	s.publishInvoiceEvent(ctx, types.InvoiceEventUpdated, updated)
	return dto.NewInvoiceResponse(updated), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allocations, err := s.PaymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewInvoiceResponse(inv).WithAllocations(allocations), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Data:       lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse { return dto.NewInvoiceResponse(inv) }),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// ExportInvoicesCSV writes every invoice matching filter, ignoring pagination
func (s *invoiceService) ExportInvoicesCSV(ctx context.Context, filter *types.InvoiceFilter, w io.Writer) error {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}

	exportFilter := *filter
	noLimit := types.NewNoLimitQueryFilter()
	if filter.QueryFilter != nil {
		noLimit.Sort = filter.Sort
		noLimit.Order = filter.Order
	}
	exportFilter.QueryFilter = noLimit

	if err := exportFilter.Validate(); err != nil {
		return err
	}

	invoices, err := s.InvoiceRepo.List(ctx, &exportFilter)
	if err != nil {
		return err
	}

	rows := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceCSVRow {
		return dto.NewInvoiceCSVRow(inv)
	})

	if err := gocsv.Marshal(rows, w); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write invoice export").
			Mark(ierr.ErrSystem)
	}

	s.Logger.Infow("exported invoices", "count", len(rows))
	return nil
}

func (s *invoiceService) GetInvoiceAuditHistory(ctx context.Context, id string) (*dto.ListAuditEntriesResponse, error) {
	if _, err := s.InvoiceRepo.Get(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.AuditRepo.ListByEntity(ctx, types.AuditEntityTypeInvoice, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListAuditEntriesResponse{
		Items: make([]*dto.AuditEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Items = append(resp.Items, &dto.AuditEntryResponse{Entry: e})
	}
	return resp, nil
}

// publishInvoiceEvent runs after commit. Delivery failures are logged only;
// the committed change stands.
func (s *invoiceService) publishInvoiceEvent(ctx context.Context, name types.InvoiceEventName, inv *invoice.Invoice) {
	event := &events.InvoiceEvent{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName:     name,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		PayerID:       inv.PayerID,
		CampusID:      lo.FromPtr(inv.CampusID),
		InvoiceStatus: inv.InvoiceStatus,
		Currency:      inv.Currency,
		NetAmount:     inv.NetAmount,
		Version:       inv.Version,
		ActorID:       types.GetUserID(ctx),
		Timestamp:     s.now(),
	}

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish invoice event",
			"event_name", name,
			"invoice_id", inv.ID,
			"error", err)
	}
}

// startOfBillingDay is midnight of t's calendar day in billing.timezone
func (s *invoiceService) startOfBillingDay(t time.Time) time.Time {
	local := t.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}

// checkStatusUpdate allows operators to flag an open invoice overdue or to
// restate its current status. Paid states belong to payment recording and
// cancellation to reversal.
func checkStatusUpdate(inv *invoice.Invoice, next types.InvoiceStatus) error {
	current := inv.InvoiceStatus
	if current == next && current.CanTransitionTo(next) {
		return nil
	}

	details := map[string]any{
		"invoice_id":     inv.ID,
		"invoice_status": current,
		"target_status":  next,
	}
	if next.IsPaymentOwned() {
		return ierr.NewErrorf("invoice status %s is set by payment recording", next).
			WithHintf("Invoice status cannot be set to %s manually", next).
			WithReportableDetails(details).
			Mark(ierr.ErrInvalidOperation)
	}
	if !current.CanTransitionTo(next) {
		return ierr.NewErrorf("invoice status cannot move from %s to %s", current, next).
			WithHintf("Invoice status cannot move from %s to %s", current, next).
			WithReportableDetails(details).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
