package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemoryInvoiceStore implements invoice.Repository. Like the invoices table
// it rejects duplicate invoice numbers and stale versions.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	// writeMu makes the duplicate number check and the insert atomic
	writeMu sync.Mutex
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) CreateWithLines(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	duplicates, _ := s.InMemoryStore.Count(ctx, inv.InvoiceNumber, invoiceNumberFilterFn)
	if duplicates > 0 {
		return ierr.NewErrorf("invoice number %s already exists", inv.InvoiceNumber).
			WithHint("Invoice number already exists").
			WithReportableDetails(map[string]any{
				"invoice_number": inv.InvoiceNumber,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	if err := s.InMemoryStore.Create(ctx, inv.ID, inv.Copy()); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"entity_type": "invoice",
				"invoice_id":  id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return inv.Copy(), nil
}

func (s *InMemoryInvoiceStore) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	if existing.Version != inv.Version {
		return ierr.NewError("invoice was modified concurrently").
			WithHint("Invoice was modified by another request, reload and retry").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"version":    inv.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	stored := inv.Copy()
	stored.Version = inv.Version + 1
	// paid_amount belongs to payment recording
	stored.PaidAmount = existing.PaidAmount
	if err := s.InMemoryStore.Update(ctx, inv.ID, stored); err != nil {
		return err
	}

	inv.Version++
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn(filter))
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		cp := inv.Copy()
		cp.Lines = nil
		return cp
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

// SetPaidAmount stands in for the external payment recording collaborator
func (s *InMemoryInvoiceStore) SetPaidAmount(ctx context.Context, id string, paid decimal.Decimal, status types.InvoiceStatus) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := existing.Copy()
	updated.PaidAmount = paid
	updated.InvoiceStatus = status
	updated.Version++
	return s.InMemoryStore.Update(ctx, id, updated)
}

func invoiceNumberFilterFn(_ context.Context, inv *invoice.Invoice, filter interface{}) bool {
	number, ok := filter.(string)
	return ok && inv.InvoiceNumber == number
}

func invoiceFilterFn(_ context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv == nil {
		return false
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok {
		return true
	}

	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if f.PayerID != "" && inv.PayerID != f.PayerID {
		return false
	}
	if f.PeriodID != "" && inv.PeriodID != f.PeriodID {
		return false
	}
	if f.FeeDefinitionID != "" && inv.FeeDefinitionID != f.FeeDefinitionID {
		return false
	}
	if f.CampusID != "" && lo.FromPtr(inv.CampusID) != f.CampusID {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && inv.IssueDate.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && inv.IssueDate.After(*f.EndTime) {
			return false
		}
	}
	return true
}

// invoiceSortFn orders by creation time, newest first unless asc is requested
func invoiceSortFn(filter *types.InvoiceFilter) SortFunc[*invoice.Invoice] {
	asc := filter.QueryFilter != nil && filter.GetOrder() == "asc"
	return func(i, j *invoice.Invoice) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			if asc {
				return i.ID < j.ID
			}
			return i.ID > j.ID
		}
		if asc {
			return i.CreatedAt.Before(j.CreatedAt)
		}
		return i.CreatedAt.After(j.CreatedAt)
	}
}
