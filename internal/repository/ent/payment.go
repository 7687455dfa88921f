package ent

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/flexprice/feeledger/internal/domain/payment"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type paymentRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewPaymentRepository(client *postgres.Client, log *logger.Logger) payment.Repository {
	return &paymentRepository{
		client: client,
		log:    log,
	}
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Allocation, error) {
	span := StartRepositorySpan(ctx, "payment_allocation", "list_by_invoice", map[string]interface{}{
		"invoice_id": invoiceID,
	})
	defer FinishSpan(span)

	query, args := pg.Select("id", "payment_id", "invoice_id", "amount", "allocated_at").
		From(pg.Table(types.TableNamePaymentAllocations.String())).
		Where(entsql.EQ("invoice_id", invoiceID)).
		OrderBy("allocated_at", "id").
		Query()

	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list payment allocations").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	allocations := make([]*payment.Allocation, 0)
	for rows.Next() {
		var a payment.Allocation
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.InvoiceID, &a.Amount, &a.AllocatedAt); err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to read payment allocation").
				Mark(ierr.ErrDatabase)
		}
		allocations = append(allocations, &a)
	}
	if err := rows.Err(); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list payment allocations").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return allocations, nil
}
