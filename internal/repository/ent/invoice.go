package ent

import (
	"context"
	"database/sql"
	"errors"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
)

const invoiceNumberConstraint = "invoices_invoice_number_key"

var invoiceColumns = []string{
	"id",
	"invoice_number",
	"payer_id",
	"fee_definition_id",
	"period_id",
	"campus_id",
	"currency",
	"invoice_status",
	"issue_date",
	"due_date",
	"total_amount",
	"discount_amount",
	"late_fee_amount",
	"net_amount",
	"paid_amount",
	"reversal_reason",
	"reversed_at",
	"reversed_by",
	"version",
	"status",
	"created_by",
	"updated_by",
	"created_at",
	"updated_at",
}

var invoiceLineColumns = []string{
	"id",
	"invoice_id",
	"fee_line_id",
	"category",
	"description",
	"amount",
	"quantity",
	"line_item_discount",
	"ledger_account_ref",
	"sort_order",
}

// sortable invoice columns exposed through the list filter
var invoiceSortColumns = map[string]string{
	"created_at":     "created_at",
	"issue_date":     "issue_date",
	"due_date":       "due_date",
	"invoice_number": "invoice_number",
	"net_amount":     "net_amount",
}

type invoiceRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewInvoiceRepository(client *postgres.Client, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		client: client,
		log:    log,
	}
}

func (r *invoiceRepository) CreateWithLines(ctx context.Context, inv *invoice.Invoice) error {
	span := StartRepositorySpan(ctx, "invoice", "create_with_lines", map[string]interface{}{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
	})
	defer FinishSpan(span)

	r.log.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"payer_id", inv.PayerID,
		"line_count", len(inv.Lines))

	q := r.client.Querier(ctx)

	query, args := pg.Insert(types.TableNameInvoices.String()).
		Columns(invoiceColumns...).
		Values(
			inv.ID,
			inv.InvoiceNumber,
			inv.PayerID,
			inv.FeeDefinitionID,
			inv.PeriodID,
			inv.CampusID,
			inv.Currency,
			string(inv.InvoiceStatus),
			inv.IssueDate,
			inv.DueDate,
			inv.TotalAmount,
			inv.DiscountAmount,
			inv.LateFeeAmount,
			inv.NetAmount,
			inv.PaidAmount,
			inv.ReversalReason,
			inv.ReversedAt,
			inv.ReversedBy,
			inv.Version,
			string(inv.Status),
			inv.CreatedBy,
			inv.UpdatedBy,
			inv.CreatedAt,
			inv.UpdatedAt,
		).
		Query()

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		SetSpanError(span, err)
		if postgres.IsUniqueViolation(err, invoiceNumberConstraint) {
			return ierr.WithError(err).
				WithHint("Invoice number already exists").
				WithReportableDetails(map[string]any{
					"invoice_number": inv.InvoiceNumber,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	if len(inv.Lines) > 0 {
		insert := pg.Insert(types.TableNameInvoiceLines.String()).Columns(invoiceLineColumns...)
		for _, line := range inv.Lines {
			insert = insert.Values(
				line.ID,
				line.InvoiceID,
				line.FeeLineID,
				line.Category,
				line.Description,
				line.Amount,
				line.Quantity,
				line.LineItemDiscount,
				line.LedgerAccountRef,
				line.SortOrder,
			)
		}
		query, args = insert.Query()
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			SetSpanError(span, err)
			return ierr.WithError(err).
				WithHint("Failed to create invoice lines").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
				}).
				Mark(ierr.ErrDatabase)
		}
	}

	SetSpanSuccess(span)
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.get(ctx, id, false)
}

func (r *invoiceRepository) GetForUpdate(ctx context.Context, id string) (*invoice.Invoice, error) {
	if r.client.TxFromContext(ctx) == nil {
		return nil, ierr.NewError("GetForUpdate must be called inside transaction").
			Mark(ierr.ErrInternal)
	}
	return r.get(ctx, id, true)
}

func (r *invoiceRepository) get(ctx context.Context, id string, forUpdate bool) (*invoice.Invoice, error) {
	span := StartRepositorySpan(ctx, "invoice", "get", map[string]interface{}{
		"invoice_id": id,
		"for_update": forUpdate,
	})
	defer FinishSpan(span)

	selector := pg.Select(invoiceColumns...).
		From(pg.Table(types.TableNameInvoices.String())).
		Where(entsql.EQ("id", id))
	if forUpdate {
		selector = selector.ForUpdate()
	}
	query, args := selector.Query()

	inv, err := scanInvoice(r.client.Querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice with ID %s was not found", id).
				WithReportableDetails(map[string]any{
					"entity_type": "invoice",
					"invoice_id":  id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("Failed to get invoice with ID %s", id).
			Mark(ierr.ErrDatabase)
	}

	lines, err := r.listLines(ctx, id)
	if err != nil {
		SetSpanError(span, err)
		return nil, err
	}
	inv.Lines = lines

	SetSpanSuccess(span)
	return inv, nil
}

func (r *invoiceRepository) listLines(ctx context.Context, invoiceID string) ([]*invoice.InvoiceLine, error) {
	query, args := pg.Select(invoiceLineColumns...).
		From(pg.Table(types.TableNameInvoiceLines.String())).
		Where(entsql.EQ("invoice_id", invoiceID)).
		OrderBy("sort_order", "id").
		Query()

	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoice lines").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	lines := make([]*invoice.InvoiceLine, 0)
	for rows.Next() {
		var l invoice.InvoiceLine
		if err := rows.Scan(
			&l.ID,
			&l.InvoiceID,
			&l.FeeLineID,
			&l.Category,
			&l.Description,
			&l.Amount,
			&l.Quantity,
			&l.LineItemDiscount,
			&l.LedgerAccountRef,
			&l.SortOrder,
		); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read invoice line").
				Mark(ierr.ErrDatabase)
		}
		lines = append(lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoice lines").
			Mark(ierr.ErrDatabase)
	}
	return lines, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	span := StartRepositorySpan(ctx, "invoice", "update", map[string]interface{}{
		"invoice_id": inv.ID,
		"version":    inv.Version,
	})
	defer FinishSpan(span)

	r.log.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"version", inv.Version,
		"invoice_status", inv.InvoiceStatus)

	// paid_amount is owned by payment recording and never written here
	query, args := pg.Update(types.TableNameInvoices.String()).
		Set("invoice_status", string(inv.InvoiceStatus)).
		Set("due_date", inv.DueDate).
		Set("discount_amount", inv.DiscountAmount).
		Set("late_fee_amount", inv.LateFeeAmount).
		Set("net_amount", inv.NetAmount).
		Set("reversal_reason", inv.ReversalReason).
		Set("reversed_at", inv.ReversedAt).
		Set("reversed_by", inv.ReversedBy).
		Set("version", inv.Version+1).
		Set("updated_by", inv.UpdatedBy).
		Set("updated_at", inv.UpdatedAt).
		Where(entsql.And(
			entsql.EQ("id", inv.ID),
			entsql.EQ("version", inv.Version),
		)).
		Query()

	res, err := r.client.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		SetSpanError(span, err)
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		// distinguish a missing row from a stale version
		if _, err := r.get(ctx, inv.ID, false); err != nil {
			return err
		}
		return ierr.NewError("invoice was modified concurrently").
			WithHint("Invoice was modified by another request, reload and retry").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"version":    inv.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	inv.Version++
	SetSpanSuccess(span)
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	span := StartRepositorySpan(ctx, "invoice", "list", map[string]interface{}{
		"filter": filter,
	})
	defer FinishSpan(span)

	selector := pg.Select(invoiceColumns...).
		From(pg.Table(types.TableNameInvoices.String()))
	if p := invoiceFilterPredicate(filter); p != nil {
		selector = selector.Where(p)
	}

	sortColumn := "created_at"
	order := types.FILTER_DEFAULT_ORDER
	if filter.QueryFilter != nil {
		sortColumn = lo.ValueOr(invoiceSortColumns, filter.GetSort(), "created_at")
		order = filter.GetOrder()
	}
	if order == "asc" {
		selector = selector.OrderBy(entsql.Asc(sortColumn), entsql.Asc("id"))
	} else {
		selector = selector.OrderBy(entsql.Desc(sortColumn), entsql.Desc("id"))
	}

	if !filter.IsUnlimited() {
		selector = selector.Limit(filter.GetLimit())
	}
	if filter.GetOffset() > 0 {
		selector = selector.Offset(filter.GetOffset())
	}

	query, args := selector.Query()
	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	invoices := make([]*invoice.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to read invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	selector := pg.Select(entsql.Count("*")).
		From(pg.Table(types.TableNameInvoices.String()))
	if p := invoiceFilterPredicate(filter); p != nil {
		selector = selector.Where(p)
	}
	query, args := selector.Query()

	var count int
	if err := r.client.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func invoiceFilterPredicate(filter *types.InvoiceFilter) *entsql.Predicate {
	preds := make([]*entsql.Predicate, 0)

	if len(filter.InvoiceIDs) > 0 {
		preds = append(preds, entsql.In("id", lo.ToAnySlice(filter.InvoiceIDs)...))
	}
	if filter.PayerID != "" {
		preds = append(preds, entsql.EQ("payer_id", filter.PayerID))
	}
	if filter.PeriodID != "" {
		preds = append(preds, entsql.EQ("period_id", filter.PeriodID))
	}
	if filter.FeeDefinitionID != "" {
		preds = append(preds, entsql.EQ("fee_definition_id", filter.FeeDefinitionID))
	}
	if filter.CampusID != "" {
		preds = append(preds, entsql.EQ("campus_id", filter.CampusID))
	}
	if len(filter.InvoiceStatus) > 0 {
		statuses := lo.Map(filter.InvoiceStatus, func(s types.InvoiceStatus, _ int) any {
			return string(s)
		})
		preds = append(preds, entsql.In("invoice_status", statuses...))
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			preds = append(preds, entsql.GTE("issue_date", *filter.StartTime))
		}
		if filter.EndTime != nil {
			preds = append(preds, entsql.LTE("issue_date", *filter.EndTime))
		}
	}

	return and(preds)
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var (
		inv    invoice.Invoice
		status string
		record string
	)
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.PayerID,
		&inv.FeeDefinitionID,
		&inv.PeriodID,
		&inv.CampusID,
		&inv.Currency,
		&status,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.TotalAmount,
		&inv.DiscountAmount,
		&inv.LateFeeAmount,
		&inv.NetAmount,
		&inv.PaidAmount,
		&inv.ReversalReason,
		&inv.ReversedAt,
		&inv.ReversedBy,
		&inv.Version,
		&record,
		&inv.CreatedBy,
		&inv.UpdatedBy,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.InvoiceStatus = types.InvoiceStatus(status)
	inv.Status = types.Status(record)
	inv.IssueDate = inv.IssueDate.UTC()
	inv.DueDate = inv.DueDate.UTC()
	if inv.ReversedAt != nil {
		inv.ReversedAt = lo.ToPtr(inv.ReversedAt.UTC())
	}
	return &inv, nil
}

