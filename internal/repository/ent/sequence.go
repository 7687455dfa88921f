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
)

const (
	sequenceIncrementQuery = `UPDATE invoice_sequences
SET last_value = last_value + 1, updated_at = now()
WHERE period_key = $1
RETURNING last_value`

	sequenceSeedQuery = `INSERT INTO invoice_sequences (period_key, last_value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (period_key) DO UPDATE
SET last_value = invoice_sequences.last_value + 1, updated_at = now()
RETURNING last_value`

	sequenceResyncQuery = `INSERT INTO invoice_sequences (period_key, last_value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (period_key) DO UPDATE
SET last_value = GREATEST(invoice_sequences.last_value, EXCLUDED.last_value), updated_at = now()`
)

type sequenceRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewSequenceRepository(client *postgres.Client, log *logger.Logger) invoice.SequenceRepository {
	return &sequenceRepository{
		client: client,
		log:    log,
	}
}

// NextSequence increments the period counter. The row lock taken by the
// UPDATE is held until the caller's transaction ends, so two generators never
// observe the same value and a rolled back invoice releases its reservation.
func (r *sequenceRepository) NextSequence(ctx context.Context, period string) (int64, error) {
	span := StartRepositorySpan(ctx, "invoice_sequence", "next", map[string]interface{}{
		"period": period,
	})
	defer FinishSpan(span)

	var next int64
	err := r.client.WithTx(ctx, func(txCtx context.Context) error {
		value, found, err := r.increment(txCtx, period)
		if err != nil {
			return err
		}
		if found {
			next = value
			return nil
		}

		// First number of the period. Serialize seeding so concurrent
		// generators agree on the starting point.
		// Sequences are global across campuses, so the key ignores ctx scope.
		lockKey := types.GenerateLockKey(context.Background(), types.LockScopeInvoiceSequence, map[string]interface{}{
			"period": period,
		})
		if err := r.client.LockKey(txCtx, types.LockRequest{Key: lockKey}); err != nil {
			return err
		}

		value, found, err = r.increment(txCtx, period)
		if err != nil {
			return err
		}
		if found {
			next = value
			return nil
		}

		seed, err := r.highestIssued(txCtx, period)
		if err != nil {
			return err
		}

		if err := r.client.Querier(txCtx).QueryRowContext(txCtx, sequenceSeedQuery, period, seed+1).Scan(&next); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to seed invoice sequence").
				WithReportableDetails(map[string]any{
					"period": period,
				}).
				Mark(ierr.ErrDatabase)
		}

		r.log.Infow("seeded invoice sequence",
			"period", period,
			"seed", seed,
			"next", next)
		return nil
	})
	if err != nil {
		SetSpanError(span, err)
		return 0, err
	}

	SetSpanSuccess(span)
	return next, nil
}

// Resync moves the period counter up to the highest number already issued.
// It never moves the counter backwards.
func (r *sequenceRepository) Resync(ctx context.Context, period string) error {
	span := StartRepositorySpan(ctx, "invoice_sequence", "resync", map[string]interface{}{
		"period": period,
	})
	defer FinishSpan(span)

	err := r.client.WithTx(ctx, func(txCtx context.Context) error {
		lockKey := types.GenerateLockKey(context.Background(), types.LockScopeInvoiceSequence, map[string]interface{}{
			"period": period,
		})
		if err := r.client.LockKey(txCtx, types.LockRequest{Key: lockKey}); err != nil {
			return err
		}

		highest, err := r.highestIssued(txCtx, period)
		if err != nil {
			return err
		}

		if _, err := r.client.Querier(txCtx).ExecContext(txCtx, sequenceResyncQuery, period, highest); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to resync invoice sequence").
				WithReportableDetails(map[string]any{
					"period": period,
				}).
				Mark(ierr.ErrDatabase)
		}

		r.log.Warnw("resynced invoice sequence",
			"period", period,
			"highest_issued", highest)
		return nil
	})
	if err != nil {
		SetSpanError(span, err)
		return err
	}

	SetSpanSuccess(span)
	return nil
}

func (r *sequenceRepository) increment(ctx context.Context, period string) (int64, bool, error) {
	var value int64
	err := r.client.Querier(ctx).QueryRowContext(ctx, sequenceIncrementQuery, period).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, ierr.WithError(err).
			WithHint("Failed to increment invoice sequence").
			WithReportableDetails(map[string]any{
				"period": period,
			}).
			Mark(ierr.ErrDatabase)
	}
	return value, true, nil
}

// highestIssued returns the largest sequence already used in period, so a
// counter table created after invoices exist never reissues a number.
func (r *sequenceRepository) highestIssued(ctx context.Context, period string) (int64, error) {
	query, args := pg.Select("invoice_number").
		From(pg.Table(types.TableNameInvoices.String())).
		Where(entsql.HasPrefix("invoice_number", types.InvoiceNumberPeriodPrefix(period))).
		Query()

	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to read issued invoice numbers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var highest int64
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to read issued invoice numbers").
				Mark(ierr.ErrDatabase)
		}
		_, seq, err := types.ParseInvoiceNumber(number)
		if err != nil {
			r.log.Warnw("skipping malformed invoice number while seeding sequence",
				"invoice_number", number,
				"period", period)
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	if err := rows.Err(); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to read issued invoice numbers").
			Mark(ierr.ErrDatabase)
	}
	return highest, nil
}
