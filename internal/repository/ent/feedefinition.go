package ent

import (
	"context"
	"database/sql"
	"errors"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/flexprice/feeledger/internal/domain/feedefinition"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type feeDefinitionRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewFeeDefinitionRepository(client *postgres.Client, log *logger.Logger) feedefinition.Repository {
	return &feeDefinitionRepository{
		client: client,
		log:    log,
	}
}

func (r *feeDefinitionRepository) Get(ctx context.Context, id string) (*feedefinition.FeeDefinition, error) {
	span := StartRepositorySpan(ctx, "fee_definition", "get", map[string]interface{}{
		"fee_definition_id": id,
	})
	defer FinishSpan(span)

	q := r.client.Querier(ctx)

	query, args := pg.Select("id", "name", "version", "period_id", "currency", "is_active",
		"status", "created_by", "updated_by", "created_at", "updated_at").
		From(pg.Table(types.TableNameFeeDefinitions.String())).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		def    feedefinition.FeeDefinition
		status string
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&def.ID,
		&def.Name,
		&def.Version,
		&def.PeriodID,
		&def.Currency,
		&def.IsActive,
		&status,
		&def.CreatedBy,
		&def.UpdatedBy,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Fee definition with ID %s was not found", id).
				WithReportableDetails(map[string]any{
					"fee_definition_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("Failed to get fee definition with ID %s", id).
			Mark(ierr.ErrDatabase)
	}
	def.Status = types.Status(status)

	query, args = pg.Select("id", "fee_definition_id", "category", "description", "amount",
		"quantity", "ledger_account_ref", "sort_order").
		From(pg.Table(types.TableNameFeeLineTemplates.String())).
		Where(entsql.EQ("fee_definition_id", id)).
		OrderBy("sort_order", "id").
		Query()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list fee line templates").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	def.Lines = make([]*feedefinition.FeeLineTemplate, 0)
	for rows.Next() {
		var l feedefinition.FeeLineTemplate
		if err := rows.Scan(
			&l.ID,
			&l.FeeDefinitionID,
			&l.Category,
			&l.Description,
			&l.Amount,
			&l.Quantity,
			&l.LedgerAccountRef,
			&l.SortOrder,
		); err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to read fee line template").
				Mark(ierr.ErrDatabase)
		}
		def.Lines = append(def.Lines, &l)
	}
	if err := rows.Err(); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list fee line templates").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return &def, nil
}
