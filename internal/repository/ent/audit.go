package ent

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/flexprice/feeledger/internal/domain/audit"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type auditRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewAuditRepository(client *postgres.Client, log *logger.Logger) audit.Repository {
	return &auditRepository{
		client: client,
		log:    log,
	}
}

func (r *auditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	span := StartRepositorySpan(ctx, "audit", "create", map[string]interface{}{
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"action":      entry.Action,
	})
	defer FinishSpan(span)

	// a nil RawMessage must reach postgres as NULL rather than an empty string
	var oldValue any
	if len(entry.OldValue) > 0 {
		oldValue = []byte(entry.OldValue)
	}

	query, args := pg.Insert(types.TableNameAuditEntries.String()).
		Columns("id", "entity_type", "entity_id", "action", "actor_id", "old_value", "new_value", "created_at").
		Values(
			entry.ID,
			string(entry.EntityType),
			entry.EntityID,
			string(entry.Action),
			entry.ActorID,
			oldValue,
			[]byte(entry.NewValue),
			entry.CreatedAt,
		).
		Query()

	if _, err := r.client.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		SetSpanError(span, err)
		return ierr.WithError(err).
			WithHint("Failed to write audit entry").
			WithReportableDetails(map[string]any{
				"entity_id": entry.EntityID,
			}).
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType types.AuditEntityType, entityID string) ([]*audit.Entry, error) {
	span := StartRepositorySpan(ctx, "audit", "list_by_entity", map[string]interface{}{
		"entity_type": entityType,
		"entity_id":   entityID,
	})
	defer FinishSpan(span)

	query, args := pg.Select("id", "entity_type", "entity_id", "action", "actor_id", "old_value", "new_value", "created_at").
		From(pg.Table(types.TableNameAuditEntries.String())).
		Where(entsql.And(
			entsql.EQ("entity_type", string(entityType)),
			entsql.EQ("entity_id", entityID),
		)).
		OrderBy("created_at", "id").
		Query()

	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	entries := make([]*audit.Entry, 0)
	for rows.Next() {
		var (
			e          audit.Entry
			entityType string
			action     string
			oldValue   []byte
			newValue   []byte
		)
		if err := rows.Scan(&e.ID, &entityType, &e.EntityID, &action, &e.ActorID, &oldValue, &newValue, &e.CreatedAt); err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to read audit entry").
				Mark(ierr.ErrDatabase)
		}
		e.EntityType = types.AuditEntityType(entityType)
		e.Action = types.AuditAction(action)
		e.OldValue = oldValue
		e.NewValue = newValue
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit entries").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return entries, nil
}
