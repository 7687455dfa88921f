package ent

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/flexprice/feeledger/internal/cache"
	"github.com/flexprice/feeledger/internal/domain/discount"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

var discountRuleColumns = []string{
	"id",
	"name",
	"discount_type",
	"value",
	"applicable_categories",
	"start_date",
	"end_date",
	"is_active",
	"status",
	"created_by",
	"updated_by",
	"created_at",
	"updated_at",
}

type discountRepository struct {
	client *postgres.Client
	log    *logger.Logger
	cache  cache.Cache
}

func NewDiscountRepository(client *postgres.Client, log *logger.Logger, c cache.Cache) discount.Repository {
	return &discountRepository{
		client: client,
		log:    log,
		cache:  c,
	}
}

// ListActiveDiscounts serves the active rule set from cache and filters it by
// asOf in memory.
func (r *discountRepository) ListActiveDiscounts(ctx context.Context, asOf time.Time) ([]*discount.Rule, error) {
	rules, err := r.activeRules(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(rules, func(rule *discount.Rule, _ int) bool {
		return rule.IsEffective(asOf)
	}), nil
}

func (r *discountRepository) activeRules(ctx context.Context) ([]*discount.Rule, error) {
	if cached, ok := r.cache.Get(ctx, cache.KeyActiveDiscountRules); ok {
		if rules, ok := cache.UnmarshalCacheValue[[]*discount.Rule](cached); ok {
			return *rules, nil
		}
	}

	span := StartRepositorySpan(ctx, "discount_rule", "list_active", nil)
	defer FinishSpan(span)

	query, args := pg.Select(discountRuleColumns...).
		From(pg.Table(types.TableNameDiscountRules.String())).
		Where(entsql.And(
			entsql.EQ("is_active", true),
			entsql.EQ("status", string(types.StatusPublished)),
		)).
		OrderBy("start_date", "id").
		Query()

	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list discount rules").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	rules := make([]*discount.Rule, 0)
	for rows.Next() {
		rule, err := scanDiscountRule(rows)
		if err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to read discount rule").
				Mark(ierr.ErrDatabase)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list discount rules").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, cache.KeyActiveDiscountRules, &rules, 0)
	SetSpanSuccess(span)
	return rules, nil
}

// ListActiveScholarships joins each scholarship to its rule. Only the
// scholarship's own flag is checked, the rule's window is not.
func (r *discountRepository) ListActiveScholarships(ctx context.Context, payerID, periodID string) ([]*discount.Scholarship, error) {
	span := StartRepositorySpan(ctx, "scholarship", "list_active", map[string]interface{}{
		"payer_id":  payerID,
		"period_id": periodID,
	})
	defer FinishSpan(span)

	s := pg.Table(types.TableNameScholarships.String()).As("s")
	d := pg.Table(types.TableNameDiscountRules.String()).As("d")

	columns := []string{
		s.C("id"),
		s.C("payer_id"),
		s.C("period_id"),
		s.C("discount_rule_id"),
		s.C("is_active"),
	}
	columns = append(columns, lo.Map(discountRuleColumns, func(c string, _ int) string {
		return d.C(c)
	})...)

	query, args := pg.Select(columns...).
		From(s).
		Join(d).On(s.C("discount_rule_id"), d.C("id")).
		Where(entsql.And(
			entsql.EQ(s.C("payer_id"), payerID),
			entsql.EQ(s.C("period_id"), periodID),
			entsql.EQ(s.C("is_active"), true),
		)).
		OrderBy(s.C("created_at"), s.C("id")).
		Query()

	rows, err := r.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list scholarships").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	scholarships := make([]*discount.Scholarship, 0)
	for rows.Next() {
		var (
			sch          discount.Scholarship
			rule         discount.Rule
			discountType string
			status       string
			categories   pq.StringArray
		)
		if err := rows.Scan(
			&sch.ID,
			&sch.PayerID,
			&sch.PeriodID,
			&sch.DiscountRuleID,
			&sch.IsActive,
			&rule.ID,
			&rule.Name,
			&discountType,
			&rule.Value,
			&categories,
			&rule.StartDate,
			&rule.EndDate,
			&rule.IsActive,
			&status,
			&rule.CreatedBy,
			&rule.UpdatedBy,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			SetSpanError(span, err)
			return nil, ierr.WithError(err).
				WithHint("Failed to read scholarship").
				Mark(ierr.ErrDatabase)
		}
		rule.DiscountType = types.DiscountType(discountType)
		rule.ApplicableCategories = []string(categories)
		rule.Status = types.Status(status)
		sch.Rule = &rule
		scholarships = append(scholarships, &sch)
	}
	if err := rows.Err(); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list scholarships").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return scholarships, nil
}

func scanDiscountRule(row rowScanner) (*discount.Rule, error) {
	var (
		rule         discount.Rule
		discountType string
		status       string
		categories   pq.StringArray
	)
	if err := row.Scan(
		&rule.ID,
		&rule.Name,
		&discountType,
		&rule.Value,
		&categories,
		&rule.StartDate,
		&rule.EndDate,
		&rule.IsActive,
		&status,
		&rule.CreatedBy,
		&rule.UpdatedBy,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rule.DiscountType = types.DiscountType(discountType)
	rule.ApplicableCategories = []string(categories)
	rule.Status = types.Status(status)
	return &rule, nil
}
