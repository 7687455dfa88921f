package testutil

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/domain/discount"
	"github.com/samber/lo"
)

// InMemoryDiscountStore implements discount.Repository
type InMemoryDiscountStore struct {
	rules        *InMemoryStore[*discount.Rule]
	scholarships *InMemoryStore[*discount.Scholarship]
}

func NewInMemoryDiscountStore() *InMemoryDiscountStore {
	return &InMemoryDiscountStore{
		rules:        NewInMemoryStore[*discount.Rule](),
		scholarships: NewInMemoryStore[*discount.Scholarship](),
	}
}

func copyRule(r *discount.Rule) *discount.Rule {
	if r == nil {
		return nil
	}
	cp := *r
	cp.ApplicableCategories = append([]string(nil), r.ApplicableCategories...)
	return &cp
}

func (s *InMemoryDiscountStore) CreateRule(ctx context.Context, rule *discount.Rule) error {
	return s.rules.Create(ctx, rule.ID, copyRule(rule))
}

func (s *InMemoryDiscountStore) CreateScholarship(ctx context.Context, sch *discount.Scholarship) error {
	cp := *sch
	cp.Rule = nil
	return s.scholarships.Create(ctx, sch.ID, &cp)
}

func (s *InMemoryDiscountStore) ListActiveDiscounts(ctx context.Context, asOf time.Time) ([]*discount.Rule, error) {
	rules, err := s.rules.List(ctx, nil, func(_ context.Context, r *discount.Rule, _ interface{}) bool {
		return r.IsEffective(asOf)
	}, func(i, j *discount.Rule) bool {
		return i.ID < j.ID
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(rules, func(r *discount.Rule, _ int) *discount.Rule { return copyRule(r) }), nil
}

func (s *InMemoryDiscountStore) ListActiveScholarships(ctx context.Context, payerID, periodID string) ([]*discount.Scholarship, error) {
	scholarships, err := s.scholarships.List(ctx, nil, func(_ context.Context, sch *discount.Scholarship, _ interface{}) bool {
		return sch.IsActive && sch.PayerID == payerID && sch.PeriodID == periodID
	}, func(i, j *discount.Scholarship) bool {
		return i.ID < j.ID
	})
	if err != nil {
		return nil, err
	}

	result := make([]*discount.Scholarship, 0, len(scholarships))
	for _, sch := range scholarships {
		rule, err := s.rules.Get(ctx, sch.DiscountRuleID)
		if err != nil {
			continue
		}
		cp := *sch
		cp.Rule = copyRule(rule)
		result = append(result, &cp)
	}
	return result, nil
}

func (s *InMemoryDiscountStore) Clear() {
	s.rules.Clear()
	s.scholarships.Clear()
}
