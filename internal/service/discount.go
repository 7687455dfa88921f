package service

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/domain/discount"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DiscountResolver computes per line discounts from global rules and the
// payer's scholarships
type DiscountResolver interface {
	// Resolve sets LineItemDiscount on every line and returns the lines
	// together with the total discount. Every matching rule contributes; the
	// sum is rounded to the currency precision and then clamped to the line
	// amount.
	Resolve(ctx context.Context, req *ResolveDiscountsRequest) (*ResolveDiscountsResult, error)
}

// ResolveDiscountsRequest carries the lines of one invoice under construction
type ResolveDiscountsRequest struct {
	Lines    []*invoice.InvoiceLine
	PayerID  string
	PeriodID string
	Currency string
	// AsOf selects the global rules whose window contains it
	AsOf time.Time
}

type ResolveDiscountsResult struct {
	Lines         []*invoice.InvoiceLine
	TotalDiscount decimal.Decimal
}

type discountResolver struct {
	ServiceParams
}

func NewDiscountResolver(params ServiceParams) DiscountResolver {
	return &discountResolver{
		ServiceParams: params,
	}
}

func (s *discountResolver) Resolve(ctx context.Context, req *ResolveDiscountsRequest) (*ResolveDiscountsResult, error) {
	rules, err := s.DiscountRepo.ListActiveDiscounts(ctx, req.AsOf)
	if err != nil {
		return nil, err
	}

	scholarships, err := s.DiscountRepo.ListActiveScholarships(ctx, req.PayerID, req.PeriodID)
	if err != nil {
		return nil, err
	}

	// A scholarship counts while it is active itself; its rule's window and
	// flag are not consulted.
	awarded := lo.FilterMap(scholarships, func(sch *discount.Scholarship, _ int) (*discount.Rule, bool) {
		return sch.Rule, sch.IsActive && sch.Rule != nil
	})

	total := decimal.Zero
	for _, line := range req.Lines {
		lineDiscount := decimal.Zero
		for _, rule := range rules {
			if rule.AppliesTo(line.Category) {
				lineDiscount = lineDiscount.Add(rule.Compute(line.Amount))
			}
		}
		for _, rule := range awarded {
			if rule.AppliesTo(line.Category) {
				lineDiscount = lineDiscount.Add(rule.Compute(line.Amount))
			}
		}

		lineDiscount = types.RoundToCurrencyPrecision(lineDiscount, req.Currency)
		lineDiscount = decimal.Max(decimal.Zero, decimal.Min(lineDiscount, line.Amount))

		line.LineItemDiscount = lineDiscount
		total = total.Add(lineDiscount)
	}

	s.Logger.Debugw("resolved discounts",
		"payer_id", req.PayerID,
		"period_id", req.PeriodID,
		"rule_count", len(rules),
		"scholarship_count", len(awarded),
		"total_discount", total.String())

	return &ResolveDiscountsResult{
		Lines:         req.Lines,
		TotalDiscount: total,
	}, nil
}
