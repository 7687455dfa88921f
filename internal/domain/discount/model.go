package discount

import (
	"time"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Rule is a percentage or fixed reduction scoped to fee categories
type Rule struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	DiscountType         types.DiscountType `json:"discount_type"`
	Value                decimal.Decimal    `json:"value"`
	ApplicableCategories []string           `json:"applicable_categories"`
	StartDate            time.Time          `json:"start_date"`
	EndDate              *time.Time         `json:"end_date,omitempty"`
	IsActive             bool               `json:"is_active"`
	types.BaseModel
}

// Scholarship is a payer and period specific award referencing a Rule
type Scholarship struct {
	ID             string `json:"id"`
	PayerID        string `json:"payer_id"`
	PeriodID       string `json:"period_id"`
	DiscountRuleID string `json:"discount_rule_id"`
	IsActive       bool   `json:"is_active"`
	// Rule is loaded alongside the scholarship
	Rule *Rule `json:"rule,omitempty"`
	types.BaseModel
}

// AppliesTo reports whether the rule covers category
func (r *Rule) AppliesTo(category string) bool {
	return lo.Contains(r.ApplicableCategories, types.DiscountCategoryAll) ||
		lo.Contains(r.ApplicableCategories, category)
}

// IsEffective reports whether the rule is active and asOf lies in its window.
// Both bounds are inclusive.
func (r *Rule) IsEffective(asOf time.Time) bool {
	if !r.IsActive {
		return false
	}
	if asOf.Before(r.StartDate) {
		return false
	}
	if r.EndDate != nil && asOf.After(*r.EndDate) {
		return false
	}
	return true
}

// Compute returns the unclamped reduction the rule grants on amount
func (r *Rule) Compute(amount decimal.Decimal) decimal.Decimal {
	switch r.DiscountType {
	case types.DiscountTypePercentage:
		return amount.Mul(r.Value).Div(decimal.NewFromInt(100))
	case types.DiscountTypeFixedAmount:
		return r.Value
	default:
		return decimal.Zero
	}
}
