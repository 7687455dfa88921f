package discount

import (
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRule_IsEffective(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	rule := &Rule{StartDate: start, EndDate: &end, IsActive: true}

	assert.True(t, rule.IsEffective(start))
	assert.True(t, rule.IsEffective(end))
	assert.False(t, rule.IsEffective(start.Add(-time.Second)))
	assert.False(t, rule.IsEffective(end.Add(time.Second)))

	openEnded := &Rule{StartDate: start, IsActive: true}
	assert.True(t, openEnded.IsEffective(start.AddDate(10, 0, 0)))

	inactive := &Rule{StartDate: start, IsActive: false}
	assert.False(t, inactive.IsEffective(start.AddDate(0, 1, 0)))
}

func TestRule_AppliesTo(t *testing.T) {
	rule := &Rule{ApplicableCategories: []string{"TUITION", "LAB"}}
	assert.True(t, rule.AppliesTo("TUITION"))
	assert.False(t, rule.AppliesTo("LIBRARY"))

	all := &Rule{ApplicableCategories: []string{types.DiscountCategoryAll}}
	assert.True(t, all.AppliesTo("LIBRARY"))

	none := &Rule{}
	assert.False(t, none.AppliesTo("TUITION"))
}

func TestRule_Compute(t *testing.T) {
	amount := decimal.RequireFromString("250.00")

	pct := &Rule{DiscountType: types.DiscountTypePercentage, Value: decimal.NewFromInt(12)}
	assert.True(t, decimal.NewFromInt(30).Equal(pct.Compute(amount)))

	fixed := &Rule{DiscountType: types.DiscountTypeFixedAmount, Value: decimal.RequireFromString("400")}
	// unclamped; the resolver clamps
	assert.True(t, decimal.NewFromInt(400).Equal(fixed.Compute(amount)))

	unknown := &Rule{DiscountType: types.DiscountType("TIERED"), Value: decimal.NewFromInt(5)}
	assert.True(t, unknown.Compute(amount).IsZero())
}
