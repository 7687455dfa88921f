package feedefinition

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FeeDefinition is a named catalog of charges for a billing period.
// It is maintained by finance configuration and is read-only to billing.
type FeeDefinition struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Version  int                `json:"version"`
	PeriodID string             `json:"period_id,omitempty"`
	Currency string             `json:"currency"`
	IsActive bool               `json:"is_active"`
	Lines    []*FeeLineTemplate `json:"lines"`
	types.BaseModel
}

// FeeLineTemplate is one charge of a fee definition
type FeeLineTemplate struct {
	ID               string          `json:"id"`
	FeeDefinitionID  string          `json:"fee_definition_id"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Quantity         decimal.Decimal `json:"quantity"`
	LedgerAccountRef string          `json:"ledger_account_ref"`
	SortOrder        int             `json:"sort_order"`
}

// TotalAmount sums the template amounts
func (f *FeeDefinition) TotalAmount() decimal.Decimal {
	return lo.Reduce(f.Lines, func(acc decimal.Decimal, l *FeeLineTemplate, _ int) decimal.Decimal {
		return acc.Add(l.Amount)
	}, decimal.Zero)
}

// ValidateBillable checks that invoices may be generated against f.
func (f *FeeDefinition) ValidateBillable() error {
	if !f.IsActive {
		return ierr.NewErrorf("fee definition %s is not active", f.ID).
			WithHint("Fee definition is not active").
			WithReportableDetails(map[string]any{
				"fee_definition_id": f.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if len(f.Lines) == 0 {
		return ierr.NewErrorf("fee definition %s has no line items", f.ID).
			WithHint("Fee definition has no line items").
			WithReportableDetails(map[string]any{
				"fee_definition_id": f.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	for _, line := range f.Lines {
		if line.Amount.IsNegative() {
			return ierr.NewErrorf("fee line %s has a negative amount", line.ID).
				WithHint("Fee line amounts must be non negative").
				WithReportableDetails(map[string]any{
					"fee_definition_id": f.ID,
					"fee_line_id":       line.ID,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
