package types

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
)

// DiscountType is how a discount rule's value is applied to a line amount
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

// DiscountCategoryAll matches every fee category
const DiscountCategoryAll = "ALL"

func (t DiscountType) Validate() error {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixedAmount:
		return nil
	}
	return ierr.NewErrorf("invalid discount type %q", t).
		WithHint("Discount type must be PERCENTAGE or FIXED_AMOUNT").
		Mark(ierr.ErrValidation)
}
