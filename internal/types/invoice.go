package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	// InvoiceStatusDraft is reserved for a pre-issue workflow; nothing transitions into it yet.
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

var invoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusIssued,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	if !lo.Contains(invoiceStatuses, s) {
		return ierr.NewErrorf("invalid invoice status %q", s).
			WithHintf("Invoice status must be one of %v", invoiceStatuses).
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_values": invoiceStatuses,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsFinal reports whether the invoice can no longer be adjusted or updated
func (s InvoiceStatus) IsFinal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// invoiceStatusTransitions lists the forward moves of the invoice lifecycle.
// Statuses never move backwards.
var invoiceStatusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:         {InvoiceStatusIssued, InvoiceStatusCancelled},
	InvoiceStatusIssued:        {InvoiceStatusOverdue, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusOverdue:       {InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPartiallyPaid: {InvoiceStatusPaid},
}

// CanTransitionTo reports whether an invoice in status s may move to next.
// Staying in the same non-final status is allowed.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if s == next {
		return !s.IsFinal()
	}
	return lo.Contains(invoiceStatusTransitions[s], next)
}

// IsPaymentOwned reports statuses that only payment recording sets
func (s InvoiceStatus) IsPaymentOwned() bool {
	return s == InvoiceStatusPartiallyPaid || s == InvoiceStatusPaid
}

const (
	InvoiceNumberPrefix      = "INV"
	InvoiceNumberSeparator   = "-"
	InvoiceNumberSuffixWidth = 6
)

// InvoiceNumberPeriod returns the numbering period of an issue date: its
// four digit calendar year in loc.
func InvoiceNumberPeriod(issuedAt time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%04d", issuedAt.In(loc).Year())
}

// InvoiceNumberPeriodPrefix returns "INV-<period>-"
func InvoiceNumberPeriodPrefix(period string) string {
	return InvoiceNumberPrefix + InvoiceNumberSeparator + period + InvoiceNumberSeparator
}

// FormatInvoiceNumber renders INV-<period>-<6 digit zero padded sequence>
func FormatInvoiceNumber(period string, sequence int64) string {
	return fmt.Sprintf("%s%0*d", InvoiceNumberPeriodPrefix(period), InvoiceNumberSuffixWidth, sequence)
}

// ParseInvoiceNumber splits an invoice number into its period and sequence.
func ParseInvoiceNumber(number string) (string, int64, error) {
	parts := strings.Split(number, InvoiceNumberSeparator)
	if len(parts) != 3 || parts[0] != InvoiceNumberPrefix || parts[1] == "" {
		return "", 0, ierr.NewErrorf("malformed invoice number %q", number).
			WithHint("Invoice number must look like INV-<period>-<sequence>").
			Mark(ierr.ErrValidation)
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 0 {
		return "", 0, ierr.NewErrorf("malformed invoice number sequence %q", number).
			WithHint("Invoice number sequence must be numeric").
			Mark(ierr.ErrValidation)
	}
	return parts[1], seq, nil
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	*QueryFilter
	*TimeRangeFilter

	InvoiceIDs      []string        `json:"invoice_ids,omitempty" form:"invoice_ids"`
	PayerID         string          `json:"payer_id,omitempty" form:"payer_id"`
	PeriodID        string          `json:"period_id,omitempty" form:"period_id"`
	FeeDefinitionID string          `json:"fee_definition_id,omitempty" form:"fee_definition_id"`
	CampusID        string          `json:"campus_id,omitempty" form:"campus_id"`
	InvoiceStatus   []InvoiceStatus `json:"invoice_status,omitempty" form:"status"`
}

// NewInvoiceFilter returns a filter with default pagination
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitInvoiceFilter returns a filter without pagination
func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}
	for _, status := range f.InvoiceStatus {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *InvoiceFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *InvoiceFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
