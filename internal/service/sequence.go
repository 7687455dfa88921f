package service

import (
	"context"
	"time"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
)

// SequenceGenerator mints invoice numbers of the form INV-<year>-<000001>
type SequenceGenerator interface {
	// NextInvoiceNumber reserves the next number of period. Inside a
	// transaction the reservation is released if the transaction rolls back.
	NextInvoiceNumber(ctx context.Context, period string) (string, error)

	// PeriodFor returns the numbering period an invoice issued at issuedAt
	// belongs to.
	PeriodFor(issuedAt time.Time) string

	// Resync catches the counter of period up with the numbers in use
	Resync(ctx context.Context, period string) error
}

type sequenceGenerator struct {
	ServiceParams
	location *time.Location
}

func NewSequenceGenerator(params ServiceParams) (SequenceGenerator, error) {
	loc, err := types.LoadLocation(params.Config.Billing.Timezone)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invalid billing timezone %q", params.Config.Billing.Timezone).
			Mark(ierr.ErrValidation)
	}
	return &sequenceGenerator{
		ServiceParams: params,
		location:      loc,
	}, nil
}

func (s *sequenceGenerator) PeriodFor(issuedAt time.Time) string {
	return types.InvoiceNumberPeriod(issuedAt, s.location)
}

func (s *sequenceGenerator) NextInvoiceNumber(ctx context.Context, period string) (string, error) {
	if period == "" {
		return "", ierr.NewError("invoice number period is required").
			WithHint("Invoice number period is required").
			Mark(ierr.ErrValidation)
	}

	seq, err := s.SequenceRepo.NextSequence(ctx, period)
	if err != nil {
		return "", err
	}

	number := types.FormatInvoiceNumber(period, seq)
	s.Logger.Debugw("reserved invoice number",
		"period", period,
		"sequence", seq,
		"invoice_number", number)
	return number, nil
}

func (s *sequenceGenerator) Resync(ctx context.Context, period string) error {
	return s.SequenceRepo.Resync(ctx, period)
}
