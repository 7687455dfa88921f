package service

import (
	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/testutil"
	"github.com/flexprice/feeledger/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func (s *InvoiceServiceSuite) TestAdjustInvoiceAccumulates() {
	inv := s.mustGenerate(testPayerA)

	first, err := s.service.AdjustInvoice(s.GetContext(), inv.ID, &dto.AdjustInvoiceRequest{
		AdditionalDiscount: lo.ToPtr(decimal.NewFromInt(10)),
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(10).Equal(first.DiscountAmount))
	s.True(decimal.NewFromInt(140).Equal(first.NetAmount))

	second, err := s.service.AdjustInvoice(s.GetContext(), inv.ID, &dto.AdjustInvoiceRequest{
		AdditionalDiscount: lo.ToPtr(decimal.NewFromInt(5)),
		AdditionalLateFee:  lo.ToPtr(decimal.RequireFromString("12.50")),
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(15).Equal(second.DiscountAmount))
	s.True(decimal.RequireFromString("12.50").Equal(second.LateFeeAmount))
	s.True(decimal.RequireFromString("147.50").Equal(second.NetAmount))
	s.Equal(3, second.Version)

	// lines are not redistributed
	for _, line := range second.Lines {
		s.True(line.LineItemDiscount.IsZero())
	}

	events := s.GetPublisher().Events()
	s.Require().Len(events, 3)
	s.Equal(types.InvoiceEventAdjusted, events[2].EventName)
}

func (s *InvoiceServiceSuite) TestAdjustInvoiceValidation() {
	inv := s.mustGenerate(testPayerA)

	tests := []struct {
		name     string
		id       string
		req      *dto.AdjustInvoiceRequest
		errCheck func(error) bool
	}{
		{
			name:     "no delta",
			id:       inv.ID,
			req:      &dto.AdjustInvoiceRequest{},
			errCheck: ierr.IsValidation,
		},
		{
			name:     "negative delta",
			id:       inv.ID,
			req:      &dto.AdjustInvoiceRequest{AdditionalLateFee: lo.ToPtr(decimal.NewFromInt(-1))},
			errCheck: ierr.IsValidation,
		},
		{
			name:     "unknown invoice",
			id:       "inv_missing",
			req:      &dto.AdjustInvoiceRequest{AdditionalLateFee: lo.ToPtr(decimal.NewFromInt(1))},
			errCheck: ierr.IsNotFound,
		},
		{
			name:     "discount above total",
			id:       inv.ID,
			req:      &dto.AdjustInvoiceRequest{AdditionalDiscount: lo.ToPtr(decimal.NewFromInt(151))},
			errCheck: ierr.IsInvalidOperation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.AdjustInvoice(s.GetContext(), tt.id, tt.req)
			s.Require().Error(err)
			s.True(tt.errCheck(err), "unexpected error kind: %v", err)
		})
	}

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Version)
	s.True(decimal.NewFromInt(150).Equal(stored.NetAmount))
	s.Equal(1, s.GetStores().AuditRepo.Len())
}

func (s *InvoiceServiceSuite) TestAdjustInvoiceKeepsNetAbovePaid() {
	inv := s.mustGenerate(testPayerA)
	s.Require().NoError(s.GetStores().InvoiceRepo.SetPaidAmount(s.GetContext(), inv.ID, decimal.NewFromInt(100), types.InvoiceStatusPartiallyPaid))

	_, err := s.service.AdjustInvoice(s.GetContext(), inv.ID, &dto.AdjustInvoiceRequest{
		AdditionalDiscount: lo.ToPtr(decimal.NewFromInt(60)),
	})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Contains(err.Error(), "amount paid")

	resp, err := s.service.AdjustInvoice(s.GetContext(), inv.ID, &dto.AdjustInvoiceRequest{
		AdditionalDiscount: lo.ToPtr(decimal.NewFromInt(50)),
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(100).Equal(resp.NetAmount))
	s.True(resp.AmountDue.IsZero())
}

func (s *InvoiceServiceSuite) TestAdjustInvoiceFinalStatus() {
	paid := s.mustGenerate(testPayerA)
	s.Require().NoError(s.GetStores().InvoiceRepo.SetPaidAmount(s.GetContext(), paid.ID, paid.NetAmount, types.InvoiceStatusPaid))

	cancelled := s.mustGenerate(testPayerB)
	_, err := s.service.ReverseInvoice(s.GetContext(), cancelled.ID, &dto.ReverseInvoiceRequest{Reason: "duplicate"})
	s.Require().NoError(err)

	for _, id := range []string{paid.ID, cancelled.ID} {
		_, err := s.service.AdjustInvoice(s.GetContext(), id, &dto.AdjustInvoiceRequest{
			AdditionalLateFee: lo.ToPtr(decimal.NewFromInt(5)),
		})
		s.Require().Error(err)
		s.True(ierr.IsInvalidOperation(err))
		s.Contains(err.Error(), "cannot adjust")
	}
}

func (s *InvoiceServiceSuite) TestReverseInvoice() {
	inv := s.mustGenerate(testPayerA)

	resp, err := s.service.ReverseInvoice(s.GetContext(), inv.ID, &dto.ReverseInvoiceRequest{Reason: "issued to wrong payer"})
	s.Require().NoError(err)

	s.Equal("issued to wrong payer", resp.Reason)
	s.Equal(types.InvoiceStatusIssued, resp.OriginalInvoice.InvoiceStatus)
	s.Nil(resp.OriginalInvoice.ReversalReason)
	s.Equal(types.InvoiceStatusCancelled, resp.CancelledInvoice.InvoiceStatus)
	s.Equal("issued to wrong payer", lo.FromPtr(resp.CancelledInvoice.ReversalReason))
	s.Require().NotNil(resp.CancelledInvoice.ReversedAt)
	s.True(s.testData.now.Equal(*resp.CancelledInvoice.ReversedAt))
	s.Equal(testutil.TestUserID, lo.FromPtr(resp.CancelledInvoice.ReversedBy))

	history, err := s.service.GetInvoiceAuditHistory(s.GetContext(), inv.ID)
	s.Require().NoError(err)
	s.Require().Len(history.Items, 2)
	reversal := history.Items[1]
	s.Equal("issued to wrong payer", jsoniter.Get(reversal.NewValue, "metadata", "reversal_reason").ToString())
	s.Equal(string(types.InvoiceStatusCancelled), jsoniter.Get(reversal.NewValue, "invoice_status").ToString())
	s.Equal(string(types.InvoiceStatusIssued), jsoniter.Get(reversal.OldValue, "invoice_status").ToString())
}

func (s *InvoiceServiceSuite) TestReverseInvoiceGuards() {
	cancelled := s.mustGenerate(testPayerA)
	_, err := s.service.ReverseInvoice(s.GetContext(), cancelled.ID, &dto.ReverseInvoiceRequest{Reason: "duplicate"})
	s.Require().NoError(err)

	paid := s.mustGenerate(testPayerC)
	s.Require().NoError(s.GetStores().InvoiceRepo.SetPaidAmount(s.GetContext(), paid.ID, paid.NetAmount, types.InvoiceStatusPaid))

	settled := s.mustGenerate(testPayerC)
	s.Require().NoError(s.GetStores().InvoiceRepo.SetPaidAmount(s.GetContext(), settled.ID, decimal.Zero, types.InvoiceStatusPaid))

	partiallyPaid := s.mustGenerate(testPayerB)
	s.Require().NoError(s.GetStores().InvoiceRepo.SetPaidAmount(s.GetContext(), partiallyPaid.ID, decimal.NewFromInt(1), types.InvoiceStatusPartiallyPaid))

	tests := []struct {
		name        string
		id          string
		req         *dto.ReverseInvoiceRequest
		errCheck    func(error) bool
		errContains string
	}{
		{
			name:        "already cancelled",
			id:          cancelled.ID,
			req:         &dto.ReverseInvoiceRequest{Reason: "again"},
			errCheck:    ierr.IsInvalidOperation,
			errContains: "already cancelled",
		},
		{
			name:        "paid",
			id:          paid.ID,
			req:         &dto.ReverseInvoiceRequest{Reason: "mistake"},
			errCheck:    ierr.IsInvalidOperation,
			errContains: "paid invoice",
		},
		{
			name:        "paid with nothing collected",
			id:          settled.ID,
			req:         &dto.ReverseInvoiceRequest{Reason: "mistake"},
			errCheck:    ierr.IsInvalidOperation,
			errContains: "paid invoice",
		},
		{
			name:        "has payments",
			id:          partiallyPaid.ID,
			req:         &dto.ReverseInvoiceRequest{Reason: "mistake"},
			errCheck:    ierr.IsInvalidOperation,
			errContains: "process refunds first",
		},
		{
			name:     "missing reason",
			id:       partiallyPaid.ID,
			req:      &dto.ReverseInvoiceRequest{},
			errCheck: ierr.IsValidation,
		},
		{
			name:     "unknown invoice",
			id:       "inv_missing",
			req:      &dto.ReverseInvoiceRequest{Reason: "mistake"},
			errCheck: ierr.IsNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.ReverseInvoice(s.GetContext(), tt.id, tt.req)
			s.Require().Error(err)
			s.True(tt.errCheck(err), "unexpected error kind: %v", err)
			if tt.errContains != "" {
				s.Contains(err.Error(), tt.errContains)
			}
		})
	}

	// a cancelled invoice stays cancelled
	_, err = s.service.UpdateInvoice(s.GetContext(), cancelled.ID, &dto.UpdateInvoiceRequest{
		InvoiceStatus: lo.ToPtr(types.InvoiceStatusIssued),
	})
	s.True(ierr.IsInvalidOperation(err))
}
