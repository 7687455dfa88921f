package service

import (
	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/samber/lo"
)

func (s *InvoiceServiceSuite) bulkRequest(payerIDs ...string) *dto.BulkGenerateInvoicesRequest {
	return &dto.BulkGenerateInvoicesRequest{
		PayerIDs:        payerIDs,
		FeeDefinitionID: s.testData.definition,
		PeriodID:        testPeriodID,
		DueDate:         s.testData.dueDate,
	}
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesBulk() {
	resp, err := s.service.GenerateInvoicesBulk(s.GetContext(), s.bulkRequest(testPayerA, "not-a-uuid", testPayerB, testPayerC))
	s.Require().NoError(err)

	s.Equal(4, resp.TotalCount)
	s.Equal(3, resp.SuccessCount)
	s.Equal(1, resp.FailureCount)
	s.Len(resp.Successful, 3)
	s.Require().Len(resp.Failed, 1)
	s.Equal("not-a-uuid", resp.Failed[0].PayerID)
	s.Contains(resp.Failed[0].Error, "invalid id format")

	// request order is preserved
	s.Equal([]string{testPayerA, testPayerB, testPayerC}, lo.Map(resp.Successful, func(r *dto.InvoiceResponse, _ int) string {
		return r.PayerID
	}))

	numbers := lo.Map(resp.Successful, func(r *dto.InvoiceResponse, _ int) string { return r.InvoiceNumber })
	s.Len(lo.Uniq(numbers), 3)
	s.ElementsMatch([]string{"INV-2026-000001", "INV-2026-000002", "INV-2026-000003"}, numbers)

	s.Equal(3, s.GetStores().InvoiceRepo.Len())
	s.Equal(3, s.GetStores().AuditRepo.Len())
	s.Len(s.GetPublisher().Events(), 3)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesBulkIsolatesFailures() {
	unknown := "7b1c1a52-8d6e-4a3b-9f0e-2a9c0d5e1fff"

	resp, err := s.service.GenerateInvoicesBulk(s.GetContext(), s.bulkRequest(unknown, testPayerA))
	s.Require().NoError(err)

	s.Equal(1, resp.SuccessCount)
	s.Require().Len(resp.Failed, 1)
	s.Equal(unknown, resp.Failed[0].PayerID)
	s.Contains(resp.Failed[0].Error, "not found")
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesBulkHidesSystemErrors() {
	s.GetPayerDirectory().Err = ierr.NewError("dial tcp: connection refused").Mark(ierr.ErrHTTPClient)

	resp, err := s.service.GenerateInvoicesBulk(s.GetContext(), s.bulkRequest(testPayerA))
	s.Require().NoError(err)
	s.Require().Len(resp.Failed, 1)
	s.Equal(opaqueFailureMessage, resp.Failed[0].Error)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesBulkSharedFailures() {
	tests := []struct {
		name     string
		req      *dto.BulkGenerateInvoicesRequest
		errCheck func(error) bool
	}{
		{
			name: "missing fee definition aborts the batch",
			req: func() *dto.BulkGenerateInvoicesRequest {
				r := s.bulkRequest(testPayerA, testPayerB)
				r.FeeDefinitionID = "fdef_missing"
				return r
			}(),
			errCheck: ierr.IsNotFound,
		},
		{
			name:     "empty payer list",
			req:      s.bulkRequest(),
			errCheck: ierr.IsValidation,
		},
		{
			name: "batch above the configured limit",
			req: func() *dto.BulkGenerateInvoicesRequest {
				s.GetConfig().Billing.MaxBulkSize = 2
				return s.bulkRequest(testPayerA, testPayerB, testPayerC)
			}(),
			errCheck: ierr.IsValidation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.GenerateInvoicesBulk(s.GetContext(), tt.req)
			s.Require().Error(err)
			s.Nil(resp)
			s.True(tt.errCheck(err), "unexpected error kind: %v", err)
			s.Equal(0, s.GetStores().InvoiceRepo.Len())
		})
	}
}
