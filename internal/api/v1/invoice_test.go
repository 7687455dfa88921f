package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/api/dto"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/rest/middleware"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/flexprice/feeledger/internal/testutil"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	handlerPayerA   = "0c4c8f7e-51d9-4f0b-8a53-6b7f4a1e2d01"
	handlerPayerB   = "0c4c8f7e-51d9-4f0b-8a53-6b7f4a1e2d02"
	handlerPeriodID = "2026-autumn"
	handlerFeeDefID = "fdef_autumn"
)

type InvoiceHandlerSuite struct {
	testutil.BaseServiceTestSuite
	router  *gin.Engine
	dueDate time.Time
}

func TestInvoiceHandler(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerSuite))
}

func (s *InvoiceHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	svc, err := service.NewInvoiceService(service.ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		InvoiceRepo:       s.GetStores().InvoiceRepo,
		SequenceRepo:      s.GetStores().SequenceRepo,
		FeeDefinitionRepo: s.GetStores().FeeDefinitionRepo,
		DiscountRepo:      s.GetStores().DiscountRepo,
		AuditRepo:         s.GetStores().AuditRepo,
		PaymentRepo:       s.GetStores().PaymentRepo,
		PayerDirectory:    s.GetPayerDirectory(),
		EventPublisher:    s.GetPublisher(),
	})
	s.Require().NoError(err)

	def := testutil.NewFeeDefinition(handlerFeeDefID, handlerPeriodID, "usd", map[string]decimal.Decimal{
		"TUITION": decimal.NewFromInt(200),
		"LAB":     decimal.NewFromInt(25),
	}, "TUITION", "LAB")
	s.Require().NoError(s.GetStores().FeeDefinitionRepo.Create(s.GetContext(), def))
	s.GetPayerDirectory().Add(handlerPayerA, handlerPayerB)
	s.dueDate = time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Second)

	handler := NewInvoiceHandler(svc, s.GetLogger())
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler(s.GetLogger()))
	s.router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(types.SetUserID(c.Request.Context(), testutil.TestUserID))
		c.Next()
	})

	invoices := s.router.Group("/v1/invoices")
	invoices.POST("", handler.GenerateInvoice)
	invoices.POST("/generate", handler.GenerateInvoicesBulk)
	invoices.GET("", handler.ListInvoices)
	invoices.GET("/export", handler.ExportInvoices)
	invoices.GET("/:id", handler.GetInvoice)
	invoices.PUT("/:id", handler.UpdateInvoice)
	invoices.POST("/:id/adjust", handler.AdjustInvoice)
	invoices.POST("/:id/reverse", handler.ReverseInvoice)
	invoices.GET("/:id/audit", handler.GetInvoiceAuditHistory)
}

func (s *InvoiceHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := jsoniter.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *InvoiceHandlerSuite) generate(payerID string) *dto.InvoiceResponse {
	w := s.do(http.MethodPost, "/v1/invoices", map[string]any{
		"payer_id":          payerID,
		"fee_definition_id": handlerFeeDefID,
		"period_id":         handlerPeriodID,
		"due_date":          s.dueDate,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.InvoiceResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func (s *InvoiceHandlerSuite) decodeError(w *httptest.ResponseRecorder) ierr.ErrorResponse {
	var resp ierr.ErrorResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *InvoiceHandlerSuite) TestGenerateInvoice() {
	resp := s.generate(handlerPayerA)

	s.Equal(handlerPayerA, resp.PayerID)
	s.Equal(types.InvoiceStatusIssued, resp.InvoiceStatus)
	s.True(resp.NetAmount.Equal(decimal.NewFromInt(225)))
	s.True(resp.AmountDue.Equal(decimal.NewFromInt(225)))
	s.Len(resp.Lines, 2)
	s.Equal(testutil.TestUserID, resp.CreatedBy)
	s.True(strings.HasPrefix(resp.InvoiceNumber, fmt.Sprintf("INV-%d-", time.Now().UTC().Year())))
}

func (s *InvoiceHandlerSuite) TestGenerateInvoice_Errors() {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "malformed_json",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "malformed_payer_id",
			body: map[string]any{
				"payer_id":          "12345",
				"fee_definition_id": handlerFeeDefID,
				"period_id":         handlerPeriodID,
				"due_date":          s.dueDate,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_definition",
			body: map[string]any{
				"payer_id":          handlerPayerA,
				"fee_definition_id": "fdef_missing",
				"period_id":         handlerPeriodID,
				"due_date":          s.dueDate,
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "unregistered_payer",
			body: map[string]any{
				"payer_id":          "0c4c8f7e-51d9-4f0b-8a53-6b7f4a1e2d99",
				"fee_definition_id": handlerFeeDefID,
				"period_id":         handlerPeriodID,
				"due_date":          s.dueDate,
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/v1/invoices", tt.body)
			s.Equal(tt.wantStatus, w.Code, w.Body.String())

			resp := s.decodeError(w)
			s.False(resp.Success)
			s.NotEmpty(resp.Error.Display)
		})
	}
}

func (s *InvoiceHandlerSuite) TestGenerateInvoicesBulk() {
	w := s.do(http.MethodPost, "/v1/invoices/generate", map[string]any{
		"payer_ids":         []string{handlerPayerA, "bad-id", handlerPayerB},
		"fee_definition_id": handlerFeeDefID,
		"period_id":         handlerPeriodID,
		"due_date":          s.dueDate,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.BulkGenerateInvoicesResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(3, resp.TotalCount)
	s.Equal(2, resp.SuccessCount)
	s.Equal(1, resp.FailureCount)
	s.Require().Len(resp.Failed, 1)
	s.Equal("bad-id", resp.Failed[0].PayerID)
}

func (s *InvoiceHandlerSuite) TestGetInvoice() {
	created := s.generate(handlerPayerA)

	w := s.do(http.MethodGet, "/v1/invoices/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp dto.InvoiceResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(created.InvoiceNumber, resp.InvoiceNumber)

	w = s.do(http.MethodGet, "/v1/invoices/inv_missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *InvoiceHandlerSuite) TestListInvoices() {
	s.generate(handlerPayerA)
	s.generate(handlerPayerB)

	w := s.do(http.MethodGet, "/v1/invoices?payer_id="+handlerPayerB, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ListInvoicesResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(1, resp.Pagination.Total)
	s.Require().Len(resp.Data, 1)
	s.Equal(handlerPayerB, resp.Data[0].PayerID)

	w = s.do(http.MethodGet, "/v1/invoices?limit=abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *InvoiceHandlerSuite) TestExportInvoices() {
	s.generate(handlerPayerA)

	w := s.do(http.MethodGet, "/v1/invoices/export", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/csv")
	s.Contains(w.Header().Get("Content-Disposition"), "attachment")
	s.Contains(w.Body.String(), "225.00")
}

func (s *InvoiceHandlerSuite) TestAdjustAndReverse() {
	created := s.generate(handlerPayerA)

	w := s.do(http.MethodPost, "/v1/invoices/"+created.ID+"/adjust", map[string]any{
		"additional_late_fee": "15",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var adjusted dto.InvoiceResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &adjusted))
	s.True(adjusted.NetAmount.Equal(decimal.NewFromInt(240)))

	w = s.do(http.MethodPost, "/v1/invoices/"+created.ID+"/reverse", map[string]any{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/invoices/"+created.ID+"/reverse", map[string]any{
		"reason": "duplicate billing",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var reversed dto.ReverseInvoiceResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &reversed))
	s.Equal(types.InvoiceStatusCancelled, reversed.CancelledInvoice.InvoiceStatus)
	s.Equal("duplicate billing", reversed.Reason)

	w = s.do(http.MethodPost, "/v1/invoices/"+created.ID+"/adjust", map[string]any{
		"additional_discount": "5",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/invoices/"+created.ID+"/audit", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var history dto.ListAuditEntriesResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &history))
	s.Len(history.Items, 3)
}

func (s *InvoiceHandlerSuite) TestUpdateInvoice() {
	created := s.generate(handlerPayerA)

	w := s.do(http.MethodPut, "/v1/invoices/"+created.ID, map[string]any{
		"invoice_status": "OVERDUE",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.InvoiceResponse
	s.Require().NoError(jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.InvoiceStatusOverdue, resp.InvoiceStatus)
	s.Equal(created.Version+1, resp.Version)

	w = s.do(http.MethodPut, "/v1/invoices/"+created.ID, map[string]any{
		"invoice_status": "CANCELLED",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}
