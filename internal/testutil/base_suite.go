package testutil

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/discount"
	"github.com/flexprice/feeledger/internal/domain/feedefinition"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	TestUserID    = "00000000-0000-0000-0000-0000000000aa"
	TestRequestID = "req_test"
)

// Stores holds all in-memory repositories
type Stores struct {
	InvoiceRepo       *InMemoryInvoiceStore
	SequenceRepo      *InMemorySequenceStore
	FeeDefinitionRepo *InMemoryFeeDefinitionStore
	DiscountRepo      *InMemoryDiscountStore
	AuditRepo         *InMemoryAuditStore
	PaymentRepo       *InMemoryPaymentStore
}

// BaseServiceTestSuite provides common functionality for service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx            context.Context
	stores         Stores
	db             *InMemoryDB
	logger         *logger.Logger
	config         *config.Configuration
	payerDirectory *InMemoryPayerDirectory
	publisher      *InMemoryPublisher
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.config = config.GetDefaultConfig()
	// keep collision retries fast
	s.config.Billing.RetryInterval = time.Millisecond
	s.logger = logger.NewNoopLogger()
	s.db = NewInMemoryDB()
	s.payerDirectory = NewInMemoryPayerDirectory()
	s.publisher = NewInMemoryPublisher()
	invoices := NewInMemoryInvoiceStore()
	s.stores = Stores{
		InvoiceRepo:       invoices,
		SequenceRepo:      NewInMemorySequenceStore(invoices),
		FeeDefinitionRepo: NewInMemoryFeeDefinitionStore(),
		DiscountRepo:      NewInMemoryDiscountStore(),
		AuditRepo:         NewInMemoryAuditStore(),
		PaymentRepo:       NewInMemoryPaymentStore(),
	}
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.InvoiceRepo.Clear()
	s.stores.SequenceRepo.Clear()
	s.stores.FeeDefinitionRepo.Clear()
	s.stores.DiscountRepo.Clear()
	s.stores.AuditRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.payerDirectory.Clear()
	s.publisher.Clear()
}

// SetupContext returns a context carrying the test operator and request id
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetUserID(ctx, TestUserID)
	ctx = types.SetRequestID(ctx, TestRequestID)
	return ctx
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() *InMemoryDB {
	return s.db
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetPayerDirectory() *InMemoryPayerDirectory {
	return s.payerDirectory
}

func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisher {
	return s.publisher
}

// NewFeeDefinition builds an active definition with one template per
// category/amount pair, each with quantity one
func NewFeeDefinition(id, periodID, currency string, lines map[string]decimal.Decimal, categories ...string) *feedefinition.FeeDefinition {
	def := &feedefinition.FeeDefinition{
		ID:       id,
		Name:     "Fees " + periodID,
		Version:  1,
		PeriodID: periodID,
		Currency: currency,
		IsActive: true,
	}
	for i, category := range categories {
		def.Lines = append(def.Lines, &feedefinition.FeeLineTemplate{
			ID:               id + "_" + category,
			FeeDefinitionID:  id,
			Category:         category,
			Description:      category + " fee",
			Amount:           lines[category],
			Quantity:         decimal.NewFromInt(1),
			LedgerAccountRef: "4000-" + category,
			SortOrder:        i,
		})
	}
	return def
}

// NewPercentageRule builds an open-ended active percentage rule
func NewPercentageRule(id string, percent int64, start time.Time, categories ...string) *discount.Rule {
	return &discount.Rule{
		ID:                   id,
		Name:                 id,
		DiscountType:         types.DiscountTypePercentage,
		Value:                decimal.NewFromInt(percent),
		ApplicableCategories: categories,
		StartDate:            start,
		IsActive:             true,
	}
}
