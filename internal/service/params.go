package service

import (
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/audit"
	"github.com/flexprice/feeledger/internal/domain/discount"
	"github.com/flexprice/feeledger/internal/domain/feedefinition"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/domain/payer"
	"github.com/flexprice/feeledger/internal/domain/payment"
	"github.com/flexprice/feeledger/internal/events"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	InvoiceRepo       invoice.Repository
	SequenceRepo      invoice.SequenceRepository
	FeeDefinitionRepo feedefinition.Repository
	DiscountRepo      discount.Repository
	AuditRepo         audit.Repository
	PaymentRepo       payment.Repository

	// Collaborators
	PayerDirectory payer.Directory
	EventPublisher events.Publisher
}

// NewServiceParams creates a new ServiceParams instance
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	invoiceRepo invoice.Repository,
	sequenceRepo invoice.SequenceRepository,
	feeDefinitionRepo feedefinition.Repository,
	discountRepo discount.Repository,
	auditRepo audit.Repository,
	paymentRepo payment.Repository,
	payerDirectory payer.Directory,
	eventPublisher events.Publisher,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		InvoiceRepo:       invoiceRepo,
		SequenceRepo:      sequenceRepo,
		FeeDefinitionRepo: feeDefinitionRepo,
		DiscountRepo:      discountRepo,
		AuditRepo:         auditRepo,
		PaymentRepo:       paymentRepo,
		PayerDirectory:    payerDirectory,
		EventPublisher:    eventPublisher,
	}
}
