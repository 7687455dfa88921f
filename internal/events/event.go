package events

import (
	"time"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceEvent notifies downstream consumers (ledger posting, notifications)
// of a committed invoice change.
type InvoiceEvent struct {
	ID            string                 `json:"id"`
	EventName     types.InvoiceEventName `json:"event_name"`
	InvoiceID     string                 `json:"invoice_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	PayerID       string                 `json:"payer_id"`
	CampusID      string                 `json:"campus_id,omitempty"`
	InvoiceStatus types.InvoiceStatus    `json:"invoice_status"`
	Currency      string                 `json:"currency"`
	NetAmount     decimal.Decimal        `json:"net_amount"`
	Version       int                    `json:"version"`
	ActorID       string                 `json:"actor_id,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}
