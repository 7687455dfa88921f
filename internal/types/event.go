package types

// InvoiceEventName is the topic level name of an invoice lifecycle event
type InvoiceEventName string

const (
	InvoiceEventCreated  InvoiceEventName = "invoice.created"
	InvoiceEventUpdated  InvoiceEventName = "invoice.updated"
	InvoiceEventAdjusted InvoiceEventName = "invoice.adjusted"
	InvoiceEventReversed InvoiceEventName = "invoice.reversed"
)

// PublisherType selects the event bus backend
type PublisherType string

const (
	PublisherTypeMemory PublisherType = "memory"
	PublisherTypeKafka  PublisherType = "kafka"
	PublisherTypeNoop   PublisherType = "noop"
)
