package types

// AuditAction is the kind of mutation an audit entry records
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
)

// AuditEntityType names the audited table
type AuditEntityType string

const (
	AuditEntityTypeInvoice AuditEntityType = "INVOICE"
)
