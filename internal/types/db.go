package types

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	// LockScopeInvoiceSequence serializes seeding of a period's invoice counter
	LockScopeInvoiceSequence LockScope = "invoice_sequence"
)

// DefaultLockTimeout applies when a LockRequest has no explicit timeout
const DefaultLockTimeout = 30 * time.Second

// LockRequest describes an advisory lock acquisition
type LockRequest struct {
	Key     string
	Timeout *time.Duration
}

// GetTimeout returns the configured timeout or DefaultLockTimeout when unset
func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return DefaultLockTimeout
	}
	return *r.Timeout
}

// GenerateLockKey builds a deterministic key of the form
// scope:k1=v1:k2=v2 with keys sorted. The campus on ctx, if any, is included.
func GenerateLockKey(ctx context.Context, scope LockScope, params map[string]interface{}) string {
	parts := make(map[string]string, len(params)+1)
	for k, v := range params {
		parts[k] = fmt.Sprint(v)
	}
	if campusID := GetCampusID(ctx); campusID != "" {
		parts["campus_id"] = campusID
	}

	keys := lo.Keys(parts)
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		fmt.Fprintf(&b, ":%s=%s", k, parts[k])
	}
	return b.String()
}

// TableName represents a database table name
type TableName string

const (
	TableNameAuditEntries       TableName = "audit_entries"
	TableNameDiscountRules      TableName = "discount_rules"
	TableNameFeeDefinitions     TableName = "fee_definitions"
	TableNameFeeLineTemplates   TableName = "fee_line_templates"
	TableNameInvoiceLines       TableName = "invoice_lines"
	TableNameInvoiceSequences   TableName = "invoice_sequences"
	TableNameInvoices           TableName = "invoices"
	TableNamePaymentAllocations TableName = "payment_allocations"
	TableNameScholarships       TableName = "scholarships"
)

func (t TableName) String() string {
	return string(t)
}
