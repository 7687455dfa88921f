package discount

import (
	"context"
	"time"
)

// Repository is the read-only reference data lookup used by the resolver
type Repository interface {
	// ListActiveDiscounts returns active rules whose validity window contains asOf
	ListActiveDiscounts(ctx context.Context, asOf time.Time) ([]*Rule, error)

	// ListActiveScholarships returns the payer's active scholarships for the
	// period, each with its Rule populated
	ListActiveScholarships(ctx context.Context, payerID, periodID string) ([]*Scholarship, error)
}
