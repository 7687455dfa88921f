package types

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLockKey(t *testing.T) {
	params := map[string]interface{}{"period": "2026", "attempt": 2}

	key := GenerateLockKey(context.Background(), LockScopeInvoiceSequence, params)
	assert.Equal(t, "invoice_sequence:attempt=2:period=2026", key)

	ctx := SetCampusID(context.Background(), "north")
	key = GenerateLockKey(ctx, LockScopeInvoiceSequence, params)
	assert.Equal(t, "invoice_sequence:attempt=2:campus_id=north:period=2026", key)
}

func TestLockRequestTimeout(t *testing.T) {
	assert.Equal(t, DefaultLockTimeout, LockRequest{Key: "k"}.GetTimeout())

	zero := time.Duration(0)
	assert.Zero(t, LockRequest{Key: "k", Timeout: &zero}.GetTimeout())
}
