package postgres

import (
	"context"
	"errors"
	"fmt"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/lib/pq"
)

const (
	pgCodeUniqueViolation  = "23505"
	pgCodeLockNotAvailable = "55P03"
)

// LockKey takes a transaction-scoped advisory lock on req.Key. The lock is
// released when the surrounding transaction ends. A non-positive timeout
// means the call fails immediately when another transaction holds the key.
func (c *Client) LockKey(ctx context.Context, req types.LockRequest) error {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return ierr.NewError("advisory locks require a transaction").
			WithReportableDetails(map[string]any{"lock_key": req.Key}).
			Mark(ierr.ErrInternal)
	}

	timeout := req.GetTimeout()
	if timeout <= 0 {
		var acquired bool
		if err := tx.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, req.Key).Scan(&acquired); err != nil {
			return ierr.WithError(err).
				WithHint("Could not check lock state").
				Mark(ierr.ErrDatabase)
		}
		if !acquired {
			return ierr.NewErrorf("lock %s is held by another transaction", req.Key).
				WithHint("Another request is updating the same record, please retry").
				Mark(ierr.ErrVersionConflict)
		}
		return nil
	}

	// lock_timeout set with SET LOCAL reverts at commit or rollback
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return ierr.WithError(err).
			WithHint("Could not set lock timeout").
			Mark(ierr.ErrDatabase)
	}

	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, req.Key)
	switch {
	case err == nil:
		return nil
	case pgCode(err) == pgCodeLockNotAvailable:
		return ierr.WithError(err).
			WithHintf("Another request is updating the same record, gave up after %v", timeout).
			Mark(ierr.ErrVersionConflict)
	default:
		return ierr.WithError(err).
			WithHint("Could not acquire lock").
			Mark(ierr.ErrDatabase)
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to one constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgCodeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func pgCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
