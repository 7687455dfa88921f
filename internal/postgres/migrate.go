package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	ierr "github.com/flexprice/feeledger/internal/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the embedded migrations in file name order, each in its own
// transaction, and records them in schema_migrations. Migrations are written
// to be re-runnable.
func (c *Client) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to list migrations").
			Mark(ierr.ErrInternal)
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return ierr.WithError(err).
				WithHintf("Failed to read migration %s", version).
				Mark(ierr.ErrInternal)
		}

		err = c.WithTx(ctx, func(txCtx context.Context) error {
			q := c.Querier(txCtx)
			// schema_migrations is created by the first migration itself
			if _, err := q.ExecContext(txCtx, string(body)); err != nil {
				return err
			}
			_, err := q.ExecContext(txCtx,
				`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`,
				version)
			return err
		})
		if err != nil {
			return ierr.WithError(err).
				WithHintf("Failed to apply migration %s", version).
				Mark(ierr.ErrDatabase)
		}
		c.logger.Infow("applied migration", "version", version)
	}
	return nil
}
