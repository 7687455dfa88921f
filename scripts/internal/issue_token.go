package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/flexprice/feeledger/internal/auth"
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/logger"
)

// IssueToken prints a bearer token for USER_ID, optionally scoped to
// CAMPUS_ID. TOKEN_TTL accepts a Go duration and defaults to thirty days.
func IssueToken() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var ttl time.Duration
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
	}

	token, expiresAt, err := auth.NewProvider(cfg).GenerateToken(os.Getenv("USER_ID"), os.Getenv("CAMPUS_ID"), ttl)
	if err != nil {
		return err
	}

	logger.GetLogger().Infow("issued operator token",
		"user_id", os.Getenv("USER_ID"),
		"campus_id", os.Getenv("CAMPUS_ID"),
		"expires_at", expiresAt.UTC().Format(time.RFC3339),
	)
	fmt.Println(token)
	return nil
}
