package internal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	entRepo "github.com/flexprice/feeledger/internal/repository/ent"
	"github.com/flexprice/feeledger/internal/types"
)

// ResyncSequences raises invoice number counters to the highest number already
// stored. Run it after importing invoices numbered outside the service.
//
// PERIODS is a comma separated list of numbering periods (years). It defaults
// to the current period in the billing timezone.
func ResyncSequences() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	loc, err := types.LoadLocation(cfg.Billing.Timezone)
	if err != nil {
		return fmt.Errorf("invalid billing timezone: %w", err)
	}

	periods := splitList(os.Getenv("PERIODS"))
	if len(periods) == 0 {
		periods = []string{types.InvoiceNumberPeriod(time.Now(), loc)}
	}

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	client := postgres.NewClient(db, log)
	sequenceRepo := entRepo.NewSequenceRepository(client, log)

	ctx := context.Background()
	for _, period := range periods {
		log.Infow("resyncing invoice sequence", "period", period)
		if err := sequenceRepo.Resync(ctx, period); err != nil {
			return fmt.Errorf("failed to resync period %s: %w", period, err)
		}
	}

	log.Infow("invoice sequences resynced", "periods", periods)
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
