package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/modules/universe"
)

const (
	// Enough history for a year of return estimates plus indicator warm-up.
	defaultSyncLookback = 400 * 24 * time.Hour
	defaultSyncTimeout  = 15 * time.Minute
)

// PriceSyncJob refreshes the cached daily history for every universe
// ticker. Fetches are incremental: only bars after the latest cached date
// are requested.
type PriceSyncJob struct {
	universe *universe.Universe
	loader   *universe.PriceLoader
	lookback time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewPriceSyncJob creates a new price sync job.
func NewPriceSyncJob(u *universe.Universe, loader *universe.PriceLoader, log zerolog.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		universe: u,
		loader:   loader,
		lookback: defaultSyncLookback,
		timeout:  defaultSyncTimeout,
		log:      log.With().Str("component", "price_sync").Logger(),
	}
}

// Name returns the job name.
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Run refreshes history for all tickers. A single ticker failing does not
// abort the sweep; the job reports the failure count at the end.
func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	tickers := j.universe.Tickers()
	failed := 0

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("price sync aborted: %w", err)
		}

		if err := j.loader.Refresh(ctx, ticker, j.lookback); err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to refresh ticker history")
			failed++
		}
	}

	j.log.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Msg("Price sync finished")

	if failed > 0 {
		return fmt.Errorf("price sync: %d of %d tickers failed", failed, len(tickers))
	}
	return nil
}
