package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

// RemoteClient fetches daily bars from an external price source.
type RemoteClient interface {
	GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) ([]domain.PriceBar, error)
}

// PriceLoader serves price series from the local history store, falling
// back to the remote client (and caching the result) on a miss. This is
// the engine's fetchPriceSeries boundary.
type PriceLoader struct {
	universe *Universe
	history  *HistoryDB
	remote   RemoteClient
	log      zerolog.Logger
}

// NewPriceLoader creates a new price loader.
func NewPriceLoader(u *Universe, history *HistoryDB, remote RemoteClient, log zerolog.Logger) *PriceLoader {
	return &PriceLoader{
		universe: u,
		history:  history,
		remote:   remote,
		log:      log.With().Str("component", "price_loader").Logger(),
	}
}

// GetPriceSeries returns the ordered price series for a ticker and range.
// Unknown tickers and empty ranges fail with domain.ErrDataUnavailable.
func (l *PriceLoader) GetPriceSeries(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	if !l.universe.Contains(ticker) {
		return domain.PriceSeries{}, fmt.Errorf("ticker %s not in universe: %w", ticker, domain.ErrDataUnavailable)
	}

	bars, err := l.history.GetDailyPrices(ticker, start, end)
	if err != nil {
		return domain.PriceSeries{}, err
	}

	if len(bars) == 0 {
		bars, err = l.fetchAndCache(ctx, ticker, start, end)
		if err != nil {
			return domain.PriceSeries{}, err
		}
	}

	if len(bars) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("ticker %s: range yields zero bars: %w", ticker, domain.ErrDataUnavailable)
	}

	return domain.PriceSeries{Ticker: ticker, Bars: bars}, nil
}

// Refresh re-fetches and caches history for a ticker. Used by the nightly
// sync job.
func (l *PriceLoader) Refresh(ctx context.Context, ticker string, lookback time.Duration) error {
	end := time.Now().UTC()
	start := end.Add(-lookback)

	// Incremental: only fetch forward from the last cached bar.
	if latest, ok, err := l.history.LatestDate(ticker); err == nil && ok && latest.After(start) {
		start = latest
	}

	_, err := l.fetchAndCache(ctx, ticker, start, end)
	return err
}

func (l *PriceLoader) fetchAndCache(ctx context.Context, ticker string, start, end time.Time) ([]domain.PriceBar, error) {
	bars, err := l.remote.GetDailyPrices(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if err := l.history.SaveDailyPrices(ticker, bars); err != nil {
		// A cache write failure should not fail the read path.
		l.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache daily prices")
	}

	return bars, nil
}
