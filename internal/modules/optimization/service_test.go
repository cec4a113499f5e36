package optimization

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aristath/findash/internal/domain"
)

type fakeLedger struct {
	snapshot map[string]int64
	err      error
}

func (f *fakeLedger) Snapshot() (map[string]int64, error) {
	return f.snapshot, f.err
}

type fakePrices struct {
	series map[string]domain.PriceSeries
}

func (f *fakePrices) GetPriceSeries(_ context.Context, ticker string, _, _ time.Time) (domain.PriceSeries, error) {
	ps, ok := f.series[ticker]
	if !ok {
		return domain.PriceSeries{}, domain.ErrDataUnavailable
	}
	return ps, nil
}

// growthSeries builds n bars of compounding closes with a repeating
// wiggle pattern on top of the drift, so returns have positive variance.
func growthSeries(ticker string, n int, base, drift float64, wiggle []float64) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.PriceBar, n)
	price := base
	for i := 0; i < n; i++ {
		bars[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Close: price}
		price *= 1 + drift + wiggle[i%len(wiggle)]
	}
	return domain.PriceSeries{Ticker: ticker, Bars: bars}
}

func flatSeries(ticker string, n int, price float64) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.PriceBar, n)
	for i := 0; i < n; i++ {
		bars[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Close: price}
	}
	return domain.PriceSeries{Ticker: ticker, Bars: bars}
}

func newTestService(ledger LedgerSource, prices PriceSource) *Service {
	return NewService(ledger, prices, 10000, 0.02, zerolog.Nop())
}

func TestRun_EmptyLedgerIsNoOp(t *testing.T) {
	svc := newTestService(&fakeLedger{snapshot: map[string]int64{}}, &fakePrices{})

	result, err := svc.Run(context.Background(), RunParams{})
	require.NoError(t, err)

	if result.Status != StatusNoOp {
		t.Errorf("Expected status %q, got %q", StatusNoOp, result.Status)
	}
	if result.Allocation != nil || result.Performance != nil {
		t.Error("No-op result must not carry allocation or performance")
	}
}

func TestRun_RiskFreeGateRejects(t *testing.T) {
	// Flat prices: every expected return is exactly zero, so nothing
	// clears the 2% risk-free rate.
	ledger := &fakeLedger{snapshot: map[string]int64{"AAA": 5, "BBB": 3}}
	prices := &fakePrices{series: map[string]domain.PriceSeries{
		"AAA": flatSeries("AAA", 40, 100),
		"BBB": flatSeries("BBB", 40, 50),
	}}
	svc := newTestService(ledger, prices)

	result, err := svc.Run(context.Background(), RunParams{})
	require.NoError(t, err)

	if result.Status != StatusRejected {
		t.Errorf("Expected status %q, got %q", StatusRejected, result.Status)
	}
	if result.Warning == "" {
		t.Error("Rejected result must carry a warning")
	}
	if result.Allocation != nil || result.Performance != nil {
		t.Error("Rejected result must not carry allocation or performance")
	}
	// Expected returns are still reported so the caller can see why.
	require.Len(t, result.ExpectedReturns, 2)
}

func TestRun_CompletedPipeline(t *testing.T) {
	ledger := &fakeLedger{snapshot: map[string]int64{"AAA": 5, "BBB": 3}}
	prices := &fakePrices{series: map[string]domain.PriceSeries{
		"AAA": growthSeries("AAA", 60, 100, 0.004, []float64{0.003, -0.002, 0.001}),
		"BBB": growthSeries("BBB", 60, 50, 0.002, []float64{-0.001, 0.002, 0.0005, -0.0015}),
	}}
	svc := newTestService(ledger, prices)

	result, err := svc.Run(context.Background(), RunParams{Budget: 5000})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, result.Status)
	require.NotNil(t, result.Allocation)
	require.NotNil(t, result.Performance)

	sum := 0.0
	for ticker, w := range result.Weights {
		if w < 0 {
			t.Errorf("Negative weight for %s: %f", ticker, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("Weights sum to %f, want 1 +/- 1e-6", sum)
	}

	spend := 0.0
	for ticker, shares := range result.Allocation.Shares {
		spend += float64(shares) * result.LatestPrices[ticker]
	}
	if result.Allocation.Leftover < 0 {
		t.Errorf("Negative leftover: %f", result.Allocation.Leftover)
	}
	if math.Abs(spend+result.Allocation.Leftover-5000) > 1e-6 {
		t.Errorf("spend + leftover = %f, want 5000", spend+result.Allocation.Leftover)
	}

	if result.Performance.Volatility <= 0 {
		t.Errorf("Expected positive volatility, got %f", result.Performance.Volatility)
	}
}

func TestRun_MissingPricesPropagate(t *testing.T) {
	ledger := &fakeLedger{snapshot: map[string]int64{"AAA": 5}}
	svc := newTestService(ledger, &fakePrices{series: map[string]domain.PriceSeries{}})

	_, err := svc.Run(context.Background(), RunParams{})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Errorf("Expected ErrDataUnavailable, got %v", err)
	}
}

func TestRun_LedgerErrorPropagates(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("db closed")}
	svc := newTestService(ledger, &fakePrices{})

	_, err := svc.Run(context.Background(), RunParams{})
	if err == nil {
		t.Error("Expected ledger error to propagate")
	}
}
