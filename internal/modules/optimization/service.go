package optimization

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

// LedgerSource supplies the ticker->quantity snapshot an analysis runs on.
type LedgerSource interface {
	Snapshot() (map[string]int64, error)
}

// PriceSource supplies ordered price series for the ledger's tickers.
type PriceSource interface {
	GetPriceSeries(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error)
}

// RunParams are the per-run knobs. Zero values fall back to the
// service-wide defaults from configuration.
type RunParams struct {
	Start        time.Time
	End          time.Time
	Budget       float64
	RiskFreeRate float64
}

// Service orchestrates one portfolio analysis run.
type Service struct {
	ledger          LedgerSource
	prices          PriceSource
	defaultBudget   float64
	defaultRiskFree float64
	log             zerolog.Logger
}

// NewService creates a new analysis service.
func NewService(ledger LedgerSource, prices PriceSource, defaultBudget, defaultRiskFree float64, log zerolog.Logger) *Service {
	return &Service{
		ledger:          ledger,
		prices:          prices,
		defaultBudget:   defaultBudget,
		defaultRiskFree: defaultRiskFree,
		log:             log.With().Str("component", "optimizer").Logger(),
	}
}

// Run executes the analysis pipeline over an immutable ledger snapshot:
//
//	snapshot -> estimates -> risk-free gate -> max-Sharpe weights ->
//	weight cleaning -> discrete allocation -> metrics
//
// The run never mutates the ledger and either completes or fails
// atomically. An empty ledger terminates as StatusNoOp and a failed
// risk-free gate as StatusRejected with a warning; neither is an error.
func (s *Service) Run(ctx context.Context, params RunParams) (*Result, error) {
	budget := params.Budget
	if budget <= 0 {
		budget = s.defaultBudget
	}
	riskFree := params.RiskFreeRate
	if riskFree == 0 {
		riskFree = s.defaultRiskFree
	}
	end := params.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := params.Start
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}

	// Step 1: read the ledger exactly once; the run works off this copy.
	snapshot, err := s.ledger.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot ledger: %w", err)
	}

	tickers := make([]string, 0, len(snapshot))
	for ticker := range snapshot {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	if len(tickers) == 0 {
		s.log.Info().Msg("Analysis skipped: ledger is empty")
		return &Result{Status: StatusNoOp}, nil
	}

	// Step 2: estimates from one aligned price matrix.
	series := make([]domain.PriceSeries, 0, len(tickers))
	for _, ticker := range tickers {
		ps, err := s.prices.GetPriceSeries(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load prices for %s: %w", ticker, err)
		}
		series = append(series, ps)
	}

	matrix, err := NewPriceMatrix(series)
	if err != nil {
		return nil, err
	}
	est, err := matrix.Estimate()
	if err != nil {
		return nil, err
	}

	expectedReturns := est.ReturnsByTicker()

	// Step 3: risk-free gate. Without at least one asset beating the
	// risk-free rate the max-Sharpe problem is degenerate.
	if !anyExceeds(est.Mu, riskFree) {
		warning := fmt.Sprintf(
			"no asset's expected return exceeds the risk-free rate (%.4f); at least one must for the optimization to be meaningful",
			riskFree)
		s.log.Warn().Float64("risk_free_rate", riskFree).Msg("Analysis rejected by risk-free gate")
		return &Result{
			Status:          StatusRejected,
			Warning:         warning,
			ExpectedReturns: expectedReturns,
		}, nil
	}

	// Steps 4-5: optimize, clean, discretize.
	weights, err := MaxSharpe(est, riskFree)
	if err != nil {
		return nil, fmt.Errorf("max-Sharpe solve failed: %w", err)
	}
	weights = CleanWeights(weights)

	latestPrices := matrix.LatestPrices()
	allocation, err := Allocate(weights, latestPrices, budget)
	if err != nil {
		return nil, fmt.Errorf("discrete allocation failed: %w", err)
	}

	// Step 6: metrics for the final weight vector.
	performance, err := CalculatePerformance(weights, est, riskFree)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("tickers", len(tickers)).
		Float64("budget", budget).
		Float64("leftover", allocation.Leftover).
		Float64("sharpe", performance.SharpeRatio).
		Msg("Analysis completed")

	return &Result{
		Status:          StatusCompleted,
		ExpectedReturns: expectedReturns,
		Weights:         weights,
		LatestPrices:    latestPrices,
		Allocation:      allocation,
		Performance:     performance,
	}, nil
}

func anyExceeds(mu []float64, threshold float64) bool {
	for _, m := range mu {
		if m > threshold {
			return true
		}
	}
	return false
}
