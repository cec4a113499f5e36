package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/findash/internal/domain"
)

// CalculatePerformance derives annualized portfolio metrics for a weight
// vector against the estimates it was optimized from.
//
//	expected return = mu'w
//	volatility      = sqrt(w'Sigma'w)
//	Sharpe ratio    = (expected return - riskFree) / volatility
//
// The weight vector's ticker set must exactly equal the estimates' ticker
// set; any difference fails with domain.ErrDimensionMismatch.
func CalculatePerformance(weights map[string]float64, est *Estimates, riskFree float64) (*Performance, error) {
	if len(weights) != len(est.Tickers) {
		return nil, fmt.Errorf("%d weights vs %d estimates: %w", len(weights), len(est.Tickers), domain.ErrDimensionMismatch)
	}

	w := make([]float64, len(est.Tickers))
	for i, ticker := range est.Tickers {
		weight, ok := weights[ticker]
		if !ok {
			return nil, fmt.Errorf("no weight for ticker %s: %w", ticker, domain.ErrDimensionMismatch)
		}
		w[i] = weight
	}

	var expectedReturn, variance float64
	for i := range w {
		expectedReturn += est.Mu[i] * w[i]
		for j := range w {
			variance += w[i] * w[j] * est.Sigma.At(i, j)
		}
	}

	volatility := math.Sqrt(math.Max(variance, 0))

	sharpe := 0.0
	if volatility > 0 {
		sharpe = (expectedReturn - riskFree) / volatility
	}

	return &Performance{
		ExpectedReturn: expectedReturn,
		Volatility:     volatility,
		SharpeRatio:    sharpe,
	}, nil
}
