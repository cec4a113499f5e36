package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/findash/internal/domain"
)

func TestCalculatePerformance_GoldenValues(t *testing.T) {
	est := &Estimates{
		Tickers: []string{"AAA", "BBB"},
		Mu:      []float64{0.10, 0.06},
		Sigma: mat.NewSymDense(2, []float64{
			0.04, 0.01,
			0.01, 0.09,
		}),
	}
	weights := map[string]float64{"AAA": 0.5, "BBB": 0.5}

	perf, err := CalculatePerformance(weights, est, 0.02)
	require.NoError(t, err)

	// mu'w = 0.5*0.10 + 0.5*0.06 = 0.08
	if math.Abs(perf.ExpectedReturn-0.08) > 1e-12 {
		t.Errorf("ExpectedReturn = %f, want 0.08", perf.ExpectedReturn)
	}

	// w'Sigma w = 0.25*0.04 + 2*0.25*0.01 + 0.25*0.09 = 0.0375
	wantVol := math.Sqrt(0.0375)
	if math.Abs(perf.Volatility-wantVol) > 1e-12 {
		t.Errorf("Volatility = %f, want %f", perf.Volatility, wantVol)
	}

	wantSharpe := (0.08 - 0.02) / wantVol
	if math.Abs(perf.SharpeRatio-wantSharpe) > 1e-12 {
		t.Errorf("SharpeRatio = %f, want %f", perf.SharpeRatio, wantSharpe)
	}
}

func TestCalculatePerformance_ZeroVolatility(t *testing.T) {
	est := &Estimates{
		Tickers: []string{"AAA"},
		Mu:      []float64{0.05},
		Sigma:   mat.NewSymDense(1, []float64{0}),
	}

	perf, err := CalculatePerformance(map[string]float64{"AAA": 1.0}, est, 0.02)
	require.NoError(t, err)

	if perf.SharpeRatio != 0 {
		t.Errorf("Expected Sharpe 0 at zero volatility, got %f", perf.SharpeRatio)
	}
}

func TestCalculatePerformance_TickerMismatch(t *testing.T) {
	est := &Estimates{
		Tickers: []string{"AAA", "BBB"},
		Mu:      []float64{0.10, 0.06},
		Sigma: mat.NewSymDense(2, []float64{
			0.04, 0.01,
			0.01, 0.09,
		}),
	}

	// Wrong cardinality.
	_, err := CalculatePerformance(map[string]float64{"AAA": 1.0}, est, 0.02)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}

	// Same cardinality, different set.
	_, err = CalculatePerformance(map[string]float64{"AAA": 0.5, "CCC": 0.5}, est, 0.02)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}
