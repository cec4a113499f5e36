package optimization

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aristath/findash/internal/domain"
	"github.com/aristath/findash/pkg/formulas"
)

func seriesFromCloses(ticker string, start time.Time, closes []float64) domain.PriceSeries {
	bars := make([]domain.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return domain.PriceSeries{Ticker: ticker, Bars: bars}
}

func TestNewPriceMatrix_InnerJoin(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := seriesFromCloses("AAA", start, []float64{100, 101, 102, 103})
	// BBB is missing the second date entirely.
	b := domain.PriceSeries{Ticker: "BBB", Bars: []domain.PriceBar{
		{Date: start, Close: 50},
		{Date: start.AddDate(0, 0, 2), Close: 52},
		{Date: start.AddDate(0, 0, 3), Close: 53},
	}}

	matrix, err := NewPriceMatrix([]domain.PriceSeries{b, a})
	require.NoError(t, err)

	// Alphabetical ticker ordering, regardless of input order.
	require.Equal(t, []string{"AAA", "BBB"}, matrix.Tickers)

	// Only the three shared dates survive the join.
	require.Len(t, matrix.Dates, 3)
	for i := 1; i < len(matrix.Dates); i++ {
		if !matrix.Dates[i].After(matrix.Dates[i-1]) {
			t.Errorf("Dates not strictly increasing at index %d", i)
		}
	}

	prices := matrix.LatestPrices()
	if prices["AAA"] != 103 || prices["BBB"] != 53 {
		t.Errorf("Unexpected latest prices: %v", prices)
	}
}

func TestNewPriceMatrix_ShortSeries(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := seriesFromCloses("AAA", start, []float64{100})

	_, err := NewPriceMatrix([]domain.PriceSeries{a})
	if !errors.Is(err, domain.ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries, got %v", err)
	}
}

func TestNewPriceMatrix_DisjointDates(t *testing.T) {
	a := seriesFromCloses("AAA", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1, 2, 3})
	b := seriesFromCloses("BBB", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), []float64{4, 5, 6})

	_, err := NewPriceMatrix([]domain.PriceSeries{a, b})
	if !errors.Is(err, domain.ErrMisalignedSeries) {
		t.Errorf("Expected ErrMisalignedSeries, got %v", err)
	}
}

func TestEstimate_AnnualizedReturnsAndCovariance(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	aCloses := []float64{100, 110, 104.5, 125.4}
	bCloses := []float64{50, 51, 53, 52}
	a := seriesFromCloses("AAA", start, aCloses)
	b := seriesFromCloses("BBB", start, bCloses)

	matrix, err := NewPriceMatrix([]domain.PriceSeries{a, b})
	require.NoError(t, err)

	est, err := matrix.Estimate()
	require.NoError(t, err)
	require.Equal(t, []string{"AAA", "BBB"}, est.Tickers)

	// Cross-check against the brute-force formulas.
	aReturns := formulas.Returns(aCloses)
	bReturns := formulas.Returns(bCloses)

	wantMuA := formulas.AnnualizedMeanReturn(aReturns)
	wantMuB := formulas.AnnualizedMeanReturn(bReturns)
	if math.Abs(est.Mu[0]-wantMuA) > 1e-9*math.Abs(wantMuA) {
		t.Errorf("Mu[AAA] = %f, want %f", est.Mu[0], wantMuA)
	}
	if math.Abs(est.Mu[1]-wantMuB) > 1e-9*math.Abs(wantMuB) {
		t.Errorf("Mu[BBB] = %f, want %f", est.Mu[1], wantMuB)
	}

	// Annualized sample covariance, same 252 factor as the returns.
	wantCov := formulas.Covariance(aReturns, bReturns) * formulas.TradingDaysPerYear
	if math.Abs(est.Sigma.At(0, 1)-wantCov) > 1e-9*math.Abs(wantCov) {
		t.Errorf("Sigma[0][1] = %f, want %f", est.Sigma.At(0, 1), wantCov)
	}

	wantVarA := formulas.Covariance(aReturns, aReturns) * formulas.TradingDaysPerYear
	if math.Abs(est.Sigma.At(0, 0)-wantVarA) > 1e-9*math.Abs(wantVarA) {
		t.Errorf("Sigma[0][0] = %f, want %f", est.Sigma.At(0, 0), wantVarA)
	}

	// Symmetry.
	if est.Sigma.At(0, 1) != est.Sigma.At(1, 0) {
		t.Error("Covariance matrix is not symmetric")
	}
}
