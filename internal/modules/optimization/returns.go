package optimization

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/findash/internal/domain"
	"github.com/aristath/findash/pkg/formulas"
)

// PriceMatrix is the aligned close-price matrix for a set of tickers: an
// inner join of the per-ticker series on date. It owns the single ticker
// ordering both estimates are computed in - expected returns and
// covariance derived from the same PriceMatrix can never disagree on
// ordering.
type PriceMatrix struct {
	Tickers []string
	Dates   []time.Time
	// closes is row-major: one row per date, one column per ticker.
	closes *mat.Dense
}

// NewPriceMatrix aligns the given series on their common dates. Tickers
// are ordered alphabetically for determinism.
//
// Fails with domain.ErrEmptySeries when any input series has fewer than 2
// observations, and domain.ErrMisalignedSeries when the joined index is
// empty or leaves fewer than 2 common dates.
func NewPriceMatrix(series []domain.PriceSeries) (*PriceMatrix, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no series given: %w", domain.ErrMisalignedSeries)
	}

	byTicker := make(map[string]map[time.Time]float64, len(series))
	tickers := make([]string, 0, len(series))

	for _, s := range series {
		if len(s.Bars) < 2 {
			return nil, fmt.Errorf("ticker %s has %d observations: %w", s.Ticker, len(s.Bars), domain.ErrEmptySeries)
		}
		closesByDate := make(map[time.Time]float64, len(s.Bars))
		for _, bar := range s.Bars {
			closesByDate[bar.Date] = bar.Close
		}
		byTicker[s.Ticker] = closesByDate
		tickers = append(tickers, s.Ticker)
	}
	sort.Strings(tickers)

	// Inner join: keep only dates every ticker has.
	var dates []time.Time
	for date := range byTicker[tickers[0]] {
		shared := true
		for _, ticker := range tickers[1:] {
			if _, ok := byTicker[ticker][date]; !ok {
				shared = false
				break
			}
		}
		if shared {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) < 2 {
		return nil, fmt.Errorf("aligned index has %d dates: %w", len(dates), domain.ErrMisalignedSeries)
	}

	closes := mat.NewDense(len(dates), len(tickers), nil)
	for i, date := range dates {
		for j, ticker := range tickers {
			closes.Set(i, j, byTicker[ticker][date])
		}
	}

	return &PriceMatrix{Tickers: tickers, Dates: dates, closes: closes}, nil
}

// LatestPrices returns the final row of the matrix keyed by ticker.
func (m *PriceMatrix) LatestPrices() map[string]float64 {
	prices := make(map[string]float64, len(m.Tickers))
	last := len(m.Dates) - 1
	for j, ticker := range m.Tickers {
		prices[ticker] = m.closes.At(last, j)
	}
	return prices
}

// Estimates bundles the expected-return vector and covariance matrix in
// the PriceMatrix's ticker ordering.
type Estimates struct {
	Tickers []string
	Mu      []float64
	Sigma   *mat.SymDense
}

// ReturnsByTicker exposes the expected returns as a map for reporting.
func (e *Estimates) ReturnsByTicker() map[string]float64 {
	out := make(map[string]float64, len(e.Tickers))
	for i, ticker := range e.Tickers {
		out[ticker] = e.Mu[i]
	}
	return out
}

// Estimate computes annualized mean historical returns and the annualized
// sample covariance of daily simple returns, both from this matrix.
func (m *PriceMatrix) Estimate() (*Estimates, error) {
	rows, cols := m.closes.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("aligned matrix has %d rows: %w", rows, domain.ErrEmptySeries)
	}

	// Daily simple returns, column per ticker.
	returns := mat.NewDense(rows-1, cols, nil)
	mu := make([]float64, cols)

	for j := 0; j < cols; j++ {
		prices := make([]float64, rows)
		mat.Col(prices, j, m.closes)

		daily := formulas.Returns(prices)
		for i, r := range daily {
			returns.Set(i, j, r)
		}
		mu[j] = formulas.AnnualizedMeanReturn(daily)
	}

	sigma := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(sigma, returns, nil)

	// Same annualization factor as the returns.
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			sigma.SetSym(i, j, sigma.At(i, j)*formulas.TradingDaysPerYear)
		}
	}

	return &Estimates{Tickers: m.Tickers, Mu: mu, Sigma: sigma}, nil
}
