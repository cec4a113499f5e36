// Package domain provides core domain models and types.
package domain

import "time"

// PriceBar represents one day of OHLC price data for a single ticker.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered sequence of price bars for one ticker.
// Bars are sorted by date, strictly increasing, with no duplicate dates.
// Gaps (non-trading days) are allowed.
type PriceSeries struct {
	Ticker string     `json:"ticker"`
	Bars   []PriceBar `json:"bars"`
}

// Closes returns the close-price column of the series.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the date column of the series.
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Date
	}
	return dates
}

// LatestClose returns the most recent close price, or false when the
// series is empty.
func (s PriceSeries) LatestClose() (float64, bool) {
	if len(s.Bars) == 0 {
		return 0, false
	}
	return s.Bars[len(s.Bars)-1].Close, true
}

// IndicatorPoint is one timestamped value of a rolling indicator.
// Value is nil inside the warm-up gap of a rolling computation.
type IndicatorPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// IndicatorSeries is a named, ordered sequence of indicator points.
type IndicatorSeries struct {
	Name   string           `json:"name"`
	Points []IndicatorPoint `json:"points"`
}

// LedgerEntry is one row of the portfolio ledger: a ticker and the
// number of shares held. Quantity is never negative.
type LedgerEntry struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}
