// Package charts assembles indicator overlay data for the renderer.
package charts

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/config"
	"github.com/aristath/findash/internal/domain"
	"github.com/aristath/findash/pkg/formulas"
)

// Overlay keys accepted by the service.
const (
	OverlaySMAShort  = "sma20"
	OverlaySMALong   = "sma50"
	OverlayBollinger = "bb"
	OverlayRSI       = "rsi"
)

// ChartData is the renderer payload: the raw candlestick series plus the
// requested indicator overlays. Plain structures only - the renderer owns
// presentation.
type ChartData struct {
	Ticker     string                   `json:"ticker"`
	Bars       []domain.PriceBar        `json:"bars"`
	Indicators []domain.IndicatorSeries `json:"indicators"`
}

// Windows holds the rolling windows used for overlays. Zero values fall
// back to the documented defaults (20/50-day SMA, 20-day Bollinger with
// k=2, 14-day RSI).
type Windows struct {
	SMAShort  int
	SMALong   int
	Bollinger int
	RSI       int
	K         float64
}

func (w Windows) withDefaults() Windows {
	if w.SMAShort <= 0 {
		w.SMAShort = config.DefaultSMAShortWindow
	}
	if w.SMALong <= 0 {
		w.SMALong = config.DefaultSMALongWindow
	}
	if w.Bollinger <= 0 {
		w.Bollinger = config.DefaultBollingerWindow
	}
	if w.RSI <= 0 {
		w.RSI = config.DefaultRSIWindow
	}
	if w.K <= 0 {
		w.K = config.DefaultBollingerK
	}
	return w
}

// Service computes chart overlays from price series.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "charts").Logger(),
	}
}

// Overlays computes the requested indicator overlays for a price series.
// The candlestick bars always pass through; unknown overlay keys fail.
func (s *Service) Overlays(series domain.PriceSeries, overlays []string, windows Windows) (*ChartData, error) {
	windows = windows.withDefaults()

	data := &ChartData{
		Ticker:     series.Ticker,
		Bars:       series.Bars,
		Indicators: []domain.IndicatorSeries{},
	}

	closes := series.Closes()
	dates := series.Dates()

	for _, overlay := range overlays {
		switch overlay {
		case OverlaySMAShort:
			sma, err := formulas.SMASeries(closes, windows.SMAShort)
			if err != nil {
				return nil, err
			}
			data.Indicators = append(data.Indicators,
				toIndicatorSeries(fmt.Sprintf("SMA(%d)", windows.SMAShort), dates, sma))

		case OverlaySMALong:
			sma, err := formulas.SMASeries(closes, windows.SMALong)
			if err != nil {
				return nil, err
			}
			data.Indicators = append(data.Indicators,
				toIndicatorSeries(fmt.Sprintf("SMA(%d)", windows.SMALong), dates, sma))

		case OverlayBollinger:
			bands, err := formulas.CalculateBollingerSeries(closes, windows.Bollinger, windows.K)
			if err != nil {
				return nil, err
			}
			prefix := fmt.Sprintf("Bollinger(%d)", windows.Bollinger)
			data.Indicators = append(data.Indicators,
				toIndicatorSeries(prefix+" Mean", dates, bands.Middle),
				toIndicatorSeries(prefix+" Upper", dates, bands.Upper),
				toIndicatorSeries(prefix+" Lower", dates, bands.Lower))

		case OverlayRSI:
			rsi, err := formulas.CalculateRSISeries(closes, windows.RSI)
			if err != nil {
				return nil, err
			}
			data.Indicators = append(data.Indicators,
				toIndicatorSeries(fmt.Sprintf("RSI(%d)", windows.RSI), dates, rsi))

		default:
			return nil, fmt.Errorf("unknown overlay %q", overlay)
		}
	}

	return data, nil
}

// toIndicatorSeries pairs dates with values, translating the NaN warm-up
// convention of pkg/formulas into nullable points.
func toIndicatorSeries(name string, dates []time.Time, values []float64) domain.IndicatorSeries {
	points := make([]domain.IndicatorPoint, len(values))
	for i, v := range values {
		points[i] = domain.IndicatorPoint{Date: dates[i]}
		if !formulas.IsUndefined(v) {
			value := v
			points[i].Value = &value
		}
	}
	return domain.IndicatorSeries{Name: name, Points: points}
}
