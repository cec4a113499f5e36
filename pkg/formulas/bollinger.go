package formulas

import (
	"math"
)

// BollingerSeries holds the three Bollinger band series. Each slice has
// the same length as the input closes, with NaN in the warm-up gap.
type BollingerSeries struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// CalculateBollingerSeries calculates rolling Bollinger Bands.
//
// Bollinger Bands Formula:
//
//	Middle Band = window-day SMA
//	Upper Band  = Middle + (k x std deviation)
//	Lower Band  = Middle - (k x std deviation)
//
// The deviation is the *sample* standard deviation of the trailing window
// (pandas convention, ddof=1), not the population deviation TA-Lib uses.
// The first window-1 values of each band are NaN.
func CalculateBollingerSeries(closes []float64, window int, k float64) (*BollingerSeries, error) {
	middle, err := SMASeries(closes, window)
	if err != nil {
		return nil, err
	}

	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))

	for i := range closes {
		if IsUndefined(middle[i]) {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}

		sd := StdDev(closes[i-window+1 : i+1])
		upper[i] = middle[i] + k*sd
		lower[i] = middle[i] - k*sd
	}

	return &BollingerSeries{Middle: middle, Upper: upper, Lower: lower}, nil
}
