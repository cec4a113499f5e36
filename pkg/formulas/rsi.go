package formulas

import (
	"math"

	"github.com/aristath/findash/internal/domain"
)

// CalculateRSISeries calculates the rolling Relative Strength Index.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
//
// The averages are simple trailing-window means, not Wilder's smoothed
// averages (which is why this is hand-rolled instead of talib.Rsi): with
// simple averages an all-gain window yields exactly 100, matching the
// rolling-mean convention of the pandas implementation this mirrors.
//
// When the average loss is 0 the ratio is infinite; RSI is defined as 100
// in that case so NaN never leaks into defined values. The first `window`
// values are NaN - one extra point is lost to the differencing step.
func CalculateRSISeries(closes []float64, window int) ([]float64, error) {
	if len(closes) == 0 {
		return nil, domain.ErrInsufficientData
	}

	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}

	if len(closes) <= window {
		return out, nil
	}

	// Per-step deltas, split into gains and losses.
	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	for i := window; i < len(closes); i++ {
		avgGain := Mean(gains[i-window : i])
		avgLoss := Mean(losses[i-window : i])

		if avgLoss == 0 {
			out[i] = 100.0
			continue
		}

		rs := avgGain / avgLoss
		out[i] = 100.0 - 100.0/(1.0+rs)
	}

	return out, nil
}
