package formulas

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/aristath/findash/internal/domain"
)

// SMASeries calculates the simple moving average over a trailing window.
//
// The result has the same length as the input; the first window-1 values
// are NaN (the warm-up gap of any rolling computation). The only failure
// mode is an empty input - a series shorter than the window is valid and
// simply has no defined values.
func SMASeries(closes []float64, window int) ([]float64, error) {
	if len(closes) == 0 {
		return nil, domain.ErrInsufficientData
	}

	out := make([]float64, len(closes))

	if len(closes) < window {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}

	// go-talib zero-fills the warm-up gap; replace it with NaN so
	// undefined values cannot be mistaken for a zero price.
	copy(out, talib.Sma(closes, window))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}

	return out, nil
}
