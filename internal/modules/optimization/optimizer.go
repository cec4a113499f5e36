package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Weight-cleaning tolerance: weights below this fraction are snapped to
// zero and the remainder renormalized to sum to 1.
const cleanWeightTolerance = 1e-4

// MaxSharpe solves for long-only weights maximizing the Sharpe ratio
// (mu'w - rf) / sqrt(w'Sigma'w) subject to w >= 0 and sum(w) = 1.
//
// The sum constraint is enforced with a quadratic penalty and the bounds
// by projecting iterates onto [0, 1]; NelderMead is tried first with a
// BFGS fallback. The projected solution is renormalized before return.
func MaxSharpe(est *Estimates, riskFree float64) (map[string]float64, error) {
	n := len(est.Tickers)
	if n == 0 {
		return nil, fmt.Errorf("no tickers to optimize")
	}

	// Single asset: the frontier is one point.
	if n == 1 {
		return map[string]float64{est.Tickers[0]: 1.0}, nil
	}

	penaltyWeight := 1000.0

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			xProj := projectToUnitBox(x)

			var ret, variance float64
			for i := 0; i < n; i++ {
				ret += est.Mu[i] * xProj[i]
				for j := 0; j < n; j++ {
					variance += xProj[i] * xProj[j] * est.Sigma.At(i, j)
				}
			}
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			sum := 0.0
			for i := 0; i < n; i++ {
				sum += xProj[i]
			}

			obj := -(ret - riskFree) / stdDev
			obj += penaltyWeight * (sum - 1.0) * (sum - 1.0)
			return obj
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil || !converged(result.Status) {
		// Gradient-free failed or stalled; retry with BFGS on a
		// numerical gradient.
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
		if err != nil {
			return nil, fmt.Errorf("optimization failed: %w", err)
		}
		if !converged(result.Status) {
			return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
		}
	}

	// Project final solution to bounds and normalize to sum 1.
	xFinal := projectToUnitBox(result.X)
	sum := 0.0
	for _, v := range xFinal {
		sum += v
	}

	weights := make(map[string]float64, n)
	for i, ticker := range est.Tickers {
		weights[ticker] = math.Max(0.0, xFinal[i]/math.Max(sum, 1e-10))
	}

	return weights, nil
}

// CleanWeights snaps near-zero weights to exactly zero and renormalizes
// the rest to sum to 1 (within 1e-6). Zero-sum input is returned as-is.
func CleanWeights(weights map[string]float64) map[string]float64 {
	cleaned := make(map[string]float64, len(weights))

	sum := 0.0
	for ticker, w := range weights {
		if w < cleanWeightTolerance {
			cleaned[ticker] = 0
			continue
		}
		cleaned[ticker] = w
		sum += w
	}

	if sum <= 0 {
		return cleaned
	}

	for ticker, w := range cleaned {
		cleaned[ticker] = w / sum
	}
	return cleaned
}

func projectToUnitBox(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Min(math.Max(v, 0.0), 1.0)
	}
	return out
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.FunctionThreshold:
		return true
	}
	return false
}
