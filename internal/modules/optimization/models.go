// Package optimization implements the portfolio analysis pipeline:
// return/risk estimation, long-only max-Sharpe weights, discrete share
// allocation and portfolio metrics.
package optimization

// Status is the terminal state of an analysis run.
type Status string

const (
	// StatusNoOp - the ledger was empty, nothing to analyze.
	StatusNoOp Status = "no_op"
	// StatusRejected - no asset's expected return clears the risk-free
	// rate; optimizing would be degenerate (cash dominates everything).
	StatusRejected Status = "rejected"
	// StatusCompleted - full weights, allocation and metrics available.
	StatusCompleted Status = "completed"
)

// Performance holds annualized portfolio metrics for a weight vector.
type Performance struct {
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// Allocation is the discrete share allocation: whole-share counts per
// ticker plus the unspent cash. Invariant: spend + leftover == budget and
// no further whole share of a positively-weighted ticker is affordable.
type Allocation struct {
	Shares   map[string]int64 `json:"shares"`
	Leftover float64          `json:"leftover"`
}

// Result is the payload of one analysis run.
type Result struct {
	Status          Status             `json:"status"`
	Warning         string             `json:"warning,omitempty"`
	ExpectedReturns map[string]float64 `json:"expected_returns,omitempty"`
	Weights         map[string]float64 `json:"weights,omitempty"`
	LatestPrices    map[string]float64 `json:"latest_prices,omitempty"`
	Allocation      *Allocation        `json:"allocation,omitempty"`
	Performance     *Performance       `json:"performance,omitempty"`
}
