package optimization

import (
	"fmt"
	"math"
	"sort"
)

// Allocate converts target weights into whole-share purchase counts under
// a cash budget using a greedy largest-underweight loop: shares of the
// most underweighted affordable ticker are bought one at a time until no
// positively-weighted ticker's price fits in the remaining cash.
//
// Guarantees: leftover >= 0, spend + leftover == budget, and on exit no
// further whole share of any ticker with a positive target weight is
// affordable (the greedy solution is locally optimal).
func Allocate(weights map[string]float64, latestPrices map[string]float64, budget float64) (*Allocation, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be positive, got %f", budget)
	}

	// Stable iteration order for deterministic tie-breaking.
	tickers := make([]string, 0, len(weights))
	for ticker, w := range weights {
		if w <= 0 {
			continue
		}
		price, ok := latestPrices[ticker]
		if !ok {
			return nil, fmt.Errorf("no latest price for ticker %s", ticker)
		}
		if price <= 0 {
			return nil, fmt.Errorf("non-positive latest price for ticker %s", ticker)
		}
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	alloc := &Allocation{
		Shares:   make(map[string]int64, len(tickers)),
		Leftover: budget,
	}

	for {
		best := ""
		bestDeficit := math.Inf(-1)

		for _, ticker := range tickers {
			price := latestPrices[ticker]
			if price > alloc.Leftover {
				continue
			}

			// Deficit: target value minus allocated value. Buying the
			// largest deficit first keeps value fractions closest to
			// the target weights.
			allocated := float64(alloc.Shares[ticker]) * price
			deficit := weights[ticker]*budget - allocated
			if best == "" || deficit > bestDeficit {
				best = ticker
				bestDeficit = deficit
			}
		}

		if best == "" {
			break // no ticker affordable with the leftover
		}

		alloc.Shares[best]++
		alloc.Leftover -= latestPrices[best]
	}

	return alloc, nil
}
