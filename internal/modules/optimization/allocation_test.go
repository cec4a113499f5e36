package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocate_ExactFit(t *testing.T) {
	weights := map[string]float64{"AAA": 0.6, "BBB": 0.4}
	prices := map[string]float64{"AAA": 100, "BBB": 50}

	alloc, err := Allocate(weights, prices, 1000)
	require.NoError(t, err)

	if alloc.Shares["AAA"] != 6 || alloc.Shares["BBB"] != 8 {
		t.Errorf("Unexpected allocation: %v", alloc.Shares)
	}
	if alloc.Leftover != 0 {
		t.Errorf("Expected zero leftover, got %f", alloc.Leftover)
	}
}

func TestAllocate_LeftoverInvariant(t *testing.T) {
	weights := map[string]float64{"AAA": 0.5, "BBB": 0.3, "CCC": 0.2}
	prices := map[string]float64{"AAA": 173.41, "BBB": 91.07, "CCC": 412.9}
	budget := 10000.0

	alloc, err := Allocate(weights, prices, budget)
	require.NoError(t, err)

	spend := 0.0
	for ticker, shares := range alloc.Shares {
		if shares < 0 {
			t.Errorf("Negative share count for %s: %d", ticker, shares)
		}
		spend += float64(shares) * prices[ticker]
	}

	if alloc.Leftover < 0 {
		t.Errorf("Negative leftover: %f", alloc.Leftover)
	}
	if math.Abs(spend+alloc.Leftover-budget) > 1e-9 {
		t.Errorf("spend + leftover = %f, want %f", spend+alloc.Leftover, budget)
	}

	// Greedy exit condition: nothing else is affordable.
	for ticker, price := range prices {
		if weights[ticker] > 0 && price <= alloc.Leftover {
			t.Errorf("One more share of %s (%.2f) still fits in leftover %.2f", ticker, price, alloc.Leftover)
		}
	}
}

func TestAllocate_ZeroWeightIgnored(t *testing.T) {
	weights := map[string]float64{"AAA": 1.0, "BBB": 0.0}
	// BBB has no price, but its weight is zero so it must not matter.
	prices := map[string]float64{"AAA": 10}

	alloc, err := Allocate(weights, prices, 95)
	require.NoError(t, err)

	if alloc.Shares["AAA"] != 9 {
		t.Errorf("Expected 9 shares of AAA, got %d", alloc.Shares["AAA"])
	}
	if _, ok := alloc.Shares["BBB"]; ok {
		t.Error("Zero-weight ticker must not receive shares")
	}
	if math.Abs(alloc.Leftover-5) > 1e-9 {
		t.Errorf("Expected leftover 5, got %f", alloc.Leftover)
	}
}

func TestAllocate_MissingPrice(t *testing.T) {
	weights := map[string]float64{"AAA": 1.0}

	_, err := Allocate(weights, map[string]float64{}, 1000)
	if err == nil {
		t.Error("Expected error for missing price")
	}
}

func TestAllocate_InvalidBudget(t *testing.T) {
	weights := map[string]float64{"AAA": 1.0}
	prices := map[string]float64{"AAA": 10}

	for _, budget := range []float64{0, -100} {
		if _, err := Allocate(weights, prices, budget); err == nil {
			t.Errorf("Expected error for budget %f", budget)
		}
	}
}

func TestAllocate_BudgetBelowCheapestShare(t *testing.T) {
	weights := map[string]float64{"AAA": 1.0}
	prices := map[string]float64{"AAA": 500}

	alloc, err := Allocate(weights, prices, 100)
	require.NoError(t, err)

	if len(alloc.Shares) != 0 {
		t.Errorf("Expected no purchases, got %v", alloc.Shares)
	}
	if alloc.Leftover != 100 {
		t.Errorf("Expected full budget left over, got %f", alloc.Leftover)
	}
}
