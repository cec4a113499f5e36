package formulas

import (
	"errors"
	"math"
	"testing"

	"github.com/aristath/findash/internal/domain"
)

func TestCalculateRSISeries_EmptyInput(t *testing.T) {
	_, err := CalculateRSISeries(nil, 14)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestCalculateRSISeries_Range(t *testing.T) {
	// Mixed gains and losses.
	closes := []float64{44, 44.5, 43.9, 44.2, 44.9, 44.1, 43.6, 44.3, 45.0, 44.8, 45.5, 46.1}
	window := 5

	rsi, err := CalculateRSISeries(closes, window)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// One extra point is lost to differencing: first `window` values undefined.
	for i := 0; i < window; i++ {
		if !IsUndefined(rsi[i]) {
			t.Errorf("Expected undefined value at index %d, got %f", i, rsi[i])
		}
	}

	for i := window; i < len(rsi); i++ {
		if IsUndefined(rsi[i]) {
			t.Errorf("Expected defined value at index %d", i)
			continue
		}
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Errorf("RSI[%d] = %f, outside [0, 100]", i, rsi[i])
		}
	}
}

func TestCalculateRSISeries_AllGainsIsExactly100(t *testing.T) {
	// Strictly increasing prices: every delta in every window is a gain.
	closes := []float64{10, 11, 12, 13, 14, 15, 16, 17}

	rsi, err := CalculateRSISeries(closes, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := 3; i < len(rsi); i++ {
		if rsi[i] != 100.0 {
			t.Errorf("RSI[%d] = %f, want exactly 100", i, rsi[i])
		}
	}
}

func TestCalculateRSISeries_AllLosses(t *testing.T) {
	closes := []float64{17, 16, 15, 14, 13, 12, 11, 10}

	rsi, err := CalculateRSISeries(closes, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := 3; i < len(rsi); i++ {
		if math.Abs(rsi[i]) > 1e-9 {
			t.Errorf("RSI[%d] = %f, want 0", i, rsi[i])
		}
	}
}

func TestCalculateRSISeries_FlatPrices(t *testing.T) {
	// No movement at all: average loss is 0, RSI pins to 100 by definition
	// rather than propagating a division by zero.
	closes := []float64{50, 50, 50, 50, 50, 50}

	rsi, err := CalculateRSISeries(closes, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := 3; i < len(rsi); i++ {
		if rsi[i] != 100.0 {
			t.Errorf("RSI[%d] = %f, want 100 (zero-loss convention)", i, rsi[i])
		}
	}
}
