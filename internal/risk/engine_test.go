package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/riskwatch-project/backend/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeInsufficientHistory(t *testing.T) {
	history := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10} // 9 points
	if _, err := Compute(10, history); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory for 9 points, got %v", err)
	}

	if _, err := Compute(10, nil); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory for empty history, got %v", err)
	}
}

func TestComputeFlatHistory(t *testing.T) {
	history := make([]float64, 10)
	for i := range history {
		history[i] = 10
	}

	a, err := Compute(10, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ties count toward the rank, so a flat history at the latest price is the
	// 100th percentile, not the 50th.
	if !almostEqual(a.PricePercentile, 100) {
		t.Errorf("percentile = %v, want 100", a.PricePercentile)
	}
	if !almostEqual(a.VolatilityScore, 0) {
		t.Errorf("volatility = %v, want 0", a.VolatilityScore)
	}
	if a.RiskScore != 60 {
		t.Errorf("risk score = %d, want 60", a.RiskScore)
	}
	if a.TrendDirection != models.TrendStable {
		t.Errorf("trend = %q, want stable", a.TrendDirection)
	}
}

func TestComputeAscendingHistory(t *testing.T) {
	history := make([]float64, 20)
	for i := range history {
		history[i] = float64(i + 1) // 1..20
	}

	a, err := Compute(20, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// rank 20 of 20
	if !almostEqual(a.PricePercentile, 100) {
		t.Errorf("percentile = %v, want 100", a.PricePercentile)
	}

	// Trend baseline is the mean of the 10 largest sorted prices: mean(11..20) = 15.5.
	// 20 > 1.05 * 15.5 = 16.275, so the trend is rising.
	if a.TrendDirection != models.TrendRising {
		t.Errorf("trend = %q, want rising", a.TrendDirection)
	}

	// Population variance of 1..20 is 33.25; CV = sqrt(33.25)/10.5.
	wantVol := math.Sqrt(33.25) / 10.5 * 100
	if !almostEqual(a.VolatilityScore, wantVol) {
		t.Errorf("volatility = %v, want %v", a.VolatilityScore, wantVol)
	}

	wantScore := int(math.Round(0.6*100 + 0.4*wantVol))
	if a.RiskScore != wantScore {
		t.Errorf("risk score = %d, want %d", a.RiskScore, wantScore)
	}
}

func TestComputeTrendBoundaries(t *testing.T) {
	// Flat history at 100 keeps the trend baseline at exactly 100, so the 5%
	// thresholds land on exact values.
	history := make([]float64, 10)
	for i := range history {
		history[i] = 100
	}

	cases := []struct {
		name   string
		latest float64
		want   string
	}{
		{"exactly at rising threshold stays stable", 105, models.TrendStable},
		{"just above rising threshold", 105.01, models.TrendRising},
		{"exactly at falling threshold stays stable", 95, models.TrendStable},
		{"just below falling threshold", 94.99, models.TrendFalling},
		{"well inside the band", 100, models.TrendStable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Compute(tc.latest, history)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.TrendDirection != tc.want {
				t.Errorf("latest %v: trend = %q, want %q", tc.latest, a.TrendDirection, tc.want)
			}
		})
	}
}

func TestComputePercentileRank(t *testing.T) {
	history := []float64{5, 3, 8, 1, 9, 2, 7, 4, 6, 10} // unsorted on purpose

	a, err := Compute(4.5, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 of 10 prices are <= 4.5
	if !almostEqual(a.PricePercentile, 40) {
		t.Errorf("percentile = %v, want 40", a.PricePercentile)
	}
	if a.RiskScore < 0 || a.RiskScore > 100 {
		t.Errorf("risk score %d out of [0,100]", a.RiskScore)
	}
}

func TestComputeVolatilityCap(t *testing.T) {
	// Nine quiet points and one enormous spike push the coefficient of variation
	// well past 100%, which must be capped.
	history := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}

	a, err := Compute(1, history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(a.VolatilityScore, 100) {
		t.Errorf("volatility = %v, want capped at 100", a.VolatilityScore)
	}
	if a.RiskScore < 0 || a.RiskScore > 100 {
		t.Errorf("risk score %d out of [0,100]", a.RiskScore)
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	history := []float64{9, 7, 5, 3, 1, 2, 4, 6, 8, 10}
	want := make([]float64, len(history))
	copy(want, history)

	if _, err := Compute(5, history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range history {
		if history[i] != want[i] {
			t.Fatalf("input history mutated at %d: %v != %v", i, history[i], want[i])
		}
	}
}
