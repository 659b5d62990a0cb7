/**
 * @description
 * Risk Engine.
 * Converts a commodity's latest price plus its trailing price history into a
 * normalized risk assessment: percentile rank, volatility score, trend direction,
 * and a composite 0-100 risk score.
 *
 * @dependencies
 * - standard "math"
 * - standard "sort"
 *
 * @notes
 * - Pure and deterministic: no I/O, no clock reads. Callers supply the evaluation
 *   timestamp when persisting the result.
 * - Precondition: all prices are positive. Commodity spot prices always are, so the
 *   mean is never zero and the volatility division is total.
 */

package risk

import (
	"errors"
	"math"
	"sort"

	"github.com/riskwatch-project/backend/internal/models"
)

// MinHistoryPoints is the smallest history that can be scored.
// Below this the engine declines with ErrInsufficientHistory; callers skip the symbol.
const MinHistoryPoints = 10

// trendWindow is the number of top entries of the ascending-sorted price list that
// form the trend baseline. Note this is a draw from the sorted set, not the
// chronologically most recent observations.
const trendWindow = 10

// Trend classification thresholds: latest must move 5% past the baseline (strict)
// before the trend leaves "stable".
const (
	risingThreshold  = 1.05
	fallingThreshold = 0.95
)

// Composite weighting: percentile rank dominates, volatility tempers it.
const (
	percentileWeight = 0.6
	volatilityWeight = 0.4
)

// ErrInsufficientHistory signals that the history window is too small to score.
// It is a normal skip outcome, not a failure.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Assessment is the engine's output for one symbol
type Assessment struct {
	RiskScore       int     // round(0.6*percentile + 0.4*volatility), in [0,100]
	PricePercentile float64 // inclusive rank-based percentile, in [0,100]
	VolatilityScore float64 // capped coefficient of variation, in [0,100]
	TrendDirection  string  // models.TrendRising / TrendFalling / TrendStable
}

// Compute scores one symbol from its latest price and trailing history.
// history carries the window's prices in any order; the engine sorts its own copy.
func Compute(latestPrice float64, history []float64) (Assessment, error) {
	n := len(history)
	if n < MinHistoryPoints {
		return Assessment{}, ErrInsufficientHistory
	}

	prices := make([]float64, n)
	copy(prices, history)
	sort.Float64s(prices)

	// Percentile: inclusive rank, ties count toward the rank. A flat history equal
	// to the latest price therefore yields 100, not 50.
	rank := 0
	for _, p := range prices {
		if p <= latestPrice {
			rank++
		}
	}
	percentile := float64(rank) / float64(n) * 100

	// Volatility: population variance (divide by n), expressed as a capped
	// coefficient of variation.
	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(n)

	variance := 0.0
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}
	variance /= float64(n)
	stdDev := math.Sqrt(variance)

	volatility := stdDev / mean * 100
	if volatility > 100 {
		volatility = 100
	}

	// Trend: compare latest against the mean of the top trendWindow sorted prices.
	recent := prices[n-trendWindow:]
	avgRecent := 0.0
	for _, p := range recent {
		avgRecent += p
	}
	avgRecent /= float64(len(recent))

	trend := models.TrendStable
	switch {
	case latestPrice > avgRecent*risingThreshold:
		trend = models.TrendRising
	case latestPrice < avgRecent*fallingThreshold:
		trend = models.TrendFalling
	}

	score := int(math.Round(percentile*percentileWeight + volatility*volatilityWeight))

	return Assessment{
		RiskScore:       score,
		PricePercentile: percentile,
		VolatilityScore: volatility,
		TrendDirection:  trend,
	}, nil
}
