package services

import (
	"strings"
	"testing"

	"github.com/riskwatch-project/backend/internal/models"
)

func TestClassifyRiskLevel(t *testing.T) {
	cases := []struct {
		name      string
		narrative string
		want      string
	}{
		{"critical wins over high", "OVERALL RISK: CRITICAL. Several high risk commodities.", models.RiskLevelCritical},
		{"high", "Overall risk is HIGH this week.", models.RiskLevelHigh},
		{"medium", "Overall risk: medium, conditions mixed.", models.RiskLevelMedium},
		{"case insensitive", "overall risk is Critical", models.RiskLevelCritical},
		{"default low", "Markets are calm today.", models.RiskLevelLow},
		{"empty", "", models.RiskLevelLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyRiskLevel(tc.narrative); got != tc.want {
				t.Errorf("classifyRiskLevel(%q) = %q, want %q", tc.narrative, got, tc.want)
			}
		})
	}
}

func TestBucketScores(t *testing.T) {
	scores := []models.RiskScore{
		{Symbol: "XAU", RiskScore: 90, TrendDirection: models.TrendRising},
		{Symbol: "NG", RiskScore: 80, TrendDirection: models.TrendStable},
		{Symbol: "WHEAT", RiskScore: 74, TrendDirection: models.TrendRising},
		{Symbol: "CORN", RiskScore: 60, TrendDirection: models.TrendFalling},
		{Symbol: "XAG", RiskScore: 59, TrendDirection: models.TrendRising},
		{Symbol: "COFFEE", RiskScore: 20, TrendDirection: models.TrendStable},
	}

	highRisk, mediumRisk, topRisers := bucketScores(scores)

	if len(highRisk) != 2 || highRisk[0].Symbol != "XAU" || highRisk[1].Symbol != "NG" {
		t.Errorf("unexpected high risk bucket: %+v", highRisk)
	}
	// 60 is inclusive, 75 belongs to the high bucket
	if len(mediumRisk) != 2 || mediumRisk[0].Symbol != "WHEAT" || mediumRisk[1].Symbol != "CORN" {
		t.Errorf("unexpected medium risk bucket: %+v", mediumRisk)
	}
	if len(topRisers) != 3 {
		t.Errorf("unexpected risers: %+v", topRisers)
	}
}

func TestBucketScoresCapsRisers(t *testing.T) {
	var scores []models.RiskScore
	for i := 0; i < 8; i++ {
		scores = append(scores, models.RiskScore{Symbol: "S", RiskScore: 50, TrendDirection: models.TrendRising})
	}

	_, _, topRisers := bucketScores(scores)
	if len(topRisers) != maxTopRisers {
		t.Fatalf("risers = %d, want capped at %d", len(topRisers), maxTopRisers)
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	all := []models.RiskScore{
		{Symbol: "XAU", RiskScore: 90, TrendDirection: models.TrendRising, PricePercentile: 96.7},
		{Symbol: "CORN", RiskScore: 40, TrendDirection: models.TrendStable},
	}
	high := all[:1]
	risers := all[:1]

	prompt := buildSummaryPrompt(all, high, nil, risers)

	for _, want := range []string{
		"Total Commodities Tracked: 2",
		"High Risk (75+): 1",
		"- XAU: Score 90/100, Trend: rising, Percentile: 96.7",
		"OVERALL RISK",
		"PLAIN TEXT",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDeriveKeyFactors(t *testing.T) {
	high := []models.RiskScore{{Symbol: "XAU"}, {Symbol: "NG"}}
	factors := deriveKeyFactors(high)
	if len(factors) != 2 || !strings.Contains(factors[0], "2 commodities") {
		t.Errorf("unexpected key factors: %v", factors)
	}

	calm := deriveKeyFactors(nil)
	if len(calm) != 1 || calm[0] != "Market conditions stable" {
		t.Errorf("unexpected calm factors: %v", calm)
	}
}
