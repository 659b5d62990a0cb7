/**
 * @description
 * Summary Service.
 * Implements the daily AI narrative pipeline:
 * 1. Load latest risk scores (DB)
 * 2. Bucket them into high/medium risk and top risers
 * 3. Generate a plain-text analyst summary (OpenAI-compatible LLM)
 * 4. Classify the stated risk level and append the ai_summaries row
 *
 * @dependencies
 * - backend/internal/integrations/openai
 * - backend/internal/services (RiskService)
 *
 * @notes
 * - An upstream LLM failure is a hard failure of the invocation; no partial
 *   summary is ever stored.
 */

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskwatch-project/backend/internal/integrations/openai"
	"github.com/riskwatch-project/backend/internal/logger"
	"github.com/riskwatch-project/backend/internal/models"
	"gorm.io/gorm"
)

const (
	highRiskCutoff   = 75
	mediumRiskCutoff = 60
	maxTopRisers     = 5
)

type SummaryService struct {
	DB     *gorm.DB
	Risk   *RiskService
	OpenAI *openai.Client
}

func NewSummaryService(db *gorm.DB, riskService *RiskService, openaiClient *openai.Client) *SummaryService {
	return &SummaryService{
		DB:     db,
		Risk:   riskService,
		OpenAI: openaiClient,
	}
}

// GenerateDailySummary produces and stores the daily risk narrative
func (s *SummaryService) GenerateDailySummary(ctx context.Context) (*models.AISummary, error) {
	unlock, err := acquireJobLock(ctx, s.DB, dailySummaryLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	logger.Info("[GenerateDailySummary] Fetching risk data")

	scores, err := s.Risk.LatestRiskScores(ctx)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no risk scores available - run risk recalculation first")
	}

	highRisk, mediumRisk, topRisers := bucketScores(scores)

	systemPrompt := "You are a supply chain risk analyst. You write concise daily summaries of commodity risk data for procurement teams."
	userPrompt := buildSummaryPrompt(scores, highRisk, mediumRisk, topRisers)

	logger.Info("[GenerateDailySummary] Calling LLM (%s)", s.OpenAI.Model())
	narrative, err := s.OpenAI.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	summary := models.AISummary{
		SummaryType:     models.SummaryTypeDaily,
		Summary:         narrative,
		RiskLevel:       classifyRiskLevel(narrative),
		KeyFactors:      deriveKeyFactors(highRisk),
		Recommendations: defaultRecommendations(),
		GeneratedAt:     time.Now().UnixMilli(),
	}

	if err := s.DB.WithContext(ctx).Create(&summary).Error; err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}

	logger.Info("[GenerateDailySummary] Summary generated successfully (risk level: %s)", summary.RiskLevel)
	return &summary, nil
}

// LatestSummary returns the most recent summary of a given type, or nil if none exists
func (s *SummaryService) LatestSummary(ctx context.Context, summaryType string) (*models.AISummary, error) {
	var summary models.AISummary
	err := s.DB.WithContext(ctx).
		Where("summary_type = ?", summaryType).
		Order("generated_at DESC").
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// bucketScores splits the latest scores into high risk (>= 75), medium risk
// (60-74), and the top rising symbols. scores must already be sorted by
// risk_score descending, as LatestRiskScores returns them.
func bucketScores(scores []models.RiskScore) (highRisk, mediumRisk, topRisers []models.RiskScore) {
	for _, sc := range scores {
		switch {
		case sc.RiskScore >= highRiskCutoff:
			highRisk = append(highRisk, sc)
		case sc.RiskScore >= mediumRiskCutoff:
			mediumRisk = append(mediumRisk, sc)
		}
		if sc.TrendDirection == models.TrendRising && len(topRisers) < maxTopRisers {
			topRisers = append(topRisers, sc)
		}
	}
	return highRisk, mediumRisk, topRisers
}

func buildSummaryPrompt(all, highRisk, mediumRisk, topRisers []models.RiskScore) string {
	var b strings.Builder

	b.WriteString("Analyze this commodity risk data and provide a concise daily summary.\n\n")
	b.WriteString("DATA:\n")
	fmt.Fprintf(&b, "Total Commodities Tracked: %d\n", len(all))
	fmt.Fprintf(&b, "High Risk (75+): %d\n", len(highRisk))
	fmt.Fprintf(&b, "Medium Risk (60-74): %d\n", len(mediumRisk))

	b.WriteString("\nHIGH RISK COMMODITIES:\n")
	for _, r := range highRisk {
		fmt.Fprintf(&b, "- %s: Score %d/100, Trend: %s, Percentile: %.1f\n",
			r.Symbol, r.RiskScore, r.TrendDirection, r.PricePercentile)
	}

	b.WriteString("\nTOP PRICE RISERS:\n")
	for _, r := range topRisers {
		fmt.Fprintf(&b, "- %s: Score %d/100\n", r.Symbol, r.RiskScore)
	}

	b.WriteString(`
Provide a summary in PLAIN TEXT (no markdown) with:

1. OVERALL RISK: State if risk is LOW, MEDIUM, HIGH, or CRITICAL
2. TOP CONCERNS: List 2-3 most concerning commodities and why
3. KEY FACTORS: Main drivers of current risk
4. RECOMMENDATIONS: 2-3 actionable steps for procurement teams

Keep under 250 words, professional tone.`)

	return b.String()
}

// classifyRiskLevel extracts the narrative's stated risk level by keyword
// precedence: CRITICAL > HIGH > MEDIUM, else low. Matching is case-insensitive.
func classifyRiskLevel(narrative string) string {
	upper := strings.ToUpper(narrative)
	switch {
	case strings.Contains(upper, "CRITICAL"):
		return models.RiskLevelCritical
	case strings.Contains(upper, "HIGH"):
		return models.RiskLevelHigh
	case strings.Contains(upper, "MEDIUM"):
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func deriveKeyFactors(highRisk []models.RiskScore) models.StringArray {
	if len(highRisk) > 0 {
		return models.StringArray{
			fmt.Sprintf("%d commodities in high-risk zone", len(highRisk)),
			"Price volatility detected",
		}
	}
	return models.StringArray{"Market conditions stable"}
}

func defaultRecommendations() models.StringArray {
	return models.StringArray{
		"Monitor high-risk commodities daily",
		"Consider hedging strategies for top risers",
	}
}
