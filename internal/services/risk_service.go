/**
 * @description
 * Service layer for risk scoring.
 * Feeds the pure risk engine with each symbol's latest price and trailing history,
 * then appends the resulting RiskScore rows. Also serves the "latest risk per
 * symbol" queries the summarizer and dashboard depend on.
 *
 * @dependencies
 * - backend/internal/risk: the pure scoring engine
 * - backend/internal/models
 * - gorm.io/gorm
 *
 * @notes
 * - A symbol with fewer than risk.MinHistoryPoints history points is skipped,
 *   counted in JobResult.Skipped. That is a normal outcome, not an error.
 */

package services

import (
	"context"
	"errors"
	"time"

	"github.com/riskwatch-project/backend/internal/commodities"
	"github.com/riskwatch-project/backend/internal/logger"
	"github.com/riskwatch-project/backend/internal/models"
	"github.com/riskwatch-project/backend/internal/risk"
	"gorm.io/gorm"
)

// DefaultHighRiskThreshold marks the score at which a commodity counts as high risk
const DefaultHighRiskThreshold = 75

type RiskService struct {
	DB          *gorm.DB
	HistoryDays int
}

func NewRiskService(db *gorm.DB, historyDays int) *RiskService {
	if historyDays <= 0 {
		historyDays = 30
	}
	return &RiskService{DB: db, HistoryDays: historyDays}
}

// RecalculateRiskScores scores every tracked symbol from stored data and appends
// one risk_scores row per scored symbol.
func (s *RiskService) RecalculateRiskScores(ctx context.Context) (*JobResult, error) {
	unlock, err := acquireJobLock(ctx, s.DB, riskRecalcLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	logger.Info("[RecalculateRiskScores] Starting calculation")
	result := newJobResult("recalculate_risk")

	since := time.Now().AddDate(0, 0, -s.HistoryDays).UnixMilli()

	for _, symbol := range commodities.AllSymbols() {
		latest, err := s.latestPrice(ctx, symbol)
		if err != nil {
			result.fail(symbol, err)
			continue
		}
		if latest == nil {
			logger.Info("[RecalculateRiskScores] No price data for %s", symbol)
			result.Skipped++
			continue
		}

		var points []models.HistoryPoint
		err = s.DB.WithContext(ctx).
			Where("symbol = ? AND timestamp >= ?", symbol, since).
			Order("timestamp ASC").
			Find(&points).Error
		if err != nil {
			result.fail(symbol, err)
			continue
		}

		prices := make([]float64, len(points))
		for i, p := range points {
			prices[i] = p.Price
		}

		assessment, err := risk.Compute(latest.Price, prices)
		if errors.Is(err, risk.ErrInsufficientHistory) {
			logger.Info("[RecalculateRiskScores] Insufficient history for %s (%d points)", symbol, len(prices))
			result.Skipped++
			continue
		}
		if err != nil {
			result.fail(symbol, err)
			continue
		}

		score := models.RiskScore{
			Symbol:          symbol,
			Category:        latest.Category,
			RiskScore:       assessment.RiskScore,
			PricePercentile: assessment.PricePercentile,
			VolatilityScore: assessment.VolatilityScore,
			TrendDirection:  assessment.TrendDirection,
			CalculatedAt:    time.Now().UnixMilli(),
		}
		if err := s.DB.WithContext(ctx).Create(&score).Error; err != nil {
			result.fail(symbol, err)
			continue
		}

		result.Succeeded++
		logger.Info("[RecalculateRiskScores] ✓ %s: %d/100 (%s)", symbol, score.RiskScore, score.TrendDirection)
	}

	logger.Info("[RecalculateRiskScores] Complete. Calculated %d scores", result.Succeeded)
	return result.finish(), nil
}

// latestPrice returns the newest commodity_prices row for a symbol, or nil if none exists
func (s *RiskService) latestPrice(ctx context.Context, symbol string) (*models.CommodityPrice, error) {
	var price models.CommodityPrice
	err := s.DB.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC").
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// LatestRiskScores returns the latest risk score per symbol, sorted by score descending
func (s *RiskService) LatestRiskScores(ctx context.Context) ([]models.RiskScore, error) {
	var scores []models.RiskScore
	err := s.DB.WithContext(ctx).
		Raw(`SELECT * FROM (
			SELECT DISTINCT ON (symbol) * FROM risk_scores ORDER BY symbol, calculated_at DESC
		) latest ORDER BY risk_score DESC`).
		Scan(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// HighRiskScores returns the latest risk score per symbol where the score meets the threshold
func (s *RiskService) HighRiskScores(ctx context.Context, threshold int) ([]models.RiskScore, error) {
	var scores []models.RiskScore
	err := s.DB.WithContext(ctx).
		Raw(`SELECT * FROM (
			SELECT DISTINCT ON (symbol) * FROM risk_scores ORDER BY symbol, calculated_at DESC
		) latest WHERE risk_score >= ? ORDER BY risk_score DESC`, threshold).
		Scan(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
