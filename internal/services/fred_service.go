/**
 * @description
 * Service layer for FRED macroeconomic data.
 * Pulls the latest observation for each tracked series and appends it to
 * fred_observations for dashboard context.
 *
 * @dependencies
 * - backend/internal/integrations/fredapi
 * - backend/internal/models
 * - gorm.io/gorm
 * - golang.org/x/time/rate
 */

package services

import (
	"context"
	"sort"
	"time"

	"github.com/riskwatch-project/backend/internal/integrations/fredapi"
	"github.com/riskwatch-project/backend/internal/logger"
	"github.com/riskwatch-project/backend/internal/models"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	fredCallSpacing = 200 * time.Millisecond

	apiNameFred = "fred"
)

type FredService struct {
	DB     *gorm.DB
	Client *fredapi.Client

	limiter *rate.Limiter
}

func NewFredService(db *gorm.DB, client *fredapi.Client) *FredService {
	return &FredService{
		DB:      db,
		Client:  client,
		limiter: rate.NewLimiter(rate.Every(fredCallSpacing), 1),
	}
}

// RefreshSeries fetches the latest observation for every tracked FRED series
func (s *FredService) RefreshSeries(ctx context.Context) (*JobResult, error) {
	if s.Client.APIKey == "" {
		return nil, fredapi.ErrMissingAPIKey
	}

	unlock, err := acquireJobLock(ctx, s.DB, fredRefreshLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Stable iteration order keeps run logs comparable across runs
	seriesIDs := make([]string, 0, len(fredapi.Series))
	for id := range fredapi.Series {
		seriesIDs = append(seriesIDs, id)
	}
	sort.Strings(seriesIDs)

	logger.Info("[RefreshFredSeries] Fetching %d series", len(seriesIDs))
	result := newJobResult("refresh_fred")

	for _, seriesID := range seriesIDs {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		obs, err := s.Client.LatestObservation(ctx, seriesID)
		if err != nil {
			logger.Error("[RefreshFredSeries] ✗ %s: %v", seriesID, err)
			s.logAPICall(ctx, seriesID, err)
			result.fail(seriesID, err)
			continue
		}

		var timestamp int64
		if day, parseErr := time.Parse("2006-01-02", obs.Date); parseErr == nil {
			timestamp = day.UTC().UnixMilli()
		}

		record := models.FredObservation{
			SeriesID:   seriesID,
			SeriesName: fredapi.Series[seriesID],
			Value:      obs.Value,
			Date:       obs.Date,
			Timestamp:  timestamp,
		}
		if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
			result.fail(seriesID, err)
			continue
		}

		s.logAPICall(ctx, seriesID, nil)
		result.Succeeded++
		logger.Info("[RefreshFredSeries] ✓ %s: %v", seriesID, obs.Value)
	}

	logger.Info("[RefreshFredSeries] Complete. Success: %d, Errors: %d", result.Succeeded, result.Failed())
	return result.finish(), nil
}

// LatestObservations returns the newest stored observation per series
func (s *FredService) LatestObservations(ctx context.Context) ([]models.FredObservation, error) {
	var observations []models.FredObservation
	err := s.DB.WithContext(ctx).
		Raw("SELECT DISTINCT ON (series_id) * FROM fred_observations ORDER BY series_id, timestamp DESC").
		Scan(&observations).Error
	if err != nil {
		return nil, err
	}
	return observations, nil
}

func (s *FredService) logAPICall(ctx context.Context, seriesID string, callErr error) {
	entry := models.APICallLog{
		APIName:   apiNameFred,
		Endpoint:  "series/observations?series_id=" + seriesID,
		CallCount: 1,
		LastCall:  time.Now().UnixMilli(),
	}
	if callErr != nil {
		entry.ErrorMessage = callErr.Error()
	} else {
		entry.StatusCode = 200
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.Error("Failed to record api log: %v", err)
	}
}
