/**
 * @description
 * Service layer for commodity price ingestion and reads.
 * Orchestrates fetching spot prices and trailing history from commodities-api.com,
 * persisting to Postgres, caching the latest snapshot in Redis, and publishing
 * live updates for the SSE stream.
 *
 * @dependencies
 * - backend/internal/integrations/commoditiesapi
 * - backend/internal/commodities
 * - backend/internal/models
 * - gorm.io/gorm
 * - github.com/redis/go-redis/v9
 * - golang.org/x/time/rate: inter-call spacing toward the upstream API
 *
 * @notes
 * - Symbols are processed one at a time. A failing symbol is recorded in the
 *   JobResult and never aborts its siblings. Nothing is retried.
 * - The rate limiters enforce a minimum spacing between upstream calls
 *   (politeness policy, not concurrency control).
 */

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/riskwatch-project/backend/internal/commodities"
	"github.com/riskwatch-project/backend/internal/integrations/commoditiesapi"
	"github.com/riskwatch-project/backend/internal/logger"
	"github.com/riskwatch-project/backend/internal/models"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CacheKeyLatestPrices = "commodities:latest"
	CacheTTL             = 5 * time.Minute

	PriceUpdateChannel = "commodities:price_updates"

	// Minimum spacing between upstream calls, per endpoint
	latestCallSpacing     = 200 * time.Millisecond
	timeseriesCallSpacing = 500 * time.Millisecond

	apiNameCommodities = "commodities-api"
)

type PriceService struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Client      *commoditiesapi.Client
	HistoryDays int

	latestLimiter *rate.Limiter
	seriesLimiter *rate.Limiter
}

func NewPriceService(db *gorm.DB, rdb *redis.Client, client *commoditiesapi.Client, historyDays int) *PriceService {
	if historyDays <= 0 {
		historyDays = 30
	}
	return &PriceService{
		DB:            db,
		Redis:         rdb,
		Client:        client,
		HistoryDays:   historyDays,
		latestLimiter: rate.NewLimiter(rate.Every(latestCallSpacing), 1),
		seriesLimiter: rate.NewLimiter(rate.Every(timeseriesCallSpacing), 1),
	}
}

// RefreshLatestPrices fetches the current spot price for every tracked symbol
// and appends one commodity_prices row per success.
func (s *PriceService) RefreshLatestPrices(ctx context.Context) (*JobResult, error) {
	if s.Client.APIKey == "" {
		return nil, commoditiesapi.ErrMissingAPIKey
	}

	unlock, err := acquireJobLock(ctx, s.DB, priceRefreshLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	symbols := commodities.AllSymbols()
	logger.Info("[RefreshLatestPrices] Starting fetch for %d commodities", len(symbols))

	result := newJobResult("refresh_prices")
	var stored []models.CommodityPrice

	for _, symbol := range symbols {
		if err := s.latestLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		quote, err := s.Client.Latest(ctx, symbol)
		if err != nil {
			logger.Error("[RefreshLatestPrices] ✗ %s: %v", symbol, err)
			s.logAPICall(ctx, "latest", symbol, err)
			result.fail(symbol, err)
			continue
		}

		info, ok := commodities.Lookup(symbol)
		if !ok {
			result.fail(symbol, fmt.Errorf("symbol %s missing from catalog", symbol))
			continue
		}

		price := models.CommodityPrice{
			Symbol:    symbol,
			Name:      info.Name,
			Category:  info.Category,
			Price:     quote.Price,
			Unit:      info.Unit,
			Timestamp: quote.Timestamp,
			FetchedAt: time.Now().UnixMilli(),
		}

		if err := s.DB.WithContext(ctx).Create(&price).Error; err != nil {
			logger.Error("[RefreshLatestPrices] ✗ %s: store failed: %v", symbol, err)
			result.fail(symbol, err)
			continue
		}

		s.logAPICall(ctx, "latest", symbol, nil)
		s.publishPriceUpdate(ctx, price)
		stored = append(stored, price)
		result.Succeeded++
		logger.Info("[RefreshLatestPrices] ✓ %s: $%.2f", symbol, quote.Price)
	}

	// Refresh the latest-prices cache by folding this run's writes into the
	// cached snapshot, so a partially failed run never shrinks the set of
	// symbols served from cache.
	if len(stored) > 0 {
		s.cacheLatestPrices(ctx, s.mergeLatestPrices(ctx, stored))
	}

	logger.Info("[RefreshLatestPrices] Complete. Success: %d, Errors: %d", result.Succeeded, result.Failed())
	return result.finish(), nil
}

// BackfillHistory fetches the trailing window of daily prices for every symbol
// and upserts them into commodity_history, deduplicated on (symbol, timestamp).
func (s *PriceService) BackfillHistory(ctx context.Context) (*JobResult, error) {
	if s.Client.APIKey == "" {
		return nil, commoditiesapi.ErrMissingAPIKey
	}

	unlock, err := acquireJobLock(ctx, s.DB, historyBackfillLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -s.HistoryDays)
	logger.Info("[BackfillHistory] Fetching %s to %s (%d days)",
		start.Format("2006-01-02"), end.Format("2006-01-02"), s.HistoryDays)

	result := newJobResult("backfill_history")

	for _, symbol := range commodities.AllSymbols() {
		if err := s.seriesLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		quotes, err := s.Client.Timeseries(ctx, symbol, start, end)
		if err != nil {
			logger.Error("[BackfillHistory] ✗ %s: %v", symbol, err)
			s.logAPICall(ctx, "timeseries", symbol, err)
			result.fail(symbol, err)
			continue
		}

		points := make([]models.HistoryPoint, 0, len(quotes))
		for _, q := range quotes {
			points = append(points, models.HistoryPoint{
				Symbol:    q.Symbol,
				Price:     q.Price,
				Timestamp: q.Timestamp,
			})
		}

		if err := s.upsertHistory(ctx, points); err != nil {
			logger.Error("[BackfillHistory] ✗ %s: store failed: %v", symbol, err)
			result.fail(symbol, err)
			continue
		}

		s.logAPICall(ctx, "timeseries", symbol, nil)
		result.Succeeded++
		result.DataPoints += len(points)
		logger.Info("[BackfillHistory] ✓ %s: %d days", symbol, len(points))
	}

	logger.Info("[BackfillHistory] Complete. Stored %d data points", result.DataPoints)
	return result.finish(), nil
}

// upsertHistory inserts history points, ignoring duplicates on (symbol, timestamp).
// Retries on deadlock/serialization failures the way concurrent appenders require.
func (s *PriceService) upsertHistory(ctx context.Context, points []models.HistoryPoint) error {
	if len(points) == 0 {
		return nil
	}

	const maxRetries = 5
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "timestamp"}},
			DoNothing: true,
		}).CreateInBatches(points, 100).Error
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return err
	}
	return err
}

// LatestPrices returns the latest price per symbol, preferring Cache -> DB
func (s *PriceService) LatestPrices(ctx context.Context) ([]models.CommodityPrice, error) {
	// 1. Try Redis
	val, err := s.Redis.Get(ctx, CacheKeyLatestPrices).Result()
	if err == nil {
		var prices []models.CommodityPrice
		if err := json.Unmarshal([]byte(val), &prices); err == nil {
			return prices, nil
		}
		// If unmarshal fails, fall through to DB
	}

	// 2. Fallback to DB: newest row per symbol via the (symbol, timestamp) index
	var prices []models.CommodityPrice
	err = s.DB.WithContext(ctx).
		Raw("SELECT DISTINCT ON (symbol) * FROM commodity_prices ORDER BY symbol, timestamp DESC").
		Scan(&prices).Error
	if err != nil {
		return nil, err
	}

	s.cacheLatestPrices(ctx, prices)
	return prices, nil
}

// History returns a symbol's ascending price history for the trailing window
func (s *PriceService) History(ctx context.Context, symbol string, days int) ([]models.HistoryPoint, error) {
	if days <= 0 {
		days = s.HistoryDays
	}
	since := time.Now().AddDate(0, 0, -days).UnixMilli()

	var points []models.HistoryPoint
	err := s.DB.WithContext(ctx).
		Where("symbol = ? AND timestamp >= ?", symbol, since).
		Order("timestamp ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

// mergeLatestPrices folds this run's writes into the currently cached snapshot.
// Symbols the run failed to refresh keep their cached entry; refreshed symbols
// keep whichever row is newer.
func (s *PriceService) mergeLatestPrices(ctx context.Context, stored []models.CommodityPrice) []models.CommodityPrice {
	merged := stored
	if val, err := s.Redis.Get(ctx, CacheKeyLatestPrices).Result(); err == nil {
		var cached []models.CommodityPrice
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			merged = append(cached, stored...)
		}
	}
	return latestPriceBySymbol(merged)
}

func (s *PriceService) cacheLatestPrices(ctx context.Context, prices []models.CommodityPrice) {
	data, err := json.Marshal(prices)
	if err != nil {
		logger.Error("Failed to marshal latest prices for cache: %v", err)
		return
	}
	if err := s.Redis.Set(ctx, CacheKeyLatestPrices, data, CacheTTL).Err(); err != nil {
		logger.Error("Failed to set latest prices cache: %v", err)
	}
}

func (s *PriceService) publishPriceUpdate(ctx context.Context, price models.CommodityPrice) {
	payload, err := json.Marshal(price)
	if err != nil {
		return
	}
	if err := s.Redis.Publish(ctx, PriceUpdateChannel, payload).Err(); err != nil {
		logger.Error("Failed to publish price update for %s: %v", price.Symbol, err)
	}
}

// logAPICall records one upstream call outcome in api_logs
func (s *PriceService) logAPICall(ctx context.Context, endpoint, symbol string, callErr error) {
	entry := models.APICallLog{
		APIName:   apiNameCommodities,
		Endpoint:  fmt.Sprintf("%s?symbols=%s", endpoint, symbol),
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

// latestPriceBySymbol folds an append-only price list down to the newest row per
// symbol (keep-max on Timestamp).
func latestPriceBySymbol(prices []models.CommodityPrice) []models.CommodityPrice {
	latest := make(map[string]models.CommodityPrice)
	order := make([]string, 0, len(prices))

	for _, p := range prices {
		existing, seen := latest[p.Symbol]
		if !seen {
			order = append(order, p.Symbol)
			latest[p.Symbol] = p
			continue
		}
		if p.Timestamp > existing.Timestamp {
			latest[p.Symbol] = p
		}
	}

	out := make([]models.CommodityPrice, 0, len(order))
	for _, symbol := range order {
		out = append(out, latest[symbol])
	}
	return out
}
