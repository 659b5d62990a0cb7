/**
 * @description
 * Worker Service Entry Point.
 * Responsible for background tasks:
 * 1. Startup backfill of commodity price history and FRED economic series.
 * 2. Hourly refresh of latest commodity prices.
 * 3. Hourly recalculation of risk scores.
 * 4. Daily AI market summary generation at a fixed UTC hour.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/integrations/commoditiesapi
 * - backend/internal/integrations/fredapi
 * - backend/internal/integrations/openai
 * - backend/internal/services
 */

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskwatch-project/backend/internal/config"
	"github.com/riskwatch-project/backend/internal/db"
	"github.com/riskwatch-project/backend/internal/integrations/commoditiesapi"
	"github.com/riskwatch-project/backend/internal/integrations/fredapi"
	"github.com/riskwatch-project/backend/internal/integrations/openai"
	"github.com/riskwatch-project/backend/internal/logger"
	"github.com/riskwatch-project/backend/internal/services"
)

func main() {
	logger.Info("🔥 Starting RiskWatch Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}

	if err := db.Migrate(pgDB); err != nil {
		logger.Fatal("Migrations failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Redis connection failed: %v", err)
	}

	// 3. Initialize Services
	commoditiesClient := commoditiesapi.NewClient(cfg)
	fredClient := fredapi.NewClient(cfg)
	openaiClient := openai.NewClient(cfg)

	priceService := services.NewPriceService(pgDB, redisClient, commoditiesClient, cfg.Jobs.HistoryDays)
	riskService := services.NewRiskService(pgDB, cfg.Jobs.HistoryDays)
	fredService := services.NewFredService(pgDB, fredClient)
	summaryService := services.NewSummaryService(pgDB, riskService, openaiClient)

	// 4. Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Startup Backfill
	// Seed the trailing history window and economic series so risk scoring has
	// data to work with before the first hourly tick.
	go func() {
		if result, err := priceService.BackfillHistory(ctx); err != nil {
			logJobError("History backfill", err)
		} else {
			logger.Info("✅ History backfill done: %d points, %d symbols ok, %d failed", result.DataPoints, result.Succeeded, result.Failed())
		}

		if result, err := fredService.RefreshSeries(ctx); err != nil {
			logJobError("FRED refresh", err)
		} else {
			logger.Info("✅ FRED refresh done: %d series ok, %d failed", result.Succeeded, result.Failed())
		}

		runPriceRefresh(ctx, priceService)
		runRiskRecalc(ctx, riskService)
	}()

	// 6. Hourly Price Loop
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Jobs.PriceIntervalM) * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runPriceRefresh(ctx, priceService)
			}
		}
	}()

	// 7. Hourly Risk Loop
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Jobs.RiskIntervalM) * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runRiskRecalc(ctx, riskService)
			}
		}
	}()

	// 8. Daily Summary Loop
	go func() {
		for {
			wait := untilNextHourUTC(time.Now().UTC(), cfg.Jobs.SummaryHourUTC)
			logger.Info("Next daily summary in %s", wait.Round(time.Second))

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
				runDailySummary(ctx, summaryService)
			}
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	time.Sleep(1 * time.Second) // Give in-flight jobs time to notice cancellation
	logger.Info("Worker exited.")
}

func runPriceRefresh(ctx context.Context, ps *services.PriceService) {
	logger.Info("🔄 Refreshing commodity prices...")

	if result, err := ps.RefreshLatestPrices(ctx); err != nil {
		logJobError("Price refresh", err)
	} else {
		logger.Info("✅ Price refresh done: %d symbols ok, %d failed", result.Succeeded, result.Failed())
	}
}

func runRiskRecalc(ctx context.Context, rs *services.RiskService) {
	logger.Info("🔄 Recalculating risk scores...")

	if result, err := rs.RecalculateRiskScores(ctx); err != nil {
		logJobError("Risk recalculation", err)
	} else {
		logger.Info("✅ Risk recalculation done: %d scored, %d skipped, %d failed", result.Succeeded, result.Skipped, result.Failed())
	}
}

func runDailySummary(ctx context.Context, ss *services.SummaryService) {
	logger.Info("🔄 Generating daily AI summary...")

	summary, err := ss.GenerateDailySummary(ctx)
	if err != nil {
		logJobError("Daily summary", err)
		return
	}

	logger.Info("✅ Daily summary generated (risk level: %s)", summary.RiskLevel)
}

func logJobError(job string, err error) {
	if errors.Is(err, services.ErrJobRunning) {
		logger.Info("%s skipped: another run holds the lock", job)
		return
	}
	logger.Error("❌ %s failed: %v", job, err)
}

// untilNextHourUTC returns the duration from now until the next occurrence of
// hour:00 UTC, rolling to tomorrow if that time has already passed today.
func untilNextHourUTC(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
