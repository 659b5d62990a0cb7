package main

import (
	"context"
	"log"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/riskwatch-project/backend/internal/config"
	"github.com/riskwatch-project/backend/internal/db"
	"github.com/riskwatch-project/backend/internal/integrations/commoditiesapi"
	"github.com/riskwatch-project/backend/internal/integrations/fredapi"
	"github.com/riskwatch-project/backend/internal/models"
	"github.com/riskwatch-project/backend/internal/services"
)

func main() {
	log.Println("🚀 Starting manual data sync...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := db.Migrate(pgDB); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("failed to start in-memory redis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	priceService := services.NewPriceService(pgDB, redisClient, commoditiesapi.NewClient(cfg), cfg.Jobs.HistoryDays)
	riskService := services.NewRiskService(pgDB, cfg.Jobs.HistoryDays)
	fredService := services.NewFredService(pgDB, fredapi.NewClient(cfg))

	ctx := context.Background()

	if result, err := priceService.BackfillHistory(ctx); err != nil {
		log.Fatalf("history backfill failed: %v", err)
	} else {
		log.Printf("✅ History backfill: %d points stored", result.DataPoints)
	}

	if result, err := priceService.RefreshLatestPrices(ctx); err != nil {
		log.Fatalf("price refresh failed: %v", err)
	} else {
		log.Printf("✅ Price refresh: %d symbols ok, %d failed", result.Succeeded, result.Failed())
	}

	if result, err := fredService.RefreshSeries(ctx); err != nil {
		log.Printf("⚠️ FRED refresh failed: %v", err)
	} else {
		log.Printf("✅ FRED refresh: %d series ok", result.Succeeded)
	}

	if result, err := riskService.RecalculateRiskScores(ctx); err != nil {
		log.Fatalf("risk recalculation failed: %v", err)
	} else {
		log.Printf("✅ Risk scores: %d scored, %d skipped", result.Succeeded, result.Skipped)
	}

	var scoreCount int64
	if err := pgDB.Model(&models.RiskScore{}).Count(&scoreCount).Error; err == nil {
		log.Printf("✅ Risk score rows in Postgres: %d", scoreCount)
	} else {
		log.Printf("⚠️ Failed to count risk scores: %v", err)
	}

	log.Println("✅ Manual data sync completed successfully.")
}
