/**
 * @description
 * API Route definitions.
 * Sets up the router groups, wires services to handlers, and assigns routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/api/middleware
 * - backend/internal/services
 * - backend/internal/integrations
 */

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/riskwatch-project/backend/internal/api/handlers"
	"github.com/riskwatch-project/backend/internal/api/middleware"
	"github.com/riskwatch-project/backend/internal/config"
	"github.com/riskwatch-project/backend/internal/integrations/commoditiesapi"
	"github.com/riskwatch-project/backend/internal/integrations/fredapi"
	"github.com/riskwatch-project/backend/internal/integrations/openai"
	"github.com/riskwatch-project/backend/internal/services"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize Clients
	commoditiesClient := commoditiesapi.NewClient(cfg)
	fredClient := fredapi.NewClient(cfg)
	openaiClient := openai.NewClient(cfg)

	// 2. Initialize Services
	priceService := services.NewPriceService(db, rdb, commoditiesClient, cfg.Jobs.HistoryDays)
	riskService := services.NewRiskService(db, cfg.Jobs.HistoryDays)
	fredService := services.NewFredService(db, fredClient)
	summaryService := services.NewSummaryService(db, riskService, openaiClient)

	// 3. Initialize Handlers
	commodityHandler := handlers.NewCommodityHandler(priceService)
	riskHandler := handlers.NewRiskHandler(riskService)
	summaryHandler := handlers.NewSummaryHandler(summaryService, fredService)
	jobsHandler := handlers.NewJobsHandler(priceService, riskService, fredService, summaryService)

	// 4. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Public Routes
	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Commodity Routes (Public)
	commoditiesGroup := v1.Group("/commodities")
	commoditiesGroup.Get("/prices", commodityHandler.GetLatestPrices)
	commoditiesGroup.Get("/stream", commodityHandler.StreamPriceUpdates)
	commoditiesGroup.Get("/:symbol/history", commodityHandler.GetHistory)

	// Risk Routes (Public)
	riskGroup := v1.Group("/risk")
	riskGroup.Get("/scores", riskHandler.GetRiskScores)
	riskGroup.Get("/high", riskHandler.GetHighRisk)

	// Summary & Economic Data Routes (Public)
	v1.Get("/summary/latest", summaryHandler.GetLatestSummary)
	v1.Get("/fred/latest", summaryHandler.GetFredLatest)

	// Job Triggers (Protected by shared secret)
	jobs := v1.Group("/jobs", middleware.RequireJobSecret(cfg))
	jobs.Post("/:name", jobsHandler.TriggerJob)
}
