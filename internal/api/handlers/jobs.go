/**
 * @description
 * Job trigger API Handlers.
 * Lets operators invoke any scheduled job on demand with the same semantics as
 * under the schedule (each run is an independent append). Protected by the job
 * secret middleware.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/riskwatch-project/backend/internal/services"
)

type JobsHandler struct {
	Prices    *services.PriceService
	Risk      *services.RiskService
	Fred      *services.FredService
	Summaries *services.SummaryService
}

func NewJobsHandler(prices *services.PriceService, risk *services.RiskService, fred *services.FredService, summaries *services.SummaryService) *JobsHandler {
	return &JobsHandler{Prices: prices, Risk: risk, Fred: fred, Summaries: summaries}
}

// TriggerJob runs one job synchronously and returns its result
// POST /api/v1/jobs/:name  (name: prices | history | risk | fred | summary)
func (h *JobsHandler) TriggerJob(c *fiber.Ctx) error {
	ctx := c.Context()

	var (
		result any
		err    error
	)

	switch name := c.Params("name"); name {
	case "prices":
		result, err = h.Prices.RefreshLatestPrices(ctx)
	case "history":
		result, err = h.Prices.BackfillHistory(ctx)
	case "risk":
		result, err = h.Risk.RecalculateRiskScores(ctx)
	case "fred":
		result, err = h.Fred.RefreshSeries(ctx)
	case "summary":
		result, err = h.Summaries.GenerateDailySummary(ctx)
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown job: " + name,
		})
	}

	if errors.Is(err, services.ErrJobRunning) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Job is already running",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}
