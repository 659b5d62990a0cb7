/**
 * @description
 * Summary and FRED API Handlers.
 * Exposes the latest AI summary and the latest macroeconomic observations.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/riskwatch-project/backend/internal/models"
	"github.com/riskwatch-project/backend/internal/services"
)

type SummaryHandler struct {
	Summaries *services.SummaryService
	Fred      *services.FredService
}

func NewSummaryHandler(summaries *services.SummaryService, fred *services.FredService) *SummaryHandler {
	return &SummaryHandler{Summaries: summaries, Fred: fred}
}

// GetLatestSummary returns the most recent daily AI summary
// GET /api/v1/summary/latest
func (h *SummaryHandler) GetLatestSummary(c *fiber.Ctx) error {
	summary, err := h.Summaries.LatestSummary(c.Context(), models.SummaryTypeDaily)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch summary",
		})
	}
	if summary == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No summary generated yet",
		})
	}
	return c.JSON(summary)
}

// GetFredLatest returns the newest observation per tracked FRED series
// GET /api/v1/fred/latest
func (h *SummaryHandler) GetFredLatest(c *fiber.Ctx) error {
	observations, err := h.Fred.LatestObservations(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch economic data",
		})
	}
	return c.JSON(observations)
}
