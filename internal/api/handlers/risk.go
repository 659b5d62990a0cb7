/**
 * @description
 * Risk API Handlers.
 * Exposes read-only endpoints for the latest risk scores per symbol.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/riskwatch-project/backend/internal/services"
)

type RiskHandler struct {
	Risk *services.RiskService
}

func NewRiskHandler(risk *services.RiskService) *RiskHandler {
	return &RiskHandler{Risk: risk}
}

// GetRiskScores returns the latest risk score per symbol, sorted by score descending
// GET /api/v1/risk/scores
func (h *RiskHandler) GetRiskScores(c *fiber.Ctx) error {
	scores, err := h.Risk.LatestRiskScores(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch risk scores",
		})
	}
	return c.JSON(scores)
}

// GetHighRisk returns latest risk scores at or above a threshold
// GET /api/v1/risk/high?threshold=75
func (h *RiskHandler) GetHighRisk(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", services.DefaultHighRiskThreshold)

	scores, err := h.Risk.HighRiskScores(c.Context(), threshold)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch high risk commodities",
		})
	}
	return c.JSON(scores)
}
