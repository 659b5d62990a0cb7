/**
 * @description
 * Commodity API Handlers.
 * Exposes read-only endpoints for latest prices, per-symbol history, and the
 * live price SSE stream.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"bufio"
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/riskwatch-project/backend/internal/commodities"
	"github.com/riskwatch-project/backend/internal/services"
)

type CommodityHandler struct {
	Prices *services.PriceService
}

func NewCommodityHandler(prices *services.PriceService) *CommodityHandler {
	return &CommodityHandler{Prices: prices}
}

// GetLatestPrices returns the latest price for every tracked symbol
// GET /api/v1/commodities/prices
func (h *CommodityHandler) GetLatestPrices(c *fiber.Ctx) error {
	prices, err := h.Prices.LatestPrices(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch latest prices",
		})
	}
	return c.JSON(prices)
}

// GetHistory returns a symbol's ascending price history
// GET /api/v1/commodities/:symbol/history?days=30
func (h *CommodityHandler) GetHistory(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	if _, ok := commodities.Lookup(symbol); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Unknown symbol %q", symbol),
		})
	}

	days := c.QueryInt("days", 0)
	points, err := h.Prices.History(c.Context(), symbol, days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch price history",
		})
	}
	return c.JSON(points)
}

// StreamPriceUpdates streams live price updates over SSE
// GET /api/v1/commodities/stream
func (h *CommodityHandler) StreamPriceUpdates(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	requestCtx := c.Context()

	ctx, cancel := context.WithCancel(context.Background())

	pubsub := h.Prices.Redis.Subscribe(ctx, services.PriceUpdateChannel)
	ch := pubsub.Channel()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cancel()
			_ = pubsub.Close()
		}()

		requestDone := requestCtx.Done()

		for {
			select {
			case <-requestDone:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}
