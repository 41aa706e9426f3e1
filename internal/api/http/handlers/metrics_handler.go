package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/observability"
)

// MetricsHandler exposes the in-memory counters.
type MetricsHandler struct {
	metrics *observability.Metrics
	tracked func() int
}

// NewMetricsHandler constructs handler. tracked reports the number of tickets
// known to this process and may be nil.
func NewMetricsHandler(metrics *observability.Metrics, tracked func() int) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, tracked: tracked}
}

// Get handles GET /metrics.
func (h *MetricsHandler) Get(c *fiber.Ctx) error {
	body := fiber.Map{"metrics": h.metrics.Snapshot()}
	if h.tracked != nil {
		body["tickets_tracked"] = h.tracked()
	}
	return c.JSON(body)
}
