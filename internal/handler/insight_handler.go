package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/iamsuganthi/log-sniffer/internal/service"
)

// generationTimeout bounds a single request to the text generator.
const generationTimeout = 2 * time.Minute

// InsightHandler handles the AI summary, insight and chat endpoints.
type InsightHandler struct {
	insights *service.InsightService
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(insights *service.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

// Register sets up insight routes.
func (h *InsightHandler) Register(router fiber.Router) {
	router.Get("/executive-summary", h.ExecutiveSummary)
	router.Get("/insights", h.Insights)
	router.Post("/chat", h.Chat)
}

// ExecutiveSummary reports on the last 24 hours of remote activity.
func (h *InsightHandler) ExecutiveSummary(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), generationTimeout)
	defer cancel()

	summary, err := h.insights.ExecutiveSummary(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"summary": summary})
}

// Insights analyzes the cached logs.
func (h *InsightHandler) Insights(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), generationTimeout)
	defer cancel()

	insights, err := h.insights.Insights(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"insights": insights})
}

// Chat answers one message within a session.
func (h *InsightHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), generationTimeout)
	defer cancel()

	result, err := h.insights.Chat(ctx, body.Message, body.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
