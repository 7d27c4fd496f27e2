package handler

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/service"
)

// StreamHandler serves the newest cached records for live-view polling.
type StreamHandler struct {
	audit *service.AuditService
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(audit *service.AuditService) *StreamHandler {
	return &StreamHandler{audit: audit}
}

// Register sets up streaming routes.
func (h *StreamHandler) Register(router fiber.Router) {
	router.Get("/stream/logs", h.StreamLogs)
}

// StreamLogs returns the latest cached audit logs, optionally only those
// created at or after ?since=.
func (h *StreamHandler) StreamLogs(c fiber.Ctx) error {
	c.Set("Content-Type", "application/json")
	c.Set("Cache-Control", "no-cache")

	page, err := h.audit.QueryCache(c.Context(), domain.FilterParams{
		From: c.Query("since"),
		Size: domain.DefaultPageSize,
	})
	if err != nil {
		return respondError(c, err)
	}

	type logEntry struct {
		Timestamp string `json:"timestamp"`
		ID        string `json:"id"`
		Event     string `json:"event"`
		OrgID     string `json:"orgId,omitempty"`
		GroupID   string `json:"groupId,omitempty"`
	}

	entries := make([]logEntry, len(page.Items))
	for i, r := range page.Items {
		entries[i] = logEntry{
			Timestamp: r.Created.UTC().Format(time.RFC3339),
			ID:        r.ID,
			Event:     r.Event,
			OrgID:     domain.Deref(r.OrgID),
			GroupID:   domain.Deref(r.GroupID),
		}
	}

	result, _ := json.Marshal(fiber.Map{
		"logs":  entries,
		"count": len(entries),
		"total": page.Total,
	})

	return c.Send(result)
}
