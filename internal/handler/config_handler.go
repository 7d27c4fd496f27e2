package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/service"
)

// ConfigHandler handles the Snyk API configuration endpoints.
type ConfigHandler struct {
	settings *service.SettingsService
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(settings *service.SettingsService) *ConfigHandler {
	return &ConfigHandler{settings: settings}
}

// Register sets up config routes.
func (h *ConfigHandler) Register(router fiber.Router) {
	router.Get("/config", h.Get)
	router.Post("/config", h.Save)
}

// Get returns the configuration with the token masked.
func (h *ConfigHandler) Get(c fiber.Ctx) error {
	cfg, err := h.settings.Get(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

// Save tests the connection and stores the configuration.
func (h *ConfigHandler) Save(c fiber.Ctx) error {
	var body domain.ConfigurationInput
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	cfg, err := h.settings.Save(c.Context(), body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}
