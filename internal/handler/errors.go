package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/iamsuganthi/log-sniffer/internal/domain"
	"github.com/iamsuganthi/log-sniffer/internal/port"
)

// respondError maps the domain error taxonomy onto HTTP responses.
func respondError(c fiber.Ctx, err error) error {
	var (
		vErr *domain.ValidationError
		cErr *domain.ConfigurationError
		rErr *domain.RemoteSourceError
	)

	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Error(), "field": vErr.Field})
	case errors.As(err, &cErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": cErr.Message})
	case errors.As(err, &rErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": rErr.Message, "status": rErr.Status})
	case errors.Is(err, port.ErrConfigNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No configuration found"})
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
