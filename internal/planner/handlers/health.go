package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health
// ============================================================

type Pinger interface {
	PingContext(ctx context.Context) error
}

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe проверяет доступность базы.
func ReadinessProbe(db Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}
