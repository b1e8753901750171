package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe проверяет, что gateway работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe опрашивает /health/live каждого сервиса.
// 503, если хотя бы один недоступен.
func ReadinessProbe(upstreams map[string]string, timeout time.Duration) fiber.Handler {
	client := &http.Client{Timeout: timeout}

	names := make([]string, 0, len(upstreams))
	for name := range upstreams {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c fiber.Ctx) error {
		services := fiber.Map{}
		ready := true
		for _, name := range names {
			status := "up"
			if !alive(c.Context(), client, upstreams[name]+"/health/live") {
				status = "down"
				ready = false
			}
			services[name] = status
		}

		if !ready {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"services": services,
			})
		}
		return c.JSON(fiber.Map{
			"status":   "ready",
			"services": services,
		})
	}
}

func alive(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
