package main

import (
	"fmt"
	"os"
	"time"

	"table-planner/internal/common/config"
	"table-planner/internal/common/logger"
	"table-planner/internal/common/middleware"
	"table-planner/internal/gateway/handlers"
	"table-planner/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "gateway")
	defer log.Sync()

	plannerURL := getEnv("PLANNER_URL", "http://localhost:3001")
	paymentsURL := getEnv("PAYMENTS_URL", "http://localhost:3002")
	upstreamTimeout := time.Duration(cfg.WriteTimeout) * time.Second

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Table Planner Gateway",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check & Docs Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(map[string]string{
		"planner":  plannerURL,
		"payments": paymentsURL,
	}, 2*time.Second))

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec(getEnv("OPENAPI_PATH", "docs/planner.openapi.yaml")))

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	p := proxy.New(upstreamTimeout, log)

	api := app.Group(apiPrefix)
	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Table Planner API v1",
			"status":  "ok",
		})
	})
	api.All("/payments/*", p.Mount(apiPrefix, paymentsURL))
	api.All("/*", p.Mount(apiPrefix, plannerURL))

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting gateway",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("planner_url", plannerURL),
		zap.String("payments_url", paymentsURL),
	)

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
