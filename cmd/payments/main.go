package main

import (
	"fmt"
	"os"
	"time"

	"table-planner/internal/common/config"
	"table-planner/internal/common/logger"
	"table-planner/internal/common/middleware"
	"table-planner/internal/payments/handlers"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// ============================================================
// Payments Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3002"
	}

	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "payments")
	defer log.Sync()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Payments Service",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	handlers.NewConfigHandler(log).Register(app)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting payments service", zap.String("addr", addr), zap.String("env", cfg.Environment))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
