package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"table-planner/internal/booking"
	bookinghandlers "table-planner/internal/booking/handlers"
	"table-planner/internal/common/config"
	"table-planner/internal/common/logger"
	"table-planner/internal/common/middleware"
	"table-planner/internal/planner/feed"
	"table-planner/internal/planner/handlers"
	"table-planner/internal/planner/persistence"
	"table-planner/internal/planner/render"
	"table-planner/internal/planner/repository"
	"table-planner/internal/planner/session"
	"table-planner/internal/reviews"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sessionSweepSpec = "@every 10m"
	sessionMaxIdle   = 2 * time.Hour
)

// ============================================================
// Planner Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	log := logger.Must(cfg.LogLevel, cfg.LogFormat, "planner")
	defer log.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("invalid timezone", zap.String("tz", cfg.Timezone), zap.Error(err))
	}

	db, err := repository.Open(cfg.DB)
	if err != nil {
		log.Fatal("open db", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal("migrate db", zap.Error(err))
	}

	layouts := repository.NewLayoutRepository(db)
	reservations := repository.NewReservationRepository(db)

	sessions := session.NewManager()
	saver := persistence.NewSaver(layouts, log, persistence.WithAtomic(cfg.SaveAtomic))
	reservationFeed := feed.New(reservations, log, feed.WithLocation(loc))
	bookingService := booking.NewService(reservations, log, booking.WithLocation(loc))

	// ============================================================
	// Background jobs
	// ============================================================

	jobs := cron.New(cron.WithLocation(loc))
	if _, err := jobs.AddFunc(sessionSweepSpec, func() {
		if n := sessions.Sweep(sessionMaxIdle); n > 0 {
			log.Info("idle editor sessions closed", zap.Int("count", n))
		}
	}); err != nil {
		log.Fatal("schedule session sweep", zap.Error(err))
	}
	jobs.Start()
	defer jobs.Stop()

	if cfg.Reviews.Enabled {
		var sender reviews.Sender = reviews.NewLogSender(log)
		if cfg.Reviews.SendgridAPIKey != "" {
			sender = reviews.NewSendGridSender(
				cfg.Reviews.SendgridAPIKey,
				cfg.Reviews.FromName,
				cfg.Reviews.FromEmail,
				cfg.Reviews.SandboxMode,
			)
		}
		scheduler := reviews.NewScheduler(reservations, sender, cfg.Reviews.BaseURL, log,
			reviews.WithSchedule(cfg.Reviews.Schedule),
			reviews.WithLocation(loc),
		)
		if err := scheduler.Start(); err != nil {
			log.Fatal("start review scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Table Planner",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(db))

	// ============================================================
	// Planner Routes
	// ============================================================

	handlers.Register(app,
		handlers.NewEditorHandler(sessions, saver, layouts, log),
		handlers.NewLayoutHandler(layouts, render.NewRenderer(), log),
		handlers.NewFeedHandler(reservationFeed, layouts, log),
	)

	// ============================================================
	// Booking & Admin Routes
	// ============================================================

	public := app.Group("/", middleware.CORS(cfg.CORSOrigins))
	bookinghandlers.NewBookingHandler(bookingService, loc, log).Register(public, app.Group("/admin"))

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting planner service",
		zap.String("addr", addr),
		zap.String("env", cfg.Environment),
		zap.String("db_driver", cfg.DB.Driver),
		zap.Bool("save_atomic", cfg.SaveAtomic),
	)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down planner service")
	if err := app.Shutdown(); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
