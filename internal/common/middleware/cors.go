package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// publicHeaders: заголовки, которые шлёт встраиваемая форма бронирования.
var publicHeaders = []string{
	"authorization",
	"x-client-info",
	"apikey",
	"content-type",
	"x-source",
	"x-restaurant-id",
}

// CORS открывает публичные эндпоинты для указанных источников.
func CORS(origins []string) fiber.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: publicHeaders,
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
	})
}
