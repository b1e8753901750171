package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Payment Config Handler
// ============================================================

const (
	allowHeaders     = "authorization, x-client-info, apikey, content-type"
	msgConfigMissing = "Publishable key and price ID are required"
)

type ConfigHandler struct {
	log *zap.Logger
}

func NewConfigHandler(log *zap.Logger) *ConfigHandler {
	return &ConfigHandler{log: log}
}

type configRequest struct {
	PublishableKey string `json:"publishableKey"`
	PriceID        string `json:"priceId"`
}

func (h *ConfigHandler) Register(r fiber.Router) {
	r.Options("/payments/config", h.Preflight)
	r.Post("/payments/config", h.Save)
}

func setCORS(c fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
}

// Preflight отвечает "ok" на OPTIONS.
func (h *ConfigHandler) Preflight(c fiber.Ctx) error {
	setCORS(c)
	return c.SendString("ok")
}

// Save принимает ключи Stripe. Ключи не сохраняются, платежи не проводятся.
func (h *ConfigHandler) Save(c fiber.Ctx) error {
	setCORS(c)

	var req configRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if strings.TrimSpace(req.PublishableKey) == "" || strings.TrimSpace(req.PriceID) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msgConfigMissing})
	}

	h.log.Info("payment config received", zap.String("price_id", req.PriceID))
	return c.JSON(fiber.Map{"success": true})
}
