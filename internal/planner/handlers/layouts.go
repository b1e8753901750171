package handlers

import (
	"context"
	"errors"
	"net/http"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/render"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Layout Handler
// ============================================================

type LayoutAdmin interface {
	ActiveLayoutLoader
	ListLayouts(ctx context.Context) ([]models.Layout, error)
	Activate(ctx context.Context, id string) error
	DeleteLayout(ctx context.Context, id string) error
}

type LayoutHandler struct {
	repo     LayoutAdmin
	renderer *render.Renderer
	log      *zap.Logger
}

func NewLayoutHandler(repo LayoutAdmin, renderer *render.Renderer, log *zap.Logger) *LayoutHandler {
	return &LayoutHandler{
		repo:     repo,
		renderer: renderer,
		log:      log,
	}
}

// List возвращает сохранённые layouts, новые первыми.
func (h *LayoutHandler) List(c fiber.Ctx) error {
	layouts, err := h.repo.ListLayouts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"layouts": layouts})
}

// Active возвращает активный layout с элементами.
func (h *LayoutHandler) Active(c fiber.Ctx) error {
	layout, err := h.repo.ActiveLayoutWithElements(c.Context())
	if err != nil {
		return mapNotFound(err, "no active layout")
	}
	return c.JSON(layout)
}

// ActiveSVG рисует активный layout.
func (h *LayoutHandler) ActiveSVG(c fiber.Ctx) error {
	layout, err := h.repo.ActiveLayoutWithElements(c.Context())
	if err != nil {
		return mapNotFound(err, "no active layout")
	}

	svg, err := h.renderer.Render(&layout)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svg)
}

func (h *LayoutHandler) Activate(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.Activate(c.Context(), id); err != nil {
		return mapNotFound(err, "layout not found")
	}
	h.log.Info("layout activated", zap.String("layout_id", id))
	return c.JSON(fiber.Map{"id": id, "is_active": true})
}

func (h *LayoutHandler) Delete(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteLayout(c.Context(), id); err != nil {
		return mapNotFound(err, "layout not found")
	}
	h.log.Info("layout deleted", zap.String("layout_id", id))
	return c.SendStatus(http.StatusNoContent)
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, models.ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, msg)
	}
	return err
}
