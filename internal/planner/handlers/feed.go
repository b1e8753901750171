package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"table-planner/internal/planner/feed"
	"table-planner/internal/planner/models"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Reservation Feed Handler
// ============================================================

type FeedHandler struct {
	feed    *feed.Feed
	layouts ActiveLayoutLoader
	log     *zap.Logger
}

func NewFeedHandler(f *feed.Feed, layouts ActiveLayoutLoader, log *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feed:    f,
		layouts: layouts,
		log:     log,
	}
}

type assignRequest struct {
	TableID string `json:"table_id"`
}

// Today: бронирования на сегодня по возрастанию времени.
func (h *FeedHandler) Today(c fiber.Ctx) error {
	var notices noticeBuffer
	rows, err := h.feed.Today(c.Context(), &notices)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":   feed.MsgFetchFailed,
			"notices": notices.List(),
		})
	}

	return c.JSON(fiber.Map{
		"reservations": h.feed.Items(rows),
		"notices":      notices.List(),
	})
}

// Assign: назначение стола пока не реализовано.
func (h *FeedHandler) Assign(c fiber.Ctx) error {
	var req assignRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid json")
		}
	}

	var notices noticeBuffer
	err := h.feed.Assign(c.Context(), c.Params("id"), req.TableID, &notices)
	return c.Status(http.StatusNotImplemented).JSON(fiber.Map{
		"error":   err.Error(),
		"notices": notices.List(),
	})
}

// Daily: план зала на сегодня: активный layout и бронирования.
func (h *FeedHandler) Daily(c fiber.Ctx) error {
	var notices noticeBuffer

	var layout *models.LayoutWithElements
	active, err := h.layouts.ActiveLayoutWithElements(c.Context())
	switch {
	case err == nil:
		layout = &active
	case errors.Is(err, models.ErrNotFound):
		notices.Notify(models.NewNotice(models.NoticeInfo, "No active layout"))
	default:
		h.log.Error("daily view: load layout failed", zap.Error(err))
		notices.Notify(models.NewNotice(models.NoticeError, "Failed to load layout"))
	}

	rows, err := h.feed.Today(c.Context(), &notices)
	if err != nil {
		rows = nil
	}

	return c.JSON(fiber.Map{
		"layout":       layout,
		"reservations": h.feed.Items(rows),
		"notices":      notices.List(),
	})
}
