package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"table-planner/internal/booking"
	"table-planner/internal/planner/models"
	"table-planner/internal/planner/repository"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Booking Handler
// ============================================================

const msgBookingFailed = "Could not process the reservation, please try again"

type BookingHandler struct {
	svc *booking.Service
	loc *time.Location
	log *zap.Logger
}

func NewBookingHandler(svc *booking.Service, loc *time.Location, log *zap.Logger) *BookingHandler {
	if loc == nil {
		loc = time.Local
	}
	return &BookingHandler{svc: svc, loc: loc, log: log}
}

// Register вешает публичный приём бронирований и админские маршруты.
// public получает CORS middleware для встраиваемой формы.
func (h *BookingHandler) Register(public, admin fiber.Router) {
	public.Post("/reservations", h.Create)

	admin.Get("/reservations", h.List)
	admin.Get("/reservations/export.csv", h.ExportCSV)
	admin.Get("/reservations/export.xlsx", h.ExportXLSX)
	admin.Get("/customers", h.Customers)
	admin.Get("/customers/:email", h.CustomerDetails)
	admin.Get("/stats", h.Stats)
}

// Create принимает заявку со встраиваемой формы.
func (h *BookingHandler) Create(c fiber.Ctx) error {
	var req booking.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid json")
	}
	if req.RestaurantID == "" {
		req.RestaurantID = c.Get("X-Restaurant-ID")
	}
	if req.Source == "" {
		req.Source = c.Get("X-Source")
	}

	res, err := h.svc.Book(c.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error":   verr.Error(),
				"message": verr.Error(),
				"errors":  verr.Messages,
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":   msgBookingFailed,
			"message": msgBookingFailed,
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     res.ID,
		"status": res.Status,
	})
}

func (h *BookingHandler) filter(c fiber.Ctx) repository.ListFilter {
	return repository.ListFilter{
		Query:  c.Query("q"),
		Status: c.Query("status"),
	}
}

// List: бронирования с поиском по имени и фильтром статуса.
func (h *BookingHandler) List(c fiber.Ctx) error {
	rows, err := h.svc.List(c.Context(), h.filter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reservations": rows})
}

func (h *BookingHandler) ExportCSV(c fiber.Ctx) error {
	rows, err := h.svc.List(c.Context(), h.filter(c))
	if err != nil {
		return err
	}

	data, err := booking.ExportCSV(rows, h.loc)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reservations.csv"`)
	return c.Send(data)
}

func (h *BookingHandler) ExportXLSX(c fiber.Ctx) error {
	rows, err := h.svc.List(c.Context(), h.filter(c))
	if err != nil {
		return err
	}

	data, err := booking.ExportXLSX(rows, h.loc)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reservations.xlsx"`)
	return c.Send(data)
}

func (h *BookingHandler) Customers(c fiber.Ctx) error {
	rows, err := h.svc.Customers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"customers": rows})
}

func (h *BookingHandler) CustomerDetails(c fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid email")
	}

	details, err := h.svc.CustomerDetails(c.Context(), email)
	if errors.Is(err, models.ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(details)
}

func (h *BookingHandler) Stats(c fiber.Ctx) error {
	st, err := h.svc.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(st)
}
