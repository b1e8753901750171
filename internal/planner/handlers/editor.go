package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/persistence"
	"table-planner/internal/planner/session"
	"table-planner/internal/planner/shapes"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Editor Handler
// ============================================================

const msgNoActiveLayout = "No active layout, starting with an empty scene"

type ActiveLayoutLoader interface {
	ActiveLayoutWithElements(ctx context.Context) (models.LayoutWithElements, error)
}

type EditorHandler struct {
	sessions *session.Manager
	saver    *persistence.Saver
	layouts  ActiveLayoutLoader
	log      *zap.Logger
}

func NewEditorHandler(sessions *session.Manager, saver *persistence.Saver, layouts ActiveLayoutLoader, log *zap.Logger) *EditorHandler {
	return &EditorHandler{
		sessions: sessions,
		saver:    saver,
		layouts:  layouts,
		log:      log,
	}
}

type sessionView struct {
	ID       string           `json:"id"`
	Elements []models.Element `json:"elements"`
	Selected *string          `json:"selected"`
	Notices  []models.Notice  `json:"notices"`
}

type variantRequest struct {
	Variant string `json:"variant"`
}

type saveResponse struct {
	LayoutID string          `json:"layout_id"`
	Name     string          `json:"name"`
	Saved    int             `json:"saved"`
	Skipped  int             `json:"skipped"`
	Notices  []models.Notice `json:"notices"`
}

func view(s *session.Session) sessionView {
	v := sessionView{
		ID:       s.ID,
		Elements: s.Scene.Elements(),
		Notices:  s.Drain(),
	}
	if sel, ok := s.Scene.Selected(); ok {
		id := sel.ID
		v.Selected = &id
	}
	return v
}

// Open создаёт сессию редактора. ?from=active загружает активный layout.
func (h *EditorHandler) Open(c fiber.Ctx) error {
	s := h.sessions.Open()

	if c.Query("from") == "active" {
		h.hydrate(c.Context(), s)
	}

	h.log.Info("editor session opened",
		zap.String("session_id", s.ID),
		zap.Int("elements", s.Scene.Len()),
	)
	return c.Status(http.StatusCreated).JSON(view(s))
}

func (h *EditorHandler) hydrate(ctx context.Context, s *session.Session) {
	layout, err := h.layouts.ActiveLayoutWithElements(ctx)
	if errors.Is(err, models.ErrNotFound) {
		s.Notify(models.NewNotice(models.NoticeInfo, msgNoActiveLayout))
		return
	}
	if err != nil {
		h.log.Error("load active layout failed", zap.String("session_id", s.ID), zap.Error(err))
		s.Notify(models.NewNotice(models.NoticeError, "Failed to load layout"))
		return
	}

	for _, rec := range layout.Elements {
		s.Scene.Insert(shapes.FromRecord(rec))
	}
}

// Get возвращает состояние сцены.
func (h *EditorHandler) Get(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(view(s))
}

// Close закрывает сессию редактора.
func (h *EditorHandler) Close(c fiber.Ctx) error {
	if !h.sessions.Close(c.Params("id")) {
		return fiber.NewError(http.StatusNotFound, "session not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddElement добавляет элемент варианта в точку по умолчанию и выделяет его.
func (h *EditorHandler) AddElement(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	var req variantRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid json")
	}

	if _, err := s.Scene.Add(shapes.Variant(req.Variant)); err != nil {
		if errors.Is(err, shapes.ErrUnknownVariant) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(view(s))
}

// Select выделяет верхний элемент под точкой; промах снимает выделение.
func (h *EditorHandler) Select(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	p, err := parsePoint(c)
	if err != nil {
		return err
	}
	s.Scene.Select(p)
	return c.JSON(view(s))
}

func (h *EditorHandler) ClearSelection(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.Scene.ClearSelection()
	return c.JSON(view(s))
}

// MoveSelected переносит выделенный элемент. Без выделения ничего не делает.
func (h *EditorHandler) MoveSelected(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	p, err := parsePoint(c)
	if err != nil {
		return err
	}
	s.Scene.MoveSelected(p)
	return c.JSON(view(s))
}

func (h *EditorHandler) Rotate(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.Scene.Rotate()
	return c.JSON(view(s))
}

func (h *EditorHandler) DeleteSelected(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.Scene.Delete()
	return c.JSON(view(s))
}

// Save сохраняет сцену как новый layout. Повторный вызов во время сохранения: 409.
func (h *EditorHandler) Save(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	if !s.BeginSave() {
		return fiber.NewError(http.StatusConflict, models.ErrSaveInProgress.Error())
	}
	defer s.EndSave()

	// запись доводится до конца даже если клиент ушёл
	ctx := context.WithoutCancel(c.Context())
	res, err := h.saver.SaveLayout(ctx, s.Scene, s)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":   persistence.MsgFailed,
			"notices": s.Drain(),
		})
	}

	return c.Status(http.StatusCreated).JSON(saveResponse{
		LayoutID: res.Layout.ID,
		Name:     res.Layout.Name,
		Saved:    res.Saved,
		Skipped:  res.Skipped,
		Notices:  s.Drain(),
	})
}

func (h *EditorHandler) session(c fiber.Ctx) (*session.Session, error) {
	s, ok := h.sessions.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(http.StatusNotFound, "session not found")
	}
	return s, nil
}

func parsePoint(c fiber.Ctx) (models.Point, error) {
	var p models.Point
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return p, fiber.NewError(http.StatusBadRequest, "invalid json")
	}
	return p, nil
}
