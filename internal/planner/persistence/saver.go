package persistence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"table-planner/internal/planner/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Layout Persistence Adapter
// ============================================================

const (
	MsgSaved  = "Layout saved successfully"
	MsgFailed = "Failed to save layout"
)

type LayoutStore interface {
	CreateLayout(ctx context.Context, layout models.Layout) error
	InsertElement(ctx context.Context, rec models.ElementRecord) error
	SaveLayoutTx(ctx context.Context, layout models.Layout, recs []models.ElementRecord) error
}

// ElementSource: всё, что умеет отдать снимок элементов (обычно *scene.Scene).
type ElementSource interface {
	Elements() []models.Element
}

type Result struct {
	Layout  models.Layout `json:"layout"`
	Saved   int           `json:"saved"`
	Skipped int           `json:"skipped"`
}

type Saver struct {
	store  LayoutStore
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
	atomic bool
}

type Option func(*Saver)

func WithClock(now func() time.Time) Option {
	return func(s *Saver) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Saver) { s.newID = newID }
}

// WithAtomic включает запись layout и элементов одной транзакцией.
func WithAtomic(atomic bool) Option {
	return func(s *Saver) { s.atomic = atomic }
}

func NewSaver(store LayoutStore, log *zap.Logger, opts ...Option) *Saver {
	s := &Saver{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveLayout сериализует текущую сцену в новый Layout и его элементы.
// Сцена не изменяется ни при успехе, ни при ошибке. Вставки элементов не атомарны
// (если не включён WithAtomic): при частичном сбое уже записанное не откатывается.
func (s *Saver) SaveLayout(ctx context.Context, src ElementSource, n models.Notifier) (Result, error) {
	if n == nil {
		n = models.Discard
	}

	now := s.now()
	layout := models.Layout{
		ID:        s.newID(),
		Name:      LayoutName(now),
		CreatedAt: now,
	}

	elements := src.Elements()
	records := make([]models.ElementRecord, 0, len(elements))
	skipped := 0
	for i, el := range elements {
		rec, ok := BuildRecord(layout.ID, el, now)
		if !ok {
			skipped++
			s.log.Warn("skipping untagged element",
				zap.String("element_id", el.ID),
				zap.String("layout_id", layout.ID),
			)
			continue
		}
		rec.ID = s.newID()
		rec.ZIndex = i
		records = append(records, rec)
	}

	res := Result{Layout: layout, Skipped: skipped}

	if s.atomic {
		if err := s.store.SaveLayoutTx(ctx, layout, records); err != nil {
			return res, s.fail(n, &models.PersistenceError{Op: "layout", Err: err})
		}
		res.Saved = len(records)
		return res, s.succeed(n, res)
	}

	if err := s.store.CreateLayout(ctx, layout); err != nil {
		return res, s.fail(n, &models.PersistenceError{Op: "layout", Err: err})
	}

	var errs []error
	for _, rec := range records {
		if err := s.store.InsertElement(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("element %s: %w", rec.ID, err))
			continue
		}
		res.Saved++
	}
	if len(errs) > 0 {
		return res, s.fail(n, &models.PersistenceError{Op: "layout elements", Err: errors.Join(errs...)})
	}

	return res, s.succeed(n, res)
}

func (s *Saver) succeed(n models.Notifier, res Result) error {
	s.log.Info("layout saved",
		zap.String("layout_id", res.Layout.ID),
		zap.Int("saved", res.Saved),
		zap.Int("skipped", res.Skipped),
	)
	n.Notify(models.NewNotice(models.NoticeSuccess, MsgSaved))
	return nil
}

func (s *Saver) fail(n models.Notifier, err error) error {
	s.log.Error("layout save failed", zap.Error(err))
	n.Notify(models.NewNotice(models.NoticeError, MsgFailed))
	return err
}

// ============================================================
// Serialization
// ============================================================

// BuildRecord строит строку layout_elements. false: элемент без тега, не сохраняется.
func BuildRecord(layoutID string, el models.Element, createdAt time.Time) (models.ElementRecord, bool) {
	if !el.Tagged() {
		return models.ElementRecord{}, false
	}

	rec := models.ElementRecord{
		LayoutID:    layoutID,
		ElementType: el.Type,
		Shape:       el.Shape,
		PositionX:   round(el.X),
		PositionY:   round(el.Y),
		Rotation:    el.Rotation,
		Name:        el.Name,
		Capacity:    el.Capacity,
		CreatedAt:   createdAt,
	}
	if el.Shape == models.ShapeRectangle {
		rec.Width = round(el.Width)
		rec.Height = round(el.Height)
	}
	if !el.IsTable() {
		rec.Capacity = 0
	} else if rec.Capacity < 0 {
		rec.Capacity = 0
	}
	return rec, true
}

func LayoutName(t time.Time) string {
	return "Layout " + t.Format("2006-01-02 15:04:05")
}

// round: половина округляется вверх, -2.5 даёт -2.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
