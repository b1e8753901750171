package feed

import (
	"context"
	"sort"
	"time"

	"table-planner/internal/planner/models"

	"go.uber.org/zap"
)

// ============================================================
// Reservation Feed
// ============================================================

const (
	MsgFetchFailed   = "Failed to load reservations"
	MsgAssignPending = "Table assignment is not available yet"
)

type ReservationStore interface {
	ReservationsBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
}

// Item: строка списка бронирований на день.
type Item struct {
	ID           string                   `json:"id"`
	CustomerName string                   `json:"customer_name"`
	Time         string                   `json:"time"`
	PartySize    int                      `json:"party_size"`
	Status       models.ReservationStatus `json:"status"`
	StatusLabel  string                   `json:"status_label"`
	TableID      *string                  `json:"table_id,omitempty"`
}

type Feed struct {
	store ReservationStore
	log   *zap.Logger
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Feed)

func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// WithLocation задаёт часовой пояс ресторана для границ дня и формата времени.
func WithLocation(loc *time.Location) Option {
	return func(f *Feed) {
		if loc != nil {
			f.loc = loc
		}
	}
}

func New(store ReservationStore, log *zap.Logger, opts ...Option) *Feed {
	f := &Feed{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DayRange возвращает [полночь, 23:59:59.999] дня t в его часовом поясе.
func DayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// Today: бронирования на текущий день.
func (f *Feed) Today(ctx context.Context, n models.Notifier) ([]models.Reservation, error) {
	return f.Day(ctx, f.now().In(f.loc), n)
}

// Day: бронирования на день day, по возрастанию времени.
func (f *Feed) Day(ctx context.Context, day time.Time, n models.Notifier) ([]models.Reservation, error) {
	if n == nil {
		n = models.Discard
	}

	start, end := DayRange(day.In(f.loc))
	rows, err := f.store.ReservationsBetween(ctx, start, end)
	if err != nil {
		ferr := &models.FetchError{Op: "reservations", Err: err}
		f.log.Error("reservation feed fetch failed",
			zap.Time("from", start),
			zap.Time("to", end),
			zap.Error(err),
		)
		n.Notify(models.NewNotice(models.NoticeError, MsgFetchFailed))
		return nil, ferr
	}

	out := make([]models.Reservation, 0, len(rows))
	for _, r := range rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Items форматирует бронирования для отображения рядом со сценой.
func (f *Feed) Items(rs []models.Reservation) []Item {
	items := make([]Item, 0, len(rs))
	for _, r := range rs {
		items = append(items, Item{
			ID:           r.ID,
			CustomerName: r.CustomerName,
			Time:         r.Date.In(f.loc).Format("15:04"),
			PartySize:    r.PartySize,
			Status:       r.Status,
			StatusLabel:  StatusLabel(r.Status),
			TableID:      r.TableID,
		})
	}
	return items
}

// Assign: заглушка назначения стола. Никогда не сообщает об успехе.
func (f *Feed) Assign(ctx context.Context, reservationID, tableID string, n models.Notifier) error {
	if n == nil {
		n = models.Discard
	}
	f.log.Info("table assignment requested",
		zap.String("reservation_id", reservationID),
		zap.String("table_id", tableID),
	)
	n.Notify(models.NewNotice(models.NoticeInfo, MsgAssignPending))
	return models.ErrAssignmentNotImplemented
}

func StatusLabel(s models.ReservationStatus) string {
	switch s {
	case models.StatusConfirmed:
		return "Confirmed"
	case models.StatusCancelled:
		return "Cancelled"
	case models.StatusPending, "":
		return "Pending"
	default:
		return string(s)
	}
}
