package booking

import (
	"context"
	"strings"
	"time"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Booking Service
// ============================================================

type Store interface {
	Create(ctx context.Context, res models.Reservation) error
	List(ctx context.Context, f repository.ListFilter) ([]models.Reservation, error)
	Customers(ctx context.Context) ([]models.Customer, error)
	ByEmail(ctx context.Context, email string) ([]models.Reservation, error)
}

type Service struct {
	store     Store
	validator *Validator
	log       *zap.Logger
	now       func() time.Time
	loc       *time.Location
	newID     func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = NewValidator(s.now, s.loc)
	return s
}

// Book проверяет заявку с формы и сохраняет её как pending.
func (s *Service) Book(ctx context.Context, req Request) (models.Reservation, error) {
	if err := s.validator.Validate(req); err != nil {
		s.log.Info("booking rejected",
			zap.String("restaurant_id", req.RestaurantID),
			zap.Error(err),
		)
		return models.Reservation{}, err
	}

	at, _ := s.validator.When(req)
	res := models.Reservation{
		ID:            s.newID(),
		CustomerName:  strings.TrimSpace(req.Name),
		CustomerEmail: strings.TrimSpace(req.Email),
		CustomerPhone: NormalizePhone(req.Phone),
		Date:          at,
		PartySize:     int(req.Guests),
		Status:        models.StatusPending,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     s.now(),
	}

	if err := s.store.Create(ctx, res); err != nil {
		perr := &models.PersistenceError{Op: "reservation", Err: err}
		s.log.Error("booking failed", zap.Error(perr))
		return models.Reservation{}, perr
	}

	s.log.Info("booking received",
		zap.String("reservation_id", res.ID),
		zap.String("source", req.Source),
		zap.Int("party_size", res.PartySize),
		zap.Time("date", res.Date),
	)
	return res, nil
}
