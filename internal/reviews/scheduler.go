package reviews

import (
	"context"
	"fmt"
	"sync"
	"time"

	"table-planner/internal/planner/feed"
	"table-planner/internal/planner/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ============================================================
// Review e-mail scheduler
// ============================================================

const (
	DefaultSchedule = "0 12 * * *"
	runTimeout      = 5 * time.Minute
)

type Store interface {
	Unreviewed(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
	MarkReviewEmailSent(ctx context.Context, id string) error
}

// Report: итог одного прогона.
type Report struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

type Scheduler struct {
	store   Store
	sender  Sender
	log     *zap.Logger
	baseURL string
	spec    string
	loc     *time.Location
	now     func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
	runs sync.Mutex
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.spec = spec
		}
	}
}

func NewScheduler(store Store, sender Sender, baseURL string, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:   store,
		sender:  sender,
		log:     log,
		baseURL: baseURL,
		spec:    DefaultSchedule,
		loc:     time.Local,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start запускает ежедневный прогон по cron-расписанию.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("review email run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule review emails %q: %w", s.spec, err)
	}

	c.Start()
	s.cron = c
	s.log.Info("review email scheduler started", zap.String("schedule", s.spec))
	return nil
}

// Stop останавливает расписание и ждёт завершения текущего прогона.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("review email scheduler stopped")
}

// RunOnce отправляет письма по вчерашним посещённым бронированиям.
// Ошибка отправки одного письма не прерывает остальные.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	s.runs.Lock()
	defer s.runs.Unlock()

	from, to := feed.DayRange(s.now().In(s.loc).AddDate(0, 0, -1))
	rows, err := s.store.Unreviewed(ctx, from, to)
	if err != nil {
		return Report{}, &models.FetchError{Op: "unreviewed reservations", Err: err}
	}

	rep := Report{Candidates: len(rows)}
	for _, r := range rows {
		if err := s.sendOne(ctx, r); err != nil {
			rep.Failed++
			s.log.Warn("review email failed",
				zap.String("reservation_id", r.ID),
				zap.Error(err),
			)
			continue
		}
		rep.Sent++
	}

	s.log.Info("review email run finished",
		zap.Int("candidates", rep.Candidates),
		zap.Int("sent", rep.Sent),
		zap.Int("failed", rep.Failed),
	)
	return rep, nil
}

func (s *Scheduler) sendOne(ctx context.Context, r models.Reservation) error {
	if r.ReviewEmailSent || r.AttendanceStatus != models.AttendanceAttended {
		return fmt.Errorf("reservation %s is not eligible", r.ID)
	}

	email, err := Compose(r, s.baseURL, s.loc)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, email); err != nil {
		return err
	}
	if err := s.store.MarkReviewEmailSent(ctx, r.ID); err != nil {
		return &models.PersistenceError{Op: "review email flag", Err: err}
	}
	return nil
}
