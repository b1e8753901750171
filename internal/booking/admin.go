package booking

import (
	"context"
	"sort"
	"time"

	"table-planner/internal/planner/feed"
	"table-planner/internal/planner/models"
	"table-planner/internal/planner/repository"
)

// ============================================================
// Admin views
// ============================================================

// CustomerDetails: история клиента и счётчики посещаемости.
type CustomerDetails struct {
	Customer     models.Customer      `json:"customer"`
	Total        int                  `json:"total"`
	Attended     int                  `json:"attended"`
	NoShow       int                  `json:"no_show"`
	Reservations []models.Reservation `json:"reservations"`
}

type DayTotal struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

type Stats struct {
	Today       int        `json:"today"`
	Total       int        `json:"total"`
	PopularTime string     `json:"popular_time"`
	Weekly      []DayTotal `json:"weekly"`
}

// NoPopularTime: значение PopularTime при отсутствии бронирований.
const NoPopularTime = "N/A"

func (s *Service) List(ctx context.Context, f repository.ListFilter) ([]models.Reservation, error) {
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, &models.FetchError{Op: "reservations", Err: err}
	}
	return rows, nil
}

func (s *Service) Customers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.store.Customers(ctx)
	if err != nil {
		return nil, &models.FetchError{Op: "customers", Err: err}
	}
	return rows, nil
}

// CustomerDetails возвращает models.ErrNotFound, если бронирований с email нет.
func (s *Service) CustomerDetails(ctx context.Context, email string) (CustomerDetails, error) {
	rows, err := s.store.ByEmail(ctx, email)
	if err != nil {
		return CustomerDetails{}, &models.FetchError{Op: "customer", Err: err}
	}
	if len(rows) == 0 {
		return CustomerDetails{}, models.ErrNotFound
	}

	d := CustomerDetails{
		Customer: models.Customer{
			Name:  rows[0].CustomerName,
			Email: rows[0].CustomerEmail,
			Phone: rows[0].CustomerPhone,
		},
		Total:        len(rows),
		Reservations: rows,
	}
	for _, r := range rows {
		switch r.AttendanceStatus {
		case models.AttendanceAttended:
			d.Attended++
		case models.AttendanceNoShow:
			d.NoShow++
		}
	}
	return d, nil
}

// Stats считает показатели дашборда по всем бронированиям.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.store.List(ctx, repository.ListFilter{})
	if err != nil {
		return Stats{}, &models.FetchError{Op: "stats", Err: err}
	}
	return ComputeStats(rows, s.now().In(s.loc)), nil
}

// ComputeStats: чистая часть Stats. Порядок дней недели: по первому появлению
// в хронологическом порядке, при равенстве популярности побеждает более раннее время.
func ComputeStats(rows []models.Reservation, now time.Time) Stats {
	loc := now.Location()
	start, end := feed.DayRange(now)

	sorted := append([]models.Reservation(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	st := Stats{Total: len(sorted), PopularTime: NoPopularTime, Weekly: []DayTotal{}}

	counts := map[string]int{}
	var order []string
	weekIdx := map[string]int{}

	for _, r := range sorted {
		d := r.Date.In(loc)
		if !d.Before(start) && !d.After(end) {
			st.Today++
		}

		hm := d.Format("15:04")
		if _, ok := counts[hm]; !ok {
			order = append(order, hm)
		}
		counts[hm]++

		day := d.Weekday().String()
		if i, ok := weekIdx[day]; ok {
			st.Weekly[i].Total++
		} else {
			weekIdx[day] = len(st.Weekly)
			st.Weekly = append(st.Weekly, DayTotal{Name: day, Total: 1})
		}
	}

	best := 0
	for _, hm := range order {
		if counts[hm] > best {
			best = counts[hm]
			st.PopularTime = hm
		}
	}
	return st
}
