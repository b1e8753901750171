package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"table-planner/internal/planner/models"
)

// ============================================================
// Reservation Repository
// ============================================================

type ReservationRepository struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// ListFilter: параметры списка бронирований в админке.
// Пустой Status или "all" означает без фильтра.
type ListFilter struct {
	Query  string
	Status string
}

type reservationRow struct {
	ID               string         `db:"id"`
	CustomerName     string         `db:"customer_name"`
	CustomerEmail    string         `db:"customer_email"`
	CustomerPhone    string         `db:"customer_phone"`
	Date             dbTime         `db:"date"`
	PartySize        int            `db:"party_size"`
	Status           sql.NullString `db:"status"`
	AttendanceStatus sql.NullString `db:"attendance_status"`
	Notes            sql.NullString `db:"notes"`
	TableID          sql.NullString `db:"table_id"`
	ReviewEmailSent  bool           `db:"review_email_sent"`
	CreatedAt        dbTime         `db:"created_at"`
}

func (r reservationRow) toModel() models.Reservation {
	res := models.Reservation{
		ID:               r.ID,
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		CustomerPhone:    r.CustomerPhone,
		Date:             r.Date.Time,
		PartySize:        r.PartySize,
		Status:           models.StatusPending,
		AttendanceStatus: models.AttendanceStatus(r.AttendanceStatus.String),
		Notes:            r.Notes.String,
		ReviewEmailSent:  r.ReviewEmailSent,
		CreatedAt:        r.CreatedAt.Time,
	}
	if r.Status.Valid && r.Status.String != "" {
		res.Status = models.ReservationStatus(r.Status.String)
	}
	if r.TableID.Valid {
		id := r.TableID.String
		res.TableID = &id
	}
	return res
}

const selectReservationColumns = `
	SELECT id, customer_name, customer_email, customer_phone, date, party_size,
	       status, attendance_status, notes, table_id, review_email_sent, created_at
	FROM reservations`

// Create вставляет новое бронирование.
func (r *ReservationRepository) Create(ctx context.Context, res models.Reservation) error {
	driver := r.db.DriverName()
	var notes any
	if res.Notes != "" {
		notes = res.Notes
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO reservations
			(id, customer_name, customer_email, customer_phone, date, party_size,
			 status, notes, review_email_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		res.ID,
		res.CustomerName,
		res.CustomerEmail,
		res.CustomerPhone,
		timeArg(driver, res.Date),
		res.PartySize,
		string(res.Status),
		notes,
		false,
		timeArg(driver, res.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// ReservationsBetween возвращает бронирования с date в [from, to] по возрастанию.
func (r *ReservationRepository) ReservationsBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	driver := r.db.DriverName()
	query := r.db.Rebind(selectReservationColumns + ` WHERE date >= ? AND date <= ? ORDER BY date ASC`)
	return r.selectMany(ctx, query, timeArg(driver, from), timeArg(driver, to))
}

// List: список для админки: поиск по имени без учёта регистра и фильтр статуса.
func (r *ReservationRepository) List(ctx context.Context, f ListFilter) ([]models.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, `LOWER(customer_name) LIKE ?`)
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if f.Status != "" && f.Status != "all" {
		where = append(where, `status = ?`)
		args = append(args, f.Status)
	}

	query := selectReservationColumns
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY date DESC`

	return r.selectMany(ctx, r.db.Rebind(query), args...)
}

// Customers: уникальные клиенты по e-mail, первое вхождение в порядке имени.
func (r *ReservationRepository) Customers(ctx context.Context) ([]models.Customer, error) {
	var rows []struct {
		Name  string `db:"customer_name"`
		Email string `db:"customer_email"`
		Phone string `db:"customer_phone"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT customer_name, customer_email, customer_phone
		FROM reservations
		ORDER BY customer_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	out := make([]models.Customer, 0, len(rows))
	for _, row := range rows {
		if seen[row.Email] {
			continue
		}
		seen[row.Email] = true
		out = append(out, models.Customer{Name: row.Name, Email: row.Email, Phone: row.Phone})
	}
	return out, nil
}

// ByEmail возвращает историю бронирований клиента, новые первыми.
func (r *ReservationRepository) ByEmail(ctx context.Context, email string) ([]models.Reservation, error) {
	query := r.db.Rebind(selectReservationColumns + ` WHERE customer_email = ? ORDER BY date DESC`)
	return r.selectMany(ctx, query, email)
}

// Unreviewed: посещённые бронирования в [from, to], которым ещё не отправлено письмо.
func (r *ReservationRepository) Unreviewed(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	driver := r.db.DriverName()
	query := r.db.Rebind(selectReservationColumns + `
		WHERE date >= ? AND date <= ?
		  AND attendance_status = ?
		  AND review_email_sent = ?
		ORDER BY date ASC`)
	return r.selectMany(ctx, query,
		timeArg(driver, from),
		timeArg(driver, to),
		string(models.AttendanceAttended),
		false,
	)
}

// MarkReviewEmailSent отмечает, что письмо с просьбой об отзыве отправлено.
func (r *ReservationRepository) MarkReviewEmailSent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE reservations SET review_email_sent = ? WHERE id = ?`),
		true, id,
	)
	if err != nil {
		return fmt.Errorf("mark review sent %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) selectMany(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}

	out := make([]models.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}
