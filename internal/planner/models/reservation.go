package models

import "time"

// ============================================================
// Reservations
// ============================================================

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

type AttendanceStatus string

const (
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceNoShow   AttendanceStatus = "no_show"
)

type Reservation struct {
	ID               string            `json:"id"`
	CustomerName     string            `json:"customer_name"`
	CustomerEmail    string            `json:"customer_email"`
	CustomerPhone    string            `json:"customer_phone"`
	Date             time.Time         `json:"date"`
	PartySize        int               `json:"party_size"`
	Status           ReservationStatus `json:"status"`
	AttendanceStatus AttendanceStatus  `json:"attendance_status,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	TableID          *string           `json:"table_id,omitempty"`
	ReviewEmailSent  bool              `json:"review_email_sent"`
	CreatedAt        time.Time         `json:"created_at"`
}

type Customer struct {
	Name  string `json:"customer_name"`
	Email string `json:"customer_email"`
	Phone string `json:"customer_phone"`
}
