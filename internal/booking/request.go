package booking

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"table-planner/internal/planner/models"

	"github.com/go-playground/validator/v10"
)

// ============================================================
// Booking request
// ============================================================

const (
	MinGuests = 1
	MaxGuests = 8
)

const (
	msgInvalidName   = "Invalid name"
	msgInvalidEmail  = "Invalid email"
	msgInvalidPhone  = "Invalid phone"
	msgInvalidDate   = "Invalid date/time"
	msgInvalidGuests = "Invalid number of guests"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{9}$`)
	whitespace   = regexp.MustCompile(`\s`)
)

// Guests принимает число или строку: форма шлёт значение select как есть.
type Guests int

func (g *Guests) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*g = Guests(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("guests must be a number")
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// невалидное значение отсеет проверка диапазона
		n = 0
	}
	*g = Guests(n)
	return nil
}

// Request: тело POST /reservations от встраиваемой формы.
type Request struct {
	RestaurantID string `json:"restaurantId"`
	Name         string `json:"name"   validate:"required,person_name"`
	Email        string `json:"email"  validate:"required,booking_email"`
	Phone        string `json:"phone"  validate:"required,phone9"`
	Date         string `json:"date"   validate:"required"`
	Time         string `json:"time"   validate:"required"`
	Guests       Guests `json:"guests" validate:"min=1,max=8"`
	Source       string `json:"source"`
	Notes        string `json:"notes"`
}

// ============================================================
// Validator
// ============================================================

type Validator struct {
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

func NewValidator(now func() time.Time, loc *time.Location) *Validator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}

	v := &Validator{
		validate: validator.New(),
		now:      now,
		loc:      loc,
	}
	_ = v.validate.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= 3
	})
	_ = v.validate.RegisterValidation("booking_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("phone9", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(NormalizePhone(fl.Field().String()))
	})
	v.validate.RegisterStructValidation(v.validateWhen, Request{})
	return v
}

func (v *Validator) validateWhen(sl validator.StructLevel) {
	req := sl.Current().Interface().(Request)
	at, err := v.When(req)
	if err != nil || at.Before(v.now()) {
		sl.ReportError(req.Date, "Date", "date", "future", "")
	}
}

// When собирает момент бронирования из даты и времени в поясе ресторана.
func (v *Validator) When(req Request) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(req.Date)+" "+strings.TrimSpace(req.Time), v.loc)
}

// Validate возвращает *models.ValidationError с сообщениями в порядке полей формы.
func (v *Validator) Validate(req Request) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = true
	}

	var msgs []string
	if failed["Name"] {
		msgs = append(msgs, msgInvalidName)
	}
	if failed["Email"] {
		msgs = append(msgs, msgInvalidEmail)
	}
	if failed["Phone"] {
		msgs = append(msgs, msgInvalidPhone)
	}
	if failed["Date"] || failed["Time"] {
		msgs = append(msgs, msgInvalidDate)
	}
	if failed["Guests"] {
		msgs = append(msgs, msgInvalidGuests)
	}
	return models.NewValidationError(msgs...)
}

// NormalizePhone убирает пробелы из номера.
func NormalizePhone(phone string) string {
	return whitespace.ReplaceAllString(phone, "")
}
