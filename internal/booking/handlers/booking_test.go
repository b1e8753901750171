package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"table-planner/internal/booking"
	"table-planner/internal/common/middleware"
	"table-planner/internal/planner/models"
	"table-planner/internal/planner/repository"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	created []models.Reservation
	rows    []models.Reservation
	filter  repository.ListFilter
}

func (m *memStore) Create(_ context.Context, r models.Reservation) error {
	m.created = append(m.created, r)
	return nil
}

func (m *memStore) List(_ context.Context, f repository.ListFilter) ([]models.Reservation, error) {
	m.filter = f
	return m.rows, nil
}

func (m *memStore) Customers(context.Context) ([]models.Customer, error) {
	return []models.Customer{{Name: "Ana", Email: "ana@example.com"}}, nil
}

func (m *memStore) ByEmail(_ context.Context, email string) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range m.rows {
		if r.CustomerEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func newApp(store *memStore) *fiber.App {
	log := zap.NewNop()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := booking.NewService(store, log,
		booking.WithClock(func() time.Time { return now }),
		booking.WithLocation(time.UTC),
	)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	h := NewBookingHandler(svc, time.UTC, log)
	h.Register(app.Group("/", middleware.CORS(nil)), app.Group("/admin"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	out := map[string]any{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp, out
}

func TestCreate_Accepted(t *testing.T) {
	store := &memStore{}
	app := newApp(store)

	resp, body := doJSON(t, app, http.MethodPost, "/reservations",
		`{"restaurantId":"r1","name":"Ana Lima","email":"ana@example.com","phone":"912 345 678","date":"2026-03-02","time":"20:00","guests":"2"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "pending", body["status"])
	require.Len(t, store.created, 1)
}

func TestCreate_ValidationMessage(t *testing.T) {
	store := &memStore{}
	app := newApp(store)

	resp, body := doJSON(t, app, http.MethodPost, "/reservations",
		`{"name":"Al","email":"ana@example.com","phone":"1","date":"2026-03-02","time":"20:00","guests":2}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid name. Invalid phone", body["message"])
	assert.Empty(t, store.created)
}

func TestCreate_InvalidJSON(t *testing.T) {
	resp, body := doJSON(t, newApp(&memStore{}), http.MethodPost, "/reservations", `{`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid json", body["error"])
}

func TestCreate_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/reservations", nil)
	req.Header.Set("Origin", "https://blog.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type,x-restaurant-id")

	resp, err := newApp(&memStore{}).Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestList_PassesFilter(t *testing.T) {
	store := &memStore{}
	app := newApp(store)

	resp, _ := doJSON(t, app, http.MethodGet, "/admin/reservations?q=ana&status=confirmed", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, repository.ListFilter{Query: "ana", Status: "confirmed"}, store.filter)
}

func TestExportCSV(t *testing.T) {
	store := &memStore{rows: []models.Reservation{
		{CustomerName: "Ana", CustomerEmail: "ana@example.com", Date: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), PartySize: 2},
	}}

	resp, err := newApp(store).Test(httptest.NewRequest(http.MethodGet, "/admin/reservations/export.csv", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "reservations.csv")
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(data), "Name,Email,Phone,Date,Time,Guests,Status\n"))
	assert.Contains(t, string(data), "Ana,ana@example.com,,2026-03-02,20:00,2,Pending")
}

func TestCustomerDetails(t *testing.T) {
	store := &memStore{rows: []models.Reservation{
		{CustomerName: "Ana", CustomerEmail: "ana@example.com", AttendanceStatus: models.AttendanceAttended},
	}}
	app := newApp(store)

	resp, body := doJSON(t, app, http.MethodGet, "/admin/customers/ana@example.com", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["attended"])

	resp, _ = doJSON(t, app, http.MethodGet, "/admin/customers/nobody@example.com", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	store := &memStore{rows: []models.Reservation{
		{Date: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)},
	}}

	resp, body := doJSON(t, newApp(store), http.MethodGet, "/admin/stats", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["today"])
	assert.Equal(t, "20:00", body["popular_time"])
}
