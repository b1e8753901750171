package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"table-planner/internal/planner/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewDB(sqlx.NewDb(mockDB, DriverPostgres)), mock
}

var (
	layoutCols  = []string{"id", "name", "description", "is_active", "created_at"}
	elementCols = []string{
		"id", "layout_id", "element_type", "shape", "position_x", "position_y",
		"width", "height", "rotation", "name", "capacity", "z_index", "created_at",
	}
	reservationCols = []string{
		"id", "customer_name", "customer_email", "customer_phone", "date", "party_size",
		"status", "attendance_status", "notes", "table_id", "review_email_sent", "created_at",
	}
)

// ====== Layouts ======

func TestLayoutRepository_CreateLayout(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO table_layouts`).
		WithArgs("l-1", "Layout 2026-03-01 12:00:00", nil, false, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateLayout(context.Background(), models.Layout{
		ID:        "l-1",
		Name:      "Layout 2026-03-01 12:00:00",
		CreatedAt: now,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_InsertElement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectExec(`INSERT INTO layout_elements`).
		WithArgs("e-1", "l-1", "table", "rectangle", 123, 45, 60, 60, 90, "Table 1", 4, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.InsertElement(context.Background(), models.ElementRecord{
		ID:          "e-1",
		LayoutID:    "l-1",
		ElementType: models.ElementTable,
		Shape:       models.ShapeRectangle,
		PositionX:   123,
		PositionY:   45,
		Width:       60,
		Height:      60,
		Rotation:    90,
		Name:        "Table 1",
		Capacity:    4,
		ZIndex:      2,
		CreatedAt:   time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_SaveLayoutTx_RollsBackOnElementFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO table_layouts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO layout_elements`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveLayoutTx(context.Background(),
		models.Layout{ID: "l-1", Name: "x", CreatedAt: time.Now()},
		[]models.ElementRecord{{ID: "e-1", LayoutID: "l-1"}},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_SaveLayoutTx_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO table_layouts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO layout_elements`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO layout_elements`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveLayoutTx(context.Background(),
		models.Layout{ID: "l-1", Name: "x", CreatedAt: time.Now()},
		[]models.ElementRecord{{ID: "e-1", LayoutID: "l-1"}, {ID: "e-2", LayoutID: "l-1"}},
	)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_ActiveLayout_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectQuery(`FROM table_layouts WHERE is_active = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(layoutCols))

	_, err := repo.ActiveLayout(context.Background())

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_ActiveLayoutWithElements(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM table_layouts WHERE is_active`).
		WillReturnRows(sqlmock.NewRows(layoutCols).
			AddRow("l-1", "Main hall", "window side", true, created))
	mock.ExpectQuery(`FROM layout_elements\s+WHERE layout_id = \$1 ORDER BY z_index ASC`).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows(elementCols).
			AddRow("e-1", "l-1", "table", "circle", 100, 100, 0, 0, 45, "Table 1", 4, 0, created).
			AddRow("e-2", "l-1", "counter", "rectangle", 300, 20, 200, 40, 0, nil, 0, 1, created))

	got, err := repo.ActiveLayoutWithElements(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Main hall", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "window side", *got.Description)
	assert.True(t, got.IsActive)
	require.Len(t, got.Elements, 2)
	assert.Equal(t, models.ShapeCircle, got.Elements[0].Shape)
	assert.Equal(t, 45, got.Elements[0].Rotation)
	assert.Equal(t, 200, got.Elements[1].Width)
	assert.Equal(t, "", got.Elements[1].Name)
	assert.Equal(t, 1, got.Elements[1].ZIndex)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_Activate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE table_layouts SET is_active = \$1 WHERE is_active = \$2`).
		WithArgs(false, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE table_layouts SET is_active = \$1 WHERE id = \$2`).
		WithArgs(true, "l-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activate(context.Background(), "l-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_Activate_UnknownRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE table_layouts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE table_layouts`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_DeleteLayout(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM layout_elements WHERE layout_id = \$1`).
		WithArgs("l-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM table_layouts WHERE id = \$1`).
		WithArgs("l-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteLayout(context.Background(), "l-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_Activate_RowsAffectedError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE table_layouts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE table_layouts`).WillReturnResult(sqlmock.NewErrorResult(errors.New("not supported")))
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), "l-2")

	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "not supported")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayoutRepository_DeleteLayout_RowsAffectedError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM layout_elements`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM table_layouts`).WillReturnResult(sqlmock.NewErrorResult(errors.New("not supported")))
	mock.ExpectRollback()

	err := repo.DeleteLayout(context.Background(), "l-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ====== Reservations ======

func TestReservationRepository_ReservationsBetween(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	mock.ExpectQuery(`WHERE date >= \$1 AND date <= \$2 ORDER BY date ASC`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow("r-1", "Ana", "ana@example.com", "600000001", from.Add(13*time.Hour), 2,
				"confirmed", nil, nil, nil, false, from).
			AddRow("r-2", "Ben", "ben@example.com", "600000002", from.Add(20*time.Hour), 4,
				nil, "attended", "window", "t-9", true, from))

	got, err := repo.ReservationsBetween(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.StatusConfirmed, got[0].Status)
	assert.Nil(t, got[0].TableID)
	assert.Equal(t, models.StatusPending, got[1].Status)
	assert.Equal(t, models.AttendanceAttended, got[1].AttendanceStatus)
	require.NotNil(t, got[1].TableID)
	assert.Equal(t, "t-9", *got[1].TableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_List_FiltersAndSearch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`WHERE LOWER\(customer_name\) LIKE \$1 AND status = \$2 ORDER BY date DESC`).
		WithArgs("%ana%", "confirmed").
		WillReturnRows(sqlmock.NewRows(reservationCols))

	got, err := repo.List(context.Background(), ListFilter{Query: " Ana ", Status: "confirmed"})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_List_AllStatusesHasNoWhere(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`FROM reservations ORDER BY date DESC`).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	_, err := repo.List(context.Background(), ListFilter{Status: "all"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Customers_DedupByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`SELECT customer_name, customer_email, customer_phone`).
		WillReturnRows(sqlmock.NewRows([]string{"customer_name", "customer_email", "customer_phone"}).
			AddRow("Ana", "ana@example.com", "600000001").
			AddRow("Ana Maria", "ana@example.com", "600000009").
			AddRow("Ben", "ben@example.com", "600000002"))

	got, err := repo.Customers(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "600000001", got[0].Phone)
	assert.Equal(t, "ben@example.com", got[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Unreviewed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	from := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	mock.ExpectQuery(`attendance_status = \$3\s+AND review_email_sent = \$4`).
		WithArgs(from, to, "attended", false).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	_, err := repo.Unreviewed(context.Background(), from, to)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_MarkReviewEmailSent_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectExec(`UPDATE reservations SET review_email_sent = \$1 WHERE id = \$2`).
		WithArgs(true, "r-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkReviewEmailSent(context.Background(), "r-404")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_MarkReviewEmailSent_RowsAffectedError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectExec(`UPDATE reservations SET review_email_sent`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("not supported")))

	err := repo.MarkReviewEmailSent(context.Background(), "r-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	at := time.Date(2026, 3, 2, 19, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs("r-1", "Ana", "ana@example.com", "600000001", at, 2, "pending", nil, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), models.Reservation{
		ID:            "r-1",
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "600000001",
		Date:          at,
		PartySize:     2,
		Status:        models.StatusPending,
		CreatedAt:     time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ====== Time helpers ======

func TestTimeArg_SQLiteUsesFixedWidthUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 1, 23, 59, 59, 998_000_000, loc)

	assert.Equal(t, "2026-03-01 22:59:59.998", timeArg(DriverSQLite, ts))
	assert.Equal(t, ts, timeArg(DriverPostgres, ts))
}

func TestDBTime_Scan(t *testing.T) {
	want := time.Date(2026, 3, 1, 22, 59, 59, 998_000_000, time.UTC)

	var a dbTime
	require.NoError(t, a.Scan("2026-03-01 22:59:59.998"))
	assert.True(t, want.Equal(a.Time))

	var b dbTime
	require.NoError(t, b.Scan([]byte("2026-03-01T22:59:59.998Z")))
	assert.True(t, want.Equal(b.Time))

	var c dbTime
	require.NoError(t, c.Scan(want))
	assert.True(t, want.Equal(c.Time))

	var d dbTime
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	var e dbTime
	assert.Error(t, e.Scan("yesterday"))
	assert.Error(t, e.Scan(42))
}
