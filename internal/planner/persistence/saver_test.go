package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/scene"
	"table-planner/internal/planner/shapes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockLayoutStore: фейковое хранилище для тестов.
type MockLayoutStore struct {
	layouts        []models.Layout
	elements       []models.ElementRecord
	txCalls        int
	createErr      error
	insertErr      error
	failInsertFrom int // 1-based номер вставки, начиная с которой падать, 0 не падать
	inserts        int
}

func (m *MockLayoutStore) CreateLayout(ctx context.Context, layout models.Layout) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.layouts = append(m.layouts, layout)
	return nil
}

func (m *MockLayoutStore) InsertElement(ctx context.Context, rec models.ElementRecord) error {
	m.inserts++
	if m.failInsertFrom > 0 && m.inserts >= m.failInsertFrom {
		return m.insertErr
	}
	m.elements = append(m.elements, rec)
	return nil
}

func (m *MockLayoutStore) SaveLayoutTx(ctx context.Context, layout models.Layout, recs []models.ElementRecord) error {
	m.txCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.layouts = append(m.layouts, layout)
	m.elements = append(m.elements, recs...)
	return nil
}

type noticeLog struct {
	notices []models.Notice
}

func (l *noticeLog) Notify(n models.Notice) { l.notices = append(l.notices, n) }

func (l *noticeLog) count(level models.NoticeLevel) int {
	c := 0
	for _, n := range l.notices {
		if n.Level == level {
			c++
		}
	}
	return c
}

var fixedNow = time.Date(2026, 10, 18, 19, 30, 5, 0, time.UTC)

func newTestSaver(store LayoutStore, opts ...Option) *Saver {
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
	}
	return NewSaver(store, zap.NewNop(), append(base, opts...)...)
}

func TestSaveLayout_RectangleRoundTrip(t *testing.T) {
	store := &MockLayoutStore{}
	sc := scene.New()
	el, err := sc.Add(shapes.RectangleTable)
	require.NoError(t, err)
	sc.Move(el.ID, models.Point{X: 123, Y: 45})
	sc.Rotate()
	sc.Rotate()

	notices := &noticeLog{}
	res, err := newTestSaver(store).SaveLayout(context.Background(), sc, notices)
	require.NoError(t, err)

	require.Len(t, store.elements, 1)
	rec := store.elements[0]
	assert.Equal(t, res.Layout.ID, rec.LayoutID)
	assert.Equal(t, 123, rec.PositionX)
	assert.Equal(t, 45, rec.PositionY)
	assert.Equal(t, 90, rec.Rotation)
	assert.Equal(t, 60, rec.Width)
	assert.Equal(t, 60, rec.Height)
	assert.Equal(t, 4, rec.Capacity)
	assert.Equal(t, models.ElementTable, rec.ElementType)
	assert.Equal(t, models.ShapeRectangle, rec.Shape)

	assert.Equal(t, 1, notices.count(models.NoticeSuccess))
	assert.Equal(t, 0, notices.count(models.NoticeError))
}

func TestSaveLayout_RoundsFractionalPositions(t *testing.T) {
	store := &MockLayoutStore{}
	sc := scene.New()
	el, _ := sc.Add(shapes.CircleTable)
	sc.Move(el.ID, models.Point{X: 10.6, Y: 20.4})

	_, err := newTestSaver(store).SaveLayout(context.Background(), sc, nil)
	require.NoError(t, err)

	rec := store.elements[0]
	assert.Equal(t, 11, rec.PositionX)
	assert.Equal(t, 20, rec.PositionY)
	assert.Zero(t, rec.Width)
	assert.Zero(t, rec.Height)
}

func TestSaveLayout_EmptyScene(t *testing.T) {
	store := &MockLayoutStore{}
	notices := &noticeLog{}

	res, err := newTestSaver(store).SaveLayout(context.Background(), scene.New(), notices)
	require.NoError(t, err)

	assert.Len(t, store.layouts, 1)
	assert.Empty(t, store.elements)
	assert.Equal(t, "Layout 2026-10-18 19:30:05", res.Layout.Name)
	assert.Equal(t, 1, notices.count(models.NoticeSuccess))
}

func TestSaveLayout_LayoutCreateFailureKeepsScene(t *testing.T) {
	store := &MockLayoutStore{createErr: errors.New("db down")}
	sc := scene.New()
	_, _ = sc.Add(shapes.CircleTable)
	_, _ = sc.Add(shapes.Counter)
	notices := &noticeLog{}

	_, err := newTestSaver(store).SaveLayout(context.Background(), sc, notices)

	var perr *models.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, sc.Len())
	assert.Len(t, notices.notices, 1)
	assert.Equal(t, models.NoticeError, notices.notices[0].Level)
	assert.Zero(t, store.inserts)
}

func TestSaveLayout_PartialInsertFailure(t *testing.T) {
	store := &MockLayoutStore{failInsertFrom: 2, insertErr: errors.New("constraint")}
	sc := scene.New()
	_, _ = sc.Add(shapes.CircleTable)
	_, _ = sc.Add(shapes.RectangleTable)
	_, _ = sc.Add(shapes.Decorative)
	notices := &noticeLog{}

	res, err := newTestSaver(store).SaveLayout(context.Background(), sc, notices)

	require.Error(t, err)
	assert.Equal(t, 3, store.inserts, "all inserts are attempted")
	assert.Equal(t, 1, res.Saved)
	assert.Len(t, store.elements, 1, "partial writes are not rolled back")
	assert.Equal(t, 3, sc.Len())
	assert.Equal(t, 1, notices.count(models.NoticeError))
	assert.Equal(t, 0, notices.count(models.NoticeSuccess))
}

func TestSaveLayout_SkipsUntaggedElements(t *testing.T) {
	store := &MockLayoutStore{}
	sc := scene.New()
	_, _ = sc.Add(shapes.CircleTable)
	sc.Insert(models.Element{ID: "raw", Width: 10, Height: 10})

	res, err := newTestSaver(store).SaveLayout(context.Background(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, store.elements, 1)
}

func TestSaveLayout_Atomic(t *testing.T) {
	store := &MockLayoutStore{}
	sc := scene.New()
	_, _ = sc.Add(shapes.Counter)

	res, err := newTestSaver(store, WithAtomic(true)).SaveLayout(context.Background(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, store.txCalls)
	assert.Zero(t, store.inserts)
	assert.Equal(t, 1, res.Saved)
	assert.Zero(t, store.elements[0].Capacity)
}

func TestSaveLayout_AtomicFailure(t *testing.T) {
	store := &MockLayoutStore{createErr: errors.New("tx aborted")}
	notices := &noticeLog{}

	_, err := newTestSaver(store, WithAtomic(true)).SaveLayout(context.Background(), scene.New(), notices)

	var perr *models.PersistenceError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, notices.count(models.NoticeError))
}

func TestBuildRecord_NonTableCapacityIsZero(t *testing.T) {
	el, _ := shapes.New(shapes.Decorative, 0)
	el.Capacity = 6

	rec, ok := BuildRecord("l1", el, fixedNow)
	require.True(t, ok)
	assert.Zero(t, rec.Capacity)
	assert.Equal(t, models.ElementFlowers, rec.ElementType)
}

func TestSaveLayout_ZIndexFollowsSceneOrder(t *testing.T) {
	store := &MockLayoutStore{}
	sc := scene.New()
	_, _ = sc.Add(shapes.CircleTable)
	sc.Insert(models.Element{ID: "raw", Width: 10, Height: 10})
	_, _ = sc.Add(shapes.Counter)
	_, _ = sc.Add(shapes.RectangleTable)

	_, err := newTestSaver(store).SaveLayout(context.Background(), sc, nil)
	require.NoError(t, err)

	require.Len(t, store.elements, 3)
	assert.Equal(t, 0, store.elements[0].ZIndex)
	assert.Equal(t, 2, store.elements[1].ZIndex)
	assert.Equal(t, 3, store.elements[2].ZIndex)
}

func TestRound_HalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{2.5, 3},
		{-2.5, -2},
		{-2.6, -3},
		{-0.5, 0},
		{10.4, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round(tt.in), "round(%v)", tt.in)
	}
}

func TestSaveLayout_NegativeHalfPixel(t *testing.T) {
	store := &MockLayoutStore{}
	sc := scene.New()
	el, _ := sc.Add(shapes.CircleTable)
	sc.Move(el.ID, models.Point{X: -2.5, Y: 7.5})

	_, err := newTestSaver(store).SaveLayout(context.Background(), sc, nil)
	require.NoError(t, err)

	assert.Equal(t, -2, store.elements[0].PositionX)
	assert.Equal(t, 8, store.elements[0].PositionY)
}
