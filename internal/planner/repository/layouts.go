package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"table-planner/internal/planner/models"

	"github.com/jmoiron/sqlx"
)

// ============================================================
// Layout Repository
// ============================================================

type LayoutRepository struct {
	db *DB
}

func NewLayoutRepository(db *DB) *LayoutRepository {
	return &LayoutRepository{db: db}
}

type layoutRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   dbTime         `db:"created_at"`
}

func (r layoutRow) toModel() models.Layout {
	l := models.Layout{
		ID:        r.ID,
		Name:      r.Name,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Time,
	}
	if r.Description.Valid {
		d := r.Description.String
		l.Description = &d
	}
	return l
}

type elementRow struct {
	ID          string         `db:"id"`
	LayoutID    string         `db:"layout_id"`
	ElementType string         `db:"element_type"`
	Shape       string         `db:"shape"`
	PositionX   int            `db:"position_x"`
	PositionY   int            `db:"position_y"`
	Width       sql.NullInt64  `db:"width"`
	Height      sql.NullInt64  `db:"height"`
	Rotation    int            `db:"rotation"`
	Name        sql.NullString `db:"name"`
	Capacity    int            `db:"capacity"`
	ZIndex      int            `db:"z_index"`
	CreatedAt   dbTime         `db:"created_at"`
}

func (r elementRow) toModel() models.ElementRecord {
	return models.ElementRecord{
		ID:          r.ID,
		LayoutID:    r.LayoutID,
		ElementType: models.ElementType(r.ElementType),
		Shape:       models.Shape(r.Shape),
		PositionX:   r.PositionX,
		PositionY:   r.PositionY,
		Width:       int(r.Width.Int64),
		Height:      int(r.Height.Int64),
		Rotation:    r.Rotation,
		Name:        r.Name.String,
		Capacity:    r.Capacity,
		ZIndex:      r.ZIndex,
		CreatedAt:   r.CreatedAt.Time,
	}
}

const (
	insertLayoutQuery = `
		INSERT INTO table_layouts (id, name, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`

	insertElementQuery = `
		INSERT INTO layout_elements
			(id, layout_id, element_type, shape, position_x, position_y,
			 width, height, rotation, name, capacity, z_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectLayoutColumns = `SELECT id, name, description, is_active, created_at FROM table_layouts`

	selectElementColumns = `
		SELECT id, layout_id, element_type, shape, position_x, position_y,
		       width, height, rotation, name, capacity, z_index, created_at
		FROM layout_elements`
)

// CreateLayout вставляет строку table_layouts.
func (r *LayoutRepository) CreateLayout(ctx context.Context, layout models.Layout) error {
	return r.insertLayout(ctx, r.db, layout)
}

// InsertElement вставляет одну строку layout_elements.
func (r *LayoutRepository) InsertElement(ctx context.Context, rec models.ElementRecord) error {
	return r.insertElement(ctx, r.db, rec)
}

// SaveLayoutTx записывает layout и все элементы в одной транзакции.
func (r *LayoutRepository) SaveLayoutTx(ctx context.Context, layout models.Layout, recs []models.ElementRecord) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.insertLayout(ctx, tx, layout); err != nil {
		return err
	}
	for _, rec := range recs {
		if err = r.insertElement(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *LayoutRepository) insertLayout(ctx context.Context, ex sqlx.ExtContext, layout models.Layout) error {
	_, err := ex.ExecContext(ctx, ex.Rebind(insertLayoutQuery),
		layout.ID,
		layout.Name,
		layout.Description,
		layout.IsActive,
		timeArg(ex.DriverName(), layout.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert layout %s: %w", layout.ID, err)
	}
	return nil
}

func (r *LayoutRepository) insertElement(ctx context.Context, ex sqlx.ExtContext, rec models.ElementRecord) error {
	_, err := ex.ExecContext(ctx, ex.Rebind(insertElementQuery),
		rec.ID,
		rec.LayoutID,
		string(rec.ElementType),
		string(rec.Shape),
		rec.PositionX,
		rec.PositionY,
		rec.Width,
		rec.Height,
		rec.Rotation,
		rec.Name,
		rec.Capacity,
		rec.ZIndex,
		timeArg(ex.DriverName(), rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert element %s: %w", rec.ID, err)
	}
	return nil
}

// ListLayouts возвращает все layouts, новые первыми.
func (r *LayoutRepository) ListLayouts(ctx context.Context) ([]models.Layout, error) {
	var rows []layoutRow
	if err := r.db.SelectContext(ctx, &rows, selectLayoutColumns+` ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("select layouts: %w", err)
	}

	out := make([]models.Layout, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// ActiveLayout возвращает активный layout или models.ErrNotFound.
func (r *LayoutRepository) ActiveLayout(ctx context.Context) (models.Layout, error) {
	var row layoutRow
	query := r.db.Rebind(selectLayoutColumns + ` WHERE is_active = ? LIMIT 1`)
	if err := r.db.GetContext(ctx, &row, query, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Layout{}, models.ErrNotFound
		}
		return models.Layout{}, fmt.Errorf("select active layout: %w", err)
	}
	return row.toModel(), nil
}

// Elements возвращает элементы layout в порядке вставки.
func (r *LayoutRepository) Elements(ctx context.Context, layoutID string) ([]models.ElementRecord, error) {
	var rows []elementRow
	query := r.db.Rebind(selectElementColumns + ` WHERE layout_id = ? ORDER BY z_index ASC, created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, layoutID); err != nil {
		return nil, fmt.Errorf("select elements of %s: %w", layoutID, err)
	}

	out := make([]models.ElementRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// ActiveLayoutWithElements: активный layout вместе с элементами.
func (r *LayoutRepository) ActiveLayoutWithElements(ctx context.Context) (models.LayoutWithElements, error) {
	layout, err := r.ActiveLayout(ctx)
	if err != nil {
		return models.LayoutWithElements{}, err
	}
	elements, err := r.Elements(ctx, layout.ID)
	if err != nil {
		return models.LayoutWithElements{}, err
	}
	return models.LayoutWithElements{Layout: layout, Elements: elements}, nil
}

// Activate делает layout активным, снимая флаг с остальных.
func (r *LayoutRepository) Activate(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		tx.Rebind(`UPDATE table_layouts SET is_active = ? WHERE is_active = ?`),
		false, true,
	); err != nil {
		return fmt.Errorf("clear active layout: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE table_layouts SET is_active = ? WHERE id = ?`),
		true, id,
	)
	if err != nil {
		return fmt.Errorf("activate layout %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		err = models.ErrNotFound
		return err
	}
	return tx.Commit()
}

// DeleteLayout удаляет layout вместе с элементами.
func (r *LayoutRepository) DeleteLayout(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM layout_elements WHERE layout_id = ?`), id); err != nil {
		return fmt.Errorf("delete elements of %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM table_layouts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		err = models.ErrNotFound
		return err
	}
	return tx.Commit()
}
