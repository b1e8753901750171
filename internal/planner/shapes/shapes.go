package shapes

import (
	"errors"
	"fmt"
	"sort"

	"table-planner/internal/planner/models"

	"github.com/google/uuid"
)

// ============================================================
// Variants
// ============================================================

type Variant string

const (
	CircleTable    Variant = "circle-table"
	RectangleTable Variant = "rectangle-table"
	Counter        Variant = "counter"
	Decorative     Variant = "decorative"
)

var ErrUnknownVariant = errors.New("unknown element variant")

// Spec описывает геометрию и атрибуты варианта по умолчанию.
type Spec struct {
	Variant      Variant
	Type         models.ElementType
	Shape        models.Shape
	Radius       float64
	Width        float64
	Height       float64
	CornerRadius float64
	Capacity     int
	Label        string
	Style        models.Style
}

var tableStyle = models.Style{Fill: "#e2e8f0", Stroke: "#94a3b8", StrokeWidth: 2}

var specs = map[Variant]Spec{
	CircleTable: {
		Variant:  CircleTable,
		Type:     models.ElementTable,
		Shape:    models.ShapeCircle,
		Radius:   30,
		Capacity: 4,
		Label:    "Table",
		Style:    tableStyle,
	},
	RectangleTable: {
		Variant:  RectangleTable,
		Type:     models.ElementTable,
		Shape:    models.ShapeRectangle,
		Width:    60,
		Height:   60,
		Capacity: 4,
		Label:    "Table",
		Style:    tableStyle,
	},
	Counter: {
		Variant:      Counter,
		Type:         models.ElementCounter,
		Shape:        models.ShapeRectangle,
		Width:        200,
		Height:       40,
		CornerRadius: 8,
		Label:        "Counter",
		Style:        models.Style{Fill: "#cbd5e1", Stroke: "#64748b", StrokeWidth: 2},
	},
	Decorative: {
		Variant: Decorative,
		Type:    models.ElementFlowers,
		Shape:   models.ShapeCircle,
		Radius:  25,
		Label:   "Flowers",
		Style:   models.Style{Fill: "#bbf7d0", Stroke: "#16a34a", StrokeWidth: 1},
	},
}

// IsTable: участвует ли вариант в вместимости и рассадке.
func (s Spec) IsTable() bool {
	return s.Type == models.ElementTable
}

// Variants возвращает все варианты в стабильном порядке.
func Variants() []Variant {
	out := make([]Variant, 0, len(specs))
	for v := range specs {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func Get(v Variant) (Spec, bool) {
	s, ok := specs[v]
	return s, ok
}

// Lookup находит вариант по сохранённой паре element_type/shape.
func Lookup(t models.ElementType, shape models.Shape) (Spec, bool) {
	for _, s := range specs {
		if s.Type == t && s.Shape == shape {
			return s, true
		}
	}
	return Spec{}, false
}

// ============================================================
// Factory
// ============================================================

// New создаёт элемент варианта v в точке (0,0). seq: порядковый номер стола,
// используется только для имени столов.
func New(v Variant, seq int) (models.Element, error) {
	s, ok := specs[v]
	if !ok {
		return models.Element{}, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}

	name := s.Label
	if s.IsTable() {
		name = fmt.Sprintf("%s %d", s.Label, seq)
	}

	return models.Element{
		ID:           uuid.NewString(),
		Type:         s.Type,
		Shape:        s.Shape,
		Name:         name,
		Capacity:     s.Capacity,
		Width:        s.Width,
		Height:       s.Height,
		Radius:       s.Radius,
		CornerRadius: s.CornerRadius,
		Style:        s.Style,
	}, nil
}

// FromRecord восстанавливает элемент сцены из строки layout_elements.
// Радиус круга берётся из варианта, стиль: тоже.
func FromRecord(rec models.ElementRecord) models.Element {
	el := models.Element{
		ID:       rec.ID,
		Type:     rec.ElementType,
		Shape:    rec.Shape,
		Name:     rec.Name,
		Capacity: rec.Capacity,
		X:        float64(rec.PositionX),
		Y:        float64(rec.PositionY),
		Width:    float64(rec.Width),
		Height:   float64(rec.Height),
		Rotation: rec.Rotation,
	}

	s, ok := Lookup(rec.ElementType, rec.Shape)
	if !ok {
		return el
	}
	el.Style = s.Style
	el.CornerRadius = s.CornerRadius
	if s.Shape == models.ShapeCircle {
		el.Radius = s.Radius
		el.Width, el.Height = 0, 0
	}
	return el
}
