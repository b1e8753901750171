package models

import "time"

// ============================================================
// Layout & Elements
// ============================================================

type ElementType string

const (
	ElementTable   ElementType = "table"
	ElementCounter ElementType = "counter"
	ElementFlowers ElementType = "flowers"
)

type Shape string

const (
	ShapeCircle    Shape = "circle"
	ShapeRectangle Shape = "rectangle"
)

type Layout struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

// ElementRecord: строка layout_elements. Координаты и размеры целые.
type ElementRecord struct {
	ID          string      `json:"id"`
	LayoutID    string      `json:"layout_id"`
	ElementType ElementType `json:"element_type"`
	Shape       Shape       `json:"shape"`
	PositionX   int         `json:"position_x"`
	PositionY   int         `json:"position_y"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Rotation    int         `json:"rotation"`
	Name        string      `json:"name"`
	Capacity    int         `json:"capacity"`
	// ZIndex: позиция элемента в сцене, задаёт порядок отрисовки и выбора.
	ZIndex      int         `json:"z_index"`
	CreatedAt   time.Time   `json:"created_at"`
}

type LayoutWithElements struct {
	Layout
	Elements []ElementRecord `json:"elements"`
}

// ============================================================
// Scene elements
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
}

// Element: размещённый на сцене объект. Type и Shape вместе образуют тег варианта;
// элемент с пустым тегом не сохраняется.
//
// X, Y: левый верхний угол неповёрнутого bounding box, поворот вокруг его центра.
// Для круга используется Radius, Width/Height игнорируются.
type Element struct {
	ID           string      `json:"id"`
	Type         ElementType `json:"element_type"`
	Shape        Shape       `json:"shape"`
	Name         string      `json:"name"`
	Capacity     int         `json:"capacity"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Width        float64     `json:"width,omitempty"`
	Height       float64     `json:"height,omitempty"`
	Radius       float64     `json:"radius,omitempty"`
	CornerRadius float64     `json:"corner_radius,omitempty"`
	Rotation     int         `json:"rotation"`
	Style        Style       `json:"style"`
}

// Tagged сообщает, несёт ли элемент распознаваемый тег типа и формы.
func (e Element) Tagged() bool {
	switch e.Type {
	case ElementTable, ElementCounter, ElementFlowers:
	default:
		return false
	}
	return e.Shape == ShapeCircle || e.Shape == ShapeRectangle
}

func (e Element) IsTable() bool {
	return e.Type == ElementTable
}

// Size возвращает размеры bounding box.
func (e Element) Size() (float64, float64) {
	if e.Shape == ShapeCircle {
		return 2 * e.Radius, 2 * e.Radius
	}
	return e.Width, e.Height
}

func (e Element) Center() Point {
	w, h := e.Size()
	return Point{X: e.X + w/2, Y: e.Y + h/2}
}
