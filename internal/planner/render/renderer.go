package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/shapes"
)

// ============================================================
// Renderer
// ============================================================

const (
	CanvasWidth  = 800
	CanvasHeight = 600
	canvasFill   = "#f8fafc"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render собирает SVG плана зала из сохранённого layout.
func (r *Renderer) Render(layout *models.LayoutWithElements) (string, error) {
	if layout == nil {
		return "", fmt.Errorf("layout is nil")
	}

	elements := make([]models.Element, 0, len(layout.Elements))
	for _, rec := range layout.Elements {
		elements = append(elements, shapes.FromRecord(rec))
	}

	width, height := r.canvasSize(elements)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(`  <title>%s</title>`, html.EscapeString(layout.Name)))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(`  <rect width="100%%" height="100%%" fill="%s" />`, canvasFill))
	builder.WriteString("\n")

	for _, el := range elements {
		builder.WriteString("  ")
		builder.WriteString(r.renderElement(el))
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// canvasSize: 800x600, либо больше, если элементы выходят за границы.
func (r *Renderer) canvasSize(elements []models.Element) (float64, float64) {
	width, height := float64(CanvasWidth), float64(CanvasHeight)

	for _, el := range elements {
		w, h := el.Size()
		c := el.Center()
		for _, p := range rectanglePoints(c.X, c.Y, w, h, float64(el.Rotation)) {
			width = math.Max(width, math.Ceil(p.X))
			height = math.Max(height, math.Ceil(p.Y))
		}
	}
	return width, height
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderElement(el models.Element) string {
	c := el.Center()

	var shape string
	if el.Shape == models.ShapeCircle {
		shape = fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="%s" />`,
			formatFloat(c.X), formatFloat(c.Y), formatFloat(el.Radius),
			el.Style.Fill, el.Style.Stroke, formatFloat(el.Style.StrokeWidth))
	} else {
		shape = fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s" />`,
			formatFloat(el.X), formatFloat(el.Y), formatFloat(el.Width), formatFloat(el.Height),
			formatFloat(el.CornerRadius),
			el.Style.Fill, el.Style.Stroke, formatFloat(el.Style.StrokeWidth))
	}

	var g strings.Builder
	g.WriteString(fmt.Sprintf(`<g id="%s" data-type="%s"`, html.EscapeString(el.ID), el.Type))
	if el.Rotation != 0 {
		g.WriteString(fmt.Sprintf(` transform="rotate(%d %s %s)"`, el.Rotation, formatFloat(c.X), formatFloat(c.Y)))
	}
	g.WriteString(">")
	g.WriteString(shape)
	if label := elementLabel(el); label != "" {
		g.WriteString(fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="11" fill="#334155">%s</text>`,
			formatFloat(c.X), formatFloat(c.Y), html.EscapeString(label)))
	}
	g.WriteString("</g>")
	return g.String()
}

func elementLabel(el models.Element) string {
	if el.IsTable() && el.Capacity > 0 {
		return fmt.Sprintf("%s (%d)", el.Name, el.Capacity)
	}
	return el.Name
}

// ============================================================
// Geometry helpers
// ============================================================

func rectanglePoints(cx, cy, width, height, rotationDeg float64) []models.Point {
	halfW := width / 2
	halfH := height / 2

	points := []models.Point{
		{X: cx - halfW, Y: cy - halfH},
		{X: cx + halfW, Y: cy - halfH},
		{X: cx + halfW, Y: cy + halfH},
		{X: cx - halfW, Y: cy + halfH},
	}

	if rotationDeg == 0 {
		return points
	}

	rad := rotationDeg * math.Pi / 180
	sin := math.Sin(rad)
	cos := math.Cos(rad)

	for i, p := range points {
		dx := p.X - cx
		dy := p.Y - cy
		points[i] = models.Point{
			X: cx + dx*cos - dy*sin,
			Y: cy + dx*sin + dy*cos,
		}
	}

	return points
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
