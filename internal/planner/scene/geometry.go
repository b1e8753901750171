package scene

import (
	"math"

	"table-planner/internal/planner/models"
)

// ============================================================
// Hit testing
// ============================================================

// Contains проверяет попадание точки в геометрию элемента с учётом поворота.
func Contains(e models.Element, p models.Point) bool {
	c := e.Center()
	local := rotateAround(p, c, -float64(e.Rotation))

	if e.Shape == models.ShapeCircle {
		dx := local.X - c.X
		dy := local.Y - c.Y
		return dx*dx+dy*dy <= e.Radius*e.Radius
	}

	w, h := e.Size()
	return math.Abs(local.X-c.X) <= w/2 && math.Abs(local.Y-c.Y) <= h/2
}

func rotateAround(p, c models.Point, deg float64) models.Point {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	sin := math.Sin(rad)
	cos := math.Cos(rad)

	dx := p.X - c.X
	dy := p.Y - c.Y
	return models.Point{
		X: c.X + dx*cos - dy*sin,
		Y: c.Y + dx*sin + dy*cos,
	}
}

// normalizeDegrees приводит угол к диапазону 0..359.
func normalizeDegrees(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
