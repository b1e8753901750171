package scene

import (
	"sync"

	"table-planner/internal/planner/models"
	"table-planner/internal/planner/shapes"
)

// ============================================================
// Scene Surface
// ============================================================

const RotateStep = 45

// DefaultOrigin: точка, в которую ставится новый элемент.
var DefaultOrigin = models.Point{X: 100, Y: 100}

// Scene хранит размещённые элементы (порядок = z-order) и текущее выделение.
// Все операции над отсутствующим выделением: no-op.
type Scene struct {
	mu       sync.RWMutex
	elements []models.Element
	selected string
	tableSeq int
}

func New() *Scene {
	return &Scene{}
}

// Add создаёт элемент варианта в DefaultOrigin и выделяет его.
func (s *Scene) Add(v shapes.Variant) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := shapes.Get(v)
	if !ok {
		return shapes.New(v, 0)
	}

	seq := s.tableSeq
	if spec.IsTable() {
		seq++
	}

	el, err := shapes.New(v, seq)
	if err != nil {
		return models.Element{}, err
	}
	el.X = DefaultOrigin.X
	el.Y = DefaultOrigin.Y

	s.tableSeq = seq
	s.elements = append(s.elements, el)
	s.selected = el.ID
	return el, nil
}

// Insert кладёт готовый элемент на сцену без выделения.
func (s *Scene) Insert(el models.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el.Rotation = normalizeDegrees(el.Rotation)
	if el.IsTable() {
		s.tableSeq++
	}
	s.elements = append(s.elements, el)
}

// Select выделяет верхний элемент под точкой. Промах снимает выделение.
func (s *Scene) Select(p models.Point) (models.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.elements) - 1; i >= 0; i-- {
		if Contains(s.elements[i], p) {
			s.selected = s.elements[i].ID
			return s.elements[i], true
		}
	}
	s.selected = ""
	return models.Element{}, false
}

// Move меняет позицию элемента в памяти. Сохранение: только через SaveLayout.
func (s *Scene) Move(id string, p models.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.elements[i].X = p.X
	s.elements[i].Y = p.Y
	return true
}

func (s *Scene) MoveSelected(p models.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.selected)
	if i < 0 {
		return false
	}
	s.elements[i].X = p.X
	s.elements[i].Y = p.Y
	return true
}

// Rotate поворачивает выделенный элемент на RotateStep, 360 -> 0.
func (s *Scene) Rotate() (models.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.selected)
	if i < 0 {
		return models.Element{}, false
	}
	s.elements[i].Rotation = normalizeDegrees(s.elements[i].Rotation + RotateStep)
	return s.elements[i], true
}

// Delete удаляет выделенный элемент и снимает выделение.
func (s *Scene) Delete() (models.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.selected)
	if i < 0 {
		return models.Element{}, false
	}
	removed := s.elements[i]
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	s.selected = ""
	return removed, true
}

func (s *Scene) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

func (s *Scene) Selected() (models.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(s.selected)
	if i < 0 {
		return models.Element{}, false
	}
	return s.elements[i], true
}

// Elements возвращает копию списка элементов.
func (s *Scene) Elements() []models.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Element, len(s.elements))
	copy(out, s.elements)
	return out
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

func (s *Scene) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}
