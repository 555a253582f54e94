package vision

import (
	"math"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

// MinRingArea минимальная площадь полигона в пикселях
const MinRingArea = 2500.0

// PolygonSimplifier превращает маску в набор чистых полигонов с малым числом вершин
type PolygonSimplifier struct {
	MinArea         float64
	Tolerance       float64 // доля периметра для Дугласа-Пекера
	RightAngleTol   float64 // допуск прямого угла в градусах
	MaxHullVertices int
}

// NewPolygonSimplifier создаёт упроститель с параметрами по умолчанию
func NewPolygonSimplifier() *PolygonSimplifier {
	return &PolygonSimplifier{
		MinArea:         MinRingArea,
		Tolerance:       0.02,
		RightAngleTol:   20,
		MaxHullVertices: 6,
	}
}

// Simplify возвращает по одному полигону на каждую значимую связную область.
// Порядок совпадает с построчным обходом маски.
func (s *PolygonSimplifier) Simplify(m *entity.Mask) []geometry.Ring {
	if m == nil || m.Empty() {
		return nil
	}

	comps, labels := labelComponents(m)
	out := make([]geometry.Ring, 0, len(comps))
	for _, c := range comps {
		// площадь контура не больше числа пикселей, отсекаем заведомо мелкие
		if float64(c.count) < s.MinArea {
			continue
		}
		contour := traceOuterContour(labels, m.Width, m.Height, c)
		if len(contour) < 3 || contour.Area() < s.MinArea {
			continue
		}

		ring := s.classify(contour)
		if len(ring) < 3 || !ring.IsSimple() || ring.Area() < s.MinArea {
			continue
		}
		out = append(out, ring)
	}
	return out
}

// classify выбирает прямоугольник, треугольник или упрощённую оболочку
func (s *PolygonSimplifier) classify(contour geometry.Ring) geometry.Ring {
	approx := geometry.ApproxPoly(contour, s.Tolerance*contour.Perimeter())

	switch {
	case len(approx) == 4 && s.nearlyRectangular(approx):
		return geometry.MinAreaRect(contour)
	case len(approx) == 3:
		return approx
	}

	hull := geometry.ConvexHull(contour)
	simplified := geometry.ApproxPoly(hull, s.Tolerance*hull.Perimeter())
	if len(simplified) > s.MaxHullVertices {
		return geometry.MinAreaRect(contour)
	}
	return simplified
}

func (s *PolygonSimplifier) nearlyRectangular(r geometry.Ring) bool {
	for _, a := range r.InteriorAnglesDeg() {
		if math.Abs(a-90) > s.RightAngleTol {
			return false
		}
	}
	return true
}
