package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Ring замкнутый контур; первая точка в конце не повторяется
type Ring []Point

// Clone возвращает независимую копию кольца
func (r Ring) Clone() Ring {
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// toOrb переводит кольцо в замкнутое orb.Ring (с повтором первой точки)
func (r Ring) toOrb() orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		out = append(out, p.toOrb())
	}
	if len(r) > 0 {
		out = append(out, r[0].toOrb())
	}
	return out
}

// Area площадь кольца в квадратных пикселях
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}
	return math.Abs(planar.Area(r.toOrb()))
}

// Perimeter длина замкнутого контура
func (r Ring) Perimeter() float64 {
	n := len(r)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += r[i].Dist(r[(i+1)%n])
	}
	return total
}

// Mean среднее арифметическое вершин
func (r Ring) Mean() Point {
	if len(r) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range r {
		sx += p.X
		sy += p.Y
	}
	k := 1 / float64(len(r))
	return Point{X: sx * k, Y: sy * k}
}

// Centroid центр масс площади; для вырожденных колец среднее вершин
func (r Ring) Centroid() Point {
	if r.Area() < 1e-9 {
		return r.Mean()
	}
	c, _ := planar.CentroidArea(r.toOrb())
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return r.Mean()
	}
	return Point{X: c[0], Y: c[1]}
}

// Bounds ось-ориентированная рамка кольца
func (r Ring) Bounds() Box {
	if len(r) == 0 {
		return Box{}
	}
	return boxFromOrb(r.toOrb().Bound())
}

// Translate сдвигает все вершины на вектор d, возвращая новое кольцо
func (r Ring) Translate(d Point) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = p.Add(d)
	}
	return out
}

// Scale масштабирует кольцо относительно начала координат
func (r Ring) Scale(k float64) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = p.Scale(k)
	}
	return out
}

// Edges рёбра кольца; ребро i идёт от вершины i к вершине i+1
func (r Ring) Edges() []Segment {
	n := len(r)
	if n < 2 {
		return nil
	}
	out := make([]Segment, n)
	for i := 0; i < n; i++ {
		out[i] = Segment{A: r[i], B: r[(i+1)%n]}
	}
	return out
}

// IsSimple проверяет, что несмежные рёбра кольца не пересекаются
func (r Ring) IsSimple() bool {
	n := len(r)
	if n < 3 {
		return false
	}
	edges := r.Edges()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// соседние рёбра делят вершину
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(edges[i], edges[j]) {
				return false
			}
		}
	}
	return true
}

// InteriorAnglesDeg внутренние углы при вершинах в градусах
func (r Ring) InteriorAnglesDeg() []float64 {
	n := len(r)
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		prev := r[(i-1+n)%n]
		next := r[(i+1)%n]
		out = append(out, angleAt(prev, r[i], next))
	}
	return out
}

// angleAt угол abc при вершине b
func angleAt(a, b, c Point) float64 {
	ab := a.Sub(b)
	cb := c.Sub(b)
	cos := (ab.X*cb.X + ab.Y*cb.Y) / (ab.Norm()*cb.Norm() + 1e-6)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(p, q, r Point) bool {
	return math.Min(p.X, r.X) <= q.X && q.X <= math.Max(p.X, r.X) &&
		math.Min(p.Y, r.Y) <= q.Y && q.Y <= math.Max(p.Y, r.Y)
}

func sign(v float64) int {
	const eps = 1e-9
	switch {
	case v > eps:
		return 1
	case v < -eps:
		return -1
	default:
		return 0
	}
}

// segmentsIntersect проверка пересечения двух отрезков, включая касание
func segmentsIntersect(s1, s2 Segment) bool {
	d1 := sign(cross(s2.A, s2.B, s1.A))
	d2 := sign(cross(s2.A, s2.B, s1.B))
	d3 := sign(cross(s1.A, s1.B, s2.A))
	d4 := sign(cross(s1.A, s1.B, s2.B))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	if d1 == 0 && onSegment(s2.A, s1.A, s2.B) {
		return true
	}
	if d2 == 0 && onSegment(s2.A, s1.B, s2.B) {
		return true
	}
	if d3 == 0 && onSegment(s1.A, s2.A, s1.B) {
		return true
	}
	if d4 == 0 && onSegment(s1.A, s2.B, s1.B) {
		return true
	}
	return false
}
