// Package geometry содержит плоские примитивы в пиксельных координатах:
// точки, отрезки, кольца (замкнутые полигоны без повтора первой точки) и
// прямоугольники-рамки. Начало координат в левом верхнем углу кадра.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Point точка на плоскости изображения
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt сокращённый конструктор точки
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add возвращает сумму векторов
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub возвращает разность векторов
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale умножает вектор на коэффициент
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Dist возвращает евклидово расстояние до другой точки
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Norm длина вектора
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

func (p Point) toOrb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Segment отрезок между двумя точками
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Seg сокращённый конструктор отрезка
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{A: Pt(x1, y1), B: Pt(x2, y2)}
}

// Length длина отрезка
func (s Segment) Length() float64 {
	return s.A.Dist(s.B)
}

// Midpoint середина отрезка
func (s Segment) Midpoint() Point {
	return Point{X: (s.A.X + s.B.X) / 2, Y: (s.A.Y + s.B.Y) / 2}
}

// AngleDeg направление отрезка в градусах, (-180, 180]
func (s Segment) AngleDeg() float64 {
	return math.Atan2(s.B.Y-s.A.Y, s.B.X-s.A.X) * 180 / math.Pi
}

// Direction единичный вектор направления; для вырожденного отрезка нулевой
func (s Segment) Direction() Point {
	d := s.B.Sub(s.A)
	n := d.Norm()
	if n == 0 {
		return Point{}
	}
	return d.Scale(1 / n)
}

// Extend продлевает отрезок в обе стороны на by пикселей
func (s Segment) Extend(by float64) Segment {
	d := s.Direction()
	return Segment{A: s.A.Sub(d.Scale(by)), B: s.B.Add(d.Scale(by))}
}

// Box ось-ориентированная рамка
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func boxFromOrb(b orb.Bound) Box {
	return Box{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

func (b Box) toOrb() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}

// Width ширина рамки
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height высота рамки
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Diagonal длина диагонали
func (b Box) Diagonal() float64 { return math.Hypot(b.Width(), b.Height()) }

// Center центр рамки
func (b Box) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Pad расширяет рамку на d во все стороны
func (b Box) Pad(d float64) Box {
	return boxFromOrb(b.toOrb().Pad(d))
}

// Intersects проверяет пересечение рамок (касание считается пересечением)
func (b Box) Intersects(o Box) bool {
	return b.toOrb().Intersects(o.toOrb())
}
