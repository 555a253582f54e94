package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// ConvexHull выпуклая оболочка (монотонная цепочка Эндрю).
// Коллинеарные точки на рёбрах оболочки отбрасываются.
func ConvexHull(points []Point) Ring {
	if len(points) < 3 {
		return Ring(points).Clone()
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X == pts[j].X {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})

	hull := make([]Point, 0, 2*len(pts))
	// нижняя цепочка
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// верхняя цепочка
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return Ring(hull[:len(hull)-1])
}

// MinAreaRect прямоугольник минимальной площади, описанный вокруг точек
// (вращающиеся калиперы по рёбрам выпуклой оболочки).
func MinAreaRect(points []Point) Ring {
	hull := ConvexHull(points)
	if len(hull) < 3 {
		return nil
	}

	bestArea := math.Inf(1)
	var best Ring
	for _, e := range hull.Edges() {
		u := e.Direction()
		if u == (Point{}) {
			continue
		}
		v := Point{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := p.X*u.X + p.Y*u.Y
			pv := p.X*v.X + p.Y*v.Y
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			corner := func(a, b float64) Point {
				return u.Scale(a).Add(v.Scale(b))
			}
			best = Ring{
				corner(minU, minV),
				corner(maxU, minV),
				corner(maxU, maxV),
				corner(minU, maxV),
			}
		}
	}
	return best
}

// ApproxPoly упрощает замкнутый контур алгоритмом Дугласа-Пекера с
// допуском epsilon. Начальная вершина удаляется, если она лежит на прямой
// между соседями в пределах допуска.
func ApproxPoly(r Ring, epsilon float64) Ring {
	if len(r) < 4 {
		return r.Clone()
	}

	ls := make(orb.LineString, 0, len(r)+1)
	for _, p := range r {
		ls = append(ls, p.toOrb())
	}
	ls = append(ls, r[0].toOrb())

	simplified, ok := simplify.DouglasPeucker(epsilon).Simplify(ls.Clone()).(orb.LineString)
	if !ok || len(simplified) < 4 {
		return r.Clone()
	}

	out := make(Ring, 0, len(simplified)-1)
	for _, p := range simplified[:len(simplified)-1] {
		out = append(out, Point{X: p[0], Y: p[1]})
	}

	if len(out) > 3 {
		prev, next := out[len(out)-1], out[1]
		if distToLine(out[0], Segment{A: prev, B: next}) <= epsilon {
			out = out[1:]
		}
	}
	return out
}

// distToLine расстояние от точки до прямой через отрезок
func distToLine(p Point, s Segment) float64 {
	l := s.Length()
	if l == 0 {
		return p.Dist(s.A)
	}
	return math.Abs(cross(s.A, s.B, p)) / l
}
