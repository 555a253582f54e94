package vision

import (
	"errors"
	"fmt"

	"github.com/peterstace/simplefeatures/geom"

	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/domain/port"
)

// minPieceArea куски меньше этой площади считаются шумом пересечения
const minPieceArea = 1e-6

// GeomSplitter точное разрезание полигонов через simplefeatures
type GeomSplitter struct{}

// NewGeomSplitter создаёт разрезатель
func NewGeomSplitter() *GeomSplitter {
	return &GeomSplitter{}
}

// Split режет полигон прямой через cut: пересекает его с двумя полуплоскостями.
// Если прямая не проходит через внутренность, возвращает исходный полигон.
func (s *GeomSplitter) Split(ring geometry.Ring, cut geometry.Segment) ([]geometry.Ring, error) {
	if len(ring) < 3 {
		return nil, errors.New("ring has fewer than 3 vertices")
	}
	dir := cut.Direction()
	if dir == (geometry.Point{}) {
		return nil, errors.New("degenerate cut")
	}

	poly, err := toPolygon(ring)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}

	b := ring.Bounds()
	reach := 4*b.Diagonal() + cut.A.Dist(b.Center()) + 1
	normal := geometry.Pt(-dir.Y, dir.X)

	var pieces []geometry.Ring
	for _, side := range []float64{1, -1} {
		half, err := toPolygon(halfPlane(cut.A, dir, normal.Scale(side), reach))
		if err != nil {
			return nil, fmt.Errorf("half-plane: %w", err)
		}
		part, err := geom.Intersection(poly, half)
		if err != nil {
			return nil, fmt.Errorf("intersection: %w", err)
		}
		pieces = append(pieces, polygonsOf(part)...)
	}

	if len(pieces) < 2 {
		return []geometry.Ring{ring.Clone()}, nil
	}
	return pieces, nil
}

// InteriorLength длина части отрезка внутри полигона
func (s *GeomSplitter) InteriorLength(ring geometry.Ring, seg geometry.Segment) (float64, error) {
	if seg.Length() == 0 {
		return 0, nil
	}
	poly, err := toPolygon(ring)
	if err != nil {
		return 0, fmt.Errorf("polygon: %w", err)
	}
	line := geom.NewLineString(geom.NewSequence([]float64{seg.A.X, seg.A.Y, seg.B.X, seg.B.Y}, geom.DimXY))
	inside, err := geom.Intersection(poly, line.AsGeometry())
	if err != nil {
		return 0, fmt.Errorf("intersection: %w", err)
	}
	return inside.Length(), nil
}

// halfPlane большой квадрат по одну сторону прямой
func halfPlane(origin, dir, normal geometry.Point, reach float64) geometry.Ring {
	a := origin.Sub(dir.Scale(reach))
	b := origin.Add(dir.Scale(reach))
	return geometry.Ring{a, b, b.Add(normal.Scale(reach)), a.Add(normal.Scale(reach))}
}

// polygonsOf собирает полигоны из результата пересечения, отбрасывая линии и точки
func polygonsOf(g geom.Geometry) []geometry.Ring {
	var out []geometry.Ring
	switch g.Type() {
	case geom.TypePolygon:
		p, _ := g.AsPolygon()
		if r := ringOf(p); r != nil {
			out = append(out, r)
		}
	case geom.TypeMultiPolygon:
		mp, _ := g.AsMultiPolygon()
		for i := 0; i < mp.NumPolygons(); i++ {
			if r := ringOf(mp.PolygonN(i)); r != nil {
				out = append(out, r)
			}
		}
	case geom.TypeGeometryCollection:
		gc, _ := g.AsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, polygonsOf(gc.GeometryN(i))...)
		}
	}
	return out
}

func ringOf(p geom.Polygon) geometry.Ring {
	seq := p.ExteriorRing().Coordinates()
	n := seq.Length()
	if n < 4 {
		return nil
	}
	r := make(geometry.Ring, 0, n-1)
	for i := 0; i < n-1; i++ {
		xy := seq.GetXY(i)
		r = append(r, geometry.Pt(xy.X, xy.Y))
	}
	if len(r) < 3 || r.Area() < minPieceArea {
		return nil
	}
	return r
}

// toPolygon строит проверенный полигон; внешнее кольцо замыкается повтором первой точки
func toPolygon(r geometry.Ring) (geom.Geometry, error) {
	if len(r) < 3 {
		return geom.Geometry{}, errors.New("ring has fewer than 3 vertices")
	}
	coords := make([]float64, 0, 2*len(r)+2)
	for i := 0; i <= len(r); i++ {
		p := r[i%len(r)]
		coords = append(coords, p.X, p.Y)
	}
	exterior := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{exterior})
	if err := poly.Validate(); err != nil {
		return geom.Geometry{}, err
	}
	return poly.AsGeometry(), nil
}

var _ port.PolygonSplitter = (*GeomSplitter)(nil)
