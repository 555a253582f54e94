package vision

import (
	"image"
	"math"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/domain/port"
)

// PlaneDecomposer режет полигон крыши по внутренним линиям (коньки, ендовы, рёбра)
type PlaneDecomposer struct {
	Detectors []port.LineDetector  // пробуются по порядку
	Splitter  port.PolygonSplitter // nil — разрезание недоступно, полигон не меняется

	MinOverlap      float64 // доля длины отрезка внутри полигона
	InteriorErode   float64 // отступ от контура при поиске линий
	SliverMinArea   float64
	SliverFraction  float64 // доля исходной площади
	AggressiveFrac  float64 // то же в агрессивном режиме
	SliverMaxAspect float64
}

// NewPlaneDecomposer создаёт декомпозер с параметрами по умолчанию
func NewPlaneDecomposer(splitter port.PolygonSplitter, detectors ...port.LineDetector) *PlaneDecomposer {
	if len(detectors) == 0 {
		detectors = DefaultLineDetectors()
	}
	return &PlaneDecomposer{
		Detectors:       detectors,
		Splitter:        splitter,
		MinOverlap:      0.6,
		InteriorErode:   4,
		SliverMinArea:   150,
		SliverFraction:  0.02,
		AggressiveFrac:  0.01,
		SliverMaxAspect: 25,
	}
}

// Decompose возвращает скаты полигона и линии, по которым он был разрезан.
// Без подходящих линий возвращает исходный полигон.
func (d *PlaneDecomposer) Decompose(img image.Image, ring geometry.Ring, region *entity.Mask, aggressive bool) ([]geometry.Ring, []geometry.Segment) {
	identity := []geometry.Ring{ring.Clone()}
	if d.Splitter == nil || len(ring) < 3 {
		return identity, nil
	}

	lines := d.validLines(img, ring, region, aggressive)
	if len(lines) == 0 {
		return identity, nil
	}

	limit := d.sliverArea(ring.Area(), aggressive)
	current := identity
	var applied []geometry.Segment
	for _, line := range lines {
		next := make([]geometry.Ring, 0, len(current)+1)
		cutSomething := false
		for _, poly := range current {
			pieces, err := d.Splitter.Split(poly, line)
			if err != nil {
				Logf("decompose: split failed, skipping cut: %v", err)
				next = append(next, poly)
				continue
			}
			if len(pieces) < 2 || d.anySliver(pieces, limit) {
				next = append(next, poly)
				continue
			}
			next = append(next, pieces...)
			cutSomething = true
		}
		if cutSomething {
			applied = append(applied, line)
		}
		current = next
	}

	if len(current) < 2 {
		return identity, nil
	}
	return current, applied
}

// validLines ищет линии внутри полигона, отбрасывает проходящие по краю и
// продлевает оставшиеся до границ рамки полигона.
func (d *PlaneDecomposer) validLines(img image.Image, ring geometry.Ring, region *entity.Mask, aggressive bool) []geometry.Segment {
	b := img.Bounds()
	interior := erodeMask(rasterizeRing(ring, b.Dx(), b.Dy()), d.InteriorErode)
	if region != nil && region.Width == interior.Width && region.Height == interior.Height {
		interior = interior.And(region)
	}
	if interior.Empty() {
		return nil
	}

	segments := d.detect(img, interior, aggressive)
	box := ring.Bounds().Pad(2)
	reach := 2 * box.Diagonal()

	var out []geometry.Segment
	for _, s := range segments {
		l := s.Length()
		if l == 0 {
			continue
		}
		inside, err := d.Splitter.InteriorLength(ring, s)
		if err != nil {
			Logf("decompose: overlap check failed: %v", err)
			continue
		}
		if inside < d.MinOverlap*l {
			continue
		}
		if clipped, ok := clipToBox(s.Extend(reach), box); ok {
			out = append(out, clipped)
		}
	}
	return out
}

func (d *PlaneDecomposer) detect(img image.Image, interior *entity.Mask, aggressive bool) []geometry.Segment {
	for _, det := range d.Detectors {
		segs, err := det.Detect(img, interior, aggressive)
		if err != nil {
			Logf("decompose: %s failed, falling back: %v", det.Name(), err)
			continue
		}
		return segs
	}
	return nil
}

func (d *PlaneDecomposer) sliverArea(original float64, aggressive bool) float64 {
	frac := d.SliverFraction
	if aggressive {
		frac = d.AggressiveFrac
	}
	return math.Max(d.SliverMinArea, frac*original)
}

func (d *PlaneDecomposer) anySliver(pieces []geometry.Ring, minArea float64) bool {
	for _, p := range pieces {
		if isSliver(p, minArea, d.SliverMaxAspect) {
			return true
		}
	}
	return false
}

// isSliver мелкий или вытянутый кусок
func isSliver(r geometry.Ring, minArea, maxAspect float64) bool {
	if len(r) < 3 || r.Area() < minArea {
		return true
	}
	rect := geometry.MinAreaRect(r)
	if len(rect) != 4 {
		return true
	}
	a, b := rect[0].Dist(rect[1]), rect[1].Dist(rect[2])
	short, long := math.Min(a, b), math.Max(a, b)
	return short == 0 || long/short > maxAspect
}

// clipToBox отсекает отрезок рамкой (Лианг-Барски)
func clipToBox(s geometry.Segment, box geometry.Box) (geometry.Segment, bool) {
	d := s.B.Sub(s.A)
	t0, t1 := 0.0, 1.0
	checks := [4][2]float64{
		{-d.X, s.A.X - box.MinX},
		{d.X, box.MaxX - s.A.X},
		{-d.Y, s.A.Y - box.MinY},
		{d.Y, box.MaxY - s.A.Y},
	}
	for _, c := range checks {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return geometry.Segment{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
	}
	if t0 >= t1 {
		return geometry.Segment{}, false
	}
	return geometry.Segment{A: s.A.Add(d.Scale(t0)), B: s.A.Add(d.Scale(t1))}, true
}
