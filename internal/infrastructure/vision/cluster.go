package vision

import (
	"math"

	"roof-measure/internal/domain/geometry"
)

// distEps расстояния до точки интереса ближе этого считаются равными
const distEps = 1e-6

// ClusterFilter отбрасывает полигоны соседних построек
type ClusterFilter struct {
	PadFraction    float64 // отступ рамки главного полигона от большей стороны кадра
	RadiusFraction float64 // радиус вокруг точки интереса от меньшей стороны кадра
}

// NewClusterFilter создаёт фильтр с параметрами по умолчанию
func NewClusterFilter() *ClusterFilter {
	return &ClusterFilter{PadFraction: 0.04, RadiusFraction: 0.35}
}

// Filter оставляет главный полигон (ближайший к focus, при равенстве — крупнейший)
// и те, что соседствуют с ним или лежат рядом с focus. Главный идёт первым,
// остальные в исходном порядке. focus == nil означает центр кадра.
func (f *ClusterFilter) Filter(rings []geometry.Ring, focus *geometry.Point, w, h int) []geometry.Ring {
	if len(rings) == 0 {
		return nil
	}

	center := geometry.Pt(float64(w)/2, float64(h)/2)
	if focus != nil {
		center = *focus
	}

	primary := 0
	bestDist, bestArea := math.Inf(1), 0.0
	for i, r := range rings {
		d := r.Centroid().Dist(center)
		a := r.Area()
		if d < bestDist-distEps || (math.Abs(d-bestDist) <= distEps && a > bestArea) {
			primary, bestDist, bestArea = i, d, a
		}
	}

	pad := f.PadFraction * float64(maxInt(w, h))
	radius := f.RadiusFraction * float64(minInt(w, h))
	box := rings[primary].Bounds().Pad(pad)

	out := []geometry.Ring{rings[primary].Clone()}
	for i, r := range rings {
		if i == primary {
			continue
		}
		if r.Bounds().Intersects(box) || r.Centroid().Dist(center) <= radius {
			out = append(out, r.Clone())
		}
	}
	return out
}
