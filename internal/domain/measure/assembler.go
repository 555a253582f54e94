// Package measure переводит пиксельную геометрию скатов в физические величины.
package measure

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

// Коэффициенты перевода
const (
	SqFtPerSqM    = 10.7639
	FtPerM        = 3.28084
	SqFtPerSquare = 100.0
)

// RotationBins число корзин гистограммы направлений на 90°
const RotationBins = 18

// Assembly скаты, итоги и оценка поворота
type Assembly struct {
	Planes      []entity.Plane
	Totals      entity.Totals
	RotationDeg *float64
}

// Assemble строит скаты P1, P2, ... в порядке колец и суммирует показатели.
// pitch — подъём на 12 единиц заложения; неположительный заменяется DefaultPitch.
// lines — внутренние линии для оценки поворота; без них поворот не оценивается.
func Assemble(rings []geometry.Ring, gsd, pitch float64, lines []geometry.Segment) Assembly {
	if pitch <= 0 {
		pitch = entity.DefaultPitch
	}
	slope := 1 / math.Cos(math.Atan(pitch/12))

	out := Assembly{Planes: make([]entity.Plane, 0, len(rings))}
	for i, r := range rings {
		plan := r.Area() * gsd * gsd * SqFtPerSqM
		perimeter := r.Perimeter() * gsd * FtPerM

		edges := make([]entity.Edge, len(r))
		for e := range edges {
			edges[e] = entity.Edge{I: e, Type: entity.EdgeUnknown}
		}

		out.Planes = append(out.Planes, entity.Plane{
			ID:             fmt.Sprintf("P%d", i+1),
			Pitch:          pitch,
			PlanAreaFt2:    plan,
			SurfaceAreaFt2: plan * slope,
			PerimeterFt:    perimeter,
			Polygon:        r.Clone(),
			Edges:          edges,
		})

		out.Totals.PlanAreaFt2 += plan
		out.Totals.SurfaceAreaFt2 += plan * slope
		out.Totals.PerimeterFt += perimeter
	}
	out.Totals.Squares = out.Totals.SurfaceAreaFt2 / SqFtPerSquare

	if rot, ok := DominantRotation(lines); ok {
		out.RotationDeg = &rot
	}
	return out
}

// DominantRotation угол, на который нужно повернуть снимок, чтобы выровнять
// преобладающее направление линий по осям: минус центр модальной корзины
// гистограммы направлений, свёрнутых в [0, 90).
func DominantRotation(lines []geometry.Segment) (float64, bool) {
	angles := make([]float64, 0, len(lines))
	for _, l := range lines {
		if l.Length() == 0 {
			continue
		}
		a := math.Mod(l.AngleDeg(), 90)
		if a < 0 {
			a += 90
		}
		if a >= 90 {
			a = 0
		}
		angles = append(angles, a)
	}
	if len(angles) == 0 {
		return 0, false
	}
	sort.Float64s(angles)

	dividers := floats.Span(make([]float64, RotationBins+1), 0, 90)
	counts := stat.Histogram(nil, dividers, angles, nil)
	mode := floats.MaxIdx(counts)

	width := 90.0 / RotationBins
	return -(float64(mode) + 0.5) * width, true
}
