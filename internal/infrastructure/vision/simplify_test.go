package vision

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

func requireRightAngles(t *testing.T, r geometry.Ring) {
	t.Helper()
	for _, a := range r.InteriorAnglesDeg() {
		require.InDelta(t, 90, a, 0.01)
	}
}

func TestPolygonSimplifier_NearSquareBecomesMinAreaRect(t *testing.T) {
	// слегка перекошенный четырёхугольник: углы в пределах 20° от прямого
	quad := geometry.Ring{geometry.Pt(50, 50), geometry.Pt(150, 55), geometry.Pt(148, 150), geometry.Pt(52, 146)}
	m := rasterizeRing(quad, 200, 200)

	rings := NewPolygonSimplifier().Simplify(m)
	require.Len(t, rings, 1)

	got := rings[0]
	require.Len(t, got, 4)
	requireRightAngles(t, got)
	require.GreaterOrEqual(t, got.Area(), 0.95*quad.Area())

	// сырое упрощение дало бы углы около 86°, а не прямые
	raw := geometry.ApproxPoly(quad, 0.02*quad.Perimeter())
	require.Greater(t, math.Abs(raw.InteriorAnglesDeg()[0]-90), 1.0)
}

func TestPolygonSimplifier_AxisAlignedSquare(t *testing.T) {
	m := boxMask(200, 200, image.Rect(40, 40, 140, 140))
	rings := NewPolygonSimplifier().Simplify(m)
	require.Len(t, rings, 1)
	require.Len(t, rings[0], 4)
	require.InDelta(t, 99*99, rings[0].Area(), 1e-6)
	requireRightAngles(t, rings[0])
}

func TestPolygonSimplifier_Triangle(t *testing.T) {
	m := rasterizeRing(geometry.Ring{geometry.Pt(40, 160), geometry.Pt(160, 160), geometry.Pt(100, 40)}, 200, 200)
	rings := NewPolygonSimplifier().Simplify(m)
	require.Len(t, rings, 1)
	require.Len(t, rings[0], 3)
	require.InEpsilon(t, 7200, rings[0].Area(), 0.06)
}

func TestPolygonSimplifier_LShapeUsesHull(t *testing.T) {
	m := boxMask(200, 200, image.Rect(40, 40, 160, 80))
	legs := boxMask(200, 200, image.Rect(40, 40, 80, 160))
	for i, v := range legs.Pix {
		if v != entity.MaskOff {
			m.Pix[i] = v
		}
	}

	rings := NewPolygonSimplifier().Simplify(m)
	require.Len(t, rings, 1)
	r := rings[0]
	require.GreaterOrEqual(t, len(r), 3)
	require.LessOrEqual(t, len(r), 6)
	require.True(t, r.IsSimple())
	// оболочка покрывает всю букву L
	require.GreaterOrEqual(t, r.Area(), float64(m.Count())*0.9)
}

func TestPolygonSimplifier_DropsSmallAndEmpty(t *testing.T) {
	s := NewPolygonSimplifier()
	require.Empty(t, s.Simplify(nil))
	require.Empty(t, s.Simplify(entity.NewMask(50, 50)))
	require.Empty(t, s.Simplify(boxMask(200, 200, image.Rect(10, 10, 50, 50))))
}

func TestPolygonSimplifier_OutputValidOnSeveralComponents(t *testing.T) {
	m := boxMask(300, 300, image.Rect(20, 20, 120, 100))
	tri := rasterizeRing(geometry.Ring{geometry.Pt(150, 250), geometry.Pt(280, 250), geometry.Pt(200, 150)}, 300, 300)
	for i, v := range tri.Pix {
		if v != entity.MaskOff {
			m.Pix[i] = v
		}
	}

	rings := NewPolygonSimplifier().Simplify(m)
	require.Len(t, rings, 2)
	for _, r := range rings {
		require.GreaterOrEqual(t, len(r), 3)
		require.True(t, r.IsSimple())
		require.GreaterOrEqual(t, r.Area(), MinRingArea)
	}
}
