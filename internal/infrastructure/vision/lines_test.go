package vision

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

func foldDeg(a float64) float64 {
	a = math.Mod(a, 180)
	if a < 0 {
		a += 180
	}
	return a
}

func TestHoughDetector_FindsDiagonalRidge(t *testing.T) {
	img := flatImage(200, 200, color.White)
	// тёмная полоса по диагонали
	for i := 20; i < 180; i++ {
		for d := -1; d <= 1; d++ {
			img.Set(i+d, i, color.Black)
		}
	}
	region := boxMask(200, 200, image.Rect(0, 0, 200, 200))

	segs, err := NewHoughDetector().Detect(img, region, false)
	require.NoError(t, err)
	require.NotEmpty(t, segs)

	best := segs[0]
	require.InDelta(t, 45, foldDeg(best.AngleDeg()), 3)
	require.Greater(t, best.Length(), 100.0)
}

func TestHoughDetector_FlatImageHasNoLines(t *testing.T) {
	img := flatImage(120, 120, grey)
	segs, err := NewHoughDetector().Detect(img, boxMask(120, 120, image.Rect(0, 0, 120, 120)), true)
	require.NoError(t, err)
	require.Empty(t, segs)
}

func TestHoughDetector_RespectsRegion(t *testing.T) {
	img := flatImage(200, 200, color.White)
	for x := 20; x < 180; x++ {
		img.Set(x, 100, color.Black)
	}
	// область не содержит линию
	region := boxMask(200, 200, image.Rect(0, 0, 200, 60))

	segs, err := NewHoughDetector().Detect(img, region, false)
	require.NoError(t, err)
	require.Empty(t, segs)
}

func TestHoughDetector_RegionSizeMismatch(t *testing.T) {
	_, err := NewHoughDetector().Detect(flatImage(20, 20, grey), entity.NewMask(10, 10), false)
	require.Error(t, err)
}

func TestLineParams_AggressiveIsLooser(t *testing.T) {
	require.Less(t, AggressiveLineParams.minLength(400, 300), NormalLineParams.minLength(400, 300))
	require.Less(t, AggressiveLineParams.EdgeThreshold, NormalLineParams.EdgeThreshold)
	require.InDelta(t, 36, NormalLineParams.minLength(400, 300), 1e-9)
}

func TestClipToBox(t *testing.T) {
	box := geometry.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	got, ok := clipToBox(geometry.Seg(-10, 5, 20, 5), box)
	require.True(t, ok)
	require.InDelta(t, 0, got.A.X, 1e-9)
	require.InDelta(t, 10, got.B.X, 1e-9)
	require.InDelta(t, 5, got.A.Y, 1e-9)

	_, ok = clipToBox(geometry.Seg(-10, 20, 20, 20), box)
	require.False(t, ok)
}

func TestHoughDetector_FindsStepEdgeOfEitherPolarity(t *testing.T) {
	dark, light := color.Gray{Y: 60}, color.Gray{Y: 200}
	for _, c := range []struct {
		name        string
		left, right color.Color
	}{
		{"dark|light", dark, light},
		{"light|dark", light, dark},
	} {
		t.Run(c.name, func(t *testing.T) {
			img := flatImage(200, 200, c.left)
			paint(img, image.Rect(100, 0, 200, 200), c.right)
			region := boxMask(200, 200, image.Rect(0, 0, 200, 200))

			segs, err := NewHoughDetector().Detect(img, region, false)
			require.NoError(t, err)
			require.NotEmpty(t, segs)
			require.InDelta(t, 90, foldDeg(segs[0].AngleDeg()), 3)
			require.InDelta(t, 99.5, segs[0].Midpoint().X, 2)
			require.Greater(t, segs[0].Length(), 150.0)
		})
	}
}

func TestIsLocalMax_ThetaWrapMirrorsRho(t *testing.T) {
	const nRho, nTheta = 21, 10
	acc := make([]int, nRho*nTheta)
	acc[15*nTheta+0] = 5

	// тот же rho на другом краю угла описывает другую прямую
	acc[15*nTheta+9] = 9
	require.True(t, isLocalMax(acc, nRho, nTheta, 15, 0))

	// (rho, 180°-δ) и (-rho, -δ) одна прямая
	acc[(nRho-1-15)*nTheta+9] = 9
	require.False(t, isLocalMax(acc, nRho, nTheta, 15, 0))
}

func TestHoughPeaks_SortedAndCapped(t *testing.T) {
	const nRho, nTheta = 41, 30
	acc := make([]int, nRho*nTheta)
	// изолированные максимумы на сетке с шагом 6
	votes := 10
	for r := 3; r < nRho-3; r += 6 {
		for th := 3; th < nTheta-3; th += 6 {
			acc[r*nTheta+th] = votes
			votes++
		}
	}

	all := houghPeaks(acc, nRho, nTheta, 10, 0)
	require.Len(t, all, 6*4)

	peaks := houghPeaks(acc, nRho, nTheta, 10, 5)
	require.Len(t, peaks, 5)
	for i := 1; i < len(peaks); i++ {
		require.GreaterOrEqual(t, peaks[i-1].votes, peaks[i].votes)
	}
	require.Equal(t, all[:5], peaks)
	require.Equal(t, votes-1, peaks[0].votes)
	require.Equal(t, 33-nRho/2, peaks[0].rho)
}
