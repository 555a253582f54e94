package vision

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

func TestDecodeImage_Invalid(t *testing.T) {
	_, err := decodeImage(nil)
	require.True(t, errors.Is(err, entity.ErrInvalidImage))

	_, err = decodeImage([]byte("definitely not an image"))
	require.True(t, errors.Is(err, entity.ErrInvalidImage))
}

func TestDecodeImage_PNG(t *testing.T) {
	img, err := decodeImage(encodePNG(t, flatImage(64, 32, grey)))
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
}

func TestFitImage(t *testing.T) {
	img := flatImage(400, 200, grey)

	same, k := fitImage(img, 0)
	require.Same(t, img, same)
	require.Equal(t, 1.0, k)

	small, k := fitImage(img, 100)
	require.Equal(t, 100, small.Bounds().Dx())
	require.Equal(t, 50, small.Bounds().Dy())
	require.InDelta(t, 0.25, k, 1e-12)
}

func TestFillHoles(t *testing.T) {
	m := entity.NewMask(20, 20)
	for i := 5; i <= 14; i++ {
		m.Set(i, 5, true)
		m.Set(i, 14, true)
		m.Set(5, i, true)
		m.Set(14, i, true)
	}

	filled := fillHoles(m)
	require.True(t, filled.At(10, 10))
	require.False(t, filled.At(2, 2))
	require.Equal(t, 100, filled.Count())
	// исходная маска не меняется
	require.False(t, m.At(10, 10))
}

func TestRemoveBorderConnected(t *testing.T) {
	m := boxMask(50, 50, image.Rect(0, 0, 10, 50))
	inner := boxMask(50, 50, image.Rect(20, 20, 30, 30))
	for i, v := range inner.Pix {
		if v != entity.MaskOff {
			m.Pix[i] = v
		}
	}

	out := removeBorderConnected(m)
	require.False(t, out.At(5, 25))
	require.True(t, out.At(25, 25))
	require.Equal(t, 100, out.Count())
}

func TestCentralBox(t *testing.T) {
	require.Equal(t, image.Rect(80, 40, 320, 160), centralBox(400, 200, 0.6))
	require.Equal(t, image.Rect(30, 30, 170, 170), centralBox(200, 200, 0.7))
}

func TestRasterizeRing_Square(t *testing.T) {
	m := rasterizeRing(square(10, 20, 30), 100, 100)
	require.Equal(t, 900, m.Count())
	require.True(t, m.At(10, 20))
	require.True(t, m.At(39, 49))
	require.False(t, m.At(40, 20))
}

func TestRasterizeRing_Degenerate(t *testing.T) {
	m := rasterizeRing(geometry.Ring{geometry.Pt(1, 1), geometry.Pt(5, 5)}, 10, 10)
	require.True(t, m.Empty())
}

func TestMorphology_OpenRemovesSpecks(t *testing.T) {
	m := boxMask(60, 60, image.Rect(10, 10, 50, 50))
	m.Set(3, 3, true)

	opened := openMask(m, 1)
	require.False(t, opened.At(3, 3))
	require.True(t, opened.At(30, 30))

	closed := closeMask(boxMask(60, 60, image.Rect(10, 10, 50, 50)).AndNot(boxMask(60, 60, image.Rect(29, 10, 30, 50))), 2)
	require.True(t, closed.At(29, 30))
}

func TestGradientMagnitude_BothPolarities(t *testing.T) {
	for _, c := range []struct {
		name     string
		bg, rect color.Color
	}{
		{"dark on light", grey, brown},
		{"light on dark", brown, grey},
	} {
		t.Run(c.name, func(t *testing.T) {
			img := flatImage(200, 200, c.bg)
			paint(img, image.Rect(50, 60, 150, 140), c.rect)

			g := gradientMagnitude(img)
			for _, p := range []image.Point{{49, 100}, {150, 100}, {100, 59}, {100, 140}} {
				require.Equal(t, uint8(255), g.GrayAt(p.X, p.Y).Y, "edge at %v", p)
			}
			require.Zero(t, g.GrayAt(100, 100).Y)
			require.Zero(t, g.GrayAt(20, 20).Y)

			m := gradientMask(img, 60)
			left, right, top, bottom := 0, 0, 0, 0
			for y := 70; y < 130; y++ {
				if m.At(49, y) || m.At(50, y) {
					left++
				}
				if m.At(149, y) || m.At(150, y) {
					right++
				}
			}
			for x := 60; x < 140; x++ {
				if m.At(x, 59) || m.At(x, 60) {
					top++
				}
				if m.At(x, 139) || m.At(x, 140) {
					bottom++
				}
			}
			require.Equal(t, 60, left)
			require.Equal(t, 60, right)
			require.Equal(t, 80, top)
			require.Equal(t, 80, bottom)
		})
	}
}
