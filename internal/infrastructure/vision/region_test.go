package vision

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"roof-measure/internal/domain/entity"
)

func TestRegionExtractor_FallsBackToNextSegmenter(t *testing.T) {
	img := flatImage(200, 200, grey)
	broken := &fixedSegmenter{name: "broken", err: errors.New("boom")}
	wrongSize := &fixedSegmenter{name: "wrong", mask: entity.NewMask(10, 10)}
	good := &fixedSegmenter{name: "good", mask: boxMask(200, 200, image.Rect(60, 60, 140, 140))}

	e := NewRegionExtractor(broken, wrongSize, good)
	mask, used := e.Extract(context.Background(), img)

	require.Equal(t, "good", used)
	require.Equal(t, 1, broken.calls)
	require.Equal(t, 1, wrongSize.calls)
	require.True(t, mask.At(100, 100))
	require.False(t, mask.At(20, 20))
}

func TestRegionExtractor_AllFailYieldsEmptyMask(t *testing.T) {
	e := NewRegionExtractor(&fixedSegmenter{name: "broken", err: errors.New("boom")})
	mask, used := e.Extract(context.Background(), flatImage(50, 40, grey))

	require.Empty(t, used)
	require.Equal(t, 50, mask.Width)
	require.Equal(t, 40, mask.Height)
	require.True(t, mask.Empty())
}

func TestRegionExtractor_DropsBorderTouchingRegions(t *testing.T) {
	m := boxMask(200, 200, image.Rect(0, 80, 40, 120))
	inner := boxMask(200, 200, image.Rect(70, 70, 130, 130))
	for i, v := range inner.Pix {
		if v != entity.MaskOff {
			m.Pix[i] = v
		}
	}

	e := NewRegionExtractor(&fixedSegmenter{name: "fixed", mask: m})
	mask, _ := e.Extract(context.Background(), flatImage(200, 200, grey))

	require.False(t, mask.At(10, 100))
	require.True(t, mask.At(100, 100))
}

func TestRegionExtractor_RemovesVegetation(t *testing.T) {
	img := flatImage(200, 200, grey)
	paint(img, image.Rect(60, 60, 140, 140), brown)
	paint(img, image.Rect(60, 100, 140, 140), lawn)

	e := NewRegionExtractor(&fixedSegmenter{name: "fixed", mask: boxMask(200, 200, image.Rect(60, 60, 140, 140))})
	mask, _ := e.Extract(context.Background(), img)

	require.True(t, mask.At(100, 75))
	require.False(t, mask.At(100, 125))
}

func TestRegionExtractor_ROIBoundsTheMask(t *testing.T) {
	// область выходит за центральные 60%, но внутри остаётся больше 1500 px
	e := NewRegionExtractor(&fixedSegmenter{name: "fixed", mask: boxMask(400, 400, image.Rect(20, 100, 300, 300))})
	mask, _ := e.Extract(context.Background(), flatImage(400, 400, grey))

	require.False(t, mask.At(50, 200))
	require.True(t, mask.At(200, 200))
}

func TestRegionExtractor_ROIFallbackKeepsSmallOffCenterRegion(t *testing.T) {
	// внутри ROI почти ничего не остаётся, пересечение отменяется
	e := NewRegionExtractor(&fixedSegmenter{name: "fixed", mask: boxMask(400, 400, image.Rect(10, 10, 75, 75))})
	mask, _ := e.Extract(context.Background(), flatImage(400, 400, grey))

	require.True(t, mask.At(40, 40))
}

func TestEdgeSegmenter_FillsFlatRectangle(t *testing.T) {
	img := flatImage(200, 200, grey)
	paint(img, image.Rect(50, 60, 150, 140), brown)

	mask, err := NewEdgeSegmenter().Segment(context.Background(), img)
	require.NoError(t, err)
	require.True(t, mask.At(100, 100))
	require.False(t, mask.At(20, 20))
	require.InEpsilon(t, 100*80, mask.Count(), 0.06)
}

func TestEdgeSegmenter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEdgeSegmenter().Segment(ctx, flatImage(20, 20, grey))
	require.ErrorIs(t, err, context.Canceled)
}

func TestVegetationMask(t *testing.T) {
	img := flatImage(10, 10, grey)
	paint(img, image.Rect(0, 0, 5, 10), lawn)

	m := vegetationMask(img)
	require.True(t, m.At(2, 5))
	require.False(t, m.At(7, 5))
}
