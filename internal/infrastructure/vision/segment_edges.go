package vision

import (
	"context"
	"image"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// EdgeSegmenter выделяет область по порогу модуля градиента Собеля.
// Замкнутые контуры заливаются, поэтому однотонная крыша превращается в сплошную область.
type EdgeSegmenter struct {
	Threshold   uint8   // порог модуля градиента
	CloseRadius float64 // радиус закрытия разрывов контура
}

// NewEdgeSegmenter создаёт сегментатор с порогами по умолчанию
func NewEdgeSegmenter() *EdgeSegmenter {
	return &EdgeSegmenter{Threshold: 60, CloseRadius: 2}
}

func (s *EdgeSegmenter) Name() string { return "edges" }

// Segment возвращает залитую маску замкнутых границ
func (s *EdgeSegmenter) Segment(ctx context.Context, img image.Image) (*entity.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	edges := gradientMask(img, s.Threshold)
	if s.CloseRadius > 0 {
		edges = closeMask(edges, s.CloseRadius)
	}
	return fillHoles(edges), nil
}

// gradientMask бинаризует модуль градиента серого изображения
func gradientMask(img image.Image, threshold uint8) *entity.Mask {
	return entity.MaskFromImage(gradientMagnitude(img), threshold)
}

var _ port.RegionSegmenter = (*EdgeSegmenter)(nil)
