package vision

import (
	"context"
	"image"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// RegionExtractor выделяет наиболее вероятную область крыши
type RegionExtractor struct {
	Segmenters []port.RegionSegmenter // пробуются по порядку, первый успешный побеждает

	ROIFraction    float64 // доля центральной области интереса
	MinROIPixels   int     // меньше — пересечение с ROI отменяется
	CloseRadius    float64
	OpenRadius     float64
	MedianRadius   float64
	KeepVegetation bool // не вырезать зелень
}

// NewRegionExtractor создаёт экстрактор с параметрами по умолчанию
func NewRegionExtractor(segmenters ...port.RegionSegmenter) *RegionExtractor {
	if len(segmenters) == 0 {
		segmenters = DefaultSegmenters()
	}
	return &RegionExtractor{
		Segmenters:   segmenters,
		ROIFraction:  0.6,
		MinROIPixels: 1500,
		CloseRadius:  2,
		OpenRadius:   1,
		MedianRadius: 2,
	}
}

// Extract возвращает маску крыши и имя сработавшего сегментатора.
// Шаги деградируют без ошибок; маска может оказаться пустой.
func (e *RegionExtractor) Extract(ctx context.Context, img *image.NRGBA) (*entity.Mask, string) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	mask, used := e.segment(ctx, img)
	if mask == nil {
		Logf("region: all segmenters failed, mask is empty")
		return entity.NewMask(w, h), ""
	}

	if !e.KeepVegetation {
		mask = mask.AndNot(vegetationMask(img))
	}

	mask = closeMask(mask, e.CloseRadius)
	mask = openMask(mask, e.OpenRadius)
	mask = removeBorderConnected(mask)

	roi := mask.And(boxMask(w, h, centralBox(w, h, e.ROIFraction)))
	if roi.Count() >= e.MinROIPixels {
		mask = roi
	} else {
		Logf("region: roi cut too aggressive (%d px), keeping full mask", roi.Count())
	}

	return medianMask(mask, e.MedianRadius), used
}

func (e *RegionExtractor) segment(ctx context.Context, img image.Image) (*entity.Mask, string) {
	b := img.Bounds()
	for _, s := range e.Segmenters {
		m, err := s.Segment(ctx, img)
		if err != nil {
			Logf("region: %s failed, falling back: %v", s.Name(), err)
			continue
		}
		if m == nil || m.Width != b.Dx() || m.Height != b.Dy() {
			Logf("region: %s returned mask of wrong size, falling back", s.Name())
			continue
		}
		return m, s.Name()
	}
	return nil, ""
}
