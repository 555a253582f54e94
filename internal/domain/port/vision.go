package port

import (
	"context"
	"image"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

// RegionSegmenter выделяет маску кандидата в крышу по всему кадру
type RegionSegmenter interface {
	// Name имя способа для журнала и результата
	Name() string

	// Segment возвращает маску переднего плана; ошибка — сигнал перейти к следующему способу
	Segment(ctx context.Context, img image.Image) (*entity.Mask, error)
}

// LineDetector ищет прямые отрезки внутри области
type LineDetector interface {
	Name() string

	// Detect возвращает отрезки, найденные в пределах region
	Detect(img image.Image, region *entity.Mask, aggressive bool) ([]geometry.Segment, error)
}

// PolygonSplitter точные операции над полигонами
type PolygonSplitter interface {
	// Split режет полигон прямой, проходящей через cut; без пересечения возвращает исходный полигон
	Split(ring geometry.Ring, cut geometry.Segment) ([]geometry.Ring, error)

	// InteriorLength длина части отрезка, лежащей внутри полигона
	InteriorLength(ring geometry.Ring, s geometry.Segment) (float64, error)
}

// CandidateMaskSource внешний источник масок экземпляров (например, обученная модель)
type CandidateMaskSource interface {
	Masks(ctx context.Context, img image.Image) ([]*entity.Mask, error)
}

// OverlayRenderer рисует отладочную картинку с контурами скатов
type OverlayRenderer interface {
	Render(img image.Image, planes []entity.Plane, bridges []geometry.Ring) ([]byte, error)
}
