package port

import (
	"context"

	"roof-measure/internal/domain/entity"
)

// RoofMeasurer интерфейс замера крыши по снимку
type RoofMeasurer interface {
	// Measure строит скаты крыши и считает площади; ошибка только для нечитаемого изображения
	Measure(ctx context.Context, req entity.MeasureRequest) (*entity.MeasurementResult, error)
}

// MetadataReader извлекает параметры камеры из байтов снимка
type MetadataReader interface {
	// Read возвращает найденные поля; ошибка означает, что метаданных нет
	Read(imageData []byte) (entity.CameraMetadata, error)
}
