package entity

import (
	"errors"

	"roof-measure/internal/domain/geometry"
)

// DefaultPitch уклон по умолчанию: 6 на 12
const DefaultPitch = 6.0

// ErrInvalidImage байты не удалось декодировать как изображение
var ErrInvalidImage = errors.New("invalid image")

// MeasureRequest входные данные одного замера
type MeasureRequest struct {
	Image []byte

	// Camera метаданные, если вызывающий уже разобрал EXIF; nil — читать из Image
	Camera *CameraMetadata

	AltitudeM  float64         // переопределение высоты; 0 — не задано
	Pitch      float64         // подъём на 12; 0 — DefaultPitch
	Focus      *geometry.Point // точка интереса для отбора кластеров; nil — центр кадра
	Aggressive bool

	// Masks готовые маски экземпляров; если заданы, сегментация пропускается
	Masks []*Mask
}

// MeasurementResult итог замера; после построения не изменяется
type MeasurementResult struct {
	Camera      CameraMetadata  `json:"exif"`
	GSD         float64         `json:"gsd_m_per_px"`
	ImageWidth  int             `json:"image_width"`
	ImageHeight int             `json:"image_height"`
	Planes      []Plane         `json:"planes"`
	Bridges     []geometry.Ring `json:"bridges,omitempty"`
	Totals      Totals          `json:"totals"`
	RotationDeg *float64        `json:"rotation_deg,omitempty"`
	Segmenter   string          `json:"segmenter,omitempty"` // каким способом получена маска
	Overlay     []byte          `json:"-"`                   // PNG с контурами скатов
}

// HasPlanes флаг наличия найденных скатов
func (r *MeasurementResult) HasPlanes() bool {
	return r != nil && len(r.Planes) > 0
}
