package entity

import "strings"

// Значения по умолчанию для отсутствующих полей метаданных камеры
const (
	DefaultFocalLengthMM = 8.8
	DefaultPixelWidth    = 5472
	DefaultAltitudeM     = 30.0
	DefaultSensorWidthMM = 6.17
)

// sensorWidthsMM ширина матрицы по модели камеры. Ключи в верхнем регистре.
var sensorWidthsMM = map[string]float64{
	"DJI PHANTOM 4 PRO": 13.2,
	"PHANTOM 4 PRO":     13.2,
	"DJI PHANTOM 4":     6.17,
	"PHANTOM 4":         6.17,
	// коды моделей, которые DJI пишет в тег Model
	"FC6310":  13.2, // Phantom 4 Pro
	"FC6310S": 13.2, // Phantom 4 Pro V2.0
	"FC330":   6.17, // Phantom 4
	"FC220":   6.17, // Mavic Pro
	"L1D-20C": 13.2, // Mavic 2 Pro
}

// CameraMetadata параметры съёмки, извлечённые из EXIF
type CameraMetadata struct {
	FocalLengthMM float64 `json:"focal_length_mm,omitempty"`
	PixelWidth    int     `json:"w_px,omitempty"`
	PixelHeight   int     `json:"h_px,omitempty"`
	AltitudeM     float64 `json:"gps_altitude_m,omitempty"` // высота над землёй по GPS
	Model         string  `json:"model,omitempty"`
	DateTime      string  `json:"datetime,omitempty"`
}

// Resolved возвращает копию с подставленными значениями по умолчанию.
// Неположительная высота считается отсутствующей.
func (c CameraMetadata) Resolved() CameraMetadata {
	if c.FocalLengthMM <= 0 {
		c.FocalLengthMM = DefaultFocalLengthMM
	}
	if c.PixelWidth <= 0 {
		c.PixelWidth = DefaultPixelWidth
	}
	if c.AltitudeM <= 0 {
		c.AltitudeM = DefaultAltitudeM
	}
	c.Model = strings.TrimSpace(c.Model)
	return c
}

// SensorWidthMM ширина матрицы по точному совпадению модели без учёта регистра
func (c CameraMetadata) SensorWidthMM() float64 {
	if w, ok := sensorWidthsMM[strings.ToUpper(strings.TrimSpace(c.Model))]; ok {
		return w
	}
	return DefaultSensorWidthMM
}

// GSD вычисляет разрешение на местности в метрах на пиксель.
// altitudeOverride > 0 заменяет высоту из метаданных.
func (c CameraMetadata) GSD(altitudeOverride float64) float64 {
	r := c.Resolved()
	alt := r.AltitudeM
	if altitudeOverride > 0 {
		alt = altitudeOverride
	}
	// ширина поля зрения на земле в метрах
	fovWidthM := alt * r.SensorWidthMM() / r.FocalLengthMM
	return fovWidthM / float64(r.PixelWidth)
}
