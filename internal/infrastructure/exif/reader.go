package exif

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// ErrNoMetadata в снимке нет EXIF
var ErrNoMetadata = errors.New("no exif metadata")

// Reader читает параметры камеры из EXIF снимка
type Reader struct{}

// NewReader создаёт читатель EXIF
func NewReader() *Reader {
	return &Reader{}
}

// Read возвращает найденные поля. Отсутствующие теги остаются нулевыми,
// значения по умолчанию подставляет entity.CameraMetadata.Resolved.
func (r *Reader) Read(imageData []byte) (entity.CameraMetadata, error) {
	var meta entity.CameraMetadata
	if len(imageData) == 0 {
		return meta, ErrNoMetadata
	}

	x, err := goexif.Decode(bytes.NewReader(imageData))
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	if v, ok := ratio(x, goexif.FocalLength); ok {
		meta.FocalLengthMM = v
	}
	if v, ok := integer(x, goexif.PixelXDimension); ok {
		meta.PixelWidth = v
	}
	if v, ok := integer(x, goexif.PixelYDimension); ok {
		meta.PixelHeight = v
	}
	meta.Model = str(x, goexif.Model)

	meta.DateTime = str(x, goexif.DateTimeOriginal)
	if meta.DateTime == "" {
		meta.DateTime = str(x, goexif.DateTime)
	}

	if alt, ok := ratio(x, goexif.GPSAltitude); ok {
		// 1 — ниже уровня моря
		if ref, ok := integer(x, goexif.GPSAltitudeRef); ok && ref == 1 {
			alt = -alt
		}
		meta.AltitudeM = alt
	}

	return meta, nil
}

func tag(x *goexif.Exif, name goexif.FieldName) *tiff.Tag {
	t, err := x.Get(name)
	if err != nil {
		return nil
	}
	return t
}

func ratio(x *goexif.Exif, name goexif.FieldName) (float64, bool) {
	t := tag(x, name)
	if t == nil {
		return 0, false
	}
	num, den, err := t.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

func integer(x *goexif.Exif, name goexif.FieldName) (int, bool) {
	t := tag(x, name)
	if t == nil {
		return 0, false
	}
	v, err := t.Int(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

func str(x *goexif.Exif, name goexif.FieldName) string {
	t := tag(x, name)
	if t == nil {
		return ""
	}
	s, err := t.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

var _ port.MetadataReader = (*Reader)(nil)
