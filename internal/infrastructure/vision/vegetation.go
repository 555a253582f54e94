package vision

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"roof-measure/internal/domain/entity"
)

// Диапазон «зелени» в HSV. Оттенок в градусах, насыщенность и яркость в [0, 1].
const (
	vegetationHueMin = 70.0
	vegetationHueMax = 180.0
	vegetationSatMin = 30.0 / 255
	vegetationValMin = 30.0 / 255
)

// vegetationMask отмечает пиксели газонов и деревьев
func vegetationMask(img *image.NRGBA) *entity.Mask {
	b := img.Bounds()
	m := entity.NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*m.Width]
		for x := 0; x < m.Width; x++ {
			c := colorful.Color{
				R: float64(row[4*x]) / 255,
				G: float64(row[4*x+1]) / 255,
				B: float64(row[4*x+2]) / 255,
			}
			if isVegetation(c) {
				m.Pix[y*m.Width+x] = entity.MaskOn
			}
		}
	}
	return m
}

func isVegetation(c colorful.Color) bool {
	h, s, v := c.Hsv()
	return h >= vegetationHueMin && h <= vegetationHueMax && s >= vegetationSatMin && v >= vegetationValMin
}
