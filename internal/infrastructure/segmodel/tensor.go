package segmodel

import (
	"image"

	"github.com/disintegration/imaging"

	"roof-measure/internal/domain/entity"
)

// toTensor NCHW float32 0..1 из снимка, ужатого до size×size
func toTensor(img image.Image, size int) []float32 {
	resized := imaging.Resize(img, size, size, imaging.Linear)
	plane := size * size
	data := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*resized.Stride + x*4
			p := y*size + x
			data[p] = float32(resized.Pix[i]) / 255
			data[plane+p] = float32(resized.Pix[i+1]) / 255
			data[2*plane+p] = float32(resized.Pix[i+2]) / 255
		}
	}
	return data
}

// probabilityMasks бинаризует n карт ow×oh по порогу и растягивает до w×h.
// Пустые карты пропускаются.
func probabilityMasks(data []float32, n, ow, oh int, threshold float32, w, h int) []*entity.Mask {
	plane := ow * oh
	if n <= 0 || plane == 0 || len(data) < n*plane {
		return nil
	}

	var out []*entity.Mask
	for c := 0; c < n; c++ {
		small := entity.NewMask(ow, oh)
		probs := data[c*plane : (c+1)*plane]
		for i, v := range probs {
			if v >= threshold {
				small.Pix[i] = entity.MaskOn
			}
		}
		if small.Empty() {
			continue
		}
		if ow == w && oh == h {
			out = append(out, small)
			continue
		}
		resized := imaging.Resize(small.Gray(), w, h, imaging.NearestNeighbor)
		out = append(out, entity.MaskFromImage(resized, 127))
	}
	return out
}
