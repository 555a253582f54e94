package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
)

// decodeImage превращает байты снимка в NRGBA с учётом EXIF-ориентации
func decodeImage(imageData []byte) (*image.NRGBA, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: empty data", entity.ErrInvalidImage)
	}
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero size", entity.ErrInvalidImage)
	}
	return imaging.Clone(img), nil
}

// fitImage уменьшает снимок так, чтобы большая сторона не превышала maxSide.
// Возвращает коэффициент уменьшения (1 — без изменений).
func fitImage(img *image.NRGBA, maxSide int) (*image.NRGBA, float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img, 1
	}
	scale := float64(maxSide) / float64(maxInt(w, h))
	newW := maxInt(1, int(float64(w)*scale))
	newH := maxInt(1, int(float64(h)*scale))
	return imaging.Resize(img, newW, newH, imaging.Lanczos), float64(newW) / float64(w)
}

// dilateMask морфологическое расширение круглым элементом радиуса radius
func dilateMask(m *entity.Mask, radius float64) *entity.Mask {
	if radius <= 0 {
		return m.Clone()
	}
	return entity.MaskFromImage(effect.Dilate(m.Gray(), radius), 127)
}

// erodeMask морфологическое сужение
func erodeMask(m *entity.Mask, radius float64) *entity.Mask {
	if radius <= 0 {
		return m.Clone()
	}
	return entity.MaskFromImage(effect.Erode(m.Gray(), radius), 127)
}

// closeMask закрытие: заполняет мелкие разрывы
func closeMask(m *entity.Mask, radius float64) *entity.Mask {
	return erodeMask(dilateMask(m, radius), radius)
}

// openMask размыкание: убирает мелкие пятна
func openMask(m *entity.Mask, radius float64) *entity.Mask {
	return dilateMask(erodeMask(m, radius), radius)
}

// medianMask медианное сглаживание с повторной бинаризацией по 127
func medianMask(m *entity.Mask, radius float64) *entity.Mask {
	if radius <= 0 {
		return m.Clone()
	}
	return entity.MaskFromImage(effect.Median(m.Gray(), radius), 127)
}

// Смещения окрестностей; восьмисвязная идёт по часовой стрелке начиная с востока
var (
	neighbours8 = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	neighbours4 = [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
)

// floodFrom помечает в visited все пиксели со значением want, достижимые из seeds
func floodFrom(m *entity.Mask, seeds []int, want bool, visited []bool, neighbours [][2]int) {
	queue := make([]int, 0, len(seeds))
	for _, i := range seeds {
		if visited[i] || (m.Pix[i] != entity.MaskOff) != want {
			continue
		}
		visited[i] = true
		queue = append(queue, i)
	}
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%m.Width, i/m.Width
		for _, d := range neighbours {
			nx, ny := x+d[0], y+d[1]
			if !m.In(nx, ny) {
				continue
			}
			ni := ny*m.Width + nx
			if visited[ni] || (m.Pix[ni] != entity.MaskOff) != want {
				continue
			}
			visited[ni] = true
			queue = append(queue, ni)
		}
	}
}

// borderIndices индексы всех пикселей рамки кадра
func borderIndices(w, h int) []int {
	if w == 0 || h == 0 {
		return nil
	}
	out := make([]int, 0, 2*(w+h))
	for x := 0; x < w; x++ {
		out = append(out, x, (h-1)*w+x)
	}
	for y := 1; y < h-1; y++ {
		out = append(out, y*w, y*w+w-1)
	}
	return out
}

// removeBorderConnected удаляет области переднего плана, касающиеся края кадра
func removeBorderConnected(m *entity.Mask) *entity.Mask {
	visited := make([]bool, len(m.Pix))
	floodFrom(m, borderIndices(m.Width, m.Height), true, visited, neighbours8)

	out := m.Clone()
	for i, v := range visited {
		if v {
			out.Pix[i] = entity.MaskOff
		}
	}
	return out
}

// fillHoles заливает фон, недостижимый от края кадра. Фон четырёхсвязный,
// чтобы не просачиваться через диагональные границы.
func fillHoles(m *entity.Mask) *entity.Mask {
	visited := make([]bool, len(m.Pix))
	floodFrom(m, borderIndices(m.Width, m.Height), false, visited, neighbours4)

	out := m.Clone()
	for i := range out.Pix {
		if out.Pix[i] == entity.MaskOff && !visited[i] {
			out.Pix[i] = entity.MaskOn
		}
	}
	return out
}

// Ядра Собеля, уменьшенные в gradScale раз: bild обрезает результат свёртки
// до [0, 255], поэтому знаковый отклик кодируется со смещением gradBias.
const (
	gradScale = 8
	gradBias  = 128
)

var (
	sobelX = &convolution.Kernel{Matrix: []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}, Width: 3, Height: 3}
	sobelY = &convolution.Kernel{Matrix: []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}, Width: 3, Height: 3}
)

func scaledKernel(k *convolution.Kernel) *convolution.Kernel {
	out := &convolution.Kernel{Matrix: make([]float64, len(k.Matrix)), Width: k.Width, Height: k.Height}
	for i, v := range k.Matrix {
		out.Matrix[i] = v / gradScale
	}
	return out
}

// gradientMagnitude модуль градиента sqrt(gx²+gy²) серого изображения,
// обрезанный до 255. Учитываются перепады обоих знаков.
func gradientMagnitude(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	opts := &convolution.Options{Bias: gradBias, KeepAlpha: true}
	gx := convolution.Convolve(gray, scaledKernel(sobelX), opts)
	gy := convolution.Convolve(gray, scaledKernel(sobelY), opts)

	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := y*gx.Stride + 4*x
			dx := (float64(gx.Pix[i]) - gradBias) * gradScale
			dy := (float64(gy.Pix[i]) - gradBias) * gradScale
			out.Pix[y*out.Stride+x] = uint8(math.Min(math.Hypot(dx, dy), 255))
		}
	}
	return out
}

// centralBox прямоугольник доли frac по ширине и высоте в центре кадра
func centralBox(w, h int, frac float64) image.Rectangle {
	x0 := int(math.Round((1 - frac) / 2 * float64(w)))
	y0 := int(math.Round((1 - frac) / 2 * float64(h)))
	return image.Rect(x0, y0, x0+int(math.Round(frac*float64(w))), y0+int(math.Round(frac*float64(h))))
}

// boxMask маска, включённая внутри прямоугольника r
func boxMask(w, h int, r image.Rectangle) *entity.Mask {
	m := entity.NewMask(w, h)
	r = r.Intersect(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

// rasterizeRing заливает кольцо в маску заданного размера
func rasterizeRing(r geometry.Ring, w, h int) *entity.Mask {
	m := entity.NewMask(w, h)
	if len(r) < 3 || w == 0 || h == 0 {
		return m
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	z.MoveTo(float32(r[0].X), float32(r[0].Y))
	for _, p := range r[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	for i, a := range dst.Pix {
		if a > 127 {
			m.Pix[i] = entity.MaskOn
		}
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
