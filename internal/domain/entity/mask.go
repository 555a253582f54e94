package entity

import "image"

// Значения пикселей бинарной маски
const (
	MaskOff uint8 = 0
	MaskOn  uint8 = 255
)

// Mask бинарная маска размером с изображение: 255 — кандидат в крышу, 0 — фон
type Mask struct {
	Width  int
	Height int
	Pix    []uint8 // построчно, Pix[y*Width+x]
}

// NewMask создаёт пустую маску
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// In проверяет, что координаты внутри маски
func (m *Mask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At true для пикселя переднего плана; вне маски false
func (m *Mask) At(x, y int) bool {
	return m.In(x, y) && m.Pix[y*m.Width+x] != MaskOff
}

// Set включает или выключает пиксель
func (m *Mask) Set(x, y int, on bool) {
	if !m.In(x, y) {
		return
	}
	if on {
		m.Pix[y*m.Width+x] = MaskOn
	} else {
		m.Pix[y*m.Width+x] = MaskOff
	}
}

// Count число пикселей переднего плана
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != MaskOff {
			n++
		}
	}
	return n
}

// Empty true, если в маске нет ни одного пикселя переднего плана
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v != MaskOff {
			return false
		}
	}
	return true
}

// Clone независимая копия маски
func (m *Mask) Clone() *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// And пересечение масок одного размера
func (m *Mask) And(o *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for i := range m.Pix {
		if m.Pix[i] != MaskOff && i < len(o.Pix) && o.Pix[i] != MaskOff {
			out.Pix[i] = MaskOn
		}
	}
	return out
}

// AndNot исключает из маски пиксели o
func (m *Mask) AndNot(o *Mask) *Mask {
	out := m.Clone()
	for i := range out.Pix {
		if i < len(o.Pix) && o.Pix[i] != MaskOff {
			out.Pix[i] = MaskOff
		}
	}
	return out
}

// Gray представление маски как изображения в оттенках серого
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Pix)
	return img
}

// MaskFromImage бинаризует изображение по яркости: пиксель включён, если
// яркость больше threshold.
func MaskFromImage(img image.Image, threshold uint8) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < m.Height; y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+m.Width]
			for x, v := range row {
				if v > threshold {
					m.Pix[y*m.Width+x] = MaskOn
				}
			}
		}
		return m
	}
	if rgba, ok := img.(*image.RGBA); ok {
		// быстрый путь для результатов bild
		for y := 0; y < m.Height; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*m.Width]
			for x := 0; x < m.Width; x++ {
				r, g, bl := uint32(row[4*x]), uint32(row[4*x+1]), uint32(row[4*x+2])
				if uint8((299*r+587*g+114*bl)/1000) > threshold {
					m.Pix[y*m.Width+x] = MaskOn
				}
			}
		}
		return m
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum := (299*r + 587*g + 114*bl) / 1000 >> 8
			if uint8(lum) > threshold {
				m.Pix[y*m.Width+x] = MaskOn
			}
		}
	}
	return m
}
