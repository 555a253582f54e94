package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/domain/port"
)

var (
	planeColor  = color.RGBA{G: 255, A: 255}
	bridgeColor = color.RGBA{R: 255, G: 200, A: 255}
	labelColor  = color.RGBA{R: 255, A: 255}
)

// OverlayPainter рисует контуры скатов и подписи поверх снимка, результат в PNG
type OverlayPainter struct {
	StrokeWidth float64
}

// NewOverlayPainter создаёт рисовальщик с линией толщиной 2 px
func NewOverlayPainter() *OverlayPainter {
	return &OverlayPainter{StrokeWidth: 2}
}

// Render возвращает PNG с зелёными контурами скатов, перемычками и подписями P1, P2, ...
func (o *OverlayPainter) Render(img image.Image, planes []entity.Plane, bridges []geometry.Ring) ([]byte, error) {
	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	for _, b := range bridges {
		o.strokeRing(canvas, b, bridgeColor)
	}
	for _, p := range planes {
		o.strokeRing(canvas, p.Polygon, planeColor)
	}
	for _, p := range planes {
		if len(p.Polygon) == 0 {
			continue
		}
		m := p.Polygon.Mean()
		d := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(labelColor),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(int(m.X), int(m.Y)),
		}
		d.DrawString(p.ID)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// strokeRing обводит кольцо: каждое ребро как залитый прямоугольник толщины StrokeWidth
func (o *OverlayPainter) strokeRing(dst *image.RGBA, r geometry.Ring, c color.Color) {
	if len(r) < 2 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := o.StrokeWidth / 2
	for _, e := range r.Edges() {
		u := e.Direction()
		if u == (geometry.Point{}) {
			continue
		}
		n := geometry.Pt(-u.Y, u.X).Scale(half)
		a, bb := e.A.Sub(u.Scale(half)), e.B.Add(u.Scale(half))
		quad := [4]geometry.Point{a.Add(n), bb.Add(n), bb.Sub(n), a.Sub(n)}
		z.MoveTo(float32(quad[0].X-float64(b.Min.X)), float32(quad[0].Y-float64(b.Min.Y)))
		for _, p := range quad[1:] {
			z.LineTo(float32(p.X-float64(b.Min.X)), float32(p.Y-float64(b.Min.Y)))
		}
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

var _ port.OverlayRenderer = (*OverlayPainter)(nil)
