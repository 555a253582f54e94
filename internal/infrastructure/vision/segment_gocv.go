//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// GrabCutSegmenter отделяет передний план GrabCut-ом, затравка — центральный прямоугольник
type GrabCutSegmenter struct {
	RectFraction float64 // доля кадра под затравку
	Iterations   int
}

// NewGrabCutSegmenter создаёт сегментатор с прямоугольником 70%×70%
func NewGrabCutSegmenter() *GrabCutSegmenter {
	return &GrabCutSegmenter{RectFraction: 0.7, Iterations: 5}
}

func (s *GrabCutSegmenter) Name() string { return "grabcut" }

// Segment запускает GrabCut; ошибка означает переход к следующему способу
func (s *GrabCutSegmenter) Segment(ctx context.Context, img image.Image) (*entity.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	mask := gocv.NewMatWithSize(mat.Rows(), mat.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	bgd := gocv.NewMat()
	defer bgd.Close()
	fgd := gocv.NewMat()
	defer fgd.Close()

	rect := centralBox(mat.Cols(), mat.Rows(), s.RectFraction)
	if rect.Dx() < 2 || rect.Dy() < 2 {
		return nil, errors.New("image is too small for grabcut")
	}
	gocv.GrabCut(mat, &mask, rect, &bgd, &fgd, s.Iterations, gocv.GCInitWithRect)

	data := mask.ToBytes()
	if len(data) != mat.Rows()*mat.Cols() {
		return nil, errors.New("unexpected grabcut mask size")
	}
	out := entity.NewMask(mat.Cols(), mat.Rows())
	for i, v := range data {
		// у GC_FGD и GC_PR_FGD нечётные значения
		if v&1 == 1 {
			out.Pix[i] = entity.MaskOn
		}
	}
	if out.Empty() {
		return nil, errors.New("grabcut produced empty mask")
	}
	return out, nil
}

// CannySegmenter границы Canny с закрытием 5×5, как запасной вариант GrabCut
type CannySegmenter struct {
	Low, High  float32
	Iterations int
}

// NewCannySegmenter создаёт сегментатор с порогами 60/160
func NewCannySegmenter() *CannySegmenter {
	return &CannySegmenter{Low: 60, High: 160, Iterations: 2}
}

func (s *CannySegmenter) Name() string { return "canny" }

// Segment строит маску границ и заливает замкнутые области
func (s *CannySegmenter) Segment(ctx context.Context, img image.Image) (*entity.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, s.Low, s.High)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()
	for i := 0; i < s.Iterations; i++ {
		gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)
	}

	out, err := matToMask(edges)
	if err != nil {
		return nil, err
	}
	return fillHoles(out), nil
}

// imageToMat переводит изображение в BGR Mat
func imageToMat(img image.Image) (gocv.Mat, error) {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), errors.New("empty image")
	}
	bgr := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+4*w]
		for x := 0; x < w; x++ {
			bgr = append(bgr, row[4*x+2], row[4*x+1], row[4*x])
		}
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, bgr)
}

// matToMask одноканальная Mat в маску
func matToMask(m gocv.Mat) (*entity.Mask, error) {
	data := m.ToBytes()
	if len(data) != m.Rows()*m.Cols() {
		return nil, errors.New("expected single channel mat")
	}
	out := entity.NewMask(m.Cols(), m.Rows())
	for i, v := range data {
		if v != 0 {
			out.Pix[i] = entity.MaskOn
		}
	}
	return out, nil
}

// DefaultSegmenters цепочка сегментаторов: GrabCut, Canny, затем чистый Go
func DefaultSegmenters() []port.RegionSegmenter {
	return []port.RegionSegmenter{NewGrabCutSegmenter(), NewCannySegmenter(), NewEdgeSegmenter()}
}

// DefaultLineDetectors HoughLinesP с запасным детектором на Go
func DefaultLineDetectors() []port.LineDetector {
	return []port.LineDetector{NewHoughPDetector(), NewHoughDetector()}
}

var (
	_ port.RegionSegmenter = (*GrabCutSegmenter)(nil)
	_ port.RegionSegmenter = (*CannySegmenter)(nil)
)
