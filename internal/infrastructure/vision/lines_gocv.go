//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/domain/port"
)

// HoughPDetector вероятностное преобразование Хафа OpenCV по границам Canny
type HoughPDetector struct{}

// NewHoughPDetector создаёт детектор на OpenCV
func NewHoughPDetector() *HoughPDetector {
	return &HoughPDetector{}
}

func (d *HoughPDetector) Name() string { return "houghp" }

// Detect ищет отрезки внутри region
func (d *HoughPDetector) Detect(img image.Image, region *entity.Mask, aggressive bool) ([]geometry.Segment, error) {
	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if region == nil || region.Width != mat.Cols() || region.Height != mat.Rows() {
		return nil, errors.New("region mask does not match image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	low, high, votes := float32(50), float32(150), 60
	if aggressive {
		low, high, votes = 30, 100, 35
	}
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, low, high)

	regionMat, err := gocv.NewMatFromBytes(region.Height, region.Width, gocv.MatTypeCV8U, region.Pix)
	if err != nil {
		return nil, err
	}
	defer regionMat.Close()

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAnd(edges, regionMat, &masked)

	params := lineParams(aggressive)
	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(masked, &lines, 1, math.Pi/180, votes,
		float32(params.minLength(mat.Cols(), mat.Rows())), float32(params.MaxGap))

	out := make([]geometry.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		out = append(out, geometry.Seg(float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])))
	}
	return out, nil
}

var _ port.LineDetector = (*HoughPDetector)(nil)
