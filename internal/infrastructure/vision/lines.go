package vision

import (
	"errors"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/domain/port"
)

// LineParams пороги поиска линий
type LineParams struct {
	MinLengthRatio float64 // минимальная длина как доля меньшей стороны кадра
	EdgeThreshold  uint8   // порог модуля градиента
	MaxGap         float64 // допустимый разрыв внутри отрезка
}

// Пороги обычного и агрессивного режимов
var (
	NormalLineParams     = LineParams{MinLengthRatio: 0.12, EdgeThreshold: 60, MaxGap: 12}
	AggressiveLineParams = LineParams{MinLengthRatio: 0.07, EdgeThreshold: 35, MaxGap: 12}
)

func lineParams(aggressive bool) LineParams {
	if aggressive {
		return AggressiveLineParams
	}
	return NormalLineParams
}

func (p LineParams) minLength(w, h int) float64 {
	return math.Max(2, p.MinLengthRatio*float64(minInt(w, h)))
}

// HoughDetector преобразование Хафа по модулю градиента, без OpenCV
type HoughDetector struct {
	Angles     int     // число шагов по углу на 180°
	BlurRadius float64 // сглаживание перед градиентом
	MaxLines   int
	Tolerance  float64 // расстояние точки до прямой при сборе отрезка
}

// NewHoughDetector создаёт детектор с параметрами по умолчанию
func NewHoughDetector() *HoughDetector {
	return &HoughDetector{Angles: 180, BlurRadius: 1, MaxLines: 30, Tolerance: 1.5}
}

func (d *HoughDetector) Name() string { return "hough" }

// Detect ищет отрезки среди граничных пикселей внутри region
func (d *HoughDetector) Detect(img image.Image, region *entity.Mask, aggressive bool) ([]geometry.Segment, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if region == nil || region.Width != w || region.Height != h {
		return nil, errors.New("region mask does not match image")
	}

	params := lineParams(aggressive)
	var src image.Image = imaging.Grayscale(img)
	if d.BlurRadius > 0 {
		src = blur.Gaussian(src, d.BlurRadius)
	}
	edges := gradientMask(src, params.EdgeThreshold).And(region)

	pts := make([]geometry.Point, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.At(x, y) {
				pts = append(pts, geometry.Pt(float64(x), float64(y)))
			}
		}
	}
	minLen := params.minLength(w, h)
	if float64(len(pts)) < minLen {
		return nil, nil
	}

	return d.segments(pts, w, h, minLen, params.MaxGap), nil
}

type houghPeak struct {
	rho   int
	theta int
	votes int
}

func (d *HoughDetector) segments(pts []geometry.Point, w, h int, minLen, maxGap float64) []geometry.Segment {
	maxDist := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	nRho := 2*maxDist + 1
	cosT := make([]float64, d.Angles)
	sinT := make([]float64, d.Angles)
	for t := range cosT {
		a := float64(t) * math.Pi / float64(d.Angles)
		cosT[t], sinT[t] = math.Cos(a), math.Sin(a)
	}

	acc := make([]int, nRho*d.Angles)
	for _, p := range pts {
		for t := 0; t < d.Angles; t++ {
			r := int(math.Round(p.X*cosT[t]+p.Y*sinT[t])) + maxDist
			acc[r*d.Angles+t]++
		}
	}

	// голоса не меньше половины минимальной длины
	peaks := houghPeaks(acc, nRho, d.Angles, int(minLen/2), 4*d.MaxLines)

	used := make([]bool, len(pts))
	var out []geometry.Segment
	for _, pk := range peaks {
		if len(out) >= d.MaxLines {
			break
		}
		c, s := cosT[pk.theta], sinT[pk.theta]
		rho := float64(pk.rho)

		type proj struct {
			i int
			t float64
		}
		var on []proj
		for i, p := range pts {
			if used[i] || math.Abs(p.X*c+p.Y*s-rho) > d.Tolerance {
				continue
			}
			on = append(on, proj{i: i, t: -p.X*s + p.Y*c})
		}
		if float64(len(on)) < minLen/2 {
			continue
		}
		sort.Slice(on, func(i, j int) bool { return on[i].t < on[j].t })

		// разбиваем проекции на участки без разрывов больше maxGap
		start := 0
		for k := 1; k <= len(on); k++ {
			if k < len(on) && on[k].t-on[k-1].t <= maxGap {
				continue
			}
			if on[k-1].t-on[start].t >= minLen {
				seg := lineSegment(c, s, rho, on[start].t, on[k-1].t)
				out = append(out, seg)
				for _, q := range on[start:k] {
					used[q.i] = true
				}
			}
			start = k
		}
	}
	return out
}

// lineSegment точки прямой x·cos+y·sin=rho с параметрами t0 и t1 вдоль неё
func lineSegment(c, s, rho, t0, t1 float64) geometry.Segment {
	base := geometry.Pt(rho*c, rho*s)
	dir := geometry.Pt(-s, c)
	return geometry.Segment{A: base.Add(dir.Scale(t0)), B: base.Add(dir.Scale(t1))}
}

// houghPeaks локальные максимумы накопителя с не меньше чем threshold голосами,
// по убыванию голосов, не больше limit штук. Индекс строки r соответствует rho = r - nRho/2.
func houghPeaks(acc []int, nRho, nTheta, threshold, limit int) []houghPeak {
	maxDist := nRho / 2
	var peaks []houghPeak
	for r := 0; r < nRho; r++ {
		for t := 0; t < nTheta; t++ {
			v := acc[r*nTheta+t]
			if v < threshold || !isLocalMax(acc, nRho, nTheta, r, t) {
				continue
			}
			peaks = append(peaks, houghPeak{rho: r - maxDist, theta: t, votes: v})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })
	if limit > 0 && len(peaks) > limit {
		peaks = peaks[:limit]
	}
	return peaks
}

// isLocalMax максимум в окне 5×5. Угол замкнут с периодом 180°:
// переход через край меняет знак rho.
func isLocalMax(acc []int, nRho, nTheta, r, t int) bool {
	v := acc[r*nTheta+t]
	for dr := -2; dr <= 2; dr++ {
		for dt := -2; dt <= 2; dt++ {
			if dr == 0 && dt == 0 {
				continue
			}
			nr, nt := r+dr, t+dt
			if nt < 0 || nt >= nTheta {
				nt = (nt + nTheta) % nTheta
				nr = nRho - 1 - nr
			}
			if nr < 0 || nr >= nRho {
				continue
			}
			if acc[nr*nTheta+nt] > v {
				return false
			}
		}
	}
	return true
}

var _ port.LineDetector = (*HoughDetector)(nil)
