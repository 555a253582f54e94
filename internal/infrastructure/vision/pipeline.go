package vision

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/domain/measure"
	"roof-measure/internal/domain/port"
)

// Pipeline полный замер крыши по одному снимку
type Pipeline struct {
	Extractor  *RegionExtractor
	Simplifier *PolygonSimplifier
	Decomposer *PlaneDecomposer
	Cluster    *ClusterFilter
	Connect    *ConnectivityRepair

	Metadata port.MetadataReader      // nil — метаданные по умолчанию
	Masks    port.CandidateMaskSource // nil — только эвристическая сегментация
	Renderer port.OverlayRenderer     // nil — без картинки

	MaxSide int // больше — снимок уменьшается перед обработкой; 0 — без ограничения
}

// NewPipeline собирает конвейер со стратегиями по умолчанию
func NewPipeline(metadata port.MetadataReader, masks port.CandidateMaskSource) *Pipeline {
	return &Pipeline{
		Extractor:  NewRegionExtractor(),
		Simplifier: NewPolygonSimplifier(),
		Decomposer: NewPlaneDecomposer(NewGeomSplitter()),
		Cluster:    NewClusterFilter(),
		Connect:    NewConnectivityRepair(),
		Metadata:   metadata,
		Masks:      masks,
		Renderer:   NewOverlayPainter(),
	}
}

// Measure возвращает скаты и итоги. Ошибкой завершается только недекодируемый
// снимок (entity.ErrInvalidImage) или отмена контекста; остальные сбои деградируют.
func (p *Pipeline) Measure(ctx context.Context, req entity.MeasureRequest) (*entity.MeasurementResult, error) {
	img, err := decodeImage(req.Image)
	if err != nil {
		return nil, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	camera := p.camera(req, w, h)
	gsd := camera.GSD(req.AltitudeM)

	working, scale := fitImage(img, p.MaxSide)
	ww, wh := working.Bounds().Dx(), working.Bounds().Dy()

	masks, segmenter := p.candidateMasks(ctx, req, working, w, h)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rings []geometry.Ring
	var lines []geometry.Segment
	for _, m := range masks {
		for _, r := range p.Simplifier.Simplify(m) {
			planes, cuts := p.Decomposer.Decompose(working, r, m, req.Aggressive)
			rings = append(rings, planes...)
			lines = append(lines, cuts...)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var focus *geometry.Point
	if req.Focus != nil {
		f := req.Focus.Scale(scale)
		focus = &f
	}
	rings = p.Cluster.Filter(rings, focus, ww, wh)
	connected := p.Connect.Repair(rings)

	// обратно в координаты исходного снимка
	planeRings := make([]geometry.Ring, 0, len(connected))
	var bridges []geometry.Ring
	for _, c := range connected {
		planeRings = append(planeRings, c.Ring.Scale(1/scale))
		if c.Bridge != nil {
			bridges = append(bridges, c.Bridge.Scale(1/scale))
		}
	}
	for i, l := range lines {
		lines[i] = geometry.Segment{A: l.A.Scale(1 / scale), B: l.B.Scale(1 / scale)}
	}

	asm := measure.Assemble(planeRings, gsd, req.Pitch, lines)
	result := &entity.MeasurementResult{
		Camera:      camera,
		GSD:         gsd,
		ImageWidth:  w,
		ImageHeight: h,
		Planes:      asm.Planes,
		Bridges:     bridges,
		Totals:      asm.Totals,
		RotationDeg: asm.RotationDeg,
		Segmenter:   segmenter,
	}

	if p.Renderer != nil {
		overlay, err := p.Renderer.Render(img, asm.Planes, bridges)
		if err != nil {
			Logf("pipeline: overlay failed: %v", err)
		} else {
			result.Overlay = overlay
		}
	}
	return result, nil
}

// camera метаданные запроса или прочитанные из снимка, с подставленными значениями
func (p *Pipeline) camera(req entity.MeasureRequest, w, h int) entity.CameraMetadata {
	var c entity.CameraMetadata
	switch {
	case req.Camera != nil:
		c = *req.Camera
	case p.Metadata != nil:
		meta, err := p.Metadata.Read(req.Image)
		if err != nil {
			Logf("pipeline: metadata unavailable, using defaults: %v", err)
		}
		c = meta
	}
	if c.PixelWidth <= 0 {
		c.PixelWidth, c.PixelHeight = w, h
	}
	return c.Resolved()
}

// candidateMasks готовые маски запроса, маски модели или маска эвристики
func (p *Pipeline) candidateMasks(ctx context.Context, req entity.MeasureRequest, working *image.NRGBA, w, h int) ([]*entity.Mask, string) {
	ww, wh := working.Bounds().Dx(), working.Bounds().Dy()

	if len(req.Masks) > 0 {
		if masks := fitMasks(req.Masks, w, h, ww, wh); len(masks) > 0 {
			return masks, "supplied"
		}
		Logf("pipeline: supplied masks do not match image size, ignoring")
	}

	if p.Masks != nil {
		masks, err := p.Masks.Masks(ctx, working)
		switch {
		case err != nil:
			Logf("pipeline: mask source failed, falling back: %v", err)
		case len(masks) > 0:
			if fitted := fitMasks(masks, ww, wh, ww, wh); len(fitted) > 0 {
				return fitted, "model"
			}
		}
	}

	mask, name := p.Extractor.Extract(ctx, working)
	return []*entity.Mask{mask}, name
}

// fitMasks подгоняет маски размера srcW×srcH под рабочий кадр; маски другого размера отбрасываются
func fitMasks(masks []*entity.Mask, srcW, srcH, dstW, dstH int) []*entity.Mask {
	out := make([]*entity.Mask, 0, len(masks))
	for _, m := range masks {
		switch {
		case m == nil:
			continue
		case m.Width == dstW && m.Height == dstH:
			out = append(out, m)
		case m.Width == srcW && m.Height == srcH:
			resized := imaging.Resize(m.Gray(), dstW, dstH, imaging.NearestNeighbor)
			out = append(out, entity.MaskFromImage(resized, 127))
		default:
			Logf("pipeline: dropping mask %dx%d", m.Width, m.Height)
		}
	}
	return out
}

// String краткое описание для журнала
func (p *Pipeline) String() string {
	return fmt.Sprintf("pipeline(max_side=%d, model=%t)", p.MaxSide, p.Masks != nil)
}

var _ port.RoofMeasurer = (*Pipeline)(nil)
