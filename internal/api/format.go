package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"roof-measure/internal/domain/entity"
)

var errNoArgument = errors.New("argument is required")

// formatResult текстовый отчёт о замере
func formatResult(res *entity.MeasurementResult) string {
	if !res.HasPlanes() {
		return msgNoRoof
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏠 Найдено скатов: %d\n\n", len(res.Planes))
	for _, p := range res.Planes {
		fmt.Fprintf(&b, "%s: %.1f ft² в плане, %.1f ft² кровли, периметр %.1f ft\n",
			p.ID, p.PlanAreaFt2, p.SurfaceAreaFt2, p.PerimeterFt)
	}

	t := res.Totals
	fmt.Fprintf(&b, "\n📐 Уклон: %s/12\n", strconv.FormatFloat(res.Planes[0].Pitch, 'f', -1, 64))
	fmt.Fprintf(&b, "Итого: план %.1f ft², кровля %.1f ft², %.2f squares, периметр %.1f ft\n",
		t.PlanAreaFt2, t.SurfaceAreaFt2, t.Squares, t.PerimeterFt)

	cam := res.Camera
	model := cam.Model
	if model == "" {
		model = "камера не определена"
	}
	fmt.Fprintf(&b, "📏 GSD: %.4f м/px (%s, высота %.1f м)", res.GSD, model, cam.AltitudeM)

	if res.RotationDeg != nil {
		fmt.Fprintf(&b, "\n🧭 Поворот: %.1f°", *res.RotationDeg)
	}
	return b.String()
}

// formatSettings текущие настройки пользователя
func formatSettings(s entity.MeasureSettings, defaultPitch float64) string {
	pitch := s.Pitch
	suffix := ""
	if pitch <= 0 {
		pitch, suffix = defaultPitch, " (по умолчанию)"
	}
	alt := "из EXIF"
	if s.AltitudeM > 0 {
		alt = strconv.FormatFloat(s.AltitudeM, 'f', -1, 64) + " м"
	}
	aggr := "выключен"
	if s.Aggressive {
		aggr = "включён"
	}
	return fmt.Sprintf("⚙️ Уклон: %s/12%s\nВысота: %s\nАгрессивный поиск линий: %s",
		strconv.FormatFloat(pitch, 'f', -1, 64), suffix, alt, aggr)
}

// parseNumber разбирает числовой аргумент команды, допускает запятую
func parseNumber(args string) (float64, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, errNoArgument
	}
	return strconv.ParseFloat(strings.Replace(args, ",", ".", 1), 64)
}
