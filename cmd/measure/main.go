// Команда measure замеряет крышу на одном снимке и печатает результат в JSON.
//
//	measure -in roof.jpg [-pitch 6] [-alt 40] [-aggressive] [-focus x,y] [-overlay out.png]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/geometry"
	"roof-measure/internal/infrastructure/exif"
	"roof-measure/internal/infrastructure/vision"
)

func main() {
	in := flag.String("in", "", "roof image (JPEG/PNG)")
	pitch := flag.Float64("pitch", entity.DefaultPitch, "roof pitch, rise per 12")
	alt := flag.Float64("alt", 0, "altitude override in meters; 0 uses EXIF")
	aggressive := flag.Bool("aggressive", false, "looser ridge/valley line search")
	focus := flag.String("focus", "", "point of interest as x,y in image pixels")
	maxSide := flag.Int("max-side", 0, "downscale images larger than this before processing")
	overlay := flag.String("overlay", "", "write overlay PNG to this path")
	quiet := flag.Bool("q", false, "do not log fallback notices")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *quiet {
		vision.SetLogger(nil)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	req := entity.MeasureRequest{Image: data, Pitch: *pitch, AltitudeM: *alt, Aggressive: *aggressive}
	if *focus != "" {
		p, err := parsePoint(*focus)
		if err != nil {
			log.Fatalf("Invalid -focus: %v", err)
		}
		req.Focus = &p
	}

	pipeline := vision.NewPipeline(exif.NewReader(), nil)
	pipeline.MaxSide = *maxSide
	if *overlay == "" {
		pipeline.Renderer = nil
	}

	result, err := pipeline.Measure(context.Background(), req)
	if err != nil {
		log.Fatalf("Measurement failed: %v", err)
	}

	if *overlay != "" && len(result.Overlay) > 0 {
		if err := os.WriteFile(*overlay, result.Overlay, 0o644); err != nil {
			log.Fatalf("Failed to write overlay: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func parsePoint(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Pt(x, y), nil
}
