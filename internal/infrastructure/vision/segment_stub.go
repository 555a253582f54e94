//go:build !gocv
// +build !gocv

package vision

import "roof-measure/internal/domain/port"

// DefaultSegmenters без OpenCV доступен только сегментатор по градиенту
func DefaultSegmenters() []port.RegionSegmenter {
	return []port.RegionSegmenter{NewEdgeSegmenter()}
}

// DefaultLineDetectors без OpenCV доступно только преобразование Хафа на Go
func DefaultLineDetectors() []port.LineDetector {
	return []port.LineDetector{NewHoughDetector()}
}
