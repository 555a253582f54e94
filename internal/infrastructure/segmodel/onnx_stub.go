//go:build !onnx

package segmodel

import (
	"context"
	"image"

	"roof-measure/internal/domain/entity"
)

// ONNXSource заглушка для сборки без onnxruntime
type ONNXSource struct{}

// NewONNXSource всегда возвращает ErrNotCompiled
func NewONNXSource(Config) (*ONNXSource, error) {
	return nil, ErrNotCompiled
}

// Masks всегда возвращает ErrNotCompiled
func (s *ONNXSource) Masks(context.Context, image.Image) ([]*entity.Mask, error) {
	return nil, ErrNotCompiled
}

// Close ничего не делает
func (s *ONNXSource) Close() error { return nil }
