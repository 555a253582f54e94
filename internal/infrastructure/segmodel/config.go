package segmodel

import "errors"

// ErrNotCompiled бинарник собран без тега onnx
var ErrNotCompiled = errors.New("onnx support is not compiled in")

// Config параметры модели масок
type Config struct {
	ModelPath   string
	LibraryPath string  // путь к onnxruntime; пусто — системный
	InputSize   int     // сторона квадратного входа модели
	Threshold   float32 // порог вероятности пикселя крыши
}

func (c Config) withDefaults() Config {
	if c.InputSize <= 0 {
		c.InputSize = 640
	}
	if c.Threshold <= 0 {
		c.Threshold = 0.5
	}
	return c
}
