//go:build onnx

package segmodel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	onnxrt "github.com/yalue/onnxruntime_go"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// Окружение onnxruntime общее для процесса; ошибка инициализации сохраняется
// для всех последующих NewONNXSource
var (
	envOnce sync.Once
	envErr  error
)

// ONNXSource модель экземплярной сегментации крыш.
// Вход [1,3,S,S] в диапазоне 0..1, выход [1,N,S,S]: по карте вероятностей на экземпляр.
type ONNXSource struct {
	cfg     Config
	mu      sync.Mutex // сессия не потокобезопасна
	session *onnxrt.DynamicAdvancedSession
}

// NewONNXSource загружает модель
func NewONNXSource(cfg Config) (*ONNXSource, error) {
	cfg = cfg.withDefaults()
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("segmentation model not found: %s", cfg.ModelPath)
	}

	envOnce.Do(func() {
		if cfg.LibraryPath != "" {
			onnxrt.SetSharedLibraryPath(cfg.LibraryPath)
		}
		envErr = onnxrt.InitializeEnvironment()
	})
	if envErr != nil {
		return nil, fmt.Errorf("init onnxruntime: %w", envErr)
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read model io: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.New("model has no inputs or outputs")
	}

	session, err := onnxrt.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &ONNXSource{cfg: cfg, session: session}, nil
}

// Masks возвращает маски экземпляров размером с img
func (s *ONNXSource) Masks(ctx context.Context, img image.Image) ([]*entity.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := s.cfg.InputSize
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	input, err := onnxrt.NewTensor(onnxrt.NewShape(1, 3, int64(size), int64(size)), toTensor(img, size))
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Destroy() }()

	outs := []onnxrt.Value{nil}
	s.mu.Lock()
	err = s.session.Run([]onnxrt.Value{input}, outs)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}
	if outs[0] == nil {
		return nil, errors.New("no output from model")
	}
	defer func() { _ = outs[0].Destroy() }()

	t, ok := outs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, errors.New("invalid output tensor type")
	}
	shape := t.GetShape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	n, oh, ow := int(shape[1]), int(shape[2]), int(shape[3])
	return probabilityMasks(t.GetData(), n, ow, oh, s.cfg.Threshold, w, h), nil
}

// Close освобождает сессию
func (s *ONNXSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

var _ port.CandidateMaskSource = (*ONNXSource)(nil)
