package segmodel

import (
	"context"
	"image"
	"io"
	"sync"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// Loader открывает модель масок
type Loader func() (port.CandidateMaskSource, error)

// LazySource загружает модель при первом обращении, ровно один раз.
// Ошибка загрузки запоминается и возвращается всем следующим вызовам.
type LazySource struct {
	load Loader

	once sync.Once
	src  port.CandidateMaskSource
	err  error
}

// NewLazySource создаёт ленивый источник масок
func NewLazySource(load Loader) *LazySource {
	return &LazySource{load: load}
}

// Masks возвращает маски модели
func (l *LazySource) Masks(ctx context.Context, img image.Image) ([]*entity.Mask, error) {
	l.once.Do(func() {
		l.src, l.err = l.load()
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.src.Masks(ctx, img)
}

// Close освобождает модель, если она была загружена
func (l *LazySource) Close() error {
	// блокирует последующую загрузку
	l.once.Do(func() {})
	if c, ok := l.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ port.CandidateMaskSource = (*LazySource)(nil)
