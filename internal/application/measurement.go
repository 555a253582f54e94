package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

var ErrMeasurerNotConfigured = errors.New("measurer is not configured")

// MeasurementOptions значения по умолчанию для замеров
type MeasurementOptions struct {
	Workers   int     // одновременных замеров; меньше 1 — один
	Pitch     float64 // уклон, если пользователь его не задал
	AltitudeM float64 // высота, если пользователь её не задал; 0 — из EXIF
}

// MeasurementService запускает замеры крыш с ограничением параллельности
type MeasurementService struct {
	users    *UserService
	measurer port.RoofMeasurer
	sem      *semaphore.Weighted
	opts     MeasurementOptions
}

// NewMeasurementService создаёт сервис замеров
func NewMeasurementService(users *UserService, measurer port.RoofMeasurer, opts MeasurementOptions) *MeasurementService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &MeasurementService{
		users:    users,
		measurer: measurer,
		sem:      semaphore.NewWeighted(int64(opts.Workers)),
		opts:     opts,
	}
}

// Request собирает запрос замера из настроек пользователя
func (s *MeasurementService) Request(settings entity.MeasureSettings, photo []byte) entity.MeasureRequest {
	req := entity.MeasureRequest{
		Image:      photo,
		Pitch:      settings.Pitch,
		AltitudeM:  settings.AltitudeM,
		Aggressive: settings.Aggressive,
	}
	if req.Pitch <= 0 {
		req.Pitch = s.opts.Pitch
	}
	if req.AltitudeM <= 0 {
		req.AltitudeM = s.opts.AltitudeM
	}
	return req
}

// Measure замеряет крышу на снимке пользователя. На время замера пользователь
// в состоянии обработки, после — в главном меню.
func (s *MeasurementService) Measure(ctx context.Context, userID, chatID int64, photo []byte) (*entity.MeasurementResult, error) {
	if s.measurer == nil {
		return nil, ErrMeasurerNotConfigured
	}

	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	defer func() {
		// контекст запроса мог быть уже отменён
		if _, err := s.users.SetState(context.WithoutCancel(ctx), userID, chatID, entity.StateMainMenu); err != nil {
			log.Printf("Error resetting user %d state: %v", userID, err)
		}
	}()

	id := uuid.NewString()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for worker: %w", err)
	}
	defer s.sem.Release(1)

	req := s.Request(user.Settings, photo)
	start := time.Now()
	log.Printf("[%s] measuring %d bytes for user %d (pitch=%g, aggressive=%t)", id, len(photo), userID, req.Pitch, req.Aggressive)

	result, err := s.measurer.Measure(ctx, req)
	if err != nil {
		log.Printf("[%s] measurement failed after %s: %v", id, time.Since(start), err)
		return nil, err
	}

	log.Printf("[%s] done in %s: %d planes, %.1f ft², segmenter=%s",
		id, time.Since(start).Round(time.Millisecond), len(result.Planes), result.Totals.PlanAreaFt2, result.Segmenter)
	return result, nil
}
