package app

import (
	"context"
	"errors"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/domain/port"
)

// MaxPitch верхняя граница подъёма на 12 (исключая)
const MaxPitch = 48

var (
	ErrInvalidPitch    = errors.New("pitch must be between 0 and 48")
	ErrInvalidAltitude = errors.New("altitude must not be negative")
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// SetState меняет только состояние, настройки пользователя не перезаписываются
func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	// Get создаёт пользователя при первом обращении
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateState(ctx, userID, state); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) BeginMeasure(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// SetPitch задаёт уклон, 0 < pitch < 48
func (s *UserService) SetPitch(ctx context.Context, userID, chatID int64, pitch float64) (*entity.User, error) {
	if !(pitch > 0 && pitch < MaxPitch) {
		return nil, ErrInvalidPitch
	}
	return s.updateSettings(ctx, userID, chatID, func(st *entity.MeasureSettings) { st.Pitch = pitch })
}

// SetAltitude переопределяет высоту съёмки; 0 возвращает высоту из EXIF
func (s *UserService) SetAltitude(ctx context.Context, userID, chatID int64, altitudeM float64) (*entity.User, error) {
	if altitudeM < 0 {
		return nil, ErrInvalidAltitude
	}
	return s.updateSettings(ctx, userID, chatID, func(st *entity.MeasureSettings) { st.AltitudeM = altitudeM })
}

// ToggleAggressive переключает агрессивный поиск линий
func (s *UserService) ToggleAggressive(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.updateSettings(ctx, userID, chatID, func(st *entity.MeasureSettings) { st.Aggressive = !st.Aggressive })
}

func (s *UserService) updateSettings(ctx context.Context, userID, chatID int64, apply func(*entity.MeasureSettings)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	apply(&user.Settings)
	if err := s.repo.UpdateSettings(ctx, userID, user.Settings); err != nil {
		return nil, err
	}

	return user, nil
}
