package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roof-measure/internal/domain/entity"
	"roof-measure/internal/infrastructure/storage"
)

// fakeMeasurer запоминает запросы и считает одновременные вызовы
type fakeMeasurer struct {
	mu       sync.Mutex
	requests []entity.MeasureRequest
	err      error
	delay    time.Duration

	active atomic.Int32
	peak   atomic.Int32
}

func (f *fakeMeasurer) Measure(ctx context.Context, req entity.MeasureRequest) (*entity.MeasurementResult, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.MeasurementResult{Planes: []entity.Plane{{ID: "P1"}}, Segmenter: "fake"}, nil
}

func newMeasurementService(m *fakeMeasurer, opts MeasurementOptions) (*MeasurementService, *UserService) {
	users := NewUserService(storage.NewMemoryUserRepository())
	if m == nil {
		return NewMeasurementService(users, nil, opts), users
	}
	return NewMeasurementService(users, m, opts), users
}

func TestMeasurementService_NotConfigured(t *testing.T) {
	svc, _ := newMeasurementService(nil, MeasurementOptions{})
	_, err := svc.Measure(context.Background(), 1, 10, []byte("img"))
	require.ErrorIs(t, err, ErrMeasurerNotConfigured)
}

func TestMeasurementService_UsesUserSettings(t *testing.T) {
	m := &fakeMeasurer{}
	svc, users := newMeasurementService(m, MeasurementOptions{Pitch: 6, AltitudeM: 40})
	ctx := context.Background()

	_, err := users.SetPitch(ctx, 1, 10, 9)
	require.NoError(t, err)
	_, err = users.ToggleAggressive(ctx, 1, 10)
	require.NoError(t, err)

	res, err := svc.Measure(ctx, 1, 10, []byte("img"))
	require.NoError(t, err)
	require.True(t, res.HasPlanes())

	require.Len(t, m.requests, 1)
	req := m.requests[0]
	require.Equal(t, []byte("img"), req.Image)
	require.Equal(t, 9.0, req.Pitch)
	require.Equal(t, 40.0, req.AltitudeM)
	require.True(t, req.Aggressive)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestMeasurementService_Request(t *testing.T) {
	svc, _ := newMeasurementService(&fakeMeasurer{}, MeasurementOptions{Pitch: 7, AltitudeM: 35})

	req := svc.Request(entity.MeasureSettings{}, nil)
	require.Equal(t, 7.0, req.Pitch)
	require.Equal(t, 35.0, req.AltitudeM)

	req = svc.Request(entity.MeasureSettings{Pitch: 4, AltitudeM: 80}, nil)
	require.Equal(t, 4.0, req.Pitch)
	require.Equal(t, 80.0, req.AltitudeM)
}

func TestMeasurementService_ErrorResetsState(t *testing.T) {
	m := &fakeMeasurer{err: entity.ErrInvalidImage}
	svc, users := newMeasurementService(m, MeasurementOptions{})
	ctx := context.Background()

	_, err := svc.Measure(ctx, 1, 10, []byte("junk"))
	require.True(t, errors.Is(err, entity.ErrInvalidImage))

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestMeasurementService_BoundsConcurrency(t *testing.T) {
	m := &fakeMeasurer{delay: 20 * time.Millisecond}
	svc, _ := newMeasurementService(m, MeasurementOptions{Workers: 2})

	var wg sync.WaitGroup
	for i := int64(0); i < 6; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.Measure(context.Background(), id, id, []byte("img"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, m.requests, 6)
	require.LessOrEqual(t, m.peak.Load(), int32(2))
}

func TestMeasurementService_CancelledWhileWaiting(t *testing.T) {
	m := &fakeMeasurer{}
	svc, _ := newMeasurementService(m, MeasurementOptions{Workers: 1})
	require.True(t, svc.sem.TryAcquire(1))
	defer svc.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Measure(ctx, 1, 10, []byte("img"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, m.requests)
}
