package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"roof-measure/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesOnce(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	errs := make(chan error, 16)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Get(ctx, 7, 70)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, repo.users, 1)
}

func TestMemoryUserRepository_SaveAndSettings(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)

	user.SetState(entity.StateAwaitingPhoto)
	require.NoError(t, repo.Save(ctx, user))

	settings := entity.MeasureSettings{Pitch: 8, AltitudeM: 45, Aggressive: true}
	require.NoError(t, repo.UpdateSettings(ctx, 1, settings))

	got, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, got.State)
	require.Equal(t, settings, got.Settings)
}

func TestMemoryUserRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	user.SetState(entity.StateProcessing)

	again, err := repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, again.State)
}

func TestMemoryUserRepository_UpdateStateKeepsSettings(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 4, 40)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateSettings(ctx, 4, entity.MeasureSettings{Pitch: 6}))
	require.NoError(t, repo.UpdateState(ctx, 4, entity.StateProcessing))

	got, err := repo.Get(ctx, 4, 40)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, got.State)
	require.Equal(t, 6.0, got.Settings.Pitch)

	// неизвестный пользователь не создаётся
	require.NoError(t, repo.UpdateState(ctx, 99, entity.StateProcessing))
	require.Len(t, repo.users, 1)
}
