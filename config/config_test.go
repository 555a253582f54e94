package config

import (
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"TELEGRAM_TOKEN", "DEFAULT_PITCH", "ALTITUDE_M", "MAX_IMAGE_SIDE",
		"WORKERS", "SEG_MODEL_PATH", "ONNX_LIBRARY_PATH", "SEG_MODEL_INPUT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 6.0, cfg.DefaultPitch)
	require.Zero(t, cfg.AltitudeM)
	require.Zero(t, cfg.MaxImageSide)
	require.Equal(t, runtime.NumCPU(), cfg.Workers)
	require.Equal(t, 640, cfg.SegModelInput)
	require.Empty(t, cfg.SegModelPath)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DEFAULT_PITCH", "8.5")
	t.Setenv("ALTITUDE_M", "45")
	t.Setenv("MAX_IMAGE_SIDE", "2048")
	t.Setenv("WORKERS", strconv.Itoa(3))
	t.Setenv("SEG_MODEL_PATH", "/models/roof.onnx")
	t.Setenv("SEG_MODEL_INPUT", "512")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, 8.5, cfg.DefaultPitch)
	require.Equal(t, 45.0, cfg.AltitudeM)
	require.Equal(t, 2048, cfg.MaxImageSide)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, "/models/roof.onnx", cfg.SegModelPath)
	require.Equal(t, 512, cfg.SegModelInput)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKERS", "many")
	_, err := Load()
	require.ErrorContains(t, err, "WORKERS")

	clearEnv(t)
	t.Setenv("DEFAULT_PITCH", "60")
	_, err = Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("ALTITUDE_M", "-5")
	_, err = Load()
	require.Error(t, err)
}
