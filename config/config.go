package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	DefaultPitch float64 // подъём на 12 для пользователей без /pitch
	AltitudeM    float64 // общая высота съёмки; 0 — из EXIF
	MaxImageSide int     // 0 — снимок не уменьшается
	Workers      int

	SegModelPath    string // пусто — без модели масок
	ONNXLibraryPath string
	SegModelInput   int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		SegModelPath:    os.Getenv("SEG_MODEL_PATH"),
		ONNXLibraryPath: os.Getenv("ONNX_LIBRARY_PATH"),
	}

	var err error
	if cfg.DefaultPitch, err = envFloat("DEFAULT_PITCH", 6); err != nil {
		return nil, err
	}
	if cfg.AltitudeM, err = envFloat("ALTITUDE_M", 0); err != nil {
		return nil, err
	}
	if cfg.MaxImageSide, err = envInt("MAX_IMAGE_SIDE", 0); err != nil {
		return nil, err
	}
	if cfg.Workers, err = envInt("WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.SegModelInput, err = envInt("SEG_MODEL_INPUT", 640); err != nil {
		return nil, err
	}

	if cfg.DefaultPitch <= 0 || cfg.DefaultPitch >= 48 {
		return nil, fmt.Errorf("DEFAULT_PITCH must be between 0 and 48, got %g", cfg.DefaultPitch)
	}
	if cfg.AltitudeM < 0 || cfg.MaxImageSide < 0 || cfg.Workers < 1 || cfg.SegModelInput < 1 {
		return nil, fmt.Errorf("invalid numeric settings: altitude=%g max_side=%d workers=%d model_input=%d",
			cfg.AltitudeM, cfg.MaxImageSide, cfg.Workers, cfg.SegModelInput)
	}

	return cfg, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
