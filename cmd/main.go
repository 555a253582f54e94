package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"roof-measure/config"
	telegram "roof-measure/internal/api"
	app "roof-measure/internal/application"
	"roof-measure/internal/container"
	"roof-measure/internal/domain/port"
	"roof-measure/internal/infrastructure/exif"
	"roof-measure/internal/infrastructure/segmodel"
	"roof-measure/internal/infrastructure/storage"
	"roof-measure/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Модель масок загружается при первом замере
	var masks port.CandidateMaskSource
	if cfg.SegModelPath != "" {
		lazy := segmodel.NewLazySource(func() (port.CandidateMaskSource, error) {
			return segmodel.NewONNXSource(segmodel.Config{
				ModelPath:   cfg.SegModelPath,
				LibraryPath: cfg.ONNXLibraryPath,
				InputSize:   cfg.SegModelInput,
			})
		})
		defer lazy.Close()
		masks = lazy
	}

	pipeline := vision.NewPipeline(exif.NewReader(), masks)
	pipeline.MaxSide = cfg.MaxImageSide
	log.Printf("Using %s with %d workers", pipeline, cfg.Workers)

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, pipeline, app.MeasurementOptions{
		Workers:   cfg.Workers,
		Pitch:     cfg.DefaultPitch,
		AltitudeM: cfg.AltitudeM,
	})

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.DefaultPitch)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	log.Println("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
