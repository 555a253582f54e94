package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "roof-measure/internal/application"
	"roof-measure/internal/container"
	"roof-measure/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для замера крыш по снимкам с дрона.

📸 Отправьте мне снимок крыши сверху, и я посчитаю скаты и площадь кровли.

📋 Команды:
/measure — начать замер
/pitch <n> — уклон, подъём на 12 (например, /pitch 6)
/altitude <м> — высота съёмки, 0 — брать из EXIF
/aggressive — агрессивный поиск коньков и ендов
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте снимок крыши, сделанный сверху
2️⃣ Бот выделит крышу и разобьёт её на скаты
3️⃣ Вы получите площади по скатам и итог + снимок с контурами

💡 Рекомендации:
• Отправляйте снимок файлом, чтобы сохранить EXIF с высотой и камерой
• Крыша должна быть в центре кадра
• Если скатов слишком мало, включите /aggressive

📋 Команды:
/measure — начать замер
/pitch <n>, /altitude <м>, /aggressive — настройки
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте снимок крыши для замера."
	msgCancelled       = "❌ Операция отменена. Отправьте /measure для нового замера."
	msgSendPhoto       = "📸 Пожалуйста, отправьте снимок крыши для замера."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю снимок..."
	msgNoRoof          = "🤷 Крыша на снимке не найдена. Попробуйте /aggressive или другой снимок."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте другой снимок."
	msgInvalidImage    = "⚠️ Файл не похож на изображение."
	msgNotImage        = "📎 Это не изображение. Отправьте снимок крыши фото или файлом."
	msgInvalidPitch    = "⚠️ Уклон должен быть числом больше 0 и меньше 48, например /pitch 6"
	msgInvalidAltitude = "⚠️ Высота должна быть неотрицательным числом в метрах, например /altitude 40"
)

// Bot представляет Telegram-бота
type Bot struct {
	api          *tgbotapi.BotAPI
	users        *app.UserService
	measurements *app.MeasurementService
	defaultPitch float64
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, defaultPitch float64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:          api,
		users:        c.UserService,
		measurements: c.MeasurementService,
		defaultPitch: defaultPitch,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото; документ сохраняет EXIF
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		go b.handleImage(ctx, msg, photo.FileID)
		return
	}
	if msg.Document != nil {
		if !strings.HasPrefix(msg.Document.MimeType, "image/") {
			b.sendMessage(msg.Chat.ID, msgNotImage)
			return
		}
		go b.handleImage(ctx, msg, msg.Document.FileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			log.Printf("Error resetting user: %v", err)
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "measure":
		user, err := b.users.BeginMeasure(ctx, userID, chatID)
		if err != nil {
			log.Printf("Error updating user: %v", err)
			return
		}
		b.sendMessage(chatID, msgAwaitingPhoto+"\n\n"+formatSettings(user.Settings, b.defaultPitch))

	case "pitch":
		arg := msg.CommandArguments()
		if strings.TrimSpace(arg) == "" {
			b.sendSettings(ctx, userID, chatID)
			return
		}
		pitch, err := parseNumber(arg)
		if err != nil {
			b.sendMessage(chatID, msgInvalidPitch)
			return
		}
		b.applySettings(chatID, msgInvalidPitch)(b.users.SetPitch(ctx, userID, chatID, pitch))

	case "altitude":
		alt, err := parseNumber(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgInvalidAltitude)
			return
		}
		b.applySettings(chatID, msgInvalidAltitude)(b.users.SetAltitude(ctx, userID, chatID, alt))

	case "aggressive":
		b.applySettings(chatID, msgProcessingError)(b.users.ToggleAggressive(ctx, userID, chatID))

	case "cancel":
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			log.Printf("Error resetting user: %v", err)
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// applySettings отвечает новыми настройками или сообщением об ошибке
func (b *Bot) applySettings(chatID int64, invalid string) func(*entity.User, error) {
	return func(user *entity.User, err error) {
		switch {
		case errors.Is(err, app.ErrInvalidPitch), errors.Is(err, app.ErrInvalidAltitude):
			b.sendMessage(chatID, invalid)
		case err != nil:
			log.Printf("Error updating settings: %v", err)
			b.sendMessage(chatID, msgProcessingError)
		default:
			b.sendMessage(chatID, formatSettings(user.Settings, b.defaultPitch))
		}
	}
}

func (b *Bot) sendSettings(ctx context.Context, userID, chatID int64) {
	user, err := b.users.Get(ctx, userID, chatID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}
	b.sendMessage(chatID, formatSettings(user.Settings, b.defaultPitch))
}

// handleImage скачивает снимок, замеряет крышу и отправляет отчёт с картинкой
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID
	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	result, err := b.measurements.Measure(ctx, msg.From.ID, chatID, imageData)
	switch {
	case errors.Is(err, entity.ErrInvalidImage):
		b.sendMessage(chatID, msgInvalidImage)
		return
	case err != nil:
		log.Printf("Error measuring roof: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	text := formatResult(result)
	if len(result.Overlay) == 0 {
		b.sendMessage(chatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "roof.png", Bytes: result.Overlay})
	// подпись фото ограничена 1024 символами
	if len([]rune(text)) <= 1024 {
		photo.Caption = text
	} else {
		b.sendMessage(chatID, text)
	}
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending overlay: %v", err)
		if photo.Caption != "" {
			b.sendMessage(chatID, text)
		}
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
