package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание снимка крыши
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// MeasureSettings параметры замера, которые пользователь задаёт командами
type MeasureSettings struct {
	Pitch      float64 // подъём на 12 единиц заложения; 0 — уклон по умолчанию
	AltitudeM  float64 // высота съёмки над землёй; 0 — брать из EXIF
	Aggressive bool    // агрессивный поиск линий коньков и ендов
}

// User представляет пользователя бота
type User struct {
	ID       int64           // Telegram User ID
	ChatID   int64           // Telegram Chat ID
	State    UserState       // Текущее состояние пользователя
	Settings MeasureSettings // Настройки замера
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}
