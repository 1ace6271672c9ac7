// Package members хранит пользователей бота: Telegram ID, имя и username.
// Используется для поиска пользователя по @username в админ-командах.
package members

import (
	"strconv"
	"time"
)

// Member - пользователь бота.
type Member struct {
	UserID     int64     // Telegram user ID (уникальный)
	Username   string    // @username (может быть пустым)
	FirstName  string    // Имя
	LastName   string    // Фамилия (может быть пустой)
	CreatedAt  time.Time // Первое обращение к боту
	LastSeenAt time.Time // Последнее обращение
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username - возвращает его, иначе - имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	if name == "" {
		return "id" + strconv.FormatInt(m.UserID, 10)
	}
	return name
}
