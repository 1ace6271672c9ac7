// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// maxLoggedText - сколько символов текста попадает в лог.
const maxLoggedText = 50

// LogMessage логирует входящее сообщение.
// Записывает: user_id, chat_id, username, текст или подпись (первые 50 символов).
func LogMessage(message *telego.Message) {
	if message == nil {
		return
	}

	text := message.Text
	if text == "" {
		text = message.Caption
	}
	if r := []rune(text); len(r) > maxLoggedText {
		text = string(r[:maxLoggedText]) + "..."
	}

	fields := log.Fields{
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"text":      text,
		"photo":     len(message.Photo) > 0,
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
		fields["username"] = message.From.Username
	}
	log.WithFields(fields).Debug("Входящее сообщение")
}
