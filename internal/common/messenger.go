package common

import "context"

// Messenger отправляет текстовые сообщения в чат.
// Обработчики команд и фоновые задачи зависят только от этого интерфейса,
// а реализация поверх Telegram живёт в пакете bot.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// GenericFailure - ответ на непредвиденную ошибку.
const GenericFailure = "❌ Что-то пошло не так, попробуйте ещё раз"
