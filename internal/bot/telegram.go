package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

// Telegram - транспорт поверх Bot API: long polling и отправка сообщений.
// Реализует common.Messenger.
type Telegram struct {
	api *telego.Bot
}

// NewTelegram создаёт клиент Bot API. debug включает логирование запросов telego.
func NewTelegram(token string, debug bool) (*Telegram, error) {
	var opts []telego.BotOption
	if debug {
		opts = append(opts, telego.WithDefaultDebugLogger())
	}
	api, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	return &Telegram{api: api}, nil
}

// Username возвращает имя бота; заодно проверяет токен.
func (t *Telegram) Username(ctx context.Context) (string, error) {
	me, err := t.api.GetMe(ctx)
	if err != nil {
		return "", fmt.Errorf("getMe: %w", err)
	}
	return me.Username, nil
}

// Updates запускает long polling. Канал закрывается после отмены ctx.
func (t *Telegram) Updates(ctx context.Context, timeoutSec int) (<-chan telego.Update, error) {
	updates, err := t.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        timeoutSec,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, fmt.Errorf("long polling: %w", err)
	}
	return updates, nil
}

// SendText отправляет текстовое сообщение.
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	if _, err := t.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
		return err
	}
	return nil
}
