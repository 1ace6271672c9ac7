// Package filters решает, в каких чатах бот отвечает.
package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает личные сообщения и, если задан, один групповой чат.
type ChatFilter struct {
	groupChatID int64
}

// NewChatFilter создаёт фильтр. groupChatID = 0 - только личные сообщения.
func NewChatFilter(groupChatID int64) *ChatFilter {
	return &ChatFilter{groupChatID: groupChatID}
}

// IsGroup сообщает, пришло ли сообщение из разрешённого группового чата.
func (f *ChatFilter) IsGroup(message *telego.Message) bool {
	return f.groupChatID != 0 && message != nil && message.Chat.ID == f.groupChatID
}

// CheckAccess проверяет, нужно ли обрабатывать сообщение.
func (f *ChatFilter) CheckAccess(message *telego.Message) bool {
	if message == nil {
		log.WithField("component", "ChatFilter").Warn("nil message")
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
	})

	if message.From == nil {
		logger.Debug("deny: nil message.From (service/channel message?)")
		return false
	}
	if message.From.IsBot {
		logger.Debug("deny: message from bot")
		return false
	}

	switch {
	case message.Chat.Type == telego.ChatTypePrivate:
		return true
	case f.IsGroup(message):
		return true
	}

	logger.Debug("deny: not private and not the group chat")
	return false
}
