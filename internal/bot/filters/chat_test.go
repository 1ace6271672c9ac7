package filters

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
)

func msg(chatID int64, chatType string, from *telego.User) *telego.Message {
	return &telego.Message{Chat: telego.Chat{ID: chatID, Type: chatType}, From: from}
}

func TestCheckAccess(t *testing.T) {
	user := &telego.User{ID: 1}
	bot := &telego.User{ID: 2, IsBot: true}
	f := NewChatFilter(-100)

	tests := []struct {
		name    string
		message *telego.Message
		want    bool
	}{
		{"private", msg(1, telego.ChatTypePrivate, user), true},
		{"group chat", msg(-100, telego.ChatTypeSupergroup, user), true},
		{"other group", msg(-200, telego.ChatTypeGroup, user), false},
		{"no sender", msg(-100, telego.ChatTypeSupergroup, nil), false},
		{"bot sender", msg(1, telego.ChatTypePrivate, bot), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.CheckAccess(tt.message))
		})
	}
}

func TestPrivateOnlyWithoutGroup(t *testing.T) {
	f := NewChatFilter(0)
	assert.False(t, f.CheckAccess(msg(0, telego.ChatTypeGroup, &telego.User{ID: 1})))
	assert.False(t, f.IsGroup(msg(0, telego.ChatTypeGroup, nil)))
}
