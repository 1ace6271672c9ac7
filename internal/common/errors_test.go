package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	msg, ok := UserMessage(fmt.Errorf("чекин: %w", ErrDayLocked))
	assert.True(t, ok)
	assert.Equal(t, ErrDayLocked.Error(), msg)

	_, ok = UserMessage(errors.New("connection reset"))
	assert.False(t, ok)

	_, ok = UserMessage(nil)
	assert.False(t, ok)
}
