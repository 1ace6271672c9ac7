package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()
	tests := []struct {
		text    string
		cmd     string
		args    []string
		isValid bool
	}{
		{"!эко", "эко", []string{}, true},
		{".сдать 1,5 кг", "сдать", []string{"1,5", "кг"}, true},
		{"/start@eco_bot", "start", []string{}, true},
		{"  !ЧЕКИН 12 ", "чекин", []string{"12"}, true},
		{"просто текст", "", nil, false},
		{"!", "", nil, false},
		{"/@bot", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.isValid, ok)
			assert.Equal(t, tt.cmd, cmd)
			if tt.isValid {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
