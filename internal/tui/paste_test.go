package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func TestSanitizePaste(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "85", "85"},
		{"color codes", "\x1b[31m120\x1b[0m", "120"},
		{"trailing newline", "95.5\n", "95.5"},
		{"crlf between words", "Hay\r\nRiad", "Hay Riad"},
		{"tabs and runs of spaces", "a\t\t b", "a b"},
		{"null and control bytes", "1\x002\x07", "12"},
		{"surrounding whitespace", "  42  ", "42"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePaste(tt.input))
		})
	}
}

func TestCleanPaste(t *testing.T) {
	got := CleanPaste(tea.PasteMsg{Content: "12\n"})
	assert.Equal(t, tea.PasteMsg{Content: "12"}, got)

	key := tea.KeyPressMsg{Code: 'a', Text: "a"}
	assert.Equal(t, key, CleanPaste(key))
}
