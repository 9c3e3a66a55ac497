package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// SanitizePaste turns pasted content into a single input line: escape
// sequences and control characters are dropped, line breaks and tabs become
// spaces, and surrounding whitespace is trimmed.
func SanitizePaste(content string) string {
	content = ansi.Strip(content)

	var b strings.Builder
	space := false
	for _, r := range content {
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == ' ':
			space = true
			continue
		case r < 32 || r == 127:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// CleanPaste returns msg with its content sanitized; other messages pass
// through unchanged.
func CleanPaste(msg tea.Msg) tea.Msg {
	if p, ok := msg.(tea.PasteMsg); ok {
		p.Content = SanitizePaste(p.Content)
		return p
	}
	return msg
}
