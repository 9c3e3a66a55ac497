package tui

import (
	"strings"

	"github.com/mark3labs/estimatr/internal/tui/theme"
)

// Standard key representations for consistent hints across the app.
const (
	KeyUpDown   = "↑/↓"
	KeyUpDownJK = "↑↓/jk"
	KeyEnter    = "enter"
	KeySpace    = "space"
	KeyEsc      = "esc"
	KeyTab      = "tab"
	KeyYesNo    = "y/n"
)

// RenderHint renders a single key-description pair.
// Example: RenderHint("enter", "select") -> "enter select"
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}

// RenderHintBar renders key-description pairs separated by bullets.
// Example: RenderHintBar("↑/↓", "move", "esc", "back") -> "↑/↓ move • esc back"
// An odd number of arguments renders nothing.
func RenderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	sep := " " + theme.Current().S().HintSeparator.Render("•") + " "
	hints := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		hints = append(hints, RenderHint(pairs[i], pairs[i+1]))
	}
	return strings.Join(hints, sep)
}

// HintForm is shown under input forms.
func HintForm() string {
	return RenderHintBar(KeyTab, "next field", KeyEnter, "continue", KeyEsc, "back")
}
