package wizard

import (
	"github.com/mark3labs/estimatr/internal/tui"
	"github.com/mark3labs/estimatr/internal/tui/theme"
)

func styles() *theme.Styles {
	return theme.Current().S()
}

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "enter", "select", "esc", "back")
// Returns: "↑↓ navigate • enter select • esc back"
func renderHintBar(pairs ...string) string {
	return tui.RenderHintBar(pairs...)
}

// markers for list rows and toggles
const (
	markSelected   = "●"
	markUnselected = "○"
	markCursor     = "›"
	markCompleted  = "✓"
)
