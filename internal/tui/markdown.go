package tui

import (
	"strings"

	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/ansi"
)

// RenderMarkdown renders markdown for the terminal at the given width.
// Falls back to wrapped plain text if rendering fails.
func RenderMarkdown(content string, width int) string {
	if width <= 0 || width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return ansi.Wordwrap(content, width, "")
	}

	rendered, err := r.Render(content)
	if err != nil {
		return ansi.Wordwrap(content, width, "")
	}
	return strings.TrimSuffix(rendered, "\n")
}
