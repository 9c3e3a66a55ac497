package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar renders a centered row of buttons.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Buttons returns the buttons in display order.
func (b *ButtonBar) Buttons() []Button {
	return b.buttons
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := styles()
	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// nextState maps step validity to the state of the forward button. A valid
// step highlights it since enter will trigger it.
func nextState(enabled bool) ButtonState {
	if enabled {
		return ButtonFocused
	}
	return ButtonDisabled
}

// CreateBackNextButtons creates the Back/Next button set.
// nextEnabled is false while the step is invalid.
func CreateBackNextButtons(nextEnabled bool, nextLabel string) []Button {
	return []Button{
		{Label: "← Back", State: ButtonNormal},
		{Label: nextLabel, State: nextState(nextEnabled)},
	}
}

// CreateCancelNextButtons creates the Cancel/Next button set of the first step.
func CreateCancelNextButtons(nextEnabled bool, nextLabel string) []Button {
	return []Button{
		{Label: "Cancel", State: ButtonNormal},
		{Label: nextLabel, State: nextState(nextEnabled)},
	}
}
