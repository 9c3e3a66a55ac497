package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/tui"
)

const (
	fieldSurface = iota
	fieldBedrooms
	fieldBathrooms
)

// DetailsStep collects the surface and, for types that have them, the
// bedroom and bathroom counts.
type DetailsStep struct {
	core   *estimate.Wizard
	cat    *refdata.Catalog
	inputs []textinput.Model
	focus  int
}

// NewDetailsStep creates the step with empty inputs.
func NewDetailsStep(core *estimate.Wizard, cat *refdata.Catalog) *DetailsStep {
	return &DetailsStep{
		core: core,
		cat:  cat,
		inputs: []textinput.Model{
			newInput("Surface (m²): ", "e.g. 85"),
			newInput("Bedrooms:     ", "e.g. 2"),
			newInput("Bathrooms:    ", "e.g. 1"),
		},
	}
}

// roomsShown reports whether the room count inputs apply to the chosen type.
func (s *DetailsStep) roomsShown() bool {
	return !s.cat.OmitsBedrooms(s.core.Submission().PropertyType)
}

func (s *DetailsStep) visible() []int {
	if s.roomsShown() {
		return []int{fieldSurface, fieldBedrooms, fieldBathrooms}
	}
	return []int{fieldSurface}
}

// Init loads the submission into the inputs and focuses the first field.
func (s *DetailsStep) Init() tea.Cmd {
	sub := s.core.Submission()
	s.inputs[fieldSurface].SetValue(formatFloat(sub.Surface))
	if s.roomsShown() {
		s.inputs[fieldBedrooms].SetValue(formatInt(sub.Bedrooms))
		s.inputs[fieldBathrooms].SetValue(formatInt(sub.Bathrooms))
	}
	return s.setFocus(fieldSurface)
}

// SetSize fits the inputs to their content, shrinking only on narrow screens.
func (s *DetailsStep) SetSize(width, height int) {
	for i := range s.inputs {
		s.inputs[i].SetWidth(numberWidth(width))
	}
}

func (s *DetailsStep) setFocus(field int) tea.Cmd {
	s.focus = field
	var cmd tea.Cmd
	for i := range s.inputs {
		if i == field {
			cmd = s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
	return cmd
}

func (s *DetailsStep) moveFocus(delta int) tea.Cmd {
	fields := s.visible()
	idx := 0
	for i, f := range fields {
		if f == s.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	return s.setFocus(fields[idx])
}

// firstInvalid returns the first visible field whose value is unusable.
func (s *DetailsStep) firstInvalid() (int, bool) {
	sub := s.core.Submission()
	if sub.Surface == nil {
		return fieldSurface, true
	}
	if s.roomsShown() {
		if sub.Bedrooms == nil {
			return fieldBedrooms, true
		}
		if sub.Bathrooms == nil {
			return fieldBathrooms, true
		}
	}
	return 0, false
}

// Update handles focus movement and mirrors every edit into the submission.
func (s *DetailsStep) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "tab", "down":
			return s.moveFocus(1)
		case "shift+tab", "up":
			return s.moveFocus(-1)
		case "enter":
			if s.core.CanAdvance() {
				return next
			}
			if f, ok := s.firstInvalid(); ok {
				return s.setFocus(f)
			}
			return nil
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(tui.CleanPaste(msg))

	raw := s.inputs[s.focus].Value()
	switch s.focus {
	case fieldSurface:
		s.core.SetSurface(raw)
	case fieldBedrooms:
		s.core.SetBedrooms(raw)
	case fieldBathrooms:
		s.core.SetBathrooms(raw)
	}
	return cmd
}

// View renders the inputs. Invalid values only keep Next disabled.
func (s *DetailsStep) View() string {
	st := styles()
	var b strings.Builder
	b.WriteString(st.Label.Render("Tell us about the property"))
	b.WriteString("\n\n")

	for _, f := range s.visible() {
		b.WriteString(s.inputs[f].View())
		b.WriteString("\n")
	}
	if !s.roomsShown() {
		b.WriteString(st.Muted.Render("No room counts for this property type."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tui.HintForm())
	return b.String()
}
