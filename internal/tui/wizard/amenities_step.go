package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/tui"
)

// AmenitiesStep shows the type-dependent fields: an optional floor input
// and one Yes/No row per applicable amenity.
type AmenitiesStep struct {
	core   *estimate.Wizard
	cat    *refdata.Catalog
	layout estimate.Layout
	floor  textinput.Model
	cursor int // row index; the floor row comes first when shown
}

// NewAmenitiesStep creates the step. Its rows are built on Init.
func NewAmenitiesStep(core *estimate.Wizard, cat *refdata.Catalog) *AmenitiesStep {
	return &AmenitiesStep{
		core:  core,
		cat:   cat,
		floor: newInput(cat.Label(refdata.FloorKey)+": ", "0"),
	}
}

// Init rebuilds the rows from the layout derived when the step was entered.
func (s *AmenitiesStep) Init() tea.Cmd {
	s.layout = s.core.Layout()
	s.cursor = 0

	s.floor.SetValue(strconv.Itoa(s.core.Submission().Floor))
	s.floor.CursorEnd()
	return s.syncFocus()
}

// SetSize updates the floor input width.
func (s *AmenitiesStep) SetSize(width, height int) {
	s.floor.SetWidth(numberWidth(width))
}

func (s *AmenitiesStep) rows() int {
	n := len(s.layout.Amenities)
	if s.layout.Floor {
		n++
	}
	return n
}

// amenityAt maps a row to an amenity id; ok is false for the floor row.
func (s *AmenitiesStep) amenityAt(row int) (string, bool) {
	if s.layout.Floor {
		row--
	}
	if row < 0 || row >= len(s.layout.Amenities) {
		return "", false
	}
	return s.layout.Amenities[row], true
}

func (s *AmenitiesStep) onFloorRow() bool {
	return s.layout.Floor && s.cursor == 0
}

func (s *AmenitiesStep) syncFocus() tea.Cmd {
	if s.onFloorRow() {
		return s.floor.Focus()
	}
	s.floor.Blur()
	return nil
}

// Update handles row navigation, toggles and floor edits.
func (s *AmenitiesStep) Update(msg tea.Msg) tea.Cmd {
	key, isKey := msg.(tea.KeyPressMsg)
	if isKey {
		switch key.String() {
		case "enter":
			return next
		case "up", "shift+tab":
			if s.cursor > 0 {
				s.cursor--
			}
			return s.syncFocus()
		case "down", "tab":
			if s.cursor < s.rows()-1 {
				s.cursor++
			}
			return s.syncFocus()
		}

		if id, ok := s.amenityAt(s.cursor); ok {
			on := s.core.Submission().Amenities[id]
			switch key.String() {
			case "y", "left", "h":
				on = true
			case "n", "right", "l":
				on = false
			case "space":
				on = !on
			default:
				return nil
			}
			_ = s.core.SetAmenity(id, on)
			return nil
		}
	}

	if !s.onFloorRow() {
		return nil
	}
	var cmd tea.Cmd
	s.floor, cmd = s.floor.Update(tui.CleanPaste(msg))
	s.core.SetFloor(s.floor.Value())
	return cmd
}

// View renders the rows, or a notice when the type has nothing to ask.
func (s *AmenitiesStep) View() string {
	st := styles()
	var b strings.Builder
	b.WriteString(st.Label.Render("Amenities"))
	b.WriteString("\n\n")

	if s.layout.Empty() {
		b.WriteString(st.Muted.Render("No additional details for this property type."))
		b.WriteString("\n\n")
		b.WriteString(renderHintBar(tui.KeyEnter, "get estimate", tui.KeyEsc, "back"))
		return b.String()
	}

	sub := s.core.Submission()
	row := 0
	if s.layout.Floor {
		b.WriteString(s.cursorMark(row))
		b.WriteString(s.floor.View())
		b.WriteString("\n")
		row++
	}

	width := 0
	for _, id := range s.layout.Amenities {
		width = max(width, len([]rune(s.cat.Label(id))))
	}
	for _, id := range s.layout.Amenities {
		label := s.cat.Label(id)
		pad := strings.Repeat(" ", width-len([]rune(label)))
		b.WriteString(s.cursorMark(row))
		b.WriteString(fmt.Sprintf("%s%s  %s", st.Text.Render(label), pad, toggle(sub.Amenities[id])))
		b.WriteString("\n")
		row++
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(tui.KeyUpDown, "move", tui.KeyYesNo, "yes/no", tui.KeySpace, "toggle", tui.KeyEnter, "get estimate", tui.KeyEsc, "back"))
	return b.String()
}

func (s *AmenitiesStep) cursorMark(row int) string {
	if row == s.cursor {
		return styles().Cursor.Render(markCursor) + " "
	}
	return "  "
}

func toggle(on bool) string {
	st := styles()
	if on {
		return st.Selected.Render(markSelected+" Yes") + "  " + st.Muted.Render(markUnselected+" No")
	}
	return st.Muted.Render(markUnselected+" Yes") + "  " + st.Selected.Render(markSelected+" No")
}
