package wizard

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/tui"
)

// TypeStep lets the user pick the property type.
type TypeStep struct {
	core *estimate.Wizard
	list *selectList
}

// NewTypeStep lists the catalog types. lastType, when known, only positions
// the cursor.
func NewTypeStep(core *estimate.Wizard, cat *refdata.Catalog, lastType string) *TypeStep {
	items := make([]listItem, 0)
	for _, pt := range cat.Types() {
		items = append(items, listItem{id: pt.ID, label: pt.Label})
	}
	list := newSelectList(10)
	list.SetItems(items)
	if lastType != "" {
		list.MoveTo(lastType)
	}
	return &TypeStep{core: core, list: list}
}

// SetSize updates the visible list height.
func (s *TypeStep) SetSize(width, height int) {
	s.list.SetHeight(height - 4)
}

// Update handles list navigation and selection.
func (s *TypeStep) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "up", "k":
		s.list.Move(-1)
	case "down", "j":
		s.list.Move(1)
	case "space":
		s.selectCurrent()
	case "enter":
		if s.selectCurrent() {
			return next
		}
	}
	return nil
}

func (s *TypeStep) selectCurrent() bool {
	it, ok := s.list.Current()
	if !ok {
		return false
	}
	return s.core.SelectType(it.id) == nil
}

// View renders the type list.
func (s *TypeStep) View() string {
	var b strings.Builder
	b.WriteString(styles().Label.Render("What kind of property is it?"))
	b.WriteString("\n\n")
	b.WriteString(s.list.View(s.core.Submission().PropertyType, true))
	b.WriteString("\n\n")
	b.WriteString(renderHintBar(tui.KeyUpDownJK, "move", tui.KeySpace, "choose", tui.KeyEnter, "choose & continue", tui.KeyEsc, "cancel"))
	return b.String()
}
