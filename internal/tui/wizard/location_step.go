package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/estimatr/internal/tui"
)

type locationPane int

const (
	paneCity locationPane = iota
	paneNeighborhood
)

// LocationStep picks a city, filtered by typing, then one of its neighborhoods.
type LocationStep struct {
	core          *estimate.Wizard
	cat           *refdata.Catalog
	filter        textinput.Model
	cities        *selectList
	neighborhoods *selectList
	pane          locationPane
	width         int
}

// NewLocationStep lists the catalog cities. lastCity, when known, only
// positions the cursor.
func NewLocationStep(core *estimate.Wizard, cat *refdata.Catalog, lastCity string) *LocationStep {
	s := &LocationStep{
		core:          core,
		cat:           cat,
		filter:        newInput("Filter: ", "type to filter cities"),
		cities:        newSelectList(8),
		neighborhoods: newSelectList(8),
		width:         60,
	}
	s.applyFilter()
	if lastCity != "" {
		s.cities.MoveTo(lastCity)
	}
	s.syncNeighborhoods()
	return s
}

// Init focuses the filter when the step becomes active.
func (s *LocationStep) Init() tea.Cmd {
	s.syncNeighborhoods()
	if s.pane == paneCity {
		return s.filter.Focus()
	}
	return nil
}

// SetSize updates list heights and the filter width.
func (s *LocationStep) SetSize(width, height int) {
	s.width = width
	s.filter.SetWidth(max(width/2-12, 10))
	listHeight := max(height-8, 3)
	s.cities.SetHeight(listHeight)
	s.neighborhoods.SetHeight(listHeight)
}

func (s *LocationStep) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.filter.Value()))
	items := make([]listItem, 0)
	for _, city := range s.cat.Cities() {
		if query == "" || strings.Contains(strings.ToLower(city), query) {
			items = append(items, listItem{id: city, label: city})
		}
	}
	s.cities.SetItems(items)
}

// syncNeighborhoods mirrors the neighborhood list to the selected city.
func (s *LocationStep) syncNeighborhoods() {
	sub := s.core.Submission()
	items := make([]listItem, 0)
	for _, n := range s.cat.Neighborhoods(sub.City) {
		items = append(items, listItem{id: n, label: n})
	}
	s.neighborhoods.SetItems(items)
	if sub.Neighborhood != "" {
		s.neighborhoods.MoveTo(sub.Neighborhood)
	}
}

func (s *LocationStep) focusPane(p locationPane) tea.Cmd {
	s.pane = p
	if p == paneCity {
		return s.filter.Focus()
	}
	s.filter.Blur()
	return nil
}

// Update handles pane switching, filtering and selection.
func (s *LocationStep) Update(msg tea.Msg) tea.Cmd {
	if paste, ok := msg.(tea.PasteMsg); ok {
		if s.pane != paneCity {
			return nil
		}
		return s.updateFilter(tui.CleanPaste(paste))
	}

	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "tab", "shift+tab":
		if s.pane == paneCity {
			return s.focusPane(paneNeighborhood)
		}
		return s.focusPane(paneCity)
	}

	if s.pane == paneNeighborhood {
		switch key.String() {
		case "up", "k":
			s.neighborhoods.Move(-1)
		case "down", "j":
			s.neighborhoods.Move(1)
		case "left", "h":
			return s.focusPane(paneCity)
		case "space", "enter":
			it, ok := s.neighborhoods.Current()
			if !ok {
				return nil
			}
			if err := s.core.SelectNeighborhood(it.id); err != nil {
				return nil
			}
			if key.String() == "enter" {
				return next
			}
		}
		return nil
	}

	switch key.String() {
	case "up":
		s.cities.Move(-1)
		return nil
	case "down":
		s.cities.Move(1)
		return nil
	case "enter":
		it, ok := s.cities.Current()
		if !ok {
			return nil
		}
		s.core.SelectCity(it.id)
		s.syncNeighborhoods()
		return s.focusPane(paneNeighborhood)
	}

	return s.updateFilter(msg)
}

func (s *LocationStep) updateFilter(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	before := s.filter.Value()
	s.filter, cmd = s.filter.Update(msg)
	if s.filter.Value() != before {
		s.applyFilter()
	}
	return cmd
}

// View renders both panes side by side.
func (s *LocationStep) View() string {
	st := styles()
	sub := s.core.Submission()
	colWidth := max(s.width/2-2, 24)

	var left strings.Builder
	left.WriteString(st.Label.Render("City"))
	left.WriteString("\n")
	left.WriteString(s.filter.View())
	left.WriteString("\n\n")
	if s.cities.Len() == 0 {
		left.WriteString(st.Muted.Render("No cities match your filter"))
	} else {
		left.WriteString(s.cities.View(sub.City, s.pane == paneCity))
	}

	var right strings.Builder
	right.WriteString(st.Label.Render("Neighborhood"))
	right.WriteString("\n\n")
	switch {
	case sub.City == "":
		right.WriteString(st.Muted.Render("Select a city first"))
	case s.neighborhoods.Len() == 0:
		right.WriteString(st.Muted.Render("No neighborhoods listed for " + sub.City))
	default:
		right.WriteString(s.neighborhoods.View(sub.Neighborhood, s.pane == paneNeighborhood))
	}

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(colWidth).Render(left.String()),
		lipgloss.NewStyle().Width(colWidth).Render(right.String()),
	)

	var hints string
	if s.pane == paneCity {
		hints = renderHintBar("type", "filter", tui.KeyUpDown, "move", tui.KeyEnter, "choose city", tui.KeyTab, "neighborhoods", tui.KeyEsc, "back")
	} else {
		hints = renderHintBar(tui.KeyUpDownJK, "move", tui.KeyEnter, "choose & continue", tui.KeyTab, "cities", tui.KeyEsc, "back")
	}
	return columns + "\n\n" + hints
}
