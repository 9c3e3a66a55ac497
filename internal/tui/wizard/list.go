package wizard

import (
	"strings"
)

// listItem is one selectable row.
type listItem struct {
	id    string
	label string
}

// selectList is a cursor over items with a scrolling window of height rows.
// It only tracks the cursor; the selected value lives in the wizard core.
type selectList struct {
	items  []listItem
	cursor int
	offset int
	height int
}

func newSelectList(height int) *selectList {
	return &selectList{height: max(height, 1)}
}

// SetItems replaces the items, keeping the cursor on the same id if present.
func (l *selectList) SetItems(items []listItem) {
	prev, hadPrev := l.Current()
	l.items = items
	l.cursor = 0
	l.offset = 0
	if hadPrev {
		l.MoveTo(prev.id)
	}
}

func (l *selectList) SetHeight(h int) {
	l.height = max(h, 1)
	l.scrollToCursor()
}

func (l *selectList) Len() int { return len(l.items) }

// Move shifts the cursor by delta, clamped to the list.
func (l *selectList) Move(delta int) {
	if len(l.items) == 0 {
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), len(l.items)-1)
	l.scrollToCursor()
}

// MoveTo places the cursor on id. It reports whether id was found.
func (l *selectList) MoveTo(id string) bool {
	for i, it := range l.items {
		if it.id == id {
			l.cursor = i
			l.scrollToCursor()
			return true
		}
	}
	return false
}

// Current returns the item under the cursor.
func (l *selectList) Current() (listItem, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return listItem{}, false
	}
	return l.items[l.cursor], true
}

func (l *selectList) scrollToCursor() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
}

// View renders the visible window. selected marks the chosen id; the cursor
// is only drawn when focused.
func (l *selectList) View(selected string, focused bool) string {
	s := styles()
	end := min(l.offset+l.height, len(l.items))

	var lines []string
	if l.offset > 0 {
		lines = append(lines, s.Muted.Render("  ↑ more"))
	}
	for i := l.offset; i < end; i++ {
		it := l.items[i]

		prefix := "  "
		if focused && i == l.cursor {
			prefix = s.Cursor.Render(markCursor) + " "
		}

		mark := s.Muted.Render(markUnselected)
		label := s.Text.Render(it.label)
		if it.id == selected {
			mark = s.Selected.Render(markSelected)
			label = s.Selected.Render(it.label)
		}
		lines = append(lines, prefix+mark+" "+label)
	}
	if end < len(l.items) {
		lines = append(lines, s.Muted.Render("  ↓ more"))
	}
	return strings.Join(lines, "\n")
}
