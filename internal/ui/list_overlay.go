package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/burrow/internal/styles"
)

// ListItem is one selectable row in a ListOverlay.
type ListItem struct {
	Title string
	Desc  string
	ID    string // item identity, e.g. a bookmark ID
	Data  string // opaque payload, e.g. the target entry ID
}

// ListOverlay is a scrollable picker rendered over the outline. Used for
// the bookmark list.
type ListOverlay struct {
	Title      string
	Items      []ListItem
	EmptyText  string
	Width      int
	MaxVisible int

	cursor int
	offset int
}

// NewListOverlay creates an overlay with sensible defaults.
func NewListOverlay(title string, items []ListItem) *ListOverlay {
	return &ListOverlay{
		Title:      title,
		Items:      items,
		EmptyText:  "Nothing here",
		Width:      60,
		MaxVisible: 10,
	}
}

// Cursor returns the selected index, or -1 when the list is empty.
func (l *ListOverlay) Cursor() int {
	if len(l.Items) == 0 {
		return -1
	}
	return l.cursor
}

// Selected returns the item under the cursor.
func (l *ListOverlay) Selected() (ListItem, bool) {
	if len(l.Items) == 0 {
		return ListItem{}, false
	}
	return l.Items[l.cursor], true
}

// MoveUp moves the cursor up one row, scrolling as needed.
func (l *ListOverlay) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
}

// MoveDown moves the cursor down one row, scrolling as needed.
func (l *ListOverlay) MoveDown() {
	if l.cursor < len(l.Items)-1 {
		l.cursor++
	}
	if l.cursor >= l.offset+l.MaxVisible {
		l.offset = l.cursor - l.MaxVisible + 1
	}
}

// RemoveSelected deletes the item under the cursor and clamps the
// cursor and scroll window.
func (l *ListOverlay) RemoveSelected() {
	if len(l.Items) == 0 {
		return
	}
	l.Items = append(l.Items[:l.cursor], l.Items[l.cursor+1:]...)
	if l.cursor >= len(l.Items) && l.cursor > 0 {
		l.cursor--
	}
	if l.offset > 0 && l.offset+l.MaxVisible > len(l.Items) {
		l.offset = len(l.Items) - l.MaxVisible
		if l.offset < 0 {
			l.offset = 0
		}
	}
}

// Render draws the overlay box.
func (l *ListOverlay) Render() string {
	var b strings.Builder

	b.WriteString(styles.DialogTitle.Render(l.Title))
	b.WriteString("\n")

	contentWidth := l.Width - 6
	if contentWidth < 20 {
		contentWidth = 20
	}
	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")

	if len(l.Items) == 0 {
		b.WriteString(styles.Muted.Render(l.EmptyText))
		return styles.DialogBox.Width(l.Width).Render(strings.TrimRight(b.String(), "\n"))
	}

	visibleEnd := l.offset + l.MaxVisible
	if visibleEnd > len(l.Items) {
		visibleEnd = len(l.Items)
	}

	if l.offset > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↑ %d more above", l.offset)))
		b.WriteString("\n")
	}

	for i := l.offset; i < visibleEnd; i++ {
		item := l.Items[i]
		line := item.Title
		if item.Desc != "" {
			line = fmt.Sprintf("%s  %s", item.Title, styles.Muted.Render(item.Desc))
		}
		padded := lipgloss.NewStyle().Width(contentWidth).Render("  " + line)
		if i == l.cursor {
			b.WriteString(styles.ListItemSelected.Render(padded))
		} else {
			b.WriteString(styles.ListItemNormal.Render(padded))
		}
		b.WriteString("\n")
	}

	if visibleEnd < len(l.Items) {
		remaining := len(l.Items) - visibleEnd
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return styles.DialogBox.Width(l.Width).Render(strings.TrimRight(b.String(), "\n"))
}
