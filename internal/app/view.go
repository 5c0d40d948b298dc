package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/burrow/internal/images"
	"github.com/marcus/burrow/internal/layout"
	"github.com/marcus/burrow/internal/notebook"
	"github.com/marcus/burrow/internal/styles"
	"github.com/marcus/burrow/internal/ui"
)

const (
	headerHeight = 2 // title line + spacing
	footerHeight = 1
	minWidth     = 40
	minHeight    = 10
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.width < minWidth || m.height < minHeight {
		warn := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d",
			m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styles.Muted.Render(warn))
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderRows())

	if m.cfg == nil || m.cfg.UI.ShowFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	bg := b.String()
	switch m.mode {
	case ModeConfirmDelete:
		if m.confirm != nil {
			return ui.Overlay(bg, m.confirm.Render(), m.width, m.height)
		}
	case ModeBookmarks:
		if m.marksList != nil {
			return ui.Overlay(bg, m.marksList.Render(), m.width, m.height)
		}
	case ModeHelp:
		box := styles.DialogBox.Width(min(m.width-4, 70)).Render(m.helpText)
		return ui.Overlay(bg, box, m.width, m.height)
	}

	return bg
}

// renderHeader draws the notebook name and entry count.
func (m Model) renderHeader() string {
	name := "notebook"
	if mf, err := m.store.Manifest(); err == nil && mf.Name != "" {
		name = mf.Name
	}
	title := styles.HeaderTitle.Render(name)
	count := styles.Muted.Render(fmt.Sprintf("%d rows", m.tree.Len()))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(count)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + count
}

// renderRows draws the visible window of the outline.
func (m Model) renderRows() string {
	viewH := m.viewportHeight()
	if viewH <= 0 {
		return ""
	}
	if m.tree.Len() == 0 {
		empty := styles.Muted.Render("Empty notebook. Press enter to add the first entry.")
		return lipgloss.Place(m.width, viewH, lipgloss.Center, lipgloss.Center, empty)
	}

	firstRow, yWithin := m.index.RowAtY(m.scrollY)
	if firstRow < 0 {
		firstRow = 0
		yWithin = 0
	}

	var lines []string
	for i := firstRow; i < m.tree.Len() && len(lines)-yWithin < viewH; i++ {
		lines = append(lines, m.renderRow(i)...)
	}
	if yWithin < len(lines) {
		lines = lines[yWithin:]
	}
	if len(lines) > viewH {
		lines = lines[:viewH]
	}
	for len(lines) < viewH {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderRow draws one entry as exactly RowHeight terminal lines: the
// padding blank above, the wrapped content, the padding blank below.
func (m Model) renderRow(i int) []string {
	row, err := m.tree.RowAt(i)
	if err != nil {
		return nil
	}
	e, err := m.cache.Entry(row.EntryID)
	if err != nil {
		return []string{styles.RowPending.Render("…")}
	}

	metrics, ok := m.cache.Layout(row.EntryID)
	if !ok {
		return []string{styles.RowPending.Render("…")}
	}

	selected := i == m.cursor
	indent := strings.Repeat(" ", row.Depth*indentWidth)
	caret := m.renderCaret(row.HasChildren, row.Collapsed)

	editing := m.mode == ModeEdit && m.editingID == row.EntryID

	var out []string
	out = append(out, "") // top padding

	if editing {
		out = append(out, indent+caret+m.input.View())
	} else {
		for li, line := range metrics.Lines {
			prefix := strings.Repeat(" ", caretWidth)
			if li == 0 {
				prefix = caret
			}
			if line.Image != nil {
				out = append(out, m.renderImageLine(row.EntryID, line, indent, prefix)...)
				continue
			}
			text := m.renderSpans(e, line)
			rendered := indent + prefix + text
			if li == 0 && m.cfg != nil && m.cfg.UI.ShowDates {
				rendered = m.withDateColumn(rendered, e)
			}
			if selected {
				rendered = styles.RowSelected.Render(rendered)
			}
			out = append(out, rendered)
		}
	}

	out = append(out, "") // bottom padding
	return out
}

// renderCaret returns the two-cell gutter for a row.
func (m Model) renderCaret(hasChildren, collapsed bool) string {
	switch {
	case hasChildren && collapsed:
		return styles.Caret.Render("▸") + " "
	case hasChildren:
		return styles.Caret.Render("▾") + " "
	default:
		return styles.GutterLeaf.Render("•") + " "
	}
}

// renderSpans styles each line span with its source run's attributes.
func (m Model) renderSpans(e *notebook.Entry, line layout.Line) string {
	var b strings.Builder
	for _, sp := range line.Spans {
		run, ok := e.Content[sp.Run].(notebook.TextRun)
		if !ok {
			continue
		}
		text := run.Text[sp.Start:sp.End]
		b.WriteString(runStyle(run).Render(text))
	}
	return b.String()
}

func runStyle(run notebook.TextRun) lipgloss.Style {
	s := styles.Body
	if run.Bold {
		s = s.Bold(true)
	}
	if run.Italic {
		s = s.Italic(true)
	}
	if styles.IsValidHexColor(run.Color) {
		s = s.Foreground(lipgloss.Color(run.Color))
	}
	if styles.IsValidHexColor(run.Background) {
		s = s.Background(lipgloss.Color(run.Background))
	}
	return s
}

// renderImageLine emits line.Height terminal lines for an image row:
// the cached terminal render when the background decode finished, a
// placeholder box otherwise.
func (m Model) renderImageLine(entryID string, line layout.Line, indent, prefix string) []string {
	tok := *line.Image
	path := images.Path(m.store, entryID, tok)

	var body []string
	if rendered, ok := m.imageRenders[path]; ok {
		body = strings.Split(rendered, "\n")
	} else {
		body = []string{styles.ImageCaption.Render(fmt.Sprintf("[image %dx%d]", tok.Width, tok.Height))}
	}

	out := make([]string, 0, line.Height)
	for li := 0; li < line.Height; li++ {
		p := prefix
		if li > 0 {
			p = strings.Repeat(" ", caretWidth)
		}
		if li < len(body) {
			out = append(out, indent+p+body[li])
		} else {
			out = append(out, indent+p)
		}
	}
	return out
}

// withDateColumn right-aligns the entry's modification date on the line.
func (m Model) withDateColumn(line string, e *notebook.Entry) string {
	date := styles.DateColumn.Render(e.UpdatedAt.Format("Jan 02 15:04"))
	gap := m.width - lipgloss.Width(line) - lipgloss.Width(date)
	if gap < 1 {
		return line
	}
	return line + strings.Repeat(" ", gap) + date
}

// renderFooter draws key hints, replaced by the toast while one shows.
func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := styles.ToastSuccess
		if m.statusIsError {
			style = styles.ToastError
		}
		return style.Render(m.statusMsg)
	}

	hints := []string{
		"enter add", "tab indent", "space fold", "i edit",
		"b mark", "B marks", "? help", "q quit",
	}
	var parts []string
	for _, h := range hints {
		parts = append(parts, styles.KeyHint.Render(h))
	}
	footer := strings.Join(parts, " ")
	return styles.Footer.Width(m.width).Render(footer)
}

// renderHelp renders the key binding reference through glamour.
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	for _, context := range []string{"outline", "global", "bookmarks"} {
		b.WriteString("## " + context + "\n\n")
		for _, binding := range m.km.BindingsFor(context) {
			key := binding.Key
			if key == " " {
				key = "space"
			}
			fmt.Fprintf(&b, "- `%s` %s\n", key, binding.Command)
		}
		b.WriteString("\n")
	}

	width := min(m.width-8, 64)
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.CurrentMarkdownTheme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Warn("help renderer init failed", "err", err)
		return b.String()
	}
	out, err := r.Render(b.String())
	if err != nil {
		m.logger.Warn("help render failed", "err", err)
		return b.String()
	}
	return strings.TrimRight(out, "\n")
}
