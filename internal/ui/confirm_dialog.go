package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/burrow/internal/styles"
)

// Common dialog widths.
const (
	DialogWidthSmall  = 40
	DialogWidthMedium = 50
)

// ConfirmDialog is a two-button confirmation prompt rendered over the
// outline.
type ConfirmDialog struct {
	Title        string
	Message      string
	ConfirmLabel string // e.g. " Delete ", " Yes "
	CancelLabel  string // e.g. " Cancel ", " No "
	Danger       bool   // red border and confirm button
	Width        int

	confirmFocused bool
}

// NewConfirmDialog creates a dialog with sensible defaults. Cancel is
// focused so a stray enter is harmless.
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:        title,
		Message:      message,
		ConfirmLabel: " Confirm ",
		CancelLabel:  " Cancel ",
		Width:        DialogWidthMedium,
	}
}

// ToggleFocus moves focus between the two buttons.
func (d *ConfirmDialog) ToggleFocus() {
	d.confirmFocused = !d.confirmFocused
}

// FocusConfirm moves focus to the confirm button.
func (d *ConfirmDialog) FocusConfirm() {
	d.confirmFocused = true
}

// ConfirmFocused reports whether enter would confirm.
func (d *ConfirmDialog) ConfirmFocused() bool {
	return d.confirmFocused
}

// Render draws the dialog box.
func (d *ConfirmDialog) Render() string {
	borderColor := styles.BorderActive
	confirmColor := styles.Primary
	if d.Danger {
		borderColor = styles.Error
		confirmColor = styles.Error
	}

	title := styles.DialogTitle.Render(d.Title)

	innerWidth := d.Width - 6 // box padding and border
	if innerWidth < 10 {
		innerWidth = 10
	}
	message := styles.Body.Width(innerWidth).Render(d.Message)

	focused := lipgloss.NewStyle().Background(confirmColor).Foreground(styles.TextPrimary).Bold(true)
	blurred := lipgloss.NewStyle().Background(styles.BgTertiary).Foreground(styles.TextSecondary)

	var confirmBtn, cancelBtn string
	if d.confirmFocused {
		confirmBtn = focused.Render(d.ConfirmLabel)
		cancelBtn = blurred.Render(d.CancelLabel)
	} else {
		confirmBtn = blurred.Render(d.ConfirmLabel)
		cancelBtn = focused.Render(d.CancelLabel)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, confirmBtn, "  ", cancelBtn)

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", message, "", buttons)

	return styles.DialogBox.
		BorderForeground(borderColor).
		Width(d.Width).
		Render(content)
}
