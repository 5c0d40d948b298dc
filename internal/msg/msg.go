package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/burrow/internal/ioworker"
	"github.com/marcus/burrow/internal/watch"
)

// ToastMsg displays a temporary message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool // true for error toasts (red), false for success (green)
}

// ExternalChangeMsg carries a debounced batch of notebook changes made
// by another process.
type ExternalChangeMsg struct {
	Event watch.Event
}

// JobDoneMsg carries one background job outcome from the I/O worker.
type JobDoneMsg struct {
	Result ioworker.Result
}

// ShowToast returns a command to show a toast message.
func ShowToast(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
		}
	}
}

// ShowError returns a command to show an error toast.
func ShowError(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
			IsError:  true,
		}
	}
}
