package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/burrow/internal/ioworker"
	"github.com/marcus/burrow/internal/msg"
	"github.com/marcus/burrow/internal/watch"
)

// Message types for tea.Cmd
type (
	// TickMsg is sent on each clock tick.
	TickMsg time.Time

	// RefreshMsg triggers a full reload from the store.
	RefreshMsg struct{}

	// ErrorMsg represents an error condition.
	ErrorMsg struct {
		Err error
	}

	// autosaveMsg fires after the edit buffer has been idle. The seq
	// lets stale timers from earlier keystrokes be ignored.
	autosaveMsg struct {
		seq int
	}
)

// tickCmd returns a command that ticks every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// autosaveCmd schedules an idle-save check for the current keystroke.
func autosaveCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autosaveMsg{seq: seq}
	})
}

// Refresh returns a command to trigger a reload.
func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// ReportError returns a command to report an error.
func ReportError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// listenWatch waits for the next batch of external notebook changes.
// Re-issued after each delivery.
func listenWatch(events <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return msg.ExternalChangeMsg{Event: ev}
	}
}

// listenWorker waits for the next background job result. Re-issued
// after each delivery.
func listenWorker(results <-chan ioworker.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return msg.JobDoneMsg{Result: r}
	}
}
