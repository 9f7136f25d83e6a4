package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/secretshields/secretshields/internal/clipboard"
)

func (m Model) markRotated() tea.Cmd {
	ev := m.selected()
	if ev == nil {
		return func() tea.Msg { return statusMsg("No exposure selected") }
	}
	id, label := ev.ID, ev.Provider+" "+ev.MaskedPreview
	store, cancel := m.store, m.cancel
	return func() tea.Msg {
		changed, err := store.MarkRotated(id)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}
		if cancel != nil {
			cancel.Cancel(id)
		}
		if !changed {
			return statusMsg("Already resolved")
		}
		return statusMsg(fmt.Sprintf("Marked %s as rotated", label))
	}
}

func (m Model) dismiss() tea.Cmd {
	ev := m.selected()
	if ev == nil {
		return func() tea.Msg { return statusMsg("No exposure selected") }
	}
	id := ev.ID
	store, cancel := m.store, m.cancel
	return func() tea.Msg {
		changed, err := store.Dismiss(id)
		if err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}
		if cancel != nil {
			cancel.Cancel(id)
		}
		if !changed {
			return statusMsg("Already resolved")
		}
		return statusMsg("Exposure dismissed")
	}
}

func (m Model) clearAll() tea.Cmd {
	store := m.store
	events := append(m.events[:0:0], m.events...)
	cancel := m.cancel
	return func() tea.Msg {
		if err := store.ClearAll(); err != nil {
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}
		if cancel != nil {
			for _, ev := range events {
				cancel.Cancel(ev.ID)
			}
		}
		return statusMsg("Exposure log cleared.")
	}
}

// copyPreview copies the selected masked preview to the clipboard.
func (m Model) copyPreview() tea.Cmd {
	ev := m.selected()
	if ev == nil {
		return func() tea.Msg { return statusMsg("No exposure selected") }
	}
	preview := ev.MaskedPreview
	return func() tea.Msg {
		if err := clipboard.NewSystem().WriteText(context.Background(), preview); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied masked preview")
	}
}

func (m Model) savePrefs() tea.Cmd {
	prefs, st := m.prefs, m.saved
	return func() tea.Msg {
		if err := SavePrefs(st, prefs); err != nil {
			return statusMsg(fmt.Sprintf("Could not save preferences: %v", err))
		}
		return nil
	}
}
