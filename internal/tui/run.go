// Package tui is the interactive exposure log browser.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the browser over store until the user quits. Preferences are
// read from and saved to prefs when it is non-nil.
func Run(store Store, cancel Canceller, prefs PrefsStore) error {
	m := NewModel(store, cancel, LoadPrefs(prefs))
	m.saved = prefs
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
