package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	sevCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevMedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// refreshInterval is how often the browser re-reads the log so changes
// made by a running monitor show up.
const refreshInterval = 2 * time.Second

// Store is the exposure log the browser edits.
type Store interface {
	All() []exposure.Event
	MarkRotated(id string) (bool, error)
	Dismiss(id string) (bool, error)
	ClearAll() error
	Reload() error
}

// Canceller stops a pending rotation reminder.
type Canceller interface {
	Cancel(id string) bool
}

// severityText returns plain text for severity (ANSI codes break table truncation).
func severityText(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "CRIT"
	case types.SevHigh:
		return "HIGH"
	case types.SevMedium:
		return "MED"
	default:
		return string(s)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// dueAt is when the rotation reminder for ev fires.
func dueAt(ev exposure.Event) time.Time {
	return ev.Time().Add(time.Duration(ev.CountdownMinutes) * time.Minute)
}

// Model is the exposure log browser.
type Model struct {
	table    table.Model
	viewport viewport.Model
	store    Store
	cancel   Canceller
	prefs    Prefs
	saved    PrefsStore       // nil keeps preferences for this session only
	events   []exposure.Event // rows currently shown
	now      func() time.Time

	quitting      bool
	ready         bool
	width         int
	height        int
	showHelp      bool
	confirmClear  bool
	statusMessage string
	statusTimeout *time.Time
}

type (
	statusMsg  string
	refreshMsg struct{}
)

// NewModel builds a browser over store. cancel may be nil.
func NewModel(store Store, cancel Canceller, prefs Prefs) Model {
	columns := []table.Column{
		{Title: "Status", Width: 10},
		{Title: "Sev", Width: 6},
		{Title: "Provider", Width: 12},
		{Title: "Type", Width: 24},
		{Title: "Preview", Width: 36},
		{Title: "Age", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)

	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)

	s.Cell = lipgloss.NewStyle().
		Padding(0, 1)

	t.SetStyles(s)

	m := Model{
		table:         t,
		viewport:      viewport.New(80, 8),
		store:         store,
		cancel:        cancel,
		prefs:         prefs,
		now:           time.Now,
		statusMessage: "q: quit | ?: help | r: rotated | d: dismiss | c: clear | a: show all",
	}
	m.rebuildRows()
	return m
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Init() tea.Cmd {
	return refreshTick()
}

// rebuildRows reloads the visible events from the store, keeping the
// cursor on the same event where possible.
func (m *Model) rebuildRows() {
	var selectedID string
	if ev := m.selected(); ev != nil {
		selectedID = ev.ID
	}

	all := m.store.All()
	m.events = nil
	for _, ev := range all {
		if !m.prefs.ShowResolved && ev.Status != exposure.StatusExposed {
			continue
		}
		m.events = append(m.events, ev)
	}

	now := m.now()
	rows := make([]table.Row, len(m.events))
	cursor := 0
	for i, ev := range m.events {
		rows[i] = table.Row{
			string(ev.Status),
			severityText(ev.Severity),
			ev.Provider,
			ev.SecretType,
			ev.MaskedPreview,
			formatDuration(now.Sub(ev.Time())),
		}
		if ev.ID == selectedID {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
	m.updateViewportContent()
}

func (m *Model) selected() *exposure.Event {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.events) {
		return nil
	}
	return &m.events[idx]
}

func (m *Model) updateViewportContent() {
	ev := m.selected()
	if ev == nil {
		m.viewport.SetContent("")
		return
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s", ev.Provider, ev.SecretType)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Preview: "), ev.MaskedPreview)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Severity:"), severityStyle(ev.Severity).Render(string(ev.Severity)))
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Status:  "), ev.Status)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Exposed: "), ev.Time().Format("Jan 2, 15:04:05"))
	if ev.Status == exposure.StatusExposed {
		due := dueAt(*ev)
		if left := due.Sub(m.now()); left > 0 {
			fmt.Fprintf(&b, "%s in %s (%s)\n", keyStyle.Render("Rotate:  "), formatDuration(left), due.Format("15:04"))
		} else {
			fmt.Fprintf(&b, "%s overdue since %s\n", keyStyle.Render("Rotate:  "), due.Format("15:04"))
		}
	}
	if ev.RotationURL != "" {
		fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Rotate at:"), ev.RotationURL)
	}
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("ID:      "), ev.ID)
	m.viewport.SetContent(b.String())
}

func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SevCritical:
		return sevCriticalStyle
	case types.SevHigh:
		return sevHighStyle
	default:
		return sevMedStyle
	}
}

func (m *Model) setStatus(msg string) {
	timeout := m.now().Add(5 * time.Second)
	m.statusTimeout = &timeout
	m.statusMessage = msg
}

func (m *Model) resize() {
	tableHeight := m.height/2 - 4
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
	m.table.SetWidth(m.width - 2)
	m.viewport.Width = m.width - 2
	vh := m.height - tableHeight - 7
	if vh < 3 {
		vh = 3
	}
	m.viewport.Height = vh
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case refreshMsg:
		if err := m.store.Reload(); err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", err))
		}
		m.rebuildRows()
		if m.statusTimeout != nil && m.now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = "q: quit | ?: help | r: rotated | d: dismiss | c: clear | a: show all"
		}
		return m, refreshTick()

	case statusMsg:
		m.setStatus(string(msg))
		m.rebuildRows()
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.confirmClear {
			m.confirmClear = false
			switch msg.String() {
			case "y", "Y":
				return m, m.clearAll()
			default:
				m.setStatus("Clear cancelled")
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "r":
			return m, m.markRotated()
		case "d", "x":
			return m, m.dismiss()
		case "c":
			if len(m.store.All()) == 0 {
				m.setStatus("Exposure log is already empty")
				return m, nil
			}
			m.confirmClear = true
			return m, nil
		case "a":
			m.prefs.ShowResolved = !m.prefs.ShowResolved
			m.rebuildRows()
			return m, m.savePrefs()
		case "y":
			return m, m.copyPreview()
		case "R", "ctrl+r":
			return m, func() tea.Msg { return refreshMsg{} }
		}
	}

	m.table, cmd = m.table.Update(msg)
	m.updateViewportContent()
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	if m.showHelp {
		help := strings.Join([]string{
			titleStyle.Render("Exposure log"),
			"",
			keyStyle.Render("j/k, ↑/↓") + "  move",
			keyStyle.Render("r") + "         mark rotated",
			keyStyle.Render("d") + "         dismiss",
			keyStyle.Render("c") + "         clear the whole log",
			keyStyle.Render("a") + "         show/hide rotated and dismissed",
			keyStyle.Render("y") + "         copy masked preview",
			keyStyle.Render("R") + "         reload",
			keyStyle.Render("q") + "         quit",
			"",
			"Press any key to close",
		}, "\n")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(help))
	}

	if m.confirmClear {
		box := popupStyle.
			Width(50).
			Align(lipgloss.Center).
			Render("Clear all exposure history?\n\ny: clear   any other key: cancel")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var crit, high, med int
	all := m.store.All()
	for _, ev := range all {
		if ev.Status != exposure.StatusExposed {
			continue
		}
		switch ev.Severity {
		case types.SevCritical:
			crit++
		case types.SevHigh:
			high++
		default:
			med++
		}
	}
	var statsContent string
	if crit+high+med == 0 {
		statsContent = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("[OK] No exposed secrets")
	} else {
		statsContent = fmt.Sprintf("Exposed: %-4d  |  %s %-4d  |  %s %-4d  |  %s %-4d",
			crit+high+med,
			sevCriticalStyle.Render("Critical:"), crit,
			sevHighStyle.Render("High:"), high,
			sevMedStyle.Render("Medium:"), med,
		)
	}
	if m.prefs.ShowResolved {
		statsContent += fmt.Sprintf("  [all %d]", len(all))
	}

	statsHeader := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("237")).
		Render(statsContent)

	tableRender := tableBorderStyle.
		Width(m.width - 2).
		Render(m.table.View())

	var detailContent string
	if len(m.events) == 0 {
		emptyMsg := "No exposed secrets.\n\nPress 'a' to show rotated and dismissed entries"
		if len(all) == 0 {
			emptyMsg = "The exposure log is empty."
		}
		detailContent = lipgloss.Place(m.width-2, m.viewport.Height, lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(emptyMsg))
	} else {
		detailContent = m.viewport.View()
	}
	detailRender := detailPaneBorderStyle.
		Width(m.width - 2).
		Render(detailContent)

	status := statusStyle.Width(m.width).Render(" " + m.statusMessage)
	return lipgloss.JoinVertical(lipgloss.Left, statsHeader, tableRender, detailRender, status)
}
