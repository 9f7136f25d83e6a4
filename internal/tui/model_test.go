package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/state"
	"github.com/secretshields/secretshields/internal/types"
)

type cancelRecorder struct{ ids []string }

func (c *cancelRecorder) Cancel(id string) bool {
	c.ids = append(c.ids, id)
	return true
}

func newStore(t *testing.T, params ...exposure.Params) (*exposure.Store, []exposure.Event) {
	t.Helper()
	s, err := exposure.Open(state.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	var events []exposure.Event
	for _, p := range params {
		ev, err := s.Add(p)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		events = append(events, ev)
	}
	return s, events
}

var (
	awsExposure    = exposure.Params{Provider: "AWS", SecretType: "AWS Access Key ID", Severity: types.SevCritical, MaskedPreview: "AKIA████████████MPL1", CountdownMinutes: 15}
	googleExposure = exposure.Params{Provider: "Google", SecretType: "Google API Key", Severity: types.SevHigh, MaskedPreview: "AIza███████████████████████████████Xy", CountdownMinutes: 60}
)

// run feeds a command's message back into the model, as the runtime would.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if msg == nil {
		return m
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNewModel_ShowsExposedOnly(t *testing.T) {
	store, events := newStore(t, awsExposure, googleExposure)
	if _, err := store.Dismiss(events[0].ID); err != nil {
		t.Fatal(err)
	}
	m := NewModel(store, nil, DefaultPrefs())
	if len(m.events) != 1 || m.events[0].Provider != "Google" {
		t.Fatalf("expected only the Google exposure, got %+v", m.events)
	}

	m.prefs.ShowResolved = true
	m.rebuildRows()
	if len(m.events) != 2 {
		t.Fatalf("expected both exposures with ShowResolved, got %d", len(m.events))
	}
}

func TestUpdate_MarkRotatedCancelsCountdown(t *testing.T) {
	store, events := newStore(t, awsExposure)
	rec := &cancelRecorder{}
	m := NewModel(store, rec, DefaultPrefs())

	m, cmd := key(m, "r")
	m = run(t, m, cmd)

	got, _ := store.Get(events[0].ID)
	if got.Status != exposure.StatusRotated {
		t.Fatalf("expected rotated, got %s", got.Status)
	}
	if len(rec.ids) != 1 || rec.ids[0] != events[0].ID {
		t.Fatalf("expected countdown cancelled for %s, got %v", events[0].ID, rec.ids)
	}
	if !strings.Contains(m.statusMessage, "rotated") {
		t.Fatalf("unexpected status %q", m.statusMessage)
	}
	if len(m.events) != 0 {
		t.Fatalf("expected the rotated row hidden, got %d rows", len(m.events))
	}
}

func TestUpdate_DismissSelectedRow(t *testing.T) {
	store, events := newStore(t, awsExposure, googleExposure)
	m := NewModel(store, nil, DefaultPrefs())
	// newest first: Google then AWS
	m, _ = key(m, "down")
	m, cmd := key(m, "d")
	m = run(t, m, cmd)

	got, _ := store.Get(events[0].ID)
	if got.Status != exposure.StatusDismissed {
		t.Fatalf("expected AWS exposure dismissed, got %s", got.Status)
	}
	other, _ := store.Get(events[1].ID)
	if other.Status != exposure.StatusExposed {
		t.Fatalf("expected Google exposure untouched, got %s", other.Status)
	}
}

func TestUpdate_ClearRequiresConfirmation(t *testing.T) {
	store, _ := newStore(t, awsExposure, googleExposure)
	m := NewModel(store, nil, DefaultPrefs())

	m, _ = key(m, "c")
	if !m.confirmClear {
		t.Fatal("expected confirmation prompt")
	}
	m, _ = key(m, "n")
	if m.confirmClear || len(store.All()) != 2 {
		t.Fatal("expected clear cancelled")
	}

	m, _ = key(m, "c")
	m, cmd := key(m, "y")
	m = run(t, m, cmd)
	if len(store.All()) != 0 {
		t.Fatalf("expected empty log, got %d", len(store.All()))
	}
	if m.statusMessage != "Exposure log cleared." {
		t.Fatalf("unexpected status %q", m.statusMessage)
	}
}

func TestUpdate_ClearOnEmptyLog(t *testing.T) {
	store, _ := newStore(t)
	m := NewModel(store, nil, DefaultPrefs())
	m, _ = key(m, "c")
	if m.confirmClear {
		t.Fatal("expected no confirmation on an empty log")
	}
}

func TestUpdate_RefreshPicksUpExternalChanges(t *testing.T) {
	store, _ := newStore(t)
	m := NewModel(store, nil, DefaultPrefs())
	if len(m.events) != 0 {
		t.Fatal("expected empty")
	}
	if _, err := store.Add(awsExposure); err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(refreshMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected the refresh tick to be rescheduled")
	}
	if len(m.events) != 1 {
		t.Fatalf("expected 1 row after refresh, got %d", len(m.events))
	}
}

func TestUpdate_Quit(t *testing.T) {
	store, _ := newStore(t)
	m := NewModel(store, nil, DefaultPrefs())
	m, cmd := key(m, "q")
	if !m.quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDueAt(t *testing.T) {
	ev := exposure.Event{Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli(), CountdownMinutes: 15}
	want := time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC)
	if !dueAt(ev).Equal(want) {
		t.Fatalf("dueAt = %v, want %v", dueAt(ev), want)
	}
}
