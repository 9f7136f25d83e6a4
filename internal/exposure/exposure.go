// Package exposure keeps the log of secrets the operator chose to put back
// on the clipboard. Events hold metadata and a masked preview only.
package exposure

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/state"
	"github.com/secretshields/secretshields/internal/types"
)

const (
	// StorageKey holds the persisted log.
	StorageKey = "secretshields.exposureLog"
	// LegacyStorageKey is migrated forward once when StorageKey is absent.
	LegacyStorageKey = "redakt.exposureLog"
)

// Status is the lifecycle state of an exposure.
type Status string

const (
	StatusExposed   Status = "exposed"
	StatusRotated   Status = "rotated"
	StatusDismissed Status = "dismissed"
)

// Event records one re-exposure of a secret. Timestamp is unix
// milliseconds.
type Event struct {
	ID               string         `json:"id"`
	Provider         string         `json:"provider"`
	SecretType       string         `json:"secretType"`
	Severity         types.Severity `json:"severity"`
	MaskedPreview    string         `json:"maskedPreview"`
	Timestamp        int64          `json:"timestamp"`
	RotationURL      string         `json:"rotationUrl,omitempty"`
	CountdownMinutes int            `json:"countdownMinutes"`
	Status           Status         `json:"status"`
}

// Time returns the event timestamp.
func (e Event) Time() time.Time { return time.UnixMilli(e.Timestamp) }

// Params are the caller-supplied fields of a new event.
type Params struct {
	Provider         string
	SecretType       string
	Severity         types.Severity
	MaskedPreview    string
	RotationURL      string
	CountdownMinutes int
}

// FromDetection fills Params from a detection's metadata.
func FromDetection(d types.Detection, countdownMinutes int) Params {
	return Params{
		Provider:         d.Provider,
		SecretType:       d.Name,
		Severity:         d.Severity,
		MaskedPreview:    d.Masked,
		RotationURL:      d.RotationURL,
		CountdownMinutes: countdownMinutes,
	}
}

// Store is the ordered exposure log, most recent first. Every mutation
// persists the whole log and then notifies observers.
type Store struct {
	mu        sync.Mutex
	backend   state.Store
	events    []Event
	observers map[int]func()
	nextObs   int
	now       func() time.Time
	log       *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the persisted log from backend, migrating the legacy key when
// the current one holds nothing.
func Open(backend state.Store, opts ...Option) (*Store, error) {
	s := &Store{
		backend:   backend,
		observers: make(map[int]func()),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = logging.Or(s.log)

	var events []Event
	ok, err := backend.Get(StorageKey, &events)
	if err != nil {
		return nil, fmt.Errorf("load exposure log: %w", err)
	}
	if !ok {
		var legacy []Event
		found, err := backend.Get(LegacyStorageKey, &legacy)
		if err != nil {
			return nil, fmt.Errorf("load legacy exposure log: %w", err)
		}
		if found {
			if err := backend.Set(StorageKey, nonNil(legacy)); err != nil {
				return nil, fmt.Errorf("migrate exposure log: %w", err)
			}
			if err := backend.Delete(LegacyStorageKey); err != nil {
				return nil, fmt.Errorf("migrate exposure log: %w", err)
			}
			s.log.Info("migrated legacy exposure log", "events", len(legacy))
			events = legacy
		}
	}
	s.events = events
	return s, nil
}

func nonNil(ev []Event) []Event {
	if ev == nil {
		return []Event{}
	}
	return ev
}

func (s *Store) newID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("exp_%d_%s", s.now().UnixMilli(), hex[:8])
}

// refresh re-reads the backend so a mutation applies on top of writes
// made by other processes sharing it. A failed read keeps the in-memory
// log. Caller holds mu.
func (s *Store) refresh() {
	var events []Event
	ok, err := s.backend.Get(StorageKey, &events)
	if err != nil {
		s.log.Warn("reload exposure log", "err", err)
		return
	}
	if ok {
		s.events = events
	}
}

// persist writes the snapshot. Caller holds mu.
func (s *Store) persist() error {
	if err := s.backend.Set(StorageKey, nonNil(s.events)); err != nil {
		s.log.Error("persist exposure log", "err", err)
		return fmt.Errorf("persist exposure log: %w", err)
	}
	return nil
}

// Add prepends a new exposed event. The event is kept in memory even when
// persisting fails; the error is still returned.
func (s *Store) Add(p Params) (Event, error) {
	s.mu.Lock()
	s.refresh()
	ev := Event{
		ID:               s.newID(),
		Provider:         p.Provider,
		SecretType:       p.SecretType,
		Severity:         p.Severity,
		MaskedPreview:    p.MaskedPreview,
		Timestamp:        s.now().UnixMilli(),
		RotationURL:      p.RotationURL,
		CountdownMinutes: p.CountdownMinutes,
		Status:           StatusExposed,
	}
	s.events = append([]Event{ev}, s.events...)
	err := s.persist()
	s.mu.Unlock()

	s.log.Info("exposure recorded", "exposure", ev.ID, "provider", ev.Provider, "severity", ev.Severity)
	s.notify()
	return ev, err
}

// MarkRotated moves an exposed event to rotated. It reports whether a
// transition happened; unknown ids and terminal events are a no-op.
func (s *Store) MarkRotated(id string) (bool, error) {
	return s.transition(id, StatusRotated)
}

// Dismiss moves an exposed event to dismissed.
func (s *Store) Dismiss(id string) (bool, error) {
	return s.transition(id, StatusDismissed)
}

func (s *Store) transition(id string, to Status) (bool, error) {
	s.mu.Lock()
	s.refresh()
	idx := -1
	for i := range s.events {
		if s.events[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || s.events[idx].Status != StatusExposed {
		s.mu.Unlock()
		return false, nil
	}
	s.events[idx].Status = to
	err := s.persist()
	s.mu.Unlock()

	s.log.Info("exposure updated", "exposure", id, "status", to)
	s.notify()
	return true, err
}

// ClearAll empties the log.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	n := len(s.events)
	s.events = nil
	err := s.persist()
	s.mu.Unlock()

	s.log.Info("exposure log cleared", "events", n)
	s.notify()
	return err
}

// All returns a copy of the log, most recent first.
func (s *Store) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Exposed returns the events still awaiting rotation.
func (s *Store) Exposed() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Status == StatusExposed {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Reload replaces the in-memory log with the persisted one.
func (s *Store) Reload() error {
	var events []Event
	s.mu.Lock()
	ok, err := s.backend.Get(StorageKey, &events)
	if err == nil {
		if !ok {
			events = nil
		}
		s.events = events
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reload exposure log: %w", err)
	}
	return nil
}

// OnChange registers fn to run after every mutation. The returned function
// unregisters it.
func (s *Store) OnChange(fn func()) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
