// Package countdown schedules one rotation reminder per exposed secret.
package countdown

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/schedule"
)

// Reminder is delivered when a countdown runs out.
type Reminder struct {
	ExposureID  string
	Provider    string
	RotationURL string
	After       time.Duration
}

// Manager keeps an independent fire-once timer per exposure id.
type Manager struct {
	sched  *schedule.Scheduler
	onFire func(Reminder)
	log    *log.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New returns a Manager that calls onFire on the timer's goroutine when a
// countdown expires.
func New(onFire func(Reminder), opts ...Option) *Manager {
	m := &Manager{sched: schedule.New(), onFire: onFire}
	for _, o := range opts {
		o(m)
	}
	m.log = logging.Or(m.log)
	return m
}

// Start creates the countdown for id, replacing any existing one.
func (m *Manager) Start(id string, after time.Duration, provider, rotationURL string) error {
	r := Reminder{ExposureID: id, Provider: provider, RotationURL: rotationURL, After: after}
	err := m.sched.After(id, after, func() {
		m.log.Info("rotation reminder due", "exposure", id, "provider", provider)
		if m.onFire != nil {
			m.onFire(r)
		}
	})
	if err != nil {
		return fmt.Errorf("start countdown %s: %w", id, err)
	}
	m.log.Debug("countdown started", "exposure", id, "provider", provider, "after", after)
	return nil
}

// Cancel stops the countdown for id. Unknown ids are a no-op.
func (m *Manager) Cancel(id string) bool {
	ok := m.sched.Cancel(id)
	if ok {
		m.log.Debug("countdown cancelled", "exposure", id)
	}
	return ok
}

// Pending reports whether a countdown is still running for id.
func (m *Manager) Pending(id string) bool { return m.sched.Pending(id) }

// Len returns the number of running countdowns.
func (m *Manager) Len() int { return m.sched.Len() }

// Close cancels every outstanding countdown.
func (m *Manager) Close() { m.sched.Close() }
