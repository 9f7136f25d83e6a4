package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/secretshields/secretshields/internal/countdown"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/notify"
)

// ReminderStore is the part of the exposure log a reminder touches.
type ReminderStore interface {
	Reload() error
	Get(id string) (exposure.Event, bool)
	MarkRotated(id string) (bool, error)
	Dismiss(id string) (bool, error)
}

// Reminders returns a countdown callback that asks the operator to rotate
// the exposed secret. Exposures rotated or dismissed elsewhere in the
// meantime are skipped.
func Reminders(ctx context.Context, store ReminderStore, n notify.Notifier, l *log.Logger) func(countdown.Reminder) {
	l = logging.Or(l)
	return func(r countdown.Reminder) {
		if err := store.Reload(); err != nil {
			l.Warn("exposure log reload failed", "err", err)
		}
		ev, ok := store.Get(r.ExposureID)
		if !ok || ev.Status != exposure.StatusExposed {
			l.Debug("reminder skipped", "exposure", r.ExposureID)
			return
		}
		msg := fmt.Sprintf("SecretShields: Rotate your exposed %s secret (%s).", r.Provider, ev.MaskedPreview)
		if r.RotationURL != "" {
			msg += " Rotate at " + r.RotationURL
		}
		choice, err := n.Prompt(ctx, notify.Prompt{
			Level:   notify.Warn,
			Message: msg,
			Actions: []string{"Mark Rotated", "Dismiss"},
		})
		if err != nil {
			return
		}
		switch choice {
		case 0:
			if _, err := store.MarkRotated(r.ExposureID); err != nil {
				l.Error("mark rotated", "exposure", r.ExposureID, "err", err)
			}
		case 1:
			if _, err := store.Dismiss(r.ExposureID); err != nil {
				l.Error("dismiss exposure", "exposure", r.ExposureID, "err", err)
			}
		}
	}
}

// ResumeCountdowns restarts the countdown of every still-exposed event,
// for example after a restart. Overdue countdowns fire immediately. It
// returns how many were started.
func ResumeCountdowns(events []exposure.Event, c Countdowns, now time.Time) int {
	n := 0
	for _, ev := range events {
		if ev.Status != exposure.StatusExposed {
			continue
		}
		due := ev.Time().Add(time.Duration(ev.CountdownMinutes) * time.Minute)
		remaining := due.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		if err := c.Start(ev.ID, remaining, ev.Provider, ev.RotationURL); err == nil {
			n++
		}
	}
	return n
}
