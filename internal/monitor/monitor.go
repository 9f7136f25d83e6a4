// Package monitor watches the clipboard for secrets. A Session polls on a
// fixed interval, masks what it finds, holds the original for a short
// restore window and records every restore as an exposure.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/clipboard"
	"github.com/secretshields/secretshields/internal/config"
	"github.com/secretshields/secretshields/internal/engine"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/notify"
	"github.com/secretshields/secretshields/internal/schedule"
	"github.com/secretshields/secretshields/internal/types"
)

var (
	// ErrRestoreExpired means the restore window closed and the original
	// was discarded.
	ErrRestoreExpired = errors.New("restore window expired, the original secret has been discarded")
	// ErrNothingToRestore means no masked secret is cached.
	ErrNothingToRestore = errors.New("no masked secret available to restore")
	// ErrClipboardEmpty is returned by MaskNow on an empty clipboard.
	ErrClipboardEmpty = errors.New("clipboard is empty")
)

const (
	taskPoll        = "poll"
	taskCacheExpiry = "cache-expiry"

	// cache expiry runs slightly after the deadline so the passive check
	// and the timer agree
	expirySlack = 100 * time.Millisecond
)

// Exposures records restored secrets.
type Exposures interface {
	Add(p exposure.Params) (exposure.Event, error)
}

// Countdowns starts rotation reminders.
type Countdowns interface {
	Start(id string, after time.Duration, provider, rotationURL string) error
}

// Auditor receives a metadata-only record of each mask and restore.
type Auditor interface {
	Record(r audit.Record) error
}

// Deps are the capabilities a Session runs against.
type Deps struct {
	Clipboard  clipboard.Clipboard
	Settings   config.Source
	Exposures  Exposures
	Countdowns Countdowns
	// Notifier defaults to logging only.
	Notifier notify.Notifier
	// Audit is optional.
	Audit  Auditor
	Logger *log.Logger
}

// State is the lifecycle state of a Session.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// cachedSecret is the only place a raw secret is held.
type cachedSecret struct {
	original   string
	detections []types.Detection
	expiresAt  time.Time
}

// Session is the clipboard monitor.
type Session struct {
	deps          Deps
	log           *log.Logger
	notifier      notify.Notifier
	now           func() time.Time
	promptTimeout time.Duration
	sched         *schedule.Scheduler

	// one poll tick at a time
	tickMu sync.Mutex

	mu      sync.Mutex
	running bool
	runGen  uint64
	runCtx  context.Context
	cancel  context.CancelFunc
	masking bool
	seen    bool
	last    uint64
	cache   *cachedSecret
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for restore deadlines.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithPromptTimeout dismisses unanswered prompts after d.
func WithPromptTimeout(d time.Duration) Option {
	return func(s *Session) { s.promptTimeout = d }
}

// New builds a stopped Session.
func New(deps Deps, opts ...Option) (*Session, error) {
	switch {
	case deps.Clipboard == nil:
		return nil, errors.New("monitor: clipboard is required")
	case deps.Settings == nil:
		return nil, errors.New("monitor: settings source is required")
	case deps.Exposures == nil:
		return nil, errors.New("monitor: exposure store is required")
	case deps.Countdowns == nil:
		return nil, errors.New("monitor: countdown manager is required")
	}
	s := &Session{
		deps:  deps,
		log:   logging.Or(deps.Logger),
		now:   time.Now,
		sched: schedule.New(),
	}
	for _, o := range opts {
		o(s)
	}
	s.notifier = deps.Notifier
	if s.notifier == nil {
		s.notifier = notify.NewLog(s.log)
	}
	return s, nil
}

// Start begins polling. It is a no-op when already running.
func (s *Session) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.runGen++
	gen := s.runGen
	s.runCtx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.log.Info("clipboard monitoring started")
	s.scheduleNext(gen)
}

// Stop cancels the pending poll and any open prompt. It is a no-op when
// already stopped.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.runGen++
	cancel := s.cancel
	s.mu.Unlock()

	s.sched.Cancel(taskPoll)
	cancel()
	s.log.Info("clipboard monitoring stopped")
}

// Close stops the session, discards any cached secret and releases every
// timer the session owns.
func (s *Session) Close() {
	s.Stop()
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
	s.sched.Close()
}

// State reports whether the session is polling.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return Running
	}
	return Stopped
}

// Status summarises the session for display.
type Status struct {
	State State
	// Cached is true while a masked secret can be restored.
	Cached    bool
	Secrets   int
	ExpiresAt time.Time
}

// Status returns the current state and restore window.
func (s *Session) Status() Status {
	st := Status{State: s.State()}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.cache; c != nil && !s.now().After(c.expiresAt) {
		st.Cached = true
		st.Secrets = len(c.detections)
		st.ExpiresAt = c.expiresAt
	}
	return st
}

func (s *Session) scheduleNext(gen uint64) {
	interval := s.deps.Settings.Settings().PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	err := s.sched.After(taskPoll, interval, func() {
		s.mu.Lock()
		ctx := s.runCtx
		live := s.running && s.runGen == gen
		s.mu.Unlock()
		if !live {
			return
		}
		s.Poll(ctx)
		s.mu.Lock()
		live = s.running && s.runGen == gen
		s.mu.Unlock()
		if live {
			s.scheduleNext(gen)
		}
	})
	if err != nil {
		s.log.Debug("poll not scheduled", "err", err)
	}
}

func fingerprint(text string) uint64 { return xxhash.Sum64String(text) }

// Poll runs one tick: read the clipboard, detect, and mask or notify
// according to the settings. Clipboard failures are logged and ignored.
func (s *Session) Poll(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	masking := s.masking
	s.mu.Unlock()
	if masking {
		return
	}

	text, err := s.deps.Clipboard.ReadText(ctx)
	if err != nil {
		s.log.Debug("clipboard read failed", "err", err)
		return
	}
	if text == "" {
		return
	}
	fp := fingerprint(text)
	s.mu.Lock()
	if s.seen && fp == s.last {
		s.mu.Unlock()
		return
	}
	s.seen, s.last = true, fp
	s.mu.Unlock()

	settings := s.deps.Settings.Settings()
	if !settings.Enabled {
		return
	}

	res := engine.Scan(text, settings.EnabledPatterns())
	if !res.Found() {
		return
	}
	s.logDetections("secrets detected in clipboard", res.Detections)

	n := len(res.Detections)
	if !settings.AutoMask {
		choice := s.prompt(ctx, notify.Prompt{
			Level:   notify.Warn,
			Message: fmt.Sprintf("SecretShields: Detected %d secret(s) in clipboard.", n),
			Actions: []string{"Mask Clipboard", "Ignore"},
		})
		if choice == 0 {
			if _, err := s.MaskNow(ctx); err != nil {
				s.notifier.Notify(notify.Warn, "SecretShields: "+err.Error())
			}
		}
		return
	}

	if err := s.maskAndCache(ctx, text, res, settings.RestoreTTL, "poll"); err != nil {
		s.log.Debug("clipboard write failed", "err", err)
		return
	}
	ttl := int(settings.RestoreTTL / time.Second)
	choice := s.prompt(ctx, notify.Prompt{
		Level:   notify.Warn,
		Message: fmt.Sprintf("SecretShields: Masked %d secret(s) in clipboard.", n),
		Actions: []string{"Keep Masked (Safe)", fmt.Sprintf("Restore for %ds (Exposes)", ttl), "Disable SecretShields"},
	})
	switch choice {
	case 1:
		if _, err := s.RestoreLast(ctx); err != nil {
			s.notifier.Notify(notify.Warn, "SecretShields: "+err.Error())
		}
	case 2:
		s.disable()
	}
}

func (s *Session) prompt(ctx context.Context, p notify.Prompt) int {
	p.Timeout = s.promptTimeout
	choice, err := s.notifier.Prompt(ctx, p)
	if err != nil {
		s.log.Debug("prompt closed", "err", err)
		return notify.Dismissed
	}
	return choice
}

func (s *Session) disable() {
	if err := s.deps.Settings.SetEnabled(false); err != nil {
		s.log.Warn("could not persist disabled setting", "err", err)
	}
	s.Stop()
	s.notifier.Notify(notify.Info, "SecretShields disabled. Re-enable in settings.")
}

func (s *Session) logDetections(msg string, dets []types.Detection) {
	for _, d := range dets {
		s.log.Info(msg, "pattern", d.PatternID, "provider", d.Provider, "severity", d.Severity)
	}
}

// MaskNow masks the clipboard on demand. It returns the number of secrets
// masked; zero with a nil error means nothing was found.
func (s *Session) MaskNow(ctx context.Context) (int, error) {
	text, err := s.deps.Clipboard.ReadText(ctx)
	if err != nil {
		return 0, fmt.Errorf("read clipboard: %w", err)
	}
	if text == "" {
		return 0, ErrClipboardEmpty
	}
	settings := s.deps.Settings.Settings()
	res := engine.Scan(text, settings.EnabledPatterns())
	if !res.Found() {
		return 0, nil
	}
	if err := s.maskAndCache(ctx, text, res, settings.RestoreTTL, "mask-now"); err != nil {
		return 0, fmt.Errorf("write clipboard: %w", err)
	}
	n := len(res.Detections)
	s.logDetections("secrets masked on demand", res.Detections)
	s.notifier.Notify(notify.Info, fmt.Sprintf("SecretShields: Masked %d secret(s) in clipboard.", n))
	return n, nil
}

// maskAndCache replaces any cached secret with original and writes the
// masked text. A failed write leaves nothing cached.
func (s *Session) maskAndCache(ctx context.Context, original string, res engine.Result, ttl time.Duration, source string) error {
	if ttl <= 0 {
		ttl = config.DefaultRestoreTTL
	}
	c := &cachedSecret{original: original, detections: res.Detections, expiresAt: s.now().Add(ttl)}
	s.mu.Lock()
	s.cache = c
	s.mu.Unlock()
	s.scheduleExpiry(c, ttl+expirySlack)

	if err := s.writeGuarded(ctx, res.Masked); err != nil {
		s.dropCache(c)
		return err
	}
	s.audit(audit.FromDetections(audit.ActionMasked, source, res.Detections))
	return nil
}

func (s *Session) audit(r audit.Record) {
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.Record(r); err != nil {
		s.log.Warn("audit record not written", "action", r.Action, "err", err)
	}
}

func (s *Session) scheduleExpiry(c *cachedSecret, after time.Duration) {
	err := s.sched.After(taskCacheExpiry, after, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cache == c && !s.now().Before(c.expiresAt) {
			s.cache = nil
			s.log.Debug("restore window closed")
		}
	})
	if err != nil {
		s.log.Debug("cache expiry not scheduled", "err", err)
	}
}

// dropCache clears the slot if it still holds c.
func (s *Session) dropCache(c *cachedSecret) {
	s.mu.Lock()
	if s.cache == c {
		s.cache = nil
	}
	s.mu.Unlock()
}

// writeGuarded writes text while the masking flag is up so a concurrent
// tick skips, then records text as already seen.
func (s *Session) writeGuarded(ctx context.Context, text string) error {
	s.mu.Lock()
	s.masking = true
	s.mu.Unlock()
	err := s.deps.Clipboard.WriteText(ctx, text)
	s.mu.Lock()
	s.masking = false
	if err == nil {
		s.seen, s.last = true, fingerprint(text)
	}
	s.mu.Unlock()
	return err
}

// RestoreLast writes the cached original back to the clipboard and
// records one exposure, with a running countdown, per detection. The
// cache is consumed whether or not the window is still open.
func (s *Session) RestoreLast(ctx context.Context) ([]exposure.Event, error) {
	s.mu.Lock()
	c := s.cache
	s.cache = nil
	s.mu.Unlock()
	s.sched.Cancel(taskCacheExpiry)

	if c == nil {
		return nil, ErrNothingToRestore
	}
	if s.now().After(c.expiresAt) {
		s.log.Info("restore refused, window expired", "secrets", len(c.detections))
		s.audit(audit.FromDetections(audit.ActionRestoreExpired, "", c.detections))
		return nil, ErrRestoreExpired
	}

	if err := s.writeGuarded(ctx, c.original); err != nil {
		// nothing was exposed; keep the secret restorable until its deadline
		s.mu.Lock()
		if s.cache == nil {
			s.cache = c
		}
		reinstated := s.cache == c
		s.mu.Unlock()
		if reinstated {
			s.scheduleExpiry(c, c.expiresAt.Sub(s.now())+expirySlack)
		}
		return nil, fmt.Errorf("restore clipboard: %w", err)
	}

	settings := s.deps.Settings.Settings()
	events := make([]exposure.Event, 0, len(c.detections))
	for _, d := range c.detections {
		minutes := settings.Countdown(d.Severity)
		ev, err := s.deps.Exposures.Add(exposure.FromDetection(d, minutes))
		if err != nil {
			s.log.Error("exposure not persisted", "exposure", ev.ID, "err", err)
		}
		if err := s.deps.Countdowns.Start(ev.ID, time.Duration(minutes)*time.Minute, d.Provider, d.RotationURL); err != nil {
			s.log.Warn("countdown not started", "exposure", ev.ID, "err", err)
		}
		events = append(events, ev)
	}
	s.log.Warn("secret restored to clipboard", "exposures", len(events))
	rec := audit.FromDetections(audit.ActionRestored, "", c.detections)
	for _, ev := range events {
		rec.ExposureIDs = append(rec.ExposureIDs, ev.ID)
	}
	s.audit(rec)
	s.notifier.Notify(notify.Warn, "SecretShields: Secret restored to clipboard. Rotation reminder started. "+
		"Re-copy something else or the secret will remain in clipboard.")
	return events, nil
}
