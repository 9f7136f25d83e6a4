// Package schedule owns named, cancellable, fire-once delayed tasks.
//
// Every timer in SecretShields is acquired through a Scheduler so that a
// single Close tears down everything its owner started.
package schedule

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when scheduling on a closed Scheduler.
var ErrClosed = errors.New("schedule: scheduler closed")

type task struct {
	timer *time.Timer
	gen   uint64
}

// Scheduler runs each named task at most once. Scheduling a name that is
// already pending replaces the earlier task. A replaced or cancelled task
// never runs, even if its timer had already expired.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	gen    uint64
	closed bool
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// After runs fn on its own goroutine once d has elapsed, unless the task is
// cancelled or replaced first. The task is removed before fn runs, so fn
// may reschedule the same name.
func (s *Scheduler) After(name string, d time.Duration, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if old, ok := s.tasks[name]; ok {
		old.timer.Stop()
	}
	s.gen++
	gen := s.gen
	t := &task{gen: gen}
	t.timer = time.AfterFunc(d, func() { s.fire(name, gen, fn) })
	s.tasks[name] = t
	return nil
}

func (s *Scheduler) fire(name string, gen uint64, fn func()) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok || t.gen != gen || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, name)
	s.mu.Unlock()
	fn()
}

// Cancel stops the named task. It reports whether a pending task existed.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, name)
	return true
}

// Pending reports whether the named task is still waiting to run.
func (s *Scheduler) Pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels every pending task and rejects further scheduling.
// It is safe to call more than once.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for name, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, name)
	}
}
