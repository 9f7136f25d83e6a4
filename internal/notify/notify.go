// Package notify surfaces messages and choice prompts to the operator.
package notify

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/secretshields/secretshields/internal/logging"
	"golang.org/x/term"
)

// Level is the urgency of a message.
type Level int

const (
	Info Level = iota
	Warn
)

func (l Level) String() string {
	if l == Warn {
		return "warn"
	}
	return "info"
}

// Dismissed is the choice index returned when the operator picks nothing.
const Dismissed = -1

// Prompt asks the operator to pick one of Actions. A zero Timeout waits
// until the context ends.
type Prompt struct {
	Level   Level
	Message string
	Actions []string
	Timeout time.Duration
}

// Notifier shows messages and prompts. Prompt returns the chosen action
// index, or Dismissed.
type Notifier interface {
	Notify(level Level, msg string)
	Prompt(ctx context.Context, p Prompt) (int, error)
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Choose maps an answer to an action index: a 1-based number, or a
// case-insensitive unique prefix of an action label.
func Choose(answer string, actions []string) int {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return Dismissed
	}
	n := 0
	for _, r := range answer {
		if r < '0' || r > '9' {
			n = -1
			break
		}
		n = n*10 + int(r-'0')
		if n > len(actions) {
			break
		}
	}
	if n >= 1 && n <= len(actions) {
		return n - 1
	}
	found := Dismissed
	for i, a := range actions {
		if strings.HasPrefix(strings.ToLower(a), answer) {
			if found != Dismissed {
				return Dismissed
			}
			found = i
		}
	}
	return found
}

// Log writes messages to a logger and dismisses every prompt. Used when
// no terminal is attached.
type Log struct {
	l *log.Logger
}

// NewLog returns a Log notifier writing to l.
func NewLog(l *log.Logger) *Log { return &Log{l: logging.Or(l)} }

func (n *Log) Notify(level Level, msg string) {
	if level == Warn {
		n.l.Warn(msg)
		return
	}
	n.l.Info(msg)
}

func (n *Log) Prompt(_ context.Context, p Prompt) (int, error) {
	n.Notify(p.Level, p.Message)
	n.l.Debug("prompt dismissed, no terminal", "actions", strings.Join(p.Actions, " | "))
	return Dismissed, nil
}
