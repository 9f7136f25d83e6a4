// Package clipboard is the text clipboard capability the session monitor
// polls and overwrites.
package clipboard

import (
	"context"
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// System uses the host clipboard (pbcopy, xclip, xsel, wl-clipboard or the
// Windows API).
type System struct{}

// NewSystem returns the host clipboard.
func NewSystem() System { return System{} }

func (System) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	return clipboard.ReadAll()
}

func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Memory is an in-process clipboard. ReadErr and WriteErr, when set, are
// returned instead of touching the contents.
type Memory struct {
	mu       sync.Mutex
	text     string
	writes   int
	ReadErr  error
	WriteErr error
}

// NewMemory returns a Memory clipboard holding text.
func NewMemory(text string) *Memory { return &Memory{text: text} }

func (m *Memory) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

func (m *Memory) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	m.writes++
	return nil
}

// Set replaces the contents as an external program would.
func (m *Memory) Set(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
}

// Text returns the current contents.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes counts successful WriteText calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// SetErrors sets the injected read and write failures.
func (m *Memory) SetErrors(readErr, writeErr error) {
	m.mu.Lock()
	m.ReadErr, m.WriteErr = readErr, writeErr
	m.mu.Unlock()
}
