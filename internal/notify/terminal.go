package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Terminal prints to out and reads answers from in. Lines read while a
// prompt is open answer it; all other lines are delivered on Commands.
type Terminal struct {
	out   io.Writer
	outMu sync.Mutex

	// serializes prompts
	promptMu sync.Mutex

	mu      sync.Mutex
	pending chan string
	eof     bool

	cmds chan string
}

// NewTerminal starts reading lines from in.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{out: out, cmds: make(chan string, 16)}
	go t.read(in)
	return t
}

func (t *Terminal) read(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		t.mu.Lock()
		if ch := t.pending; ch != nil {
			t.pending = nil
			t.mu.Unlock()
			ch <- line
			continue
		}
		t.mu.Unlock()
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case t.cmds <- line:
		default:
		}
	}
	t.mu.Lock()
	t.eof = true
	if t.pending != nil {
		close(t.pending)
		t.pending = nil
	}
	t.mu.Unlock()
	close(t.cmds)
}

// Commands delivers input lines that did not answer a prompt. It is
// closed when the input ends.
func (t *Terminal) Commands() <-chan string { return t.cmds }

func (t *Terminal) printf(format string, args ...any) {
	t.outMu.Lock()
	fmt.Fprintf(t.out, format, args...)
	t.outMu.Unlock()
}

func render(level Level, msg string) string {
	if level == Warn {
		return warnStyle.Render("⚠ ") + msg
	}
	return infoStyle.Render("● ") + msg
}

func (t *Terminal) Notify(level Level, msg string) {
	t.printf("%s\n", render(level, msg))
}

func (t *Terminal) Prompt(ctx context.Context, p Prompt) (int, error) {
	t.promptMu.Lock()
	defer t.promptMu.Unlock()

	var b strings.Builder
	b.WriteString(render(p.Level, p.Message))
	b.WriteString("\n")
	for i, a := range p.Actions {
		fmt.Fprintf(&b, "  %s %s\n", keyStyle.Render(fmt.Sprintf("[%d]", i+1)), a)
	}
	b.WriteString(hintStyle.Render("  choose a number, or press enter to dismiss"))
	b.WriteString("\n")

	ch := make(chan string, 1)
	t.mu.Lock()
	if t.eof {
		t.mu.Unlock()
		t.printf("%s", b.String())
		return Dismissed, nil
	}
	t.pending = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		if t.pending == ch {
			t.pending = nil
		}
		t.mu.Unlock()
	}()
	t.printf("%s", b.String())

	var timeout <-chan time.Time
	if p.Timeout > 0 {
		timer := time.NewTimer(p.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case line, ok := <-ch:
		if !ok {
			return Dismissed, nil
		}
		return Choose(line, p.Actions), nil
	case <-timeout:
		t.printf("%s\n", hintStyle.Render("  (no answer, dismissed)"))
		return Dismissed, nil
	case <-ctx.Done():
		return Dismissed, ctx.Err()
	}
}
