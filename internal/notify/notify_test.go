package notify

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var actions = []string{"Keep Masked (Safe)", "Restore for 60s (Exposes)", "Disable SecretShields"}

func TestChoose(t *testing.T) {
	tests := []struct {
		answer string
		want   int
	}{
		{"1", 0},
		{" 3 ", 2},
		{"4", Dismissed},
		{"0", Dismissed},
		{"12", Dismissed},
		{"", Dismissed},
		{"keep", 0},
		{"RESTORE", 1},
		{"d", 2},
		{"x", Dismissed},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, Choose(tt.answer, actions))
		})
	}
}

func TestChoose_AmbiguousPrefix(t *testing.T) {
	assert.Equal(t, Dismissed, Choose("m", []string{"Mask Clipboard", "Mark Rotated"}))
	assert.Equal(t, 1, Choose("mar", []string{"Mask Clipboard", "Mark Rotated"}))
}

func waitPending(t *testing.T, term *Terminal) {
	t.Helper()
	require.Eventually(t, func() bool {
		term.mu.Lock()
		defer term.mu.Unlock()
		return term.pending != nil
	}, time.Second, time.Millisecond)
}

func TestTerminal_PromptAnswered(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	term := NewTerminal(pr, &out)

	done := make(chan int)
	go func() {
		idx, err := term.Prompt(context.Background(), Prompt{Level: Warn, Message: "1 secret masked", Actions: actions})
		assert.NoError(t, err)
		done <- idx
	}()
	waitPending(t, term)
	_, err := pw.Write([]byte("2\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, <-done)
	assert.Contains(t, out.String(), "1 secret masked")
	assert.Contains(t, out.String(), "Restore for 60s (Exposes)")
}

func TestTerminal_LinesOutsidePromptAreCommands(t *testing.T) {
	term := NewTerminal(strings.NewReader("status\n\nrestore\n"), io.Discard)
	var got []string
	for cmd := range term.Commands() {
		got = append(got, cmd)
	}
	assert.Equal(t, []string{"status", "restore"}, got)
}

func TestTerminal_PromptTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	term := NewTerminal(pr, &out)
	idx, err := term.Prompt(context.Background(), Prompt{Message: "m", Actions: actions, Timeout: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, Dismissed, idx)
	assert.Contains(t, out.String(), "dismissed")
}

func TestTerminal_PromptContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx, err := term.Prompt(ctx, Prompt{Message: "m", Actions: actions})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Dismissed, idx)
}

func TestTerminal_PromptAfterEOF(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), io.Discard)
	for range term.Commands() {
	}
	idx, err := term.Prompt(context.Background(), Prompt{Message: "m", Actions: actions})
	require.NoError(t, err)
	assert.Equal(t, Dismissed, idx)
}

func TestLog_DismissesPrompts(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	idx, err := n.Prompt(context.Background(), Prompt{Level: Warn, Message: "2 secrets masked", Actions: actions})
	require.NoError(t, err)
	assert.Equal(t, Dismissed, idx)
	assert.Contains(t, buf.String(), "2 secrets masked")

	n.Notify(Info, "monitoring started")
	assert.Contains(t, buf.String(), "monitoring started")
}
