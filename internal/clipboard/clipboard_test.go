package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ReadWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("hello")
	got, err := m.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	require.NoError(t, m.WriteText(ctx, "world"))
	assert.Equal(t, "world", m.Text())
	assert.Equal(t, 1, m.Writes())

	m.Set("external")
	assert.Equal(t, "external", m.Text())
	assert.Equal(t, 1, m.Writes())
}

func TestMemory_InjectedErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("keep")
	boom := errors.New("access denied")
	m.SetErrors(boom, boom)

	_, err := m.ReadText(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.WriteText(ctx, "x"), boom)
	assert.Equal(t, "keep", m.Text())
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory("x")
	_, err := m.ReadText(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.WriteText(ctx, "y"), context.Canceled)
}

func TestSystem_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSystem().ReadText(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
