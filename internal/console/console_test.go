package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/scheerer/strip-animations/internal/animation"
	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/scene"
	"github.com/scheerer/strip-animations/internal/strip"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newConsole(t *testing.T) (*Console, *animation.Manager, *bytes.Buffer) {
	t.Helper()
	lib, err := scene.Default(colors.DefaultMode)
	require.NoError(t, err)
	m := animation.NewManager(strip.NewMemory(4), animation.ManagerConfig{})
	out := &bytes.Buffer{}
	return New(m, lib, out), m, out
}

func TestPlayAndStop(t *testing.T) {
	c, m, out := newConsole(t)

	require.NoError(t, c.Exec("play cycle"))
	require.NoError(t, c.Exec("PLAY 1"))
	layers := m.Layers()
	require.Len(t, layers, 2)
	assert.Contains(t, out.String(), "playing cycle as "+layers[0].ID.String())
	assert.Contains(t, out.String(), "playing flash as "+layers[1].ID.String())

	require.NoError(t, c.Exec("stop "+layers[1].ID.String()))
	require.Len(t, m.Layers(), 1)

	require.NoError(t, c.Exec("stop 0"))
	assert.Empty(t, m.Layers())

	assert.Error(t, c.Exec("stop 0"))
	assert.ErrorIs(t, c.Exec("stop "+layers[0].ID.String()), animation.ErrUnknownLayer)
}

func TestPlayUnknown(t *testing.T) {
	c, _, _ := newConsole(t)
	assert.ErrorIs(t, c.Exec("play nope"), scene.ErrUnknownAnimation)
	assert.Error(t, c.Exec("play"))
}

func TestClear(t *testing.T) {
	c, m, out := newConsole(t)
	require.NoError(t, c.Exec("play cycle"))
	require.NoError(t, c.Exec("play sweep"))
	require.NoError(t, c.Exec("clear"))
	assert.Empty(t, m.Layers())
	assert.Contains(t, out.String(), "stopped 2 layers")
}

func TestBackground(t *testing.T) {
	c, m, _ := newConsole(t)
	require.NoError(t, c.Exec("bg rgb(0, 128, 0)"))
	assert.Equal(t, "#008000", m.DefaultColor().Hex())

	var perr *colors.ParseError
	assert.ErrorAs(t, c.Exec("bg nonsense"), &perr)
	assert.Error(t, c.Exec("bg"))
}

func TestListingCommands(t *testing.T) {
	c, _, out := newConsole(t)

	require.NoError(t, c.Exec("layers"))
	assert.Contains(t, out.String(), "no layers playing")

	require.NoError(t, c.Exec("play rainbow"))
	out.Reset()
	require.NoError(t, c.Exec("layers"))
	assert.Contains(t, out.String(), "one-shot")
	assert.Contains(t, out.String(), `simple leds="1"`)

	out.Reset()
	require.NoError(t, c.Exec("list"))
	assert.Equal(t, "0\tcycle\n1\tflash\n2\trainbow\n3\tsweep\n", out.String())

	out.Reset()
	require.NoError(t, c.Exec("help"))
	assert.Contains(t, out.String(), "play <name|index>")

	assert.NoError(t, c.Exec("   "))
	assert.ErrorIs(t, c.Exec("dance"), ErrUnknownCommand)
}

func TestRun(t *testing.T) {
	c, m, out := newConsole(t)
	in := strings.NewReader("play cycle\nbogus\nplay sweep\n")

	require.NoError(t, c.Run(context.Background(), in))
	assert.Len(t, m.Layers(), 2)
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)
}

func TestRunStopsWithContext(t *testing.T) {
	c, _, _ := newConsole(t)
	ctx, cancel := context.WithCancel(context.Background())
	blocked := &blockingReader{release: make(chan struct{})}
	defer close(blocked.release)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, blocked) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not stop")
	}
}

// blockingReader blocks until released, like an idle terminal.
type blockingReader struct{ release chan struct{} }

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, context.Canceled
}
