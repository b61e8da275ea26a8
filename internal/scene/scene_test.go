package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/strip-animations/internal/animation"
	"github.com/scheerer/strip-animations/internal/colors"
)

const sample = `
mixMode: oklab
background: navy
animations:
  - name: pulse
    type: simple
    leds: "0 1"
    looping: true
    mode: hsv
    stops:
      - {color: "#00ffff", fadeIn: 1s, hold: 0s}
      - {color: [255, 0, 0], fadeIn: 1s, hold: 250ms}
  - name: blink
    leds: "2-4"
    stops:
      - {color: orange, fadeIn: 0s, hold: 100ms, fadeOut: 50ms}
  - name: sweep
    type: comet
    head: white
    tail: blue
    tailLength: 8
    speed: 30
    from: 0
    to: 60
    looping: true
    pingPong: true
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample), colors.ModeLab)
	require.NoError(t, err)

	assert.Equal(t, colors.ModeOkLab, s.MixMode)
	require.NotNil(t, s.Background)
	assert.Equal(t, "#000080", s.Background.Hex())
	assert.Equal(t, []string{"pulse", "blink", "sweep"}, s.Names())

	pulse, ok := s.Entries[0].Animation.(*animation.SimpleAnimation)
	require.True(t, ok)
	assert.True(t, pulse.Looping())
	assert.Equal(t, colors.ModeHSV, pulse.Mode())
	assert.Equal(t, 2250*time.Millisecond, pulse.TotalTime())
	assert.Equal(t, []int{0, 1}, pulse.LEDs().Indices())
	assert.Equal(t, "#ff0000", pulse.Stops()[1].Color.Hex())

	blink, ok := s.Entries[1].Animation.(*animation.SimpleAnimation)
	require.True(t, ok)
	assert.Equal(t, colors.ModeOkLab, blink.Mode(), "falls back to the scene mix mode")
	assert.Equal(t, 150*time.Millisecond, blink.TotalTime())

	sweep, ok := s.Entries[2].Animation.(*animation.CometAnimation)
	require.True(t, ok)
	assert.Equal(t, 4*time.Second, sweep.TotalTime())
}

func TestParseUsesDefaultMode(t *testing.T) {
	s, err := Parse([]byte(`
animations:
  - name: a
    leds: "0"
    looping: true
    stops: [{color: red, fadeIn: 1s, hold: 1s}]
`), colors.ModeHcl)
	require.NoError(t, err)
	assert.Nil(t, s.Background)
	assert.Equal(t, colors.ModeHcl, s.MixMode)
	assert.Equal(t, colors.ModeHcl, s.Entries[0].Animation.Mode())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing fade in", `
animations:
  - name: a
    leds: "0"
    looping: true
    stops: [{color: red, hold: 1s}]`, "fadeInTime"},
		{"missing hold", `
animations:
  - name: a
    leds: "0"
    looping: true
    stops: [{color: red, fadeIn: 1s}, {color: blue, fadeIn: 1s}]`, "holdTime"},
		{"missing fade out", `
animations:
  - name: a
    leds: "0"
    stops: [{color: red, fadeIn: 1s, hold: 0s}]`, "fadeOutTime"},
		{"bad leds", `
animations:
  - name: a
    leds: "9-2"
    looping: true
    stops: [{color: red, fadeIn: 1s, hold: 0s}]`, "leds"},
		{"bad type", `
animations:
  - name: a
    type: sparkle`, "type"},
		{"bad comet", `
animations:
  - name: a
    type: comet
    from: 10
    to: 5
    speed: 1
    tailLength: 1`, "to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), colors.DefaultMode)
			var verr *animation.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, err.Error(), `animation "a"`)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"duplicate name": `
animations:
  - {name: a, leds: "0", looping: true, stops: [{color: red, fadeIn: 1s, hold: 0s}]}
  - {name: a, leds: "1", looping: true, stops: [{color: red, fadeIn: 1s, hold: 0s}]}`,
		"missing name":   `animations: [{leds: "0"}]`,
		"bad color":      `background: chartreuse-ish`,
		"bad triple":     `background: [1, 2]`,
		"color mapping":  `background: {r: 1}`,
		"bad mix mode":   `mixMode: cmyk`,
		"bad duration":   `animations: [{name: a, leds: "0", looping: true, stops: [{color: red, fadeIn: soon, hold: 0s}]}]`,
		"not yaml":       `animations: [`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), colors.DefaultMode)
			assert.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	s, err := Parse([]byte(sample), colors.DefaultMode)
	require.NoError(t, err)

	e, err := s.Get("blink")
	require.NoError(t, err)
	assert.Equal(t, "blink", e.Name)

	e, err = s.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "sweep", e.Name)

	for _, key := range []string{"3", "-1", "missing"} {
		_, err = s.Get(key)
		assert.ErrorIs(t, err, ErrUnknownAnimation, key)
	}
}

func TestDefault(t *testing.T) {
	s, err := Default(colors.DefaultMode)
	require.NoError(t, err)
	assert.Equal(t, []string{"cycle", "flash", "rainbow", "sweep"}, s.Names())

	flash, err := s.Get("flash")
	require.NoError(t, err)
	assert.False(t, flash.Animation.Looping())
	assert.Equal(t, 3*time.Second, flash.Animation.TotalTime())

	rainbow, err := s.Get("rainbow")
	require.NoError(t, err)
	assert.Equal(t, 2020*time.Millisecond, rainbow.Animation.TotalTime())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	s, err := Load(path, colors.DefaultMode)
	require.NoError(t, err)
	assert.Len(t, s.Entries, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), colors.DefaultMode)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
