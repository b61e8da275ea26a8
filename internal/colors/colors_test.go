package colors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		a       float64
	}{
		{"#ff8800", 255, 136, 0, 1},
		{"FF8800", 255, 136, 0, 1},
		{"#f80", 255, 136, 0, 1},
		{"orange", 255, 165, 0, 1},
		{" Dark Blue ", 0, 0, 139, 1},
		{"rgb(0, 255, 255)", 0, 255, 255, 1},
		{"rgba(255,0,0,0.25)", 255, 0, 0, 0.25},
		{"hsv(120, 100%, 100%)", 0, 255, 0, 1},
		{"hsv(240, 1, 0.5)", 0, 0, 128, 1},
		{"hsv(-120, 100%, 100%)", 0, 0, 255, 1},
		{"hsv(480, 1, 1)", 0, 255, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := Parse(tt.in)
			require.NoError(t, err)
			r, g, b := c.RGB255()
			assert.Equal(t, [3]uint8{tt.r, tt.g, tt.b}, [3]uint8{r, g, b})
			assert.InDelta(t, tt.a, c.A, 1e-9)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "notacolor", "#12", "rgb(1,2)", "rgb(300,0,0)", "hsv(0, 2, 1)", "cmyk(1,2,3,4)",
		"hsv(nan, 1, 1)", "hsv(0, nan, 1)", "hsv(inf, 1, 1)", "rgba(0,0,0,nan)", "rgb(nan,0,0)"} {
		_, err := Parse(in)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "input %q", in)
	}
}

func TestHSVWrapsHue(t *testing.T) {
	for _, h := range []float64{-120, 240, 600, -480} {
		c := HSV(h, 1, 1)
		require.True(t, c.Valid(), "hue %v", h)
		r, g, b := c.RGB255()
		assert.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{r, g, b}, "hue %v", h)
	}
}

func TestFromTriple(t *testing.T) {
	c, err := FromTriple([]float64{255, 163, 15})
	require.NoError(t, err)
	r, g, b := c.RGB255()
	assert.Equal(t, [3]uint8{255, 163, 15}, [3]uint8{r, g, b})

	_, err = FromTriple([]float64{1, 2})
	assert.Error(t, err)
}

func TestParseBlendMode(t *testing.T) {
	m, err := ParseBlendMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLab, m)

	m, err = ParseBlendMode("LCH")
	require.NoError(t, err)
	assert.Equal(t, ModeHcl, m)

	_, err = ParseBlendMode("cmyk")
	assert.Error(t, err)
}

func TestMixEndpoints(t *testing.T) {
	red, blue := RGB(255, 0, 0), RGB(0, 0, 255)
	for mode := range blenders {
		assert.Equal(t, red, Mix(red, blue, 0, mode), mode)
		assert.Equal(t, blue, Mix(red, blue, 1, mode), mode)
	}
}

func TestMixRGBHalfway(t *testing.T) {
	c := Mix(RGB(255, 0, 0), RGB(0, 0, 255), 0.5, ModeRGB)
	assert.InDelta(t, 0.5, c.R, 1e-9)
	assert.InDelta(t, 0, c.G, 1e-9)
	assert.InDelta(t, 0.5, c.B, 1e-9)
	assert.Equal(t, 1.0, c.A)
}

func TestMixInterpolatesAlpha(t *testing.T) {
	c := Mix(Black.WithAlpha(0), White, 0.25, ModeRGB)
	assert.InDelta(t, 0.25, c.A, 1e-9)
}

func TestScale(t *testing.T) {
	red, green, blue := RGB(255, 0, 0), RGB(0, 255, 0), RGB(0, 0, 255)
	s, err := NewScale(
		[]time.Duration{0, time.Second, time.Second, 3 * time.Second},
		[]Color{red, green, blue, red},
		ModeRGB,
	)
	require.NoError(t, err)

	assert.Equal(t, red, s.At(-time.Second))
	assert.Equal(t, red, s.At(0))
	mid := s.At(500 * time.Millisecond)
	assert.InDelta(t, 0.5, mid.R, 1e-9)
	assert.InDelta(t, 0.5, mid.G, 1e-9)
	// coincident keyframes: the later one applies at exactly that time
	assert.Equal(t, blue, s.At(time.Second))
	assert.Equal(t, red, s.At(3*time.Second))
	assert.Equal(t, red, s.At(time.Hour))
}

func TestNewScaleRejects(t *testing.T) {
	_, err := NewScale(nil, nil, ModeLab)
	assert.Error(t, err)
	_, err = NewScale([]time.Duration{time.Second, 0}, []Color{Black, White}, ModeLab)
	assert.Error(t, err)
	_, err = NewScale([]time.Duration{0}, []Color{Black, White}, ModeLab)
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Black.Valid())
	assert.False(t, Color{R: 1.2, A: 1}.Valid())
	assert.False(t, Color{R: 0.5, A: -0.1}.Valid())
}
