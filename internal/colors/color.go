// Package colors holds the color value used throughout the animation engine together
// with parsing, blend modes and keyframe interpolation. The color-space math itself is
// done by go-colorful.
package colors

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an sRGB color with components in [0,1] and an opacity A in [0,1].
type Color struct {
	R, G, B float64
	A       float64
}

var (
	Black = RGB(0, 0, 0)
	White = RGB(255, 255, 255)
)

// RGB builds an opaque color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// HSV builds an opaque color from hue in degrees and saturation/value in [0,1]. Hues
// outside [0,360) wrap around, so -120 is 240.
func HSV(h, s, v float64) Color {
	return FromColorful(colorful.Hsv(math.Mod(math.Mod(h, 360)+360, 360), s, v))
}

// FromColorful wraps a go-colorful color as an opaque Color.
func FromColorful(c colorful.Color) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) Opaque() bool {
	return c.A >= 1
}

// Valid reports whether every channel is a finite number inside [0,1].
func (c Color) Valid() bool {
	for _, v := range [...]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// RGB255 clamps the color into gamut and returns its 8-bit channels. Alpha is dropped.
func (c Color) RGB255() (r, g, b uint8) {
	return c.Colorful().Clamped().RGB255()
}

func (c Color) Hex() string {
	return c.Colorful().Clamped().Hex()
}

func (c Color) String() string {
	if c.Opaque() {
		return c.Hex()
	}
	return fmt.Sprintf("%s@%.3f", c.Hex(), c.A)
}
