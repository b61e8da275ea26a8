package colors

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// BlendMode names the color space two colors are interpolated in.
type BlendMode string

const (
	ModeRGB       BlendMode = "rgb"
	ModeLinearRGB BlendMode = "lrgb"
	ModeLab       BlendMode = "lab"
	ModeLuv       BlendMode = "luv"
	ModeHcl       BlendMode = "hcl"
	ModeLuvLCh    BlendMode = "lchuv"
	ModeHSV       BlendMode = "hsv"
	ModeOkLab     BlendMode = "oklab"
	ModeOkLch     BlendMode = "oklch"

	DefaultMode = ModeLab
)

var blenders = map[BlendMode]func(a, b colorful.Color, t float64) colorful.Color{
	ModeRGB:       colorful.Color.BlendRgb,
	ModeLinearRGB: colorful.Color.BlendLinearRgb,
	ModeLab:       colorful.Color.BlendLab,
	ModeLuv:       colorful.Color.BlendLuv,
	ModeHcl:       colorful.Color.BlendHcl,
	ModeLuvLCh:    colorful.Color.BlendLuvLCh,
	ModeHSV:       colorful.Color.BlendHsv,
	ModeOkLab:     colorful.Color.BlendOkLab,
	ModeOkLch:     colorful.Color.BlendOkLch,
}

// ParseBlendMode accepts the mode names above plus "lch" as an alias of "hcl". An empty
// string selects DefaultMode.
func ParseBlendMode(s string) (BlendMode, error) {
	m := BlendMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return DefaultMode, nil
	case "lch":
		return ModeHcl, nil
	}
	if _, ok := blenders[m]; !ok {
		return "", fmt.Errorf("unknown blend mode %q", s)
	}
	return m, nil
}

func (m BlendMode) Valid() bool {
	_, ok := blenders[m]
	return ok
}

// Mix interpolates from a (t=0) to b (t=1) in the given mode. Opacity is interpolated
// linearly. An unknown mode falls back to DefaultMode.
func Mix(a, b Color, t float64, mode BlendMode) Color {
	blend, ok := blenders[mode]
	if !ok {
		blend = blenders[DefaultMode]
	}
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	c := FromColorful(blend(a.Colorful(), b.Colorful(), t))
	c.A = a.A + t*(b.A-a.A)
	return c
}
