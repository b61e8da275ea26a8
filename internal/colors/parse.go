package colors

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var errOutOfGamut = errors.New("channels must be finite and within range")

// ParseError reports a color string that could not be understood.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid color %q", e.Input)
	}
	return fmt.Sprintf("invalid color %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse understands hex ("#f80", "#ff8800", "ff8800"), CSS color names ("orange"),
// "rgb(255, 136, 0)", "rgba(255, 136, 0, 0.5)" and "hsv(32, 100%, 100%)" (saturation
// and value as fractions or percentages).
func Parse(s string) (Color, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return Color{}, &ParseError{Input: s}
	}

	if rgba, ok := colornames.Map[strings.ReplaceAll(in, " ", "")]; ok {
		return RGB(rgba.R, rgba.G, rgba.B), nil
	}

	if name, args, ok := function(in); ok {
		c, err := parseFunction(name, args)
		if err != nil {
			return Color{}, &ParseError{Input: s, Err: err}
		}
		if !c.Valid() {
			return Color{}, &ParseError{Input: s, Err: errOutOfGamut}
		}
		return c, nil
	}

	hex := in
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, &ParseError{Input: s, Err: err}
	}
	return FromColorful(c), nil
}

// MustParse is Parse for colors known at compile time.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromTriple converts an [r, g, b] list of 0-255 channel values.
func FromTriple(v []float64) (Color, error) {
	if len(v) != 3 {
		return Color{}, &ParseError{Input: fmt.Sprint(v), Err: fmt.Errorf("want 3 channels, got %d", len(v))}
	}
	c := Color{R: v[0] / 255, G: v[1] / 255, B: v[2] / 255, A: 1}
	if !c.Valid() {
		return Color{}, &ParseError{Input: fmt.Sprint(v), Err: fmt.Errorf("channels must be within 0-255")}
	}
	return c, nil
}

func function(in string) (name string, args []string, ok bool) {
	open := strings.IndexByte(in, '(')
	if open <= 0 || !strings.HasSuffix(in, ")") {
		return "", nil, false
	}
	name = strings.TrimSpace(in[:open])
	for _, a := range strings.Split(in[open+1:len(in)-1], ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return name, args, true
}

func parseFunction(name string, args []string) (Color, error) {
	switch name {
	case "rgb", "rgba":
		want := 3
		if name == "rgba" {
			want = 4
		}
		if len(args) != want {
			return Color{}, fmt.Errorf("%s needs %d arguments", name, want)
		}
		var ch [3]float64
		for i := range ch {
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return Color{}, err
			}
			ch[i] = v
		}
		c, err := FromTriple(ch[:])
		if err != nil {
			return Color{}, err
		}
		if name == "rgba" {
			a, err := fraction(args[3])
			if err != nil {
				return Color{}, err
			}
			c.A = a
		}
		return c, nil
	case "hsv":
		if len(args) != 3 {
			return Color{}, fmt.Errorf("hsv needs 3 arguments")
		}
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return Color{}, err
		}
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return Color{}, fmt.Errorf("hue %v is not a finite number", h)
		}
		s, err := fraction(args[1])
		if err != nil {
			return Color{}, err
		}
		v, err := fraction(args[2])
		if err != nil {
			return Color{}, err
		}
		return HSV(h, s, v), nil
	}
	return Color{}, fmt.Errorf("unknown color function %q", name)
}

// fraction reads "0.5" or "50%".
func fraction(s string) (float64, error) {
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	v /= scale
	if !(v >= 0 && v <= 1) {
		return 0, fmt.Errorf("%v is outside 0-1", v)
	}
	return v, nil
}
