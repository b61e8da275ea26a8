package animation

import (
	"time"

	"github.com/scheerer/strip-animations/internal/colors"
)

// SimpleAnimation fades a set of LEDs through a list of color stops.
type SimpleAnimation struct {
	timeline
	mode colors.BlendMode
	leds LEDSet
}

// NewSimpleAnimation validates the stops and LED ranges and compiles the color timeline.
// An empty mode selects colors.DefaultMode.
func NewSimpleAnimation(stops []ColorStop, leds string, looping bool, mode colors.BlendMode) (*SimpleAnimation, error) {
	set, err := ParseLEDSet(leds)
	if err != nil {
		return nil, err
	}
	mode, err = parseMode(mode)
	if err != nil {
		return nil, err
	}
	tl, err := compileTimeline(stops, looping, mode)
	if err != nil {
		return nil, err
	}
	return &SimpleAnimation{timeline: tl, mode: mode, leds: set}, nil
}

func (a *SimpleAnimation) sealed() {}

func (a *SimpleAnimation) Looping() bool { return a.looping }

func (a *SimpleAnimation) Mode() colors.BlendMode { return a.mode }

func (a *SimpleAnimation) TotalTime() time.Duration { return a.totalTime }

// TimeToFadeOut is the offset at which a non-looping animation starts its final fade-out.
func (a *SimpleAnimation) TimeToFadeOut() time.Duration { return a.timeToFadeOut }

func (a *SimpleAnimation) LEDs() LEDSet { return a.leds }

func (a *SimpleAnimation) Stops() []ColorStop {
	return append([]ColorStop(nil), a.stops...)
}

func (a *SimpleAnimation) HasPixel(index int, t time.Duration) bool {
	if !a.looping && t >= a.totalTime {
		return false
	}
	return a.leds.Has(index)
}

func (a *SimpleAnimation) LEDColor(index int, t time.Duration, firstLoop bool) (colors.Color, bool) {
	if !a.HasPixel(index, t) {
		return colors.Color{}, false
	}
	return a.scale.At(t).WithAlpha(a.alpha(t, firstLoop)), true
}
