/*
Package animation computes LED colors from layered, time-driven animations.

An Animation answers, for an LED index and a time offset into its own timeline, whether it
claims the LED and with which color and opacity. The Manager stacks played animations as
layers and composites them over a background color once per frame.
*/
package animation

import (
	"fmt"
	"time"

	"github.com/scheerer/strip-animations/internal/colors"
)

// Animation is implemented by *SimpleAnimation and *CometAnimation only.
type Animation interface {
	Looping() bool
	Mode() colors.BlendMode
	// TotalTime is the length of one pass through the timeline.
	TotalTime() time.Duration
	HasPixel(index int, t time.Duration) bool
	// LEDColor returns the color and opacity for index at t. firstLoop is true while a
	// looping animation is still on its first pass. ok is false when HasPixel is false.
	LEDColor(index int, t time.Duration, firstLoop bool) (c colors.Color, ok bool)

	sealed()
}

// Describe summarizes an animation for logs and the console.
func Describe(a Animation) string {
	switch v := a.(type) {
	case *SimpleAnimation:
		return fmt.Sprintf("simple leds=%q stops=%d looping=%t mode=%s total=%s",
			v.leds.String(), len(v.stops), v.looping, v.mode, v.totalTime)
	case *CometAnimation:
		return fmt.Sprintf("comet leds=%d-%d speed=%g tail=%g looping=%t pingPong=%t mode=%s total=%s",
			v.from, v.to, v.speed, v.tailLength, v.looping, v.pingPong, v.mode, v.totalTime)
	case nil:
		return "<nil>"
	}
	panic(fmt.Sprintf("animation: unhandled variant %T", a))
}

// valid reports whether a is a usable, non-nil variant.
func valid(a Animation) bool {
	switch v := a.(type) {
	case *SimpleAnimation:
		return v != nil
	case *CometAnimation:
		return v != nil
	}
	return false
}

func parseMode(mode colors.BlendMode) (colors.BlendMode, error) {
	m, err := colors.ParseBlendMode(string(mode))
	if err != nil {
		return "", invalid("mode", err.Error())
	}
	return m, nil
}
