package animation

import (
	"time"

	"github.com/scheerer/strip-animations/internal/colors"
)

// ColorStop is one keyframe of a stop-based animation: fade to Color over FadeIn, then
// hold it for Hold. FadeOut is set only on the last stop of a non-looping animation.
type ColorStop struct {
	Color   colors.Color
	FadeIn  time.Duration
	Hold    time.Duration
	FadeOut *time.Duration
}

// WithFadeOut returns a copy of the stop that fades the animation out over d.
func (s ColorStop) WithFadeOut(d time.Duration) ColorStop {
	s.FadeOut = &d
	return s
}

type timeline struct {
	stops         []ColorStop
	looping       bool
	totalTime     time.Duration
	timeToFadeOut time.Duration
	scale         *colors.Scale
}

func compileTimeline(stops []ColorStop, looping bool, mode colors.BlendMode) (timeline, error) {
	if len(stops) == 0 {
		return timeline{}, invalid("stops", "need at least one color stop")
	}

	tl := timeline{looping: looping, stops: make([]ColorStop, len(stops))}
	last := len(stops) - 1
	for i, s := range stops {
		if s.Color == (colors.Color{}) {
			return timeline{}, invalidStop(i, "color", "is required")
		}
		if !s.Color.Valid() {
			return timeline{}, invalidStop(i, "color", "is not a valid color")
		}
		if s.FadeIn < 0 {
			return timeline{}, invalidStop(i, "fadeInTime", "must not be negative")
		}
		if s.Hold < 0 {
			return timeline{}, invalidStop(i, "holdTime", "must not be negative")
		}
		if i == last && !looping {
			if s.FadeOut == nil {
				return timeline{}, invalidStop(i, "fadeOutTime", "is required on the last stop of a non-looping animation")
			}
			if *s.FadeOut < 0 {
				return timeline{}, invalidStop(i, "fadeOutTime", "must not be negative")
			}
		} else if s.FadeOut != nil {
			return timeline{}, invalidStop(i, "fadeOutTime", "is only allowed on the last stop of a non-looping animation")
		}

		tl.timeToFadeOut += s.FadeIn + s.Hold
		if s.FadeOut != nil {
			d := *s.FadeOut
			s.FadeOut = &d
		}
		tl.stops[i] = s
	}
	tl.totalTime = tl.timeToFadeOut
	if !looping {
		tl.totalTime += *tl.stops[last].FadeOut
	}
	if looping && tl.totalTime <= 0 {
		return timeline{}, invalid("stops", "of a looping animation must add up to a positive duration")
	}

	// Start from the last color so a loop, or a replayed one-shot, fades out of the
	// terminal color instead of jumping.
	times := []time.Duration{0}
	keys := []colors.Color{stops[last].Color.WithAlpha(1)}
	var at time.Duration
	for _, s := range stops {
		c := s.Color.WithAlpha(1)
		at += s.FadeIn
		times = append(times, at)
		keys = append(keys, c)
		if s.Hold > 0 {
			at += s.Hold
			times = append(times, at)
			keys = append(keys, c)
		}
	}
	scale, err := colors.NewScale(times, keys, mode)
	if err != nil {
		return timeline{}, invalid("stops", err.Error())
	}
	tl.scale = scale
	return tl, nil
}

func (tl *timeline) first() ColorStop { return tl.stops[0] }

func (tl *timeline) last() ColorStop { return tl.stops[len(tl.stops)-1] }

// alpha is the layer opacity at t, ramping in over the first fade-in and, for one-shots,
// out over the final fade-out.
func (tl *timeline) alpha(t time.Duration, firstLoop bool) float64 {
	if tl.looping {
		if !firstLoop {
			return 1
		}
		return rampIn(t, tl.first().FadeIn)
	}
	if t > tl.timeToFadeOut {
		fadeOut := *tl.last().FadeOut
		if fadeOut <= 0 {
			return 0
		}
		return clamp01(1 - float64(t-tl.timeToFadeOut)/float64(fadeOut))
	}
	return rampIn(t, tl.first().FadeIn)
}

func rampIn(t, fadeIn time.Duration) float64 {
	if fadeIn <= 0 || t >= fadeIn {
		return 1
	}
	return clamp01(float64(t) / float64(fadeIn))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
