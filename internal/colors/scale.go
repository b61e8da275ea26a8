package colors

import (
	"fmt"
	"sort"
	"time"
)

// Scale maps a time offset onto a color by interpolating between keyframes.
type Scale struct {
	times  []time.Duration
	colors []Color
	mode   BlendMode
}

// NewScale builds a scale from keyframe times (non-decreasing) and their colors.
// Several keyframes may share a time; the last of them wins at exactly that time,
// which makes zero-length fades instantaneous.
func NewScale(times []time.Duration, colors []Color, mode BlendMode) (*Scale, error) {
	if len(times) == 0 || len(times) != len(colors) {
		return nil, fmt.Errorf("scale needs matching, non-empty keyframes (%d times, %d colors)", len(times), len(colors))
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("keyframe %d at %s is before keyframe %d at %s", i, times[i], i-1, times[i-1])
		}
	}
	return &Scale{
		times:  append([]time.Duration(nil), times...),
		colors: append([]Color(nil), colors...),
		mode:   mode,
	}, nil
}

// At returns the interpolated color at t, holding the first and last keyframe colors
// outside the keyframe range.
func (s *Scale) At(t time.Duration) Color {
	// index of the first keyframe strictly after t
	next := sort.Search(len(s.times), func(i int) bool { return s.times[i] > t })
	switch {
	case next == 0:
		return s.colors[0]
	case next == len(s.times):
		return s.colors[len(s.colors)-1]
	}
	prev := next - 1
	span := s.times[next] - s.times[prev]
	f := float64(t-s.times[prev]) / float64(span)
	return Mix(s.colors[prev], s.colors[next], f, s.mode)
}

func (s *Scale) Len() int { return len(s.times) }

func (s *Scale) Keyframe(i int) (time.Duration, Color) {
	return s.times[i], s.colors[i]
}
