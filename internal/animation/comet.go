package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/scheerer/strip-animations/internal/colors"
)

// CometConfig describes a comet travelling from LED From towards To.
type CometConfig struct {
	Head colors.Color
	Tail colors.Color
	// TailLength is the number of LEDs the tail fades over.
	TailLength float64
	// Speed is in LEDs per second.
	Speed    float64
	From, To int
	Looping  bool
	// PingPong makes a looping comet bounce between From and To instead of restarting.
	PingPong bool
	Mode     colors.BlendMode
}

// CometAnimation moves a head/tail gradient along a contiguous run of LEDs.
type CometAnimation struct {
	head, tail colors.Color
	tailLength float64
	speed      float64
	from, to   int
	looping    bool
	pingPong   bool
	mode       colors.BlendMode
	totalTime  time.Duration
}

func NewCometAnimation(cfg CometConfig) (*CometAnimation, error) {
	switch {
	case cfg.Head == (colors.Color{}):
		return nil, invalid("head", "is required")
	case cfg.Tail == (colors.Color{}):
		return nil, invalid("tail", "is required")
	case !cfg.Head.Valid():
		return nil, invalid("head", "is not a valid color")
	case !cfg.Tail.Valid():
		return nil, invalid("tail", "is not a valid color")
	case cfg.From < 0:
		return nil, invalid("from", fmt.Sprintf("%d must not be negative", cfg.From))
	case cfg.To <= cfg.From:
		return nil, invalid("to", fmt.Sprintf("%d must be greater than from (%d)", cfg.To, cfg.From))
	case !(cfg.Speed > 0) || math.IsInf(cfg.Speed, 0):
		return nil, invalid("speed", "must be a positive number of LEDs per second")
	case !(cfg.TailLength > 0) || math.IsInf(cfg.TailLength, 0):
		return nil, invalid("tailLength", "must be positive")
	}
	mode, err := parseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	length := float64(cfg.To - cfg.From)
	total := time.Duration(length / cfg.Speed * float64(time.Second))
	if cfg.Looping && cfg.PingPong {
		total *= 2
	}
	if total <= 0 {
		return nil, invalid("speed", "is too high for the LED range")
	}

	return &CometAnimation{
		head:       cfg.Head.WithAlpha(1),
		tail:       cfg.Tail.WithAlpha(1),
		tailLength: cfg.TailLength,
		speed:      cfg.Speed,
		from:       cfg.From,
		to:         cfg.To,
		looping:    cfg.Looping,
		pingPong:   cfg.PingPong,
		mode:       mode,
		totalTime:  total,
	}, nil
}

func (a *CometAnimation) sealed() {}

func (a *CometAnimation) Looping() bool { return a.looping }

func (a *CometAnimation) Mode() colors.BlendMode { return a.mode }

func (a *CometAnimation) TotalTime() time.Duration { return a.totalTime }

func (a *CometAnimation) bouncing() bool { return a.looping && a.pingPong }

// Direction is +1 while the head moves towards To and -1 on the way back.
func (a *CometAnimation) Direction(t time.Duration) int {
	if !a.bouncing() {
		return 1
	}
	if a.totalTime/2-t%a.totalTime > 0 {
		return 1
	}
	return -1
}

// Position is the fractional LED index of the comet head at t.
func (a *CometAnimation) Position(t time.Duration) float64 {
	p := t.Seconds() / a.totalTime.Seconds()
	if a.bouncing() {
		p = 2 * math.Min(1-p, p)
	}
	return float64(a.to-a.from)*p + float64(a.from)
}

// PixelAlpha is a unit trapezoid around the head: it drops to zero over one LED on the
// leading side and over TailLength LEDs on the trailing side.
func (a *CometAnimation) PixelAlpha(index int, t time.Duration) float64 {
	if !a.looping && t >= a.totalTime {
		return 0
	}
	left, right := 1.0, a.tailLength
	if a.Direction(t) != 1 {
		left, right = right, left
	}
	pos, i := a.Position(t), float64(index)
	return clamp01(math.Min((pos-i)/left+1, (i-pos)/right+1))
}

func (a *CometAnimation) HasPixel(index int, t time.Duration) bool {
	return a.PixelAlpha(index, t) > 0
}

func (a *CometAnimation) LEDColor(index int, t time.Duration, _ bool) (colors.Color, bool) {
	alpha := a.PixelAlpha(index, t)
	if alpha <= 0 {
		return colors.Color{}, false
	}
	// weighting by alpha^4 keeps the head color close to the peak
	return colors.Mix(a.tail, a.head, math.Pow(alpha, 4), a.mode).WithAlpha(alpha), true
}
