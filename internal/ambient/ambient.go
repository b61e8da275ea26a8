// Package ambient samples the screen and turns it into a background color for the strip.
package ambient

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/logging"
)

var logger = logging.New("ambient")

type Config struct {
	Interval      time.Duration
	ColorAlgo     string
	PixelGridSize int
	ScreenNumber  int
}

// CaptureFunc grabs one frame of a display.
type CaptureFunc func(display int) (*image.RGBA, error)

// Sink receives sampled colors, typically Manager.SetBackground.
type Sink func(colors.Color)

type Sampler struct {
	config  Config
	reduce  Reducer
	capture CaptureFunc
}

func New(config Config) (*Sampler, error) {
	return NewWithCapture(config, screenshot.CaptureDisplay)
}

// NewWithCapture builds a sampler that reads frames from capture instead of the screen.
func NewWithCapture(config Config, capture CaptureFunc) (*Sampler, error) {
	reduce, err := ReducerFor(config.ColorAlgo)
	if err != nil {
		return nil, err
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("ambient interval must be positive, got %s", config.Interval)
	}
	if config.PixelGridSize < 1 {
		config.PixelGridSize = 1
	}
	return &Sampler{config: config, reduce: reduce, capture: capture}, nil
}

// Sample captures and reduces a single frame.
func (s *Sampler) Sample() (colors.Color, error) {
	img, err := s.capture(s.config.ScreenNumber)
	if err != nil {
		return colors.Color{}, fmt.Errorf("capture screen %d: %w", s.config.ScreenNumber, err)
	}
	return s.reduce(img, s.config.PixelGridSize), nil
}

// Run samples every Interval until ctx is done. Failed captures are logged and skipped.
func (s *Sampler) Run(ctx context.Context, sink Sink) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	var lastWarning time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			c, err := s.Sample()
			if err != nil {
				logger.With(zap.Error(err)).Error("Failed to sample screen")
				continue
			}
			sink(c)

			if took := time.Since(start); took > s.config.Interval && time.Since(lastWarning) > 10*time.Second {
				logger.With(zap.Stringer("took", took), zap.Stringer("interval", s.config.Interval)).
					Warn("Cannot keep up with AMBIENT_INTERVAL. Consider increasing PIXEL_GRID_SIZE or AMBIENT_INTERVAL.")
				lastWarning = time.Now()
			}
		}
	}
}
