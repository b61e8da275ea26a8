// Package lifx treats each bulb of a LIFX group as one pixel of a strip.
package lifx

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/logging"
	"github.com/scheerer/strip-animations/internal/strip"
)

var logger = logging.New("lifx")

const kelvin = 3500

type Config struct {
	GroupName     string
	MaxBrightness float64
	MinBrightness float64
	// Transition is the fade duration sent with every color change.
	Transition time.Duration
}

type Strip struct {
	config Config
	client *golifx.Client

	lightsMu sync.RWMutex
	group    common.Group

	mu      sync.Mutex
	pending map[int]strip.Color
	sent    map[uint64]common.Color
}

var _ strip.Strip = (*Strip)(nil)

// New starts group discovery in the background. The strip has no pixels until the group
// is found.
func New(ctx context.Context, config Config) (*Strip, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, fmt.Errorf("create lifx client: %w", err)
	}

	s := &Strip{
		config:  config,
		client:  client,
		pending: make(map[int]strip.Color),
		sent:    make(map[uint64]common.Color),
	}
	go s.Start(ctx)
	return s, nil
}

func (s *Strip) Start(ctx context.Context) {
	discoveryInterval := 15 * time.Second
	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()

	if err := s.client.SetDiscoveryInterval(discoveryInterval); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to set LIFX discovery interval")
	}

	timeout := 5 * time.Second
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	s.discover(ctxWithTimeout)
	cancel()

	for {
		select {
		case <-ticker.C:
			ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
			s.discover(ctxWithTimeout)
			cancel()
		case <-ctx.Done():
			if err := s.client.Close(); err != nil {
				logger.With(zap.Error(err)).Warn("Failed to close LIFX client")
			}
			return
		}
	}
}

func (s *Strip) discover(ctx context.Context) {
	logger.With(zap.String("group", s.config.GroupName)).Debug("LIFX discovery starting")

	type result struct {
		group common.Group
		err   error
	}
	completed := make(chan result, 1)
	go func() {
		g, err := s.client.GetGroupByLabel(s.config.GroupName)
		completed <- result{group: g, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.With(zap.Error(ctx.Err())).Warn("LIFX discovery timed out")
	case r := <-completed:
		if r.err != nil || r.group == nil {
			logger.With(zap.String("group", s.config.GroupName), zap.Error(r.err)).Warn("Couldn't discover LIFX group")
			return
		}
		s.lightsMu.Lock()
		changed := s.group == nil
		s.group = r.group
		s.lightsMu.Unlock()
		if changed {
			logger.With(zap.String("group", r.group.GetLabel()), zap.Int("lights", len(r.group.Lights()))).
				Info("LIFX group found")
		}
	}
}

// lights returns the group's bulbs ordered by device id so pixel indices stay stable.
func (s *Strip) lights() []common.Light {
	s.lightsMu.RLock()
	g := s.group
	s.lightsMu.RUnlock()
	if g == nil {
		return nil
	}
	lights := g.Lights()
	sort.Slice(lights, func(i, j int) bool { return lights[i].ID() < lights[j].ID() })
	return lights
}

func (s *Strip) Len() int {
	return len(s.lights())
}

func (s *Strip) SetPixel(index int, color strip.Color) error {
	if index < 0 {
		return fmt.Errorf("lifx pixel %d: %w", index, strip.ErrOutOfRange)
	}
	s.mu.Lock()
	s.pending[index] = color
	s.mu.Unlock()
	return nil
}

// Show sends the pending color to every bulb whose color changed since the last frame.
func (s *Strip) Show() error {
	lights := s.lights()

	type update struct {
		light common.Light
		color common.Color
	}
	var updates []update
	s.mu.Lock()
	for i, l := range lights {
		c := adjustColor(newLifxColor(s.pending[i]), s.config)
		if last, ok := s.sent[l.ID()]; ok && last == c {
			continue
		}
		s.sent[l.ID()] = c
		updates = append(updates, update{light: l, color: c})
	}
	s.mu.Unlock()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  error
	)
	for _, u := range updates {
		wg.Add(1)
		go func(u update) {
			defer wg.Done()
			logger.With(zap.Uint64("light", u.light.ID()), zap.Any("lifxColor", u.color)).Debug("Setting LIFX light color")
			if err := u.light.SetColor(u.color, s.config.Transition); err != nil {
				s.forget(u.light.ID())
				errMu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("set color of light %d: %w", u.light.ID(), err))
				errMu.Unlock()
			}
		}(u)
	}
	wg.Wait()
	return errs
}

// forget drops the cached color so the next frame resends it.
func (s *Strip) forget(id uint64) {
	s.mu.Lock()
	delete(s.sent, id)
	s.mu.Unlock()
}

func newLifxColor(c strip.Color) common.Color {
	h, sat, v := colors.RGB(c.Red, c.Green, c.Blue).Colorful().Hsv()
	return common.Color{
		Hue:        uint16(math.Round(h / 360 * math.MaxUint16)),
		Saturation: uint16(math.Round(sat * math.MaxUint16)),
		Brightness: uint16(math.Round(v * math.MaxUint16)),
		Kelvin:     kelvin,
	}
}

// adjustColor turns near-black colors off and clamps the brightness of everything else.
func adjustColor(color common.Color, config Config) common.Color {
	blackThreshold := 0.015 * math.MaxUint16
	if color.Brightness <= uint16(blackThreshold) && color.Saturation <= uint16(blackThreshold) {
		return common.Color{Kelvin: kelvin}
	}

	brightness := math.Max(config.MinBrightness*math.MaxUint16, float64(color.Brightness))
	color.Brightness = uint16(math.Min(config.MaxBrightness*math.MaxUint16, brightness))
	return color
}
