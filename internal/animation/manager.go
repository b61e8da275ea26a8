package animation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/logging"
	"github.com/scheerer/strip-animations/internal/strip"
)

var logger = logging.New("animation")

// Layer is a snapshot of one playing animation.
type Layer struct {
	ID        uuid.UUID
	Animation Animation
	Start     time.Time
	FirstLoop bool
}

type layer struct {
	id        uuid.UUID
	anim      Animation
	start     time.Time
	firstLoop bool
}

// elapsed is the offset into the layer's timeline at time at, wrapped for looping
// animations.
func (l *layer) elapsed(at time.Time) time.Duration {
	t := at.Sub(l.start)
	if t < 0 {
		t = 0
	}
	if l.anim.Looping() {
		t %= l.anim.TotalTime()
	}
	return t
}

type ManagerConfig struct {
	// DefaultColor is the background shown where no layer claims a pixel. Zero means black.
	DefaultColor colors.Color
	// MixMode is the blend mode collaborators use for animations that do not name one.
	MixMode colors.BlendMode
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Manager composites played animations onto a strip. Layers are kept in play order;
// the most recently played one is on top.
type Manager struct {
	strip strip.Strip
	now   func() time.Time

	mu           sync.Mutex
	layers       []layer
	defaultColor colors.Color
	mixMode      colors.BlendMode
	frame        []strip.Color
}

func NewManager(s strip.Strip, cfg ManagerConfig) *Manager {
	m := &Manager{
		strip:        s,
		now:          cfg.Clock,
		defaultColor: cfg.DefaultColor,
		mixMode:      cfg.MixMode,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.defaultColor == (colors.Color{}) {
		m.defaultColor = colors.Black
	}
	if !m.mixMode.Valid() {
		m.mixMode = colors.DefaultMode
	}
	return m
}

// Play adds a as the new top layer starting now and returns the layer id.
func (m *Manager) Play(a Animation) (uuid.UUID, error) {
	if !valid(a) {
		return uuid.Nil, fmt.Errorf("play %T: %w", a, ErrNotAnimation)
	}
	l := layer{id: uuid.New(), anim: a, start: m.now(), firstLoop: true}

	m.mu.Lock()
	m.layers = append(m.layers, l)
	depth := len(m.layers)
	m.mu.Unlock()

	logger.With(zap.Stringer("layer", l.id), zap.Int("depth", depth), zap.String("animation", Describe(a))).
		Debug("Playing animation")
	return l.id, nil
}

// Stop removes a layer before it finishes on its own.
func (m *Manager) Stop(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.layers {
		if m.layers[i].id == id {
			m.removeLocked(i)
			logger.With(zap.Stringer("layer", id)).Debug("Stopped animation")
			return nil
		}
	}
	return fmt.Errorf("stop %s: %w", id, ErrUnknownLayer)
}

// StopAll removes every layer and reports how many there were.
func (m *Manager) StopAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.layers)
	m.layers = nil
	return n
}

// SetDefaultColor parses s and uses it as the background color.
func (m *Manager) SetDefaultColor(s string) error {
	c, err := colors.Parse(s)
	if err != nil {
		return err
	}
	m.SetBackground(c)
	return nil
}

// SetBackground sets the background color. Its opacity is ignored.
func (m *Manager) SetBackground(c colors.Color) {
	m.mu.Lock()
	m.defaultColor = c.WithAlpha(1)
	m.mu.Unlock()
}

func (m *Manager) DefaultColor() colors.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultColor
}

func (m *Manager) MixMode() colors.BlendMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixMode
}

func (m *Manager) Layers() []Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = Layer{ID: l.id, Animation: l.anim, Start: l.start, FirstLoop: l.firstLoop}
	}
	return out
}

// LEDColor resolves the composited color of an LED at a point in time.
func (m *Manager) LEDColor(index int, at time.Time) colors.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(index, at, len(m.layers)-1)
}

// LEDColorFrom resolves an LED using only layers startFrom and below. A negative
// startFrom yields the background color.
func (m *Manager) LEDColorFrom(index int, at time.Time, startFrom int) colors.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveLocked(index, at, startFrom)
}

type translucent struct {
	color colors.Color
	mode  colors.BlendMode
}

// resolveLocked scans layers from startFrom downwards until an opaque hit or the
// background, then folds the translucent hits collected on the way back on top of it.
func (m *Manager) resolveLocked(index int, at time.Time, startFrom int) colors.Color {
	if startFrom >= len(m.layers) {
		startFrom = len(m.layers) - 1
	}

	var hits []translucent
	base := m.defaultColor
	for i := startFrom; i >= 0; i-- {
		l := &m.layers[i]
		t := l.elapsed(at)
		if !l.anim.HasPixel(index, t) {
			continue
		}
		c, ok := l.anim.LEDColor(index, t, l.firstLoop)
		if !ok {
			continue
		}
		if c.Opaque() {
			base = c
			break
		}
		hits = append(hits, translucent{color: c, mode: l.anim.Mode()})
	}

	for i := len(hits) - 1; i >= 0; i-- {
		h := hits[i]
		base = colors.Mix(base, h.color.WithAlpha(1), h.color.A, h.mode)
	}
	return base
}

// Update retires finished layers, renders every LED at the current time and commits
// the frame to the strip with a single Show.
func (m *Manager) Update() error {
	now := m.now()

	m.mu.Lock()
	m.retireLocked(now)
	n := m.strip.Len()
	if cap(m.frame) < n {
		m.frame = make([]strip.Color, n)
	}
	frame := m.frame[:n]
	top := len(m.layers) - 1
	for i := range frame {
		r, g, b := m.resolveLocked(i, now, top).RGB255()
		frame[i] = strip.Color{Red: r, Green: g, Blue: b}
	}
	m.mu.Unlock()

	for i, c := range frame {
		if err := m.strip.SetPixel(i, c); err != nil {
			return fmt.Errorf("write pixel %d: %w", i, err)
		}
	}
	if err := m.strip.Show(); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}

// retireLocked walks the layers top to bottom so removals keep lower indices stable.
// Only here does a layer leave its first loop.
func (m *Manager) retireLocked(now time.Time) {
	for i := len(m.layers) - 1; i >= 0; i-- {
		l := &m.layers[i]
		if now.Sub(l.start) <= l.anim.TotalTime() {
			continue
		}
		if l.anim.Looping() {
			if l.firstLoop {
				l.firstLoop = false
				logger.With(zap.Stringer("layer", l.id)).Debug("Animation finished its first loop")
			}
			continue
		}
		logger.With(zap.Stringer("layer", l.id)).Debug("Animation finished")
		m.removeLocked(i)
	}
}

func (m *Manager) removeLocked(i int) {
	copy(m.layers[i:], m.layers[i+1:])
	m.layers[len(m.layers)-1] = layer{}
	m.layers = m.layers[:len(m.layers)-1]
}
