// Package scene loads named animations from YAML files.
package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/scheerer/strip-animations/internal/animation"
	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/logging"
)

var logger = logging.New("scene")

var ErrUnknownAnimation = errors.New("no such animation in scene")

//go:embed default.yaml
var defaultScene []byte

// Entry is a named, ready to play animation.
type Entry struct {
	Name      string
	Animation animation.Animation
}

type Scene struct {
	MixMode colors.BlendMode
	// Background is nil when the scene does not set one.
	Background *colors.Color
	Entries    []Entry
}

// Load reads a scene file. Animations without a mode use the scene's mixMode, or
// defaultMode when the scene has none.
func Load(path string, defaultMode colors.BlendMode) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data, defaultMode)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	logger.With(zap.String("path", path), zap.Strings("animations", s.Names())).Info("Loaded scene")
	return s, nil
}

// Default is the built-in demo scene.
func Default(defaultMode colors.BlendMode) (*Scene, error) {
	return Parse(defaultScene, defaultMode)
}

func Parse(data []byte, defaultMode colors.BlendMode) (*Scene, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	s := &Scene{MixMode: defaultMode}
	if doc.MixMode != "" {
		mode, err := colors.ParseBlendMode(doc.MixMode)
		if err != nil {
			return nil, fmt.Errorf("mixMode: %w", err)
		}
		s.MixMode = mode
	}
	if doc.Background != nil {
		bg := doc.Background.Color
		s.Background = &bg
	}

	seen := make(map[string]bool, len(doc.Animations))
	for i, a := range doc.Animations {
		if a.Name == "" {
			return nil, fmt.Errorf("animation %d: name is required", i)
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("animation %q: duplicate name", a.Name)
		}
		seen[a.Name] = true

		anim, err := a.build(s.MixMode)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", a.Name, err)
		}
		s.Entries = append(s.Entries, Entry{Name: a.Name, Animation: anim})
	}
	return s, nil
}

// Get finds an animation by name or by its zero-based position in the scene.
func (s *Scene) Get(key string) (Entry, error) {
	for _, e := range s.Entries {
		if e.Name == key {
			return e, nil
		}
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(s.Entries) {
		return s.Entries[i], nil
	}
	return Entry{}, fmt.Errorf("%q: %w", key, ErrUnknownAnimation)
}

func (s *Scene) Names() []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Name
	}
	return names
}

type document struct {
	MixMode    string         `yaml:"mixMode"`
	Background *colorValue    `yaml:"background"`
	Animations []animationDoc `yaml:"animations"`
}

type animationDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Looping bool   `yaml:"looping"`
	Mode    string `yaml:"mode"`

	LEDs  string    `yaml:"leds"`
	Stops []stopDoc `yaml:"stops"`

	Head       *colorValue `yaml:"head"`
	Tail       *colorValue `yaml:"tail"`
	TailLength float64     `yaml:"tailLength"`
	Speed      float64     `yaml:"speed"`
	From       int         `yaml:"from"`
	To         int         `yaml:"to"`
	PingPong   bool        `yaml:"pingPong"`
}

type stopDoc struct {
	Color   *colorValue    `yaml:"color"`
	FadeIn  *time.Duration `yaml:"fadeIn"`
	Hold    *time.Duration `yaml:"hold"`
	FadeOut *time.Duration `yaml:"fadeOut"`
}

func (a animationDoc) build(sceneMode colors.BlendMode) (animation.Animation, error) {
	mode := sceneMode
	if a.Mode != "" {
		m, err := colors.ParseBlendMode(a.Mode)
		if err != nil {
			return nil, &animation.ValidationError{Stop: -1, Field: "mode", Reason: err.Error()}
		}
		mode = m
	}

	switch strings.ToLower(a.Type) {
	case "", "simple":
		stops := make([]animation.ColorStop, len(a.Stops))
		for i, sd := range a.Stops {
			stop, err := sd.colorStop(i)
			if err != nil {
				return nil, err
			}
			stops[i] = stop
		}
		return animation.NewSimpleAnimation(stops, a.LEDs, a.Looping, mode)
	case "comet":
		cfg := animation.CometConfig{
			Head:       colors.White,
			Tail:       colors.Black,
			TailLength: a.TailLength,
			Speed:      a.Speed,
			From:       a.From,
			To:         a.To,
			Looping:    a.Looping,
			PingPong:   a.PingPong,
			Mode:       mode,
		}
		if a.Head != nil {
			cfg.Head = a.Head.Color
		}
		if a.Tail != nil {
			cfg.Tail = a.Tail.Color
		}
		return animation.NewCometAnimation(cfg)
	}
	return nil, &animation.ValidationError{Stop: -1, Field: "type", Reason: fmt.Sprintf("%q must be simple or comet", a.Type)}
}

func (sd stopDoc) colorStop(i int) (animation.ColorStop, error) {
	switch {
	case sd.Color == nil:
		return animation.ColorStop{}, &animation.ValidationError{Stop: i, Field: "color", Reason: "is required"}
	case sd.FadeIn == nil:
		return animation.ColorStop{}, &animation.ValidationError{Stop: i, Field: "fadeInTime", Reason: "is required"}
	case sd.Hold == nil:
		return animation.ColorStop{}, &animation.ValidationError{Stop: i, Field: "holdTime", Reason: "is required"}
	}
	stop := animation.ColorStop{Color: sd.Color.Color, FadeIn: *sd.FadeIn, Hold: *sd.Hold}
	if sd.FadeOut != nil {
		stop = stop.WithFadeOut(*sd.FadeOut)
	}
	return stop, nil
}

// colorValue accepts a color string or an [r, g, b] list.
type colorValue struct {
	colors.Color
}

func (c *colorValue) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := colors.Parse(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		c.Color = parsed
		return nil
	case yaml.SequenceNode:
		var triple []float64
		if err := value.Decode(&triple); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		parsed, err := colors.FromTriple(triple)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		c.Color = parsed
		return nil
	}
	return fmt.Errorf("line %d: color must be a string or an [r, g, b] list", value.Line)
}
