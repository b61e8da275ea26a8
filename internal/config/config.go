// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env"

	"github.com/scheerer/strip-animations/internal/ambient"
	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/strip/mqtt"
	"github.com/scheerer/strip-animations/internal/strip/opc"
)

const (
	StripMemory = "MEMORY"
	StripOPC    = "OPC"
	StripMQTT   = "MQTT"
	StripLIFX   = "LIFX"
)

type Config struct {
	FrameInterval time.Duration `env:"FRAME_INTERVAL" envDefault:"16ms"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	StripType   string `env:"STRIP_TYPE" envDefault:"MEMORY"`
	StripLength int    `env:"STRIP_LENGTH" envDefault:"60"`

	OPCServer  string `env:"OPC_SERVER" envDefault:"localhost:7890"`
	OPCChannel int    `env:"OPC_CHANNEL" envDefault:"0"`

	MQTTBroker   string `env:"MQTT_BROKER" envDefault:"tcp://localhost:1883"`
	MQTTTopic    string `env:"MQTT_TOPIC" envDefault:"leds/frame"`
	MQTTClientID string `env:"MQTT_CLIENT_ID" envDefault:"strip-animations"`

	LightGroupName string  `env:"LIGHT_GROUP_NAME" envDefault:"STRIP"`
	MaxBrightness  float64 `env:"MAX_BRIGHTNESS" envDefault:"0.65"`
	MinBrightness  float64 `env:"MIN_BRIGHTNESS" envDefault:"0"`

	ScenePath    string           `env:"SCENE_PATH"`
	Autoplay     []string         `env:"AUTOPLAY" envSeparator:","`
	MixMode      colors.BlendMode `env:"MIX_MODE" envDefault:"lab"`
	DefaultColor string           `env:"DEFAULT_COLOR" envDefault:"black"`
	Console      bool             `env:"CONSOLE" envDefault:"true"`

	Ambient         bool          `env:"AMBIENT" envDefault:"false"`
	AmbientInterval time.Duration `env:"AMBIENT_INTERVAL" envDefault:"80ms"`
	ColorAlgo       string        `env:"COLOR_ALGO" envDefault:"AVERAGE"`
	PixelGridSize   int           `env:"PIXEL_GRID_SIZE" envDefault:"5"`
	ScreenNumber    int           `env:"SCREEN_NUMBER" envDefault:"0"`
}

var parsers = env.CustomParsers{
	reflect.TypeOf(colors.BlendMode("")): func(v string) (interface{}, error) {
		return colors.ParseBlendMode(v)
	},
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var c Config
	if err := env.ParseWithFuncs(&c, parsers); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	c.StripType = strings.ToUpper(strings.TrimSpace(c.StripType))
	autoplay := c.Autoplay[:0]
	for _, name := range c.Autoplay {
		if name = strings.TrimSpace(name); name != "" {
			autoplay = append(autoplay, name)
		}
	}
	c.Autoplay = autoplay
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// maxStripLength is the longest frame a strip type's wire format can carry, or zero
// when there is no limit.
func maxStripLength(stripType string) int {
	switch stripType {
	case StripOPC:
		return opc.MaxPixels
	case StripMQTT:
		return mqtt.MaxPixels
	}
	return 0
}

func (c Config) Validate() error {
	var errs []error
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("FRAME_INTERVAL must be positive, got %s", c.FrameInterval))
	}
	switch c.StripType {
	case StripMemory, StripOPC, StripMQTT:
		if c.StripLength <= 0 {
			errs = append(errs, fmt.Errorf("STRIP_LENGTH must be positive, got %d", c.StripLength))
		}
		if limit := maxStripLength(c.StripType); limit > 0 && c.StripLength > limit {
			errs = append(errs, fmt.Errorf("STRIP_LENGTH %d exceeds the %s limit of %d", c.StripLength, c.StripType, limit))
		}
	case StripLIFX:
	default:
		errs = append(errs, fmt.Errorf("unknown STRIP_TYPE %q, want one of [MEMORY, OPC, MQTT, LIFX]", c.StripType))
	}
	if c.StripType == StripOPC && (c.OPCChannel < 0 || c.OPCChannel > 255) {
		errs = append(errs, fmt.Errorf("OPC_CHANNEL must be within 0-255, got %d", c.OPCChannel))
	}
	if c.MinBrightness < 0 || c.MaxBrightness > 1 || c.MinBrightness > c.MaxBrightness {
		errs = append(errs, fmt.Errorf("brightness must satisfy 0 <= MIN_BRIGHTNESS (%g) <= MAX_BRIGHTNESS (%g) <= 1", c.MinBrightness, c.MaxBrightness))
	}
	if !c.MixMode.Valid() {
		errs = append(errs, fmt.Errorf("unknown MIX_MODE %q", c.MixMode))
	}
	if _, err := colors.Parse(c.DefaultColor); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_COLOR: %w", err))
	}
	if c.Ambient {
		if c.AmbientInterval <= 0 {
			errs = append(errs, fmt.Errorf("AMBIENT_INTERVAL must be positive, got %s", c.AmbientInterval))
		}
		if _, err := ambient.ReducerFor(c.ColorAlgo); err != nil {
			errs = append(errs, fmt.Errorf("COLOR_ALGO: %w", err))
		}
		if c.PixelGridSize < 1 {
			errs = append(errs, fmt.Errorf("PIXEL_GRID_SIZE must be at least 1, got %d", c.PixelGridSize))
		}
	}
	return errors.Join(errs...)
}
