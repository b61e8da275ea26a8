package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/ambient"
	"github.com/scheerer/strip-animations/internal/animation"
	"github.com/scheerer/strip-animations/internal/colors"
	"github.com/scheerer/strip-animations/internal/config"
	"github.com/scheerer/strip-animations/internal/console"
	"github.com/scheerer/strip-animations/internal/driver"
	"github.com/scheerer/strip-animations/internal/logging"
	"github.com/scheerer/strip-animations/internal/scene"
	"github.com/scheerer/strip-animations/internal/strip"
	"github.com/scheerer/strip-animations/internal/strip/lifx"
	"github.com/scheerer/strip-animations/internal/strip/mqtt"
	"github.com/scheerer/strip-animations/internal/strip/opc"
)

var logger = logging.New("main")

func main() {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid configuration")
	}
	if err := logging.SetLevelFromString(cfg.LogLevel); err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid LOG_LEVEL")
	}

	logger.With(zap.Any("config", cfg)).Info("Starting strip animations")
	logger.Info("STRIP_TYPE selects the surface: [MEMORY, OPC, MQTT, LIFX]")
	logger.Info("SCENE_PATH loads animations from a YAML scene, AUTOPLAY plays them on start")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := Run(ctx, cfg); err != nil {
		logger.With(zap.Error(err)).Fatal("Strip animations stopped")
	}
	logger.Info("Shutting down")
}

func Run(ctx context.Context, cfg config.Config) error {
	s, closeStrip, err := newStrip(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStrip()

	lib, err := loadScene(cfg)
	if err != nil {
		return err
	}

	background, err := colors.Parse(cfg.DefaultColor)
	if err != nil {
		return fmt.Errorf("DEFAULT_COLOR: %w", err)
	}
	if lib.Background != nil {
		background = *lib.Background
	}
	manager := animation.NewManager(s, animation.ManagerConfig{
		DefaultColor: background,
		MixMode:      lib.MixMode,
	})

	for _, name := range cfg.Autoplay {
		entry, err := lib.Get(name)
		if err != nil {
			return fmt.Errorf("AUTOPLAY: %w", err)
		}
		id, err := manager.Play(entry.Animation)
		if err != nil {
			return err
		}
		logger.With(zap.String("animation", entry.Name), zap.Stringer("layer", id)).Info("Autoplaying animation")
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if cfg.Ambient {
		sampler, err := ambient.New(ambient.Config{
			Interval:      cfg.AmbientInterval,
			ColorAlgo:     cfg.ColorAlgo,
			PixelGridSize: cfg.PixelGridSize,
			ScreenNumber:  cfg.ScreenNumber,
		})
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sampler.Run(ctx, manager.SetBackground)
		}()
	}

	if cfg.Console {
		c := console.New(manager, lib, os.Stdout)
		// stdin cannot be interrupted, so the console is not waited for on shutdown
		go func() {
			if err := c.Run(ctx, os.Stdin); err != nil {
				logger.With(zap.Error(err)).Warn("Console stopped")
			}
		}()
	}

	driver.Run(ctx, cfg.FrameInterval, manager)

	// leave the strip dark
	manager.StopAll()
	manager.SetBackground(colors.Black)
	if err := manager.Update(); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to clear strip")
	}
	return nil
}

func loadScene(cfg config.Config) (*scene.Scene, error) {
	if cfg.ScenePath == "" {
		return scene.Default(cfg.MixMode)
	}
	return scene.Load(cfg.ScenePath, cfg.MixMode)
}

func newStrip(ctx context.Context, cfg config.Config) (strip.Strip, func(), error) {
	noop := func() {}
	switch cfg.StripType {
	case config.StripMemory:
		return strip.NewMemory(cfg.StripLength), noop, nil
	case config.StripOPC:
		s := opc.New(opc.Config{
			Server:  cfg.OPCServer,
			Channel: uint8(cfg.OPCChannel),
			Length:  cfg.StripLength,
		})
		return s, closer(s.Close), nil
	case config.StripMQTT:
		s, err := mqtt.New(mqtt.Config{
			Broker:   cfg.MQTTBroker,
			Topic:    cfg.MQTTTopic,
			ClientID: cfg.MQTTClientID,
			Length:   cfg.StripLength,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, closer(s.Close), nil
	case config.StripLIFX:
		s, err := lifx.New(ctx, lifx.Config{
			GroupName:     cfg.LightGroupName,
			MinBrightness: cfg.MinBrightness,
			MaxBrightness: cfg.MaxBrightness,
			Transition:    cfg.FrameInterval,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	}
	return nil, nil, errors.New("unknown strip type: " + cfg.StripType)
}

func closer(fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to close strip")
		}
	}
}
