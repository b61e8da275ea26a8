// Package mqtt publishes strip frames to an MQTT topic for ledtx-style receivers.
package mqtt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/logging"
	"github.com/scheerer/strip-animations/internal/strip"
)

var logger = logging.New("mqtt")

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MaxPixels is the longest frame the 16-bit pixel count can describe.
const MaxPixels = math.MaxUint16

type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Length   int
	// PublishTimeout bounds how long Show waits for the broker. Zero means one second.
	PublishTimeout time.Duration
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

type Strip struct {
	config Config
	client publisher
	close  func()

	mu      sync.Mutex
	pending []strip.Color
}

var _ strip.Strip = (*Strip)(nil)

// New connects to the broker and returns a strip that publishes one message per Show.
func New(config Config) (*Strip, error) {
	opts := paho.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(config.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.With(zap.Error(err)).Warn("Lost connection to MQTT broker")
		})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", config.Broker, token.Error())
	}
	logger.With(zap.String("broker", config.Broker), zap.String("topic", config.Topic)).Info("Connected to MQTT broker")

	s := newStrip(config, client)
	s.close = func() { client.Disconnect(250) }
	return s, nil
}

func newStrip(config Config, client publisher) *Strip {
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = time.Second
	}
	return &Strip{
		config:  config,
		client:  client,
		pending: make([]strip.Color, config.Length),
	}
}

func (s *Strip) Len() int { return s.config.Length }

func (s *Strip) SetPixel(index int, color strip.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pending) {
		return fmt.Errorf("mqtt pixel %d of %d: %w", index, len(s.pending), strip.ErrOutOfRange)
	}
	s.pending[index] = color
	return nil
}

func (s *Strip) Show() error {
	s.mu.Lock()
	n := len(s.pending)
	if n > MaxPixels {
		s.mu.Unlock()
		return fmt.Errorf("mqtt frame of %d pixels exceeds %d: %w", n, MaxPixels, strip.ErrFrameTooLong)
	}
	payload := Marshal(s.pending)
	s.mu.Unlock()

	token := s.client.Publish(s.config.Topic, 0, false, payload)
	if !token.WaitTimeout(s.config.PublishTimeout) {
		return fmt.Errorf("publish to %s: %w", s.config.Topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.config.Topic, err)
	}
	return nil
}

func (s *Strip) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

// Marshal encodes a frame as a little-endian uint16 pixel count followed by RGB triplets.
func Marshal(pixels []strip.Color) []byte {
	b := make([]byte, 2, 2+len(pixels)*3)
	binary.LittleEndian.PutUint16(b, uint16(len(pixels)))
	for _, p := range pixels {
		b = append(b, p.Red, p.Green, p.Blue)
	}
	return b
}
