// Package opc drives a strip through an Open Pixel Control server such as fcserver.
package opc

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/strip-animations/internal/logging"
	"github.com/scheerer/strip-animations/internal/strip"
)

var logger = logging.New("opc")

const (
	headerLen = 4

	cmdSetPixelColors = 0

	// MaxPixels is the longest frame whose data length fits the 16-bit header field.
	MaxPixels = math.MaxUint16 / 3
)

type Config struct {
	Server      string
	Channel     uint8
	Length      int
	DialTimeout time.Duration
}

// Strip buffers pixels locally and sends one "set pixel colors" message per Show. The
// connection is dialed lazily and dropped after a failed write; the next Show redials.
type Strip struct {
	config Config

	mu      sync.Mutex
	conn    net.Conn
	pending []strip.Color
	buf     []byte
}

var _ strip.Strip = (*Strip)(nil)

func New(config Config) *Strip {
	if config.DialTimeout <= 0 {
		config.DialTimeout = 2 * time.Second
	}
	return &Strip{
		config:  config,
		pending: make([]strip.Color, config.Length),
	}
}

func (s *Strip) Len() int { return s.config.Length }

func (s *Strip) SetPixel(index int, color strip.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pending) {
		return fmt.Errorf("opc pixel %d of %d: %w", index, len(s.pending), strip.ErrOutOfRange)
	}
	s.pending[index] = color
	return nil
}

func (s *Strip) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) > MaxPixels {
		return fmt.Errorf("opc frame of %d pixels exceeds %d: %w", len(s.pending), MaxPixels, strip.ErrFrameTooLong)
	}
	if s.conn == nil {
		conn, err := net.DialTimeout("tcp", s.config.Server, s.config.DialTimeout)
		if err != nil {
			return fmt.Errorf("dial opc server %s: %w", s.config.Server, err)
		}
		logger.With(zap.String("server", s.config.Server), zap.Uint8("channel", s.config.Channel)).
			Info("Connected to OPC server")
		s.conn = conn
	}

	s.buf = AppendMessage(s.buf[:0], s.config.Channel, s.pending)
	if _, err := s.conn.Write(s.buf); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("write opc frame: %w", err)
	}
	return nil
}

func (s *Strip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// AppendMessage encodes a "set pixel colors" message: channel, command, big-endian data
// length, then one RGB triplet per pixel.
func AppendMessage(dst []byte, channel uint8, pixels []strip.Color) []byte {
	dst = append(dst, channel, cmdSetPixelColors)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(pixels)*3))
	for _, p := range pixels {
		dst = append(dst, p.Red, p.Green, p.Blue)
	}
	return dst
}
