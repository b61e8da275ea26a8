package strip

import (
	"errors"
	"fmt"
	"sync"
)

var ErrOutOfRange = errors.New("pixel index out of range")

// ErrFrameTooLong is returned by strips whose wire format cannot describe a frame of
// the configured length.
var ErrFrameTooLong = errors.New("frame too long for wire format")

type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Strip is an addressable LED surface. Pixel writes are buffered until Show commits the
// whole frame.
type Strip interface {
	Len() int
	SetPixel(index int, color Color) error
	Show() error
}

// Memory is a Strip backed by a plain buffer. Show copies the pending buffer into the
// visible frame.
type Memory struct {
	mu      sync.RWMutex
	pending []Color
	shown   []Color
	shows   int
}

var _ Strip = (*Memory)(nil)

func NewMemory(length int) *Memory {
	return &Memory{
		pending: make([]Color, length),
		shown:   make([]Color, length),
	}
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

func (m *Memory) SetPixel(index int, color Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.pending) {
		return fmt.Errorf("set pixel %d of %d: %w", index, len(m.pending), ErrOutOfRange)
	}
	m.pending[index] = color
	return nil
}

func (m *Memory) Show() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.shown, m.pending)
	m.shows++
	return nil
}

// Pixel returns the committed color of a pixel.
func (m *Memory) Pixel(index int) Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shown[index]
}

// Frame returns a copy of the committed frame.
func (m *Memory) Frame() []Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Color(nil), m.shown...)
}

// Shows counts committed frames.
func (m *Memory) Shows() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shows
}
