package ambient

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/scheerer/strip-animations/internal/colors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testImage is 4x2: three red pixels, three blue, one white, one black.
func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	red := color.RGBA{R: 200, A: 255}
	blue := color.RGBA{B: 100, A: 255}
	for x, c := range []color.RGBA{red, red, red, {R: 255, G: 255, B: 255, A: 255}} {
		img.SetRGBA(x, 0, c)
	}
	for x, c := range []color.RGBA{blue, blue, blue, {A: 255}} {
		img.SetRGBA(x, 1, c)
	}
	return img
}

func TestReducers(t *testing.T) {
	img := testImage()
	tests := []struct {
		algo string
		want colors.Color
	}{
		{"AVERAGE", colors.RGB(106, 31, 69)},
		{"SQUARED_AVERAGE", colors.RGB(152, 90, 109)},
		{"MEDIAN", colors.RGB(100, 0, 50)},
		{"mode", colors.RGB(200, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.algo, func(t *testing.T) {
			reduce, err := ReducerFor(tt.algo)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Hex(), reduce(img, 1).Hex())
		})
	}
}

func TestReducerGrid(t *testing.T) {
	// with a grid of 2 only (0,0) and (2,0) are sampled
	assert.Equal(t, colors.RGB(200, 0, 0).Hex(), AverageColor(testImage(), 2).Hex())
}

func TestReducerHonorsBoundsOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 12, 11))
	img.SetRGBA(10, 10, color.RGBA{G: 50, A: 255})
	img.SetRGBA(11, 10, color.RGBA{G: 150, A: 255})
	assert.Equal(t, colors.RGB(0, 100, 0).Hex(), AverageColor(img, 1).Hex())
}

func TestReducersOnEmptyImage(t *testing.T) {
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	for _, algo := range []string{"AVERAGE", "SQUARED_AVERAGE", "MEDIAN", "MODE"} {
		reduce, err := ReducerFor(algo)
		require.NoError(t, err)
		assert.Equal(t, colors.Black.Hex(), reduce(empty, 3).Hex(), algo)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := ReducerFor("BRIGHTEST")
	assert.Error(t, err)

	_, err = NewWithCapture(Config{ColorAlgo: "BRIGHTEST", Interval: time.Second}, nil)
	assert.Error(t, err)
	_, err = NewWithCapture(Config{ColorAlgo: "AVERAGE"}, nil)
	assert.Error(t, err)
}

func TestSamplerRun(t *testing.T) {
	var calls int
	capture := func(display int) (*image.RGBA, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("display asleep")
		}
		assert.Equal(t, 1, display)
		return testImage(), nil
	}
	s, err := NewWithCapture(Config{Interval: 5 * time.Millisecond, ColorAlgo: "MODE", ScreenNumber: 1}, capture)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu  sync.Mutex
		got []colors.Color
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, func(c colors.Color) {
			mu.Lock()
			defer mu.Unlock()
			if len(got) < 2 {
				got = append(got, c)
			}
			if len(got) == 2 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("sampler did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, colors.RGB(200, 0, 0).Hex(), got[0].Hex())
}
