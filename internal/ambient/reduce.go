package ambient

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/scheerer/strip-animations/internal/colors"
)

// Reducer boils a captured screen down to one color, looking at every gridSize-th pixel
// in both directions.
type Reducer func(img *image.RGBA, gridSize int) colors.Color

// ReducerFor resolves a COLOR_ALGO name.
func ReducerFor(algo string) (Reducer, error) {
	switch strings.ToUpper(algo) {
	case "AVERAGE":
		return AverageColor, nil
	case "SQUARED_AVERAGE":
		return SquaredAverageColor, nil
	case "MEDIAN":
		return MedianColor, nil
	case "MODE":
		return ModeColor, nil
	}
	return nil, fmt.Errorf("unknown color algorithm %q, want one of [AVERAGE, SQUARED_AVERAGE, MEDIAN, MODE]", algo)
}

func sample(img *image.RGBA, gridSize int, fn func(c color.RGBA)) {
	if gridSize < 1 {
		gridSize = 1
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += gridSize {
		for x := b.Min.X; x < b.Max.X; x += gridSize {
			fn(img.RGBAAt(x, y))
		}
	}
}

func AverageColor(img *image.RGBA, gridSize int) colors.Color {
	var sumR, sumG, sumB, total uint64
	sample(img, gridSize, func(c color.RGBA) {
		total++
		sumR += uint64(c.R)
		sumG += uint64(c.G)
		sumB += uint64(c.B)
	})
	if total == 0 {
		return colors.Black
	}
	return colors.RGB(uint8(sumR/total), uint8(sumG/total), uint8(sumB/total))
}

// SquaredAverageColor is the root mean square per channel, which favors bright pixels.
func SquaredAverageColor(img *image.RGBA, gridSize int) colors.Color {
	var sumR, sumG, sumB, total uint64
	sample(img, gridSize, func(c color.RGBA) {
		total++
		sumR += uint64(c.R) * uint64(c.R)
		sumG += uint64(c.G) * uint64(c.G)
		sumB += uint64(c.B) * uint64(c.B)
	})
	if total == 0 {
		return colors.Black
	}
	rms := func(sum uint64) uint8 {
		return uint8(math.Round(math.Sqrt(float64(sum) / float64(total))))
	}
	return colors.RGB(rms(sumR), rms(sumG), rms(sumB))
}

// MedianColor takes the median of each channel independently.
func MedianColor(img *image.RGBA, gridSize int) colors.Color {
	var reds, greens, blues []uint8
	sample(img, gridSize, func(c color.RGBA) {
		reds = append(reds, c.R)
		greens = append(greens, c.G)
		blues = append(blues, c.B)
	})
	if len(reds) == 0 {
		return colors.Black
	}

	median := func(values []uint8) uint8 {
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		n := len(values)
		if n%2 == 0 {
			return uint8((int(values[n/2-1]) + int(values[n/2])) / 2)
		}
		return values[n/2]
	}
	return colors.RGB(median(reds), median(greens), median(blues))
}

// ModeColor is the most frequent sampled color. Ties go to the color seen first.
func ModeColor(img *image.RGBA, gridSize int) colors.Color {
	counts := make(map[color.RGBA]int)
	var order []color.RGBA
	sample(img, gridSize, func(c color.RGBA) {
		c.A = 0xff
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	})

	var mode color.RGBA
	best := 0
	for _, c := range order {
		if counts[c] > best {
			best = counts[c]
			mode = c
		}
	}
	return colors.RGB(mode.R, mode.G, mode.B)
}
