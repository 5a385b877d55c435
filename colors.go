package colorseg

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// GenerateColors returns a display color per class. Index 0, background, is
// always black; every other entry is drawn uniformly from the RGB cube.
// Nothing keeps two classes from getting similar colors.
func GenerateColors(n int, rng *rand.Rand) []RGB {
	if n <= 0 {
		return nil
	}
	colors := make([]RGB, n)
	colors[BackgroundClass] = Black
	for i := 1; i < n; i++ {
		c := colorful.Color{R: rng.Float64(), G: rng.Float64(), B: rng.Float64()}
		r, g, b := c.RGB255()
		colors[i] = RGB{R: r, G: g, B: b}
	}
	return colors
}

// lightnessThreshold is the CIE L* above which dark text is more legible.
const lightnessThreshold = 0.6

// ContrastText returns black or white, whichever reads better on top of c.
func ContrastText(c RGB) RGB {
	l, _, _ := toColorful(c).Lab()
	if l > lightnessThreshold {
		return Black
	}
	return RGB{R: 255, G: 255, B: 255}
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}
