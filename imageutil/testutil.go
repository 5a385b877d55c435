package imageutil

import (
	"image"
	"math"
)

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, c RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	img.Fill(img.Bounds(), c)
	return img
}

// CreateSplitImage creates an image whose left half is left and whose right
// half is right. Odd widths give the extra column to the right half.
func CreateSplitImage(width, height int, left, right RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	img.Fill(image.Rect(0, 0, width/2, height), left)
	img.Fill(image.Rect(width/2, 0, width, height), right)
	return img
}

// CreateCheckerboardImage creates a two color checkerboard pattern.
func CreateCheckerboardImage(width, height, squareSize int, a, b RGB) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y += squareSize {
		for x := 0; x < width; x += squareSize {
			c := a
			if ((x/squareSize)+(y/squareSize))%2 != 0 {
				c = b
			}
			img.Fill(image.Rect(x, y, x+squareSize, y+squareSize), c)
		}
	}
	return img
}

// CreateColorBarsImage creates a color bars test pattern.
func CreateColorBarsImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	colors := []RGB{
		{255, 255, 255}, // White
		{255, 255, 0},   // Yellow
		{0, 255, 255},   // Cyan
		{0, 255, 0},     // Green
		{255, 0, 255},   // Magenta
		{255, 0, 0},     // Red
		{0, 0, 255},     // Blue
		{0, 0, 0},       // Black
	}

	barWidth := width / len(colors)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorIdx := x / barWidth
			if colorIdx >= len(colors) {
				colorIdx = len(colors) - 1
			}
			img.SetRGB(x, y, colors[colorIdx])
		}
	}
	return img
}

// CalculateMSE calculates the Mean Squared Error between two RGBA images.
func CalculateMSE(img1, img2 *RGBAImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return math.MaxFloat64
	}

	width, height := img1.Width(), img1.Height()
	var sumSq float64
	count := float64(width * height * 3) // 3 channels

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c1 := img1.GetRGB(x, y)
			c2 := img2.GetRGB(x, y)
			dr := float64(c1.R) - float64(c2.R)
			dg := float64(c1.G) - float64(c2.G)
			db := float64(c1.B) - float64(c2.B)
			sumSq += dr*dr + dg*dg + db*db
		}
	}

	return sumSq / count
}

// CountColor returns how many pixels of img are exactly c.
func CountColor(img *RGBAImage, c RGB) int {
	n := 0
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.GetRGB(x, y) == c {
				n++
			}
		}
	}
	return n
}
