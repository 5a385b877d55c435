package imageutil

import (
	"image"
	"math"
)

// Blend returns alpha*front + (1-alpha)*back, channel by channel. Both
// images must have the same size; the result has the size of front.
func Blend(front, back *RGBAImage, alpha float64) *RGBAImage {
	alpha = math.Max(0, math.Min(1, alpha))
	dst := NewRGBAImage(front.Width(), front.Height())
	for i := 0; i+3 < len(dst.Pix) && i+3 < len(back.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := alpha*float64(front.Pix[i+c]) + (1-alpha)*float64(back.Pix[i+c])
			dst.Pix[i+c] = clampUint8(v)
		}
		dst.Pix[i+3] = 255
	}
	return dst
}

// DrawRect draws a one pixel outline of rect in color c. The max corner
// is exclusive, as with image.Rectangle.
func DrawRect(img *RGBAImage, rect image.Rectangle, c RGB) {
	if rect.Empty() {
		return
	}
	x0, y0 := rect.Min.X, rect.Min.Y
	x1, y1 := rect.Max.X-1, rect.Max.Y-1
	img.Fill(image.Rect(x0, y0, x1+1, y0+1), c)
	img.Fill(image.Rect(x0, y1, x1+1, y1+1), c)
	img.Fill(image.Rect(x0, y0, x0+1, y1+1), c)
	img.Fill(image.Rect(x1, y0, x1+1, y1+1), c)
}

// clampUint8 clamps a float64 to [0, 255] and converts to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
