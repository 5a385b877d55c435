package colorseg

import (
	"image"

	"github.com/pkg/errors"

	"github.com/wbrown/colorseg/imageutil"
)

// DefaultBackgroundTile is the side of the squares a frame is cut into when
// it is taught as background.
const DefaultBackgroundTile = 128

// SampleRegion builds the color distribution of every pixel in rect. The
// rectangle includes its min corner and excludes its max corner, and is
// clipped to the frame. A rectangle with no pixels left after clipping is
// rejected with ErrEmptyRegion.
func SampleRegion(frame *imageutil.RGBAImage, rect image.Rectangle) (ColorDistribution, error) {
	clipped := rect.Intersect(frame.Bounds())
	if clipped.Empty() {
		return ColorDistribution{}, errors.Wrapf(ErrEmptyRegion, "sample %v", rect)
	}

	var h ColorHistogram
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		i := frame.PixOffset(clipped.Min.X, y)
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			h.Add(RGB{R: frame.Pix[i], G: frame.Pix[i+1], B: frame.Pix[i+2]})
			i += 4
		}
	}
	return h.Finish()
}

// SampleTiles cuts the frame into tile x tile squares from the top-left
// corner and samples each one. Only whole tiles are used; a strip narrower
// than a tile along the right or bottom edge is skipped. A frame smaller
// than one tile yields ErrEmptyRegion.
func SampleTiles(frame *imageutil.RGBAImage, tile int) ([]ColorDistribution, error) {
	if tile < 1 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "tile %d", tile)
	}
	width, height := frame.Width(), frame.Height()
	var samples []ColorDistribution
	for y := 0; y+tile <= height; y += tile {
		for x := 0; x+tile <= width; x += tile {
			d, err := SampleRegion(frame, image.Rect(x, y, x+tile, y+tile))
			if err != nil {
				return nil, err
			}
			samples = append(samples, d)
		}
	}
	if len(samples) == 0 {
		return nil, errors.Wrapf(ErrEmptyRegion, "frame %dx%d smaller than tile %d", width, height, tile)
	}
	return samples, nil
}

// CenteredRect returns the size x size square centered in bounds, the
// default object sample region.
func CenteredRect(bounds image.Rectangle, size int) image.Rectangle {
	cx := (bounds.Min.X + bounds.Max.X) / 2
	cy := (bounds.Min.Y + bounds.Max.Y) / 2
	return image.Rect(cx-size/2, cy-size/2, cx+size/2, cy+size/2)
}

// CompareHalves returns the distance between the color distributions of
// the left and right halves of the frame.
func CompareHalves(frame *imageutil.RGBAImage) (float64, error) {
	b := frame.Bounds()
	mid := (b.Min.X + b.Max.X) / 2
	left, err := SampleRegion(frame, image.Rect(b.Min.X, b.Min.Y, mid, b.Max.Y))
	if err != nil {
		return 0, err
	}
	right, err := SampleRegion(frame, image.Rect(mid, b.Min.Y, b.Max.X, b.Max.Y))
	if err != nil {
		return 0, err
	}
	return left.Distance(right), nil
}
