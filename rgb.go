package colorseg

import "github.com/wbrown/colorseg/imageutil"

// RGB is a three channel, 8-bit color sample.
type RGB = imageutil.RGB

// Black is the display color of the background class.
var Black = RGB{}

// toUint32 packs an RGB color into 0xRRGGBB.
func toUint32(c RGB) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
