package colorseg

import "github.com/wbrown/colorseg/imageutil"

// OverlayAlpha is the weight of the block painting in Overlay.
const OverlayAlpha = 0.5

// Overlay mixes a block painting over a gray copy of the frame it was
// computed from, so that the scene stays recognizable under the class
// colors.
func Overlay(frame, painting *imageutil.RGBAImage) *imageutil.RGBAImage {
	return imageutil.Blend(painting, imageutil.Desaturate(frame), OverlayAlpha)
}

// GuideColor is the color of the object sample guide rectangle.
var GuideColor = RGB{R: 255, G: 255, B: 255}

// DrawGuide outlines the object sample rectangle on img.
func DrawGuide(img *imageutil.RGBAImage, objectBox int) {
	imageutil.DrawRect(img, CenteredRect(img.Bounds(), objectBox), GuideColor)
}
