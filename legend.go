package colorseg

import (
	"fmt"
	"image"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/colorseg/imageutil"
)

var legendFont *truetype.Font

func init() {
	var err error
	legendFont, err = freetype.ParseFont(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// DefaultFontSize is the legend text height in pixels.
const DefaultFontSize = 12

// Legend draws text overlays onto frames: the class legend while
// classifying and the status lines while teaching.
type Legend struct {
	size   float64
	margin int
}

// NewLegend creates a legend drawing text of the given pixel size. A size
// below one uses DefaultFontSize.
func NewLegend(size float64) *Legend {
	if size < 1 {
		size = DefaultFontSize
	}
	return &Legend{size: size, margin: int(size / 2)}
}

// LineHeight returns the vertical distance between two lines of text.
func (l *Legend) LineHeight() int {
	return int(l.size*1.5 + 0.5)
}

// ClassName returns the label shown for class index i.
func ClassName(i int) string {
	if i == BackgroundClass {
		return "background"
	}
	return fmt.Sprintf("class %d", i)
}

// DrawClasses draws one line per class in the top-left corner of img: a
// swatch of the class color holding the class index, then the class name
// and, when counts is not nil, the number of blocks it won.
func (l *Legend) DrawClasses(img *imageutil.RGBAImage, colors []RGB, counts []int) error {
	lh := l.LineHeight()
	swatch := lh - 2
	for i, c := range colors {
		top := l.margin + i*lh
		box := image.Rect(l.margin, top, l.margin+swatch, top+swatch)
		img.Fill(box, c)
		imageutil.DrawRect(img, box, GuideColor)
		if err := l.drawString(img, fmt.Sprint(i), box.Min.X+2, top, ContrastText(c)); err != nil {
			return err
		}

		text := ClassName(i)
		if counts != nil && i < len(counts) {
			text = fmt.Sprintf("%s  %d", text, counts[i])
		}
		if err := l.drawString(img, text, box.Max.X+l.margin, top, GuideColor); err != nil {
			return err
		}
	}
	return nil
}

// DrawLines draws lines of text in color c, starting at the top-left
// corner of img.
func (l *Legend) DrawLines(img *imageutil.RGBAImage, lines []string, c RGB) error {
	for i, line := range lines {
		if err := l.drawString(img, line, l.margin, l.margin+i*l.LineHeight(), c); err != nil {
			return err
		}
	}
	return nil
}

// drawString draws text whose line box starts at (x, top).
func (l *Legend) drawString(img *imageutil.RGBAImage, text string, x, top int, c RGB) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(legendFont)
	ctx.SetFontSize(l.size)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.RGBA)
	ctx.SetSrc(image.NewUniform(c.ToColor()))
	ctx.SetHinting(font.HintingFull)

	baseline := top + int(l.size)
	if _, err := ctx.DrawString(text, freetype.Pt(x, baseline)); err != nil {
		return errors.Wrapf(err, "draw %q", text)
	}
	return nil
}
