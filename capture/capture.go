// Package capture connects a colorseg session to a camera and a window
// through OpenCV.
package capture

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/wbrown/colorseg/imageutil"
)

// ErrNoFrame is returned when the camera delivers no image.
var ErrNoFrame = errors.New("camera returned no frame")

// Source delivers frames.
type Source interface {
	Read() (*imageutil.RGBAImage, error)
	Close() error
}

// Screen shows images and reports key presses.
type Screen interface {
	Show(img *imageutil.RGBAImage) error
	WaitKey(delayMillis int) int
	Close() error
}

// Camera is a Source reading from a video device.
type Camera struct {
	dev *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCamera opens video device id and asks for width x height frames. A
// device that ignores the size request still works; frames come at the
// size it delivers.
func OpenCamera(id, width, height int) (*Camera, error) {
	dev, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, errors.Wrapf(err, "open camera %d", id)
	}
	if !dev.IsOpened() {
		return nil, multierr.Combine(errors.Errorf("camera %d not opened", id), dev.Close())
	}
	if width > 0 && height > 0 {
		dev.Set(gocv.VideoCaptureFrameWidth, float64(width))
		dev.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Camera{dev: dev, mat: gocv.NewMat()}, nil
}

// Read grabs the next frame.
func (c *Camera) Read() (*imageutil.RGBAImage, error) {
	if ok := c.dev.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, ErrNoFrame
	}
	return MatToRGBA(c.mat)
}

// Close releases the device and the frame buffer.
func (c *Camera) Close() error {
	return multierr.Combine(c.mat.Close(), c.dev.Close())
}

// Window is a Screen backed by an OpenCV HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays img.
func (w *Window) Show(img *imageutil.RGBAImage) error {
	mat, err := RGBAToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()
	w.win.IMShow(mat)
	return nil
}

// WaitKey waits up to delayMillis for a key press and returns its code, or
// -1 when no key was pressed.
func (w *Window) WaitKey(delayMillis int) int {
	key := w.win.WaitKey(delayMillis)
	if key < 0 {
		return key
	}
	return key & 0xff
}

// Close closes the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// MatToRGBA converts an 8-bit BGR, BGRA or gray Mat to an RGBA image.
func MatToRGBA(mat gocv.Mat) (*imageutil.RGBAImage, error) {
	if mat.Empty() {
		return nil, ErrNoFrame
	}
	rgba := gocv.NewMat()
	defer rgba.Close()

	switch mat.Channels() {
	case 1:
		gocv.CvtColor(mat, &rgba, gocv.ColorGrayToRGBA)
	case 3:
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRToRGBA)
	case 4:
		gocv.CvtColor(mat, &rgba, gocv.ColorBGRAToRGBA)
	default:
		return nil, errors.Errorf("unsupported channel count %d", mat.Channels())
	}

	img := imageutil.NewRGBAImage(rgba.Cols(), rgba.Rows())
	copy(img.Pix, rgba.ToBytes())
	return img, nil
}

// RGBAToMat converts an RGBA image to a BGR Mat. The caller closes the
// returned Mat.
func RGBAToMat(img *imageutil.RGBAImage) (gocv.Mat, error) {
	if img.Bounds().Min != (image.Point{}) || img.Stride != 4*img.Width() {
		img = img.Clone()
	}
	rgba, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "wrap image")
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
