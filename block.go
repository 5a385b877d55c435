package colorseg

import (
	"image"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wbrown/colorseg/imageutil"
)

// DefaultBlockSize is the side in pixels of the blocks a frame is
// classified in.
const DefaultBlockSize = 8

// LabelGrid holds the classification of every block of a frame, row major.
type LabelGrid struct {
	Cols, Rows int
	BlockSize  int
	Labels     []int
	Distances  []float64
}

// At returns the class and distance of block (col, row).
func (g *LabelGrid) At(col, row int) (int, float64) {
	i := row*g.Cols + col
	return g.Labels[i], g.Distances[i]
}

// Counts returns how many blocks were assigned to each class index below
// numClasses.
func (g *LabelGrid) Counts(numClasses int) []int {
	counts := make([]int, numClasses)
	for _, label := range g.Labels {
		if label >= 0 && label < numClasses {
			counts[label]++
		}
	}
	return counts
}

// BlockRect returns the pixel rectangle of block (col, row) within a frame
// of the given bounds. Blocks are laid out from the top-left corner; the
// last column and row are clamped to the frame edge, so they may be
// narrower or shorter than BlockSize but are never empty.
func (g *LabelGrid) BlockRect(bounds image.Rectangle, col, row int) image.Rectangle {
	x := bounds.Min.X + col*g.BlockSize
	y := bounds.Min.Y + row*g.BlockSize
	return image.Rect(x, y, x+g.BlockSize, y+g.BlockSize).Intersect(bounds)
}

// NewLabelGrid sizes a grid for a width x height frame. A dimension that is
// not a multiple of blockSize gets one extra, clamped, block.
func NewLabelGrid(width, height, blockSize int) *LabelGrid {
	cols := (width + blockSize - 1) / blockSize
	rows := (height + blockSize - 1) / blockSize
	return &LabelGrid{
		Cols:      cols,
		Rows:      rows,
		BlockSize: blockSize,
		Labels:    make([]int, cols*rows),
		Distances: make([]float64, cols*rows),
	}
}

// Result is the outcome of classifying one frame.
type Result struct {
	// Output is a new image the size of the input, each block painted with
	// the display color of its class.
	Output *imageutil.RGBAImage

	// Labels holds the per block classes and distances.
	Labels *LabelGrid
}

// Classifier labels the blocks of frames against a frozen class list.
// A Classifier is meant to be driven by a single frame loop and is not
// safe for concurrent use.
type Classifier struct {
	// Configuration options
	BlockSize int

	classes ClassList
	colors  []RGB
	rng     *rand.Rand
	logger  *zap.Logger

	// Stats
	framesClassified int
	blocksClassified int
	classifyTime     time.Duration
}

// ClassifierOption is a functional option for configuring a Classifier.
type ClassifierOption func(*Classifier)

// WithBlockSize sets the block side in pixels.
func WithBlockSize(size int) ClassifierOption {
	return func(c *Classifier) {
		c.BlockSize = size
	}
}

// WithColors sets the display color table. It must have one entry per
// class.
func WithColors(colors []RGB) ClassifierOption {
	return func(c *Classifier) {
		c.colors = colors
	}
}

// WithSeed seeds the generator used for the display color table when no
// table is given with WithColors.
func WithSeed(seed int64) ClassifierOption {
	return func(c *Classifier) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a classifier for a frozen class list. Unless a
// color table is supplied, one is generated with GenerateColors. The
// class list is validated once here rather than per frame.
func NewClassifier(classes ClassList, opts ...ClassifierOption) (*Classifier, error) {
	c := &Classifier{
		BlockSize: DefaultBlockSize,
		classes:   classes,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := validateClasses(classes); err != nil {
		return nil, err
	}
	if c.BlockSize < 1 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "block size %d", c.BlockSize)
	}
	if c.colors == nil {
		if c.rng == nil {
			c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		c.colors = GenerateColors(len(classes), c.rng)
	}
	if len(c.colors) < len(classes) {
		return nil, errors.Errorf("%d display colors for %d classes", len(c.colors), len(classes))
	}

	c.logger.Debug("classifier ready",
		zap.Int("classes", len(classes)),
		zap.Int("exemplars", classes.ExemplarCount()),
		zap.Int("blockSize", c.BlockSize))
	return c, nil
}

// Classes returns the frozen class list.
func (c *Classifier) Classes() ClassList {
	return c.classes
}

// Colors returns the display color table, index 0 being background.
func (c *Classifier) Colors() []RGB {
	return c.colors
}

// Classify labels every block of frame with its nearest class and paints
// the block with that class's color into a new image. The frame is not
// modified.
func (c *Classifier) Classify(frame *imageutil.RGBAImage) (*Result, error) {
	start := time.Now()
	labels, err := classifyBlocks(frame, c.classes, c.BlockSize)
	if err != nil {
		return nil, err
	}
	output := PaintLabels(frame.Bounds(), labels, c.colors)

	elapsed := time.Since(start)
	c.framesClassified++
	c.blocksClassified += len(labels.Labels)
	c.classifyTime += elapsed
	c.logger.Debug("frame classified",
		zap.Int("blocks", len(labels.Labels)),
		zap.Duration("elapsed", elapsed))

	return &Result{Output: output, Labels: labels}, nil
}

// Stats returns the number of frames and blocks classified and the time
// spent classifying them.
func (c *Classifier) Stats() (frames, blocks int, elapsed time.Duration) {
	return c.framesClassified, c.blocksClassified, c.classifyTime
}

// ResetStats resets all statistics counters.
func (c *Classifier) ResetStats() {
	c.framesClassified = 0
	c.blocksClassified = 0
	c.classifyTime = 0
}

// ClassifyBlocks cuts frame into blockSize x blockSize blocks starting at
// the top-left corner and finds the nearest class of each. Blocks on the
// right and bottom edges are clamped to the frame when its dimensions are
// not multiples of blockSize.
func ClassifyBlocks(frame *imageutil.RGBAImage, classes ClassList, blockSize int) (*LabelGrid, error) {
	if blockSize < 1 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "block size %d", blockSize)
	}
	if err := validateClasses(classes); err != nil {
		return nil, err
	}
	return classifyBlocks(frame, classes, blockSize)
}

func classifyBlocks(frame *imageutil.RGBAImage, classes ClassList, blockSize int) (*LabelGrid, error) {
	bounds := frame.Bounds()
	grid := NewLabelGrid(bounds.Dx(), bounds.Dy(), blockSize)
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			d, err := SampleRegion(frame, grid.BlockRect(bounds, col, row))
			if err != nil {
				return nil, err
			}
			m := nearest(d, classes)
			i := row*grid.Cols + col
			grid.Labels[i] = m.Class
			grid.Distances[i] = m.Distance
		}
	}
	return grid, nil
}

// PaintLabels renders a label grid as an image of the given bounds, every
// block filled with the color of its class.
func PaintLabels(bounds image.Rectangle, grid *LabelGrid, colors []RGB) *imageutil.RGBAImage {
	out := imageutil.NewRGBAImage(bounds.Dx(), bounds.Dy())
	local := out.Bounds()
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			label, _ := grid.At(col, row)
			out.Fill(grid.BlockRect(local, col, row), colors[label])
		}
	}
	return out
}
