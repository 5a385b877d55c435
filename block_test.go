package colorseg

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"

	"github.com/wbrown/colorseg/imageutil"
)

// redBlueClasses teaches background from solid blue and one object class
// from a solid red 16x16 sample.
func redBlueClasses(t *testing.T) ClassList {
	t.Helper()
	bg, err := SampleRegion(imageutil.CreateSolidImage(16, 16, blue), image.Rect(0, 0, 16, 16))
	if err != nil {
		t.Fatalf("sample background: %v", err)
	}
	obj, err := SampleRegion(imageutil.CreateSolidImage(16, 16, red), image.Rect(0, 0, 16, 16))
	if err != nil {
		t.Fatalf("sample object: %v", err)
	}
	return ClassList{classOf(bg), classOf(obj)}
}

var testColors = []RGB{Black, green}

func TestClassifyRedAndBlueFrames(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(redBlueClasses(t),
		WithBlockSize(16), WithColors(testColors), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	tests := []struct {
		name  string
		frame RGB
		class int
	}{
		{"red frame", red, 1},
		{"blue frame", blue, BackgroundClass},
	}
	for _, tt := range tests {
		frame := imageutil.CreateSolidImage(32, 32, tt.frame)
		res, err := c.Classify(frame)
		if err != nil {
			t.Fatalf("%s: Classify failed: %v", tt.name, err)
		}
		for i, label := range res.Labels.Labels {
			if label != tt.class {
				t.Errorf("%s: block %d labeled %d, expected %d", tt.name, i, label, tt.class)
			}
		}
		if n := imageutil.CountColor(res.Output, testColors[tt.class]); n != 32*32 {
			t.Errorf("%s: expected every pixel painted %v, got %d", tt.name, testColors[tt.class], n)
		}
	}
}

func TestClassifyDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(redBlueClasses(t), WithColors(testColors))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	frame := imageutil.CreateSplitImage(40, 24, red, blue)
	before := frame.Clone()
	res, err := c.Classify(frame)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if imageutil.CalculateMSE(before, frame) != 0 {
		t.Error("Classify modified its input")
	}
	if res.Output.Bounds() != frame.Bounds() {
		t.Errorf("Expected output bounds %v, got %v", frame.Bounds(), res.Output.Bounds())
	}
}

func TestClassifyDivisibleFrame(t *testing.T) {
	t.Parallel()

	grid, err := ClassifyBlocks(imageutil.CreateSolidImage(64, 32, red), redBlueClasses(t), 16)
	if err != nil {
		t.Fatalf("ClassifyBlocks failed: %v", err)
	}
	if grid.Cols != 4 || grid.Rows != 2 {
		t.Fatalf("Expected a 4x2 grid, got %dx%d", grid.Cols, grid.Rows)
	}
	bounds := image.Rect(0, 0, 64, 32)
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			r := grid.BlockRect(bounds, col, row)
			if r.Dx() != 16 || r.Dy() != 16 {
				t.Errorf("block (%d,%d) is %v, expected a full block", col, row, r)
			}
		}
	}
}

func TestClassifyClampsTrailingBlocks(t *testing.T) {
	t.Parallel()

	// 20x10 with 8 pixel blocks: a 3x2 grid whose last column is 4 wide
	// and last row 2 high. Red covers x < 10.
	c, err := NewClassifier(redBlueClasses(t), WithBlockSize(8), WithColors(testColors))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	frame := imageutil.CreateSplitImage(20, 10, red, blue)
	res, err := c.Classify(frame)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	grid := res.Labels
	if grid.Cols != 3 || grid.Rows != 2 {
		t.Fatalf("Expected a 3x2 grid, got %dx%d", grid.Cols, grid.Rows)
	}
	if r := grid.BlockRect(frame.Bounds(), 2, 1); r != image.Rect(16, 8, 20, 10) {
		t.Errorf("Expected the corner block clamped to (16,8)-(20,10), got %v", r)
	}

	// Column 0 is all red; column 1 is mostly blue; column 2 is blue.
	want := []int{1, 0, 0, 1, 0, 0}
	for i, label := range grid.Labels {
		if label != want[i] {
			t.Errorf("block %d: expected class %d, got %d", i, want[i], label)
		}
	}
	if n := imageutil.CountColor(res.Output, green); n != 8*10 {
		t.Errorf("Expected 80 pixels of class 1, got %d", n)
	}
	if n := imageutil.CountColor(res.Output, Black); n != 12*10 {
		t.Errorf("Expected 120 background pixels, got %d", n)
	}
}

func TestClassifierRejectsBadConfiguration(t *testing.T) {
	t.Parallel()

	classes := redBlueClasses(t)
	if _, err := NewClassifier(classes, WithBlockSize(0)); !errors.Is(err, ErrInvalidBlockSize) {
		t.Errorf("Expected ErrInvalidBlockSize, got %v", err)
	}
	if _, err := NewClassifier(nil); !errors.Is(err, ErrNoExemplars) {
		t.Errorf("Expected ErrNoExemplars for no classes, got %v", err)
	}
	if _, err := NewClassifier(ClassList{classes[0], {}}); !errors.Is(err, ErrNoExemplars) {
		t.Errorf("Expected ErrNoExemplars for an empty class, got %v", err)
	}
	if _, err := NewClassifier(classes, WithColors([]RGB{Black})); err == nil {
		t.Error("Expected an error for a short color table")
	}
	if _, err := ClassifyBlocks(imageutil.CreateSolidImage(8, 8, red), classes, -1); !errors.Is(err, ErrInvalidBlockSize) {
		t.Errorf("Expected ErrInvalidBlockSize, got %v", err)
	}
}

func TestClassifierGeneratesColors(t *testing.T) {
	t.Parallel()

	a, err := NewClassifier(redBlueClasses(t), WithSeed(3))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	b, err := NewClassifier(redBlueClasses(t), WithSeed(3))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	if len(a.Colors()) != 2 || a.Colors()[0] != Black {
		t.Fatalf("Expected 2 colors starting with black, got %v", a.Colors())
	}
	if a.Colors()[1] != b.Colors()[1] {
		t.Errorf("Same seed gave different colors: %v and %v", a.Colors()[1], b.Colors()[1])
	}
}

func TestClassifierStats(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(redBlueClasses(t), WithColors(testColors))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	frame := imageutil.CreateSolidImage(16, 16, red)
	for i := 0; i < 2; i++ {
		if _, err := c.Classify(frame); err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
	}

	frames, blocks, _ := c.Stats()
	if frames != 2 || blocks != 8 {
		t.Errorf("Expected 2 frames and 8 blocks, got %d and %d", frames, blocks)
	}
	c.ResetStats()
	if frames, blocks, elapsed := c.Stats(); frames != 0 || blocks != 0 || elapsed != 0 {
		t.Errorf("Expected zero stats after reset, got %d, %d, %v", frames, blocks, elapsed)
	}
}

func TestLabelGridCounts(t *testing.T) {
	t.Parallel()

	g := &LabelGrid{Cols: 3, Rows: 1, BlockSize: 8, Labels: []int{0, 2, 2}, Distances: make([]float64, 3)}
	counts := g.Counts(3)
	if counts[0] != 1 || counts[1] != 0 || counts[2] != 2 {
		t.Errorf("Expected [1 0 2], got %v", counts)
	}
}

func TestClassifyCheckerboard(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(redBlueClasses(t), WithBlockSize(16), WithColors(testColors))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	res, err := c.Classify(imageutil.CreateCheckerboardImage(64, 64, 16, red, blue))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	for row := 0; row < res.Labels.Rows; row++ {
		for col := 0; col < res.Labels.Cols; col++ {
			want := 1
			if (row+col)%2 != 0 {
				want = BackgroundClass
			}
			label, dist := res.Labels.At(col, row)
			if label != want || dist != 0 {
				t.Errorf("block (%d,%d): expected class %d at distance 0, got %d at %v", col, row, want, label, dist)
			}
		}
	}
}
