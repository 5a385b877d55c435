package colorseg

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"

	"github.com/wbrown/colorseg/imageutil"
)

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	opts = append([]SessionOption{
		WithColorSeed(1),
		WithLegend(false),
		WithSessionLogger(zaptest.NewLogger(t)),
	}, opts...)
	return NewSession(opts...)
}

// teachRedOnBlue teaches blue background and one red object class and
// starts classification.
func teachRedOnBlue(t *testing.T, s *Session) {
	t.Helper()
	fb, err := s.Apply(CmdAddBackgroundSample, imageutil.CreateSolidImage(256, 256, blue))
	if err != nil {
		t.Fatalf("background sample: %v", err)
	}
	if fb.Background != 4 {
		t.Errorf("Expected 4 background tiles, got %d", fb.Background)
	}
	fb, err = s.Apply(CmdAddObjectSample, imageutil.CreateSolidImage(256, 256, red))
	if err != nil {
		t.Fatalf("object sample: %v", err)
	}
	if fb.Pending != 1 || fb.Classes != 1 {
		t.Errorf("Expected 1 pending exemplar in 1 class, got %d in %d", fb.Pending, fb.Classes)
	}
	fb, err = s.Apply(CmdToggleClassification, nil)
	if err != nil {
		t.Fatalf("start classification: %v", err)
	}
	if fb.State != StateClassifying {
		t.Fatalf("Expected classifying, got %v", fb.State)
	}
}

func TestKeyCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  int
		want Command
	}{
		{'b', CmdAddBackgroundSample},
		{'a', CmdAddObjectSample},
		{'o', CmdNextClass},
		{'f', CmdToggleFreeze},
		{'r', CmdToggleClassification},
		{'v', CmdCompareHalves},
		{'x', CmdReset},
		{'q', CmdQuit},
		{27, CmdQuit},
		{-1, CmdNone},
		{'z', CmdNone},
	}
	for _, tt := range tests {
		if got := KeyCommand(tt.key); got != tt.want {
			t.Errorf("key %d: expected %v, got %v", tt.key, tt.want, got)
		}
	}
}

func TestSessionClassifies(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	teachRedOnBlue(t, s)

	tests := []struct {
		frame RGB
		class int
	}{
		{red, 1},
		{blue, BackgroundClass},
	}
	for _, tt := range tests {
		if _, err := s.Render(imageutil.CreateSolidImage(64, 48, tt.frame)); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		for i, label := range s.LastResult().Labels.Labels {
			if label != tt.class {
				t.Fatalf("%v frame: block %d labeled %d, expected %d", tt.frame, i, label, tt.class)
			}
		}
	}
}

func TestSessionRenderOverlay(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	teachRedOnBlue(t, s)

	out, err := s.Render(imageutil.CreateSolidImage(32, 32, red))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// Gray of pure red is 76; the painting is class 1's color.
	c := s.Classifier().Colors()[1]
	want := RGB{
		R: uint8(math.Round(0.5*float64(c.R) + 38)),
		G: uint8(math.Round(0.5*float64(c.G) + 38)),
		B: uint8(math.Round(0.5*float64(c.B) + 38)),
	}
	if got := out.GetRGB(5, 5); got != want {
		t.Errorf("Expected blended pixel %v, got %v", want, got)
	}
}

func TestSessionRejectsTeachingWhileClassifying(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	teachRedOnBlue(t, s)
	frame := imageutil.CreateSolidImage(256, 256, red)

	for _, cmd := range []Command{CmdAddBackgroundSample, CmdAddObjectSample, CmdNextClass} {
		if _, err := s.Apply(cmd, frame); !errors.Is(err, ErrNotTeaching) {
			t.Errorf("%v: expected ErrNotTeaching, got %v", cmd, err)
		}
	}
	if len(s.Classifier().Classes()) != 2 {
		t.Errorf("Expected the frozen classes to stay at 2, got %d", len(s.Classifier().Classes()))
	}
}

func TestSessionPauseAndResume(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	teachRedOnBlue(t, s)
	classifier := s.Classifier()

	fb, err := s.Apply(CmdToggleClassification, nil)
	if err != nil || fb.State != StatePaused {
		t.Fatalf("Expected paused, got %v (%v)", fb.State, err)
	}
	frame := imageutil.CreateSolidImage(32, 32, red)
	out, err := s.Render(frame)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if imageutil.CalculateMSE(out, frame) != 0 {
		t.Error("Expected the plain frame while paused")
	}

	fb, err = s.Apply(CmdToggleClassification, nil)
	if err != nil || fb.State != StateClassifying {
		t.Fatalf("Expected classifying, got %v (%v)", fb.State, err)
	}
	if s.Classifier() != classifier {
		t.Error("Resuming should keep the classifier and its colors")
	}
	if len(classifier.Classes()) != 2 {
		t.Errorf("Expected 2 classes after resume, got %d", len(classifier.Classes()))
	}
}

func TestSessionReset(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	teachRedOnBlue(t, s)

	fb, err := s.Apply(CmdReset, nil)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if fb.State != StateTeaching || fb.Background != 0 || fb.Classes != 0 {
		t.Errorf("Expected an empty teaching session, got %+v", fb)
	}
	if s.Classifier() != nil || s.LastResult() != nil {
		t.Error("Expected classifier and result to be cleared")
	}
	if _, err := s.Apply(CmdToggleClassification, nil); !errors.Is(err, ErrNoExemplars) {
		t.Errorf("Expected ErrNoExemplars after reset, got %v", err)
	}
}

func TestSessionStartRequiresBackground(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if _, err := s.Apply(CmdAddObjectSample, imageutil.CreateSolidImage(64, 64, red)); err != nil {
		t.Fatalf("object sample: %v", err)
	}
	fb, err := s.Apply(CmdToggleClassification, nil)
	if !errors.Is(err, ErrNoExemplars) {
		t.Errorf("Expected ErrNoExemplars, got %v", err)
	}
	if fb.State != StateTeaching || fb.Pending != 1 {
		t.Errorf("Expected teaching to continue unchanged, got %+v", fb)
	}
}

func TestSessionNextClass(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if _, err := s.Apply(CmdNextClass, nil); !errors.Is(err, ErrNoExemplars) {
		t.Errorf("Expected ErrNoExemplars for an empty class, got %v", err)
	}

	frame := imageutil.CreateSolidImage(256, 256, green)
	if _, err := s.Apply(CmdAddObjectSample, frame); err != nil {
		t.Fatalf("object sample: %v", err)
	}
	fb, err := s.Apply(CmdNextClass, nil)
	if err != nil {
		t.Fatalf("NextClass failed: %v", err)
	}
	if fb.Classes != 1 || fb.Pending != 0 {
		t.Errorf("Expected 1 committed class and nothing pending, got %+v", fb)
	}

	if _, err := s.Apply(CmdAddBackgroundSample, imageutil.CreateSolidImage(256, 256, blue)); err != nil {
		t.Fatalf("background sample: %v", err)
	}
	if _, err := s.Apply(CmdToggleClassification, nil); err != nil {
		t.Fatalf("start classification: %v", err)
	}
	if n := len(s.Classifier().Classes()); n != 2 {
		t.Errorf("Expected background and one object class, got %d", n)
	}
}

func TestSessionNeedsFrame(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	for _, cmd := range []Command{CmdAddBackgroundSample, CmdAddObjectSample, CmdCompareHalves} {
		if _, err := s.Apply(cmd, nil); !errors.Is(err, ErrNoFrame) {
			t.Errorf("%v: expected ErrNoFrame, got %v", cmd, err)
		}
	}
	if _, err := s.Render(nil); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Render: expected ErrNoFrame, got %v", err)
	}
}

func TestSessionSampleErrors(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if _, err := s.Apply(CmdAddBackgroundSample, imageutil.CreateSolidImage(64, 64, blue)); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Expected ErrEmptyRegion for a frame smaller than a tile, got %v", err)
	}
	if s.store.BackgroundCount() != 0 {
		t.Errorf("Expected no background after a rejected sample, got %d", s.store.BackgroundCount())
	}
}

func TestSessionWholeFrameObjectSample(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, WithObjectBox(0))
	// The center is blue; a whole frame sample also sees the red half.
	frame := imageutil.CreateSplitImage(64, 64, red, blue)
	if _, err := s.Apply(CmdAddObjectSample, frame); err != nil {
		t.Fatalf("object sample: %v", err)
	}
	if got := s.store.pending[0].Bin(7, 0, 0); got != 0.5 {
		t.Errorf("Expected half the sample red, got %v", got)
	}
}

func TestSessionFreezeCompareQuit(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	if _, err := s.Apply(CmdToggleFreeze, nil); err != nil || !s.Frozen() {
		t.Errorf("Expected frozen, got %v (%v)", s.Frozen(), err)
	}
	if _, err := s.Apply(CmdToggleFreeze, nil); err != nil || s.Frozen() {
		t.Errorf("Expected unfrozen, got %v (%v)", s.Frozen(), err)
	}

	fb, err := s.Apply(CmdCompareHalves, imageutil.CreateSplitImage(32, 16, red, blue))
	if err != nil {
		t.Fatalf("CompareHalves failed: %v", err)
	}
	if math.Abs(fb.Distance-2) > 1e-12 {
		t.Errorf("Expected distance 2, got %v", fb.Distance)
	}

	fb, err = s.Apply(CmdQuit, nil)
	if err != nil || !fb.Quit {
		t.Errorf("Expected quit, got %+v (%v)", fb, err)
	}
}

func TestSessionRenderTeachingGuide(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	frame := imageutil.CreateSolidImage(DefaultFrameWidth, DefaultFrameHeight, Black)
	out, err := s.Render(frame)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if n := imageutil.CountColor(out, GuideColor); n != 4*DefaultObjectBox-4 {
		t.Errorf("Expected a %d pixel guide outline, got %d", 4*DefaultObjectBox-4, n)
	}
	if imageutil.CountColor(frame, GuideColor) != 0 {
		t.Error("Render modified its input")
	}
}

func TestSessionRenderWithLegend(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, WithLegend(true))
	frame := imageutil.CreateSolidImage(DefaultFrameWidth, DefaultFrameHeight, Black)
	out, err := s.Render(frame)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if imageutil.CountColor(out, GuideColor) <= 4*DefaultObjectBox-4 {
		t.Error("Expected status text in addition to the guide")
	}

	teachRedOnBlue(t, s)
	out, err = s.Render(imageutil.CreateSolidImage(DefaultFrameWidth, DefaultFrameHeight, red))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if out.Bounds() != frame.Bounds() {
		t.Errorf("Expected bounds %v, got %v", frame.Bounds(), out.Bounds())
	}
}
