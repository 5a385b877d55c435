package colorseg

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wbrown/colorseg/imageutil"
)

// Default harness geometry.
const (
	DefaultFrameWidth  = 640
	DefaultFrameHeight = 480
	DefaultObjectBox   = 50
)

// Command is an operator action consumed by a Session.
type Command int

// Operator commands.
const (
	CmdNone Command = iota
	CmdAddBackgroundSample
	CmdAddObjectSample
	CmdNextClass
	CmdToggleFreeze
	CmdToggleClassification
	CmdCompareHalves
	CmdReset
	CmdQuit
)

var commandNames = map[Command]string{
	CmdNone:                 "none",
	CmdAddBackgroundSample:  "add-background-sample",
	CmdAddObjectSample:      "add-object-sample",
	CmdNextClass:            "next-class",
	CmdToggleFreeze:         "toggle-freeze",
	CmdToggleClassification: "toggle-classification",
	CmdCompareHalves:        "compare-halves",
	CmdReset:                "reset",
	CmdQuit:                 "quit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// keyESC is the key code of the escape key.
const keyESC = 27

// KeyCommand maps a key code, as returned by a display's key poll, to a
// command. Unbound keys map to CmdNone.
//
//	b  add background samples    a  add an object sample
//	o  next object class         r  start/pause classification
//	f  freeze/unfreeze the frame v  compare left and right halves
//	x  reset                     q, ESC  quit
func KeyCommand(key int) Command {
	switch key {
	case 'b':
		return CmdAddBackgroundSample
	case 'a':
		return CmdAddObjectSample
	case 'o':
		return CmdNextClass
	case 'f':
		return CmdToggleFreeze
	case 'r':
		return CmdToggleClassification
	case 'v':
		return CmdCompareHalves
	case 'x':
		return CmdReset
	case 'q', keyESC:
		return CmdQuit
	}
	return CmdNone
}

// State is the phase of a Session.
type State int

// Session states. Teaching moves to Classifying once the exemplars are
// frozen; classification can then be paused and resumed. Only Reset goes
// back to Teaching.
const (
	StateTeaching State = iota
	StateClassifying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateTeaching:
		return "teaching"
	case StateClassifying:
		return "classifying"
	case StatePaused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Feedback reports the effect of a command.
type Feedback struct {
	Command Command
	State   State

	// Exemplar counts after the command.
	Background int
	Pending    int
	Classes    int

	// Distance is set by CmdCompareHalves.
	Distance float64

	// Quit is set by CmdQuit.
	Quit bool
}

func (f Feedback) String() string {
	switch f.Command {
	case CmdCompareHalves:
		return fmt.Sprintf("distance: %g", f.Distance)
	case CmdQuit:
		return "quit"
	}
	return fmt.Sprintf("%s: background %d, object classes %d, current class samples %d",
		f.State, f.Background, f.Classes, f.Pending)
}

// Session is the interactive teach-then-classify state machine driven by a
// frame loop. It owns the exemplar store and, once frozen, the classifier.
// A Session is not safe for concurrent use.
type Session struct {
	// Configuration options
	ObjectBox      int
	BackgroundTile int
	BlockSize      int
	ShowLegend     bool

	state      State
	frozen     bool
	store      *ExemplarStore
	classifier *Classifier
	last       *Result
	rng        *rand.Rand
	legend     *Legend
	logger     *zap.Logger
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*Session)

// WithObjectBox sets the side of the centered object sample square. A
// size of zero or less samples the whole frame.
func WithObjectBox(size int) SessionOption {
	return func(s *Session) {
		s.ObjectBox = size
	}
}

// WithBackgroundTile sets the side of the background sample tiles.
func WithBackgroundTile(size int) SessionOption {
	return func(s *Session) {
		s.BackgroundTile = size
	}
}

// WithClassificationBlock sets the classification block size.
func WithClassificationBlock(size int) SessionOption {
	return func(s *Session) {
		s.BlockSize = size
	}
}

// WithLegend enables or disables text overlays in Render.
func WithLegend(show bool) SessionOption {
	return func(s *Session) {
		s.ShowLegend = show
	}
}

// WithColorSeed seeds the generator for class display colors.
func WithColorSeed(seed int64) SessionOption {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSessionLogger sets the logger used by the session and its classifier.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session in the teaching state.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		ObjectBox:      DefaultObjectBox,
		BackgroundTile: DefaultBackgroundTile,
		BlockSize:      DefaultBlockSize,
		ShowLegend:     true,
		store:          NewExemplarStore(),
		legend:         NewLegend(DefaultFontSize),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Frozen reports whether the harness should stop grabbing new frames and
// keep showing the last one.
func (s *Session) Frozen() bool {
	return s.frozen
}

// Classifier returns the classifier built when classification started, or
// nil while teaching.
func (s *Session) Classifier() *Classifier {
	return s.classifier
}

// LastResult returns the most recent classification, or nil.
func (s *Session) LastResult() *Result {
	return s.last
}

// Apply executes one command against frame. Commands that sample or
// compare need a frame; the others ignore it. A rejected command leaves the
// session unchanged.
func (s *Session) Apply(cmd Command, frame *imageutil.RGBAImage) (Feedback, error) {
	var err error
	fb := Feedback{Command: cmd}

	switch cmd {
	case CmdNone:
	case CmdAddBackgroundSample:
		err = s.addBackground(frame)
	case CmdAddObjectSample:
		err = s.addObject(frame)
	case CmdNextClass:
		if err = s.requireTeaching(cmd); err == nil {
			_, err = s.store.NextClass()
		}
	case CmdToggleFreeze:
		s.frozen = !s.frozen
	case CmdToggleClassification:
		err = s.toggleClassification()
	case CmdCompareHalves:
		if frame == nil {
			err = errors.Wrap(ErrNoFrame, cmd.String())
			break
		}
		fb.Distance, err = CompareHalves(frame)
	case CmdReset:
		s.Reset()
	case CmdQuit:
		fb.Quit = true
	default:
		err = errors.Errorf("unknown command %d", int(cmd))
	}

	fb.State = s.state
	fb.Background = s.store.BackgroundCount()
	fb.Pending = s.store.PendingCount()
	fb.Classes = s.store.ClassCount()
	if err != nil {
		s.logger.Warn("command rejected", zap.Stringer("command", cmd), zap.Error(err))
		return fb, err
	}
	if cmd != CmdNone {
		s.logger.Info(fb.String(), zap.Stringer("command", cmd))
	}
	return fb, nil
}

// Reset discards every exemplar and the classifier and returns to
// teaching. The freeze toggle is kept.
func (s *Session) Reset() {
	s.store.Reset()
	s.classifier = nil
	s.last = nil
	s.state = StateTeaching
}

func (s *Session) requireTeaching(cmd Command) error {
	if s.state != StateTeaching {
		return errors.Wrapf(ErrNotTeaching, "%s while %s", cmd, s.state)
	}
	return nil
}

func (s *Session) addBackground(frame *imageutil.RGBAImage) error {
	if err := s.requireTeaching(CmdAddBackgroundSample); err != nil {
		return err
	}
	if frame == nil {
		return errors.Wrap(ErrNoFrame, "background sample")
	}
	samples, err := SampleTiles(frame, s.BackgroundTile)
	if err != nil {
		return errors.Wrap(err, "background sample")
	}
	s.store.AddBackground(samples...)
	return nil
}

func (s *Session) addObject(frame *imageutil.RGBAImage) error {
	if err := s.requireTeaching(CmdAddObjectSample); err != nil {
		return err
	}
	if frame == nil {
		return errors.Wrap(ErrNoFrame, "object sample")
	}
	rect := frame.Bounds()
	if s.ObjectBox > 0 {
		rect = CenteredRect(rect, s.ObjectBox)
	}
	d, err := SampleRegion(frame, rect)
	if err != nil {
		return errors.Wrap(err, "object sample")
	}
	s.store.AddObject(d)
	return nil
}

// toggleClassification freezes the exemplars on the first call, then
// pauses and resumes classification with the same classes and colors.
func (s *Session) toggleClassification() error {
	switch s.state {
	case StateClassifying:
		s.state = StatePaused
		return nil
	case StatePaused:
		s.state = StateClassifying
		return nil
	}

	classes, err := s.store.Freeze()
	if err != nil {
		return errors.Wrap(err, "cannot start classification")
	}
	c, err := NewClassifier(classes,
		WithBlockSize(s.BlockSize),
		WithColors(GenerateColors(len(classes), s.rng)),
		WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.classifier = c
	s.state = StateClassifying
	return nil
}

// Render produces the image to display for frame in the current state:
// the frame with the object guide while teaching, the block painting
// blended over a gray copy of the frame while classifying, and the plain
// frame while paused. The frame is not modified.
func (s *Session) Render(frame *imageutil.RGBAImage) (*imageutil.RGBAImage, error) {
	if frame == nil {
		return nil, ErrNoFrame
	}

	switch s.state {
	case StateClassifying:
		res, err := s.classifier.Classify(frame)
		if err != nil {
			return nil, err
		}
		s.last = res
		out := Overlay(frame, res.Output)
		if s.ShowLegend {
			counts := res.Labels.Counts(len(s.classifier.Classes()))
			if err := s.legend.DrawClasses(out, s.classifier.Colors(), counts); err != nil {
				return nil, err
			}
		}
		return out, nil

	case StatePaused:
		return frame.Clone(), nil
	}

	out := frame.Clone()
	DrawGuide(out, s.ObjectBox)
	if s.ShowLegend {
		lines := []string{
			fmt.Sprintf("background %d  classes %d  current %d",
				s.store.BackgroundCount(), s.store.ClassCount(), s.store.PendingCount()),
			"b background  a object  o next  r run  f freeze  x reset  q quit",
		}
		if err := s.legend.DrawLines(out, lines, GuideColor); err != nil {
			return nil, err
		}
	}
	return out, nil
}
