package colorseg

import "github.com/pkg/errors"

// Rejected operations. None of these is fatal: the harness keeps running in
// teaching mode and the operator can try again.
var (
	// ErrEmptyRegion is returned for a sample rectangle with zero area, or
	// when a histogram with no samples is finished.
	ErrEmptyRegion = errors.New("empty sample region")

	// ErrNoExemplars is returned when classification would run against a
	// class with no exemplars, or against no classes at all.
	ErrNoExemplars = errors.New("class has no exemplars")

	// ErrInvalidBlockSize is returned for block sizes below one pixel.
	ErrInvalidBlockSize = errors.New("block size must be positive")

	// ErrClassIndex is returned when an exemplar is added to a class index
	// that is neither existing nor the next new class.
	ErrClassIndex = errors.New("class index out of range")

	// ErrNotTeaching is returned for teaching commands issued once the class
	// list has been frozen.
	ErrNotTeaching = errors.New("session is not teaching")

	// ErrNoFrame is returned when a command needs a frame and none was given.
	ErrNoFrame = errors.New("no frame")
)
