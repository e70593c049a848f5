package plate

import "errors"

var (
	// ErrInvalidInput is returned when an image has the wrong shape for a
	// stage, e.g. a colour image passed to the Binarizer.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrMissingImageData is returned when a region without pixels is passed
	// to the DigitSegmenter.
	ErrMissingImageData = errors.New("region has no image data")

	// ErrInvalidConfig is returned by constructors and Config.Validate when a
	// threshold is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)
