package sampleio

import "errors"

var (
	// ErrInvalidMode reports an unsupported mode combination or an operation
	// the file was not opened for.
	ErrInvalidMode = errors.New("sampleio: invalid file mode")
	// ErrClosed is returned for operations on a closed file.
	ErrClosed = errors.New("sampleio: file already closed")
	// ErrShortRead is returned when the file ends before the requested data.
	ErrShortRead = errors.New("sampleio: short read")
	// ErrLengthMismatch is returned when a sample set has unequal x and y.
	ErrLengthMismatch = errors.New("sampleio: x and y lengths differ")
)
