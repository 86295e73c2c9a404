// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when the buffer does not start with a JPEG SOI marker.
	ErrMalformedHeader = errors.New("loadimage: missing JPEG start of image marker")

	// ErrTruncatedSegment is reported when a segment or a value would overrun its buffer.
	ErrTruncatedSegment = errors.New("loadimage: truncated segment")

	// ErrUnsupportedSignature is reported when a segment does not carry the expected signature.
	ErrUnsupportedSignature = errors.New("loadimage: unsupported signature")

	// ErrUnknownTag is returned when writing a tag that was not decoded.
	ErrUnknownTag = errors.New("loadimage: unknown tag")

	// ErrUnsupportedTagType is returned when writing a tag whose type cannot be overwritten in place.
	ErrUnsupportedTagType = errors.New("loadimage: unsupported tag type")

	// ErrValueOutOfRange is returned when a new tag value does not fit the stored type width.
	ErrValueOutOfRange = errors.New("loadimage: value out of range")

	// ErrStopWalking is a sentinel error to signal that a tag walk should stop.
	ErrStopWalking = errors.New("stop walking")

	// Internal error to abort the current segment.
	errStop = errors.New("stop")
)

// IsInvalidFormat reports whether err signals that the input was not a well-formed JPEG.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrMalformedHeader)
}

func newTruncatedErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTruncatedSegment, fmt.Sprintf(format, args...))
}

func newSignatureErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedSignature, fmt.Sprintf(format, args...))
}
