// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"fmt"
	"math"
)

// WriteEXIFTag overwrites the value of the named IFD0 or Exif tag in b and returns b.
//
// b must be the buffer md was parsed from, or a prefix of it such as md.ImageHead.
// The value is written at the recorded value offset, with the recorded byte order
// and type width, so the byte layout never changes. Only single value integer
// tags of type Byte, SByte, Undefined, Short, SShort, Long and SLong can be written;
// value must fit the stored type, e.g. -128 to 127 for SByte.
func WriteEXIFTag(b []byte, md *MetaData, name string, value int64) ([]byte, error) {
	if md == nil || md.EXIF == nil || md.EXIFByteOrder == nil {
		return b, fmt.Errorf("%w: %q", ErrUnknownTag, name)
	}

	t, ok := md.EXIF.Tag(name)
	if !ok {
		return b, fmt.Errorf("%w: %q", ErrUnknownTag, name)
	}

	if t.Count != 1 {
		return b, fmt.Errorf("%w: %s has %d values", ErrUnsupportedTagType, t.Name, t.Count)
	}

	var (
		width  int
		lo, hi int64
	)

	switch t.Type {
	case TagTypeUnsignedByte, TagTypeUndef:
		width, lo, hi = 1, 0, math.MaxUint8
	case TagTypeSignedByte:
		width, lo, hi = 1, math.MinInt8, math.MaxInt8
	case TagTypeUnsignedShort:
		width, lo, hi = 2, 0, math.MaxUint16
	case TagTypeSignedShort:
		width, lo, hi = 2, math.MinInt16, math.MaxInt16
	case TagTypeUnsignedLong:
		width, lo, hi = 4, 0, math.MaxUint32
	case TagTypeSignedLong:
		width, lo, hi = 4, math.MinInt32, math.MaxInt32
	default:
		return b, fmt.Errorf("%w: %s is %s", ErrUnsupportedTagType, t.Name, t.Type)
	}

	if value < lo || value > hi {
		return b, fmt.Errorf("%w: %d does not fit %s %s", ErrValueOutOfRange, value, t.Name, t.Type)
	}

	off := t.ValueOffset
	if off < 0 || off+width > len(b) {
		return b, newTruncatedErrorf("value of %s at offset %d is outside buffer of length %d", t.Name, off, len(b))
	}

	switch width {
	case 1:
		b[off] = byte(value)
	case 2:
		md.EXIFByteOrder.PutUint16(b[off:], uint16(value))
	case 4:
		md.EXIFByteOrder.PutUint32(b[off:], uint32(value))
	}

	return b, nil
}
