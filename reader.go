// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import "encoding/binary"

// byteReader provides bounds checked random access reads into a buffer.
// All offsets are absolute buffer offsets. Reads at or beyond end stop the
// current decode by panicking with errStop; use protect to recover.
// Note that this is not thread safe.
type byteReader struct {
	b         []byte
	end       int
	byteOrder binary.ByteOrder

	readErr error
}

func newByteReader(b []byte, end int, byteOrder binary.ByteOrder) *byteReader {
	if end > len(b) || end < 0 {
		end = len(b)
	}
	return &byteReader{b: b, end: end, byteOrder: byteOrder}
}

func (r *byteReader) has(offset, n int) bool {
	return offset >= 0 && n >= 0 && offset <= r.end-n
}

func (r *byteReader) check(offset, n int) {
	if !r.has(offset, n) {
		r.stop(newTruncatedErrorf("read of %d bytes at offset %d exceeds limit %d", n, offset, r.end))
	}
}

func (r *byteReader) read1(offset int) uint8 {
	r.check(offset, 1)
	return r.b[offset]
}

func (r *byteReader) read2(offset int) uint16 {
	r.check(offset, 2)
	return r.byteOrder.Uint16(r.b[offset:])
}

func (r *byteReader) read4(offset int) uint32 {
	r.check(offset, 4)
	return r.byteOrder.Uint32(r.b[offset:])
}

func (r *byteReader) read8(offset int) uint64 {
	r.check(offset, 8)
	return r.byteOrder.Uint64(r.b[offset:])
}

// bytes returns a slice of the underlying buffer, not a copy.
func (r *byteReader) bytes(offset, n int) []byte {
	r.check(offset, n)
	return r.b[offset : offset+n]
}

func (r *byteReader) stop(err error) {
	if err != nil {
		r.readErr = err
	}
	panic(errStop)
}

// protect runs fn and converts an errStop panic into the recorded read error.
// Any other panic is re-raised.
func (r *byteReader) protect(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == errStop {
				err = r.readErr
				if err == nil {
					err = errStop
				}
				return
			}
			if e, ok := rec.(error); ok && e == ErrStopWalking {
				err = ErrStopWalking
				return
			}
			panic(rec)
		}
	}()
	fn()
	return nil
}
