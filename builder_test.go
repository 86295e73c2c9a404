// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/bep/loadimage"
)

// entry is an IFD entry. data holds the encoded value(s).
type entry struct {
	id    uint16
	typ   loadimage.TagType
	count uint32
	data  []byte
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// tiffBuilder lays out a TIFF structure:
// header, IFD0, the Exif IFD, the GPS IFD, IFD1 and the thumbnail, in that order.
type tiffBuilder struct {
	order byteOrder

	ifd0  []entry
	exif  []entry
	gps   []entry
	ifd1  []entry
	thumb []byte
}

func (tb *tiffBuilder) short(id uint16, v ...uint16) entry {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		tb.order.PutUint16(b[i*2:], x)
	}
	return entry{id: id, typ: loadimage.TagTypeUnsignedShort, count: uint32(len(v)), data: b}
}

func (tb *tiffBuilder) long(id uint16, v ...uint32) entry {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		tb.order.PutUint32(b[i*4:], x)
	}
	return entry{id: id, typ: loadimage.TagTypeUnsignedLong, count: uint32(len(v)), data: b}
}

// rat takes num, den pairs.
func (tb *tiffBuilder) rat(id uint16, v ...uint32) entry {
	e := tb.long(id, v...)
	e.typ = loadimage.TagTypeUnsignedRat
	e.count = uint32(len(v) / 2)
	return e
}

func (tb *tiffBuilder) ascii(id uint16, s string) entry {
	b := append([]byte(s), 0)
	return entry{id: id, typ: loadimage.TagTypeASCII, count: uint32(len(b)), data: b}
}

func (tb *tiffBuilder) undef(id uint16, b []byte) entry {
	return entry{id: id, typ: loadimage.TagTypeUndef, count: uint32(len(b)), data: b}
}

func dirSize(entries []entry) int {
	if len(entries) == 0 {
		return 0
	}
	n := 2 + len(entries)*12 + 4
	for _, e := range entries {
		if len(e.data) > 4 {
			n += len(e.data) + len(e.data)%2
		}
	}
	return n
}

// bytes returns the TIFF structure.
func (tb *tiffBuilder) bytes() []byte {
	ifd0 := slices.Clone(tb.ifd0)
	if len(tb.exif) > 0 {
		ifd0 = append(ifd0, tb.long(loadimage.TagExifIFDPointer, 0))
	}
	if len(tb.gps) > 0 {
		ifd0 = append(ifd0, tb.long(loadimage.TagGPSInfoIFDPointer, 0))
	}
	ifd1 := slices.Clone(tb.ifd1)
	if tb.thumb != nil {
		ifd1 = append(ifd1,
			tb.long(loadimage.TagJPEGInterchangeFormat, 0),
			tb.long(loadimage.TagJPEGInterchangeFormatLength, uint32(len(tb.thumb))),
		)
	}

	offIFD0 := 8
	offExif := offIFD0 + dirSize(ifd0)
	offGPS := offExif + dirSize(tb.exif)
	offIFD1 := offGPS + dirSize(tb.gps)
	offThumb := offIFD1 + dirSize(ifd1)

	setLong := func(entries []entry, id uint16, v uint32) {
		for i, e := range entries {
			if e.id == id {
				entries[i] = tb.long(id, v)
			}
		}
	}
	// Pointers given by the caller are kept as is.
	if len(tb.exif) > 0 {
		setLong(ifd0, loadimage.TagExifIFDPointer, uint32(offExif))
	}
	if len(tb.gps) > 0 {
		setLong(ifd0, loadimage.TagGPSInfoIFDPointer, uint32(offGPS))
	}
	setLong(ifd1, loadimage.TagJPEGInterchangeFormat, uint32(offThumb))

	b := make([]byte, 8)
	if tb.order == binary.LittleEndian {
		copy(b, "II")
	} else {
		copy(b, "MM")
	}
	tb.order.PutUint16(b[2:], 0x2a)
	tb.order.PutUint32(b[4:], uint32(offIFD0))

	writeDir := func(entries []entry, next int) {
		if len(entries) == 0 {
			return
		}
		start := len(b)
		dataOffset := start + 2 + len(entries)*12 + 4
		var data []byte
		b = tb.order.AppendUint16(b, uint16(len(entries)))
		for _, e := range entries {
			b = tb.order.AppendUint16(b, e.id)
			b = tb.order.AppendUint16(b, uint16(e.typ))
			b = tb.order.AppendUint32(b, e.count)
			if len(e.data) <= 4 {
				v := make([]byte, 4)
				copy(v, e.data)
				b = append(b, v...)
				continue
			}
			b = tb.order.AppendUint32(b, uint32(dataOffset+len(data)))
			data = append(data, e.data...)
			if len(e.data)%2 != 0 {
				data = append(data, 0)
			}
		}
		b = tb.order.AppendUint32(b, uint32(next))
		b = append(b, data...)
	}

	next := 0
	if len(ifd1) > 0 {
		next = offIFD1
	}
	writeDir(ifd0, next)
	writeDir(tb.exif, 0)
	writeDir(tb.gps, 0)
	writeDir(ifd1, 0)
	b = append(b, tb.thumb...)

	return b
}

func segment(marker loadimage.Marker, payload []byte) []byte {
	b := binary.BigEndian.AppendUint16(nil, uint16(marker))
	b = binary.BigEndian.AppendUint16(b, uint16(len(payload)+2))
	return append(b, payload...)
}

func app1EXIF(tiff []byte) []byte {
	return segment(loadimage.MarkerAPP1, append([]byte("Exif\x00\x00"), tiff...))
}

// iptcRecord returns an IPTC dataset.
func iptcRecord(record, dataset uint8, data []byte) []byte {
	b := []byte{0x1c, record, dataset}
	b = binary.BigEndian.AppendUint16(b, uint16(len(data)))
	return append(b, data...)
}

func app13IPTC(records ...[]byte) []byte {
	var data []byte
	for _, r := range records {
		data = append(data, r...)
	}
	p := []byte("Photoshop 3.0\x00")
	p = append(p, "8BIM"...)
	p = append(p, 0x04, 0x04, 0x00, 0x00)
	p = binary.BigEndian.AppendUint32(p, uint32(len(data)))
	p = append(p, data...)
	if len(data)%2 != 0 {
		p = append(p, 0)
	}
	return segment(loadimage.MarkerAPP13, p)
}

// imageBody is a stand in for the compressed image data.
var imageBody = []byte{0xff, 0xdb, 0x00, 0x04, 0x01, 0x02, 0xff, 0xd9}

func jpeg(segments ...[]byte) []byte {
	b := []byte{0xff, 0xd8}
	for _, s := range segments {
		b = append(b, s...)
	}
	return append(b, imageBody...)
}

func readTestDataFile(t testing.TB, filename string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "images", filename))
	if err != nil {
		t.Fatalf("failed to read file %q: %v", filename, err)
	}
	return b
}

// warnings collects the warnings of a parse.
type warnings []string

func (w *warnings) warnf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}
