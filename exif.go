// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	exifHeader            = 0x45786966 // "Exif"
	tiffMagic             = 0x002a
	byteOrderBigEndian    = 0x4d4d // "MM"
	byteOrderLittleEndian = 0x4949 // "II"

	// Marker, length, "Exif\0\0".
	exifTIFFHeaderOffset = 10

	ifdEntrySize = 12
)

// DecodeEXIF is the APP1 SegmentParser.
// Segments without the "Exif\0\0" prefix, e.g. XMP, are ignored.
// Only the first EXIF segment is decoded.
func DecodeEXIF(b []byte, seg Segment, md *MetaData, opts *Options) {
	if !opts.decodes(EXIF) || md.EXIF != nil {
		return
	}

	d := &exifDecoder{
		byteReader: newByteReader(b, seg.End(), binary.BigEndian),
		opts:       opts,
		visited:    make(map[int]bool),
	}

	err := d.protect(func() {
		d.decode(seg)
	})

	if d.root != nil {
		md.EXIF = d.root
		md.EXIFByteOrder = d.byteOrder
		md.EXIFTIFFOffset = d.tiff
		if !opts.DisableEXIFOffsets {
			md.EXIFOffsets = d.root.offsets()
		}
	}

	if err != nil && err != ErrStopWalking && err != errStop {
		opts.warn(fmt.Errorf("exif: %w", err))
	}
}

type exifDecoder struct {
	*byteReader
	opts *Options

	// Absolute offset of the TIFF header.
	tiff    int
	root    *TagMap
	visited map[int]bool
}

func (d *exifDecoder) decode(seg Segment) {
	off := seg.Offset
	if !d.has(off+4, 6) || d.read4(off+4) != exifHeader || d.read2(off+8) != 0 {
		return
	}

	d.tiff = off + exifTIFFHeaderOffset

	switch d.read2(d.tiff) {
	case byteOrderBigEndian:
		d.byteOrder = binary.BigEndian
	case byteOrderLittleEndian:
		d.byteOrder = binary.LittleEndian
	default:
		d.opts.warn(newSignatureErrorf("invalid TIFF byte order mark at offset %d", d.tiff))
		return
	}

	if d.read2(d.tiff+2) != tiffMagic {
		d.opts.warn(newSignatureErrorf("invalid TIFF magic number at offset %d", d.tiff+2))
		return
	}

	ifd0 := d.read4(d.tiff + 4)

	d.root = newTagMap(EXIF, DictionaryEXIF.Namespace(), DictionaryEXIF)

	next := d.decodeIFD(d.root, d.offset(ifd0), DictionaryEXIF, true)

	// IFD1 holds the thumbnail.
	if next == 0 || d.opts.IncludeEXIFTags != nil {
		return
	}
	ifd1 := newTagMap(EXIF, subNamespace(d.root.namespace, IFDThumbnail), DictionaryEXIF)
	d.decodeSub(func() {
		d.decodeIFD(ifd1, d.offset(next), DictionaryEXIF, false)
		d.decodeThumbnail(ifd1)
	})
	if ifd1.Len() > 0 {
		d.root.setSub(IFDThumbnail, ifd1)
	}
}

// offset converts an offset relative to the TIFF header to an absolute offset.
func (d *exifDecoder) offset(v uint32) int {
	return d.tiff + int(v)
}

// decodeSub runs fn and keeps failures local to it.
func (d *exifDecoder) decodeSub(fn func()) {
	err := d.protect(fn)
	if err == nil || err == errStop {
		return
	}
	if err == ErrStopWalking {
		panic(ErrStopWalking)
	}
	d.opts.warn(fmt.Errorf("exif: %w", err))
}

// decodeIFD decodes the directory at the absolute offset dir into m.
// It returns the offset of the next directory relative to the TIFF header, or 0.
//
// A directory is a 2 byte entry count followed by the entries and a 4 byte next directory offset.
func (d *exifDecoder) decodeIFD(m *TagMap, dir int, dict *Dictionary, filtered bool) uint32 {
	if d.visited[dir] {
		d.opts.warn(fmt.Errorf("exif: directory at offset %d already visited", dir))
		return 0
	}
	d.visited[dir] = true

	if !d.has(dir, 6) {
		d.opts.warn(newTruncatedErrorf("exif: directory offset %d out of bounds", dir))
		return 0
	}

	n := int(d.read2(dir))
	dirEnd := dir + 2 + n*ifdEntrySize
	if !d.has(dirEnd, 4) {
		d.opts.warn(newTruncatedErrorf("exif: directory at offset %d with %d entries exceeds segment", dir, n))
		return 0
	}

	for i := range n {
		d.decodeEntry(m, dir+2+i*ifdEntrySize, dict, filtered)
	}

	return d.read4(dirEnd)
}

// An entry is represented in 12 bytes:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of values of the specified type
//   - 4 bytes for the value itself, if it fits, otherwise the offset of the value
//     relative to the TIFF header; for pointer tags the offset of another directory.
func (d *exifDecoder) decodeEntry(m *TagMap, entry int, dict *Dictionary, filtered bool) {
	id := d.read2(entry)

	if m == d.root {
		if sub, ok := exifIFDPointers[id]; ok {
			if d.includeTag(id) {
				d.decodePointer(sub, d.offset(d.read4(entry+8)))
			}
			return
		}
	}

	name, known := dict.Name(id)
	if !known {
		return
	}
	if filtered && !d.includeTag(id) {
		return
	}
	if !d.opts.shouldHandle(TagInfo{Source: EXIF, Tag: name, Namespace: m.namespace}) {
		return
	}

	typ := TagType(d.read2(entry + 2))
	count := d.read4(entry + 4)

	size, ok := tagTypeSize[typ]
	if !ok {
		d.opts.warn(fmt.Errorf("exif: tag %s has unknown type %d", name, typ))
		return
	}

	total := uint64(size) * uint64(count)
	if total > uint64(d.opts.LimitTagSize) {
		d.opts.warn(fmt.Errorf("exif: tag %s value of %d bytes exceeds limit %d", name, total, d.opts.LimitTagSize))
		return
	}

	valueOffset := entry + 8
	if total > 4 {
		valueOffset = d.offset(d.read4(entry + 8))
	}
	if !d.has(valueOffset, int(total)) {
		d.opts.warn(newTruncatedErrorf("exif: tag %s value at offset %d exceeds segment", name, valueOffset))
		return
	}

	m.set(Tag{
		ID:          id,
		Name:        name,
		Type:        typ,
		Count:       count,
		Offset:      entry,
		ValueOffset: valueOffset,
		Value:       d.readValues(typ, valueOffset, int(count)),
	})
}

func (d *exifDecoder) decodePointer(sub string, dir int) {
	switch sub {
	case IFDExif:
		// The Exif directory is merged into IFD0.
		d.decodeSub(func() {
			d.decodeIFD(d.root, dir, DictionaryEXIF, true)
		})
	case IFDGPSInfo, IFDInteroperability:
		dict := DictionaryGPS
		if sub == IFDInteroperability {
			dict = DictionaryInterop
		}
		m := newTagMap(EXIF, subNamespace(d.root.namespace, sub), dict)
		d.decodeSub(func() {
			d.decodeIFD(m, dir, dict, false)
		})
		if m.Len() > 0 {
			d.root.setSub(sub, m)
		}
	}
}

// decodeThumbnail replaces the JPEGInterchangeFormat offset with the thumbnail bytes
// if the thumbnail lies within the segment.
func (d *exifDecoder) decodeThumbnail(ifd1 *TagMap) {
	offsetTag, ok1 := ifd1.tags[TagJPEGInterchangeFormat]
	lengthTag, ok2 := ifd1.tags[TagJPEGInterchangeFormatLength]
	if !ok1 || !ok2 {
		return
	}
	offset, ok1 := toUint32(offsetTag.Value)
	length, ok2 := toUint32(lengthTag.Value)
	if !ok1 || !ok2 || length == 0 {
		return
	}
	start := d.offset(offset)
	if !d.has(start, int(length)) {
		d.opts.warn(newTruncatedErrorf("exif: thumbnail at offset %d with length %d exceeds segment", start, length))
		return
	}
	offsetTag.Value = bytes.Clone(d.bytes(start, int(length)))
	ifd1.set(offsetTag)
}

func (d *exifDecoder) includeTag(id uint16) bool {
	if d.opts.IncludeEXIFTags != nil && !d.opts.IncludeEXIFTags[id] {
		return false
	}
	return !d.opts.ExcludeEXIFTags[id]
}

func (d *exifDecoder) readValue(typ TagType, offset int) any {
	switch typ {
	case TagTypeUnsignedByte, TagTypeUndef:
		return d.read1(offset)
	case TagTypeSignedByte:
		return int8(d.read1(offset))
	case TagTypeUnsignedShort:
		return d.read2(offset)
	case TagTypeSignedShort:
		return int16(d.read2(offset))
	case TagTypeUnsignedLong:
		return d.read4(offset)
	case TagTypeSignedLong:
		return int32(d.read4(offset))
	case TagTypeUnsignedRat:
		return newRatRaw(d.read4(offset), d.read4(offset+4))
	case TagTypeSignedRat:
		return newRatRaw(int32(d.read4(offset)), int32(d.read4(offset+4)))
	case TagTypeFloat:
		return math.Float32frombits(d.read4(offset))
	case TagTypeDouble:
		return math.Float64frombits(d.read8(offset))
	default:
		d.stop(errors.New("unsupported type " + typ.String()))
		return nil
	}
}

func (d *exifDecoder) readValues(typ TagType, offset, count int) any {
	if count == 0 {
		return nil
	}

	switch typ {
	case TagTypeASCII:
		return cstring(d.bytes(offset, count))
	case TagTypeUnsignedByte, TagTypeUndef:
		if count > 1 {
			return bytes.Clone(d.bytes(offset, count))
		}
	}

	if count == 1 {
		return d.readValue(typ, offset)
	}

	size := int(tagTypeSize[typ])
	values := make([]any, count)
	for i := range values {
		values[i] = d.readValue(typ, offset+i*size)
	}
	return values
}
