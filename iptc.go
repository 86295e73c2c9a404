// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// "8BIM" followed by the IPTC-NAA resource id 0x0404.
var iptcResourceSignature = []byte{0x38, 0x42, 0x49, 0x4d, 0x04, 0x04}

const (
	iptcTagMarker        = 0x1c
	iptcRecordHeaderSize = 5

	characterSetUTF8     = "UTF-8"
	characterSetISO88591 = "ISO-8859-1"
)

// DecodeIPTC is the APP13 SegmentParser.
// Segments without an IPTC-NAA Photoshop resource are ignored.
// Only the first IPTC segment is decoded.
func DecodeIPTC(b []byte, seg Segment, md *MetaData, opts *Options) {
	if !opts.decodes(IPTC) || md.IPTC != nil {
		return
	}

	d := &iptcDecoder{
		byteReader:             newByteReader(b, seg.End(), binary.BigEndian),
		opts:                   opts,
		iso88591CharsetDecoder: charmap.ISO8859_1.NewDecoder(),
	}

	err := d.protect(func() {
		d.decode(seg)
	})

	if d.tags.Len() > 0 {
		md.IPTC = d.tags
		if !opts.DisableIPTCOffsets {
			md.IPTCOffsets = d.tags.offsets()
		}
	}

	if err != nil && err != ErrStopWalking && err != errStop {
		opts.warn(fmt.Errorf("iptc: %w", err))
	}
}

type iptcDecoder struct {
	*byteReader
	opts *Options

	charset                string
	iso88591CharsetDecoder *encoding.Decoder

	tags *TagMap
}

func (d *iptcDecoder) decode(seg Segment) {
	payload := seg.Offset + 4
	if payload >= d.end {
		return
	}
	i := bytes.Index(d.b[payload:d.end], iptcResourceSignature)
	if i < 0 {
		return
	}
	block := payload + i

	// The resource name is a Pascal string padded to an even length.
	nameLength := 1 + int(d.read1(block+6))
	if nameLength%2 != 0 {
		nameLength++
	}
	sizeOffset := block + 6 + nameLength
	size := d.read4(sizeOffset)
	start := sizeOffset + 4

	if uint64(size) > uint64(d.end-start) {
		d.opts.warn(newTruncatedErrorf("iptc: resource at offset %d with size %d exceeds segment", block, size))
		return
	}

	d.tags = newTagMap(IPTC, DictionaryIPTC.Namespace(), DictionaryIPTC)
	d.decodeRecords(start, start+int(size))
}

// decodeRecords scans [start, end) for records of the form
// 0x1C <record> <dataset> <size:u16> <data>.
func (d *iptcDecoder) decodeRecords(start, end int) {
	for i := start; i+iptcRecordHeaderSize <= end; {
		if d.read1(i) != iptcTagMarker {
			i++
			continue
		}
		record := d.read1(i + 1)
		dataset := d.read1(i + 2)
		size := int(d.read2(i + 3))
		if size&0x8000 != 0 {
			d.opts.warn(fmt.Errorf("iptc: extended dataset %d:%d at offset %d not supported", record, dataset, i))
			return
		}
		dataStart := i + iptcRecordHeaderSize
		if dataStart+size > end {
			d.opts.warn(newTruncatedErrorf("iptc: dataset %d:%d at offset %d with size %d exceeds resource", record, dataset, i, size))
			return
		}
		d.decodeRecord(record, dataset, i, d.bytes(dataStart, size))
		i = dataStart + size
	}
}

func (d *iptcDecoder) decodeRecord(record, dataset uint8, offset int, data []byte) {
	if record == iptcRecordEnvelope && dataset == iptcCodedCharacterSet {
		d.charset = resolveCodedCharacterSet(data)
		return
	}
	if record != iptcRecordApplication {
		return
	}

	field, ok := getIptcRecordFieldDef(record, dataset)
	if !ok {
		return
	}
	id := uint16(dataset)
	if !d.includeTag(id) {
		return
	}
	if !d.opts.shouldHandle(TagInfo{Source: IPTC, Tag: field.Name, Namespace: d.tags.namespace}) {
		return
	}
	if len(data) > int(d.opts.LimitTagSize) {
		d.opts.warn(fmt.Errorf("iptc: %s value of %d bytes exceeds limit %d", field.Name, len(data), d.opts.LimitTagSize))
		return
	}

	var v any
	switch field.Format {
	case iptcFormatShort:
		switch len(data) {
		case 0:
			v = uint16(0)
		case 1:
			v = uint16(data[0])
		default:
			v = binary.BigEndian.Uint16(data)
		}
	case iptcFormatBinary:
		v = bytes.Clone(data)
	default:
		v = d.decodeString(data)
	}

	count := uint32(1)
	existing, seen := d.tags.tags[id]
	switch {
	case seen:
		v = appendValue(existing.Value, v)
		count = existing.Count + 1
	case field.Repeatable:
		if s, ok := v.(string); ok {
			v = []string{s}
		}
	}

	d.tags.set(Tag{
		ID:          id,
		Name:        field.Name,
		Count:       count,
		Offset:      offset,
		ValueOffset: offset + iptcRecordHeaderSize,
		Value:       v,
	})
}

func (d *iptcDecoder) decodeString(data []byte) string {
	data = bytes.TrimRight(data, "\x00")
	if d.charset == characterSetUTF8 {
		return string(data)
	}
	s, err := d.iso88591CharsetDecoder.Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(s)
}

func (d *iptcDecoder) includeTag(id uint16) bool {
	if d.opts.IncludeIPTCTags != nil && !d.opts.IncludeIPTCTags[id] {
		return false
	}
	return !d.opts.ExcludeIPTCTags[id]
}

// appendValue accumulates repeated record values in order.
// Repeated strings become a []string.
func appendValue(existing, v any) any {
	s, isString := v.(string)
	switch vv := existing.(type) {
	case []string:
		if isString {
			return append(vv, s)
		}
	case string:
		if isString {
			return []string{vv, s}
		}
	case []any:
		return append(vv, v)
	}
	return []any{existing, v}
}

func iptcText(_ string, v any) string {
	switch vv := v.(type) {
	case uint16:
		return strconv.Itoa(int(vv))
	case []byte:
		return exifConverters.convertBinaryData(vv)
	default:
		return toString(v)
	}
}

// resolveCodedCharacterSet resolves the ISO 2022 escape sequence in the
// IPTC CodedCharacterSet record to UTF-8, ISO-8859-1 or an empty string.
func resolveCodedCharacterSet(b []byte) string {
	const (
		esc           = 0x1B
		percent       = 0x25
		latinCapitalG = 0x47
		dot           = 0x2E
		latinCapitalA = 0x41
		minus         = 0x2D
	)

	if len(b) < 3 || b[0] != esc {
		return ""
	}

	switch {
	case b[1] == percent && b[2] == latinCapitalG:
		return characterSetUTF8
	case (b[1] == dot || b[1] == minus) && b[2] == latinCapitalA:
		return characterSetISO88591
	case len(b) > 4 && (b[2] == dot || b[3] == dot) && b[4] == latinCapitalA:
		return characterSetISO88591
	}

	return ""
}
