// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"encoding/binary"
	"fmt"
)

// Marker is a JPEG marker.
type Marker uint16

const (
	MarkerSOI   Marker = 0xffd8
	MarkerEOI   Marker = 0xffd9
	MarkerSOS   Marker = 0xffda
	MarkerDQT   Marker = 0xffdb
	MarkerDHT   Marker = 0xffc4
	MarkerSOF0  Marker = 0xffc0
	MarkerSOF2  Marker = 0xffc2
	MarkerAPP0  Marker = 0xffe0
	MarkerAPP1  Marker = 0xffe1
	MarkerAPP2  Marker = 0xffe2
	MarkerAPP13 Marker = 0xffed
	MarkerAPP14 Marker = 0xffee
	MarkerAPP15 Marker = 0xffef
	MarkerCOM   Marker = 0xfffe
)

var markerNames = map[Marker]string{
	MarkerSOI:  "SOI",
	MarkerEOI:  "EOI",
	MarkerSOS:  "SOS",
	MarkerDQT:  "DQT",
	MarkerDHT:  "DHT",
	MarkerSOF0: "SOF0",
	MarkerSOF2: "SOF2",
	MarkerCOM:  "COM",
}

// IsAPPn reports whether m is one of the application markers APP0 to APP15.
func (m Marker) IsAPPn() bool {
	return m >= MarkerAPP0 && m <= MarkerAPP15
}

// IsMetadata reports whether m can carry metadata, i.e. APPn or COM.
func (m Marker) IsMetadata() bool {
	return m.IsAPPn() || m == MarkerCOM
}

func (m Marker) String() string {
	if m.IsAPPn() {
		return fmt.Sprintf("APP%d", m-MarkerAPP0)
	}
	if s, ok := markerNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Marker(0x%04x)", uint16(m))
}

// Segment is a metadata segment in a JPEG buffer.
type Segment struct {
	Marker Marker
	// Offset points at the marker bytes.
	Offset int
	// Length is the declared length, including the length field itself
	// but not the two marker bytes.
	Length int
}

// End returns the offset of the first byte after the segment.
func (s Segment) End() int {
	return s.Offset + 2 + s.Length
}

// Payload returns the segment bytes after the length field.
func (s Segment) Payload(b []byte) []byte {
	return b[s.Offset+4 : s.End()]
}

// Scan is the result of walking the marker structure of a JPEG buffer.
type Scan struct {
	// Segments holds the accepted APPn and COM segments in buffer order.
	Segments []Segment
	// HeadLength is the offset immediately after the last accepted segment.
	// It is 2 (just the SOI marker) when no segment was accepted.
	HeadLength int
}

// minImageHeadLength is the smallest head length reported as an image head.
const minImageHeadLength = 6

// ScanSegments walks the metadata segments at the start of the JPEG buffer b.
// It returns ErrMalformedHeader if b does not start with SOI. A segment whose
// declared length overruns b is reported through warnf and the walk resumes at
// the next APPn or COM marker; otherwise the walk stops at the first marker
// that is neither APPn nor COM.
func ScanSegments(b []byte, warnf func(string, ...any)) (Scan, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	if len(b) < 2 || Marker(binary.BigEndian.Uint16(b)) != MarkerSOI {
		return Scan{}, ErrMalformedHeader
	}

	scan := Scan{HeadLength: 2}
	offset := 2

	for offset+4 <= len(b) {
		marker := Marker(binary.BigEndian.Uint16(b[offset:]))
		if !marker.IsMetadata() {
			break
		}
		length := int(binary.BigEndian.Uint16(b[offset+2:]))
		if length < 2 || offset+2+length > len(b) {
			warnf("%v", newTruncatedErrorf("%s segment at offset %d with length %d exceeds buffer length %d", marker, offset, length, len(b)))
			next := nextMetadataMarker(b, offset+1)
			if next < 0 {
				break
			}
			offset = next
			continue
		}
		scan.Segments = append(scan.Segments, Segment{Marker: marker, Offset: offset, Length: length})
		offset += 2 + length
		scan.HeadLength = offset
	}

	return scan, nil
}

// nextMetadataMarker returns the offset of the next APPn or COM marker in b
// at or after from, or -1.
func nextMetadataMarker(b []byte, from int) int {
	for i := from; i+4 <= len(b); i++ {
		if b[i] == 0xff && Marker(binary.BigEndian.Uint16(b[i:])).IsMetadata() {
			return i
		}
	}
	return -1
}

// SegmentParser decodes one segment of b into md.
// Parsers must not fail the overall parse; problems are reported through opts.Warnf.
type SegmentParser func(b []byte, seg Segment, md *MetaData, opts *Options)

// Parsers is a marker to parser registry.
// The zero value is an empty registry; see DefaultParsers.
type Parsers map[Marker][]SegmentParser

// DefaultParsers returns a new registry with the EXIF (APP1) and IPTC (APP13) parsers.
func DefaultParsers() Parsers {
	p := make(Parsers)
	p.Register(MarkerAPP1, DecodeEXIF)
	p.Register(MarkerAPP13, DecodeIPTC)
	return p
}

// Register adds parser to the list of parsers for marker.
func (p Parsers) Register(marker Marker, parser SegmentParser) {
	p[marker] = append(p[marker], parser)
}

// HeadLength returns the length of the image head of b, the bytes before the compressed image data.
func HeadLength(b []byte) (int, error) {
	scan, err := ScanSegments(b, nil)
	if err != nil {
		return 0, err
	}
	return scan.HeadLength, nil
}
