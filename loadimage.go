// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package loadimage reads EXIF and IPTC metadata from JPEG buffers, rewrites
// single EXIF values in place, splices image heads, and plans the
// scale/crop/orientation transform needed to render an image.
package loadimage

import (
	"bytes"
	"encoding/binary"
)

const (
	defaultLimitNumTags = 5000
	defaultLimitTagSize = 10000
)

// Options contains the options for ParseMetaData.
type Options struct {
	// Parsers is the marker to parser registry used.
	// If nil, DefaultParsers is used. Set it to an empty Parsers to only compute the image head.
	Parsers Parsers

	// Sources is a bitmask of the metadata sources to decode.
	// If zero, EXIF and IPTC are decoded.
	Sources Source

	// Feature toggles. DisableEXIF and DisableIPTC remove their source from Sources.
	DisableEXIF        bool
	DisableEXIFOffsets bool
	DisableIPTC        bool
	DisableIPTCOffsets bool
	DisableImageHead   bool

	// IncludeEXIFTags, if set, restricts IFD0 and Exif tags to these ids.
	// The GPSInfo and Interoperability directories are only read if their
	// pointer tag is included; the thumbnail directory is skipped.
	IncludeEXIFTags map[uint16]bool

	// ExcludeEXIFTags skips these tag ids in IFD0 and Exif.
	// If nil, MakerNote is excluded. Set it to an empty map to include everything.
	ExcludeEXIFTags map[uint16]bool

	// IncludeIPTCTags and ExcludeIPTCTags filter IPTC application records by dataset number.
	IncludeIPTCTags map[uint16]bool
	ExcludeIPTCTags map[uint16]bool

	// If set, the decoders skip tags for which this function returns false.
	ShouldHandleTag func(tag TagInfo) bool

	// LimitNumTags is the maximum number of tags to read.
	// Default value is 5000.
	LimitNumTags uint32

	// LimitTagSize is the maximum size in bytes of a tag value to read.
	// Tag values larger than this will be skipped with a warning.
	// Default value is 10000.
	LimitTagSize uint32

	// Warnf will be called for each warning.
	Warnf func(string, ...any)

	tagCount uint32
}

func (o Options) withDefaults() Options {
	if o.Parsers == nil {
		o.Parsers = DefaultParsers()
	}
	if o.ExcludeEXIFTags == nil {
		o.ExcludeEXIFTags = map[uint16]bool{TagMakerNote: true}
	}
	if o.LimitNumTags == 0 {
		o.LimitNumTags = defaultLimitNumTags
	}
	if o.LimitTagSize == 0 {
		o.LimitTagSize = defaultLimitTagSize
	}
	if o.Warnf == nil {
		o.Warnf = func(string, ...any) {}
	}
	o.tagCount = 0
	return o
}

// shouldHandle applies the tag limit and the user filter.
// It panics with ErrStopWalking when the tag limit is reached.
func (o *Options) shouldHandle(ti TagInfo) bool {
	o.tagCount++
	if o.tagCount > o.LimitNumTags {
		panic(ErrStopWalking)
	}
	if o.ShouldHandleTag == nil {
		return true
	}
	return o.ShouldHandleTag(ti)
}

// decodes reports whether the source s is enabled.
func (o *Options) decodes(s Source) bool {
	sources := o.Sources
	if sources.IsZero() {
		sources = EXIF | IPTC
	}
	if o.DisableEXIF {
		sources = sources.Remove(EXIF)
	}
	if o.DisableIPTC {
		sources = sources.Remove(IPTC)
	}
	return sources.Has(s)
}

func (o *Options) warn(err error) {
	o.Warnf("%v", err)
}

// MetaData is the result of ParseMetaData.
// All offsets are absolute offsets into the parsed buffer and into ImageHead.
type MetaData struct {
	// EXIF holds IFD0 merged with the Exif sub directory.
	// GPSInfo, Interoperability and Thumbnail are available via EXIF.Sub.
	EXIF *TagMap

	// EXIFOffsets maps IFD0 and Exif tag names to the offset of their IFD entry.
	EXIFOffsets map[string]int

	// EXIFByteOrder is the byte order of the TIFF structure.
	EXIFByteOrder binary.ByteOrder

	// EXIFTIFFOffset is the offset of the TIFF header, the base of all EXIF offsets.
	EXIFTIFFOffset int

	// IPTC holds the IPTC application records.
	IPTC *TagMap

	// IPTCOffsets maps IPTC tag names to the offset of their record header.
	IPTCOffsets map[string]int

	// ImageHead is a copy of the bytes before the compressed image data.
	// It is only set if the buffer has metadata segments.
	ImageHead []byte

	// Segments holds the metadata segments found.
	Segments []Segment
}

// ParseMetaData parses the metadata segments of the JPEG buffer b.
// Segment and tag level problems are reported through opts.Warnf; the only
// error returned is ErrMalformedHeader.
func ParseMetaData(b []byte, opts Options) (*MetaData, error) {
	opts = opts.withDefaults()

	scan, err := ScanSegments(b, opts.Warnf)
	if err != nil {
		return nil, err
	}

	md := &MetaData{Segments: scan.Segments}

	for _, seg := range scan.Segments {
		for _, parse := range opts.Parsers[seg.Marker] {
			parse(b, seg, md, &opts)
		}
	}

	if !opts.DisableImageHead && scan.HeadLength > minImageHeadLength {
		md.ImageHead = bytes.Clone(b[:scan.HeadLength])
	}

	return md, nil
}

// Thumbnail returns the embedded EXIF thumbnail, or nil.
func (md *MetaData) Thumbnail() []byte {
	if md == nil {
		return nil
	}
	v, ok := md.EXIF.Sub(IFDThumbnail).GetID(TagJPEGInterchangeFormat)
	if !ok {
		return nil
	}
	b, _ := v.([]byte)
	return b
}

// Orientation returns the EXIF orientation, or OrientationUnspecified if not set.
func (md *MetaData) Orientation() Orientation {
	if md == nil {
		return OrientationUnspecified
	}
	v, ok := md.EXIF.GetID(TagOrientation)
	if !ok {
		return OrientationUnspecified
	}
	n, ok := toUint32(v)
	if !ok || n > 8 {
		return OrientationUnspecified
	}
	return Orientation(n)
}

// Tags returns all decoded tags, excluding the thumbnail directory.
func (md *MetaData) Tags() Tags {
	var tags Tags
	add := func(ti TagInfo) error {
		if ti.Namespace == subNamespace(DictionaryEXIF.Namespace(), IFDThumbnail) {
			return nil
		}
		tags.Add(ti)
		return nil
	}
	md.EXIF.walk(add)
	md.IPTC.walk(add)
	return tags
}
