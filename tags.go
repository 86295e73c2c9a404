// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"fmt"
	"maps"
	"math"
	"path"
	"slices"
	"time"
)

const (
	// EXIF is the EXIF tag source.
	EXIF Source = 1 << iota
	// IPTC is the IPTC tag source.
	IPTC
)

// Source is a bitmask and you may combine multiple sources.
type Source uint32

// Remove removes the given source.
func (t Source) Remove(source Source) Source {
	t &= ^source
	return t
}

// Has returns true if the given source is set.
func (t Source) Has(source Source) bool {
	return t&source != 0
}

// IsZero returns true if the source is zero.
func (t Source) IsZero() bool {
	return t == 0
}

func (t Source) String() string {
	switch t {
	case EXIF:
		return "EXIF"
	case IPTC:
		return "IPTC"
	default:
		return fmt.Sprintf("Source(%d)", uint32(t))
	}
}

// Tag is a decoded tag with its location in the buffer it was decoded from.
type Tag struct {
	// The tag id. For IPTC this is the dataset number.
	ID uint16
	// The canonical tag name.
	Name string
	// The EXIF data type. Zero for IPTC.
	Type TagType
	// The number of values stored.
	Count uint32
	// Absolute offset of the IFD entry (EXIF) or record header (IPTC).
	// For repeated IPTC records this is the last occurrence.
	Offset int
	// Absolute offset of the stored value.
	ValueOffset int
	// The decoded value.
	Value any
}

// TagMap holds the decoded values of one tag namespace.
// Names are resolved through an immutable Dictionary.
// A nil *TagMap is valid and empty.
type TagMap struct {
	source    Source
	namespace string
	dict      *Dictionary
	tags      map[uint16]Tag
	subs      map[string]*TagMap
	text      func(name string, v any) string
}

func newTagMap(source Source, namespace string, dict *Dictionary) *TagMap {
	m := &TagMap{
		source:    source,
		namespace: namespace,
		dict:      dict,
		tags:      make(map[uint16]Tag),
	}
	if source == EXIF {
		m.text = exifText
	} else {
		m.text = iptcText
	}
	return m
}

func (m *TagMap) set(t Tag) {
	m.tags[t.ID] = t
}

func (m *TagMap) setSub(name string, sub *TagMap) {
	if m.subs == nil {
		m.subs = make(map[string]*TagMap)
	}
	m.subs[name] = sub
}

// Namespace returns the namespace of this map, e.g. "IFD0" or "IFD0/GPSInfo".
func (m *TagMap) Namespace() string {
	if m == nil {
		return ""
	}
	return m.namespace
}

// Tag returns the decoded tag for a name or alias.
func (m *TagMap) Tag(name string) (Tag, bool) {
	if m == nil {
		return Tag{}, false
	}
	id, ok := m.dict.ID(name)
	if !ok {
		return Tag{}, false
	}
	t, ok := m.tags[id]
	return t, ok
}

// Get returns the value of a tag by name or alias.
// If name is the name of a nested directory, e.g. "GPSInfo", the nested *TagMap is returned.
func (m *TagMap) Get(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if t, ok := m.Tag(name); ok {
		return t.Value, true
	}
	if sub, ok := m.subs[name]; ok {
		return sub, true
	}
	return nil, false
}

// GetID returns the value of a tag by id.
func (m *TagMap) GetID(id uint16) (any, bool) {
	if m == nil {
		return nil, false
	}
	t, ok := m.tags[id]
	return t.Value, ok
}

// Sub returns the nested directory with the given name or nil.
func (m *TagMap) Sub(name string) *TagMap {
	if m == nil {
		return nil
	}
	return m.subs[name]
}

// Text returns the human readable text of the named tag, or an empty string if not set.
func (m *TagMap) Text(name string) string {
	t, ok := m.Tag(name)
	if !ok {
		return ""
	}
	return m.text(t.Name, t.Value)
}

// All returns a name to human readable text projection of the tags in this map.
// Nested directories are not included, see Sub.
func (m *TagMap) All() map[string]string {
	if m == nil {
		return nil
	}
	all := make(map[string]string, len(m.tags))
	for _, t := range m.tags {
		all[t.Name] = m.text(t.Name, t.Value)
	}
	return all
}

// Names returns the sorted names of the tags in this map.
func (m *TagMap) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.tags))
	for _, t := range m.tags {
		names = append(names, t.Name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of tags in this map, not counting nested directories.
func (m *TagMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tags)
}

// offsets returns a name to entry offset projection.
func (m *TagMap) offsets() map[string]int {
	offsets := make(map[string]int, len(m.tags))
	for _, t := range m.tags {
		offsets[t.Name] = t.Offset
	}
	return offsets
}

// walk calls fn for every tag in this map and its nested directories.
func (m *TagMap) walk(fn func(TagInfo) error) error {
	if m == nil {
		return nil
	}
	ids := slices.Sorted(maps.Keys(m.tags))
	for _, id := range ids {
		t := m.tags[id]
		if err := fn(TagInfo{Source: m.source, Tag: t.Name, Namespace: m.namespace, Value: t.Value}); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(m.subs)) {
		if err := m.subs[name].walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// TagInfo contains information about a tag.
type TagInfo struct {
	// The tag source.
	Source Source
	// The tag name.
	Tag string
	// The tag namespace.
	// For EXIF, this is the path to the IFD, e.g. "IFD0/GPSInfo".
	// For IPTC, this is the record name, e.g. "IPTCApplication".
	Namespace string
	// The tag value.
	Value any
}

// Tags is a collection of tags grouped per source.
type Tags struct {
	exif map[string]TagInfo
	iptc map[string]TagInfo
}

// Add adds a tag to the correct source.
func (t *Tags) Add(tag TagInfo) {
	if m := t.getSourceMap(tag.Source); m != nil {
		m[tag.Tag] = tag
	}
}

// Has reports if a tag is already added.
func (t *Tags) Has(tag TagInfo) bool {
	_, found := t.getSourceMap(tag.Source)[tag.Tag]
	return found
}

// EXIF returns the EXIF tags.
func (t *Tags) EXIF() map[string]TagInfo {
	if t.exif == nil {
		t.exif = make(map[string]TagInfo)
	}
	return t.exif
}

// IPTC returns the IPTC tags.
func (t *Tags) IPTC() map[string]TagInfo {
	if t.iptc == nil {
		t.iptc = make(map[string]TagInfo)
	}
	return t.iptc
}

// All returns all tags in a map.
func (t Tags) All() map[string]TagInfo {
	all := make(map[string]TagInfo)
	maps.Copy(all, t.EXIF())
	maps.Copy(all, t.IPTC())
	return all
}

func (t *Tags) getSourceMap(source Source) map[string]TagInfo {
	switch source {
	case EXIF:
		return t.EXIF()
	case IPTC:
		return t.IPTC()
	default:
		return nil
	}
}

// GetDateTime tries to find a date/time value from available metadata sources.
// It checks EXIF first (DateTimeOriginal, DateTime), then IPTC (DateCreated + TimeCreated).
func (t Tags) GetDateTime() (time.Time, error) {
	dateStr, hasTimeZone := t.dateTime()
	if dateStr == "" {
		return time.Time{}, nil
	}

	const layout = "2006:01:02 15:04:05"

	if hasTimeZone {
		for _, l := range []string{
			"2006:01:02 15:04:05-07:00",
			"2006:01:02 15:04:05-0700",
			"20060102 150405-0700",
		} {
			if tm, err := time.Parse(l, dateStr); err == nil {
				return tm, nil
			}
		}
	}

	if tm, err := time.ParseInLocation(layout, dateStr, time.Local); err == nil {
		return tm, nil
	}

	// IPTC dates are CCYYMMDD and times HHMMSS.
	return time.ParseInLocation("20060102 150405", dateStr, time.Local)
}

func (t Tags) dateTime() (string, bool) {
	exif := t.EXIF()
	for _, name := range []string{"DateTimeOriginal", "DateTime"} {
		if ti, ok := exif[name]; ok {
			s := toString(ti.Value)
			if offset, ok := exif["OffsetTimeOriginal"]; ok && name == "DateTimeOriginal" {
				return s + toString(offset.Value), true
			}
			return s, false
		}
	}

	iptc := t.IPTC()
	if dateTag, ok := iptc["DateCreated"]; ok {
		dateStr := toString(dateTag.Value)
		if timeTag, ok := iptc["TimeCreated"]; ok {
			timeStr := toString(timeTag.Value)
			// HHMMSS or HHMMSS+HHMM
			return dateStr + " " + timeStr, len(timeStr) > 6
		}
		return dateStr + " 000000", false
	}

	return "", false
}

// GetLatLong returns the latitude and longitude from the EXIF GPSInfo directory.
func (t Tags) GetLatLong() (lat float64, long float64, err error) {
	exif := t.EXIF()

	latTag, ok := exif["GPSLatitude"]
	if !ok {
		return
	}
	longTag, ok := exif["GPSLongitude"]
	if !ok {
		return
	}

	if lat, err = exifConverters.toDegrees(latTag.Value); err != nil {
		return 0, 0, err
	}
	if long, err = exifConverters.toDegrees(longTag.Value); err != nil {
		return 0, 0, err
	}

	if ti, ok := exif["GPSLatitudeRef"]; ok && toString(ti.Value) == "S" {
		lat = -lat
	}
	if ti, ok := exif["GPSLongitudeRef"]; ok && toString(ti.Value) == "W" {
		long = -long
	}

	if math.IsNaN(lat) {
		lat = 0
	}
	if math.IsNaN(long) {
		long = 0
	}

	return lat, long, nil
}

func subNamespace(parent, name string) string {
	return path.Join(parent, name)
}
