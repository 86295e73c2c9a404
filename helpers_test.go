// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import (
	"encoding"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestStringer(t *testing.T) {
	c := qt.New(t)
	c.Assert(TagTypeUnsignedShort.String(), qt.Equals, "Short")
	c.Assert(TagTypeUnsignedRat.String(), qt.Equals, "Rational")
	c.Assert(TagType(42).String(), qt.Equals, "TagType(42)")

	var source Source
	c.Assert(EXIF.String(), qt.Equals, "EXIF")
	c.Assert(IPTC.String(), qt.Equals, "IPTC")
	c.Assert(source.String(), qt.Equals, "Source(0)")

	c.Assert(MarkerAPP1.String(), qt.Equals, "APP1")
	c.Assert(MarkerAPP13.String(), qt.Equals, "APP13")
	c.Assert(MarkerDQT.String(), qt.Equals, "DQT")
	c.Assert(Marker(0xff01).String(), qt.Equals, "Marker(0xff01)")
}

func TestSource(t *testing.T) {
	c := qt.New(t)

	sources := EXIF | IPTC
	c.Assert(sources.Has(EXIF), qt.IsTrue)
	c.Assert(sources.Has(IPTC), qt.IsTrue)
	sources = sources.Remove(EXIF)
	c.Assert(sources.Has(EXIF), qt.IsFalse)
	c.Assert(sources.Remove(IPTC).IsZero(), qt.IsTrue)
}

func BenchmarkPrintableString(b *testing.B) {
	runBench := func(b *testing.B, name, s string) {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = printableString(s)
			}
		})
	}

	runBench(b, "ASCII", "Hello, World!")
	runBench(b, "ASCII with whitespace", "   Hello, World!   ")
	runBench(b, "UTF-8", "Hello, 世界!")
	runBench(b, "Unprintable", "Hello, \x00World!")
}

func TestRat(t *testing.T) {
	c := qt.New(t)

	c.Run("NewRat", func(c *qt.C) {
		ru, err := NewRat[uint32](1, 2)
		c.Assert(err, qt.IsNil)
		c.Assert(ru.Num(), qt.Equals, uint32(1))
		c.Assert(ru.Den(), qt.Equals, uint32(2))

		_, err = NewRat[int32](10, 0)
		c.Assert(err, qt.ErrorMatches, "denominator must be non-zero")

		// Denominator must be positive.
		ri, err := NewRat[int32](13, -3)
		c.Assert(err, qt.IsNil)
		c.Assert(ri.Num(), qt.Equals, int32(-13))
		c.Assert(ri.Den(), qt.Equals, int32(3))

		ri, err = NewRat[int32](90, 600)
		c.Assert(err, qt.IsNil)
		c.Assert(ri.Num(), qt.Equals, int32(3))
		c.Assert(ri.Den(), qt.Equals, int32(20))
	})

	c.Run("Raw", func(c *qt.C) {
		// Values decoded from EXIF are kept as stored.
		r := newRatRaw[uint32](6, 9)
		c.Assert(r.Num(), qt.Equals, uint32(6))
		c.Assert(r.Den(), qt.Equals, uint32(9))
		c.Assert(math.IsInf(newRatRaw[uint32](1, 0).Float64(), 1), qt.IsTrue)
	})

	c.Run("MarshalText", func(c *qt.C) {
		ru, _ := NewRat[uint32](1, 2)
		text, err := ru.(encoding.TextMarshaler).MarshalText()
		c.Assert(err, qt.IsNil)
		c.Assert(string(text), qt.Equals, "1/2")
	})

	c.Run("UnmarshalText", func(c *qt.C) {
		ru, _ := NewRat[uint32](1, 2)
		err := ru.(encoding.TextUnmarshaler).UnmarshalText([]byte("3/4"))
		c.Assert(err, qt.IsNil)
		c.Assert(ru.Num(), qt.Equals, uint32(3))
		c.Assert(ru.Den(), qt.Equals, uint32(4))

		err = ru.(encoding.TextUnmarshaler).UnmarshalText([]byte("4"))
		c.Assert(err, qt.IsNil)
		c.Assert(ru.Num(), qt.Equals, uint32(4))
		c.Assert(ru.Den(), qt.Equals, uint32(1))
	})

	c.Run("String", func(c *qt.C) {
		ru, _ := NewRat[uint32](1, 2)
		c.Assert(ru.String(), qt.Equals, "1/2")
		ru, _ = NewRat[uint32](4, 1)
		c.Assert(ru.String(), qt.Equals, "4")
	})
}

func TestToString(t *testing.T) {
	c := qt.New(t)

	c.Assert(toString(nil), qt.Equals, "")
	c.Assert(toString([]byte("abc\x00\x00")), qt.Equals, "abc")
	c.Assert(toString([]string{"a", "b"}), qt.Equals, "a, b")
	c.Assert(toString([]any{uint16(1), "x"}), qt.Equals, "1, x")
	c.Assert(toString(newRatRaw[uint32](1, 3)), qt.Equals, "1/3")
	c.Assert(cstring([]byte("Canon\x00junk")), qt.Equals, "Canon")
}
