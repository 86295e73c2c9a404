// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage_test

import (
	"testing"

	"github.com/bep/loadimage"

	qt "github.com/frankban/quicktest"
)

func TestReplaceHead(t *testing.T) {
	c := qt.New(t)

	b := readTestDataFile(t, fixture)
	n, err := loadimage.HeadLength(b)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 0x5c)

	c.Run("Strip metadata", func(c *qt.C) {
		out, err := loadimage.ReplaceHead(b, []byte{0xff, 0xd8})
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.HasLen, len(b)-n+2)
		c.Assert(out[2:], qt.DeepEquals, b[n:])

		md, err := loadimage.ParseMetaData(out, loadimage.Options{})
		c.Assert(err, qt.IsNil)
		c.Assert(md.EXIF, qt.IsNil)
		c.Assert(md.IPTC, qt.IsNil)
	})

	c.Run("Longer head", func(c *qt.C) {
		head := append([]byte{0xff, 0xd8}, segment(loadimage.MarkerCOM, []byte("a comment"))...)
		head = append(head, b[2:n]...)
		out, err := loadimage.ReplaceHead(b, head)
		c.Assert(err, qt.IsNil)
		c.Assert(out[len(head):], qt.DeepEquals, b[n:])

		md, err := loadimage.ParseMetaData(out, loadimage.Options{})
		c.Assert(err, qt.IsNil)
		c.Assert(md.Orientation(), qt.Equals, loadimage.OrientationRotate270)
		c.Assert(md.ImageHead, qt.DeepEquals, head)
	})

	c.Run("Does not modify input", func(c *qt.C) {
		original := readTestDataFile(t, fixture)
		_, err := loadimage.ReplaceHead(b, []byte{0xff, 0xd8})
		c.Assert(err, qt.IsNil)
		c.Assert(b, qt.DeepEquals, original)
	})

	c.Run("Errors", func(c *qt.C) {
		_, err := loadimage.ReplaceHead(b, []byte{0x00, 0x00})
		c.Assert(err, qt.ErrorIs, loadimage.ErrMalformedHeader)
		_, err = loadimage.ReplaceHead([]byte("not a jpeg"), []byte{0xff, 0xd8})
		c.Assert(err, qt.ErrorIs, loadimage.ErrMalformedHeader)
	})
}
