// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage_test

import (
	"testing"

	"github.com/bep/loadimage"

	qt "github.com/frankban/quicktest"
)

func TestOrientation(t *testing.T) {
	c := qt.New(t)

	c.Assert(loadimage.OrientationUnspecified.Valid(), qt.IsFalse)
	c.Assert(loadimage.Orientation(9).Valid(), qt.IsFalse)
	c.Assert(loadimage.Orientation(-1).Valid(), qt.IsFalse)

	for o := loadimage.Orientation(1); o <= 8; o++ {
		c.Assert(o.Valid(), qt.IsTrue)
		c.Assert(o.SwapsAxes(), qt.Equals, o >= loadimage.OrientationTranspose)
	}
	c.Assert(loadimage.Orientation(9).SwapsAxes(), qt.IsFalse)

	c.Assert(loadimage.OrientationRotate270.String(), qt.Equals, "Rotate270")
	c.Assert(loadimage.OrientationUnspecified.String(), qt.Equals, "Unspecified")
	c.Assert(loadimage.Orientation(42).String(), qt.Equals, "Orientation(42)")
}

func TestOrientationMap(t *testing.T) {
	c := qt.New(t)

	// Where the top left and top right corners of a 3×2 image end up.
	for _, test := range []struct {
		o                  loadimage.Orientation
		tlx, tly, trx, try int
	}{
		{loadimage.OrientationNormal, 0, 0, 2, 0},
		{loadimage.OrientationFlipH, 2, 0, 0, 0},
		{loadimage.OrientationRotate180, 2, 1, 0, 1},
		{loadimage.OrientationFlipV, 0, 1, 2, 1},
		{loadimage.OrientationTranspose, 0, 0, 0, 2},
		{loadimage.OrientationRotate270, 1, 0, 1, 2},
		{loadimage.OrientationTransverse, 1, 2, 1, 0},
		{loadimage.OrientationRotate90, 0, 2, 0, 0},
		{loadimage.Orientation(0), 0, 0, 2, 0},
		{loadimage.Orientation(12), 0, 0, 2, 0},
	} {
		x, y := test.o.Map(0, 0, 3, 2)
		c.Assert([]int{x, y}, qt.DeepEquals, []int{test.tlx, test.tly}, qt.Commentf("%s", test.o))
		x, y = test.o.Map(2, 0, 3, 2)
		c.Assert([]int{x, y}, qt.DeepEquals, []int{test.trx, test.try}, qt.Commentf("%s", test.o))
	}

	// Map is a bijection onto the oriented image.
	for o := loadimage.Orientation(1); o <= 8; o++ {
		w, h := 3, 2
		ow, oh := w, h
		if o.SwapsAxes() {
			ow, oh = h, w
		}
		seen := make(map[[2]int]bool)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				mx, my := o.Map(x, y, w, h)
				c.Assert(mx >= 0 && mx < ow && my >= 0 && my < oh, qt.IsTrue)
				seen[[2]int{mx, my}] = true
			}
		}
		c.Assert(seen, qt.HasLen, w*h)
	}
}
