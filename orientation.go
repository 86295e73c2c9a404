// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import "strconv"

// Orientation is the EXIF orientation of an image, the transform needed to
// present it upright.
type Orientation int

const (
	OrientationUnspecified Orientation = iota
	OrientationNormal
	OrientationFlipH
	OrientationRotate180
	OrientationFlipV
	OrientationTranspose
	OrientationRotate270 // 90° clockwise.
	OrientationTransverse
	OrientationRotate90 // 90° counter clockwise.
)

var orientationNames = map[Orientation]string{
	OrientationUnspecified: "Unspecified",
	OrientationNormal:      "Normal",
	OrientationFlipH:       "FlipH",
	OrientationRotate180:   "Rotate180",
	OrientationFlipV:       "FlipV",
	OrientationTranspose:   "Transpose",
	OrientationRotate270:   "Rotate270",
	OrientationTransverse:  "Transverse",
	OrientationRotate90:    "Rotate90",
}

// Valid reports whether o is one of the eight EXIF orientations.
func (o Orientation) Valid() bool {
	return o >= OrientationNormal && o <= OrientationRotate90
}

// SwapsAxes reports whether applying o swaps width and height.
func (o Orientation) SwapsAxes() bool {
	return o > OrientationFlipV && o <= OrientationRotate90
}

// normalize maps invalid orientations to OrientationNormal.
func (o Orientation) normalize() Orientation {
	if !o.Valid() {
		return OrientationNormal
	}
	return o
}

// Map maps the pixel (x, y) of a w×h image to its position in the oriented image.
// Invalid orientations map to the identity.
func (o Orientation) Map(x, y, w, h int) (int, int) {
	switch o {
	case OrientationFlipH:
		return w - 1 - x, y
	case OrientationRotate180:
		return w - 1 - x, h - 1 - y
	case OrientationFlipV:
		return x, h - 1 - y
	case OrientationTranspose:
		return y, x
	case OrientationRotate270:
		return h - 1 - y, x
	case OrientationTransverse:
		return h - 1 - y, w - 1 - x
	case OrientationRotate90:
		return y, w - 1 - x
	default:
		return x, y
	}
}

func (o Orientation) String() string {
	if s, ok := orientationNames[o]; ok {
		return s
	}
	return "Orientation(" + strconv.Itoa(int(o)) + ")"
}
