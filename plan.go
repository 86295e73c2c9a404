// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package loadimage

import "math"

// Edge is an optional distance in pixels from one side of the image.
// The zero value is unset.
type Edge struct {
	px  float64
	set bool
}

// EdgeAt returns an Edge px pixels from its side of the image.
func EdgeAt(px float64) Edge {
	return Edge{px: px, set: true}
}

// IsSet reports whether e was set with EdgeAt.
func (e Edge) IsSet() bool {
	return e.set
}

// Pixels returns the distance in pixels, 0 if unset.
func (e Edge) Pixels() float64 {
	return e.px
}

// TransformOptions configures Plan.
// All sizes and edges are given in the coordinates of the oriented image,
// the image as it will be displayed. Zero values are unset.
type TransformOptions struct {
	// Bounding box of the destination.
	MaxWidth  float64
	MaxHeight float64
	MinWidth  float64
	MinHeight float64

	// Size of the source rectangle. Defaults to the image size minus the edges.
	SourceWidth  float64
	SourceHeight float64

	// Edges of the source rectangle.
	// Right and Bottom are distances from the right and bottom side.
	Left   Edge
	Top    Edge
	Right  Edge
	Bottom Edge

	// Crop makes the destination exactly MaxWidth×MaxHeight,
	// center cropping the source to that aspect ratio.
	Crop bool

	// Contain scales the image to fit inside the max box.
	// Cover scales the image to cover the max box.
	// Both are ignored when Crop is set.
	Contain bool
	Cover   bool

	// AspectRatio, if set, crops the image to this width/height ratio. It implies Crop.
	AspectRatio float64

	// Orientation to apply. Values outside 1-8 are ignored.
	Orientation Orientation

	// OrientationFromEXIF reads Orientation from MetaData.
	OrientationFromEXIF bool
	MetaData            *MetaData

	// PixelRatio multiplies the destination size. Values <= 1 are ignored.
	PixelRatio float64

	// DownsamplingRatio, if in (0, 1), makes Plan emit intermediate
	// downscale steps, each at most this factor of the previous.
	DownsamplingRatio float64
}

// Rect is a pixel rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Size is a pixel size.
type Size struct {
	Width, Height int
}

// TransformPlan describes how to render an image.
// Source and Dest are in the coordinates of the stored image, before orientation.
type TransformPlan struct {
	// Source is the rectangle of the image to draw.
	Source Rect

	// Dest is the size in pixels Source is scaled to. X and Y are always 0.
	Dest Rect

	// Orientation is applied after scaling.
	Orientation Orientation

	// SwapAxes is set when Orientation swaps width and height.
	SwapAxes bool

	// PixelRatio is the factor Dest was multiplied with, at least 1.
	PixelRatio float64

	// Steps are the intermediate sizes of a stepped downscale, largest first.
	Steps []Size
}

// Width returns the pixel width of the rendered image.
func (p TransformPlan) Width() int {
	if p.SwapAxes {
		return p.Dest.Height
	}
	return p.Dest.Width
}

// Height returns the pixel height of the rendered image.
func (p TransformPlan) Height() int {
	if p.SwapAxes {
		return p.Dest.Width
	}
	return p.Dest.Height
}

// LogicalSize returns the layout size of the rendered image, its pixel size divided by PixelRatio.
func (p TransformPlan) LogicalSize() (width, height float64) {
	r := p.PixelRatio
	if r < 1 {
		r = 1
	}
	return float64(p.Width()) / r, float64(p.Height()) / r
}

// Plan computes the TransformPlan for an image of width×height stored pixels.
// It never fails; invalid options are ignored.
func Plan(width, height int, opts TransformOptions) TransformPlan {
	if opts.OrientationFromEXIF {
		opts.Orientation = opts.MetaData.Orientation()
	}
	o := opts.Orientation.normalize()

	w, h := float64(max(width, 0)), float64(max(height, 0))
	opts = opts.oriented(w, h, o)

	sx, sy := opts.Left.px, opts.Top.px

	var sw, sh float64
	if opts.SourceWidth > 0 {
		sw = opts.SourceWidth
		if opts.Right.set && !opts.Left.set {
			sx = w - sw - opts.Right.px
		}
	} else {
		sw = w - sx - opts.Right.px
	}
	if opts.SourceHeight > 0 {
		sh = opts.SourceHeight
		if opts.Bottom.set && !opts.Top.set {
			sy = h - sh - opts.Bottom.px
		}
	} else {
		sh = h - sy - opts.Bottom.px
	}

	dw, dh := sw, sh
	maxW, maxH := positive(opts.MaxWidth), positive(opts.MaxHeight)
	minW, minH := positive(opts.MinWidth), positive(opts.MinHeight)

	scaleUp := func() {
		if dw <= 0 || dh <= 0 {
			return
		}
		scale := math.Max(or(minW, dw)/dw, or(minH, dh)/dh)
		if scale > 1 {
			dw *= scale
			dh *= scale
		}
	}

	scaleDown := func() {
		if dw <= 0 || dh <= 0 {
			return
		}
		scale := math.Min(or(maxW, dw)/dw, or(maxH, dh)/dh)
		if scale < 1 {
			dw *= scale
			dh *= scale
		}
	}

	if opts.Crop {
		maxW, maxH = or(maxW, sw), or(maxH, sh)
		dw, dh = maxW, maxH
		if sh > 0 && maxH > 0 && maxW > 0 {
			switch d := sw/sh - maxW/maxH; {
			case d < 0:
				sh = maxH * sw / maxW
				if !opts.Top.set && !opts.Bottom.set {
					sy = (h - sh) / 2
				}
			case d > 0:
				sw = maxW * sh / maxH
				if !opts.Left.set && !opts.Right.set {
					sx = (w - sw) / 2
				}
			}
		}
	} else {
		if opts.Contain || opts.Cover {
			maxW = or(maxW, minW)
			minW = maxW
			maxH = or(maxH, minH)
			minH = maxH
		}
		if opts.Cover {
			scaleDown()
			scaleUp()
		} else {
			scaleUp()
			scaleDown()
		}
	}

	pixelRatio := 1.0
	if opts.PixelRatio > 1 {
		pixelRatio = opts.PixelRatio
		dw *= pixelRatio
		dh *= pixelRatio
	}

	p := TransformPlan{
		Source:      sourceRect(sx, sy, sw, sh, w, h),
		Dest:        Rect{Width: ceilPixels(dw), Height: ceilPixels(dh)},
		Orientation: o,
		SwapAxes:    o.SwapsAxes(),
		PixelRatio:  pixelRatio,
	}

	if r := opts.DownsamplingRatio; r > 0 && r < 1 && p.Dest.Width >= 1 && p.Dest.Height >= 1 {
		cw, ch := float64(p.Source.Width), float64(p.Source.Height)
		if dw < cw && dh < ch {
			for cw*r > dw {
				nw, nh := math.Max(1, math.Floor(cw*r)), math.Max(1, math.Floor(ch*r))
				if nw == cw && nh == ch {
					break
				}
				cw, ch = nw, nh
				p.Steps = append(p.Steps, Size{Width: int(cw), Height: int(ch)})
			}
		}
	}

	return p
}

// oriented converts the options from the coordinates of the oriented image
// to the coordinates of the stored w×h image.
func (opts TransformOptions) oriented(w, h float64, o Orientation) TransformOptions {
	if opts.AspectRatio > 0 {
		vw, vh := w, h
		if o.SwapsAxes() {
			vw, vh = h, w
		}
		if vw > 0 && vh > 0 {
			opts.Crop = true
			if vw/vh > opts.AspectRatio {
				opts.MaxWidth = vh * opts.AspectRatio
				opts.MaxHeight = vh
			} else {
				opts.MaxWidth = vw
				opts.MaxHeight = vw / opts.AspectRatio
			}
		}
	}

	if o.SwapsAxes() {
		opts.MaxWidth, opts.MaxHeight = opts.MaxHeight, opts.MaxWidth
		opts.MinWidth, opts.MinHeight = opts.MinHeight, opts.MinWidth
		opts.SourceWidth, opts.SourceHeight = opts.SourceHeight, opts.SourceWidth
	}

	left, top, right, bottom := opts.Left, opts.Top, opts.Right, opts.Bottom

	switch o {
	case OrientationFlipH:
		opts.Left, opts.Right = right, left
	case OrientationRotate180:
		opts.Left, opts.Top, opts.Right, opts.Bottom = right, bottom, left, top
	case OrientationFlipV:
		opts.Top, opts.Bottom = bottom, top
	case OrientationTranspose:
		opts.Left, opts.Top, opts.Right, opts.Bottom = top, left, bottom, right
	case OrientationRotate270:
		opts.Left, opts.Top, opts.Right, opts.Bottom = top, right, bottom, left
	case OrientationTransverse:
		opts.Left, opts.Top, opts.Right, opts.Bottom = bottom, right, top, left
	case OrientationRotate90:
		opts.Left, opts.Top, opts.Right, opts.Bottom = bottom, left, top, right
	}

	return opts
}

// sourceRect rounds the source rectangle and clamps it to the w×h image.
func sourceRect(x, y, sw, sh, w, h float64) Rect {
	x = clamp(math.Floor(x), 0, w)
	y = clamp(math.Floor(y), 0, h)
	sw = clamp(math.Round(sw), 0, w-x)
	sh = clamp(math.Round(sh), 0, h-y)
	return Rect{X: int(x), Y: int(y), Width: int(sw), Height: int(sh)}
}

// ceilPixels rounds v up to whole pixels, ignoring float noise.
func ceilPixels(v float64) int {
	const epsilon = 1e-7
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(v - epsilon))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func positive(v float64) float64 {
	if v > 0 && !math.IsInf(v, 1) {
		return v
	}
	return 0
}

// or returns v if set, else def.
func or(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
