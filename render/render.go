// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package render draws images according to a loadimage.TransformPlan.
package render

import (
	"image"

	"github.com/bep/loadimage"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Quality selects the interpolation used when Smoothing is enabled.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

// Options configures Draw.
type Options struct {
	// Smoothing enables interpolation when scaling.
	// If not set, nearest neighbor scaling is used.
	Smoothing bool

	// Quality of the interpolation, only used with Smoothing.
	Quality Quality
}

func (o Options) scaler() draw.Scaler {
	if !o.Smoothing {
		return draw.NearestNeighbor
	}
	switch o.Quality {
	case QualityMedium:
		return draw.BiLinear
	case QualityHigh:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// Draw crops src to p.Source, scales it to p.Dest through p.Steps,
// and applies p.Orientation.
func Draw(src image.Image, p loadimage.TransformPlan, opts Options) *image.NRGBA {
	scaler := opts.scaler()

	b := src.Bounds()
	sr := image.Rect(p.Source.X, p.Source.Y, p.Source.X+p.Source.Width, p.Source.Y+p.Source.Height).
		Add(b.Min).
		Intersect(b)

	var cur image.Image = src
	for _, step := range p.Steps {
		dst := image.NewNRGBA(image.Rect(0, 0, step.Width, step.Height))
		scaler.Scale(dst, dst.Bounds(), cur, sr, draw.Src, nil)
		cur, sr = dst, dst.Bounds()
	}

	dst := image.NewNRGBA(image.Rect(0, 0, p.Dest.Width, p.Dest.Height))
	if !sr.Empty() && !dst.Bounds().Empty() {
		scaler.Scale(dst, dst.Bounds(), cur, sr, draw.Src, nil)
	}

	return orient(dst, p.Orientation)
}

func orient(img *image.NRGBA, o loadimage.Orientation) *image.NRGBA {
	switch o {
	case loadimage.OrientationFlipH:
		return imaging.FlipH(img)
	case loadimage.OrientationRotate180:
		return imaging.Rotate180(img)
	case loadimage.OrientationFlipV:
		return imaging.FlipV(img)
	case loadimage.OrientationTranspose:
		return imaging.Transpose(img)
	case loadimage.OrientationRotate270:
		return imaging.Rotate270(img)
	case loadimage.OrientationTransverse:
		return imaging.Transverse(img)
	case loadimage.OrientationRotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
