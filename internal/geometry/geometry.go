// Package geometry maps raw capture coordinates into a preview rectangle.
//
// The mapping is a uniform scale followed by a translation: the bounding box
// of the input points is fitted into the target rectangle minus padding,
// keeping its aspect ratio, and centered in the remaining space.
package geometry

import (
	"math"

	"github.com/roman-kulish/vibesign/internal/stroke"
)

const (
	// minExtent is the smallest width or height used for a bounding box or a
	// drawing area. It keeps single points and collinear strokes from
	// dividing by zero.
	minExtent = 1.0
)

// Bounds is an axis aligned bounding box.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the box, floored to minExtent.
func (b Bounds) Width() float64 {
	return math.Max(b.MaxX-b.MinX, minExtent)
}

// Height returns the vertical extent of the box, floored to minExtent.
func (b Bounds) Height() float64 {
	return math.Max(b.MaxY-b.MinY, minExtent)
}

// BoundsOf computes the bounding box of points. It returns false when
// points is empty.
func BoundsOf(points []stroke.Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		MinX: points[0].X, MinY: points[0].Y,
		MaxX: points[0].X, MaxY: points[0].Y,
	}
	for _, p := range points[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxX = max(b.MaxX, p.X)
		b.MaxY = max(b.MaxY, p.Y)
	}
	return b, true
}

// Transform maps raw coordinates into target coordinates.
type Transform struct {
	MinX, MinY       float64 // Origin of the source bounding box
	Scale            float64 // Uniform scale factor
	OffsetX, OffsetY float64 // Translation applied after scaling, includes padding
}

// Fit computes the transform placing b inside a width x height rectangle
// with padding on every side.
func Fit(b Bounds, width, height, padding float64) Transform {
	rawWidth, rawHeight := b.Width(), b.Height()

	areaWidth := math.Max(width-2*padding, minExtent)
	areaHeight := math.Max(height-2*padding, minExtent)

	scale := math.Min(areaWidth/rawWidth, areaHeight/rawHeight)

	return Transform{
		MinX:    b.MinX,
		MinY:    b.MinY,
		Scale:   scale,
		OffsetX: padding + (areaWidth-rawWidth*scale)/2,
		OffsetY: padding + (areaHeight-rawHeight*scale)/2,
	}
}

// Apply maps a single point.
func (t Transform) Apply(p stroke.Point) stroke.Point {
	return stroke.Point{
		X: (p.X-t.MinX)*t.Scale + t.OffsetX,
		Y: (p.Y-t.MinY)*t.Scale + t.OffsetY,
	}
}

// Normalize maps points into a width x height rectangle with padding. The
// bounding box is recomputed on every call, so calling it on a growing
// prefix of a stroke rescales the drawing as the prefix grows.
func Normalize(points []stroke.Point, width, height, padding float64) []stroke.Point {
	b, ok := BoundsOf(points)
	if !ok {
		return nil
	}

	t := Fit(b, width, height, padding)

	out := make([]stroke.Point, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}
