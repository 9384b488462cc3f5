// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import "fmt"

// Size is a width/height pair in device pixels.
type Size struct {
	Width  int
	Height int
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Area returns Width*Height, or 0 for empty sizes.
func (s Size) Area() int {
	if s.IsEmpty() {
		return 0
	}
	return s.Width * s.Height
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Point is a position in device pixels.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle in device pixels.
type Rect struct {
	Origin Point
	Size   Size
}

// RectXYWH builds a Rect from origin and dimensions.
func RectXYWH(x, y, w, h int) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// MaxX returns the exclusive right edge.
func (r Rect) MaxX() int { return r.Origin.X + r.Size.Width }

// MaxY returns the exclusive bottom edge.
func (r Rect) MaxY() int { return r.Origin.Y + r.Size.Height }

// Area returns the rectangle's area.
func (r Rect) Area() int { return r.Size.Area() }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Origin.X && p.X < r.MaxX() &&
		p.Y >= r.Origin.Y && p.Y < r.MaxY()
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Origin.X >= r.Origin.X && other.MaxX() <= r.MaxX() &&
		other.Origin.Y >= r.Origin.Y && other.MaxY() <= r.MaxY()
}

// Intersects reports whether r and other overlap by at least one pixel.
func (r Rect) Intersects(other Rect) bool {
	if r.Size.IsEmpty() || other.Size.IsEmpty() {
		return false
	}
	return r.Origin.X < other.MaxX() && other.Origin.X < r.MaxX() &&
		r.Origin.Y < other.MaxY() && other.Origin.Y < r.MaxY()
}
