// Package geometry provides basic geometric types used throughout the application.
package geometry

import "image"

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// ToInt rounds to integer pixel coordinates.
func (p Point2D) ToInt() image.Point {
	return image.Point{X: int(p.X + 0.5), Y: int(p.Y + 0.5)}
}

// RectInt represents a rectangle with integer pixel coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a new RectInt.
func NewRectInt(x, y, width, height int) RectInt {
	return RectInt{X: x, Y: y, Width: width, Height: height}
}

// ToImageRect converts to an image.Rectangle.
func (r RectInt) ToImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// IsEmpty returns true if the rectangle has no area.
func (r RectInt) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the rectangle area in pixels.
func (r RectInt) Area() int {
	if r.IsEmpty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains returns true if the pixel is inside the rectangle.
func (r RectInt) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects returns true if this rectangle intersects with another.
func (r RectInt) Intersects(other RectInt) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// Intersect returns the overlapping region of two rectangles.
// The result is empty when they do not intersect.
func (r RectInt) Intersect(other RectInt) RectInt {
	x1 := maxInt(r.X, other.X)
	y1 := maxInt(r.Y, other.Y)
	x2 := minInt(r.X+r.Width, other.X+other.Width)
	y2 := minInt(r.Y+r.Height, other.Y+other.Height)
	if x2 <= x1 || y2 <= y1 {
		return RectInt{}
	}
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rectangle containing both rectangles.
// An empty rectangle is treated as the identity.
func (r RectInt) Union(other RectInt) RectInt {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x1 := minInt(r.X, other.X)
	y1 := minInt(r.Y, other.Y)
	x2 := maxInt(r.X+r.Width, other.X+other.Width)
	y2 := maxInt(r.Y+r.Height, other.Y+other.Height)
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Inflate grows the rectangle by n pixels on every side, clamped to limit.
func (r RectInt) Inflate(n int, limit RectInt) RectInt {
	grown := RectInt{X: r.X - n, Y: r.Y - n, Width: r.Width + 2*n, Height: r.Height + 2*n}
	return grown.Intersect(limit)
}

// Translate shifts the rectangle by (dx, dy).
func (r RectInt) Translate(dx, dy int) RectInt {
	return RectInt{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
