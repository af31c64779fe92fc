// Package core provides fundamental types and utilities shared by the engine,
// the AI and the hosts. It contains no external dependencies (especially no
// Bubble Tea) to keep game logic pure and testable.
package core

// Rect is an integer rectangle of screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Box is a real-valued axis-aligned bounding box in playfield units.
// The engine uses it for ball/paddle overlap tests.
type Box struct {
	X, Y float64 // Top-left corner position
	W, H float64 // Width and height
}

// BoxAround returns the square box enclosing a circle of radius r centered at (cx, cy).
func BoxAround(cx, cy, r float64) Box {
	return Box{X: cx - r, Y: cy - r, W: 2 * r, H: 2 * r}
}

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 {
	return b.X + b.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 {
	return b.Y + b.H
}

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 {
	return b.Y + b.H/2
}

// Intersects returns true if this box overlaps with another.
// Touching edges count as overlap so a ball resting flush on a paddle face registers.
func (b Box) Intersects(other Box) bool {
	if b.X > other.Right() || other.X > b.Right() {
		return false
	}
	if b.Y > other.Bottom() || other.Y > b.Bottom() {
		return false
	}
	return true
}

// Clamp restricts an int value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	return max(lo, min(val, hi))
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
