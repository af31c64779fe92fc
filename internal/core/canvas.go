package core

import "math"

// Canvas is a 2D drawing context sized to a viewport.
// Callers draw in playfield units; the canvas maps them onto its device.
type Canvas interface {
	// Bounds returns the device size. A canvas with a non-positive
	// dimension is unusable.
	Bounds() (w, h int)

	// Begin clears the canvas and sets the playfield coordinate space
	// for the following draw calls.
	Begin(fieldW, fieldH float64)

	FillRect(x, y, w, h float64, c Color)
	FillCircle(cx, cy, r float64, c Color)
	DrawText(x, y float64, text string, c Color)

	// DashedVLine draws a dashed vertical line across the full height.
	DashedVLine(x float64, c Color)
}

// Glyphs used by ScreenCanvas.
const (
	BlockChar = '█'
	DotChar   = '●'
	DashChar  = '│'
)

// ScreenCanvas adapts a Screen to the Canvas interface, scaling playfield
// units down to terminal cells.
type ScreenCanvas struct {
	screen         *Screen
	fieldW, fieldH float64
}

// NewScreenCanvas creates a canvas drawing onto the given screen.
func NewScreenCanvas(screen *Screen) *ScreenCanvas {
	var fw, fh float64
	if screen != nil {
		fw, fh = float64(screen.Width()), float64(screen.Height())
	}
	return &ScreenCanvas{screen: screen, fieldW: fw, fieldH: fh}
}

// Screen returns the underlying cell buffer.
func (c *ScreenCanvas) Screen() *Screen {
	return c.screen
}

// Bounds returns the screen size in cells.
func (c *ScreenCanvas) Bounds() (int, int) {
	if c.screen == nil {
		return 0, 0
	}
	return c.screen.Width(), c.screen.Height()
}

// Begin clears the screen and records the playfield size used for scaling.
func (c *ScreenCanvas) Begin(fieldW, fieldH float64) {
	c.screen.Clear()
	if fieldW > 0 {
		c.fieldW = fieldW
	}
	if fieldH > 0 {
		c.fieldH = fieldH
	}
}

// FillRect fills every cell the rectangle touches, at least one.
func (c *ScreenCanvas) FillRect(x, y, w, h float64, col Color) {
	x0 := int(math.Floor(c.scaleX(x)))
	y0 := int(math.Floor(c.scaleY(y)))
	x1 := max(x0+1, int(math.Ceil(c.scaleX(x+w))))
	y1 := max(y0+1, int(math.Ceil(c.scaleY(y+h))))
	c.screen.DrawRect(NewRect(x0, y0, x1-x0, y1-y0), BlockChar, col)
}

// FillCircle marks the cell under the circle's center; terminal cells are
// too coarse for the radius to matter.
func (c *ScreenCanvas) FillCircle(cx, cy, _ float64, col Color) {
	c.screen.SetColored(c.cellX(cx), c.cellY(cy), DotChar, col)
}

// DrawText writes text starting at the cell under (x, y).
func (c *ScreenCanvas) DrawText(x, y float64, text string, col Color) {
	c.screen.DrawTextColored(c.cellX(x), c.cellY(y), text, col)
}

// DashedVLine draws a dash on every other row of the column under x.
func (c *ScreenCanvas) DashedVLine(x float64, col Color) {
	cx := c.cellX(x)
	for y := 0; y < c.screen.Height(); y += 2 {
		c.screen.SetColored(cx, y, DashChar, col)
	}
}

// Multiplying before dividing keeps integral playfield coordinates exact.
func (c *ScreenCanvas) scaleX(x float64) float64 {
	if c.fieldW <= 0 {
		return x
	}
	return x * float64(c.screen.Width()) / c.fieldW
}

func (c *ScreenCanvas) scaleY(y float64) float64 {
	if c.fieldH <= 0 {
		return y
	}
	return y * float64(c.screen.Height()) / c.fieldH
}

func (c *ScreenCanvas) cellX(x float64) int {
	return Clamp(int(math.Floor(c.scaleX(x))), 0, max(0, c.screen.Width()-1))
}

func (c *ScreenCanvas) cellY(y float64) int {
	return Clamp(int(math.Floor(c.scaleY(y))), 0, max(0, c.screen.Height()-1))
}
