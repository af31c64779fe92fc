package core

// Color is the foreground color of a screen cell. The terminal frontend maps
// each value to an ANSI 256-color code.
type Color uint8

// Colors used by the pong renderer.
const (
	ColorDefault Color = iota
	ColorBrightRed
	ColorBrightBlue
	ColorBrightYellow
	ColorBrightCyan
	ColorBrightWhite
	ColorGray
)
