package core

// Side identifies one half of the court. Side 0 plays the left paddle,
// side 1 the right paddle. Scores and winners are reported by side.
type Side int

const (
	SideLeft  Side = 0
	SideRight Side = 1
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Valid reports whether s is one of the two court sides.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// String returns a human-readable name for the side.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "Left"
	case SideRight:
		return "Right"
	default:
		return "Unknown"
	}
}
