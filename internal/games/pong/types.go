package pong

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
)

// Lifecycle is the match state machine: Ready -> Playing <-> Paused -> Ended.
// Only Playing advances the simulation.
type Lifecycle int

const (
	Ready Lifecycle = iota
	Playing
	Paused
	Ended
)

// String returns a human-readable name for the lifecycle state.
func (l Lifecycle) String() string {
	switch l {
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Ball is the ball state in playfield units.
type Ball struct {
	X, Y   float64
	Radius float64
	VX, VY float64
}

// Speed returns the velocity magnitude.
func (b Ball) Speed() float64 {
	return math.Hypot(b.VX, b.VY)
}

// Box returns the ball's bounding box.
func (b Ball) Box() core.Box {
	return core.BoxAround(b.X, b.Y, b.Radius)
}

// Paddle is one paddle. X is fixed per side, Y is clamped to the field.
type Paddle struct {
	X, Y          float64
	Width, Height float64
	VY            float64
	Speed         float64
}

// Box returns the paddle rectangle.
func (p Paddle) Box() core.Box {
	return core.Box{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// CenterY returns the vertical center of the paddle.
func (p Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

// State is the complete match state the engine operates on.
type State struct {
	FieldW, FieldH float64
	Paddles        [2]Paddle
	Ball           Ball
	Scores         [2]int
	MaxScore       int
	Lifecycle      Lifecycle
	Winner         core.Side // Valid only when Lifecycle is Ended
}

// NewState creates a Ready state with centered paddles and a centered, motionless ball.
func NewState(cfg config.PongConfig) *State {
	s := &State{
		FieldW:   cfg.Field.Width,
		FieldH:   cfg.Field.Height,
		MaxScore: cfg.Gameplay.MaxScore,
		Winner:   -1,
	}
	s.placePaddles(cfg.Paddles)
	s.Ball = Ball{X: s.FieldW / 2, Y: s.FieldH / 2, Radius: cfg.Ball.Radius}
	return s
}

func (s *State) placePaddles(p config.PongPaddles) {
	y := (s.FieldH - p.Height) / 2
	s.Paddles[core.SideLeft] = Paddle{
		X: p.Offset, Y: y, Width: p.Width, Height: p.Height, Speed: p.Speed,
	}
	s.Paddles[core.SideRight] = Paddle{
		X: s.FieldW - p.Offset - p.Width, Y: y, Width: p.Width, Height: p.Height, Speed: p.Speed,
	}
}

// Paddle returns the paddle of a side.
func (s *State) Paddle(side core.Side) *Paddle {
	return &s.Paddles[side]
}

// MaxPaddleY returns the largest y a paddle of the given height may take.
func (s *State) MaxPaddleY(height float64) float64 {
	return math.Max(0, s.FieldH-height)
}
