package pong

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// Snapshot is a read-only copy of the state used by observers such as the AI
// controller and the remote relay.
type Snapshot struct {
	Tick      uint64
	FieldW    float64
	FieldH    float64
	Ball      Ball
	Paddles   [2]Paddle
	Scores    [2]int
	MaxScore  int
	Lifecycle Lifecycle
	Winner    core.Side
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	s := e.state
	return Snapshot{
		Tick:      e.ticks,
		FieldW:    s.FieldW,
		FieldH:    s.FieldH,
		Ball:      s.Ball,
		Paddles:   s.Paddles,
		Scores:    s.Scores,
		MaxScore:  s.MaxScore,
		Lifecycle: s.Lifecycle,
		Winner:    s.Winner,
	}
}

// ApplyPaddle sets a paddle position received from a peer, clamped to the field.
func (e *Engine) ApplyPaddle(side core.Side, y float64) {
	if !side.Valid() || !finite(y) {
		return
	}
	p := &e.state.Paddles[side]
	p.Y = core.ClampF(y, 0, e.state.MaxPaddleY(p.Height))
}

// ApplyBall overwrites the ball position and velocity with authoritative values.
func (e *Engine) ApplyBall(x, y, vx, vy float64) {
	if !finite(x) || !finite(y) || !finite(vx) || !finite(vy) {
		return
	}
	b := &e.state.Ball
	b.X, b.Y, b.VX, b.VY = x, y, vx, vy
}

// ApplyScores adopts authoritative scores. Observers are notified when the
// scores change, and the match ends once a side reaches the winning score.
func (e *Engine) ApplyScores(scores [2]int) {
	if e.state.Lifecycle == Ended || scores == e.state.Scores {
		return
	}
	e.state.Scores = scores
	e.notifyScore()
	for _, side := range []core.Side{core.SideLeft, core.SideRight} {
		if scores[side] >= e.state.MaxScore {
			e.end(side)
			return
		}
	}
}

// ApplyGameOver ends the match with the given winner as reported by a peer.
func (e *Engine) ApplyGameOver(winner core.Side) {
	if !winner.Valid() {
		return
	}
	e.end(winner)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
