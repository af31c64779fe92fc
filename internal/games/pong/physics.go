package pong

import (
	"math"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/input"
)

// applyIntents merges all sources and sets paddle velocities for this tick.
func (e *Engine) applyIntents() {
	intents := input.Merge(e.sources...)
	for i := range e.state.Paddles {
		p := &e.state.Paddles[i]
		p.VY = intents[i].Velocity(p.Speed)
	}
}

func (e *Engine) updatePaddles() {
	for i := range e.state.Paddles {
		p := &e.state.Paddles[i]
		p.Y = core.ClampF(p.Y+p.VY, 0, e.state.MaxPaddleY(p.Height))
	}
}

// updateBall moves the ball and reflects it off the top and bottom walls.
func (e *Engine) updateBall() {
	b := &e.state.Ball
	b.X += b.VX
	b.Y += b.VY

	if b.Y-b.Radius < 0 {
		b.Y = b.Radius
		b.VY = math.Abs(b.VY)
	} else if b.Y+b.Radius > e.state.FieldH {
		b.Y = e.state.FieldH - b.Radius
		b.VY = -math.Abs(b.VY)
	}
}

// checkPaddleCollision bounces the ball off at most one paddle per tick.
// Hits inside the cooldown window after the previous hit are ignored.
func (e *Engine) checkPaddleCollision() {
	now := e.clock()
	if !e.lastHit.IsZero() && now.Sub(e.lastHit) < e.cfg.Gameplay.CollisionCooldown {
		return
	}

	b := &e.state.Ball
	ballBox := b.Box()
	for i := range e.state.Paddles {
		p := &e.state.Paddles[i]
		if !ballBox.Intersects(p.Box()) {
			continue
		}
		e.bounce(b, p, core.Side(i))
		e.lastHit = now
		return
	}
}

func (e *Engine) bounce(b *Ball, p *Paddle, side core.Side) {
	b.VX = -b.VX

	// Flush against the face the ball came from.
	fromRight := b.VX > 0 || (b.VX == 0 && side == core.SideLeft)
	if fromRight {
		b.X = p.X + p.Width + b.Radius
	} else {
		b.X = p.X - b.Radius
	}

	hit := (b.Y - p.CenterY()) / (p.Height / 2)
	b.VY = hit * e.cfg.Ball.Deflection

	maxSpeed := e.cfg.Ball.MaxSpeed
	if b.Speed() < maxSpeed {
		b.VX *= e.cfg.Ball.Acceleration
		b.VY *= e.cfg.Ball.Acceleration
	}
	if b.Speed() > maxSpeed {
		angle := math.Atan2(b.VY, b.VX)
		b.VX = math.Cos(angle) * maxSpeed
		b.VY = math.Sin(angle) * maxSpeed
	}
}

// checkScore awards a point when the ball edge crosses a side boundary,
// re-serves, and ends the match once a side reaches the winning score.
func (e *Engine) checkScore() {
	b := e.state.Ball
	var scorer core.Side
	switch {
	case b.X-b.Radius <= 0:
		scorer = core.SideRight
	case b.X+b.Radius >= e.state.FieldW:
		scorer = core.SideLeft
	default:
		return
	}

	e.state.Scores[scorer]++
	e.notifyScore()
	e.resetBall()

	if winner, ok := e.leader(scorer); ok {
		e.end(winner)
	}
}

// leader reports the winning side once either score reaches MaxScore. The
// higher score wins; on a tie the point goes to tiebreak.
func (e *Engine) leader(tiebreak core.Side) (core.Side, bool) {
	l, r := e.state.Scores[core.SideLeft], e.state.Scores[core.SideRight]
	switch {
	case max(l, r) < e.state.MaxScore:
		return tiebreak, false
	case l > r:
		return core.SideLeft, true
	case r > l:
		return core.SideRight, true
	default:
		return tiebreak, true
	}
}

// resetBall centers the ball and serves it at minimum speed in a random direction.
func (e *Engine) resetBall() {
	b := &e.state.Ball
	b.X = e.state.FieldW / 2
	b.Y = e.state.FieldH / 2
	b.VX = e.cfg.Ball.MinSpeed * e.randomSign()
	b.VY = e.cfg.Ball.ServeVY * e.randomSign()
}

func (e *Engine) randomSign() float64 {
	if e.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Resize rescales the field to a new playfield size. Positions scale per axis,
// paddles are re-anchored to their side offset and clamped, velocities keep
// their per-tick values. Non-positive sizes are ignored.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return
	}
	s := e.state
	rx, ry := width/s.FieldW, height/s.FieldH
	s.FieldW, s.FieldH = width, height

	s.Ball.X *= rx
	s.Ball.Y = core.ClampF(s.Ball.Y*ry, s.Ball.Radius, math.Max(s.Ball.Radius, height-s.Ball.Radius))

	offset := e.cfg.Paddles.Offset
	for i := range s.Paddles {
		p := &s.Paddles[i]
		if core.Side(i) == core.SideLeft {
			p.X = offset
		} else {
			p.X = width - offset - p.Width
		}
		p.Y = core.ClampF(p.Y*ry, 0, s.MaxPaddleY(p.Height))
	}
}
