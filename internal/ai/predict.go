// Package ai implements the computer opponent. It observes the match at a
// fixed cadence, predicts where the ball will cross its paddle line and moves
// the paddle by pressing the same keys a human would.
package ai

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
	"github.com/vovakirdan/tui-pong/internal/input"
)

// Decision is the outcome of one observation.
type Decision struct {
	TargetY    float64 // Desired paddle center
	Intent     input.Intent
	Confidence float64 // Cosmetic, 0.5-1.0
	Defensive  bool    // Ball was moving away
}

// PredictIntercept estimates the ball's y when it reaches paddleX, reflecting
// off the top and bottom walls at most maxBounces times. A ball that is not
// moving toward paddleX yields the vertical center. The result lies in [0, fieldH].
func PredictIntercept(ball pong.Ball, paddleX, fieldH float64, maxBounces int) float64 {
	center := fieldH / 2
	dx := paddleX - ball.X
	if ball.VX == 0 || dx*ball.VX < 0 || !finite(dx) || !finite(ball.VX) {
		return center
	}

	remaining := dx / ball.VX
	y, vy := ball.Y, ball.VY
	if !finite(y) || !finite(vy) {
		return center
	}

	for bounces := 0; remaining > 0; bounces++ {
		if vy == 0 {
			break
		}
		var toWall, wall float64
		if vy > 0 {
			wall = fieldH
		}
		toWall = (wall - y) / vy
		if toWall >= remaining || bounces >= maxBounces {
			y += vy * remaining
			break
		}
		y = wall
		vy = -vy
		remaining -= toWall
	}

	return core.ClampF(y, 0, fieldH)
}

// Decide computes a decision for the paddle on side from a snapshot.
// Malformed snapshots degrade to holding or defending the center.
func Decide(snap pong.Snapshot, side core.Side, tier config.Tier, deadband float64, rng *rand.Rand) Decision {
	paddle := snap.Paddles[side]
	current := paddle.CenterY()

	if !finite(snap.FieldH) || snap.FieldH <= 0 || !finite(current) {
		return Decision{TargetY: current, Intent: input.IntentNone, Confidence: 0.5, Defensive: true}
	}

	ball := snap.Ball
	center := snap.FieldH / 2
	var d Decision
	switch {
	case !finite(ball.X) || !finite(ball.Y) || !finite(ball.VX) || !finite(ball.VY):
		d = Decision{TargetY: center, Confidence: 0.5, Defensive: true}

	case movingToward(ball, side):
		y := PredictIntercept(ball, paddleLine(paddle, side), snap.FieldH, tier.PredictionDepth)
		y += (rng.Float64() - 0.5) * tier.Imperfection
		d = Decision{TargetY: y, Confidence: 0.8 + rng.Float64()*0.2}

	default:
		y := center
		switch {
		case ball.Y < center:
			y -= tier.DefensiveOffset
		case ball.Y > center:
			y += tier.DefensiveOffset
		}
		d = Decision{TargetY: y, Confidence: 0.5 + rng.Float64()*0.2, Defensive: true}
	}

	d.TargetY = ClampTarget(d.TargetY, paddle.Height, snap.FieldH)
	d.Intent = IntentToward(d.TargetY, current, deadband)
	return d
}

// ClampTarget keeps a paddle centered on y fully inside the field.
func ClampTarget(y, paddleHeight, fieldH float64) float64 {
	half := paddleHeight / 2
	return core.ClampF(y, half, math.Max(half, fieldH-half))
}

// IntentToward moves toward target unless within deadband of current.
func IntentToward(target, current, deadband float64) input.Intent {
	diff := target - current
	if !finite(diff) || math.Abs(diff) <= deadband {
		return input.IntentNone
	}
	if diff < 0 {
		return input.IntentUp
	}
	return input.IntentDown
}

func movingToward(ball pong.Ball, side core.Side) bool {
	if side == core.SideLeft {
		return ball.VX < 0
	}
	return ball.VX > 0
}

// paddleLine is the x of the paddle face the ball meets.
func paddleLine(p pong.Paddle, side core.Side) float64 {
	if side == core.SideLeft {
		return p.X + p.Width
	}
	return p.X
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
