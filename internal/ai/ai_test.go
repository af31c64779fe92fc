package ai

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
	"github.com/vovakirdan/tui-pong/internal/input"
)

func testSnapshot(ball pong.Ball) pong.Snapshot {
	s := pong.NewState(config.DefaultPongConfig())
	s.Ball = ball
	s.Lifecycle = pong.Playing
	return pong.Snapshot{
		FieldW:    s.FieldW,
		FieldH:    s.FieldH,
		Ball:      s.Ball,
		Paddles:   s.Paddles,
		MaxScore:  s.MaxScore,
		Lifecycle: s.Lifecycle,
	}
}

func TestPredictIntercept(t *testing.T) {
	tests := []struct {
		name       string
		ball       pong.Ball
		paddleX    float64
		maxBounces int
		expected   float64
	}{
		{"straight line", pong.Ball{X: 700, Y: 300, VX: 8, VY: -4}, 780, 4, 260},
		{"moving away", pong.Ball{X: 700, Y: 100, VX: -8, VY: 4}, 780, 4, 300},
		{"zero vx", pong.Ball{X: 700, Y: 100, VX: 0, VY: 4}, 780, 4, 300},
		{"zero vy", pong.Ball{X: 100, Y: 123, VX: 5, VY: 0}, 780, 4, 123},
		// 100 ticks: 50 up to the wall, then 50 back down.
		{"one bounce", pong.Ball{X: 280, Y: 200, VX: 5, VY: -4}, 780, 4, 200},
		{"bounce cap", pong.Ball{X: 280, Y: 200, VX: 5, VY: -4}, 780, 0, 0},
		// 280 ticks: top wall at 50, bottom wall at 200, then 80 ticks up.
		{"two bounces", pong.Ball{X: 680, Y: 200, VX: -2, VY: -4}, 120, 4, 280},
		{"left paddle", pong.Ball{X: 400, Y: 300, VX: -5, VY: 2}, 20, 4, 452},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictIntercept(tt.ball, tt.paddleX, 600, tt.maxBounces)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("PredictIntercept() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPredictInterceptBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		ball := pong.Ball{
			X:  rng.Float64() * 780,
			Y:  rng.Float64() * 600,
			VX: (rng.Float64() - 0.5) * 30,
			VY: (rng.Float64() - 0.5) * 30,
		}
		for depth := 0; depth <= 4; depth++ {
			got := PredictIntercept(ball, 780, 600, depth)
			if got < 0 || got > 600 || math.IsNaN(got) {
				t.Fatalf("PredictIntercept(%+v, depth %d) = %v, outside [0,600]", ball, depth, got)
			}
			if ball.VX <= 0 && got != 300 {
				t.Fatalf("PredictIntercept(%+v) = %v for a ball moving away, expected 300", ball, got)
			}
		}
	}
}

func TestPredictInterceptMalformed(t *testing.T) {
	balls := []pong.Ball{
		{X: math.NaN(), Y: 300, VX: 5, VY: 1},
		{X: 400, Y: math.Inf(1), VX: 5, VY: 1},
		{X: 400, Y: 300, VX: math.NaN(), VY: 1},
	}
	for _, b := range balls {
		if got := PredictIntercept(b, 780, 600, 4); got != 300 {
			t.Errorf("PredictIntercept(%+v) = %v, expected 300", b, got)
		}
	}
}

func TestDecideHardExample(t *testing.T) {
	cfg := config.DefaultPongConfig()
	tier := cfg.TierFor(config.DifficultyHard)
	snap := testSnapshot(pong.Ball{X: 700, Y: 300, VX: 8, VY: -4, Radius: 8})

	for seed := int64(0); seed < 50; seed++ {
		d := Decide(snap, core.SideRight, tier, cfg.AI.Deadband, rand.New(rand.NewSource(seed)))
		if math.Abs(d.TargetY-260) > 5 {
			t.Fatalf("seed %d: TargetY = %v, expected 260±5", seed, d.TargetY)
		}
		if d.Confidence < 0.8 || d.Confidence > 1 {
			t.Errorf("seed %d: Confidence = %v, expected 0.8-1.0", seed, d.Confidence)
		}
		// Paddle center is 300, target is at least 35 above.
		if d.Intent != input.IntentUp {
			t.Errorf("seed %d: Intent = %v, expected Up", seed, d.Intent)
		}
		if d.Defensive {
			t.Errorf("seed %d: Defensive = true for an incoming ball", seed)
		}
	}
}

func TestDecideDefensive(t *testing.T) {
	cfg := config.DefaultPongConfig()
	tier := cfg.TierFor(config.DifficultyMedium)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name     string
		ballY    float64
		expected float64
	}{
		{"ball in top half", 100, 300 - tier.DefensiveOffset},
		{"ball in bottom half", 500, 300 + tier.DefensiveOffset},
		{"ball on center line", 300, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot(pong.Ball{X: 400, Y: tt.ballY, VX: -5, VY: 3, Radius: 8})
			d := Decide(snap, core.SideRight, tier, cfg.AI.Deadband, rng)
			if d.TargetY != tt.expected {
				t.Errorf("TargetY = %v, expected %v", d.TargetY, tt.expected)
			}
			if !d.Defensive || d.Confidence < 0.5 || d.Confidence > 0.7 {
				t.Errorf("Defensive = %v Confidence = %v", d.Defensive, d.Confidence)
			}
		})
	}
}

func TestDecideClampsTarget(t *testing.T) {
	cfg := config.DefaultPongConfig()
	tier := cfg.TierFor(config.DifficultyHard)
	rng := rand.New(rand.NewSource(3))

	// Intercept near the top wall: the paddle center cannot go above 50.
	snap := testSnapshot(pong.Ball{X: 700, Y: 12, VX: 8, VY: 0, Radius: 8})
	d := Decide(snap, core.SideRight, tier, cfg.AI.Deadband, rng)
	if d.TargetY != 50 {
		t.Errorf("TargetY = %v, expected 50", d.TargetY)
	}

	snap = testSnapshot(pong.Ball{X: 700, Y: 595, VX: 8, VY: 0, Radius: 8})
	d = Decide(snap, core.SideRight, tier, cfg.AI.Deadband, rng)
	if d.TargetY != 550 {
		t.Errorf("TargetY = %v, expected 550", d.TargetY)
	}
}

func TestDecideDegradesOnBadSnapshot(t *testing.T) {
	cfg := config.DefaultPongConfig()
	tier := cfg.TierFor(config.DifficultyEasy)
	rng := rand.New(rand.NewSource(1))

	snap := testSnapshot(pong.Ball{X: math.NaN(), Y: 300, VX: 5})
	d := Decide(snap, core.SideRight, tier, cfg.AI.Deadband, rng)
	if d.TargetY != 300 || d.Intent != input.IntentNone {
		t.Errorf("NaN ball: decision = %+v, expected hold at center", d)
	}

	snap = testSnapshot(pong.Ball{X: 400, Y: 300, VX: 5})
	snap.FieldH = 0
	d = Decide(snap, core.SideRight, tier, cfg.AI.Deadband, rng)
	if d.Intent != input.IntentNone {
		t.Errorf("empty field: Intent = %v, expected None", d.Intent)
	}
}

func TestIntentToward(t *testing.T) {
	tests := []struct {
		target, current float64
		expected        input.Intent
	}{
		{300, 300, input.IntentNone},
		{310, 300, input.IntentNone},
		{290, 300, input.IntentNone},
		{311, 300, input.IntentDown},
		{289, 300, input.IntentUp},
		{math.NaN(), 300, input.IntentNone},
	}
	for _, tt := range tests {
		if got := IntentToward(tt.target, tt.current, 10); got != tt.expected {
			t.Errorf("IntentToward(%v, %v) = %v, expected %v", tt.target, tt.current, got, tt.expected)
		}
	}
}
