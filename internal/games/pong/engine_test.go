package pong

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/input"
)

const eps = 1e-9

// fakeClock advances one frame per Advance call.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixedSource [2]input.Intent

func (f fixedSource) Intent(side core.Side) input.Intent { return f[side] }

func newTestEngine(t *testing.T, clock *fakeClock) (*Engine, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	canvas := core.NewScreenCanvas(core.NewScreen(80, 24))
	e, err := New(config.DefaultPongConfig(), canvas,
		WithScheduler(sched),
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewSource(42))),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, sched
}

// tick advances the clock by one frame at 60 Hz and ticks the engine.
func tick(e *Engine, clock *fakeClock) {
	clock.Advance(time.Second / 60)
	e.Tick()
}

func TestNewErrors(t *testing.T) {
	cfg := config.DefaultPongConfig()

	if _, err := New(cfg, nil); !errors.Is(err, ErrNoCanvas) {
		t.Errorf("New(nil canvas) error = %v, expected ErrNoCanvas", err)
	}

	empty := core.NewScreenCanvas(core.NewScreen(0, 10))
	if _, err := New(cfg, empty); !errors.Is(err, ErrInvalidSurface) {
		t.Errorf("New(0x10 canvas) error = %v, expected ErrInvalidSurface", err)
	}

	bad := cfg
	bad.Field.Width = 0
	canvas := core.NewScreenCanvas(core.NewScreen(80, 24))
	if _, err := New(bad, canvas); !errors.Is(err, config.ErrInvalidField) {
		t.Errorf("New(zero field) error = %v, expected ErrInvalidField", err)
	}
}

func TestNewState(t *testing.T) {
	s := NewState(config.DefaultPongConfig())

	if s.Lifecycle != Ready {
		t.Errorf("Lifecycle = %v, expected Ready", s.Lifecycle)
	}
	if s.Ball.X != 400 || s.Ball.Y != 300 || s.Ball.VX != 0 || s.Ball.VY != 0 {
		t.Errorf("Ball = %+v, expected centered and motionless", s.Ball)
	}
	if s.Paddles[core.SideLeft].X != 10 {
		t.Errorf("left paddle X = %v, expected 10", s.Paddles[core.SideLeft].X)
	}
	if s.Paddles[core.SideRight].X != 780 {
		t.Errorf("right paddle X = %v, expected 780", s.Paddles[core.SideRight].X)
	}
	for i, p := range s.Paddles {
		if p.Y != 250 {
			t.Errorf("paddle %d Y = %v, expected 250", i, p.Y)
		}
	}
}

func TestLifecycleTransitions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, sched := newTestEngine(t, clock)

	e.Resume()
	if e.Lifecycle() != Ready {
		t.Fatalf("Resume() from Ready: Lifecycle = %v", e.Lifecycle())
	}

	e.Start()
	if e.Lifecycle() != Playing {
		t.Fatalf("Start(): Lifecycle = %v, expected Playing", e.Lifecycle())
	}
	b := e.State().Ball
	if math.Abs(b.VX) != 5 || math.Abs(b.VY) != 3 {
		t.Errorf("serve velocity = (%v,%v), expected (±5,±3)", b.VX, b.VY)
	}
	if !sched.Pending() {
		t.Error("Start() should request a frame")
	}

	e.Pause()
	if e.Lifecycle() != Paused {
		t.Fatalf("Pause(): Lifecycle = %v, expected Paused", e.Lifecycle())
	}
	if sched.Pending() {
		t.Error("Pause() should cancel the pending frame")
	}

	before := e.Snapshot()
	e.Tick()
	if e.Snapshot() != before {
		t.Error("Tick() while paused changed the state")
	}

	e.Resume()
	if e.Lifecycle() != Playing || !sched.Pending() {
		t.Errorf("Resume(): Lifecycle = %v pending = %v", e.Lifecycle(), sched.Pending())
	}
	if e.State().Ball != b {
		t.Error("Resume() should not re-serve the ball")
	}

	e.TogglePause()
	if e.Lifecycle() != Paused {
		t.Errorf("TogglePause() from Playing: Lifecycle = %v", e.Lifecycle())
	}

	e.Reset()
	if e.Lifecycle() != Ready {
		t.Errorf("Reset(): Lifecycle = %v, expected Ready", e.Lifecycle())
	}
}

// placeForLeftMiss sets up a ball heading for the left wall past a raised paddle.
func placeForLeftMiss(e *Engine) {
	s := e.State()
	s.Paddles[core.SideLeft].Y = 0
	s.Ball.X, s.Ball.Y = 50, 300
	s.Ball.VX, s.Ball.VY = -5, 0
}

func TestScoreAndServe(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)

	var got [][2]int
	e.OnScore(func(scores [2]int) { got = append(got, scores) })

	e.Start()
	placeForLeftMiss(e)

	for i := 0; i < 20 && len(got) == 0; i++ {
		tick(e, clock)
	}

	if len(got) != 1 {
		t.Fatalf("score callbacks = %d, expected 1", len(got))
	}
	if got[0] != [2]int{0, 1} {
		t.Errorf("scores = %v, expected [0 1]", got[0])
	}
	if e.Ticks() != 9 {
		t.Errorf("scored after %d ticks, expected 9", e.Ticks())
	}

	b := e.State().Ball
	if b.X != 400 || b.Y != 300 {
		t.Errorf("ball after point = (%v,%v), expected (400,300)", b.X, b.Y)
	}
	if math.Abs(b.VX) != 5 || math.Abs(b.VY) != 3 {
		t.Errorf("serve velocity = (%v,%v), expected (±5,±3)", b.VX, b.VY)
	}
	if e.Lifecycle() != Playing {
		t.Errorf("Lifecycle = %v, expected Playing", e.Lifecycle())
	}
}

func TestMaxScoreEndsMatch(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, sched := newTestEngine(t, clock)
	e.SetMaxScore(1)

	var winners []core.Side
	e.OnGameOver(func(w core.Side) { winners = append(winners, w) })

	e.Start()
	placeForLeftMiss(e)
	for i := 0; i < 20 && e.Lifecycle() == Playing; i++ {
		tick(e, clock)
	}

	if e.Lifecycle() != Ended {
		t.Fatalf("Lifecycle = %v, expected Ended", e.Lifecycle())
	}
	if len(winners) != 1 || winners[0] != core.SideRight {
		t.Fatalf("game over callbacks = %v, expected [right]", winners)
	}
	if sched.Pending() {
		t.Error("Ended match should not keep a pending frame")
	}

	// Ended is terminal.
	snap := e.Snapshot()
	for i := 0; i < 10; i++ {
		tick(e, clock)
	}
	e.Start()
	e.Resume()
	if e.Snapshot() != snap {
		t.Error("state changed after the match ended")
	}
	if len(winners) != 1 {
		t.Errorf("game over fired %d times, expected 1", len(winners))
	}
}

func TestLoweredMaxScoreEndsOnNextPoint(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)

	var winners []core.Side
	e.OnGameOver(func(w core.Side) { winners = append(winners, w) })

	e.Start()
	e.state.Scores = [2]int{3, 0}
	e.SetMaxScore(2)
	placeForLeftMiss(e)
	for i := 0; i < 20 && e.Lifecycle() == Playing; i++ {
		tick(e, clock)
	}

	if got := e.Scores(); got != [2]int{3, 1} {
		t.Fatalf("Scores = %v, expected [3 1]", got)
	}
	if e.Lifecycle() != Ended {
		t.Fatalf("Lifecycle = %v, expected Ended", e.Lifecycle())
	}
	if len(winners) != 1 || winners[0] != core.SideLeft {
		t.Errorf("game over callbacks = %v, expected [left]", winners)
	}
}

func TestSetMaxScoreIgnoresNonPositive(t *testing.T) {
	clock := &fakeClock{}
	e, _ := newTestEngine(t, clock)
	e.SetMaxScore(0)
	e.SetMaxScore(-3)
	if e.State().MaxScore != 5 {
		t.Errorf("MaxScore = %d, expected 5", e.State().MaxScore)
	}
}

func TestPaddleCollision(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.Start()

	s := e.State()
	s.Ball.X, s.Ball.Y = 760, 300
	s.Ball.VX, s.Ball.VY = 5, 0

	for i := 0; i < 3; i++ {
		tick(e, clock)
	}

	b := s.Ball
	if math.Abs(b.VX-(-5.25)) > eps {
		t.Errorf("VX after hit = %v, expected -5.25", b.VX)
	}
	if b.X != 772 {
		t.Errorf("X after hit = %v, expected flush at 772", b.X)
	}
	if b.VY != 0 {
		t.Errorf("VY after center hit = %v, expected 0", b.VY)
	}
}

func TestPaddleCollisionDeflection(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.Start()

	// Hit the lower half of the left paddle (center 300, half height 50).
	s := e.State()
	s.Ball.X, s.Ball.Y = 30, 325
	s.Ball.VX, s.Ball.VY = -5, 0
	tick(e, clock)

	b := s.Ball
	if b.VX <= 0 {
		t.Fatalf("VX after left hit = %v, expected positive", b.VX)
	}
	if b.X != 28 {
		t.Errorf("X after left hit = %v, expected flush at 28", b.X)
	}
	// hit = 0.5 -> vy = 3, then accelerated.
	if math.Abs(b.VY-3*1.05) > eps {
		t.Errorf("VY = %v, expected %v", b.VY, 3*1.05)
	}
}

func TestCollisionCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.Start()
	s := e.State()

	s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY = 770, 300, 5, 0
	e.Tick()
	if s.Ball.VX >= 0 {
		t.Fatalf("first hit: VX = %v, expected negative", s.Ball.VX)
	}

	// Same instant: a second overlap is ignored.
	s.Ball.X, s.Ball.VX = 770, 5
	e.Tick()
	if s.Ball.VX != 5 {
		t.Errorf("hit inside cooldown: VX = %v, expected 5", s.Ball.VX)
	}

	clock.Advance(100 * time.Millisecond)
	s.Ball.X, s.Ball.VX = 770, 5
	e.Tick()
	if s.Ball.VX >= 0 {
		t.Errorf("hit after cooldown: VX = %v, expected negative", s.Ball.VX)
	}
}

func TestCollisionSpeedCap(t *testing.T) {
	tests := []struct {
		name   string
		vx, y  float64
		expect float64 // speed after the hit
	}{
		{"just below max", 14.9, 300, 15},
		{"at max with deflection", 15, 340, 15},
		{"slow center hit", 5, 300, 5.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(0, 0)}
			e, _ := newTestEngine(t, clock)
			e.Start()
			s := e.State()
			s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY = 770, tt.y, tt.vx, 0
			tick(e, clock)

			speed := s.Ball.Speed()
			if math.Abs(speed-tt.expect) > 1e-6 {
				t.Errorf("speed = %v, expected %v", speed, tt.expect)
			}
			if speed > 15+eps {
				t.Errorf("speed %v exceeds max", speed)
			}
		})
	}
}

func TestWallBounce(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.Start()
	s := e.State()

	s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY = 400, 10, 5, -4
	tick(e, clock)
	if s.Ball.Y != 8 || s.Ball.VY != 4 {
		t.Errorf("top wall: Y=%v VY=%v, expected 8 and 4", s.Ball.Y, s.Ball.VY)
	}

	s.Ball.Y, s.Ball.VY = 590, 4
	tick(e, clock)
	if s.Ball.Y != 592 || s.Ball.VY != -4 {
		t.Errorf("bottom wall: Y=%v VY=%v, expected 592 and -4", s.Ball.Y, s.Ball.VY)
	}
}

func TestSourcesDrivePaddles(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.AddSource(fixedSource{input.IntentUp, input.IntentDown})
	e.Start()

	tick(e, clock)
	s := e.State()
	if s.Paddles[core.SideLeft].Y != 242 {
		t.Errorf("left paddle Y = %v, expected 242", s.Paddles[core.SideLeft].Y)
	}
	if s.Paddles[core.SideRight].Y != 258 {
		t.Errorf("right paddle Y = %v, expected 258", s.Paddles[core.SideRight].Y)
	}

	for i := 0; i < 100; i++ {
		tick(e, clock)
	}
	if s.Paddles[core.SideLeft].Y != 0 {
		t.Errorf("left paddle Y = %v, expected clamped to 0", s.Paddles[core.SideLeft].Y)
	}
	if s.Paddles[core.SideRight].Y != 500 {
		t.Errorf("right paddle Y = %v, expected clamped to 500", s.Paddles[core.SideRight].Y)
	}
}

func TestInvariantsOverLongPlay(t *testing.T) {
	cfg := config.DefaultPongConfig()

	for seed := int64(1); seed <= 5; seed++ {
		clock := &fakeClock{now: time.Unix(0, 0)}
		canvas := core.NewScreenCanvas(core.NewScreen(80, 24))
		e, err := New(cfg, canvas, WithClock(clock.Now), WithRand(rand.New(rand.NewSource(seed))))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		// Paddles sweep up and down so rallies actually happen.
		var src fixedSource
		e.AddSource(&src)
		e.Start()

		prev := e.Scores()
		for i := 0; i < 5000; i++ {
			if (i/40)%2 == 0 {
				src = fixedSource{input.IntentUp, input.IntentDown}
			} else {
				src = fixedSource{input.IntentDown, input.IntentUp}
			}
			tick(e, clock)

			s := e.State()
			b := s.Ball
			if b.Y < b.Radius-eps || b.Y > s.FieldH-b.Radius+eps {
				t.Fatalf("seed %d tick %d: ball Y %v out of bounds", seed, i, b.Y)
			}
			if b.X < b.Radius-eps || b.X > s.FieldW-b.Radius+eps {
				t.Fatalf("seed %d tick %d: ball X %v out of bounds", seed, i, b.X)
			}
			for side, p := range s.Paddles {
				if p.Y < 0 || p.Y > s.FieldH-p.Height {
					t.Fatalf("seed %d tick %d: paddle %d Y %v out of bounds", seed, i, side, p.Y)
				}
			}
			if speed := b.Speed(); speed > cfg.Ball.MaxSpeed+eps || speed < cfg.Ball.MinSpeed-eps {
				t.Fatalf("seed %d tick %d: speed %v outside [min,max]", seed, i, speed)
			}

			scores := e.Scores()
			total := scores[0] + scores[1] - prev[0] - prev[1]
			if scores[0] < prev[0] || scores[1] < prev[1] || total > 1 {
				t.Fatalf("seed %d tick %d: scores %v -> %v", seed, i, prev, scores)
			}
			prev = scores

			if e.Lifecycle() == Ended {
				e.Reset()
				e.Start()
				prev = e.Scores()
			}
		}
	}
}
