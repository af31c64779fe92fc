package ai

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
	"github.com/vovakirdan/tui-pong/internal/input"
)

func newHardController() *Controller {
	cfg := config.DefaultPongConfig()
	return ForDifficulty(core.SideRight, cfg, config.DifficultyHard, WithRand(rand.New(rand.NewSource(1))))
}

func TestControllerObservationGate(t *testing.T) {
	c := newHardController()
	start := time.Unix(100, 0)
	incoming := testSnapshot(pong.Ball{X: 700, Y: 300, VX: 8, VY: -4})
	away := testSnapshot(pong.Ball{X: 400, Y: 500, VX: -8, VY: 4})

	if !c.Observe(start, incoming) {
		t.Fatal("first Observe() should decide")
	}
	first := c.Decision()

	if c.Observe(start.Add(500*time.Millisecond), away) {
		t.Error("Observe() inside the interval should not decide")
	}
	if c.Decision() != first {
		t.Error("decision changed inside the interval")
	}

	if !c.Observe(start.Add(time.Second), away) {
		t.Error("Observe() after the interval should decide")
	}
	if !c.Decision().Defensive {
		t.Error("decision after the ball turned away should be defensive")
	}
}

func TestControllerExecutePressesBoundKeys(t *testing.T) {
	c := newHardController()
	snap := testSnapshot(pong.Ball{X: 700, Y: 300, VX: 8, VY: -4})
	c.Observe(time.Unix(0, 0), snap)

	c.Execute(snap)
	if got := c.Intent(core.SideRight); got != input.IntentUp {
		t.Fatalf("Intent(right) = %v, expected Up", got)
	}
	if got := c.Intent(core.SideLeft); got != input.IntentNone {
		t.Errorf("Intent(left) = %v, expected None", got)
	}
	keys := c.Pressed()
	if len(keys) != 1 || keys[0] != input.DefaultBindings().For(core.SideRight).Up {
		t.Errorf("Pressed() = %v, expected the right side up key", keys)
	}

	// Paddle arrived within the deadband: keys are released.
	snap.Paddles[core.SideRight].Y = c.Decision().TargetY - 50 + 5
	c.Execute(snap)
	if got := c.Intent(core.SideRight); got != input.IntentNone {
		t.Errorf("Intent() on arrival = %v, expected None", got)
	}
}

func TestControllerStopReleasesKeys(t *testing.T) {
	c := newHardController()
	snap := testSnapshot(pong.Ball{X: 700, Y: 300, VX: 8, VY: -4})
	c.Observe(time.Unix(0, 0), snap)
	c.Execute(snap)

	c.Stop()
	if len(c.Pressed()) != 0 {
		t.Errorf("Pressed() after Stop() = %v", c.Pressed())
	}
	if c.Observe(time.Unix(10, 0), snap) {
		t.Error("stopped controller should not decide")
	}
	c.Execute(snap)
	if got := c.Intent(core.SideRight); got != input.IntentNone {
		t.Errorf("Intent() after Stop() = %v, expected None", got)
	}
}

func TestControllerDrivesEngine(t *testing.T) {
	cfg := config.DefaultPongConfig()
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	e, err := pong.New(cfg, core.NewScreenCanvas(core.NewScreen(80, 24)),
		pong.WithClock(clock), pong.WithRand(rand.New(rand.NewSource(5))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c := ForDifficulty(core.SideRight, cfg, config.DifficultyHard, WithRand(rand.New(rand.NewSource(5))))
	c.Attach(e, clock)

	e.Start()
	s := e.State()
	s.Ball.X, s.Ball.Y, s.Ball.VX, s.Ball.VY = 400, 300, 5, -2

	// Intercept is at 300 - 2*76 = 148, paddle center starts at 300.
	for i := 0; i < 30; i++ {
		now = now.Add(time.Second / 60)
		e.Tick()
	}

	center := s.Paddles[core.SideRight].CenterY()
	target := c.Decision().TargetY
	if diff := center - target; diff > 10 || diff < -10 {
		t.Errorf("paddle center %v not within deadband of target %v", center, target)
	}
	if s.Paddles[core.SideLeft].Y != 250 {
		t.Errorf("left paddle moved to %v", s.Paddles[core.SideLeft].Y)
	}
}
