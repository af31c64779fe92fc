package pong

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
)

func TestFrameSchedulesWhilePlaying(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, sched := newTestEngine(t, clock)

	if sched.Pending() {
		t.Fatal("Ready engine should not request frames")
	}
	e.Start()
	if n := sched.Run(3); n != 3 {
		t.Fatalf("Run(3) = %d frames, expected 3", n)
	}
	if e.Ticks() != 3 {
		t.Errorf("Ticks() = %d, expected 3", e.Ticks())
	}
	if !sched.Pending() {
		t.Error("Playing engine should keep a frame pending")
	}

	e.Stop()
	if sched.Step() {
		t.Error("Step() after Stop() ran a frame")
	}

	e.Cleanup()
	e.Cleanup()
	if !e.Closed() {
		t.Error("Closed() = false after Cleanup()")
	}
	e.Start()
	if e.Lifecycle() == Playing || sched.Pending() {
		t.Error("Start() after Cleanup() should be a no-op")
	}
}

func TestFrameRendersToCanvas(t *testing.T) {
	screen := core.NewScreen(80, 24)
	sched := NewManualScheduler()
	e, err := New(config.DefaultPongConfig(), core.NewScreenCanvas(screen),
		WithScheduler(sched), WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	e.Render()
	if got := screen.Get(40, 12); got != core.DotChar {
		t.Errorf("ball cell = %q, expected %q", got, core.DotChar)
	}
	if got := screen.Get(32, 0); got != '0' {
		t.Errorf("left score cell = %q, expected '0'", got)
	}
	if got := screen.Get(48, 0); got != '0' {
		t.Errorf("right score cell = %q, expected '0'", got)
	}
	if got := screen.Get(1, 10); got != core.BlockChar {
		t.Errorf("left paddle cell = %q, expected %q", got, core.BlockChar)
	}
	if cell := screen.GetCell(78, 10); cell.Rune != core.BlockChar || cell.Color != PaddleColors[core.SideRight] {
		t.Errorf("right paddle cell = %+v", cell)
	}
	if !strings.Contains(screen.String(), "READY") {
		t.Error("Ready banner not drawn")
	}

	e.Start()
	sched.Step()
	if strings.Contains(screen.String(), "READY") {
		t.Error("Ready banner still drawn while playing")
	}
}

func TestHooksRunInOrder(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)

	var calls []string
	e.AddHooks(Hooks{
		PrePaddle: func(*Engine) { calls = append(calls, "pre") },
		PostScore: func(*Engine) { calls = append(calls, "score") },
	})
	e.AddHooks(Hooks{
		PostBall: func(*Engine) { calls = append(calls, "ball") },
	})

	e.Start()
	tick(e, clock)

	expected := []string{"pre", "ball", "score"}
	if strings.Join(calls, ",") != strings.Join(expected, ",") {
		t.Errorf("hook order = %v, expected %v", calls, expected)
	}
}

func TestPrePaddleHookCanEndTick(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.AddHooks(Hooks{PrePaddle: func(e *Engine) { e.ApplyGameOver(core.SideLeft) }})
	e.Start()
	ball := e.State().Ball

	tick(e, clock)
	if e.Lifecycle() != Ended || e.State().Winner != core.SideLeft {
		t.Fatalf("Lifecycle = %v winner = %v", e.Lifecycle(), e.State().Winner)
	}
	if e.State().Ball != ball {
		t.Error("ball moved on the tick the match ended")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.Start()
	for i := 0; i < 200; i++ {
		tick(e, clock)
	}

	e.Reset()
	first := e.Snapshot()
	e.Reset()
	second := e.Snapshot()

	if first != second {
		t.Errorf("Reset() twice differs:\n%+v\n%+v", first, second)
	}
	if first.Scores != [2]int{} || first.Lifecycle != Ready || first.Tick != 0 {
		t.Errorf("Reset() state = %+v", first)
	}
	if first.Ball.X != 400 || first.Ball.Y != 300 {
		t.Errorf("Reset() ball = %+v, expected centered", first.Ball)
	}
}

func TestResize(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)

	e.Resize(400, 300)
	s := e.State()
	if s.FieldW != 400 || s.FieldH != 300 {
		t.Fatalf("field = %vx%v, expected 400x300", s.FieldW, s.FieldH)
	}
	if s.Ball.X != 200 || s.Ball.Y != 150 {
		t.Errorf("ball = (%v,%v), expected (200,150)", s.Ball.X, s.Ball.Y)
	}
	if s.Paddles[core.SideLeft].X != 10 || s.Paddles[core.SideRight].X != 380 {
		t.Errorf("paddle X = %v,%v, expected 10,380", s.Paddles[core.SideLeft].X, s.Paddles[core.SideRight].X)
	}
	if s.Paddles[core.SideLeft].Y != 125 {
		t.Errorf("paddle Y = %v, expected 125", s.Paddles[core.SideLeft].Y)
	}

	// Shrinking below the paddle height clamps to the top.
	e.Resize(400, 80)
	if s.Paddles[core.SideLeft].Y != 0 {
		t.Errorf("paddle Y = %v, expected 0", s.Paddles[core.SideLeft].Y)
	}

	e.Resize(0, 300)
	if s.FieldW != 400 {
		t.Errorf("Resize(0, 300) changed width to %v", s.FieldW)
	}
}

func TestApplyRemoteState(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	e, _ := newTestEngine(t, clock)
	e.SetScoringEnabled(false)

	var scores [][2]int
	var winner core.Side = -1
	e.OnScore(func(s [2]int) { scores = append(scores, s) })
	e.OnGameOver(func(w core.Side) { winner = w })
	e.Start()

	e.ApplyPaddle(core.SideRight, 9999)
	if y := e.State().Paddles[core.SideRight].Y; y != 500 {
		t.Errorf("ApplyPaddle clamped Y = %v, expected 500", y)
	}

	// The ball may cross the wall without a local score.
	e.ApplyBall(3, 300, -5, 0)
	tick(e, clock)
	if e.Scores() != [2]int{} {
		t.Errorf("scores = %v with scoring disabled", e.Scores())
	}

	e.ApplyScores([2]int{0, 1})
	e.ApplyScores([2]int{0, 1})
	if len(scores) != 1 {
		t.Errorf("score callbacks = %d, expected 1", len(scores))
	}

	e.ApplyScores([2]int{0, 5})
	if e.Lifecycle() != Ended || winner != core.SideRight {
		t.Errorf("Lifecycle = %v winner = %v, expected Ended right", e.Lifecycle(), winner)
	}
}

func TestTickerSchedulerDeliversFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched := NewTickerScheduler(ctx, time.Millisecond)

	ran := make(chan struct{}, 1)
	sched.RequestFrame(func() { ran <- struct{}{} })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestTickerSchedulerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sched := NewTickerScheduler(ctx, time.Hour)

	cancelFrame := sched.RequestFrame(func() {})
	cancelFrame()
	sched.mu.Lock()
	pending := sched.pending
	sched.mu.Unlock()
	if pending != nil {
		t.Error("canceled frame still pending")
	}

	cancel()
	select {
	case <-sched.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
