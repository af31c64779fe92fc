// Package pong implements the Pong simulation: a ball, two paddles, wall and
// paddle collisions, scoring and the match lifecycle. The engine is driven one
// tick at a time by a Scheduler and draws itself onto a core.Canvas.
//
// The engine is not safe for concurrent use. Everything that touches it runs on
// the goroutine that delivers frames.
package pong

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/input"
)

var (
	// ErrNoCanvas is returned when the engine is created without a drawing surface.
	ErrNoCanvas = errors.New("pong: no canvas")

	// ErrInvalidSurface is returned when the drawing surface has no area.
	ErrInvalidSurface = errors.New("pong: canvas has non-positive dimensions")
)

// Engine runs one match.
type Engine struct {
	cfg    config.PongConfig
	state  *State
	canvas core.Canvas
	sched  Scheduler
	cancel func()
	clock  func() time.Time
	rng    *rand.Rand

	hooks      []Hooks
	sources    []input.Source
	onScore    []func(scores [2]int)
	onGameOver []func(winner core.Side)

	lastHit time.Time
	scoring bool
	ticks   uint64
	closed  bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithScheduler sets the frame scheduler. Defaults to a ManualScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithClock sets the clock used for the paddle collision cooldown.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRand sets the random source used for serve directions.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithState makes the engine operate on a caller-owned state.
func WithState(s *State) Option {
	return func(e *Engine) { e.state = s }
}

// New creates an engine in the Ready state.
func New(cfg config.PongConfig, canvas core.Canvas, opts ...Option) (*Engine, error) {
	if canvas == nil {
		return nil, ErrNoCanvas
	}
	if w, h := canvas.Bounds(); w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSurface, w, h)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pong: %w", err)
	}

	e := &Engine{
		cfg:     cfg,
		canvas:  canvas,
		clock:   time.Now,
		scoring: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewManualScheduler()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // gameplay randomness
	}
	if e.state == nil {
		e.state = NewState(cfg)
	}
	return e, nil
}

// State returns the state the engine operates on.
func (e *Engine) State() *State {
	return e.state
}

// Config returns the engine configuration.
func (e *Engine) Config() config.PongConfig {
	return e.cfg
}

// Lifecycle returns the current lifecycle state.
func (e *Engine) Lifecycle() Lifecycle {
	return e.state.Lifecycle
}

// Scores returns a copy of both scores.
func (e *Engine) Scores() [2]int {
	return e.state.Scores
}

// Ticks returns the number of simulated ticks since the last reset.
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// SetMaxScore changes the winning threshold. Non-positive values are ignored.
func (e *Engine) SetMaxScore(n int) {
	if n > 0 {
		e.state.MaxScore = n
	}
}

// SetScoringEnabled toggles the local score check. A non-authoritative remote
// peer disables it and receives scores from the other side instead.
func (e *Engine) SetScoringEnabled(enabled bool) {
	e.scoring = enabled
}

// AddHooks registers tick hooks. Hooks run in registration order.
func (e *Engine) AddHooks(h Hooks) {
	if e.closed {
		return
	}
	e.hooks = append(e.hooks, h)
}

// AddSource registers an intent source. Sources are merged once per tick,
// earlier registrations take precedence.
func (e *Engine) AddSource(src input.Source) {
	if e.closed || src == nil {
		return
	}
	e.sources = append(e.sources, src)
}

// OnScore registers a callback fired after every point with the new scores.
func (e *Engine) OnScore(fn func(scores [2]int)) {
	if e.closed || fn == nil {
		return
	}
	e.onScore = append(e.onScore, fn)
}

// OnGameOver registers a callback fired once when the match ends.
func (e *Engine) OnGameOver(fn func(winner core.Side)) {
	if e.closed || fn == nil {
		return
	}
	e.onGameOver = append(e.onGameOver, fn)
}

// Start begins or resumes play. Starting from Ready serves the ball.
// It has no effect once the match ended or the engine was cleaned up.
func (e *Engine) Start() {
	if e.closed {
		return
	}
	switch e.state.Lifecycle {
	case Ready:
		e.resetBall()
		fallthrough
	case Paused:
		e.state.Lifecycle = Playing
		e.requestFrame()
	}
}

// Stop pauses a running match and cancels the pending frame.
func (e *Engine) Stop() {
	if e.state.Lifecycle != Playing {
		return
	}
	e.state.Lifecycle = Paused
	e.cancelFrame()
}

// Pause is an alias for Stop.
func (e *Engine) Pause() {
	e.Stop()
}

// Resume continues a paused match.
func (e *Engine) Resume() {
	if e.state.Lifecycle == Paused {
		e.Start()
	}
}

// TogglePause pauses a running match or resumes a paused one.
func (e *Engine) TogglePause() {
	switch e.state.Lifecycle {
	case Playing:
		e.Stop()
	case Paused:
		e.Resume()
	}
}

// Reset returns the match to Ready with zeroed scores and a centered,
// motionless ball. Calling it repeatedly yields the same state.
func (e *Engine) Reset() {
	e.cancelFrame()
	fresh := NewState(e.cfg)
	fresh.FieldW, fresh.FieldH = e.state.FieldW, e.state.FieldH
	fresh.MaxScore = e.state.MaxScore
	fresh.placePaddles(e.cfg.Paddles)
	fresh.Ball.X, fresh.Ball.Y = fresh.FieldW/2, fresh.FieldH/2
	*e.state = *fresh
	e.lastHit = time.Time{}
	e.ticks = 0
}

// Cleanup cancels the pending frame and detaches hooks, sources, callbacks
// and the canvas. It is idempotent and the engine cannot be restarted.
func (e *Engine) Cleanup() {
	if e.closed {
		return
	}
	e.cancelFrame()
	e.closed = true
	e.hooks = nil
	e.sources = nil
	e.onScore = nil
	e.onGameOver = nil
	e.canvas = nil
	if e.state.Lifecycle == Playing {
		e.state.Lifecycle = Paused
	}
}

// Closed reports whether Cleanup was called.
func (e *Engine) Closed() bool {
	return e.closed
}

// Frame runs one tick and renders, then schedules the next frame while
// the match is still Playing.
func (e *Engine) Frame() {
	e.cancel = nil
	if e.closed || e.state.Lifecycle != Playing {
		return
	}
	e.Tick()
	e.Render()
	if e.state.Lifecycle == Playing && !e.closed {
		e.requestFrame()
	}
}

// Tick advances the simulation by one step. It has no effect unless Playing.
func (e *Engine) Tick() {
	if e.state.Lifecycle != Playing {
		return
	}
	e.ticks++

	e.runHooks(prePaddle)
	if e.state.Lifecycle != Playing {
		return
	}
	e.applyIntents()
	e.updatePaddles()
	e.updateBall()
	e.checkPaddleCollision()
	e.runHooks(postBall)
	if e.scoring {
		e.checkScore()
	}
	e.runHooks(postScore)
}

// Render draws the current state onto the engine's canvas.
func (e *Engine) Render() {
	if e.canvas == nil {
		return
	}
	Draw(e.canvas, e.state)
}

func (e *Engine) requestFrame() {
	if e.cancel != nil {
		return
	}
	e.cancel = e.sched.RequestFrame(e.Frame)
}

func (e *Engine) cancelFrame() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// end moves the match to Ended and notifies game-over observers once.
func (e *Engine) end(winner core.Side) {
	if e.state.Lifecycle == Ended {
		return
	}
	e.state.Lifecycle = Ended
	e.state.Winner = winner
	e.cancelFrame()
	for _, fn := range e.onGameOver {
		fn(winner)
	}
}

func (e *Engine) notifyScore() {
	scores := e.state.Scores
	for _, fn := range e.onScore {
		fn(scores)
	}
}
