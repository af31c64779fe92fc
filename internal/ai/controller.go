package ai

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
	"github.com/vovakirdan/tui-pong/internal/input"
)

// Controller drives one paddle. Decisions are computed at most once per tier
// interval; every tick the controller presses or releases synthetic keys so
// the paddle stops on arrival. It satisfies input.Source.
type Controller struct {
	side     core.Side
	tier     config.Tier
	deadband float64
	bindings input.Bindings
	keys     *input.KeySet
	rng      *rand.Rand

	decision   Decision
	decided    bool
	lastSample time.Time
	stopped    bool
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithRand sets the source of aiming noise.
func WithRand(rng *rand.Rand) ControllerOption {
	return func(c *Controller) { c.rng = rng }
}

// WithBindings overrides the keys the controller presses.
func WithBindings(b input.Bindings) ControllerOption {
	return func(c *Controller) { c.bindings = b }
}

// NewController creates a controller for side using tier and deadband.
func NewController(side core.Side, tier config.Tier, deadband float64, opts ...ControllerOption) *Controller {
	c := &Controller{
		side:     side,
		tier:     tier,
		deadband: deadband,
		bindings: input.DefaultBindings(),
		keys:     input.NewKeySet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // aiming noise
	}
	return c
}

// ForDifficulty creates a controller tuned from cfg for the given difficulty.
func ForDifficulty(side core.Side, cfg config.PongConfig, d config.Difficulty, opts ...ControllerOption) *Controller {
	return NewController(side, cfg.TierFor(d), cfg.AI.Deadband, opts...)
}

// Side returns the paddle the controller drives.
func (c *Controller) Side() core.Side {
	return c.side
}

// Decision returns the latest decision.
func (c *Controller) Decision() Decision {
	return c.decision
}

// Observe takes a new decision if the observation interval elapsed since the
// previous one, and reports whether it did.
func (c *Controller) Observe(now time.Time, snap pong.Snapshot) bool {
	if c.stopped {
		return false
	}
	if c.decided && now.Sub(c.lastSample) < c.tier.Interval {
		return false
	}
	c.decision = Decide(snap, c.side, c.tier, c.deadband, c.rng)
	c.decided = true
	c.lastSample = now
	return true
}

// Execute updates the synthetic keys from the distance between the paddle
// and the current target.
func (c *Controller) Execute(snap pong.Snapshot) {
	c.keys.Clear()
	if c.stopped || !c.decided {
		return
	}
	current := snap.Paddles[c.side].CenterY()
	bind := c.bindings.For(c.side)
	switch IntentToward(c.decision.TargetY, current, c.deadband) {
	case input.IntentUp:
		c.keys.Press(bind.Up)
	case input.IntentDown:
		c.keys.Press(bind.Down)
	}
}

// Intent implements input.Source.
func (c *Controller) Intent(side core.Side) input.Intent {
	if side != c.side || c.stopped {
		return input.IntentNone
	}
	return input.Resolve(c.keys, c.bindings.For(side))
}

// Pressed returns the synthetic keys currently held.
func (c *Controller) Pressed() []input.Key {
	return c.keys.Keys()
}

// Stop releases every synthetic key and disables the controller.
func (c *Controller) Stop() {
	c.stopped = true
	c.keys.Clear()
}

// Attach registers the controller with an engine as an intent source and a
// pre-paddle hook. clock timestamps observations.
func (c *Controller) Attach(e *pong.Engine, clock func() time.Time) {
	e.AddSource(c)
	e.AddHooks(pong.Hooks{
		PrePaddle: func(e *pong.Engine) {
			snap := e.Snapshot()
			c.Observe(clock(), snap)
			c.Execute(snap)
		},
	})
}
