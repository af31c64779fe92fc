package session

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/ai"
	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
)

// DefaultSimulationTicks stops a simulation whose rally never ends.
const DefaultSimulationTicks = 200_000

// SimulateOptions configures a match between two AI controllers.
type SimulateOptions struct {
	Left, Right config.Difficulty
	MaxScore    int           // Overrides the configured max score when positive
	Interval    time.Duration // Wall time between frames; zero runs unthrottled
	MaxTicks    uint64        // Defaults to DefaultSimulationTicks
	Canvas      core.Canvas   // Defaults to an 80x24 screen
	Rand        *rand.Rand
	Logger      *log.Logger
}

// SimulateResult is the outcome of a simulated match. Game time is derived
// from the tick count and the configured tick rate.
type SimulateResult struct {
	Left, Right config.Difficulty
	Scores      [2]int
	Winner      core.Side // -1 when the tick limit was reached
	Ticks       uint64
	GameTime    time.Duration
}

// Simulate plays an AI vs AI match and blocks until it ends, the tick limit
// is reached or ctx is canceled. The controllers observe a simulated clock
// that advances one tick period per frame, so throttling does not change
// their behavior.
func Simulate(ctx context.Context, cfg config.PongConfig, opts SimulateOptions) (SimulateResult, error) {
	if opts.Left == "" {
		opts.Left = config.DifficultyMedium
	}
	if opts.Right == "" {
		opts.Right = config.DifficultyMedium
	}
	if opts.MaxTicks == 0 {
		opts.MaxTicks = DefaultSimulationTicks
	}
	if opts.Canvas == nil {
		opts.Canvas = core.NewScreenCanvas(core.NewScreen(80, 24))
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // gameplay randomness
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	tickRate := cfg.Gameplay.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	gameTime := func(ticks uint64) time.Duration {
		return time.Duration(ticks) * time.Second / time.Duration(tickRate)
	}

	epoch := time.Unix(0, 0)
	now := epoch
	var stepped uint64
	clock := func() time.Time { return now }

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		manual *pong.ManualScheduler
		ticker *pong.TickerScheduler
		sched  pong.Scheduler
	)
	if opts.Interval > 0 {
		ticker = pong.NewTickerScheduler(runCtx, opts.Interval)
		sched = ticker
	} else {
		manual = pong.NewManualScheduler()
		sched = manual
	}

	engine, err := pong.New(cfg, opts.Canvas,
		pong.WithScheduler(sched),
		pong.WithClock(clock),
		pong.WithRand(opts.Rand),
	)
	if err != nil {
		return SimulateResult{}, err
	}
	defer engine.Cleanup()
	if opts.MaxScore > 0 {
		engine.SetMaxScore(opts.MaxScore)
	}

	finished := make(chan struct{})
	engine.AddHooks(pong.Hooks{
		PrePaddle: func(*pong.Engine) {
			stepped++
			now = epoch.Add(gameTime(stepped))
		},
		PostScore: func(e *pong.Engine) {
			if e.Ticks() >= opts.MaxTicks && e.Lifecycle() == pong.Playing {
				e.Stop()
				close(finished)
			}
		},
	})
	engine.OnGameOver(func(core.Side) { close(finished) })

	controllers := []*ai.Controller{
		ai.ForDifficulty(core.SideLeft, cfg, opts.Left, ai.WithRand(rand.New(rand.NewSource(opts.Rand.Int63())))),   //nolint:gosec // aiming noise
		ai.ForDifficulty(core.SideRight, cfg, opts.Right, ai.WithRand(rand.New(rand.NewSource(opts.Rand.Int63())))), //nolint:gosec // aiming noise
	}
	for _, c := range controllers {
		c.Attach(engine, clock)
		defer c.Stop()
	}

	logger := opts.Logger.With("left", opts.Left, "right", opts.Right)
	logger.Debug("simulation started")
	engine.Start()

	if manual != nil {
		for runCtx.Err() == nil && manual.Step() {
		}
	} else {
		select {
		case <-finished:
		case <-runCtx.Done():
		}
		cancel()
		<-ticker.Done()
	}

	res := SimulateResult{
		Left:   opts.Left,
		Right:  opts.Right,
		Scores: engine.Scores(),
		Winner: -1,
		Ticks:  engine.Ticks(),
	}
	res.GameTime = gameTime(res.Ticks)
	if engine.Lifecycle() == pong.Ended {
		res.Winner = engine.State().Winner
	}
	logger.Debug("simulation finished", "winner", res.Winner, "scores", res.Scores, "ticks", res.Ticks)
	return res, ctx.Err()
}
