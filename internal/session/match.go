// Package session wraps a pong engine into a playable match. It wires the
// intent sources and hooks of the selected mode, forwards score and game-over
// events to observers and turns the outcome into a storable record.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/ai"
	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
	"github.com/vovakirdan/tui-pong/internal/input"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

var (
	ErrNoChannel   = errors.New("session: remote mode needs a channel")
	ErrInvalidSide = errors.New("session: invalid local side")
)

// Options configures a Match. Zero values select defaults.
type Options struct {
	Mode       Mode
	Difficulty config.Difficulty // AI tier for ModeVsAI
	MaxScore   int               // Overrides the configured max score when positive
	Bindings   input.Bindings    // Defaults to input.DefaultBindings
	Keys       *input.KeySet     // Human key set, created when nil

	// LocalSide is the human's paddle in ModeVsAI and ModeRemote.
	LocalSide core.Side
	Channel   multiplayer.Channel // Required for ModeRemote

	Scheduler pong.Scheduler
	Clock     func() time.Time
	Rand      *rand.Rand
	Logger    *log.Logger
}

// ResultSaver persists finished matches.
type ResultSaver interface {
	SaveMatch(ctx context.Context, rec storage.MatchRecord) (string, error)
}

var _ ResultSaver = (*storage.Store)(nil)

// Result is the outcome of a match.
type Result struct {
	Mode       Mode
	Difficulty config.Difficulty
	Scores     [2]int
	Winner     core.Side // -1 when the match did not finish
	Ticks      uint64
	Duration   time.Duration
}

// Match is one game of pong in a given mode.
type Match struct {
	engine *pong.Engine
	mode   Mode
	diff   config.Difficulty
	side   core.Side
	keys   *input.KeySet
	clock  func() time.Time
	logger *log.Logger

	ai    *ai.Controller
	relay *multiplayer.Relay

	started  time.Time
	finished time.Time
	closed   bool
}

// New creates a match drawing onto canvas.
func New(cfg config.PongConfig, canvas core.Canvas, opts Options) (*Match, error) {
	if opts.Mode == "" {
		opts.Mode = ModeVsAI
	}
	if opts.Mode != ModeLocal && !opts.LocalSide.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, opts.LocalSide)
	}
	if opts.Mode == ModeRemote && opts.Channel == nil {
		return nil, ErrNoChannel
	}
	if opts.Mode == ModeVsAI && opts.Difficulty == "" {
		opts.Difficulty = config.DifficultyMedium
	}
	if opts.Bindings == (input.Bindings{}) {
		opts.Bindings = input.DefaultBindings()
	}
	if opts.Keys == nil {
		opts.Keys = input.NewKeySet()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	engineOpts := []pong.Option{pong.WithClock(opts.Clock)}
	if opts.Scheduler != nil {
		engineOpts = append(engineOpts, pong.WithScheduler(opts.Scheduler))
	}
	if opts.Rand != nil {
		engineOpts = append(engineOpts, pong.WithRand(opts.Rand))
	}
	engine, err := pong.New(cfg, canvas, engineOpts...)
	if err != nil {
		return nil, err
	}
	if opts.MaxScore > 0 {
		engine.SetMaxScore(opts.MaxScore)
	}

	m := &Match{
		engine: engine,
		mode:   opts.Mode,
		diff:   opts.Difficulty,
		side:   opts.LocalSide,
		keys:   opts.Keys,
		clock:  opts.Clock,
		logger: opts.Logger.With("mode", opts.Mode),
	}

	switch opts.Mode {
	case ModeLocal:
		engine.AddSource(input.NewKeySource(m.keys, opts.Bindings, core.SideLeft, core.SideRight))
	case ModeVsAI:
		m.addHuman(opts.Bindings)
		var aiOpts []ai.ControllerOption
		if opts.Rand != nil {
			aiOpts = append(aiOpts, ai.WithRand(rand.New(rand.NewSource(opts.Rand.Int63())))) //nolint:gosec // aiming noise
		}
		m.ai = ai.ForDifficulty(m.side.Opponent(), cfg, opts.Difficulty, aiOpts...)
		m.ai.Attach(engine, opts.Clock)
	case ModeRemote:
		m.addHuman(opts.Bindings)
		m.relay = multiplayer.NewRelay(opts.Channel, m.side, opts.Logger)
		m.relay.Attach(engine)
	default:
		engine.Cleanup()
		return nil, fmt.Errorf("session: unknown mode %q", opts.Mode)
	}

	engine.OnGameOver(func(winner core.Side) {
		m.finished = m.clock()
		m.logger.Info("match over", "winner", winner, "scores", engine.Scores())
	})
	return m, nil
}

// addHuman lets the local player use either key pair.
func (m *Match) addHuman(b input.Bindings) {
	m.engine.AddSource(input.NewKeySource(m.keys, b, m.side))
	m.engine.AddSource(input.NewKeySource(m.keys, b.Swap(), m.side))
}

// Engine returns the underlying engine.
func (m *Match) Engine() *pong.Engine { return m.engine }

// Mode returns the play mode.
func (m *Match) Mode() Mode { return m.mode }

// LocalSide returns the human's side. It is meaningless in ModeLocal.
func (m *Match) LocalSide() core.Side { return m.side }

// Keys returns the human key set. Hosts press and release keys on it.
func (m *Match) Keys() *input.KeySet { return m.keys }

// AI returns the AI controller, or nil outside ModeVsAI.
func (m *Match) AI() *ai.Controller { return m.ai }

// Relay returns the relay, or nil outside ModeRemote.
func (m *Match) Relay() *multiplayer.Relay { return m.relay }

// OnScore registers a score observer.
func (m *Match) OnScore(fn func(scores [2]int)) { m.engine.OnScore(fn) }

// OnGameOver registers a game-over observer.
func (m *Match) OnGameOver(fn func(winner core.Side)) { m.engine.OnGameOver(fn) }

// SetMaxScore changes the score that ends the match.
func (m *Match) SetMaxScore(n int) { m.engine.SetMaxScore(n) }

// Scores returns the current scores.
func (m *Match) Scores() [2]int { return m.engine.Scores() }

// Lifecycle returns the engine lifecycle.
func (m *Match) Lifecycle() pong.Lifecycle { return m.engine.Lifecycle() }

// Start starts or resumes play.
func (m *Match) Start() {
	if m.closed {
		return
	}
	if m.started.IsZero() {
		m.started = m.clock()
		m.logger.Info("match started", "side", m.side, "difficulty", m.diff)
	}
	m.engine.Start()
}

// Pause pauses play. In remote play only the local engine pauses.
func (m *Match) Pause() { m.engine.Pause() }

// Resume continues a paused match.
func (m *Match) Resume() { m.engine.Resume() }

// TogglePause pauses or resumes.
func (m *Match) TogglePause() { m.engine.TogglePause() }

// CanPause reports whether pausing makes sense in this mode. A remote peer
// keeps simulating while the local engine is paused, so hosts disable it.
func (m *Match) CanPause() bool { return m.mode != ModeRemote }

// Reset returns to Ready with zeroed scores.
func (m *Match) Reset() {
	m.engine.Reset()
	m.started = time.Time{}
	m.finished = time.Time{}
}

// Resize adapts the field to a new surface size.
func (m *Match) Resize(width, height float64) { m.engine.Resize(width, height) }

// Close stops the AI, cleans up the engine and closes the relay.
// It is idempotent.
func (m *Match) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.ai != nil {
		m.ai.Stop()
	}
	m.engine.Cleanup()
	m.keys.Clear()
	if m.relay != nil {
		return m.relay.Close()
	}
	return nil
}

// Result summarizes the match so far.
func (m *Match) Result() Result {
	s := m.engine.State()
	r := Result{
		Mode:   m.mode,
		Scores: s.Scores,
		Winner: -1,
		Ticks:  m.engine.Ticks(),
	}
	if m.mode == ModeVsAI {
		r.Difficulty = m.diff
	}
	if s.Lifecycle == pong.Ended {
		r.Winner = s.Winner
	}
	if !m.started.IsZero() {
		end := m.finished
		if end.IsZero() {
			end = m.clock()
		}
		r.Duration = end.Sub(m.started)
	}
	return r
}

// Record converts the result into a storage record.
func (m *Match) Record() storage.MatchRecord {
	r := m.Result()
	rec := storage.MatchRecord{
		Mode:       string(r.Mode),
		Difficulty: string(r.Difficulty),
		Scores:     r.Scores,
		Winner:     int(r.Winner),
		Ticks:      r.Ticks,
		Duration:   r.Duration,
		EndReason:  "completed",
	}
	if r.Winner < 0 {
		rec.EndReason = "abandoned"
	}
	return rec
}

// Save persists the match through saver and returns the record ID. Matches
// that never started are not saved.
func (m *Match) Save(ctx context.Context, saver ResultSaver) (string, error) {
	if m.started.IsZero() {
		return "", nil
	}
	id, err := saver.SaveMatch(ctx, m.Record())
	if err != nil {
		return "", fmt.Errorf("session: %w", err)
	}
	m.logger.Debug("match saved", "id", id)
	return id, nil
}
