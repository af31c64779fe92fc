package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/games/pong"
	"github.com/vovakirdan/tui-pong/internal/input"
	"github.com/vovakirdan/tui-pong/internal/session"
)

// Default terminal size used before the first WindowSizeMsg.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
	statusLines   = 1
	saveTimeout   = 2 * time.Second
)

// View describes where and how a match is shown.
type View struct {
	Width, Height int
	Saver         session.ResultSaver // Optional match history
	Clock         func() time.Time
	Embedded      bool // The match runs inside a menu; b returns to it
	Logger        *log.Logger
}

// Model is the Bubble Tea model for one match.
type Model struct {
	match  *session.Match
	screen *core.Screen
	sched  *FrameScheduler
	hold   *KeyHold
	keys   KeyMap
	help   help.Model
	view   View
	fieldH float64

	status     string
	saved      bool
	quitting   bool
	backToMenu bool
}

// NewModel creates the match described by opts and a model to play it.
// The scheduler, key set and bindings of opts are owned by the model.
func NewModel(cfg config.PongConfig, opts session.Options, view View) (Model, error) {
	if view.Width <= 0 || view.Height <= statusLines {
		view.Width, view.Height = DefaultWidth, DefaultHeight
	}
	if view.Clock == nil {
		view.Clock = time.Now
	}
	if view.Logger == nil {
		view.Logger = log.Default()
	}
	if opts.Bindings == (input.Bindings{}) {
		opts.Bindings = input.DefaultBindings()
	}
	if opts.Logger == nil {
		opts.Logger = view.Logger
	}

	screen := core.NewScreen(view.Width, view.Height-statusLines)
	sched := NewFrameScheduler(cfg.Gameplay.TickRate)
	opts.Scheduler = sched
	opts.Keys = input.NewKeySet()

	match, err := session.New(cfg, core.NewScreenCanvas(screen), opts)
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}

	m := Model{
		match:  match,
		screen: screen,
		sched:  sched,
		hold:   NewKeyHold(match.Keys(), opts.Bindings),
		keys:   NewKeyMap(opts.Bindings),
		help:   help.New(),
		view:   view,
		fieldH: cfg.Field.Height,
	}
	m.keys.Back.SetEnabled(view.Embedded)
	m.keys.Pause.SetEnabled(match.CanPause())
	m.fitField()
	return m, nil
}

// Match returns the match being played.
func (m Model) Match() *session.Match {
	return m.match
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return m.sched.Cmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.view.Width, m.view.Height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.screen.Resize(msg.Width, max(1, msg.Height-statusLines))
		m.fitField()
		return m, nil

	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k, ok := m.keys.PaddleKey(msg); ok {
		m.hold.Press(k, m.view.Clock())
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.match.Lifecycle() != pong.Playing {
			m.finish()
			m.backToMenu = true
		}

	case key.Matches(msg, m.keys.Start):
		switch m.match.Lifecycle() {
		case pong.Ready:
			m.match.Start()
		case pong.Paused:
			if m.match.CanPause() {
				m.match.Resume()
			}
		}

	case key.Matches(msg, m.keys.Pause):
		m.match.TogglePause()

	case key.Matches(msg, m.keys.Restart):
		if m.match.Lifecycle() == pong.Ended && m.match.Mode() != session.ModeRemote {
			m.hold.Clear()
			m.match.Reset()
			m.saved = false
			m.status = ""
		}
	}
	return m, nil
}

// handleTick expires held keys, runs the pending engine frame and keeps the
// tick loop going.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}
	m.hold.Expire(m.view.Clock())
	m.sched.Step()

	if m.match.Lifecycle() == pong.Ended && !m.saved {
		m.save()
	}
	if r := m.match.Relay(); r != nil && r.PeerGone() {
		m.status = "Opponent left the match"
	}
	return m, m.sched.Cmd()
}

// fitField keeps the field height and matches its width to the terminal's
// aspect ratio. Terminal cells are about twice as tall as wide. Remote
// peers must agree on the field, so remote matches keep the configured size.
func (m *Model) fitField() {
	if m.match.Mode() == session.ModeRemote {
		return
	}
	cols, rows := m.screen.Width(), m.screen.Height()
	if cols <= 0 || rows <= 0 {
		return
	}
	m.match.Resize(m.fieldH*float64(cols)/float64(2*rows), m.fieldH)
}

func (m *Model) save() {
	m.saved = true
	if m.view.Saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if _, err := m.match.Save(ctx, m.view.Saver); err != nil {
		m.view.Logger.Warn("could not save match", "err", err)
		m.status = "Could not save match"
	}
}

// finish records an unfinished match and releases the engine.
func (m *Model) finish() {
	if !m.saved {
		m.save()
	}
	m.hold.Clear()
	if err := m.match.Close(); err != nil {
		m.view.Logger.Debug("close match", "err", err)
	}
}

// View renders the field and a status line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.match.Engine().Render()
	field := RenderScreen(m.screen)

	status := statusStyle.Render(m.help.View(m.keys))
	if m.status != "" {
		status = alertStyle.Render(m.status)
	}
	return field + "\n" + status
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run plays one match in the terminal until the user quits.
func Run(cfg config.PongConfig, opts session.Options, view View) error {
	model, err := NewModel(cfg, opts, view)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
