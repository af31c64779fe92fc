package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
	"github.com/vovakirdan/tui-pong/internal/session"
)

// OnlineState represents the current state of the online matchmaking flow.
type OnlineState int

const (
	OnlineStateConnecting OnlineState = iota // Dialing the relay
	OnlineStateWaiting                       // Connected, waiting for the opponent
	OnlineStateInMatch                       // In active match
	OnlineStateFailed                        // Connection or lobby error
)

const dialTimeout = 10 * time.Second

// Messages of the lobby flow.
type (
	connectedMsg struct{ ch multiplayer.Channel }
	helloMsg     struct{ code string }
	startMsg     struct{ start multiplayer.StartPayload }
	failedMsg    struct{ err error }
)

// OnlineModel connects to a relay, hosts or joins a lobby and plays the
// match once both peers are paired.
type OnlineModel struct {
	cfg      config.PongConfig
	relayURL string
	joinCode string // Empty to host
	view     View
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	hello  chan string

	state     OnlineState
	ch        multiplayer.Channel
	lobbyCode string
	err       error
	game      *Model
	quitting  bool
}

// NewOnlineModel creates the remote flow. An empty joinCode hosts a new lobby.
func NewOnlineModel(cfg config.PongConfig, relayURL, joinCode string, view View) OnlineModel {
	if view.Width <= 0 || view.Height <= 0 {
		view.Width, view.Height = DefaultWidth, DefaultHeight
	}
	if view.Logger == nil {
		view.Logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return OnlineModel{
		cfg:      cfg,
		relayURL: relayURL,
		joinCode: joinCode,
		view:     view,
		logger:   view.Logger,
		ctx:      ctx,
		cancel:   cancel,
		hello:    make(chan string, 1),
	}
}

// Init dials the relay.
func (m OnlineModel) Init() tea.Cmd {
	return m.dial()
}

func (m OnlineModel) dial() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, dialTimeout)
		defer cancel()
		ch, err := multiplayer.Dial(ctx, m.relayURL, m.joinCode, m.logger)
		if err != nil {
			return failedMsg{err}
		}
		return connectedMsg{ch}
	}
}

func (m OnlineModel) awaitStart() tea.Cmd {
	return func() tea.Msg {
		start, err := multiplayer.AwaitStart(m.ctx, m.ch, func(code string) {
			select {
			case m.hello <- code:
			default:
			}
		})
		if err != nil {
			return failedMsg{err}
		}
		return startMsg{start}
	}
}

func (m OnlineModel) waitHello() tea.Cmd {
	return func() tea.Msg {
		select {
		case code := <-m.hello:
			return helloMsg{code}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == OnlineStateInMatch && m.game != nil {
		return m.updateGame(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.shutdown()
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.view.Width, m.view.Height = msg.Width, msg.Height

	case connectedMsg:
		m.ch = msg.ch
		m.state = OnlineStateWaiting
		return m, tea.Batch(m.awaitStart(), m.waitHello())

	case helloMsg:
		m.lobbyCode = msg.code

	case startMsg:
		return m.startMatch(msg.start)

	case failedMsg:
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.err = msg.err
		m.state = OnlineStateFailed
		m.shutdown()
	}
	return m, nil
}

func (m OnlineModel) startMatch(start multiplayer.StartPayload) (tea.Model, tea.Cmd) {
	game, err := NewModel(m.cfg, session.Options{
		Mode:      session.ModeRemote,
		LocalSide: start.Side,
		MaxScore:  start.MaxScore,
		Channel:   m.ch,
	}, m.view)
	if err != nil {
		m.err = err
		m.state = OnlineStateFailed
		m.shutdown()
		return m, nil
	}
	m.logger.Info("match started", "code", start.Code, "side", start.Side)
	game.Match().Start()
	m.game = &game
	m.lobbyCode = start.Code
	m.state = OnlineStateInMatch
	return m, m.game.Init()
}

func (m OnlineModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(Model); ok {
		m.game = &game
	}
	if m.game.IsQuitting() {
		m.shutdown()
		m.quitting = true
	}
	return m, cmd
}

// shutdown stops pending commands and closes the connection.
func (m *OnlineModel) shutdown() {
	m.cancel()
	if m.ch != nil {
		if err := m.ch.Close(); err != nil {
			m.logger.Debug("close channel", "err", err)
		}
	}
}

// View renders the lobby or the match.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}
	if m.state == OnlineStateInMatch && m.game != nil {
		return m.game.View()
	}

	var body string
	switch m.state {
	case OnlineStateConnecting:
		body = titleStyle.Render("Connecting") + "\n\n" + m.relayURL
	case OnlineStateWaiting:
		if m.joinCode != "" {
			body = titleStyle.Render("Joining lobby") + "\n\n" + codeStyle.Render(m.joinCode)
		} else if m.lobbyCode != "" {
			body = titleStyle.Render("Share this code") + "\n\n" + codeStyle.Render(m.lobbyCode) +
				"\n\nWaiting for an opponent..."
		} else {
			body = titleStyle.Render("Creating lobby")
		}
	case OnlineStateFailed:
		body = alertStyle.Render("Online play failed") + "\n\n" + m.err.Error()
	}
	body += "\n\n" + statusStyle.Render("q: quit")
	return centerBlock(boxStyle.Render(body), m.view.Width, m.view.Height)
}

// State returns the current flow state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// RunOnline runs the remote flow against a relay.
func RunOnline(cfg config.PongConfig, relayURL, joinCode string, view View) error {
	p := tea.NewProgram(
		NewOnlineModel(cfg, relayURL, joinCode, view),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
