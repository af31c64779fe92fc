package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/session"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// AppStore is the persistence the app screens use.
type AppStore interface {
	session.ResultSaver
	HistorySource
}

var _ AppStore = (*storage.Store)(nil)

type appScreen int

const (
	screenMenu appScreen = iota
	screenGame
	screenHistory
)

// AppModel manages the full flow: menu -> match -> menu, with the match
// history one key away.
type AppModel struct {
	cfg     config.PongConfig
	store   AppStore
	view    View
	screen  appScreen
	menu    MenuModel
	game    *Model
	history ScoreboardModel
	err     error
	quit    bool
}

// NewAppModel creates the app. store may be nil.
func NewAppModel(cfg config.PongConfig, store AppStore, view View) AppModel {
	if view.Width <= 0 || view.Height <= 0 {
		view.Width, view.Height = DefaultWidth, DefaultHeight
	}
	view.Embedded = true
	if store != nil {
		view.Saver = store
	}
	return AppModel{
		cfg:   cfg,
		store: store,
		view:  view,
		menu:  NewMenuModel(DefaultMenuItems(), view.Width, view.Height),
	}
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.view.Width, m.view.Height = wsm.Width, wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenHistory:
		return m.updateHistory(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quit = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		var store HistorySource
		if m.store != nil {
			store = m.store
		}
		m.history = NewScoreboardModel(store, m.view.Width, m.view.Height)
		m.screen = screenHistory
		return m, nil

	case m.menu.Selected() != nil:
		item := m.menu.Selected()
		game, err := NewModel(m.cfg, session.Options{
			Mode:       item.Mode,
			Difficulty: item.Difficulty,
		}, m.view)
		if err != nil {
			m.err = err
			m.menu = NewMenuModel(DefaultMenuItems(), m.view.Width, m.view.Height)
			return m, nil
		}
		m.game = &game
		m.screen = screenGame
		return m, m.game.Init()
	}

	return m, cmd
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(Model); ok {
		m.game = &game
	}

	if m.game.IsQuitting() {
		m.quit = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.game = nil
		m.screen = screenMenu
		m.menu = NewMenuModel(DefaultMenuItems(), m.view.Width, m.view.Height)
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.history.Update(msg)
	if history, ok := next.(ScoreboardModel); ok {
		m.history = history
	}

	if m.history.IsQuitting() {
		m.quit = true
		return m, tea.Quit
	}
	if m.history.IsGoingBack() {
		m.screen = screenMenu
		m.menu = NewMenuModel(DefaultMenuItems(), m.view.Width, m.view.Height)
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quit {
		return ""
	}
	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenHistory:
		return m.history.View()
	default:
		if m.err != nil {
			return m.menu.View() + "\n" + centerText(alertStyle.Render(m.err.Error()), m.view.Width)
		}
		return m.menu.View()
	}
}

// RunApp runs the menu-driven app.
func RunApp(cfg config.PongConfig, store AppStore, view View) error {
	p := tea.NewProgram(
		NewAppModel(cfg, store, view),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
