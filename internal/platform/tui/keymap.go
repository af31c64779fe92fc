package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/input"
)

// KeyMap holds the match key bindings.
type KeyMap struct {
	Paddles [2]PaddleKeys
	Start   key.Binding
	Pause   key.Binding
	Restart key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// PaddleKeys moves one paddle.
type PaddleKeys struct {
	Up   key.Binding
	Down key.Binding
}

// NewKeyMap builds the key map for the given paddle bindings.
func NewKeyMap(b input.Bindings) KeyMap {
	km := KeyMap{
		Start: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "serve"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rematch"),
		),
		Back: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "menu"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	for _, side := range []core.Side{core.SideLeft, core.SideRight} {
		bind := b.For(side)
		km.Paddles[side] = PaddleKeys{
			Up: key.NewBinding(
				key.WithKeys(string(bind.Up)),
				key.WithHelp(string(bind.Up), side.String()+" up"),
			),
			Down: key.NewBinding(
				key.WithKeys(string(bind.Down)),
				key.WithHelp(string(bind.Down), side.String()+" down"),
			),
		}
	}
	return km
}

// PaddleKey returns the input key for a paddle key message.
func (k KeyMap) PaddleKey(msg tea.KeyMsg) (input.Key, bool) {
	for _, p := range k.Paddles {
		if key.Matches(msg, p.Up, p.Down) {
			return input.Key(msg.String()), true
		}
	}
	return "", false
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Restart, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Paddles[0].Up, k.Paddles[0].Down, k.Paddles[1].Up, k.Paddles[1].Down},
		{k.Start, k.Pause, k.Restart, k.Back, k.Quit},
	}
}

// MenuKeyMap holds the menu key bindings.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Tab    key.Binding
	Quit   key.Binding
}

// DefaultMenuKeyMap returns default menu bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("down/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "history"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Tab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
