// Package tui runs pong matches in a terminal with Bubble Tea. It turns key
// messages into held keys, paces engine frames with tea ticks and renders the
// engine's cell buffer with lipgloss.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-pong/internal/games/pong"
)

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// FrameScheduler hands engine frame requests to the Bubble Tea loop. The
// engine requests a frame, and the next TickMsg runs it on the program's
// goroutine.
type FrameScheduler struct {
	*pong.ManualScheduler
	tickRate int
}

// NewFrameScheduler creates a scheduler ticking at tickRate frames per second.
func NewFrameScheduler(tickRate int) *FrameScheduler {
	return &FrameScheduler{ManualScheduler: pong.NewManualScheduler(), tickRate: tickRate}
}

// Cmd returns the command delivering the next TickMsg.
func (f *FrameScheduler) Cmd() tea.Cmd {
	return tickCmd(f.tickRate)
}
