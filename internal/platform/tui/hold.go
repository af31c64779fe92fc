package tui

import (
	"time"

	"github.com/vovakirdan/tui-pong/internal/input"
)

// Terminals report key presses and auto-repeats but never releases. A key
// counts as held until no repeat arrived for a while.
const (
	DefaultInitialHold = 550 * time.Millisecond // Covers the auto-repeat delay
	DefaultRepeatHold  = 120 * time.Millisecond
)

// KeyHold emulates key-up events on top of an input.KeySet.
type KeyHold struct {
	keys     *input.KeySet
	bindings input.Bindings
	deadline map[input.Key]time.Time
	initial  time.Duration
	repeat   time.Duration
}

// NewKeyHold creates a hold tracker pressing keys on keys.
func NewKeyHold(keys *input.KeySet, bindings input.Bindings) *KeyHold {
	return &KeyHold{
		keys:     keys,
		bindings: bindings,
		deadline: make(map[input.Key]time.Time),
		initial:  DefaultInitialHold,
		repeat:   DefaultRepeatHold,
	}
}

// Press records a key message at now. The opposite key of the same binding
// is released so direction changes apply at once.
func (h *KeyHold) Press(key input.Key, now time.Time) {
	for _, b := range h.bindings {
		switch key {
		case b.Up:
			h.release(b.Down)
		case b.Down:
			h.release(b.Up)
		}
	}

	hold := h.repeat
	if !h.keys.Pressed(key) {
		hold = h.initial
	}
	h.keys.Press(key)
	h.deadline[key] = now.Add(hold)
}

// Expire releases keys whose hold ran out.
func (h *KeyHold) Expire(now time.Time) {
	for key, until := range h.deadline {
		if now.After(until) {
			h.release(key)
		}
	}
}

// Clear releases every key.
func (h *KeyHold) Clear() {
	for key := range h.deadline {
		h.release(key)
	}
}

func (h *KeyHold) release(key input.Key) {
	delete(h.deadline, key)
	h.keys.Release(key)
}
