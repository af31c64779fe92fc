// Package input translates pressed-key sets into per-paddle movement intents.
// Human keyboards and the AI opponent feed the same resolution rules, so the
// AI is bound by the same speed cap and clamping as a human player.
package input

import (
	"sort"

	"github.com/vovakirdan/tui-pong/internal/core"
)

// Key identifies a physical or synthetic key, e.g. "w" or "up".
type Key string

// Intent is the movement a paddle should make this tick.
type Intent int

const (
	IntentNone Intent = iota
	IntentUp
	IntentDown
)

// String returns a human-readable name for the intent.
func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "None"
	case IntentUp:
		return "Up"
	case IntentDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// Velocity converts an intent into a signed paddle velocity.
// Up moves toward y=0.
func (i Intent) Velocity(speed float64) float64 {
	switch i {
	case IntentUp:
		return -speed
	case IntentDown:
		return speed
	default:
		return 0
	}
}

// Binding is the pair of keys driving one paddle.
type Binding struct {
	Up   Key
	Down Key
}

// Bindings maps each side to its key pair.
type Bindings [2]Binding

// DefaultBindings returns W/S for the left paddle and the arrow keys for the right.
func DefaultBindings() Bindings {
	return Bindings{
		core.SideLeft:  {Up: "w", Down: "s"},
		core.SideRight: {Up: "up", Down: "down"},
	}
}

// For returns the binding of a side. Invalid sides get an empty binding.
func (b Bindings) For(side core.Side) Binding {
	if !side.Valid() {
		return Binding{}
	}
	return b[side]
}

// Swap returns the bindings with the sides exchanged. A lone human can then
// drive their paddle with either key pair.
func (b Bindings) Swap() Bindings {
	return Bindings{b[core.SideRight], b[core.SideLeft]}
}

// Reserved returns every bound key. Hosts suppress default handling for these.
func (b Bindings) Reserved() []Key {
	keys := make([]Key, 0, 4)
	for _, bind := range b {
		keys = append(keys, bind.Up, bind.Down)
	}
	return keys
}

// KeySet is the set of currently pressed keys.
// The zero value is ready to use.
type KeySet struct {
	pressed map[Key]bool
}

// NewKeySet creates an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{pressed: make(map[Key]bool)}
}

// Press marks a key as held.
func (k *KeySet) Press(key Key) {
	if k.pressed == nil {
		k.pressed = make(map[Key]bool)
	}
	k.pressed[key] = true
}

// Release marks a key as no longer held.
func (k *KeySet) Release(key Key) {
	delete(k.pressed, key)
}

// Pressed reports whether a key is held.
func (k *KeySet) Pressed(key Key) bool {
	return k.pressed[key]
}

// Clear releases every key.
func (k *KeySet) Clear() {
	for key := range k.pressed {
		delete(k.pressed, key)
	}
}

// Keys returns the held keys in sorted order.
func (k *KeySet) Keys() []Key {
	keys := make([]Key, 0, len(k.pressed))
	for key := range k.pressed {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Resolve derives the intent of one side from a key set.
// Holding neither key yields IntentNone; holding both resolves to IntentUp
// because up is checked first.
func Resolve(keys *KeySet, bind Binding) Intent {
	if keys == nil {
		return IntentNone
	}
	if bind.Up != "" && keys.Pressed(bind.Up) {
		return IntentUp
	}
	if bind.Down != "" && keys.Pressed(bind.Down) {
		return IntentDown
	}
	return IntentNone
}
