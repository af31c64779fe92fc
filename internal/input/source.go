package input

import "github.com/vovakirdan/tui-pong/internal/core"

// Source produces a movement intent for a side.
// A source answers IntentNone for sides it does not drive.
type Source interface {
	Intent(side core.Side) Intent
}

// KeySource resolves intents from a key set through fixed bindings.
// Sides outside Sides are ignored.
type KeySource struct {
	Keys     *KeySet
	Bindings Bindings
	Sides    []core.Side
}

// NewKeySource creates a key source driving the given sides.
func NewKeySource(keys *KeySet, bindings Bindings, sides ...core.Side) *KeySource {
	return &KeySource{Keys: keys, Bindings: bindings, Sides: sides}
}

// Intent implements Source.
func (s *KeySource) Intent(side core.Side) Intent {
	for _, own := range s.Sides {
		if own == side {
			return Resolve(s.Keys, s.Bindings.For(side))
		}
	}
	return IntentNone
}

// Merge combines the intents of several sources for both sides.
// The first source reporting a non-None intent for a side wins.
func Merge(sources ...Source) [2]Intent {
	var out [2]Intent
	for _, side := range []core.Side{core.SideLeft, core.SideRight} {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if in := src.Intent(side); in != IntentNone {
				out[side] = in
				break
			}
		}
	}
	return out
}
