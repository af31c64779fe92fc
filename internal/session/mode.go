package session

import (
	"fmt"
	"strings"
)

// Mode selects who drives the paddles.
type Mode string

const (
	ModeLocal  Mode = "local"  // Two humans on one keyboard
	ModeVsAI   Mode = "ai"     // One human against the AI
	ModeRemote Mode = "remote" // One human per peer over a relay
)

// Modes returns every play mode.
func Modes() []Mode {
	return []Mode{ModeLocal, ModeVsAI, ModeRemote}
}

// ParseMode resolves a mode name. The empty string selects ModeVsAI.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLocal:
		return ModeLocal, nil
	case ModeVsAI, "vs-ai", "":
		return ModeVsAI, nil
	case ModeRemote:
		return ModeRemote, nil
	default:
		return "", fmt.Errorf("session: unknown mode %q (want local, ai or remote)", s)
	}
}
