package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/pong.yaml
var defaultPongYAML []byte

// DefaultPongConfig returns the hardcoded Pong configuration.
// It mirrors defaults/pong.yaml and is used when the embedded file cannot be parsed.
func DefaultPongConfig() PongConfig {
	return PongConfig{
		Field: PongField{
			Width:  800,
			Height: 600,
		},
		Ball: PongBall{
			Radius:       8,
			MinSpeed:     5,
			MaxSpeed:     15,
			ServeVY:      3,
			Acceleration: 1.05,
			Deflection:   6,
		},
		Paddles: PongPaddles{
			Width:  10,
			Height: 100,
			Offset: 10,
			Speed:  8,
		},
		Gameplay: PongGameplay{
			MaxScore:          5,
			CollisionCooldown: 100 * time.Millisecond,
			TickRate:          60,
		},
		AI: AIConfig{
			Deadband: 10,
			Tiers:    DefaultTiers(),
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultPongYAML
}
