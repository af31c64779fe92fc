// Package config provides YAML-based configuration loading for the Pong
// engine, its AI tiers and the hosts that run them.
package config

import (
	"errors"
	"fmt"
	"time"
)

// PongConfig contains all tuning for a match.
type PongConfig struct {
	Field    PongField    `yaml:"field"`
	Ball     PongBall     `yaml:"ball"`
	Paddles  PongPaddles  `yaml:"paddles"`
	Gameplay PongGameplay `yaml:"gameplay"`
	AI       AIConfig     `yaml:"ai"`
}

// PongField defines the playfield size in surface units.
type PongField struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PongBall defines ball size and speed limits.
type PongBall struct {
	Radius       float64 `yaml:"radius"`
	MinSpeed     float64 `yaml:"min_speed"`    // Serve horizontal speed and speed floor
	MaxSpeed     float64 `yaml:"max_speed"`    // Speed cap after paddle hits
	ServeVY      float64 `yaml:"serve_vy"`     // Vertical speed magnitude after a reset
	Acceleration float64 `yaml:"acceleration"` // Speed multiplier per paddle hit
	Deflection   float64 `yaml:"deflection"`   // vy = hitPosition * deflection
}

// PongPaddles defines paddle geometry and movement.
type PongPaddles struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Offset float64 `yaml:"offset"` // Distance from the side wall
	Speed  float64 `yaml:"speed"`  // Units per tick while a key is held
}

// PongGameplay defines match rules.
type PongGameplay struct {
	MaxScore          int           `yaml:"max_score"`
	CollisionCooldown time.Duration `yaml:"collision_cooldown"`
	TickRate          int           `yaml:"tick_rate"`
}

// AIConfig defines the AI opponent's tuning table.
type AIConfig struct {
	Deadband float64             `yaml:"deadband"`
	Tiers    map[Difficulty]Tier `yaml:"tiers"`
}

// Tier is the tuning of one difficulty level.
type Tier struct {
	Interval        time.Duration `yaml:"interval"`         // Time between observations
	Imperfection    float64       `yaml:"imperfection"`     // Width of the uniform aiming error
	PredictionDepth int           `yaml:"prediction_depth"` // Max wall bounces simulated
	DefensiveOffset float64       `yaml:"defensive_offset"` // Nudge from center while the ball moves away
}

// Validation errors.
var (
	ErrInvalidField  = errors.New("config: field dimensions must be positive")
	ErrInvalidBall   = errors.New("config: ball radius and speeds must be positive with min_speed <= max_speed")
	ErrInvalidPaddle = errors.New("config: paddle dimensions must be positive and fit the field")
	ErrInvalidRules  = errors.New("config: max_score must be positive")
	ErrMissingTier   = errors.New("config: missing AI tier")
)

// Validate checks that the configuration describes a playable match.
func (c PongConfig) Validate() error {
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return ErrInvalidField
	}
	b := c.Ball
	if b.Radius <= 0 || b.MinSpeed <= 0 || b.MaxSpeed < b.MinSpeed || b.Acceleration < 1 {
		return ErrInvalidBall
	}
	p := c.Paddles
	if p.Width <= 0 || p.Height <= 0 || p.Speed <= 0 || p.Height > c.Field.Height || 2*(p.Offset+p.Width) > c.Field.Width {
		return ErrInvalidPaddle
	}
	if c.Gameplay.MaxScore <= 0 {
		return ErrInvalidRules
	}
	for _, d := range Difficulties() {
		if _, ok := c.AI.Tiers[d]; !ok {
			return fmt.Errorf("%w %q", ErrMissingTier, d)
		}
	}
	return nil
}

// TierFor returns the tuning of a difficulty, falling back to the built-in table.
func (c PongConfig) TierFor(d Difficulty) Tier {
	if t, ok := c.AI.Tiers[d]; ok {
		return t
	}
	return DefaultTiers()[d]
}
